// Package paginate slices one tall raster into fixed-size pages.
//
// The image is scaled so its width equals the page width; each page then
// shows a window of the scaled image placed at a cumulative negative
// vertical offset. Pages are produced while scaled content remains, so a
// content height that is an exact multiple of the page height never yields a
// blank trailing page.
package paginate

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
	"math"

	xdraw "golang.org/x/image/draw"
)

// Sentinel errors for pagination.
var (
	ErrEmptyImage     = errors.New("paginate: image has no pixels")
	ErrInvalidPage    = errors.New("paginate: page dimensions must be positive")
	ErrInvalidPercent = errors.New("paginate: resample percent must be 1-100")
)

// epsilon absorbs floating-point residue when the content height is an exact
// multiple of the page height.
const epsilon = 1e-6

// Plan is the page layout for an image, in page units (PDF points).
type Plan struct {
	PageWidth   float64
	PageHeight  float64
	ImageHeight float64   // scaled height of the whole image
	Offsets     []float64 // per page, 0 then -PageHeight, -2*PageHeight, ...
}

// Pages returns the number of pages in the plan.
func (p Plan) Pages() int {
	return len(p.Offsets)
}

// NewPlan computes the layout of a srcW x srcH pixel image on pages of
// pageW x pageH units.
func NewPlan(srcW, srcH int, pageW, pageH float64) (Plan, error) {
	if srcW <= 0 || srcH <= 0 {
		return Plan{}, ErrEmptyImage
	}
	if !(pageW > 0) || !(pageH > 0) || math.IsInf(pageW, 0) || math.IsInf(pageH, 0) {
		return Plan{}, fmt.Errorf("%w: %vx%v", ErrInvalidPage, pageW, pageH)
	}

	imgHeight := float64(srcH) * pageW / float64(srcW)
	plan := Plan{PageWidth: pageW, PageHeight: pageH, ImageHeight: imgHeight}

	heightLeft := imgHeight
	position := 0.0
	plan.Offsets = append(plan.Offsets, position)
	heightLeft -= pageH

	for heightLeft > epsilon {
		position = heightLeft - imgHeight
		plan.Offsets = append(plan.Offsets, position)
		heightLeft -= pageH
	}
	return plan, nil
}

// Page is one output page.
type Page struct {
	Index   int         // 1-based
	OffsetY float64     // vertical placement of the full image on this page, <= 0
	Image   image.Image // the pixel rows visible on this page
	Top     float64     // placement of Image's first row relative to the page top, in (-row, 0]
	Height  float64     // drawn height of Image in page units
}

// Split cuts img into one slice per plan page. Page i covers the scaled
// image band [i*pageH, (i+1)*pageH); its slice holds every pixel row that
// intersects the band, so a row cut by a page edge appears on both pages and
// the part outside the page is clipped by the page box. Drawing each slice at
// Top with Height reproduces the full image at the page's OffsetY.
func Split(img image.Image, pageW, pageH float64) (Plan, []Page, error) {
	b := img.Bounds()
	plan, err := NewPlan(b.Dx(), b.Dy(), pageW, pageH)
	if err != nil {
		return Plan{}, nil, err
	}

	scale := pageW / float64(b.Dx()) // page units per pixel row
	rowsPerPage := pageH / scale

	pages := make([]Page, 0, plan.Pages())
	for i, off := range plan.Offsets {
		top := min(int(math.Floor(float64(i)*rowsPerPage)), b.Dy()-1)
		bottom := max(min(int(math.Ceil(float64(i+1)*rowsPerPage)), b.Dy()), top+1)

		slice := image.NewRGBA(image.Rect(0, 0, b.Dx(), bottom-top))
		draw.Draw(slice, slice.Bounds(), img, image.Pt(b.Min.X, b.Min.Y+top), draw.Src)

		pages = append(pages, Page{
			Index:   i + 1,
			OffsetY: off,
			Image:   slice,
			Top:     min(float64(top)*scale+off, 0),
			Height:  float64(bottom-top) * scale,
		})
	}
	return plan, pages, nil
}

// Resample scales img to percent of its size with Catmull-Rom filtering.
// 100 returns img unchanged.
func Resample(img image.Image, percent int) (image.Image, error) {
	if percent < 1 || percent > 100 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidPercent, percent)
	}
	if percent == 100 {
		return img, nil
	}

	b := img.Bounds()
	w := max(1, b.Dx()*percent/100)
	h := max(1, b.Dy()*percent/100)

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, b, xdraw.Src, nil)
	return dst, nil
}
