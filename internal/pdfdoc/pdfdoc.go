// Package pdfdoc assembles raster pages into a PDF document and stamps the
// diagonal watermark.
package pdfdoc

import (
	"compress/flate"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"math"

	"github.com/wudi/pdfkit/builder"
	"github.com/wudi/pdfkit/ir/semantic"
	"github.com/wudi/pdfkit/writer"
)

// Sentinel errors for document assembly.
var (
	ErrNoPages       = errors.New("pdfdoc: document has no pages")
	ErrInvalidPage   = errors.New("pdfdoc: invalid page")
	ErrBuildDocument = errors.New("pdfdoc: building document failed")
	ErrWriteDocument = errors.New("pdfdoc: writing document failed")
)

// Page is one raster slice drawn full-width. Parts outside the page box
// are clipped.
type Page struct {
	Image  image.Image
	Top    float64 // slice top relative to the page top in points; <= 0 overhangs upward
	Height float64 // drawn height in points
}

// Attachment is a file embedded in the document.
type Attachment struct {
	Name        string
	Description string
	MIMEType    string
	Data        []byte
}

// Info is the document information dictionary.
type Info struct {
	Title    string
	Author   string
	Subject  string
	Creator  string
	Producer string
	Keywords []string
}

// Layout is the physical page size in points.
type Layout struct {
	Width  float64
	Height float64
}

// Assemble builds a document with one page per slice.
func Assemble(layout Layout, pages []Page, info Info, attachments ...Attachment) (*semantic.Document, error) {
	if len(pages) == 0 {
		return nil, ErrNoPages
	}
	if layout.Width <= 0 || layout.Height <= 0 {
		return nil, fmt.Errorf("%w: layout %vx%v", ErrInvalidPage, layout.Width, layout.Height)
	}

	b := builder.NewBuilder()
	b.SetInfo(&semantic.DocumentInfo{
		Title:    info.Title,
		Author:   info.Author,
		Subject:  info.Subject,
		Creator:  info.Creator,
		Producer: info.Producer,
		Keywords: info.Keywords,
	})

	for i, p := range pages {
		if p.Image == nil || p.Image.Bounds().Empty() {
			return nil, fmt.Errorf("%w: page %d has no image", ErrInvalidPage, i+1)
		}
		if !(p.Height > 0) || math.IsInf(p.Height, 0) || p.Top > 0 {
			return nil, fmt.Errorf("%w: page %d placement top=%v height=%v", ErrInvalidPage, i+1, p.Top, p.Height)
		}
		// PDF origin is bottom-left.
		y := layout.Height - p.Top - p.Height
		b.NewPage(layout.Width, layout.Height).
			DrawImage(builder.FromImage(p.Image), 0, y, layout.Width, p.Height, builder.ImageOptions{Interpolate: true}).
			Finish()
	}

	for _, a := range attachments {
		b.AddEmbeddedFile(semantic.EmbeddedFile{
			Name:         a.Name,
			Description:  a.Description,
			Relationship: "Data",
			Subtype:      a.MIMEType,
			Data:         a.Data,
		})
	}

	doc, err := b.Build()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBuildDocument, err)
	}
	return doc, nil
}

// Write serializes doc to w. Output is deterministic for identical input.
func Write(ctx context.Context, doc *semantic.Document, w io.Writer) error {
	if doc == nil || len(doc.Pages) == 0 {
		return ErrNoPages
	}
	cfg := writer.Config{
		Deterministic: true,
		Compression:   flate.BestCompression,
		ContentFilter: writer.FilterFlate,
	}
	if err := (&writer.WriterBuilder{}).Build().Write(ctx, doc, w, cfg); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteDocument, err)
	}
	return nil
}
