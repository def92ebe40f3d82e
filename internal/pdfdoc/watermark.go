package pdfdoc

import (
	"math"

	"github.com/wudi/pdfkit/ir/semantic"
)

// Resource names used by the overlay. The graphics-state name doubles as the
// marker that a page is already stamped.
const (
	watermarkState = "GSWatermark"
	watermarkFont  = "FWatermark"
)

// Watermark describes the diagonal overlay.
type Watermark struct {
	Text     string
	Angle    float64 // degrees, counter-clockwise
	Opacity  float64 // 0-1
	FontSize float64 // points
	Gray     float64 // 0 black, 1 white
}

// DefaultWatermark is the government overlay stamped on certificates.
func DefaultWatermark() Watermark {
	return Watermark{
		Text:     "GOVERNMENT OF INDIA",
		Angle:    45,
		Opacity:  0.1,
		FontSize: 60,
		Gray:     0.5,
	}
}

// helveticaBoldAdvance approximates the average glyph advance of upper-case
// Helvetica-Bold as a fraction of the font size.
const helveticaBoldAdvance = 0.72

// capHeight of Helvetica as a fraction of the font size.
const capHeight = 0.72

// ApplyWatermark stamps wm on every page of doc and returns the number of
// pages stamped. Pages that already carry the overlay are skipped, so calling
// it twice never stacks a second overlay.
func ApplyWatermark(doc *semantic.Document, wm Watermark) int {
	if doc == nil || wm.Text == "" {
		return 0
	}
	stamped := 0
	for _, page := range doc.Pages {
		if stampPage(page, wm) {
			stamped++
		}
	}
	return stamped
}

// HasWatermark reports whether page carries the overlay.
func HasWatermark(page *semantic.Page) bool {
	if page == nil || page.Resources == nil || page.Resources.ExtGStates == nil {
		return false
	}
	_, ok := page.Resources.ExtGStates[watermarkState]
	return ok
}

func stampPage(page *semantic.Page, wm Watermark) bool {
	if page == nil || HasWatermark(page) {
		return false
	}

	if page.Resources == nil {
		page.Resources = &semantic.Resources{}
	}
	if page.Resources.Fonts == nil {
		page.Resources.Fonts = make(map[string]*semantic.Font)
	}
	if page.Resources.ExtGStates == nil {
		page.Resources.ExtGStates = make(map[string]semantic.ExtGState)
	}
	alpha := clamp01(wm.Opacity)
	page.Resources.ExtGStates[watermarkState] = semantic.ExtGState{FillAlpha: &alpha, StrokeAlpha: &alpha}
	page.Resources.Fonts[watermarkFont] = &semantic.Font{BaseFont: "Helvetica-Bold"}

	box := page.MediaBox
	cx := box.LLX + (box.URX-box.LLX)/2
	cy := box.LLY + (box.URY-box.LLY)/2

	rad := wm.Angle * math.Pi / 180
	cos, sin := math.Cos(rad), math.Sin(rad)

	// Move the baseline origin back by half the text box so the rotated
	// string is centered on the page.
	halfW := float64(len([]rune(wm.Text))) * wm.FontSize * helveticaBoldAdvance / 2
	halfH := wm.FontSize * capHeight / 2
	x := cx - cos*halfW + sin*halfH
	y := cy - sin*halfW - cos*halfH

	gray := clamp01(wm.Gray)
	ops := []semantic.Operation{
		{Operator: "q"},
		{Operator: "gs", Operands: []semantic.Operand{semantic.NameOperand{Value: watermarkState}}},
		{Operator: "BT"},
		{Operator: "rg", Operands: []semantic.Operand{
			semantic.NumberOperand{Value: gray},
			semantic.NumberOperand{Value: gray},
			semantic.NumberOperand{Value: gray},
		}},
		{Operator: "Tf", Operands: []semantic.Operand{
			semantic.NameOperand{Value: watermarkFont},
			semantic.NumberOperand{Value: wm.FontSize},
		}},
		{Operator: "Tm", Operands: []semantic.Operand{
			semantic.NumberOperand{Value: cos},
			semantic.NumberOperand{Value: sin},
			semantic.NumberOperand{Value: -sin},
			semantic.NumberOperand{Value: cos},
			semantic.NumberOperand{Value: x},
			semantic.NumberOperand{Value: y},
		}},
		{Operator: "Tj", Operands: []semantic.Operand{semantic.StringOperand{Value: []byte(wm.Text)}}},
		{Operator: "ET"},
		{Operator: "Q"},
	}
	page.Contents = append(page.Contents, semantic.ContentStream{Operations: ops})
	return true
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
