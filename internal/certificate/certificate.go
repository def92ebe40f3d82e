// Package certificate renders a land-title record as a print-ready HTML
// document whose #certificate element is captured by the rasterizer.
package certificate

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"html/template"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/fra-portal/patta2pdf/internal/assets"
)

// Selector is the CSS selector of the element to capture.
const Selector = "#certificate"

// Layout size of the certificate element in CSS pixels (A4 at 96 dpi).
const (
	LayoutWidth  = 794
	LayoutHeight = 1122
)

// Sentinel errors for certificate rendering.
var (
	ErrTemplateParse = errors.New("certificate template parsing failed")
	ErrRender        = errors.New("certificate rendering failed")
	ErrMarkdown      = errors.New("certificate markdown conversion failed")
	ErrMissingQR     = errors.New("certificate requires a QR image")
)

// Record is the display projection of a land-title record.
type Record struct {
	ID            string
	SerialNo      string
	IssueDate     string
	HolderName    string
	FatherName    string
	Caste         string
	Age           string
	State         string
	District      string
	Tehsil        string
	GramPanchayat string
	Village       string
	KhasraNo      string
	TotalAreaSqft string
	East          string
	West          string
	North         string
	South         string
	Status        string
}

// Data is everything one certificate shows.
type Data struct {
	Record          Record
	QRCode          []byte // PNG
	VerificationURL string
	Authority       string
	Notes           string // optional markdown
}

// view is the template's data.
type view struct {
	Title           string
	CSS             template.CSS
	Record          Record
	Conditions      template.HTML
	Notes           template.HTML
	QRCode          template.URL
	VerificationURL string
	Authority       string
}

// Renderer renders certificates from one asset bundle.
// Safe for concurrent use.
type Renderer struct {
	tmpl       *template.Template
	css        template.CSS
	conditions template.HTML
	md         goldmark.Markdown
}

// NewRenderer parses the bundle's template and converts its conditions
// text once.
func NewRenderer(b *assets.Bundle) (*Renderer, error) {
	if b == nil {
		return nil, fmt.Errorf("%w: nil bundle", ErrTemplateParse)
	}
	tmpl, err := template.New("certificate").Option("missingkey=error").Parse(b.Template)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTemplateParse, err)
	}

	r := &Renderer{
		tmpl: tmpl,
		css:  template.CSS(b.Style), // #nosec G203 -- stylesheet comes from trusted assets
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(
				html.WithHardWraps(),
				html.WithXHTML(),
			),
		),
	}

	conditions, err := r.markdown(b.Conditions)
	if err != nil {
		return nil, err
	}
	r.conditions = conditions
	return r, nil
}

// Render produces the complete HTML document for d.
func (r *Renderer) Render(ctx context.Context, d Data) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(d.QRCode) == 0 {
		return "", ErrMissingQR
	}

	notes, err := r.markdown(d.Notes)
	if err != nil {
		return "", err
	}

	v := view{
		Title:           title(d.Record),
		CSS:             r.css,
		Record:          d.Record,
		Conditions:      r.conditions,
		Notes:           notes,
		QRCode:          DataURI("image/png", d.QRCode),
		VerificationURL: d.VerificationURL,
		Authority:       d.Authority,
	}

	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, v); err != nil {
		return "", fmt.Errorf("%w: %v", ErrRender, err)
	}
	return buf.String(), nil
}

// markdown converts md to HTML. Raw HTML in the input is not passed through.
func (r *Renderer) markdown(md string) (template.HTML, error) {
	if strings.TrimSpace(md) == "" {
		return "", nil
	}
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(md), &buf); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMarkdown, err)
	}
	return template.HTML(buf.String()), nil // #nosec G203 -- goldmark output without WithUnsafe
}

// DataURI embeds data inline so the capture never fetches it over the network.
func DataURI(mime string, data []byte) template.URL {
	return template.URL("data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)) // #nosec G203 -- base64 payload
}

func title(r Record) string {
	if r.ID == "" {
		return "Forest Rights Title"
	}
	return "Forest Rights Title " + r.ID
}
