package certificate

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/fra-portal/patta2pdf/internal/assets"
)

func defaultRenderer(t *testing.T) *Renderer {
	t.Helper()
	b, err := assets.LoadBundle(assets.NewEmbeddedLoader(), "", "", "")
	if err != nil {
		t.Fatalf("LoadBundle() error = %v", err)
	}
	r, err := NewRenderer(b)
	if err != nil {
		t.Fatalf("NewRenderer() error = %v", err)
	}
	return r
}

func sampleData() Data {
	return Data{
		Record: Record{
			ID:            "FRA001",
			SerialNo:      "MP/MDL/2019/0001",
			IssueDate:     "25/05/2019",
			HolderName:    "बुधनी बाई गोंड",
			FatherName:    "सुखराम गोंड",
			District:      "Mandla",
			TotalAreaSqft: "2500",
			East:          "Forest compartment 114",
			Status:        "Active",
		},
		QRCode:          []byte{0x89, 'P', 'N', 'G'},
		VerificationURL: "https://fra.gov.in/verify/FRA001",
		Authority:       "District Collector, Mandla",
	}
}

func TestRender_ContainsRecordFields(t *testing.T) {
	t.Parallel()

	out, err := defaultRenderer(t).Render(context.Background(), sampleData())
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	for _, want := range []string{
		`id="certificate"`,
		"बुधनी बाई गोंड",
		"FRA001",
		"25/05/2019",
		"2500",
		"Forest compartment 114",
		"District Collector, Mandla",
		"data:image/png;base64,",
		`crossorigin="anonymous"`,
		"<ol>",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("rendered HTML missing %q", want)
		}
	}
}

func TestRender_EscapesRecordText(t *testing.T) {
	t.Parallel()

	d := sampleData()
	d.Record.HolderName = `<script>alert(1)</script>`

	out, err := defaultRenderer(t).Render(context.Background(), d)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if strings.Contains(out, "<script>alert") {
		t.Error("holder name must be HTML-escaped")
	}
}

func TestRender_NotesMarkdown(t *testing.T) {
	t.Parallel()

	d := sampleData()
	d.Notes = "Verified by **Gram Sabha** on 12/04/2019.\n\n<b>raw</b>"

	out, err := defaultRenderer(t).Render(context.Background(), d)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if !strings.Contains(out, "<strong>Gram Sabha</strong>") {
		t.Error("notes markdown not rendered")
	}
	if strings.Contains(out, "<b>raw</b>") {
		t.Error("raw HTML in notes must not pass through")
	}
}

func TestRender_NoNotesSection(t *testing.T) {
	t.Parallel()

	out, err := defaultRenderer(t).Render(context.Background(), sampleData())
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(out, `class="notes"`) {
		t.Error("notes section should be omitted when empty")
	}
}

func TestRender_Errors(t *testing.T) {
	t.Parallel()

	r := defaultRenderer(t)

	d := sampleData()
	d.QRCode = nil
	if _, err := r.Render(context.Background(), d); !errors.Is(err, ErrMissingQR) {
		t.Errorf("error = %v, want ErrMissingQR", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := r.Render(ctx, sampleData()); !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func TestNewRenderer_Errors(t *testing.T) {
	t.Parallel()

	if _, err := NewRenderer(nil); !errors.Is(err, ErrTemplateParse) {
		t.Errorf("NewRenderer(nil) error = %v, want ErrTemplateParse", err)
	}
	if _, err := NewRenderer(&assets.Bundle{Template: "{{.Broken"}); !errors.Is(err, ErrTemplateParse) {
		t.Errorf("error = %v, want ErrTemplateParse", err)
	}
}

func TestRender_UnknownFieldFails(t *testing.T) {
	t.Parallel()

	r, err := NewRenderer(&assets.Bundle{Template: `<div id="certificate">{{.Nope}}</div>`})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := r.Render(context.Background(), sampleData()); !errors.Is(err, ErrRender) {
		t.Errorf("error = %v, want ErrRender", err)
	}
}

func TestDataURI(t *testing.T) {
	t.Parallel()

	got := string(DataURI("image/png", []byte("hi")))
	if got != "data:image/png;base64,aGk=" {
		t.Errorf("DataURI() = %q", got)
	}
}
