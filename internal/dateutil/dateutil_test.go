package dateutil

import (
	"errors"
	"testing"
	"time"
)

func TestLayout(t *testing.T) {
	t.Parallel()

	tests := []struct {
		format  string
		want    string
		wantErr bool
	}{
		{format: "DD/MM/YYYY", want: "02/01/2006"},
		{format: "YYYY-MM-DD", want: "2006-01-02"},
		{format: "D MMMM YYYY", want: "2 January 2006"},
		{format: "MMM YY", want: "Jan 06"},
		{format: "[Issued] DD.MM.YYYY", want: "Issued 02.01.2006"},
		{format: "", wantErr: true},
		{format: "[open", wantErr: true},
		{format: string(make([]byte, MaxDateFormatLength+1)), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			t.Parallel()

			got, err := Layout(tt.format)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidDateFormat) {
					t.Errorf("Layout(%q) error = %v, want ErrInvalidDateFormat", tt.format, err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Errorf("Layout(%q) = %q, %v; want %q", tt.format, got, err, tt.want)
			}
		})
	}
}

func TestParseIssueDate(t *testing.T) {
	t.Parallel()

	got, err := ParseIssueDate("25/05/2019")
	if err != nil {
		t.Fatalf("ParseIssueDate() error = %v", err)
	}
	if want := time.Date(2019, time.May, 25, 0, 0, 0, 0, time.UTC); !got.Equal(want) {
		t.Errorf("ParseIssueDate() = %v, want %v", got, want)
	}

	for _, bad := range []string{"2019-05-25", "31/02/2019", "", "25/5/19"} {
		if _, err := ParseIssueDate(bad); !errors.Is(err, ErrInvalidDate) {
			t.Errorf("ParseIssueDate(%q) error = %v, want ErrInvalidDate", bad, err)
		}
	}
}

func TestResolve(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.March, 7, 10, 0, 0, 0, time.UTC)
	tests := []struct {
		value   string
		want    string
		wantErr bool
	}{
		{value: "25/05/2019", want: "25/05/2019"},
		{value: "auto", want: "07/03/2026"},
		{value: "AUTO", want: "07/03/2026"},
		{value: "auto:iso", want: "2026-03-07"},
		{value: "auto:long", want: "7 March 2026"},
		{value: "auto:YYYY", want: "2026"},
		{value: "auto:", wantErr: true},
		{value: "automatic", wantErr: true},
	}
	for _, tt := range tests {
		got, err := Resolve(tt.value, now)
		if tt.wantErr {
			if !errors.Is(err, ErrInvalidDateFormat) {
				t.Errorf("Resolve(%q) error = %v, want ErrInvalidDateFormat", tt.value, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("Resolve(%q) = %q, %v; want %q", tt.value, got, err, tt.want)
		}
	}
}

func TestStamp(t *testing.T) {
	t.Parallel()

	ts := time.Date(2019, time.May, 25, 14, 3, 9, 7*int(time.Millisecond)+999, time.UTC)
	if got := Stamp(ts); got != "20190525140309007" {
		t.Errorf("Stamp() = %q, want 20190525140309007", got)
	}
}
