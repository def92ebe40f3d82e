package settings

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fra-portal/patta2pdf/internal/store"
)

type failingReader struct{ err error }

func (f failingReader) Get(context.Context, string) (string, bool, error) {
	return "", false, f.err
}

func TestDefaults(t *testing.T) {
	d := Defaults()
	assert.Equal(t, QualityHigh, d.Quality)
	assert.Equal(t, PageA4, d.PageSize)
	assert.Equal(t, 80, d.CompressionLevel)
	assert.True(t, d.Watermark)
	assert.NoError(t, d.Validate())
}

func TestResolve_FallsBackToExactDefaults(t *testing.T) {
	tests := []struct {
		name string
		blob *string
	}{
		{name: "absent", blob: nil},
		{name: "empty string", blob: ptr("")},
		{name: "truncated json", blob: ptr(`{"pdfQuality":"low"`)},
		{name: "json array", blob: ptr(`["high"]`)},
		{name: "json null", blob: ptr(`null`)},
		{name: "json string", blob: ptr(`"high"`)},
		{name: "garbage", blob: ptr("\x00\x01not json")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kv := store.NewMemory()
			if tt.blob != nil {
				require.NoError(t, kv.Put(context.Background(), Key, *tt.blob))
			}

			res := Resolve(context.Background(), kv)
			assert.Equal(t, Defaults(), res.Settings)
			assert.ElementsMatch(t, allFields, res.Defaulted)
		})
	}
}

func TestResolve_ReaderErrorFallsBack(t *testing.T) {
	boom := errors.New("disk on fire")
	res := Resolve(context.Background(), failingReader{err: boom})

	assert.Equal(t, Defaults(), res.Settings)
	assert.ErrorIs(t, res.Cause, boom)
}

func TestResolve_NilReader(t *testing.T) {
	assert.Equal(t, Defaults(), Resolve(context.Background(), nil).Settings)
}

func TestParse_MissingFieldsTakeDefaults(t *testing.T) {
	tests := []struct {
		name          string
		blob          string
		want          Settings
		wantDefaulted []string
	}{
		{
			name: "fully valid",
			blob: `{"pdfQuality":"ultra","pdfPageSize":"letter","compressionLevel":95,"watermark":false}`,
			want: Settings{Quality: QualityUltra, PageSize: PageLetter, CompressionLevel: 95, Watermark: false},
		},
		{
			name:          "only watermark stored",
			blob:          `{"theme":"dark","language":"hi","watermark":false}`,
			want:          Settings{Quality: QualityHigh, PageSize: PageA4, CompressionLevel: 80, Watermark: false},
			wantDefaulted: []string{"pdfQuality", "pdfPageSize", "compressionLevel"},
		},
		{
			name:          "empty object",
			blob:          `{}`,
			want:          Defaults(),
			wantDefaulted: allFields,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Parse(tt.blob)
			assert.Equal(t, tt.want, res.Settings)
			assert.Equal(t, tt.wantDefaulted, res.Defaulted)
			assert.NoError(t, res.Cause)
		})
	}
}

func TestParse_InvalidFieldYieldsExactDefaults(t *testing.T) {
	tests := []struct {
		name  string
		blob  string
		field string
	}{
		{name: "unknown quality", blob: `{"pdfQuality":"bogus","watermark":false}`, field: "pdfQuality"},
		{name: "unknown page size", blob: `{"pdfQuality":"low","pdfPageSize":"tabloid","compressionLevel":90,"watermark":false}`, field: "pdfPageSize"},
		{name: "compression out of range", blob: `{"pdfQuality":"low","compressionLevel":12,"watermark":false}`, field: "compressionLevel"},
		{name: "fractional compression", blob: `{"compressionLevel":75.5,"watermark":false}`, field: "compressionLevel"},
		{name: "wrong quality type", blob: `{"pdfQuality":3,"watermark":false}`, field: "pdfQuality"},
		{name: "wrong watermark type", blob: `{"pdfQuality":"low","watermark":"yes"}`, field: "watermark"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Parse(tt.blob)
			assert.Equal(t, Defaults(), res.Settings)
			assert.ElementsMatch(t, allFields, res.Defaulted)
			require.ErrorIs(t, res.Cause, ErrMalformedBlob)
			assert.Contains(t, res.Cause.Error(), tt.field)
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Settings)
		wantErr error
	}{
		{name: "defaults valid", mutate: func(*Settings) {}},
		{name: "bad quality", mutate: func(s *Settings) { s.Quality = "max" }, wantErr: ErrInvalidQuality},
		{name: "bad page size", mutate: func(s *Settings) { s.PageSize = "legal" }, wantErr: ErrInvalidPageSize},
		{name: "compression too low", mutate: func(s *Settings) { s.CompressionLevel = 59 }, wantErr: ErrInvalidCompression},
		{name: "compression too high", mutate: func(s *Settings) { s.CompressionLevel = 101 }, wantErr: ErrInvalidCompression},
		{name: "compression lower bound", mutate: func(s *Settings) { s.CompressionLevel = 60 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Defaults()
			tt.mutate(&s)
			err := s.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestSave_ReplacesAndPreservesForeignKeys(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemory()
	require.NoError(t, kv.Put(ctx, Key, `{"theme":"dark","pdfQuality":"low"}`))

	want := Settings{Quality: QualityMedium, PageSize: PageA3, CompressionLevel: 90, Watermark: false}
	require.NoError(t, Save(ctx, kv, want))

	got := Resolve(ctx, kv)
	assert.Equal(t, want, got.Settings)
	assert.Empty(t, got.Defaulted)

	blob, _, err := kv.Get(ctx, Key)
	require.NoError(t, err)
	var raw map[string]any
	require.NoError(t, json.Unmarshal([]byte(blob), &raw))
	assert.Equal(t, "dark", raw["theme"])
}

func TestSave_RejectsInvalid(t *testing.T) {
	kv := store.NewMemory()
	s := Defaults()
	s.Quality = "4k"

	err := Save(context.Background(), kv, s)
	require.ErrorIs(t, err, ErrInvalidQuality)

	_, ok, _ := kv.Get(context.Background(), Key)
	assert.False(t, ok, "nothing persisted")
}

func TestSave_OverwritesCorruptBlob(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemory()
	require.NoError(t, kv.Put(ctx, Key, `{{{`))

	require.NoError(t, Save(ctx, kv, Defaults()))
	assert.Empty(t, Resolve(ctx, kv).Defaulted)
}

func TestReset(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemory()
	s := Defaults()
	s.Watermark = false
	require.NoError(t, Save(ctx, kv, s))

	require.NoError(t, Reset(ctx, kv))
	assert.Equal(t, Defaults(), Resolve(ctx, kv).Settings)
}

func TestQualityScale(t *testing.T) {
	assert.Equal(t, 1.0, QualityLow.Scale())
	assert.Equal(t, 1.5, QualityMedium.Scale())
	assert.Equal(t, 2.0, QualityHigh.Scale())
	assert.Equal(t, 3.0, QualityUltra.Scale())
	assert.Zero(t, Quality("nope").Scale())
}

func TestPageSizePoints(t *testing.T) {
	w, h, ok := PageA4.Points()
	require.True(t, ok)
	assert.InDelta(t, 595.28, w, 0.01)
	assert.InDelta(t, 841.89, h, 0.01)

	w, h, ok = PageLetter.Points()
	require.True(t, ok)
	assert.InDelta(t, 612, w, 0.01)
	assert.InDelta(t, 792, h, 0.01)

	_, _, ok = PageSize("b5").Points()
	assert.False(t, ok)
}

func ptr(s string) *string { return &s }
