package tags

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Rabatt& Vertrag ö", "rabatt-vertrag-oe"},
		{"E-Rezept", "e-rezept"},
		{"e-rezept", "e-rezept"},
		{"Großhandel", "grosshandel"},
		{"Über Änderungen", "ueber-aenderungen"},
		{"Café Crème", "cafe-creme"},
		{"  --BtM!!  ", "btm"},
		{"Notdienst 2024", "notdienst-2024"},
		{"!!!", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Slugify(tt.in))
		})
	}
}

func TestSlugifyDecomposedUmlauts(t *testing.T) {
	// "Grün" and "ÖL" typed as base letter plus combining diaeresis
	assert.Equal(t, "gruen", Slugify("Gru\u0308n"))
	assert.Equal(t, Slugify("Grün"), Slugify("Gru\u0308n"))
	assert.Equal(t, "oel", Slugify("O\u0308L"))
}

func TestExtractTags(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{
			name: "inflected forms only match literally",
			in:   "Die Lieferengpässe bei Medikamenten betreffen auch BTM",
			want: []string{"medikament", "btm"},
		},
		{
			name: "keyword order not text order",
			in:   "Impfung und Notdienst in der Apotheke",
			want: []string{"apotheke", "notdienst", "impfung"},
		},
		{
			name: "substring of a longer keyword also matches",
			in:   "Das E-Rezept kommt",
			want: []string{"rezept", "e-rezept"},
		},
		{
			name: "at most five",
			in:   "apotheke rezept medikament arzneimittel lieferengpass rabattvertrag retax",
			want: []string{"apotheke", "rezept", "medikament", "arzneimittel", "lieferengpass"},
		},
		{
			name: "no match",
			in:   "Guten Morgen",
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractTags(tt.in))
		})
	}
}
