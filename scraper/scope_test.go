package scraper

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTitleMakeModel(t *testing.T) {
	toyota := []string{"vios", "corolla", "corolla-altis", "corolla-cross", "land-cruiser"}

	tests := []struct {
		name      string
		title     string
		makeSlug  string
		models    []string
		wantMake  string
		wantModel string
		wantOK    bool
	}{
		{"single words", "Xe Toyota Vios 1.5G AT 2020", "toyota", toyota, "Toyota", "Vios", true},
		{"longest model wins", "Xe Toyota Corolla Altis 1.8G AT 2019", "toyota", toyota, "Toyota", "Corolla Altis", true},
		{"two-word model", "Toyota Land Cruiser 4.6 V8 2016", "toyota", toyota, "Toyota", "Land Cruiser", true},
		{"two-word make", "Xe Mercedes Benz C class C200 2019", "mercedes-benz", []string{"c-class", "e-class"}, "Mercedes Benz", "C class", true},
		{"hyphenated make", "Mercedes-Benz GLC 300 4Matic 2020", "mercedes-benz", []string{"c-class"}, "Mercedes-Benz", "GLC", true},
		{"unknown model falls back to next word", "Toyota Yaris Cross 1.5 HEV 2024", "toyota", toyota, "Toyota", "Yaris", true},
		{"model not a prefix of a longer word", "Toyota Viosx 1.5 2020", "toyota", toyota, "Toyota", "Viosx", true},
		{"make absent", "Xe Honda City 1.5 RS 2021", "toyota", toyota, "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mk, model, ok := TitleMakeModel(tt.title, tt.makeSlug, tt.models)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantMake, mk)
			assert.Equal(t, tt.wantModel, model)
		})
	}
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Corolla Altis", DisplayName("corolla-altis"))
	assert.Equal(t, "Mercedes Benz", DisplayName("mercedes-benz"))
}
