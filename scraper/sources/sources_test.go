package sources

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"car-scraper/config"
)

func TestNew(t *testing.T) {
	adapters, err := New([]config.SourceConfig{
		{Name: "bonbanh", Brands: []config.BrandScope{{Make: "toyota"}, {Make: "kia"}}},
		{Name: "chotot", Brands: []config.BrandScope{{Make: "toyota"}}, Regions: []string{"ha-noi-sdcb2"}},
	})
	require.NoError(t, err)
	require.Len(t, adapters, 3)

	assert.Equal(t, "bonbanh", adapters[0].Source())
	assert.Equal(t, "toyota", adapters[0].ExpectedMake())
	assert.Equal(t, "kia", adapters[1].ExpectedMake())
	assert.Equal(t, "chotot", adapters[2].Source())
}

func TestNewDefaults(t *testing.T) {
	adapters, err := New(config.DefaultSources())
	require.NoError(t, err)
	assert.Len(t, adapters, 12)
}

func TestNewUnknownSource(t *testing.T) {
	_, err := New([]config.SourceConfig{{Name: "carmudi", Brands: []config.BrandScope{{Make: "toyota"}}}})
	assert.ErrorContains(t, err, "carmudi")
}

func TestNames(t *testing.T) {
	assert.Equal(t, []string{"bonbanh", "chotot", "oto"}, Names())
}
