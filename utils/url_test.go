package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		base string
		want string
	}{
		{
			name: "fragment stripped",
			raw:  "https://xe.chotot.com/mua-ban-oto/123.htm#px=SR-stickyad-[PO-1][PL-top]",
			want: "https://xe.chotot.com/mua-ban-oto/123.htm",
		},
		{
			name: "relative resolved against base",
			raw:  "/xe-toyota-vios-2020-123456",
			base: "https://bonbanh.com/oto/toyota-vios",
			want: "https://bonbanh.com/xe-toyota-vios-2020-123456",
		},
		{
			name: "host lowercased and default port dropped",
			raw:  "HTTPS://Oto.COM.vn:443/mua-ban-xe-toyota-vios/aidxc1",
			want: "https://oto.com.vn/mua-ban-xe-toyota-vios/aidxc1",
		},
		{
			name: "tracking params removed and rest sorted",
			raw:  "https://bonbanh.com/oto/toyota?utm_source=fb&page=2&fbclid=x&b=1",
			want: "https://bonbanh.com/oto/toyota?b=1&page=2",
		},
		{
			name: "trailing slash removed",
			raw:  "https://oto.com.vn/mua-ban-xe-toyota/",
			want: "https://oto.com.vn/mua-ban-xe-toyota",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeURL(tt.raw, tt.base)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			again, err := NormalizeURL(got, "")
			require.NoError(t, err)
			assert.Equal(t, got, again, "normalization must be idempotent")
		})
	}
}

func TestNormalizeURLFragmentVariantsCollide(t *testing.T) {
	a, err := NormalizeURL("https://xe.chotot.com/a/1.htm#top", "")
	require.NoError(t, err)
	b, err := NormalizeURL("https://xe.chotot.com/a/1.htm", "")
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestNormalizeURLRejectsRelativeWithoutBase(t *testing.T) {
	_, err := NormalizeURL("/xe-1", "")
	assert.Error(t, err)

	_, err = NormalizeURL("   ", "")
	assert.Error(t, err)
}

func TestHost(t *testing.T) {
	assert.Equal(t, "bonbanh.com", Host("https://BonBanh.com/oto"))
	assert.Equal(t, "127.0.0.1:8080", Host("http://127.0.0.1:8080/x"))
}
