package scraper

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"car-scraper/models"
)

const indexHTML = `<html><body>
<div class="car-item"><a class="photo" href="/xe-toyota-vios-1#gallery">img</a><h3><a href="/xe-toyota-vios-1">Vios</a></h3></div>
<div class="car-item"><h3><a href="/xe-toyota-camry-2?utm_source=fb">Camry</a></h3></div>
<a href="/xe-toyota-innova-3">Innova</a>
<a href="/tin-tuc/abc">News</a>
<script id="__NEXT_DATA__" type="application/json">
{"props":{"ads":[{"url":"https://example.com/xe-toyota-yaris-4"},{"title":"x","nested":{"link":"/xe-toyota-wigo-5"}}]}}
</script>
</body></html>`

func TestLinkSetCollect(t *testing.T) {
	ls := LinkSet{
		Base:   "https://example.com/oto/toyota",
		Accept: regexp.MustCompile(`/xe-`),
		Strategies: []LinkStrategy{
			CardLinks("div.car-item", "h3 a", "a.photo"),
			AnchorLinks(regexp.MustCompile(`^/xe-`)),
			EmbeddedJSONLinks("script#__NEXT_DATA__"),
		},
	}

	got := ls.Collect(&models.RawDocument{URL: "https://example.com/oto/toyota", Body: []byte(indexHTML)})
	assert.Equal(t, []models.ListingURL{
		"https://example.com/xe-toyota-vios-1",
		"https://example.com/xe-toyota-camry-2",
		"https://example.com/xe-toyota-innova-3",
		"https://example.com/xe-toyota-yaris-4",
		"https://example.com/xe-toyota-wigo-5",
	}, got)
}

func TestLinkSetCollectEmpty(t *testing.T) {
	ls := LinkSet{Strategies: []LinkStrategy{AnchorLinks(regexp.MustCompile(`.`))}}
	assert.Nil(t, ls.Collect(nil))
	assert.Nil(t, ls.Collect(&models.RawDocument{}))
}

func TestAdIDFromURL(t *testing.T) {
	assert.Equal(t, "123456", AdIDFromURL("https://xe.chotot.com/mua-ban-oto-ha-noi/123456.htm"))
	assert.Equal(t, "xe-toyota-vios-2020-5678", AdIDFromURL("https://bonbanh.com/xe-toyota-vios-2020-5678"))
	assert.Equal(t, "abc", AdIDFromURL("https://example.com/abc/?x=1"))
}

func TestSameMake(t *testing.T) {
	assert.True(t, SameMake("toyota", "Toyota"))
	assert.True(t, SameMake("mercedes-benz", "Mercedes"))
	assert.True(t, SameMake("Mercedes Benz", "mercedes-benz"))
	assert.False(t, SameMake("toyota", "Honda"))
	assert.False(t, SameMake("toyota", ""))
}

func TestLabelTable(t *testing.T) {
	var tbl LabelTable
	tbl.Add("Năm sản xuất:", " 2020 ")
	tbl.Add("Hộp số", "Số tự động")
	tbl.Add("Màu ngoại thất", "")

	require.Len(t, tbl, 2)
	assert.Equal(t, "2020", tbl.Lookup("năm sản xuất", "năm sx"))
	assert.Equal(t, "Số tự động", tbl.Lookup("hộp số"))
	assert.Empty(t, tbl.Lookup("màu"))
}

func TestReadableDescription(t *testing.T) {
	html := `<html><head><title>Toyota Vios</title></head><body>
<nav>Trang chủ | Tin tức</nav>
<article><p>Xe gia đình sử dụng kỹ, bảo dưỡng định kỳ tại hãng, nội thất còn rất mới, cam kết không tai nạn không ngập nước.</p>
<p>Liên hệ chính chủ để xem xe trực tiếp tại Hà Nội, hỗ trợ thủ tục sang tên nhanh gọn.</p></article>
</body></html>`
	got := ReadableDescription(&models.RawDocument{URL: "https://example.com/xe-1", Body: []byte(html)})
	assert.Contains(t, got, "không tai nạn")

	assert.Empty(t, ReadableDescription(&models.RawDocument{URL: "https://example.com/x"}))
}
