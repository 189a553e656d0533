package bonbanh

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"car-scraper/models"
	"car-scraper/scraper"
)

const indexPage = `<html><body>
<ul>
<li class="car-item"><a href="/xe-toyota-vios-1.5g-2020-5123456">Toyota Vios 1.5G 2020</a></li>
<li class="car-item"><a href="/xe-toyota-vios-1.5e-2019-5123457#contact">Toyota Vios 1.5E 2019</a></li>
</ul>
<a href="/xe-toyota-vios-1.5g-2020-5123456">dup</a>
<a href="/oto/toyota-vios?page=2">2</a>
</body></html>`

const detailPage = `<html><head><title>Xe Toyota Vios 1.5G 2020 | Bonbanh</title></head><body>
<h1 class="car-title">Xe Toyota Vios 1.5G AT 2020 - 455 Triệu</h1>
<div class="price-box"><span class="price">455 Triệu</span></div>
<div class="box_car_detail">
  <div class="row"><label>Năm sản xuất:</label><span class="inp">2020</span></div>
  <div class="row"><label>Số Km đã đi:</label><span class="inp">35,000 Km</span></div>
  <div class="row"><label>Xuất xứ:</label><span class="inp">Lắp ráp trong nước</span></div>
  <div class="row"><label>Kiểu dáng:</label><span class="inp">Sedan</span></div>
  <div class="row"><label>Hộp số:</label><span class="inp">Số tự động</span></div>
  <div class="row"><label>Màu ngoại thất:</label><span class="inp">Trắng</span></div>
  <div class="row"><label>Số chỗ ngồi:</label><span class="inp">5 chỗ</span></div>
  <div class="row_last"><label>Động cơ:</label><span class="inp">Xăng 1.5 L</span></div>
</div>
<div class="car-description">Xe gia đình 1 chủ từ đầu, cam kết không tai nạn.</div>
<div class="contact-box"><div class="contact-txt">Anh Nam
Địa chỉ: 12 Láng Hạ, Đống Đa, Hà Nội
Website: https://bonbanh.com</div></div>
</body></html>`

type fetchFunc func(ctx context.Context, url string) (*models.RawDocument, error)

func (f fetchFunc) Fetch(ctx context.Context, url string) (*models.RawDocument, error) {
	return f(ctx, url)
}

func TestPageURL(t *testing.T) {
	a := New(scraper.Scope{Make: "toyota"})
	target := models.Target{IndexURL: "https://bonbanh.com/oto/toyota-vios"}
	assert.Equal(t, "https://bonbanh.com/oto/toyota-vios", a.PageURL(target, 1))
	assert.Equal(t, "https://bonbanh.com/oto/toyota-vios?page=3", a.PageURL(target, 3))
}

func TestListingLinksOnPage(t *testing.T) {
	a := New(scraper.Scope{Make: "toyota"})
	links := a.ListingLinksOnPage(&models.RawDocument{
		URL:  "https://bonbanh.com/oto/toyota-vios",
		Body: []byte(indexPage),
	})
	assert.Equal(t, []models.ListingURL{
		"https://bonbanh.com/xe-toyota-vios-1.5g-2020-5123456",
		"https://bonbanh.com/xe-toyota-vios-1.5e-2019-5123457",
	}, links)
}

func TestExtractListing(t *testing.T) {
	a := New(scraper.Scope{Make: "toyota"})
	u := models.ListingURL("https://bonbanh.com/xe-toyota-vios-1.5g-2020-5123456")

	rec, err := a.ExtractListing(&models.RawDocument{URL: string(u), Body: []byte(detailPage)}, u)
	require.NoError(t, err)

	assert.Equal(t, SourceID, rec.SourceID)
	assert.Equal(t, "5123456", rec.AdID)
	assert.Equal(t, "Toyota", rec.Make)
	assert.Equal(t, "Vios", rec.Model)
	assert.Equal(t, "1.5G AT", rec.Version)
	assert.Equal(t, models.Int(455), rec.PriceAmount)
	assert.Equal(t, models.Int(35000), rec.MileageKm)
	assert.Equal(t, models.Int(2020), rec.Year)
	assert.Equal(t, models.FuelGasoline, rec.Fuel)
	assert.Equal(t, "Xăng 1.5 L", rec.Engine)
	assert.Equal(t, models.GearboxAutomatic, rec.Gearbox)
	assert.Equal(t, models.BodySedan, rec.Body)
	assert.Equal(t, "Trắng", rec.Color)
	assert.Equal(t, models.Int(5), rec.Seats)
	assert.Equal(t, models.OriginDomestic, rec.Origin)
	assert.Equal(t, "Hà Nội", rec.Location)
	assert.Equal(t, models.Bool(true), rec.AccidentFree)
	assert.True(t, rec.SingleOwner)
	assert.Contains(t, rec.Description, "1 chủ từ đầu")
	assert.Equal(t, u, rec.URL)
	assert.True(t, scraper.SameMake(a.ExpectedMake(), rec.Make))
}

func titlePage(title string) []byte {
	return []byte(`<html><body><h1 class="car-title">` + title + `</h1><div class="box_car_detail"></div></body></html>`)
}

func TestExtractListingMultiWordNames(t *testing.T) {
	tests := []struct {
		name    string
		scope   scraper.Scope
		title   string
		brand   string
		model   string
		version string
	}{
		{
			name:  "two-word make",
			scope: scraper.Scope{Make: "mercedes-benz", Models: []string{"c-class", "glc"}},
			title: "Xe Mercedes Benz C class C200 2019 - 1 Tỷ 99 Triệu",
			brand: "Mercedes Benz", model: "C class", version: "C200",
		},
		{
			name:  "two-word model",
			scope: scraper.Scope{Make: "toyota", Models: []string{"corolla", "corolla-altis"}},
			title: "Xe Toyota Corolla Altis 1.8G AT 2019 - 545 Triệu",
			brand: "Toyota", model: "Corolla Altis", version: "1.8G AT",
		},
		{
			name:  "land cruiser",
			scope: scraper.Scope{Make: "toyota", Models: []string{"land-cruiser", "land-cruiser-prado"}},
			title: "Xe Toyota Land Cruiser 4.6 V8 2016 - 3 Tỷ 200 Triệu",
			brand: "Toyota", model: "Land Cruiser", version: "4.6 V8",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := New(tt.scope)
			u := models.ListingURL("https://bonbanh.com/xe-x-5000001")

			rec, err := a.ExtractListing(&models.RawDocument{URL: string(u), Body: titlePage(tt.title)}, u)
			require.NoError(t, err)
			assert.Equal(t, tt.brand, rec.Make)
			assert.Equal(t, tt.model, rec.Model)
			assert.Equal(t, tt.version, rec.Version)
			assert.True(t, scraper.SameMake(a.ExpectedMake(), rec.Make))
		})
	}
}

func TestExtractListingUsesDiscoveredModels(t *testing.T) {
	brandPage := `<html><body><a href="/oto/toyota-corolla">Corolla</a><a href="/oto/toyota-corolla-altis">Altis</a></body></html>`
	f := fetchFunc(func(_ context.Context, url string) (*models.RawDocument, error) {
		return &models.RawDocument{URL: url, StatusCode: 200, Body: []byte(brandPage)}, nil
	})
	a := New(scraper.Scope{Make: "toyota"})
	_, err := a.DiscoverTargets(context.Background(), f)
	require.NoError(t, err)

	u := models.ListingURL("https://bonbanh.com/xe-toyota-corolla-altis-5000002")
	rec, err := a.ExtractListing(&models.RawDocument{URL: string(u), Body: titlePage("Xe Toyota Corolla Altis 1.8G AT 2019")}, u)
	require.NoError(t, err)
	assert.Equal(t, "Corolla Altis", rec.Model)
	assert.Equal(t, "1.8G AT", rec.Version)
}

func TestExtractListingOtherMake(t *testing.T) {
	a := New(scraper.Scope{Make: "toyota", Models: []string{"vios"}})
	u := models.ListingURL("https://bonbanh.com/xe-honda-city-5000003")

	rec, err := a.ExtractListing(&models.RawDocument{URL: string(u), Body: titlePage("Xe Honda City 1.5 RS 2021")}, u)
	require.NoError(t, err)
	assert.Equal(t, "Honda", rec.Make)
	assert.False(t, scraper.SameMake(a.ExpectedMake(), rec.Make))
}

func TestExtractListingNotListing(t *testing.T) {
	a := New(scraper.Scope{Make: "toyota"})
	u := models.ListingURL("https://bonbanh.com/xe-x-1")

	_, err := a.ExtractListing(&models.RawDocument{URL: string(u), Body: []byte(`<html><body><p>Trang không tồn tại</p></body></html>`)}, u)
	assert.ErrorIs(t, err, scraper.ErrNotListing)

	var ee *scraper.ExtractionError
	assert.True(t, errors.As(err, &ee))
}

func TestDiscoverTargetsStatic(t *testing.T) {
	a := New(scraper.Scope{Make: "toyota", Models: []string{"vios", "camry"}})
	f := fetchFunc(func(ctx context.Context, url string) (*models.RawDocument, error) {
		t.Fatalf("static discovery must not fetch, got %s", url)
		return nil, nil
	})

	targets, err := a.DiscoverTargets(context.Background(), f)
	require.NoError(t, err)
	require.Len(t, targets, 2)
	assert.Equal(t, "https://bonbanh.com/oto/toyota-camry", targets[1].IndexURL)
	assert.Equal(t, "camry", targets[1].Model)
}

func TestDiscoverTargetsDynamic(t *testing.T) {
	brandPage := `<html><body>
<a href="/oto/toyota-vios">Vios</a>
<a href="https://bonbanh.com/oto/toyota-corolla-altis">Altis</a>
<a href="/oto/toyota-cu">Cũ</a>
<a href="/oto/toyota-nam-2020">2020</a>
<a href="/oto/toyota-mau-trang">Trắng</a>
<a href="/oto/toyota-vios">Vios again</a>
<a href="/oto/honda-civic">Civic</a>
</body></html>`

	var requested []string
	f := fetchFunc(func(ctx context.Context, url string) (*models.RawDocument, error) {
		requested = append(requested, url)
		return &models.RawDocument{URL: url, StatusCode: 200, Body: []byte(brandPage)}, nil
	})

	a := New(scraper.Scope{Make: "toyota"})
	targets, err := a.DiscoverTargets(context.Background(), f)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://bonbanh.com/oto/toyota"}, requested)

	var got []string
	for _, tg := range targets {
		got = append(got, tg.Model)
	}
	assert.Equal(t, []string{"vios", "corolla-altis"}, got)
}

func TestDiscoverTargetsFetchFailure(t *testing.T) {
	boom := errors.New("timeout")
	f := fetchFunc(func(ctx context.Context, url string) (*models.RawDocument, error) {
		return nil, boom
	})
	_, err := New(scraper.Scope{Make: "toyota"}).DiscoverTargets(context.Background(), f)
	assert.ErrorIs(t, err, boom)
}
