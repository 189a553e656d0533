package services

import (
	"testing"

	"car-scraper/models"
	"car-scraper/utils"
)

func newTestLogger() *utils.Logger { return utils.NewNopLogger() }

func rawRecord(url, make string, price, year, mileage *int) *models.ListingRecord {
	return &models.ListingRecord{
		Make: make, Model: " Vios ", PriceAmount: price, Year: year, MileageKm: mileage,
		Gearbox: models.GearboxAutomatic, Fuel: models.FuelGasoline, Location: "Hà Nội",
		URL: models.ListingURL(url),
	}
}

func TestCleanerFilters(t *testing.T) {
	c := NewCleaner(DefaultCleanOptions(), newTestLogger())

	tests := []struct {
		name string
		rec  *models.ListingRecord
		keep bool
	}{
		{"valid", rawRecord("u1", "Toyota", models.Int(455), models.Int(2020), models.Int(30000)), true},
		{"alias brand", rawRecord("u2", "mercedes", models.Int(1500), models.Int(2019), nil), true},
		{"brand not allowed", rawRecord("u3", "Peugeot", models.Int(700), models.Int(2021), nil), false},
		{"missing price", rawRecord("u4", "Kia", nil, models.Int(2018), nil), false},
		{"missing year", rawRecord("u5", "Kia", models.Int(300), nil, nil), false},
		{"price too low", rawRecord("u6", "Kia", models.Int(2), models.Int(2018), nil), false},
		{"price too high", rawRecord("u7", "BMW", models.Int(9000), models.Int(2023), nil), false},
		{"mileage outlier", rawRecord("u8", "Ford", models.Int(400), models.Int(2010), models.Int(900000)), false},
		{"empty url", rawRecord("", "Toyota", models.Int(455), models.Int(2020), nil), false},
	}

	for _, tt := range tests {
		got := c.Clean([]*models.ListingRecord{tt.rec})
		if (len(got) == 1) != tt.keep {
			t.Errorf("%s: kept=%v, want %v", tt.name, len(got) == 1, tt.keep)
		}
	}
}

func TestCleanerCanonicalBrandAndDedup(t *testing.T) {
	c := NewCleaner(DefaultCleanOptions(), newTestLogger())
	raw := []*models.ListingRecord{
		rawRecord("u1", "mercedes-benz", models.Int(1500), models.Int(2019), nil),
		rawRecord("u1", "mercedes-benz", models.Int(1500), models.Int(2019), nil),
		rawRecord("u2", "VINFAST", models.Int(600), models.Int(2022), models.Int(12000)),
	}

	got := c.Clean(raw)
	if len(got) != 2 {
		t.Fatalf("got %d rows, want 2", len(got))
	}
	if got[0].Brand != "Mercedes-Benz" || got[1].Brand != "VinFast" {
		t.Errorf("brands = %q, %q", got[0].Brand, got[1].Brand)
	}
	if got[0].Model != "Vios" {
		t.Errorf("model not trimmed: %q", got[0].Model)
	}
}

func TestCleanListingRow(t *testing.T) {
	l := &CleanListing{
		Brand: "Toyota", Model: "Vios", Year: 2020, MileageKm: models.Int(30000),
		Transmission: models.GearboxAutomatic, Fuel: models.FuelGasoline, Location: "Hà Nội", Price: 455,
	}
	row := l.Row()
	if len(row) != len(CleanColumns) {
		t.Fatalf("row has %d cells, header %d", len(row), len(CleanColumns))
	}
	want := []string{"Toyota", "Vios", "2020", "30000", string(models.GearboxAutomatic), "Gasoline", "Hà Nội", "455"}
	for i := range want {
		if row[i] != want[i] {
			t.Errorf("%s = %q, want %q", CleanColumns[i], row[i], want[i])
		}
	}

	l.MileageKm = nil
	if got := l.Row()[3]; got != "" {
		t.Errorf("absent mileage rendered as %q", got)
	}
}
