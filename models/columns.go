package models

import (
	"fmt"
	"strconv"
	"strings"
)

// Columns is the fixed output header. Downstream cleaning depends on these
// names and this order.
var Columns = []string{
	"ad_id", "make", "model", "version", "title", "price_vnd", "mileage",
	"location", "year", "fuel", "engine", "gearbox", "body", "color", "seats",
	"engine_power", "origin", "accident_free", "single_owner", "description", "url",
}

// Row renders the record in Columns order. Absent values are empty strings.
func (r *ListingRecord) Row() []string {
	mileage := ""
	if r.MileageKm != nil {
		mileage = strconv.Itoa(*r.MileageKm) + " km"
	}
	accidentFree := ""
	if r.AccidentFree != nil {
		accidentFree = strconv.FormatBool(*r.AccidentFree)
	}

	return []string{
		r.AdID,
		r.Make,
		r.Model,
		r.Version,
		r.Title,
		intCell(r.PriceAmount),
		mileage,
		r.Location,
		intCell(r.Year),
		orUnknown(r.Fuel, FuelUnknown),
		r.Engine,
		orUnknown(r.Gearbox, GearboxUnknown),
		orUnknown(r.Body, BodyUnknown),
		r.Color,
		intCell(r.Seats),
		r.EnginePower,
		orUnknown(r.Origin, OriginUnknown),
		accidentFree,
		strconv.FormatBool(r.SingleOwner),
		r.Description,
		r.URL.String(),
	}
}

// RecordFromRow parses a row written by Row. header names the columns of
// row and may be in any order; unknown columns are ignored.
func RecordFromRow(header, row []string) (*ListingRecord, error) {
	if len(row) != len(header) {
		return nil, fmt.Errorf("row has %d fields, header has %d", len(row), len(header))
	}
	cell := make(map[string]string, len(header))
	for i, h := range header {
		cell[strings.TrimSpace(h)] = row[i]
	}

	r := &ListingRecord{
		AdID:        cell["ad_id"],
		Make:        cell["make"],
		Model:       cell["model"],
		Version:     cell["version"],
		Title:       cell["title"],
		Location:    cell["location"],
		Fuel:        Fuel(cell["fuel"]),
		Engine:      cell["engine"],
		Gearbox:     Gearbox(cell["gearbox"]),
		Body:        BodyType(cell["body"]),
		Color:       cell["color"],
		EnginePower: cell["engine_power"],
		Origin:      Origin(cell["origin"]),
		Description: cell["description"],
		URL:         ListingURL(cell["url"]),
	}
	var err error
	if r.PriceAmount, err = parseIntCell(cell["price_vnd"]); err != nil {
		return nil, fmt.Errorf("price_vnd: %w", err)
	}
	if r.MileageKm, err = parseIntCell(strings.TrimSuffix(cell["mileage"], " km")); err != nil {
		return nil, fmt.Errorf("mileage: %w", err)
	}
	if r.Year, err = parseIntCell(cell["year"]); err != nil {
		return nil, fmt.Errorf("year: %w", err)
	}
	if r.Seats, err = parseIntCell(cell["seats"]); err != nil {
		return nil, fmt.Errorf("seats: %w", err)
	}
	if v := cell["accident_free"]; v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("accident_free: %w", err)
		}
		r.AccidentFree = &b
	}
	r.SingleOwner = cell["single_owner"] == "true"
	return r, nil
}

func parseIntCell(s string) (*int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil, err
	}
	return &n, nil
}
