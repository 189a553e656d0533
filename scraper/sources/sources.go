// Package sources builds marketplace adapters from configuration.
package sources

import (
	"fmt"
	"sort"

	"car-scraper/config"
	"car-scraper/scraper"
	"car-scraper/scraper/bonbanh"
	"car-scraper/scraper/chotot"
	"car-scraper/scraper/oto"
)

type factory func(scraper.Scope) scraper.Adapter

var registry = map[string]factory{
	bonbanh.SourceID: func(s scraper.Scope) scraper.Adapter { return bonbanh.New(s) },
	oto.SourceID:     func(s scraper.Scope) scraper.Adapter { return oto.New(s) },
	chotot.SourceID:  func(s scraper.Scope) scraper.Adapter { return chotot.New(s) },
}

// Names lists the supported source identifiers.
func Names() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// New returns one adapter per configured brand, in configuration order.
func New(cfgs []config.SourceConfig) ([]scraper.Adapter, error) {
	var adapters []scraper.Adapter
	for _, c := range cfgs {
		build, ok := registry[c.Name]
		if !ok {
			return nil, fmt.Errorf("unknown source %q (supported: %v)", c.Name, Names())
		}
		for _, b := range c.Brands {
			adapters = append(adapters, build(scraper.Scope{
				Make:    b.Make,
				Models:  b.Models,
				Regions: c.Regions,
				BaseURL: c.BaseURL,
			}))
		}
	}
	return adapters, nil
}
