package services

import (
	"fmt"
	"io"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"car-scraper/crawler"
	"car-scraper/models"
	"car-scraper/utils"
)

// InsightService accumulates accepted records during a run and reports on
// them afterwards. It is a RecordWriter so it can sit next to the CSV sink.
type InsightService struct {
	logger *utils.Logger

	mu      sync.Mutex
	records []*models.ListingRecord
}

func NewInsightService(logger *utils.Logger) *InsightService {
	return &InsightService{logger: logger}
}

func (s *InsightService) Write(rec *models.ListingRecord) error {
	s.mu.Lock()
	s.records = append(s.records, rec)
	s.mu.Unlock()
	return nil
}

func (s *InsightService) Close() error { return nil }

// Report computes the insights over every record written so far.
func (s *InsightService) Report() *models.InsightReport {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Generate(s.records)
}

func Generate(records []*models.ListingRecord) *models.InsightReport {
	report := &models.InsightReport{
		ListingsBySource:   make(map[string]int),
		ListingsByMake:     make(map[string]int),
		ListingsByLocation: make(map[string]int),
	}
	if len(records) == 0 {
		return report
	}
	report.TotalListings = len(records)

	var priceTotal, yearTotal, years int
	for _, r := range records {
		report.ListingsBySource[r.SourceID]++
		if r.Make != "" {
			report.ListingsByMake[r.Make]++
		}
		if r.Location != "" {
			report.ListingsByLocation[r.Location]++
		}
		if r.Year != nil {
			yearTotal += *r.Year
			years++
		}
		if r.PriceAmount == nil {
			continue
		}

		p := *r.PriceAmount
		if report.PricedListings == 0 || p < report.MinPrice {
			report.MinPrice = p
		}
		if report.PricedListings == 0 || p > report.MaxPrice {
			report.MaxPrice = p
			report.MostExpensive = r
		}
		report.PricedListings++
		priceTotal += p
	}

	if report.PricedListings > 0 {
		report.AveragePrice = round2(float64(priceTotal) / float64(report.PricedListings))
	}
	if years > 0 {
		report.AverageYear = round2(float64(yearTotal) / float64(years))
	}
	return report
}

// Print renders the run summary and the insights as tables on w.
func (s *InsightService) Print(w io.Writer, r *models.InsightReport, sum *crawler.Summary) {
	if sum != nil {
		t := newTable(w, "Run summary")
		t.AppendRows([]table.Row{
			{"Targets", sum.Targets},
			{"Listings seen", sum.Seen},
			{"Accepted", sum.Accepted},
			{"Duplicates skipped", sum.Duplicates},
		})
		for _, c := range crawler.Classes() {
			t.AppendRow(table.Row{c.String(), sum.Counts[c]})
		}
		t.AppendRow(table.Row{"Duration", sum.Duration().Round(time.Second)})
		if sum.Interrupted {
			t.AppendFooter(table.Row{"", "interrupted"})
		}
		t.Render()

		for _, warn := range sum.Warnings {
			fmt.Fprintf(w, "  ! %s\n", warn)
		}
		fmt.Fprintln(w)
	}

	t := newTable(w, "Price statistics (million VND)")
	if r.PricedListings == 0 {
		t.AppendRow(table.Row{"No price data available", ""})
	} else {
		t.AppendRows([]table.Row{
			{"Priced listings", fmt.Sprintf("%d / %d", r.PricedListings, r.TotalListings)},
			{"Average price", fmt.Sprintf("%.2f", r.AveragePrice)},
			{"Minimum price", r.MinPrice},
			{"Maximum price", r.MaxPrice},
		})
		if r.MostExpensive != nil {
			t.AppendRow(table.Row{"Most expensive", truncate(r.MostExpensive.Title, 50)})
		}
	}
	if r.AverageYear > 0 {
		t.AppendRow(table.Row{"Average year", fmt.Sprintf("%.1f", r.AverageYear)})
	}
	t.Render()
	fmt.Fprintln(w)

	printCounts(w, "Listings by source", r.ListingsBySource, 0)
	printCounts(w, "Listings by make", r.ListingsByMake, 0)
	printCounts(w, "Top locations", r.ListingsByLocation, 10)
}

func newTable(w io.Writer, title string) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.SetTitle(title)
	return t
}

// printCounts renders counts sorted by count descending, then by key. A
// positive limit keeps only the first limit rows.
func printCounts(w io.Writer, title string, counts map[string]int, limit int) {
	if len(counts) == 0 {
		return
	}
	type keyCount struct {
		key   string
		count int
	}
	var rows []keyCount
	for k, n := range counts {
		rows = append(rows, keyCount{k, n})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].count != rows[j].count {
			return rows[i].count > rows[j].count
		}
		return rows[i].key < rows[j].key
	})
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}

	t := newTable(w, title)
	for _, kc := range rows {
		t.AppendRow(table.Row{truncate(kc.key, 40), kc.count})
	}
	t.Render()
	fmt.Fprintln(w)
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
