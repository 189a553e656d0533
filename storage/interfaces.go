package storage

import (
	"errors"

	"car-scraper/models"
)

// RecordWriter is the interface any record sink must satisfy.
type RecordWriter interface {
	Write(rec *models.ListingRecord) error
	Close() error
}

type tee []RecordWriter

// Tee returns a RecordWriter that writes every record to each of writers in
// order. A failing writer does not stop the others.
func Tee(writers ...RecordWriter) RecordWriter {
	return tee(writers)
}

func (t tee) Write(rec *models.ListingRecord) error {
	var errs []error
	for _, w := range t {
		if err := w.Write(rec); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (t tee) Close() error {
	var errs []error
	for _, w := range t {
		errs = append(errs, w.Close())
	}
	return errors.Join(errs...)
}
