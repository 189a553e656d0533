package fetcher

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"car-scraper/utils"
)

func newTestServer(t *testing.T, hits *int64) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/ok", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(hits, 1)
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(`<html><h1>Toyota Vios</h1></html>`))
	})
	mux.HandleFunc("/gone", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(hits, 1)
		w.WriteHeader(http.StatusGone)
	})
	mux.HandleFunc("/boom", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(hits, 1)
		w.WriteHeader(http.StatusBadGateway)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestHTTPFetcherOK(t *testing.T) {
	var hits int64
	srv := newTestServer(t, &hits)
	f := NewHTTPFetcher(HTTPOptions{UserAgent: "test-agent"}, utils.NewNopLogger())

	doc, err := f.Fetch(context.Background(), srv.URL+"/ok")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, doc.StatusCode)
	assert.Contains(t, string(doc.Body), "Toyota Vios")
	assert.Equal(t, srv.URL+"/ok", doc.URL)
}

func TestHTTPFetcherGone(t *testing.T) {
	var hits int64
	srv := newTestServer(t, &hits)
	f := NewHTTPFetcher(HTTPOptions{}, utils.NewNopLogger())

	doc, err := f.Fetch(context.Background(), srv.URL+"/gone")
	require.Error(t, err)

	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusGone, se.Code)
	assert.True(t, se.Gone())
	require.NotNil(t, doc)
	assert.Equal(t, http.StatusGone, doc.StatusCode)
}

func TestHTTPFetcherServerError(t *testing.T) {
	var hits int64
	srv := newTestServer(t, &hits)
	f := NewHTTPFetcher(HTTPOptions{}, utils.NewNopLogger())

	_, err := f.Fetch(context.Background(), srv.URL+"/boom")
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.False(t, se.Gone())
}

func TestHTTPFetcherTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL + "/ok"
	srv.Close()

	f := NewHTTPFetcher(HTTPOptions{}, utils.NewNopLogger())
	doc, err := f.Fetch(context.Background(), url)
	require.Error(t, err)
	assert.Nil(t, doc)

	var se *StatusError
	assert.False(t, errors.As(err, &se))
}

func TestHTTPFetcherCancelledContext(t *testing.T) {
	var hits int64
	srv := newTestServer(t, &hits)
	f := NewHTTPFetcher(HTTPOptions{}, utils.NewNopLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := f.Fetch(ctx, srv.URL+"/ok")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, atomic.LoadInt64(&hits))
}
