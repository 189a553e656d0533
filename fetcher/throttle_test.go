package fetcher

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"car-scraper/models"
)

type recordingFetcher struct {
	mu    sync.Mutex
	times map[string][]time.Time
}

func (r *recordingFetcher) Fetch(ctx context.Context, url string) (*models.RawDocument, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.times == nil {
		r.times = make(map[string][]time.Time)
	}
	r.times[url] = append(r.times[url], time.Now())
	return &models.RawDocument{URL: url, StatusCode: 200}, nil
}

func TestThrottledSpacesSameHost(t *testing.T) {
	rec := &recordingFetcher{}
	f := Throttled(rec, NewHostThrottle(50*time.Millisecond))

	start := time.Now()
	for i := 0; i < 3; i++ {
		_, err := f.Fetch(context.Background(), "https://bonbanh.com/a")
		require.NoError(t, err)
	}
	assert.GreaterOrEqual(t, time.Since(start), 100*time.Millisecond)
}

func TestThrottledHostsIndependent(t *testing.T) {
	rec := &recordingFetcher{}
	f := Throttled(rec, NewHostThrottle(time.Second))

	start := time.Now()
	_, err := f.Fetch(context.Background(), "https://bonbanh.com/a")
	require.NoError(t, err)
	_, err = f.Fetch(context.Background(), "https://oto.com.vn/a")
	require.NoError(t, err)
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}

func TestThrottledNoFetchAfterCancel(t *testing.T) {
	rec := &recordingFetcher{}
	f := Throttled(rec, NewHostThrottle(time.Second))

	ctx, cancel := context.WithCancel(context.Background())
	_, err := f.Fetch(ctx, "https://bonbanh.com/a")
	require.NoError(t, err)

	cancel()
	_, err = f.Fetch(ctx, "https://bonbanh.com/b")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, rec.times["https://bonbanh.com/b"])
}

type countingSession struct{ loads int }

func (s *countingSession) Document() *models.RawDocument { return &models.RawDocument{} }
func (s *countingSession) Close() error                  { return nil }

func (s *countingSession) LoadMore(context.Context) (*models.RawDocument, error) {
	s.loads++
	return &models.RawDocument{}, nil
}

type countingLoader struct {
	opens   int
	session *countingSession
}

func (l *countingLoader) Open(context.Context, string) (ScrollSession, error) {
	l.opens++
	return l.session, nil
}

func TestThrottledLoader(t *testing.T) {
	inner := &countingLoader{session: &countingSession{}}
	loader := ThrottledLoader(inner, NewHostThrottle(40*time.Millisecond))

	start := time.Now()
	sess, err := loader.Open(context.Background(), "https://oto.com.vn/mua-ban-xe-toyota-vios")
	require.NoError(t, err)
	for i := 0; i < 2; i++ {
		_, err := sess.LoadMore(context.Background())
		require.NoError(t, err)
	}
	assert.GreaterOrEqual(t, time.Since(start), 80*time.Millisecond)
	assert.Equal(t, 1, inner.opens)
	assert.Equal(t, 2, inner.session.loads)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = sess.LoadMore(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 2, inner.session.loads)
}
