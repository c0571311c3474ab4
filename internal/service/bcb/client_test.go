package bcb

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"CrediTech/internal/domain/models"
	icache "CrediTech/internal/service/cache"
	xhttp "CrediTech/pkg/http"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRange() models.DateRange {
	return models.DateRange{
		From: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
	}
}

func TestFetchSeriesParsesAndSkipsInvalid(t *testing.T) {
	var gotPath, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query().Get("dataInicio") + "|" + r.URL.Query().Get("dataFim") + "|" + r.URL.Query().Get("formato")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"data":"02/01/2024","valor":"10.65"},
			{"data":"bad","valor":"1.0"},
			{"data":"03/01/2024","valor":""},
			{"data":"04/01/2024","valor":"-1"},
			{"data":"05/01/2024","valor":"11,25"}
		]`))
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second)
	points, err := c.FetchSeries(context.Background(), 11, testRange())
	require.NoError(t, err)

	assert.Equal(t, "/dados/serie/bcdata.sgs.11/dados", gotPath)
	assert.Equal(t, "01/01/2024|31/01/2024|json", gotQuery)
	require.Len(t, points, 2)
	assert.InDelta(t, 10.65, points[0].Value, 1e-9)
	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), points[0].Date)
	assert.InDelta(t, 11.25, points[1].Value, 1e-9)
}

func TestFetchSeriesRetriesThenFails(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second, WithRetries(2))
	_, err := c.FetchSeries(context.Background(), 25497, testRange())
	require.Error(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestFetchSeriesMalformed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"erro":"serie inexistente"}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL, time.Second).FetchSeries(context.Background(), 1, testRange())
	require.ErrorIs(t, err, ErrMalformedPayload)
}

func TestFetchSeriesUsesCache(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		_, _ = w.Write([]byte(`[{"data":"02/01/2024","valor":"4.62"}]`))
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second, WithCache(icache.NewTTLCache(), time.Minute))
	for i := 0; i < 3; i++ {
		points, err := c.FetchSeries(context.Background(), 433, testRange())
		require.NoError(t, err)
		require.Len(t, points, 1)
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestFetchSeriesTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := New(srv.URL, time.Second).FetchSeries(ctx, 11, testRange())
	require.Error(t, err)
}

func TestFetchSeriesDoesNotRetryClientErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := New(srv.URL, time.Second, WithRetries(3)).FetchSeries(context.Background(), 99999, testRange())
	var se *xhttp.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusNotFound, se.Code)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}
