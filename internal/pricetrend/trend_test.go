package pricetrend

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransformSeries(t *testing.T) {
	entries := []rawTrendEntry{
		{CreatedDate: "2024-03-01", UnitPrice: 85_500_000, Count: 12, MinPrice: 60_000_000, MaxPrice: 120_000_000},
		{CreatedDate: "2024-01-01", UnitPrice: 80_000_000, Count: 9},
		{CreatedDate: "", UnitPrice: 70_000_000},          // no date, dropped
		{CreatedDate: "2024-02-01", UnitPrice: 0},         // no price, dropped
		{CreatedDate: "not-a-date", UnitPrice: 75_000_000}, // unparseable, dropped
	}

	series := transformSeries(entries)
	require.Len(t, series, 2)

	assert.Equal(t, "T1/24", series[0].Month)
	assert.Equal(t, 80.0, series[0].Price)
	assert.Equal(t, 80_000_000.0, series[0].RawPrice)

	assert.Equal(t, "T3/24", series[1].Month)
	assert.Equal(t, 85.5, series[1].Price)
	assert.Equal(t, 12, series[1].Count)
}

func trendServer(t *testing.T, responses map[string]string, hits map[string]int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		category := r.URL.Query().Get("category")
		hits[category]++
		body, ok := responses[category]
		if !ok {
			body = `{"data":[]}`
		}
		fmt.Fprint(w, body)
	}))
}

func TestPriceTrend_PrimarySuccess(t *testing.T) {
	hits := map[string]int{}
	server := trendServer(t, map[string]string{
		"can_ho": `{"data":[{"created_date":"2024-05-01","unit_price":55000000,"count":4}]}`,
	}, hits)
	defer server.Close()

	fetcher := NewFetcher(server.URL, "", time.Second, nil)
	result := fetcher.PriceTrend(context.Background(), "ha-noi", "dong-da", "can_ho")

	assert.True(t, result.Success)
	assert.False(t, result.Fallback)
	assert.Equal(t, "can_ho", result.Category)
	require.Len(t, result.Data, 1)
	assert.Equal(t, "T5/24", result.Data[0].Month)
	assert.Equal(t, 1, hits["can_ho"])
	assert.Zero(t, hits[DefaultCategory], "fallback must not fire on primary success")
}

func TestPriceTrend_FallbackSuccess(t *testing.T) {
	hits := map[string]int{}
	server := trendServer(t, map[string]string{
		DefaultCategory: `{"data":[{"created_date":"2024-04-01","unit_price":90000000,"count":7}]}`,
	}, hits)
	defer server.Close()

	fetcher := NewFetcher(server.URL, "", time.Second, nil)
	result := fetcher.PriceTrend(context.Background(), "ha-noi", "dong-da", "biet_thu")

	assert.True(t, result.Success)
	assert.True(t, result.Fallback)
	assert.Equal(t, DefaultCategory, result.Category)
	assert.Contains(t, result.Message, "biet_thu")
	assert.Equal(t, 1, hits["biet_thu"])
	assert.Equal(t, 1, hits[DefaultCategory])
}

func TestPriceTrend_DefaultCategorySkipsFallback(t *testing.T) {
	hits := map[string]int{}
	server := trendServer(t, nil, hits)
	defer server.Close()

	fetcher := NewFetcher(server.URL, "", time.Second, nil)
	result := fetcher.PriceTrend(context.Background(), "ha-noi", "dong-da", DefaultCategory)

	assert.False(t, result.Success)
	assert.False(t, result.Fallback)
	assert.Empty(t, result.Data)
	assert.NotEmpty(t, result.Message)
	assert.Equal(t, 1, hits[DefaultCategory], "default category must be tried exactly once")
}

func TestPriceTrend_NoDataAfterFallback(t *testing.T) {
	hits := map[string]int{}
	server := trendServer(t, nil, hits)
	defer server.Close()

	fetcher := NewFetcher(server.URL, "", time.Second, nil)
	result := fetcher.PriceTrend(context.Background(), "ha-noi", "dong-da", "dat_nen")

	assert.False(t, result.Success)
	assert.False(t, result.Fallback)
	assert.Empty(t, result.Data)
	assert.Equal(t, 1, hits["dat_nen"])
	assert.Equal(t, 1, hits[DefaultCategory])
}

func TestPriceTrend_UpstreamErrorDrivesFallback(t *testing.T) {
	var primaryHits, fallbackHits int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("category") == DefaultCategory {
			fallbackHits++
			fmt.Fprint(w, `{"data":[{"created_date":"2024-06-01","unit_price":100000000,"count":3}]}`)
			return
		}
		primaryHits++
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	fetcher := NewFetcher(server.URL, "", time.Second, nil)
	result := fetcher.PriceTrend(context.Background(), "ha-noi", "dong-da", "kho_xuong")

	assert.True(t, result.Success)
	assert.True(t, result.Fallback)
	assert.Equal(t, 1, primaryHits)
	assert.Equal(t, 1, fallbackHits)
}
