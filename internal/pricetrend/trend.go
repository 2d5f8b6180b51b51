package pricetrend

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"landradar/server/internal/models"
)

// DefaultCategory is the property-type tag substituted when the requested
// category has no trend data.
const DefaultCategory = "nha_mat_pho"

// Fetcher retrieves price-trend series with a single category fallback.
//
// The retrieval runs as a three-state machine: Primary tries the caller's
// category; Fallback retries once with DefaultCategory (skipped when the
// caller already asked for it); NoData answers success:false with an empty
// series. Upstream failures drive state transitions instead of surfacing as
// HTTP errors — the route always responds 200 for well-formed input.
type Fetcher struct {
	logger  *logrus.Logger
	baseURL string
	token   string
	client  *http.Client
}

func NewFetcher(baseURL, token string, timeout time.Duration, logger *logrus.Logger) *Fetcher {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}

	return &Fetcher{
		logger:  logger,
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client:  &http.Client{Timeout: timeout},
	}
}

// PriceTrend resolves the trend series for a city/district/category triple.
func (f *Fetcher) PriceTrend(ctx context.Context, city, district, category string) *models.TrendResult {
	if category == "" {
		category = DefaultCategory
	}

	series, err := f.fetchSeries(ctx, city, district, category)
	if err != nil {
		f.logger.WithError(err).WithField("category", category).Warn("Primary trend fetch failed")
	}
	if len(series) > 0 {
		return &models.TrendResult{Success: true, Data: series, Category: category, Fallback: false}
	}

	if category == DefaultCategory {
		return noData(category)
	}

	series, err = f.fetchSeries(ctx, city, district, DefaultCategory)
	if err != nil {
		f.logger.WithError(err).Warn("Fallback trend fetch failed")
	}
	if len(series) > 0 {
		return &models.TrendResult{
			Success:  true,
			Data:     series,
			Category: DefaultCategory,
			Fallback: true,
			Message:  fmt.Sprintf("Không có dữ liệu cho loại %q, hiển thị dữ liệu nhà mặt phố", category),
		}
	}

	return noData(category)
}

func noData(category string) *models.TrendResult {
	return &models.TrendResult{
		Success:  false,
		Data:     []models.TrendPoint{},
		Category: category,
		Fallback: false,
		Message:  "Chưa có dữ liệu biến động giá cho khu vực này",
	}
}

type rawTrendResponse struct {
	Data []rawTrendEntry `json:"data"`
}

type rawTrendEntry struct {
	CreatedDate string  `json:"created_date"`
	UnitPrice   float64 `json:"unit_price"`
	Count       int     `json:"count"`
	MinPrice    float64 `json:"min_price"`
	MaxPrice    float64 `json:"max_price"`
}

func (f *Fetcher) fetchSeries(ctx context.Context, city, district, category string) ([]models.TrendPoint, error) {
	params := url.Values{
		"city":     []string{city},
		"district": []string{district},
		"category": []string{category},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.baseURL+"/ajax/bien-dong-gia?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if f.token != "" {
		req.Header.Set("Authorization", "Bearer "+f.token)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("trend request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read trend response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("trend endpoint returned status %d", resp.StatusCode)
	}

	var raw rawTrendResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse trend response: %w", err)
	}

	return transformSeries(raw.Data), nil
}

var dateLayouts = []string{"2006-01-02T15:04:05", "2006-01-02 15:04:05", "2006-01-02"}

func parseEntryDate(value string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}

// transformSeries drops entries missing a creation date or unit price, sorts
// ascending by date and maps each entry to its charting form: month label
// "T{month}/{2-digit year}" and a rounded millions figure next to the raw
// price.
func transformSeries(entries []rawTrendEntry) []models.TrendPoint {
	type dated struct {
		entry rawTrendEntry
		date  time.Time
	}

	kept := make([]dated, 0, len(entries))
	for _, entry := range entries {
		if entry.CreatedDate == "" || entry.UnitPrice <= 0 {
			continue
		}
		date, ok := parseEntryDate(entry.CreatedDate)
		if !ok {
			continue
		}
		kept = append(kept, dated{entry: entry, date: date})
	}

	sort.Slice(kept, func(i, j int) bool { return kept[i].date.Before(kept[j].date) })

	series := make([]models.TrendPoint, 0, len(kept))
	for _, item := range kept {
		series = append(series, models.TrendPoint{
			Month:    fmt.Sprintf("T%d/%02d", int(item.date.Month()), item.date.Year()%100),
			Price:    math.Round(item.entry.UnitPrice/1e6*10) / 10,
			RawPrice: item.entry.UnitPrice,
			Count:    item.entry.Count,
			MinPrice: item.entry.MinPrice,
			MaxPrice: item.entry.MaxPrice,
			Date:     item.entry.CreatedDate,
		})
	}

	return series
}
