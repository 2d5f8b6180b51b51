package areaprices

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"landradar/server/internal/apperrors"
	"landradar/server/internal/models"
)

// Aggregator turns a search keyword into a merged street-price table. It
// asks the suggestion endpoint for candidate detail pages, fetches them
// concurrently, and merges the extracted fragments.
//
// A failed page fetch fails the whole aggregation. Fragments are merged in
// suggestion order regardless of fetch-completion order, so repeated runs
// against the same upstream produce the same table.
type Aggregator struct {
	logger  *logrus.Logger
	baseURL string
	token   string
	client  *http.Client
	parsers []FragmentParser
}

func NewAggregator(baseURL, token string, timeout time.Duration, logger *logrus.Logger) *Aggregator {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}

	return &Aggregator{
		logger:  logger,
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client:  &http.Client{Timeout: timeout},
		parsers: DefaultParsers(),
	}
}

type suggestionResponse struct {
	Data []struct {
		Title string `json:"title"`
		Href  string `json:"href"`
	} `json:"data"`
}

// AreaPrices aggregates every price fragment reachable from the keyword.
// Zero suggestions is a valid outcome and yields an empty table.
func (a *Aggregator) AreaPrices(ctx context.Context, keyword string) (models.PriceTable, error) {
	if keyword == "" || keyword == "N/A" {
		return models.PriceTable{}, nil
	}

	links, err := a.fetchSuggestions(ctx, keyword)
	if err != nil {
		return nil, err
	}

	if len(links) == 0 {
		a.logger.WithField("keyword", keyword).Info("No suggestion links for keyword")
		return models.PriceTable{}, nil
	}

	fragments := make([]models.PriceTable, len(links))
	group, groupCtx := errgroup.WithContext(ctx)
	for i, link := range links {
		i, link := i, link
		group.Go(func() error {
			fragment, err := a.fetchPageFragments(groupCtx, link)
			if err != nil {
				return err
			}
			fragments[i] = fragment
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}

	merged := models.PriceTable{}
	for _, fragment := range fragments {
		for label, price := range fragment {
			merged[label] = price
		}
	}

	a.logger.WithFields(logrus.Fields{
		"keyword": keyword,
		"pages":   len(links),
		"entries": len(merged),
	}).Info("Aggregated area prices")

	return merged, nil
}

func (a *Aggregator) fetchSuggestions(ctx context.Context, keyword string) ([]string, error) {
	params := url.Values{"keyword": []string{keyword}}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"/ajax/suggest-khu-vuc?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if a.token != "" {
		req.Header.Set("Authorization", "Bearer "+a.token)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		a.logger.WithError(err).Error("Suggestion request failed")
		return nil, apperrors.UpstreamWrap(0, err, "suggestion request failed")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.UpstreamWrap(resp.StatusCode, err, "failed to read suggestion response")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.Upstream(resp.StatusCode, "suggestion endpoint returned status %d", resp.StatusCode)
	}

	var result suggestionResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, apperrors.UpstreamWrap(resp.StatusCode, err, "failed to parse suggestion response")
	}

	links := make([]string, 0, len(result.Data))
	for _, suggestion := range result.Data {
		if suggestion.Href == "" {
			continue
		}
		links = append(links, a.resolveHref(suggestion.Href))
	}

	return links, nil
}

func (a *Aggregator) resolveHref(href string) string {
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	return a.baseURL + "/" + strings.TrimLeft(href, "/")
}

func (a *Aggregator) fetchPageFragments(ctx context.Context, pageURL string) (models.PriceTable, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		a.logger.WithError(err).WithField("url", pageURL).Error("Detail page fetch failed")
		return nil, apperrors.UpstreamWrap(0, err, "detail page fetch failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.Upstream(resp.StatusCode, "detail page returned status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, apperrors.UpstreamWrap(resp.StatusCode, err, "failed to parse detail page")
	}

	fragment := models.PriceTable{}
	for _, parser := range a.parsers {
		partial := parser.Parse(doc)
		for label, price := range partial {
			fragment[label] = price
		}
		a.logger.WithFields(logrus.Fields{
			"url":     pageURL,
			"layout":  parser.Name(),
			"entries": len(partial),
		}).Debug("Parsed page fragment")
	}

	return fragment, nil
}
