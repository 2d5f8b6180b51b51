package guland

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/sirupsen/logrus"
)

// pricingColumns is the column layout of the upstream DataTables pricing
// endpoint. Order matters: the index in this slice is the column index in
// the query string.
var pricingColumns = []string{"street", "ward", "district", "city", "price", "category"}

const (
	defaultPricingSize = 20
	maxPricingSize     = 100
)

// PricingParams are the simplified parameters the route accepts. Normalize
// fills defaults and clamps the page size before translation.
type PricingParams struct {
	City     string `json:"city" form:"city"`
	District string `json:"district" form:"district"`
	Category string `json:"category" form:"category"`
	Search   string `json:"search" form:"search"`
	Page     int    `json:"page" form:"page"`
	Size     int    `json:"size" form:"size"`
}

func (p PricingParams) Normalize() PricingParams {
	if p.Page < 0 {
		p.Page = 0
	}
	if p.Size <= 0 {
		p.Size = defaultPricingSize
	}
	if p.Size > maxPricingSize {
		p.Size = maxPricingSize
	}
	return p
}

// PricingResult carries the raw upstream payload next to the normalized
// params that produced it, as a debug aid for callers.
type PricingResult struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Params  PricingParams   `json:"params"`
}

// BuildDataTablesQuery translates simplified params into the DataTables
// query string the upstream table endpoint expects.
func BuildDataTablesQuery(p PricingParams) url.Values {
	values := url.Values{}
	values.Set("draw", "1")
	values.Set("start", strconv.Itoa(p.Page*p.Size))
	values.Set("length", strconv.Itoa(p.Size))
	values.Set("search[value]", p.Search)
	values.Set("search[regex]", "false")

	for i, column := range pricingColumns {
		prefix := fmt.Sprintf("columns[%d]", i)
		values.Set(prefix+"[data]", column)
		values.Set(prefix+"[name]", column)
		values.Set(prefix+"[searchable]", "true")
		values.Set(prefix+"[orderable]", "true")
		values.Set(prefix+"[search][value]", columnFilter(p, column))
		values.Set(prefix+"[search][regex]", "false")
	}

	values.Set("order[0][column]", "0")
	values.Set("order[0][dir]", "asc")

	return values
}

func columnFilter(p PricingParams, column string) string {
	switch column {
	case "city":
		return p.City
	case "district":
		return p.District
	case "category":
		return p.Category
	default:
		return ""
	}
}

// Pricing queries the upstream pricing table and echoes the normalized
// params alongside the raw payload.
func (c *Client) Pricing(ctx context.Context, params PricingParams) (*PricingResult, error) {
	normalized := params.Normalize()
	query := BuildDataTablesQuery(normalized)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/bang-gia/datatables?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	raw, err := c.do(req, "pricing")
	if err != nil {
		return nil, err
	}

	c.logger.WithFields(logrus.Fields{
		"city":     normalized.City,
		"district": normalized.District,
		"page":     normalized.Page,
		"size":     normalized.Size,
	}).Info("Fetched pricing table")

	return &PricingResult{Success: true, Data: raw, Params: normalized}, nil
}
