package models

// PriceTable maps a street, segment or category label to its listed price
// string. Fragments from several source pages are merged into one table;
// duplicate labels are resolved by a fixed precedence order (suggestion
// order), not by fetch-completion order.
type PriceTable map[string]string

// TrendPoint is one charting sample of the price-trend series.
type TrendPoint struct {
	Month    string  `json:"month"`     // "T{month}/{2-digit year}"
	Price    float64 `json:"price"`     // rounded, in millions per unit
	RawPrice float64 `json:"raw_price"` // as returned by the provider
	Count    int     `json:"count"`
	MinPrice float64 `json:"min_price"`
	MaxPrice float64 `json:"max_price"`
	Date     string  `json:"date"`
}

// TrendResult is the full price-trend response envelope. Success is false
// when the series is empty even after the category fallback; that case is
// still an HTTP 200.
type TrendResult struct {
	Success  bool         `json:"success"`
	Data     []TrendPoint `json:"data"`
	Category string       `json:"category"`
	Fallback bool         `json:"fallback"`
	Message  string       `json:"message,omitempty"`
}
