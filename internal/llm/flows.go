package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"landradar/server/internal/apperrors"
	"landradar/server/internal/models"
)

// PlanningAnalysisInput is the dual-shape request body of the planning
// analysis route: either a coordinate pair or a pre-rendered planning image
// with its land description.
type PlanningAnalysisInput struct {
	Lat       *float64 `json:"lat"`
	Lng       *float64 `json:"lng"`
	ImagePath string   `json:"imagePath"`
	LandInfo  string   `json:"landInfo"`
}

// Validate enforces that one of the two accepted shapes is fully present.
func (in PlanningAnalysisInput) Validate() error {
	if in.Lat != nil && in.Lng != nil {
		return nil
	}
	if in.ImagePath != "" && in.LandInfo != "" {
		return nil
	}
	return apperrors.InvalidParameter("request must carry either lat/lng or imagePath/landInfo")
}

// PlanningAnalysis is the schema the model must answer with for a
// planning-impact question.
type PlanningAnalysis struct {
	Impact     string `json:"impact"` // "none", "partial" or "major"
	Summary    string `json:"summary"`
	RoadNearby bool   `json:"road_nearby"`
}

func (a PlanningAnalysis) validate() error {
	switch a.Impact {
	case "none", "partial", "major":
	default:
		return fmt.Errorf("unexpected impact value %q", a.Impact)
	}
	if a.Summary == "" {
		return fmt.Errorf("missing summary")
	}
	return nil
}

// RadarScore is the five-axis property rating.
type RadarScore struct {
	Legality  float64 `json:"legality"`
	Liquidity float64 `json:"liquidity"`
	Location  float64 `json:"location"`
	Valuation float64 `json:"valuation"`
	Dividend  float64 `json:"dividend"`
}

func (r RadarScore) validate() error {
	for name, score := range map[string]float64{
		"legality": r.Legality, "liquidity": r.Liquidity, "location": r.Location,
		"valuation": r.Valuation, "dividend": r.Dividend,
	} {
		if score < 0 || score > 10 {
			return fmt.Errorf("axis %s out of range: %v", name, score)
		}
	}
	return nil
}

// ValuationSummary is the human-readable valuation range text.
type ValuationSummary struct {
	Summary   string  `json:"summary"`
	PriceLow  float64 `json:"price_low"`
	PriceHigh float64 `json:"price_high"`
}

func (s ValuationSummary) validate() error {
	if s.Summary == "" {
		return fmt.Errorf("missing summary")
	}
	if s.PriceHigh < s.PriceLow {
		return fmt.Errorf("price range inverted: %v > %v", s.PriceLow, s.PriceHigh)
	}
	return nil
}

// Flows owns the structured prompts fed to the model. Prompt wording is
// deliberately minimal; the schemas above are the contract.
type Flows struct {
	client *Client
}

func NewFlows(client *Client) *Flows {
	return &Flows{client: client}
}

const planningSystemPrompt = "Bạn là chuyên gia phân tích quy hoạch bất động sản Việt Nam. " +
	`Trả lời bằng JSON: {"impact":"none|partial|major","summary":"...","road_nearby":true|false}.`

// AnalyzePlanning classifies how planned infrastructure affects the parcel
// described by the input.
func (f *Flows) AnalyzePlanning(ctx context.Context, input PlanningAnalysisInput, address string) (*PlanningAnalysis, error) {
	var prompt strings.Builder
	if input.Lat != nil && input.Lng != nil {
		fmt.Fprintf(&prompt, "Vị trí: %f, %f.\n", *input.Lat, *input.Lng)
	}
	if address != "" {
		fmt.Fprintf(&prompt, "Địa chỉ: %s.\n", address)
	}
	if input.ImagePath != "" {
		fmt.Fprintf(&prompt, "Ảnh quy hoạch: %s.\n", input.ImagePath)
	}
	if input.LandInfo != "" {
		fmt.Fprintf(&prompt, "Thông tin thửa đất: %s.\n", input.LandInfo)
	}
	prompt.WriteString("Phân tích ảnh hưởng quy hoạch đến thửa đất này.")

	raw, err := f.client.CompleteJSON(ctx, planningSystemPrompt, prompt.String(), 500)
	if err != nil {
		return nil, err
	}

	var analysis PlanningAnalysis
	if err := json.Unmarshal(raw, &analysis); err != nil {
		return nil, apperrors.UpstreamWrap(0, err, "model reply is not valid planning analysis JSON")
	}
	if err := analysis.validate(); err != nil {
		return nil, apperrors.UpstreamWrap(0, err, "model reply failed schema validation")
	}

	return &analysis, nil
}

const radarSystemPrompt = "Bạn là chuyên gia định giá bất động sản. " +
	`Chấm điểm 0-10 cho từng trục, trả lời JSON: {"legality":n,"liquidity":n,"location":n,"valuation":n,"dividend":n}.`

// ScoreRadar rates the property on the five radar axes.
func (f *Flows) ScoreRadar(ctx context.Context, payload models.ValuationPayload) (*RadarScore, error) {
	detail, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	raw, err := f.client.CompleteJSON(ctx, radarSystemPrompt, string(detail), 200)
	if err != nil {
		return nil, err
	}

	var score RadarScore
	if err := json.Unmarshal(raw, &score); err != nil {
		return nil, apperrors.UpstreamWrap(0, err, "model reply is not valid radar JSON")
	}
	if err := score.validate(); err != nil {
		return nil, apperrors.UpstreamWrap(0, err, "model reply failed schema validation")
	}

	return &score, nil
}

const summarySystemPrompt = "Bạn là chuyên gia định giá bất động sản. " +
	`Trả lời JSON: {"summary":"...","price_low":n,"price_high":n} với giá tính bằng tỷ đồng.`

// SummarizeValuation turns the payload and the surrounding street prices
// into a readable valuation range.
func (f *Flows) SummarizeValuation(ctx context.Context, payload models.ValuationPayload, areaPrices models.PriceTable) (*ValuationSummary, error) {
	request := struct {
		Property   models.ValuationPayload `json:"property"`
		AreaPrices models.PriceTable       `json:"area_prices"`
	}{Property: payload, AreaPrices: areaPrices}

	detail, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	raw, err := f.client.CompleteJSON(ctx, summarySystemPrompt, string(detail), 400)
	if err != nil {
		return nil, err
	}

	var summary ValuationSummary
	if err := json.Unmarshal(raw, &summary); err != nil {
		return nil, apperrors.UpstreamWrap(0, err, "model reply is not valid summary JSON")
	}
	if err := summary.validate(); err != nil {
		return nil, apperrors.UpstreamWrap(0, err, "model reply failed schema validation")
	}

	return &summary, nil
}
