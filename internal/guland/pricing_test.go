package guland

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

func TestPricingParams_Normalize(t *testing.T) {
	tests := []struct {
		name     string
		in       PricingParams
		expected PricingParams
	}{
		{
			name:     "Defaults fill in",
			in:       PricingParams{City: "ha-noi"},
			expected: PricingParams{City: "ha-noi", Page: 0, Size: 20},
		},
		{
			name:     "Negative page clamps to zero",
			in:       PricingParams{Page: -3, Size: 10},
			expected: PricingParams{Page: 0, Size: 10},
		},
		{
			name:     "Oversized page size clamps to cap",
			in:       PricingParams{Size: 5000},
			expected: PricingParams{Size: 100},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.in.Normalize())
		})
	}
}

func TestBuildDataTablesQuery(t *testing.T) {
	params := PricingParams{
		City:     "ha-noi",
		District: "dong-da",
		Category: "nha_mat_pho",
		Search:   "Láng Hạ",
		Page:     2,
		Size:     25,
	}

	values := BuildDataTablesQuery(params)

	assert.Equal(t, "50", values.Get("start"))
	assert.Equal(t, "25", values.Get("length"))
	assert.Equal(t, "Láng Hạ", values.Get("search[value]"))

	// One column block per declared column, with the filters on the right ones.
	for i, column := range pricingColumns {
		prefix := fmt.Sprintf("columns[%d]", i)
		assert.Equal(t, column, values.Get(prefix+"[data]"))
		assert.Equal(t, "true", values.Get(prefix+"[searchable]"))
	}
	assert.Equal(t, "ha-noi", values.Get("columns[3][search][value]"))
	assert.Equal(t, "dong-da", values.Get("columns[2][search][value]"))
	assert.Equal(t, "nha_mat_pho", values.Get("columns[5][search][value]"))
	assert.Empty(t, values.Get("columns[0][search][value]"))
}

func TestPricing_EchoesNormalizedParams(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/bang-gia/datatables", r.URL.Path)
		assert.Equal(t, "0", r.URL.Query().Get("start"))
		fmt.Fprint(w, `{"recordsTotal":0,"data":[]}`)
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second, nil)

	result, err := client.Pricing(context.Background(), PricingParams{City: "ha-noi"})
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 20, result.Params.Size)
	assert.JSONEq(t, `{"recordsTotal":0,"data":[]}`, string(result.Data))
}

func TestCheckPlanParams_Validate(t *testing.T) {
	valid := CheckPlanParams{
		Lat: 21.0, Lng: 105.8,
		LatNE: 21.1, LngNE: 105.9,
		LatSW: 20.9, LngSW: 105.7,
	}
	assert.NoError(t, valid.Validate())

	swapped := valid
	swapped.LatNE, swapped.LatSW = swapped.LatSW, swapped.LatNE
	assert.Error(t, swapped.Validate(), "inverted corners are a caller error")
}

func TestCheckPlanParams_MarkerOutsideViewportIsProxied(t *testing.T) {
	// After the user pans the map the marker stays put while the viewport
	// moves; that combination must still reach the backend.
	panned := CheckPlanParams{
		Lat: 21.0, Lng: 105.8,
		LatSW: 21.4, LngSW: 106.2,
		LatNE: 21.6, LngNE: 106.4,
	}
	assert.NoError(t, panned.Validate())
}
