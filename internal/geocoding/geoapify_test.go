package geocoding

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

func TestResolveAddress(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/geocode/reverse", r.URL.Path)
		assert.Equal(t, "21.0167", r.URL.Query().Get("lat"))
		fmt.Fprint(w, `{"features":[{
			"properties":{"city":"Hà Nội","county":"Đống Đa","suburb":"Láng Hạ","formatted":"12 Láng Hạ, Đống Đa, Hà Nội","lat":21.0167,"lon":105.8108},
			"geometry":{"type":"Polygon","coordinates":[[[105.80,21.01],[105.82,21.01],[105.82,21.02],[105.80,21.01]]]},
			"bbox":[105.80,21.01,105.82,21.02]
		}]}`)
	}))
	defer server.Close()

	client := NewGeoapifyClient(server.URL, "test-key", time.Second, nil)

	resolution, err := client.ResolveAddress(context.Background(), 21.0167, 105.8108)
	require.NoError(t, err)

	assert.Equal(t, "Hà Nội", resolution.City)
	assert.Equal(t, "Đống Đa", resolution.District, "county fills in when district is absent")
	assert.Equal(t, "Láng Hạ", resolution.Ward)
	assert.Equal(t, []float64{105.80, 21.01, 105.82, 21.02}, resolution.BoundingBox)

	require.Len(t, resolution.Polygon, 4)
	assert.Equal(t, []float64{105.80, 21.01}, resolution.Polygon[0])
}

func TestResolveAddress_PointGeometryHasNoPolygon(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"features":[{
			"properties":{"city":"Hà Nội","formatted":"Hà Nội","lat":21.0,"lon":105.8},
			"geometry":{"type":"Point","coordinates":[105.8,21.0]}
		}]}`)
	}))
	defer server.Close()

	client := NewGeoapifyClient(server.URL, "test-key", time.Second, nil)

	resolution, err := client.ResolveAddress(context.Background(), 21.0, 105.8)
	require.NoError(t, err)
	assert.Nil(t, resolution.Polygon)
	assert.Empty(t, resolution.BoundingBox)
}
