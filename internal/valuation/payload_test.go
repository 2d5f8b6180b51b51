package valuation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"landradar/server/internal/models"
)

func testAddress() models.AddressInfo {
	return models.AddressInfo{
		City:     "Hà Nội",
		District: "Đống Đa",
		Ward:     "Láng Hạ",
		Detail:   "12 Láng Hạ",
		Location: models.GeoPoint{Latitude: 21.0167, Longitude: 105.8108},
	}
}

func TestBuildPayload_Defaults(t *testing.T) {
	payload := BuildPayload(testAddress(), models.PropertyDetails{})

	assert.Equal(t, "town_house", payload.Type)
	assert.Equal(t, "pink_book", payload.Legal)
	assert.Equal(t, 45.0, payload.LandArea)
	assert.Equal(t, 40.0, payload.HouseArea)
	assert.Equal(t, 3.0, payload.LaneWidth)
	assert.Equal(t, 4.0, payload.FacadeWidth)
	assert.Equal(t, 3, payload.StoryNumber)
	assert.Equal(t, 3, payload.BedRoom)
	assert.Equal(t, 2, payload.BathRoom)
	assert.NotZero(t, payload.TransID)

	assert.Equal(t, "Hà Nội", payload.Address.City)
	assert.Equal(t, "Đống Đa", payload.Address.District)
	assert.Equal(t, "Láng Hạ", payload.Address.Ward)
	assert.Equal(t, 21.0167, payload.GeoLocation.Latitude)
	assert.Equal(t, 105.8108, payload.GeoLocation.Longitude)
}

func TestBuildPayload_OverridesWinOnEveryOverlappingField(t *testing.T) {
	propType := "villa"
	legal := "red_book"
	landArea := 120.0
	houseArea := 200.0
	laneWidth := 8.0
	facadeWidth := 10.0
	stories := 4
	bedrooms := 5
	bathrooms := 4

	details := models.PropertyDetails{
		Type:        &propType,
		Legal:       &legal,
		LandArea:    &landArea,
		HouseArea:   &houseArea,
		LaneWidth:   &laneWidth,
		FacadeWidth: &facadeWidth,
		StoryNumber: &stories,
		BedRoom:     &bedrooms,
		BathRoom:    &bathrooms,
		Utilities:   []string{"elevator"},
		Strengths:   []string{"corner lot"},
		Weaknesses:  []string{"narrow lane"},
	}

	payload := BuildPayload(testAddress(), details)

	assert.Equal(t, "villa", payload.Type)
	assert.Equal(t, "red_book", payload.Legal)
	assert.Equal(t, 120.0, payload.LandArea)
	assert.Equal(t, 200.0, payload.HouseArea)
	assert.Equal(t, 8.0, payload.LaneWidth)
	assert.Equal(t, 10.0, payload.FacadeWidth)
	assert.Equal(t, 4, payload.StoryNumber)
	assert.Equal(t, 5, payload.BedRoom)
	assert.Equal(t, 4, payload.BathRoom)
	assert.Equal(t, []string{"elevator"}, payload.Utilities)
	assert.Equal(t, []string{"corner lot"}, payload.Strengths)
	assert.Equal(t, []string{"narrow lane"}, payload.Weaknesses)
}

func TestBuildPayload_PartialOverride(t *testing.T) {
	legal := "sale_contract"
	payload := BuildPayload(testAddress(), models.PropertyDetails{Legal: &legal})

	assert.Equal(t, "sale_contract", payload.Legal)
	// Omitted fields keep their defaults.
	assert.Equal(t, "town_house", payload.Type)
	assert.Equal(t, 45.0, payload.LandArea)
}
