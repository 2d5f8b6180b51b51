package valuation

import (
	"time"

	"landradar/server/internal/models"
)

// Defaults for a payload field the caller leaves out. The valuation backend
// requires every field to be present, so omissions fall back to a typical
// town house rather than zero values.
const (
	DefaultType        = "town_house"
	DefaultLegal       = "pink_book"
	DefaultLandArea    = 45.0
	DefaultHouseArea   = 40.0
	DefaultLaneWidth   = 3.0
	DefaultFacadeWidth = 4.0
	DefaultStoryNumber = 3
	DefaultBedRoom     = 3
	DefaultBathRoom    = 2
)

// BuildPayload overlays the caller's property details onto the default
// record and reshapes the address into the nested structure the valuation
// backend expects. Deterministic except for the millisecond TransID stamp.
func BuildPayload(address models.AddressInfo, details models.PropertyDetails) models.ValuationPayload {
	payload := models.ValuationPayload{
		Type:    DefaultType,
		TransID: time.Now().UnixMilli(),
		GeoLocation: models.ValuationGeoLocation{
			Latitude:  address.Location.Latitude,
			Longitude: address.Location.Longitude,
		},
		Address: models.ValuationAddress{
			City:     address.City,
			District: address.District,
			Ward:     address.Ward,
			Detail:   address.Detail,
		},
		LandArea:    DefaultLandArea,
		HouseArea:   DefaultHouseArea,
		LaneWidth:   DefaultLaneWidth,
		FacadeWidth: DefaultFacadeWidth,
		StoryNumber: DefaultStoryNumber,
		BedRoom:     DefaultBedRoom,
		BathRoom:    DefaultBathRoom,
		Legal:       DefaultLegal,
	}

	if details.Type != nil {
		payload.Type = *details.Type
	}
	if details.LandArea != nil {
		payload.LandArea = *details.LandArea
	}
	if details.HouseArea != nil {
		payload.HouseArea = *details.HouseArea
	}
	if details.LaneWidth != nil {
		payload.LaneWidth = *details.LaneWidth
	}
	if details.FacadeWidth != nil {
		payload.FacadeWidth = *details.FacadeWidth
	}
	if details.StoryNumber != nil {
		payload.StoryNumber = *details.StoryNumber
	}
	if details.BedRoom != nil {
		payload.BedRoom = *details.BedRoom
	}
	if details.BathRoom != nil {
		payload.BathRoom = *details.BathRoom
	}
	if details.Legal != nil {
		payload.Legal = *details.Legal
	}
	if details.Utilities != nil {
		payload.Utilities = details.Utilities
	}
	if details.Strengths != nil {
		payload.Strengths = details.Strengths
	}
	if details.Weaknesses != nil {
		payload.Weaknesses = details.Weaknesses
	}

	return payload
}
