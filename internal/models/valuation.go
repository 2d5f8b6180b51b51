package models

// ValuationGeoLocation is the nested coordinate shape the valuation backend
// expects.
type ValuationGeoLocation struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// ValuationAddress is the nested address shape the valuation backend expects.
type ValuationAddress struct {
	City     string `json:"city"`
	District string `json:"district"`
	Ward     string `json:"ward"`
	Detail   string `json:"detail"`
}

// ValuationPayload is the request body forwarded to the valuation backend.
// Caller-supplied fields are overlaid onto a fixed default record; TransID is
// stamped from the current time on every build.
type ValuationPayload struct {
	Type        string               `json:"type"`
	TransID     int64                `json:"transId"`
	GeoLocation ValuationGeoLocation `json:"geoLocation"`
	Address     ValuationAddress     `json:"address"`
	LandArea    float64              `json:"landArea"`
	HouseArea   float64              `json:"houseArea"`
	LaneWidth   float64              `json:"laneWidth"`
	FacadeWidth float64              `json:"facadeWidth"`
	StoryNumber int                  `json:"storyNumber"`
	BedRoom     int                  `json:"bedRoom"`
	BathRoom    int                  `json:"bathRoom"`
	Legal       string               `json:"legal"`
	Utilities   []string             `json:"utilities,omitempty"`
	Strengths   []string             `json:"strengths,omitempty"`
	Weaknesses  []string             `json:"weaknesses,omitempty"`
}

// PropertyDetails are the caller-supplied overrides for BuildPayload. Pointer
// fields distinguish "omitted" from zero values.
type PropertyDetails struct {
	Type        *string  `json:"type"`
	LandArea    *float64 `json:"land_area"`
	HouseArea   *float64 `json:"house_area"`
	LaneWidth   *float64 `json:"lane_width"`
	FacadeWidth *float64 `json:"facade_width"`
	StoryNumber *int     `json:"story_number"`
	BedRoom     *int     `json:"bed_room"`
	BathRoom    *int     `json:"bath_room"`
	Legal       *string  `json:"legal"`
	Utilities   []string `json:"utilities"`
	Strengths   []string `json:"strengths"`
	Weaknesses  []string `json:"weaknesses"`
}

// AddressInfo is the address block of a create-payload request.
type AddressInfo struct {
	City     string   `json:"city"`
	District string   `json:"district"`
	Ward     string   `json:"ward"`
	Detail   string   `json:"detail"`
	Location GeoPoint `json:"location"`
}
