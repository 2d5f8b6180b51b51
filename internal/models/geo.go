package models

// GeoPoint is a WGS84 coordinate pair. Every location-based call starts here.
type GeoPoint struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// AddressResolution is the parsed result of a reverse-geocode lookup.
// It is rebuilt on every request and never stored.
type AddressResolution struct {
	City             string      `json:"city"`
	District         string      `json:"district"`
	Ward             string      `json:"ward"`
	FormattedAddress string      `json:"formatted_address"`
	Coordinates      GeoPoint    `json:"coordinates"`
	BoundingBox      []float64   `json:"bounding_box,omitempty"` // [minLng, minLat, maxLng, maxLat]
	Polygon          [][]float64 `json:"polygon,omitempty"`      // outer ring, [lng, lat] pairs
}

// PlanningQuery carries the parameters the planning backend expects. The
// server validates required fields but does not interpret the rest.
type PlanningQuery struct {
	MarkerLat  float64 `json:"marker_lat" form:"marker_lat"`
	MarkerLng  float64 `json:"marker_lng" form:"marker_lng"`
	ProvinceID int     `json:"province_id" form:"province_id"`
	DistrictID int     `json:"district_id" form:"district_id"`
	WardID     int     `json:"ward_id" form:"ward_id"`
	MapType    string  `json:"map_type" form:"map_type"`
	Zoom       int     `json:"zoom" form:"zoom"`
}
