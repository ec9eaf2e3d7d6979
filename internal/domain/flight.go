package domain

import "time"

// Flight represents an empty-leg charter listed in the catalog.
type Flight struct {
	ID                 string
	OriginCode         string
	OriginName         string
	DestinationCode    string
	DestinationName    string
	DepartureWindow    string // Display label, e.g. "Today, 18:40 - 19:30"
	DepartsAt          time.Time
	Aircraft           string
	Seats              int
	PriceCents         int64
	Badge              string
	Operator           string
	RangeNm            int
	BaggageKg          int
	BagCapacity        int
	WiFi               bool
	PetsAllowed        bool
	Catering           bool
	Popularity         int
	CancellationPolicy string
}

// Route renders the origin and destination codes the way the feed shows them.
func (f *Flight) Route() string {
	return f.OriginCode + " -> " + f.DestinationCode
}

// Airport is a departure point with coordinates, used to personalize the feed.
type Airport struct {
	Code string
	Name string
	Lat  float64
	Lng  float64
}
