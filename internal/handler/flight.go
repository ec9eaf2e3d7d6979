package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"aurejet/internal/domain"
	"aurejet/internal/service"
)

// FlightHandler handles HTTP requests for the catalog, feed and search.
type FlightHandler struct {
	catalog *service.CatalogService
}

// NewFlightHandler creates a new FlightHandler.
func NewFlightHandler(catalog *service.CatalogService) *FlightHandler {
	return &FlightHandler{catalog: catalog}
}

// PlaceResponse is an airport reference.
type PlaceResponse struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// AmenitiesResponse lists cabin amenities.
type AmenitiesResponse struct {
	WiFi        bool `json:"wifi"`
	PetsAllowed bool `json:"pets_allowed"`
	Catering    bool `json:"catering"`
}

// FlightResponse is the HTTP response for a flight.
type FlightResponse struct {
	ID                 string            `json:"id"`
	Route              string            `json:"route"`
	Origin             PlaceResponse     `json:"origin"`
	Destination        PlaceResponse     `json:"destination"`
	DepartureWindow    string            `json:"departure_window"`
	DepartsAt          time.Time         `json:"departs_at"`
	Aircraft           string            `json:"aircraft"`
	Seats              int               `json:"seats"`
	PriceCents         int64             `json:"price_cents"`
	PriceDisplay       string            `json:"price_display"`
	Badge              string            `json:"badge,omitempty"`
	Operator           string            `json:"operator"`
	OperatorVerified   bool              `json:"operator_verified"`
	RangeNm            int               `json:"range_nm"`
	BaggageKg          int               `json:"baggage_kg"`
	BagCapacity        int               `json:"bag_capacity"`
	Amenities          AmenitiesResponse `json:"amenities"`
	Popularity         int               `json:"popularity"`
	CancellationPolicy string            `json:"cancellation_policy"`
}

func toFlightResponse(f *domain.Flight) FlightResponse {
	return FlightResponse{
		ID:                 f.ID,
		Route:              f.Route(),
		Origin:             PlaceResponse{Code: f.OriginCode, Name: f.OriginName},
		Destination:        PlaceResponse{Code: f.DestinationCode, Name: f.DestinationName},
		DepartureWindow:    f.DepartureWindow,
		DepartsAt:          f.DepartsAt,
		Aircraft:           f.Aircraft,
		Seats:              f.Seats,
		PriceCents:         f.PriceCents,
		PriceDisplay:       service.FormatUSD(f.PriceCents),
		Badge:              f.Badge,
		Operator:           f.Operator,
		OperatorVerified:   true,
		RangeNm:            f.RangeNm,
		BaggageKg:          f.BaggageKg,
		BagCapacity:        f.BagCapacity,
		Amenities:          AmenitiesResponse{WiFi: f.WiFi, PetsAllowed: f.PetsAllowed, Catering: f.Catering},
		Popularity:         f.Popularity,
		CancellationPolicy: f.CancellationPolicy,
	}
}

func toFlightResponses(flights []*domain.Flight) []FlightResponse {
	out := make([]FlightResponse, 0, len(flights))
	for _, f := range flights {
		out = append(out, toFlightResponse(f))
	}
	return out
}

// FeedResponse is the HTTP response for the home feed.
type FeedResponse struct {
	Eyebrow        string                 `json:"eyebrow"`
	Title          string                 `json:"title"`
	NearestAirport *service.NearbyAirport `json:"nearest_airport,omitempty"`
	Chips          []service.Option       `json:"chips"`
	Flights        []FlightResponse       `json:"flights"`
}

// Feed handles GET /v1/flights
func (h *FlightHandler) Feed(c *gin.Context) {
	req := service.FeedRequest{Chip: service.FeedChip(c.Query("chip"))}

	latRaw, lngRaw := c.Query("lat"), c.Query("lng")
	if latRaw != "" || lngRaw != "" {
		lat, errLat := strconv.ParseFloat(latRaw, 64)
		lng, errLng := strconv.ParseFloat(lngRaw, 64)
		if errLat != nil || errLng != nil || lat < -90 || lat > 90 || lng < -180 || lng > 180 {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "lat and lng must be valid coordinates"})
			return
		}
		req.Lat, req.Lng = &lat, &lng
	}

	feed, err := h.catalog.Feed(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, FeedResponse{
		Eyebrow:        feed.Eyebrow,
		Title:          "Personalized Empty Legs",
		NearestAirport: feed.NearestAirport,
		Chips:          feed.Chips,
		Flights:        toFlightResponses(feed.Flights),
	})
}

// SearchFilterResponse is the HTTP shape of a search filter.
type SearchFilterResponse struct {
	Origin      string   `json:"origin"`
	Destination string   `json:"destination"`
	Window      string   `json:"window"`
	Preferences []string `json:"prefs"`
	Sort        string   `json:"sort"`
	Summary     string   `json:"summary"`
}

func toSearchFilterResponse(f service.SearchFilter) SearchFilterResponse {
	prefs := make([]string, 0, len(f.Preferences))
	for _, p := range f.Preferences {
		prefs = append(prefs, string(p))
	}
	return SearchFilterResponse{
		Origin:      f.Origin,
		Destination: f.Destination,
		Window:      string(f.Window),
		Preferences: prefs,
		Sort:        string(f.Sort),
		Summary:     f.Summary(),
	}
}

// SearchResponse is the HTTP response for a search.
type SearchResponse struct {
	Filter  SearchFilterResponse `json:"filter"`
	Summary string               `json:"summary"`
	Flights []FlightResponse     `json:"flights"`
}

// Search handles GET /v1/flights/search
func (h *FlightHandler) Search(c *gin.Context) {
	filter, err := service.ParseSearchQuery(service.SearchQuery{
		Origin:      c.Query("origin"),
		Destination: c.Query("destination"),
		Window:      c.Query("window"),
		Preferences: c.QueryArray("prefs"),
		Sort:        c.Query("sort"),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	result, err := h.catalog.Search(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, SearchResponse{
		Filter:  toSearchFilterResponse(result.Filter),
		Summary: result.Summary,
		Flights: toFlightResponses(result.Flights),
	})
}

// SearchOptionsResponse is the HTTP response for the search modal's choices.
type SearchOptionsResponse struct {
	Windows     []service.Option     `json:"windows"`
	Preferences []service.Option     `json:"prefs"`
	Sorts       []service.Option     `json:"sorts"`
	Default     SearchFilterResponse `json:"default"`
	Reset       SearchFilterResponse `json:"reset"`
}

// SearchOptions handles GET /v1/flights/search/options
func (h *FlightHandler) SearchOptions(c *gin.Context) {
	opts := h.catalog.Options()
	respondJSON(c, http.StatusOK, SearchOptionsResponse{
		Windows:     opts.Windows,
		Preferences: opts.Preferences,
		Sorts:       opts.Sorts,
		Default:     toSearchFilterResponse(opts.Default),
		Reset:       toSearchFilterResponse(opts.Reset),
	})
}

// GetFlight handles GET /v1/flights/:id
func (h *FlightHandler) GetFlight(c *gin.Context) {
	flight, err := h.catalog.GetFlight(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toFlightResponse(flight))
}
