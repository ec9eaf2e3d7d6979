package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode"

	"aurejet/internal/domain"
)

const (
	FieldOrigin      Field = "origin"
	FieldDestination Field = "destination"
	FieldWindow      Field = "window"
	FieldPreferences Field = "prefs"
	FieldSort        Field = "sort"
	FieldChip        Field = "chip"
)

// DepartureWindow bounds when a flight departs, relative to today.
type DepartureWindow string

const (
	WindowAnytime   DepartureWindow = "anytime"
	WindowToday     DepartureWindow = "today"
	WindowNext3Days DepartureWindow = "next_3_days"
	WindowWeekend   DepartureWindow = "weekend"
)

// CabinPreference is a required amenity.
type CabinPreference string

const (
	PreferenceWiFi          CabinPreference = "wifi"
	PreferencePetsAllowed   CabinPreference = "pets_allowed"
	PreferenceMin6Bags      CabinPreference = "min_6_bags"
	PreferenceLightCatering CabinPreference = "light_catering"
)

// SortOption orders search results.
type SortOption string

const (
	SortPrice             SortOption = "price"
	SortEarliestDeparture SortOption = "earliest_departure"
	SortPopularity        SortOption = "popularity"
)

// Option is a selectable value with its display label.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

var (
	windowOptions = []Option{
		{Value: string(WindowAnytime), Label: "Anytime"},
		{Value: string(WindowToday), Label: "Today"},
		{Value: string(WindowNext3Days), Label: "Today - Next 3 days"},
		{Value: string(WindowWeekend), Label: "Weekend"},
	}
	preferenceOptions = []Option{
		{Value: string(PreferenceWiFi), Label: "Wi-Fi"},
		{Value: string(PreferencePetsAllowed), Label: "Pets Allowed"},
		{Value: string(PreferenceMin6Bags), Label: "Min 6 Bags"},
		{Value: string(PreferenceLightCatering), Label: "Light Catering"},
	}
	sortOptions = []Option{
		{Value: string(SortPrice), Label: "Price"},
		{Value: string(SortEarliestDeparture), Label: "Earliest Departure"},
		{Value: string(SortPopularity), Label: "Popularity"},
	}
)

func labelFor(options []Option, value string) (string, bool) {
	for _, o := range options {
		if o.Value == value {
			return o.Label, true
		}
	}
	return "", false
}

// Label returns the display name of the sort.
func (s SortOption) Label() string {
	if l, ok := labelFor(sortOptions, string(s)); ok {
		return l
	}
	return string(s)
}

// SearchFilter is the state of the search modal.
type SearchFilter struct {
	Origin      string
	Destination string
	Window      DepartureWindow
	Preferences []CabinPreference
	Sort        SortOption
}

// DefaultSearchFilter is what the search modal opens with.
func DefaultSearchFilter() SearchFilter {
	return SearchFilter{
		Origin:      "Teterboro (TEB)",
		Destination: "Miami (OPF, MIA)",
		Window:      WindowNext3Days,
		Preferences: []CabinPreference{PreferenceWiFi},
		Sort:        SortPrice,
	}
}

// ResetSearchFilter is the state after the modal's reset action.
func ResetSearchFilter() SearchFilter {
	return SearchFilter{
		Window:      WindowAnytime,
		Preferences: []CabinPreference{},
		Sort:        SortPrice,
	}
}

// Summary renders the modal's active-filter line.
func (f SearchFilter) Summary() string {
	return fmt.Sprintf("%d preferences • Sort: %s", len(f.Preferences), f.Sort.Label())
}

// SearchQuery is an unvalidated search request.
type SearchQuery struct {
	Origin      string
	Destination string
	Window      string
	Preferences []string
	Sort        string
}

// ParseSearchQuery validates enum values. Empty window and sort take the reset defaults.
func ParseSearchQuery(q SearchQuery) (SearchFilter, error) {
	var result ValidationResult
	filter := ResetSearchFilter()
	filter.Origin = strings.TrimSpace(q.Origin)
	filter.Destination = strings.TrimSpace(q.Destination)

	if q.Window != "" {
		if _, ok := labelFor(windowOptions, q.Window); ok {
			filter.Window = DepartureWindow(q.Window)
		} else {
			result.add(FieldWindow, CodeInvalidValue, fmt.Sprintf("Unknown departure window %q.", q.Window))
		}
	}

	if q.Sort != "" {
		if _, ok := labelFor(sortOptions, q.Sort); ok {
			filter.Sort = SortOption(q.Sort)
		} else {
			result.add(FieldSort, CodeInvalidValue, fmt.Sprintf("Unknown sort %q.", q.Sort))
		}
	}

	seen := make(map[CabinPreference]bool)
	for _, raw := range q.Preferences {
		for _, p := range strings.Split(raw, ",") {
			p = strings.TrimSpace(p)
			if p == "" {
				continue
			}
			if _, ok := labelFor(preferenceOptions, p); !ok {
				result.add(FieldPreferences, CodeInvalidValue, fmt.Sprintf("Unknown cabin preference %q.", p))
				continue
			}
			pref := CabinPreference(p)
			if !seen[pref] {
				seen[pref] = true
				filter.Preferences = append(filter.Preferences, pref)
			}
		}
	}

	if err := result.Err(); err != nil {
		return SearchFilter{}, err
	}
	return filter, nil
}

// SearchOptions describes the search modal's choices and presets.
type SearchOptions struct {
	Windows     []Option
	Preferences []Option
	Sorts       []Option
	Default     SearchFilter
	Reset       SearchFilter
}

// Options returns the search modal's choices.
func (s *CatalogService) Options() SearchOptions {
	return SearchOptions{
		Windows:     windowOptions,
		Preferences: preferenceOptions,
		Sorts:       sortOptions,
		Default:     DefaultSearchFilter(),
		Reset:       ResetSearchFilter(),
	}
}

// SearchResult is a filtered and sorted slice of the catalog.
type SearchResult struct {
	Filter  SearchFilter
	Summary string
	Flights []*domain.Flight
}

// Search filters the catalog by route, window and preferences, then sorts it.
func (s *CatalogService) Search(ctx context.Context, filter SearchFilter) (*SearchResult, error) {
	flights, err := s.flights.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	matched := filterFlights(flights, filter, s.now())
	sortFlights(matched, filter.Sort)

	return &SearchResult{
		Filter:  filter,
		Summary: filter.Summary(),
		Flights: matched,
	}, nil
}

func filterFlights(flights []*domain.Flight, filter SearchFilter, now time.Time) []*domain.Flight {
	out := make([]*domain.Flight, 0, len(flights))
	for _, f := range flights {
		if !matchesPlace(filter.Origin, f.OriginCode, f.OriginName) {
			continue
		}
		if !matchesPlace(filter.Destination, f.DestinationCode, f.DestinationName) {
			continue
		}
		if !inWindow(f.DepartsAt, filter.Window, now) {
			continue
		}
		if !hasPreferences(f, filter.Preferences) {
			continue
		}
		out = append(out, f)
	}
	return out
}

// matchesPlace accepts an airport code appearing as a word of the query
// ("Miami (OPF, MIA)") or a case-insensitive name substring.
func matchesPlace(query, code, name string) bool {
	if query == "" {
		return true
	}

	q := strings.ToLower(query)
	if strings.Contains(strings.ToLower(name), q) {
		return true
	}

	words := strings.FieldsFunc(q, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	lowerCode := strings.ToLower(code)
	for _, w := range words {
		if w == lowerCode {
			return true
		}
	}
	return false
}

func inWindow(departsAt time.Time, window DepartureWindow, now time.Time) bool {
	departsAt = departsAt.In(now.Location())
	startOfToday := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	switch window {
	case WindowToday:
		return !departsAt.Before(startOfToday) && departsAt.Before(startOfToday.AddDate(0, 0, 1))
	case WindowNext3Days:
		return !departsAt.Before(startOfToday) && departsAt.Before(startOfToday.AddDate(0, 0, 3))
	case WindowWeekend:
		wd := departsAt.Weekday()
		return (wd == time.Saturday || wd == time.Sunday) &&
			!departsAt.Before(startOfToday) && departsAt.Before(startOfToday.AddDate(0, 0, 7))
	default:
		return true
	}
}

func hasPreferences(f *domain.Flight, prefs []CabinPreference) bool {
	for _, p := range prefs {
		switch p {
		case PreferenceWiFi:
			if !f.WiFi {
				return false
			}
		case PreferencePetsAllowed:
			if !f.PetsAllowed {
				return false
			}
		case PreferenceMin6Bags:
			if f.BagCapacity < 6 {
				return false
			}
		case PreferenceLightCatering:
			if !f.Catering {
				return false
			}
		}
	}
	return true
}

func sortFlights(flights []*domain.Flight, by SortOption) {
	switch by {
	case SortEarliestDeparture:
		sort.SliceStable(flights, func(i, j int) bool {
			return flights[i].DepartsAt.Before(flights[j].DepartsAt)
		})
	case SortPopularity:
		sort.SliceStable(flights, func(i, j int) bool {
			return flights[i].Popularity > flights[j].Popularity
		})
	default:
		sort.SliceStable(flights, func(i, j int) bool {
			return flights[i].PriceCents < flights[j].PriceCents
		})
	}
}

func invalidValue(field Field, message string) error {
	var result ValidationResult
	result.add(field, CodeInvalidValue, message)
	return result.Err()
}
