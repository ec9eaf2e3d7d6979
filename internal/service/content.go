package service

import (
	"time"

	"aurejet/internal/domain"
)

// SplashHold is how long the launch screen stays up before onboarding.
const SplashHold = 2200 * time.Millisecond

// LaunchContent is the splash screen payload.
type LaunchContent struct {
	Brand      string
	Tagline    string
	Hold       time.Duration
	NextScreen domain.Screen
}

// OnboardingContent is the onboarding carousel payload.
type OnboardingContent struct {
	Cards         []domain.OnboardingCard
	ContinueLabel string
	FinalLabel    string
	SkipLabel     string
	NextScreen    domain.Screen
}

// EmptyState is what a screen shows when its flight no longer resolves.
type EmptyState struct {
	Title       string
	Copy        string
	ActionLabel string
	ActionRoute domain.Screen
}

// FlightUnavailable is the empty state for a flight that no longer resolves.
var FlightUnavailable = EmptyState{
	Title:       "Flight no longer available",
	Copy:        "Availability is live and may change until booking is confirmed.",
	ActionLabel: "Back to Feed",
	ActionRoute: domain.ScreenHomeFeed,
}

// NavigationEdge is an allowed transition between screens.
type NavigationEdge struct {
	From  domain.Screen
	To    domain.Screen
	Modal bool
}

var navigationEdges = []NavigationEdge{
	{From: domain.ScreenSplash, To: domain.ScreenOnboarding},
	{From: domain.ScreenOnboarding, To: domain.ScreenAuthGateway},
	{From: domain.ScreenAuthGateway, To: domain.ScreenHomeFeed},
	{From: domain.ScreenHomeFeed, To: domain.ScreenSearchFilter, Modal: true},
	{From: domain.ScreenHomeFeed, To: domain.ScreenFlightDetail},
	{From: domain.ScreenSearchFilter, To: domain.ScreenHomeFeed},
	{From: domain.ScreenFlightDetail, To: domain.ScreenCheckoutTraveler},
	{From: domain.ScreenFlightDetail, To: domain.ScreenHomeFeed},
	{From: domain.ScreenCheckoutTraveler, To: domain.ScreenCheckoutPayment},
	{From: domain.ScreenCheckoutTraveler, To: domain.ScreenFlightDetail},
	{From: domain.ScreenCheckoutTraveler, To: domain.ScreenHomeFeed},
	{From: domain.ScreenCheckoutPayment, To: domain.ScreenCheckoutTraveler},
	{From: domain.ScreenCheckoutPayment, To: domain.ScreenHomeFeed},
}

var screens = []domain.Screen{
	domain.ScreenSplash,
	domain.ScreenOnboarding,
	domain.ScreenAuthGateway,
	domain.ScreenHomeFeed,
	domain.ScreenSearchFilter,
	domain.ScreenFlightDetail,
	domain.ScreenCheckoutTraveler,
	domain.ScreenCheckoutPayment,
}

// NavigationGraph is the app's screen graph.
type NavigationGraph struct {
	Initial domain.Screen
	Screens []domain.Screen
	Edges   []NavigationEdge
}

// ContentService serves static app content.
type ContentService struct{}

// NewContentService creates a new ContentService.
func NewContentService() *ContentService {
	return &ContentService{}
}

// Launch returns the splash payload.
func (s *ContentService) Launch() LaunchContent {
	return LaunchContent{
		Brand:      "AUREJET",
		Tagline:    "PRIVATE EMPTY-LEG ACCESS",
		Hold:       SplashHold,
		NextScreen: domain.ScreenOnboarding,
	}
}

// Onboarding returns the three onboarding cards.
func (s *ContentService) Onboarding() OnboardingContent {
	return OnboardingContent{
		Cards: []domain.OnboardingCard{
			{
				Eyebrow:     "Discovery",
				Title:       "Premium Empty Legs, Curated Daily",
				Description: "Explore routes selected for your nearest airport and preferred departure windows.",
			},
			{
				Eyebrow:     "Speed",
				Title:       "Reserve In Minutes, Not Hours",
				Description: "Luxury booking flow designed for decisive travel with transparent pricing at every step.",
			},
			{
				Eyebrow:     "Trust",
				Title:       "Verified Operators, Protected Payments",
				Description: "Every listing is verification-checked and processed with enterprise-grade security controls.",
			},
		},
		ContinueLabel: "Continue",
		FinalLabel:    "Continue to Sign In",
		SkipLabel:     "Skip",
		NextScreen:    domain.ScreenAuthGateway,
	}
}

// Navigation returns the screen graph.
func (s *ContentService) Navigation() NavigationGraph {
	edges := make([]NavigationEdge, len(navigationEdges))
	copy(edges, navigationEdges)
	all := make([]domain.Screen, len(screens))
	copy(all, screens)

	return NavigationGraph{
		Initial: domain.ScreenSplash,
		Screens: all,
		Edges:   edges,
	}
}

// CanNavigate reports whether the graph has an edge from one screen to another.
func (s *ContentService) CanNavigate(from, to domain.Screen) (bool, error) {
	if !isScreen(from) || !isScreen(to) {
		return false, ErrInvalidScreen
	}
	for _, e := range navigationEdges {
		if e.From == from && e.To == to {
			return true, nil
		}
	}
	return false, nil
}

func isScreen(s domain.Screen) bool {
	for _, known := range screens {
		if known == s {
			return true
		}
	}
	return false
}
