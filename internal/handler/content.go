package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"aurejet/internal/domain"
	"aurejet/internal/service"
)

// ContentHandler serves launch, onboarding and navigation content.
type ContentHandler struct {
	content *service.ContentService
}

// NewContentHandler creates a new ContentHandler.
func NewContentHandler(content *service.ContentService) *ContentHandler {
	return &ContentHandler{content: content}
}

// LaunchResponse is the splash payload.
type LaunchResponse struct {
	Brand      string `json:"brand"`
	Tagline    string `json:"tagline"`
	HoldMs     int64  `json:"hold_ms"`
	NextScreen string `json:"next_screen"`
}

// Launch handles GET /v1/launch
func (h *ContentHandler) Launch(c *gin.Context) {
	l := h.content.Launch()
	respondJSON(c, http.StatusOK, LaunchResponse{
		Brand:      l.Brand,
		Tagline:    l.Tagline,
		HoldMs:     l.Hold.Milliseconds(),
		NextScreen: string(l.NextScreen),
	})
}

// OnboardingCardResponse is one onboarding card.
type OnboardingCardResponse struct {
	Eyebrow     string `json:"eyebrow"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// OnboardingResponse is the onboarding carousel payload.
type OnboardingResponse struct {
	Cards         []OnboardingCardResponse `json:"cards"`
	ContinueLabel string                   `json:"continue_label"`
	FinalLabel    string                   `json:"final_label"`
	SkipLabel     string                   `json:"skip_label"`
	NextScreen    string                   `json:"next_screen"`
}

// Onboarding handles GET /v1/onboarding
func (h *ContentHandler) Onboarding(c *gin.Context) {
	o := h.content.Onboarding()
	cards := make([]OnboardingCardResponse, len(o.Cards))
	for i, card := range o.Cards {
		cards[i] = OnboardingCardResponse{
			Eyebrow:     card.Eyebrow,
			Title:       card.Title,
			Description: card.Description,
		}
	}

	respondJSON(c, http.StatusOK, OnboardingResponse{
		Cards:         cards,
		ContinueLabel: o.ContinueLabel,
		FinalLabel:    o.FinalLabel,
		SkipLabel:     o.SkipLabel,
		NextScreen:    string(o.NextScreen),
	})
}

// NavigationEdgeResponse is one allowed screen transition.
type NavigationEdgeResponse struct {
	From  string `json:"from"`
	To    string `json:"to"`
	Modal bool   `json:"modal"`
}

// NavigationResponse is the screen graph.
type NavigationResponse struct {
	Initial string                   `json:"initial"`
	Screens []string                 `json:"screens"`
	Edges   []NavigationEdgeResponse `json:"edges"`
}

// CanNavigateResponse answers a single transition query.
type CanNavigateResponse struct {
	From        string `json:"from"`
	To          string `json:"to"`
	CanNavigate bool   `json:"can_navigate"`
}

// Navigation handles GET /v1/navigation
// With ?from=&to= it reports whether that single transition is allowed.
func (h *ContentHandler) Navigation(c *gin.Context) {
	from, to := c.Query("from"), c.Query("to")
	if from != "" || to != "" {
		ok, err := h.content.CanNavigate(domain.Screen(from), domain.Screen(to))
		if err != nil {
			respondError(c, err)
			return
		}
		respondJSON(c, http.StatusOK, CanNavigateResponse{From: from, To: to, CanNavigate: ok})
		return
	}

	g := h.content.Navigation()
	resp := NavigationResponse{
		Initial: string(g.Initial),
		Screens: make([]string, len(g.Screens)),
		Edges:   make([]NavigationEdgeResponse, len(g.Edges)),
	}
	for i, s := range g.Screens {
		resp.Screens[i] = string(s)
	}
	for i, e := range g.Edges {
		resp.Edges[i] = NavigationEdgeResponse{From: string(e.From), To: string(e.To), Modal: e.Modal}
	}

	respondJSON(c, http.StatusOK, resp)
}
