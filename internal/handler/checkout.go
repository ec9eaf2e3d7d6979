package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"aurejet/internal/domain"
	"aurejet/internal/middleware"
	"aurejet/internal/service"
)

// maxSubmitWait bounds how long POST .../submit?wait=true holds the request open.
const maxSubmitWait = 8 * time.Second

// CheckoutHandler handles HTTP requests for the checkout flow.
type CheckoutHandler struct {
	checkout *service.CheckoutService
	receipts *service.ReceiptService
}

// NewCheckoutHandler creates a new CheckoutHandler.
func NewCheckoutHandler(checkout *service.CheckoutService, receipts *service.ReceiptService) *CheckoutHandler {
	return &CheckoutHandler{checkout: checkout, receipts: receipts}
}

// TravelerRequest is the traveler form.
type TravelerRequest struct {
	LeadName       string `json:"lead_name"`
	PassengerCount int    `json:"passenger_count"`
	DocumentType   string `json:"document_type"`
	SpecialRequest string `json:"special_request"`
	ContactEmail   string `json:"contact_email"`
}

func (r TravelerRequest) toDomain() domain.TravelerDetails {
	return domain.TravelerDetails{
		LeadName:       r.LeadName,
		PassengerCount: r.PassengerCount,
		DocumentType:   parseDocumentType(r.DocumentType),
		SpecialRequest: r.SpecialRequest,
		ContactEmail:   r.ContactEmail,
	}
}

// parseDocumentType maps wire values; anything unknown is passed through for the validator to reject.
func parseDocumentType(raw string) domain.DocumentType {
	switch strings.ToLower(raw) {
	case "":
		return ""
	case "passport":
		return domain.DocumentTypePassport
	case "national_id":
		return domain.DocumentTypeNationalID
	default:
		return domain.DocumentType(strings.ToUpper(raw))
	}
}

func parsePaymentMethod(raw string) (domain.PaymentMethod, error) {
	switch raw {
	case "card":
		return domain.PaymentMethodCard, nil
	case "bank_request":
		return domain.PaymentMethodBankRequest, nil
	case "wallet_credits":
		return domain.PaymentMethodWalletCredits, nil
	default:
		return "", service.ErrInvalidPaymentMethod
	}
}

// ValidateTravelerRequest is the HTTP request body for step-one validation.
type ValidateTravelerRequest struct {
	FlightID string          `json:"flight_id" binding:"required"`
	Traveler TravelerRequest `json:"traveler"`
}

// ValidateTravelerResponse is the HTTP response for step-one validation.
type ValidateTravelerResponse struct {
	Valid  bool                                 `json:"valid"`
	Fields map[service.Field]service.FieldError `json:"fields"`
	Next   string                               `json:"next,omitempty"`
}

// ValidateTraveler handles POST /v1/checkout/traveler/validate
func (h *CheckoutHandler) ValidateTraveler(c *gin.Context) {
	var req ValidateTravelerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	result, err := h.checkout.ValidateTraveler(c.Request.Context(), req.FlightID, req.Traveler.toDomain())
	if err != nil {
		respondError(c, err)
		return
	}

	resp := ValidateTravelerResponse{Valid: result.Valid(), Fields: result.Errors}
	if resp.Fields == nil {
		resp.Fields = map[service.Field]service.FieldError{}
	}
	if resp.Valid {
		resp.Next = string(domain.ScreenCheckoutPayment)
	}
	respondJSON(c, http.StatusOK, resp)
}

// StartCheckoutRequest is the HTTP request body for opening a checkout session.
type StartCheckoutRequest struct {
	FlightID string          `json:"flight_id" binding:"required"`
	Traveler TravelerRequest `json:"traveler"`
}

// TravelerResponse is the traveler summary shown on the payment step.
type TravelerResponse struct {
	LeadName       string `json:"lead_name"`
	PassengerCount int    `json:"passenger_count"`
	DocumentType   string `json:"document_type"`
	SpecialRequest string `json:"special_request,omitempty"`
	ContactEmail   string `json:"contact_email"`
}

// FareResponse is the fare breakdown.
type FareResponse struct {
	BaseFareCents   int64  `json:"base_fare_cents"`
	TaxesFeesCents  int64  `json:"taxes_fees_cents"`
	AddOnCents      int64  `json:"add_on_cents"`
	TotalCents      int64  `json:"total_cents"`
	BaseFareDisplay string `json:"base_fare_display"`
	TaxesDisplay    string `json:"taxes_fees_display"`
	AddOnDisplay    string `json:"add_on_display"`
	TotalDisplay    string `json:"total_display"`
}

// PaymentStateResponse is the payment state machine's observable state.
type PaymentStateResponse struct {
	Status         string `json:"status"`
	StatusLabel    string `json:"status_label"`
	StatusText     string `json:"status_text,omitempty"`
	AttemptNumber  int    `json:"attempt_number"`
	IdempotencyKey string `json:"idempotency_key"`
	Message        string `json:"message,omitempty"`
	ActionLabel    string `json:"action_label"`
}

// ConfirmationResponse is the booking confirmation.
type ConfirmationResponse struct {
	ID             string       `json:"id"`
	SessionID      string       `json:"session_id"`
	FlightID       string       `json:"flight_id"`
	Route          string       `json:"route"`
	Aircraft       string       `json:"aircraft"`
	LeadName       string       `json:"lead_name"`
	PassengerCount int          `json:"passenger_count"`
	Fare           FareResponse `json:"fare"`
	PaymentMethod  string       `json:"payment_method"`
	IdempotencyKey string       `json:"idempotency_key"`
	Attempts       int          `json:"attempts"`
	ConfirmedAt    time.Time    `json:"confirmed_at"`
	ReceiptText    string       `json:"receipt_text,omitempty"`
}

// CheckoutResponse is the HTTP response for checkout session operations.
type CheckoutResponse struct {
	SessionID          string                `json:"session_id"`
	FlightID           string                `json:"flight_id"`
	Route              string                `json:"route"`
	Aircraft           string                `json:"aircraft"`
	GuestID            string                `json:"guest_id,omitempty"`
	Traveler           TravelerResponse      `json:"traveler"`
	AddOnSelected      bool                  `json:"add_on_selected"`
	PaymentMethod      string                `json:"payment_method"`
	PaymentMethodLabel string                `json:"payment_method_label"`
	Fare               FareResponse          `json:"fare"`
	Payment            PaymentStateResponse  `json:"payment"`
	SecurityNote       string                `json:"security_note"`
	Confirmation       *ConfirmationResponse `json:"confirmation,omitempty"`
	CreatedAt          time.Time             `json:"created_at"`
	ExpiresAt          time.Time             `json:"expires_at"`
}

func toFareResponse(q domain.FareQuote) FareResponse {
	addOn := "Add"
	if q.AddOnCents > 0 {
		addOn = service.FormatUSD(q.AddOnCents)
	}
	return FareResponse{
		BaseFareCents:   q.BaseFareCents,
		TaxesFeesCents:  q.TaxesFeesCents,
		AddOnCents:      q.AddOnCents,
		TotalCents:      q.TotalCents,
		BaseFareDisplay: service.FormatUSD(q.BaseFareCents),
		TaxesDisplay:    service.FormatUSD(q.TaxesFeesCents),
		AddOnDisplay:    addOn,
		TotalDisplay:    service.FormatUSD(q.TotalCents),
	}
}

func wirePaymentMethod(m domain.PaymentMethod) string {
	return strings.ToLower(string(m))
}

func toConfirmationResponse(c *domain.BookingConfirmation) *ConfirmationResponse {
	if c == nil {
		return nil
	}
	return &ConfirmationResponse{
		ID:             c.ID,
		SessionID:      c.SessionID,
		FlightID:       c.FlightID,
		Route:          c.Route,
		Aircraft:       c.Aircraft,
		LeadName:       c.Traveler.LeadName,
		PassengerCount: c.Traveler.PassengerCount,
		Fare:           toFareResponse(c.Fare),
		PaymentMethod:  wirePaymentMethod(c.PaymentMethod),
		IdempotencyKey: c.IdempotencyKey,
		Attempts:       c.Attempts,
		ConfirmedAt:    c.ConfirmedAt,
	}
}

func toCheckoutResponse(s *service.CheckoutSnapshot) CheckoutResponse {
	return CheckoutResponse{
		SessionID: s.SessionID,
		FlightID:  s.FlightID,
		Route:     s.Route,
		Aircraft:  s.Aircraft,
		GuestID:   s.GuestID,
		Traveler: TravelerResponse{
			LeadName:       s.Traveler.LeadName,
			PassengerCount: s.Traveler.PassengerCount,
			DocumentType:   strings.ToLower(string(s.Traveler.DocumentType)),
			SpecialRequest: s.Traveler.SpecialRequest,
			ContactEmail:   s.Traveler.ContactEmail,
		},
		AddOnSelected:      s.AddOnSelected,
		PaymentMethod:      wirePaymentMethod(s.PaymentMethod),
		PaymentMethodLabel: service.PaymentMethodLabel(s.PaymentMethod),
		Fare:               toFareResponse(s.Fare),
		Payment: PaymentStateResponse{
			Status:         strings.ToLower(string(s.Payment.Status)),
			StatusLabel:    s.Payment.Status.Label(),
			StatusText:     s.StatusText,
			AttemptNumber:  s.Payment.AttemptNumber,
			IdempotencyKey: s.Payment.IdempotencyKey,
			Message:        s.Payment.Message,
			ActionLabel:    s.ActionLabel,
		},
		SecurityNote: service.SecurityNote,
		Confirmation: toConfirmationResponse(s.Confirmation),
		CreatedAt:    s.CreatedAt,
		ExpiresAt:    s.ExpiresAt,
	}
}

// StartCheckout handles POST /v1/checkout/sessions
func (h *CheckoutHandler) StartCheckout(c *gin.Context) {
	var req StartCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	session, err := h.checkout.StartCheckout(c.Request.Context(), service.StartCheckoutRequest{
		FlightID: req.FlightID,
		Traveler: req.Traveler.toDomain(),
		GuestID:  middleware.GuestID(c),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Location", "/v1/checkout/sessions/"+session.SessionID)
	respondJSON(c, http.StatusCreated, toCheckoutResponse(session))
}

// GetSession handles GET /v1/checkout/sessions/:id
func (h *CheckoutHandler) GetSession(c *gin.Context) {
	session, err := h.checkout.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toCheckoutResponse(session))
}

// SetAddOnRequest is the HTTP request body for the add-on toggle.
type SetAddOnRequest struct {
	Selected *bool `json:"selected" binding:"required"`
}

// SetAddOn handles PUT /v1/checkout/sessions/:id/add-on
func (h *CheckoutHandler) SetAddOn(c *gin.Context) {
	var req SetAddOnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "selected is required"})
		return
	}

	session, err := h.checkout.SetAddOn(c.Request.Context(), c.Param("id"), *req.Selected)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toCheckoutResponse(session))
}

// SetPaymentMethodRequest is the HTTP request body for choosing a payment method.
type SetPaymentMethodRequest struct {
	Method string `json:"method" binding:"required"`
}

// SetPaymentMethod handles PUT /v1/checkout/sessions/:id/payment-method
func (h *CheckoutHandler) SetPaymentMethod(c *gin.Context) {
	var req SetPaymentMethodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "method is required"})
		return
	}

	method, err := parsePaymentMethod(req.Method)
	if err != nil {
		respondError(c, err)
		return
	}

	session, err := h.checkout.SetPaymentMethod(c.Request.Context(), c.Param("id"), method)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toCheckoutResponse(session))
}

// Submit handles POST /v1/checkout/sessions/:id/submit
// With ?wait=true the response is held until the attempt resolves.
func (h *CheckoutHandler) Submit(c *gin.Context) {
	sessionID := c.Param("id")

	session, err := h.checkout.Submit(c.Request.Context(), sessionID)
	if err != nil {
		respondError(c, err)
		return
	}

	if c.Query("wait") != "true" {
		respondJSON(c, http.StatusAccepted, toCheckoutResponse(session))
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), maxSubmitWait)
	defer cancel()

	session, err = h.checkout.Await(ctx, sessionID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toCheckoutResponse(session))
}

// GetReceipt handles GET /v1/checkout/sessions/:id/receipt
func (h *CheckoutHandler) GetReceipt(c *gin.Context) {
	confirmation, err := h.checkout.Receipt(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	text := h.receipts.FormatReceipt(confirmation)
	if c.Query("format") == "text" {
		c.String(http.StatusOK, text)
		return
	}

	resp := toConfirmationResponse(confirmation)
	resp.ReceiptText = text
	respondJSON(c, http.StatusOK, resp)
}

// CloseSession handles DELETE /v1/checkout/sessions/:id
func (h *CheckoutHandler) CloseSession(c *gin.Context) {
	if err := h.checkout.Close(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
