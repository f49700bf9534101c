package transport

import (
	"errors"
	"fmt"
	"net/http"

	"ministry-shop/internal/cart"
	"ministry-shop/internal/domain"
	"ministry-shop/internal/middleware"
	"ministry-shop/internal/payment"
	"ministry-shop/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ShippingRequest represents the checkout shipping details payload
type ShippingRequest struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone" validate:"required"`
	Line1   string `json:"line1" validate:"required"`
	Line2   string `json:"line2"`
	City    string `json:"city" validate:"required"`
	Country string `json:"country" validate:"required"`
}

// ConfirmPaymentRequest represents the payment confirmation payload
type ConfirmPaymentRequest struct {
	Reference string `json:"reference" validate:"required"`
}

// OrderResponse wraps a created order with any stock adjustment warnings
type OrderResponse struct {
	Order    *domain.Order `json:"order"`
	Warnings []string      `json:"warnings,omitempty"`
}

// CheckoutHandler handles the checkout wizard endpoints
type CheckoutHandler struct {
	checkoutService service.CheckoutService
	logger          *zap.Logger
}

// NewCheckoutHandler creates a new CheckoutHandler
func NewCheckoutHandler(checkoutService service.CheckoutService, logger *zap.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		checkoutService: checkoutService,
		logger:          logger,
	}
}

// RegisterRoutes registers all checkout routes
func (h *CheckoutHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/checkout", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Get("/quote", h.Quote)
		r.Post("/shipping", h.StageShipping)
		r.Post("/confirm", h.ConfirmPayment)
	})
}

// Quote handles pricing the cart ahead of payment
func (h *CheckoutHandler) Quote(w http.ResponseWriter, r *http.Request) {
	profileID, ok := profileIDFromContext(w, r, h.logger)
	if !ok {
		return
	}

	breakdown, err := h.checkoutService.Quote(r.Context(), profileID)
	if err != nil {
		h.logger.Error("Failed to quote cart", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to price cart")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, breakdown)
}

// StageShipping handles the shipping step of the checkout wizard
func (h *CheckoutHandler) StageShipping(w http.ResponseWriter, r *http.Request) {
	profileID, ok := profileIDFromContext(w, r, h.logger)
	if !ok {
		return
	}

	var req ShippingRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	err := h.checkoutService.StageShipping(r.Context(), profileID, cart.Shipping{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Line1:   req.Line1,
		Line2:   req.Line2,
		City:    req.City,
		Country: req.Country,
	})
	if err != nil {
		if errors.Is(err, cart.ErrEmptyCart) {
			middleware.RespondWithError(w, http.StatusBadRequest, "cart is empty")
			return
		}
		h.logger.Error("Failed to stage shipping details", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to save shipping details")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "shipping details saved"})
}

// ConfirmPayment handles the payment callback: the gateway reference is
// verified server-side before the order is created
func (h *CheckoutHandler) ConfirmPayment(w http.ResponseWriter, r *http.Request) {
	profileID, ok := profileIDFromContext(w, r, h.logger)
	if !ok {
		return
	}

	var req ConfirmPaymentRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	order, err := h.checkoutService.ConfirmPayment(r.Context(), profileID, req.Reference)
	if order == nil && err != nil {
		h.logger.Warn("Payment confirmation rejected",
			zap.String("reference", req.Reference),
			zap.Error(err),
		)

		switch {
		case errors.Is(err, cart.ErrEmptyCart):
			middleware.RespondWithError(w, http.StatusBadRequest, "cart is empty")
		case errors.Is(err, service.ErrShippingNotStaged):
			middleware.RespondWithError(w, http.StatusBadRequest, "shipping details are required before payment")
		case errors.Is(err, payment.ErrVerificationFailed):
			middleware.RespondWithErrorDetails(w, http.StatusPaymentRequired,
				fmt.Sprintf("payment verification failed for reference %s", req.Reference),
				map[string]interface{}{"reference": req.Reference})
		case errors.Is(err, service.ErrAmountMismatch):
			middleware.RespondWithErrorDetails(w, http.StatusPaymentRequired,
				fmt.Sprintf("paid amount does not match the order total for reference %s", req.Reference),
				map[string]interface{}{"reference": req.Reference})
		default:
			middleware.RespondWithError(w, http.StatusInternalServerError, "failed to confirm payment")
		}
		return
	}

	response := OrderResponse{Order: order}
	if err != nil {
		// The order was created but some lines could not be covered by stock
		h.logger.Warn("Order created with stock shortfalls",
			zap.String("order_id", order.ID.String()),
			zap.Error(err),
		)
		response.Warnings = []string{err.Error()}
	}

	h.logger.Info("Order created",
		zap.String("order_id", order.ID.String()),
		zap.String("order_number", order.OrderNumber),
		zap.String("reference", req.Reference),
	)
	middleware.RespondWithJSON(w, http.StatusCreated, response)
}
