package transport

import (
	"errors"
	"net/http"

	"ministry-shop/internal/middleware"
	"ministry-shop/internal/repository"
	"ministry-shop/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AddressRequest represents a saved address payload
type AddressRequest struct {
	Name    string `json:"name" validate:"required"`
	Phone   string `json:"phone" validate:"required"`
	Line1   string `json:"line1" validate:"required"`
	Line2   string `json:"line2"`
	City    string `json:"city" validate:"required"`
	Country string `json:"country" validate:"required"`
}

// WishlistRequest represents an add-to-wishlist payload
type WishlistRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
}

// ReviewRequest represents a product review payload
type ReviewRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Rating    int    `json:"rating" validate:"required,gte=1,lte=5"`
	Comment   string `json:"comment" validate:"max=2000"`
}

// ContactRequest represents a contact form submission
type ContactRequest struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Subject string `json:"subject" validate:"required"`
	Body    string `json:"body" validate:"required,max=5000"`
}

// AccountHandler handles the logged-in customer's account endpoints plus the
// public contact form
type AccountHandler struct {
	accountService service.AccountService
	orderService   service.OrderService
	catalogService service.CatalogService
	logger         *zap.Logger
}

// NewAccountHandler creates a new AccountHandler
func NewAccountHandler(
	accountService service.AccountService,
	orderService service.OrderService,
	catalogService service.CatalogService,
	logger *zap.Logger,
) *AccountHandler {
	return &AccountHandler{
		accountService: accountService,
		orderService:   orderService,
		catalogService: catalogService,
		logger:         logger,
	}
}

// RegisterRoutes registers account routes and the public contact form
func (h *AccountHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Post("/api/contact", h.SubmitContact)

	r.Route("/api/account", func(r chi.Router) {
		r.Use(authMiddleware)

		r.Get("/orders", h.ListOrders)
		r.Get("/orders/{id}", h.GetOrder)

		r.Get("/addresses", h.ListAddresses)
		r.Post("/addresses", h.CreateAddress)
		r.Put("/addresses/{id}", h.UpdateAddress)
		r.Delete("/addresses/{id}", h.DeleteAddress)

		r.Get("/wishlist", h.ListWishlist)
		r.Post("/wishlist", h.AddToWishlist)
		r.Delete("/wishlist/{productID}", h.RemoveFromWishlist)

		r.Post("/reviews", h.CreateReview)
	})
}

// ListOrders handles reading the customer's order history
func (h *AccountHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	profileID, ok := profileIDFromContext(w, r, h.logger)
	if !ok {
		return
	}

	orders, err := h.orderService.ListByProfile(r.Context(), profileID)
	if err != nil {
		h.logger.Error("Failed to list orders", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list orders")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, orders)
}

// GetOrder handles reading one of the customer's own orders
func (h *AccountHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	profileID, ok := profileIDFromContext(w, r, h.logger)
	if !ok {
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid order ID")
		return
	}

	order, err := h.orderService.GetOrder(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "order not found")
			return
		}
		h.logger.Error("Failed to get order", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to get order")
		return
	}

	// Customers can only see their own orders
	if order.ProfileID != profileID {
		middleware.RespondWithError(w, http.StatusNotFound, "order not found")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, order)
}

// ListAddresses handles reading the customer's saved addresses
func (h *AccountHandler) ListAddresses(w http.ResponseWriter, r *http.Request) {
	profileID, ok := profileIDFromContext(w, r, h.logger)
	if !ok {
		return
	}

	addresses, err := h.accountService.ListAddresses(r.Context(), profileID)
	if err != nil {
		h.logger.Error("Failed to list addresses", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list addresses")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, addresses)
}

// CreateAddress handles saving a new address
func (h *AccountHandler) CreateAddress(w http.ResponseWriter, r *http.Request) {
	profileID, ok := profileIDFromContext(w, r, h.logger)
	if !ok {
		return
	}

	var req AddressRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	address, err := h.accountService.CreateAddress(r.Context(), profileID, addressInput(req))
	if err != nil {
		h.logger.Error("Failed to create address", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to create address")
		return
	}

	middleware.RespondWithJSON(w, http.StatusCreated, address)
}

// UpdateAddress handles changing a saved address
func (h *AccountHandler) UpdateAddress(w http.ResponseWriter, r *http.Request) {
	profileID, ok := profileIDFromContext(w, r, h.logger)
	if !ok {
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid address ID")
		return
	}

	var req AddressRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	address, err := h.accountService.UpdateAddress(r.Context(), profileID, id, addressInput(req))
	if err != nil {
		if errors.Is(err, repository.ErrAddressNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "address not found")
			return
		}
		h.logger.Error("Failed to update address", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to update address")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, address)
}

// DeleteAddress handles removing a saved address
func (h *AccountHandler) DeleteAddress(w http.ResponseWriter, r *http.Request) {
	profileID, ok := profileIDFromContext(w, r, h.logger)
	if !ok {
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid address ID")
		return
	}

	if err := h.accountService.DeleteAddress(r.Context(), profileID, id); err != nil {
		if errors.Is(err, repository.ErrAddressNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "address not found")
			return
		}
		h.logger.Error("Failed to delete address", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to delete address")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "address deleted"})
}

// ListWishlist handles reading the customer's wishlist
func (h *AccountHandler) ListWishlist(w http.ResponseWriter, r *http.Request) {
	profileID, ok := profileIDFromContext(w, r, h.logger)
	if !ok {
		return
	}

	items, err := h.accountService.ListWishlist(r.Context(), profileID)
	if err != nil {
		h.logger.Error("Failed to list wishlist", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list wishlist")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, items)
}

// AddToWishlist handles saving a product to the wishlist
func (h *AccountHandler) AddToWishlist(w http.ResponseWriter, r *http.Request) {
	profileID, ok := profileIDFromContext(w, r, h.logger)
	if !ok {
		return
	}

	var req WishlistRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product ID")
		return
	}

	if err := h.accountService.AddToWishlist(r.Context(), profileID, productID); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "product not found")
			return
		}
		h.logger.Error("Failed to add to wishlist", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to add to wishlist")
		return
	}

	middleware.RespondWithJSON(w, http.StatusCreated, map[string]string{"message": "added to wishlist"})
}

// RemoveFromWishlist handles removing a product from the wishlist
func (h *AccountHandler) RemoveFromWishlist(w http.ResponseWriter, r *http.Request) {
	profileID, ok := profileIDFromContext(w, r, h.logger)
	if !ok {
		return
	}

	productID, err := uuid.Parse(chi.URLParam(r, "productID"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product ID")
		return
	}

	if err := h.accountService.RemoveFromWishlist(r.Context(), profileID, productID); err != nil {
		h.logger.Error("Failed to remove from wishlist", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to remove from wishlist")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "removed from wishlist"})
}

// CreateReview handles submitting a product review
func (h *AccountHandler) CreateReview(w http.ResponseWriter, r *http.Request) {
	profileID, ok := profileIDFromContext(w, r, h.logger)
	if !ok {
		return
	}

	var req ReviewRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product ID")
		return
	}

	review, err := h.catalogService.CreateReview(r.Context(), profileID, productID, req.Rating, req.Comment)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "product not found")
			return
		}
		if errors.Is(err, repository.ErrReviewAlreadyExists) {
			middleware.RespondWithError(w, http.StatusConflict, "you have already reviewed this product")
			return
		}
		h.logger.Error("Failed to create review", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to create review")
		return
	}

	middleware.RespondWithJSON(w, http.StatusCreated, review)
}

// SubmitContact handles the public contact form
func (h *AccountHandler) SubmitContact(w http.ResponseWriter, r *http.Request) {
	var req ContactRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	message, err := h.accountService.SubmitContactMessage(r.Context(), req.Name, req.Email, req.Subject, req.Body)
	if err != nil {
		h.logger.Error("Failed to submit contact message", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to submit message")
		return
	}

	middleware.RespondWithJSON(w, http.StatusCreated, message)
}

func addressInput(req AddressRequest) service.AddressInput {
	return service.AddressInput{
		Name:    req.Name,
		Phone:   req.Phone,
		Line1:   req.Line1,
		Line2:   req.Line2,
		City:    req.City,
		Country: req.Country,
	}
}

// decodeRequest decodes and validates a JSON body, writing the error response
// itself on failure
func decodeRequest(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := middleware.DecodeAndValidate(r, v); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return false
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}
