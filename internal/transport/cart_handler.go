package transport

import (
	"errors"
	"net/http"
	"slices"

	"ministry-shop/internal/cart"
	"ministry-shop/internal/middleware"
	"ministry-shop/internal/pricing"
	"ministry-shop/internal/repository"
	"ministry-shop/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AddCartItemRequest represents the add-to-cart payload
type AddCartItemRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  int    `json:"quantity" validate:"required,gte=1"`
	Size      string `json:"size"`
	Color     string `json:"color"`
}

// UpdateCartItemRequest represents the quantity change payload. Quantity has
// no validation tag: zero and negative values remove the line.
type UpdateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

// CartResponse represents the cart with its price breakdown
type CartResponse struct {
	Lines     []cart.Line       `json:"lines"`
	Breakdown pricing.Breakdown `json:"breakdown"`
}

// CartHandler handles HTTP requests for the shopping cart
type CartHandler struct {
	carts           *cart.Store
	catalogService  service.CatalogService
	checkoutService service.CheckoutService
	logger          *zap.Logger
}

// NewCartHandler creates a new CartHandler
func NewCartHandler(carts *cart.Store, catalogService service.CatalogService, checkoutService service.CheckoutService, logger *zap.Logger) *CartHandler {
	return &CartHandler{
		carts:           carts,
		catalogService:  catalogService,
		checkoutService: checkoutService,
		logger:          logger,
	}
}

// RegisterRoutes registers all cart routes; every route requires a logged-in
// customer since carts are keyed by profile
func (h *CartHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/cart", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Get("/", h.GetCart)
		r.Delete("/", h.ClearCart)
		r.Post("/items", h.AddItem)
		r.Put("/items/{lineID}", h.UpdateItem)
		r.Delete("/items/{lineID}", h.RemoveItem)
	})
}

// GetCart handles reading the cart with its price breakdown
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	profileID, ok := profileIDFromContext(w, r, h.logger)
	if !ok {
		return
	}

	lines, err := h.carts.Get(r.Context(), profileID)
	if err != nil {
		h.logger.Error("Failed to load cart", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to load cart")
		return
	}

	h.respondWithCart(w, r, profileID, lines)
}

// AddItem handles adding a product to the cart. The product's current name,
// image and price are snapshotted onto the line.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	profileID, ok := profileIDFromContext(w, r, h.logger)
	if !ok {
		return
	}

	var req AddCartItemRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product ID")
		return
	}

	product, err := h.catalogService.GetProduct(r.Context(), productID)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "product not found")
			return
		}
		h.logger.Error("Failed to resolve product", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to add to cart")
		return
	}

	if req.Size != "" && !slices.Contains(product.Sizes, req.Size) {
		middleware.RespondWithError(w, http.StatusBadRequest, "size not available for this product")
		return
	}
	if req.Color != "" && !slices.Contains(product.Colors, req.Color) {
		middleware.RespondWithError(w, http.StatusBadRequest, "color not available for this product")
		return
	}

	var image string
	if len(product.Images) > 0 {
		image = product.Images[0]
	}

	lines, err := h.carts.AddItem(r.Context(), profileID, cart.Line{
		ProductID:     product.ID,
		ProductName:   product.Name,
		ProductImage:  image,
		UnitPrice:     product.Price,
		Quantity:      req.Quantity,
		SelectedSize:  req.Size,
		SelectedColor: req.Color,
	})
	if err != nil {
		h.logger.Error("Failed to add cart item", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to add to cart")
		return
	}

	h.respondWithCart(w, r, profileID, lines)
}

// UpdateItem handles changing a line's quantity; a quantity below one removes
// the line
func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	profileID, ok := profileIDFromContext(w, r, h.logger)
	if !ok {
		return
	}

	var req UpdateCartItemRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	lines, err := h.carts.UpdateQuantity(r.Context(), profileID, chi.URLParam(r, "lineID"), req.Quantity)
	if err != nil {
		if errors.Is(err, cart.ErrLineNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "cart line not found")
			return
		}
		h.logger.Error("Failed to update cart item", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to update cart")
		return
	}

	h.respondWithCart(w, r, profileID, lines)
}

// RemoveItem handles removing one line from the cart
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	profileID, ok := profileIDFromContext(w, r, h.logger)
	if !ok {
		return
	}

	lines, err := h.carts.RemoveItem(r.Context(), profileID, chi.URLParam(r, "lineID"))
	if err != nil {
		if errors.Is(err, cart.ErrLineNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "cart line not found")
			return
		}
		h.logger.Error("Failed to remove cart item", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to update cart")
		return
	}

	h.respondWithCart(w, r, profileID, lines)
}

// ClearCart handles emptying the cart
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	profileID, ok := profileIDFromContext(w, r, h.logger)
	if !ok {
		return
	}

	if err := h.carts.Clear(r.Context(), profileID); err != nil {
		h.logger.Error("Failed to clear cart", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to clear cart")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, CartResponse{Lines: []cart.Line{}})
}

func (h *CartHandler) respondWithCart(w http.ResponseWriter, r *http.Request, profileID uuid.UUID, lines []cart.Line) {
	breakdown, err := h.checkoutService.Quote(r.Context(), profileID)
	if err != nil {
		h.logger.Error("Failed to price cart", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to price cart")
		return
	}

	if lines == nil {
		lines = []cart.Line{}
	}
	middleware.RespondWithJSON(w, http.StatusOK, CartResponse{Lines: lines, Breakdown: *breakdown})
}
