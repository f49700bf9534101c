package transport

import (
	"errors"
	"net/http"

	"ministry-shop/internal/domain"
	"ministry-shop/internal/media"
	"ministry-shop/internal/middleware"
	"ministry-shop/internal/pricing"
	"ministry-shop/internal/repository"
	"ministry-shop/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ProductRequest represents the admin product create/update payload
type ProductRequest struct {
	Name           string   `json:"name" validate:"required"`
	Description    string   `json:"description"`
	Price          int64    `json:"price" validate:"required,gt=0"`
	CompareAtPrice *int64   `json:"compare_at_price"`
	CategoryID     string   `json:"category_id" validate:"required,uuid"`
	SKU            string   `json:"sku" validate:"required"`
	Images         []string `json:"images"`
	Stock          int      `json:"stock" validate:"gte=0"`
	Sizes          []string `json:"sizes"`
	Colors         []string `json:"colors"`
}

// VariantsRequest represents the full replacement of a product's variants
type VariantsRequest struct {
	Variants []VariantRequest `json:"variants" validate:"required,dive"`
}

// VariantRequest represents one size/color stock row
type VariantRequest struct {
	Size  string `json:"size"`
	Color string `json:"color"`
	Stock int    `json:"stock" validate:"gte=0"`
}

// CategoryRequest represents the admin category create/update payload
type CategoryRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
}

// OrderStatusRequest represents an order status change
type OrderStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending processing shipped delivered cancelled"`
}

// PaymentStatusRequest represents a payment status change
type PaymentStatusRequest struct {
	PaymentStatus string `json:"payment_status" validate:"required,oneof=pending paid failed refunded"`
}

// SettingsRequest represents the store settings payload
type SettingsRequest struct {
	FreeShippingThreshold int64  `json:"free_shipping_threshold" validate:"gte=0"`
	StandardShippingRate  int64  `json:"standard_shipping_rate" validate:"gte=0"`
	TaxRate               string `json:"tax_rate" validate:"required"`
}

// AdminHandler handles the admin console endpoints
type AdminHandler struct {
	catalogService service.CatalogService
	orderService   service.OrderService
	accountService service.AccountService
	profileRepo    repository.ProfileRepository
	mediaClient    *media.Client
	logger         *zap.Logger
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(
	catalogService service.CatalogService,
	orderService service.OrderService,
	accountService service.AccountService,
	profileRepo repository.ProfileRepository,
	mediaClient *media.Client,
	logger *zap.Logger,
) *AdminHandler {
	return &AdminHandler{
		catalogService: catalogService,
		orderService:   orderService,
		accountService: accountService,
		profileRepo:    profileRepo,
		mediaClient:    mediaClient,
		logger:         logger,
	}
}

// RegisterRoutes registers all admin routes behind authentication and the
// admin role guard
func (h *AdminHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/admin", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Use(middleware.RequireAdmin(h.logger))

		r.Post("/products", h.CreateProduct)
		r.Put("/products/{id}", h.UpdateProduct)
		r.Delete("/products/{id}", h.DeleteProduct)
		r.Put("/products/{id}/variants", h.ReplaceVariants)

		r.Post("/categories", h.CreateCategory)
		r.Put("/categories/{id}", h.UpdateCategory)
		r.Delete("/categories/{id}", h.DeleteCategory)

		r.Get("/orders", h.ListOrders)
		r.Get("/orders/{id}", h.GetOrder)
		r.Put("/orders/{id}/status", h.UpdateOrderStatus)
		r.Put("/orders/{id}/payment-status", h.UpdatePaymentStatus)

		r.Get("/customers", h.ListCustomers)
		r.Get("/customers/{id}", h.GetCustomer)

		r.Get("/reviews", h.ListReviews)
		r.Delete("/reviews/{id}", h.DeleteReview)

		r.Get("/messages", h.ListMessages)
		r.Put("/messages/{id}/read", h.MarkMessageRead)

		r.Get("/settings", h.GetSettings)
		r.Put("/settings", h.UpdateSettings)

		r.Get("/analytics", h.Analytics)

		r.Post("/media", h.UploadMedia)
	})
}

// CreateProduct handles creating a product
func (h *AdminHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	input, ok := h.productInput(w, r)
	if !ok {
		return
	}

	product, err := h.catalogService.CreateProduct(r.Context(), input)
	if err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			middleware.RespondWithError(w, http.StatusBadRequest, "category not found")
			return
		}
		h.logger.Error("Failed to create product", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to create product")
		return
	}

	h.logger.Info("Product created", zap.String("product_id", product.ID.String()))
	middleware.RespondWithJSON(w, http.StatusCreated, product)
}

// UpdateProduct handles updating a product
func (h *AdminHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product ID")
		return
	}

	input, ok := h.productInput(w, r)
	if !ok {
		return
	}

	product, err := h.catalogService.UpdateProduct(r.Context(), id, input)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "product not found")
			return
		}
		if errors.Is(err, repository.ErrCategoryNotFound) {
			middleware.RespondWithError(w, http.StatusBadRequest, "category not found")
			return
		}
		h.logger.Error("Failed to update product", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to update product")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, product)
}

// DeleteProduct handles removing a product
func (h *AdminHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product ID")
		return
	}

	if err := h.catalogService.DeleteProduct(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "product not found")
			return
		}
		h.logger.Error("Failed to delete product", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to delete product")
		return
	}

	h.logger.Info("Product deleted", zap.String("product_id", id.String()))
	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "product deleted"})
}

// ReplaceVariants handles replacing a product's size/color stock rows
func (h *AdminHandler) ReplaceVariants(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product ID")
		return
	}

	var req VariantsRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	inputs := make([]service.VariantInput, 0, len(req.Variants))
	for _, v := range req.Variants {
		inputs = append(inputs, service.VariantInput{Size: v.Size, Color: v.Color, Stock: v.Stock})
	}

	product, err := h.catalogService.ReplaceVariants(r.Context(), id, inputs)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "product not found")
			return
		}
		h.logger.Error("Failed to replace variants", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to replace variants")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, product)
}

// CreateCategory handles creating a category
func (h *AdminHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req CategoryRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	category, err := h.catalogService.CreateCategory(r.Context(), req.Name, req.Description)
	if err != nil {
		if errors.Is(err, repository.ErrCategoryAlreadyExists) {
			middleware.RespondWithError(w, http.StatusConflict, "category with this name already exists")
			return
		}
		h.logger.Error("Failed to create category", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to create category")
		return
	}

	middleware.RespondWithJSON(w, http.StatusCreated, category)
}

// UpdateCategory handles updating a category
func (h *AdminHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid category ID")
		return
	}

	var req CategoryRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	category, err := h.catalogService.UpdateCategory(r.Context(), id, req.Name, req.Description)
	if err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "category not found")
			return
		}
		if errors.Is(err, repository.ErrCategoryAlreadyExists) {
			middleware.RespondWithError(w, http.StatusConflict, "category with this name already exists")
			return
		}
		h.logger.Error("Failed to update category", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to update category")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, category)
}

// DeleteCategory handles removing a category
func (h *AdminHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid category ID")
		return
	}

	if err := h.catalogService.DeleteCategory(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "category not found")
			return
		}
		h.logger.Error("Failed to delete category", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to delete category")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "category deleted"})
}

// ListOrders handles the paginated admin order list with optional status
// filter
func (h *AdminHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	page, pageSize := pagination(r)

	var status *domain.OrderStatus
	if s := r.URL.Query().Get("status"); s != "" {
		orderStatus := domain.OrderStatus(s)
		status = &orderStatus
	}

	orders, total, err := h.orderService.List(r.Context(), status, page, pageSize)
	if err != nil {
		h.logger.Error("Failed to list orders", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list orders")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, PagedResponse{
		Items:    orders,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	})
}

// GetOrder handles reading any order
func (h *AdminHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
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

	middleware.RespondWithJSON(w, http.StatusOK, order)
}

// UpdateOrderStatus handles moving an order through fulfilment
func (h *AdminHandler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid order ID")
		return
	}

	var req OrderStatusRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	order, err := h.orderService.UpdateStatus(r.Context(), id, domain.OrderStatus(req.Status))
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "order not found")
			return
		}
		if errors.Is(err, service.ErrInvalidStatusTransition) {
			middleware.RespondWithError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		h.logger.Error("Failed to update order status", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to update order status")
		return
	}

	h.logger.Info("Order status updated",
		zap.String("order_id", id.String()),
		zap.String("status", req.Status),
	)
	middleware.RespondWithJSON(w, http.StatusOK, order)
}

// UpdatePaymentStatus handles changing an order's payment status
func (h *AdminHandler) UpdatePaymentStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid order ID")
		return
	}

	var req PaymentStatusRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	order, err := h.orderService.UpdatePaymentStatus(r.Context(), id, domain.PaymentStatus(req.PaymentStatus))
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "order not found")
			return
		}
		if errors.Is(err, service.ErrInvalidStatusTransition) {
			middleware.RespondWithError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		h.logger.Error("Failed to update payment status", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to update payment status")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, order)
}

// ListCustomers handles the paginated customer list
func (h *AdminHandler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	page, pageSize := pagination(r)

	profiles, total, err := h.profileRepo.List(r.Context(), page, pageSize)
	if err != nil {
		h.logger.Error("Failed to list customers", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list customers")
		return
	}

	items := make([]ProfileResponse, 0, len(profiles))
	for _, profile := range profiles {
		items = append(items, toProfileResponse(profile))
	}

	middleware.RespondWithJSON(w, http.StatusOK, PagedResponse{
		Items:    items,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	})
}

// GetCustomer handles reading a single customer profile
func (h *AdminHandler) GetCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid customer ID")
		return
	}

	profile, err := h.profileRepo.FindByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "customer not found")
			return
		}
		h.logger.Error("Failed to get customer", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to get customer")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, toProfileResponse(profile))
}

// ListReviews handles the paginated review moderation list
func (h *AdminHandler) ListReviews(w http.ResponseWriter, r *http.Request) {
	page, pageSize := pagination(r)

	reviews, total, err := h.catalogService.ListAllReviews(r.Context(), page, pageSize)
	if err != nil {
		h.logger.Error("Failed to list reviews", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list reviews")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, PagedResponse{
		Items:    reviews,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	})
}

// DeleteReview handles removing a review
func (h *AdminHandler) DeleteReview(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid review ID")
		return
	}

	if err := h.catalogService.DeleteReview(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrReviewNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "review not found")
			return
		}
		h.logger.Error("Failed to delete review", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to delete review")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "review deleted"})
}

// ListMessages handles the contact message inbox, unread first
func (h *AdminHandler) ListMessages(w http.ResponseWriter, r *http.Request) {
	page, pageSize := pagination(r)

	messages, total, err := h.accountService.ListContactMessages(r.Context(), page, pageSize)
	if err != nil {
		h.logger.Error("Failed to list messages", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list messages")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, PagedResponse{
		Items:    messages,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	})
}

// MarkMessageRead handles marking a contact message as read
func (h *AdminHandler) MarkMessageRead(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid message ID")
		return
	}

	if err := h.accountService.MarkMessageRead(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrMessageNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "message not found")
			return
		}
		h.logger.Error("Failed to mark message read", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to mark message read")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "marked as read"})
}

// GetSettings handles reading the store settings
func (h *AdminHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.catalogService.GetSettings(r.Context())
	if err != nil {
		h.logger.Error("Failed to get settings", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to get settings")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, SettingsRequest{
		FreeShippingThreshold: settings.FreeShippingThreshold,
		StandardShippingRate:  settings.StandardShippingRate,
		TaxRate:               settings.TaxRate,
	})
}

// UpdateSettings handles changing the store settings
func (h *AdminHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req SettingsRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	settings := pricing.Settings{
		FreeShippingThreshold: req.FreeShippingThreshold,
		StandardShippingRate:  req.StandardShippingRate,
		TaxRate:               req.TaxRate,
	}

	if err := h.catalogService.UpdateSettings(r.Context(), settings); err != nil {
		h.logger.Error("Failed to update settings", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to update settings")
		return
	}

	h.logger.Info("Store settings updated")
	middleware.RespondWithJSON(w, http.StatusOK, req)
}

// Analytics handles the sales summary for the admin dashboard
func (h *AdminHandler) Analytics(w http.ResponseWriter, r *http.Request) {
	summary, err := h.orderService.Summary(r.Context())
	if err != nil {
		h.logger.Error("Failed to build analytics", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to build analytics")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, summary)
}

// UploadMedia handles uploading a product image to the CDN
func (h *AdminHandler) UploadMedia(w http.ResponseWriter, r *http.Request) {
	// Cap uploads at 10 MiB
	r.Body = http.MaxBytesReader(w, r.Body, 10<<20)

	file, header, err := r.FormFile("file")
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	upload, err := h.mediaClient.UploadImage(r.Context(), header.Filename, file)
	if err != nil {
		h.logger.Error("Failed to upload image", zap.Error(err))
		middleware.RespondWithError(w, http.StatusBadGateway, "failed to upload image")
		return
	}

	middleware.RespondWithJSON(w, http.StatusCreated, upload)
}

func (h *AdminHandler) productInput(w http.ResponseWriter, r *http.Request) (service.ProductInput, bool) {
	var req ProductRequest
	if !decodeRequest(w, r, &req) {
		return service.ProductInput{}, false
	}

	categoryID, err := uuid.Parse(req.CategoryID)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid category ID")
		return service.ProductInput{}, false
	}

	return service.ProductInput{
		Name:           req.Name,
		Description:    req.Description,
		Price:          req.Price,
		CompareAtPrice: req.CompareAtPrice,
		CategoryID:     categoryID,
		SKU:            req.SKU,
		Images:         req.Images,
		Stock:          req.Stock,
		Sizes:          req.Sizes,
		Colors:         req.Colors,
	}, true
}
