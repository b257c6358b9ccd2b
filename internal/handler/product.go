package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/otwjunior/coffee-house/internal/catalog"
	"github.com/otwjunior/coffee-house/internal/identity"
)

type CreateProductRequest struct {
	Name            string `json:"name" validate:"required,max=100"`
	Slug            string `json:"slug" validate:"required,max=120"`
	Description     string `json:"description"`
	Price           string `json:"price" validate:"required"`
	IsAvailable     bool   `json:"is_available"`
	StockCount      int    `json:"stock_count" validate:"min=0"`
	IsMerch         bool   `json:"is_merch"`
	PrepTimeMinutes int    `json:"prep_time_minutes" validate:"min=0"`
}

type UpdateProductPriceRequest struct {
	Price string `json:"price" validate:"required"`
}

type ProductResponse struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	Slug            string    `json:"slug"`
	Description     string    `json:"description"`
	Price           string    `json:"price"`
	InStock         bool      `json:"in_stock"`
	IsMerch         bool      `json:"is_merch"`
	PrepTimeMinutes int       `json:"prep_time_minutes"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func newProductResponse(p *catalog.Product) ProductResponse {
	return ProductResponse{
		ID:              p.ID,
		Name:            p.Name,
		Slug:            p.Slug,
		Description:     p.Description,
		Price:           p.Price.StringFixed(2),
		InStock:         p.InStock(),
		IsMerch:         p.IsMerch,
		PrepTimeMinutes: p.PrepTimeMinutes,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}

type ProductHandler struct {
	repo     catalog.Repository
	validate *validator.Validate
}

func NewProductHandler(repo catalog.Repository) *ProductHandler {
	return &ProductHandler{
		repo:     repo,
		validate: validator.New(),
	}
}

func (h *ProductHandler) RegisterRoutes(router chi.Router) {
	router.Get("/products", h.handleListProducts)
	router.Get("/products/{id}", h.handleGetProduct)
	router.Post("/products", h.handleCreateProduct)
	router.Patch("/products/{id}/price", h.handleUpdatePrice)
	router.Delete("/products/{id}", h.handleDeleteProduct)
}

func (h *ProductHandler) handleListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.repo.ListAvailableProducts(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to list products")
		respondWithError(w, http.StatusInternalServerError, "Failed to list products")
		return
	}

	responses := make([]ProductResponse, 0, len(products))
	for i := range products {
		responses = append(responses, newProductResponse(&products[i]))
	}
	respondWithJSON(w, http.StatusOK, responses)
}

func (h *ProductHandler) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	productID, err := uuid.FromString(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid product id")
		return
	}

	product, err := h.repo.GetProductByID(r.Context(), productID)
	if err != nil {
		respondWithError(w, mapErrorToStatusCode(err), err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, newProductResponse(product))
}

func (h *ProductHandler) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	if !identity.FromContext(r.Context()).IsStaff() {
		respondWithError(w, http.StatusForbidden, "Staff access required")
		return
	}

	var requestPayload CreateProductRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&requestPayload); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if err := h.validate.Struct(requestPayload); err != nil {
		respondWithValidationErrors(w, err)
		return
	}

	productPrice, err := decimal.NewFromString(requestPayload.Price)
	if err != nil || !productPrice.IsPositive() {
		respondWithError(w, http.StatusBadRequest, "Price must be a positive decimal")
		return
	}

	product := catalog.Product{
		Name:            requestPayload.Name,
		Slug:            requestPayload.Slug,
		Description:     requestPayload.Description,
		Price:           productPrice,
		IsAvailable:     requestPayload.IsAvailable,
		StockCount:      requestPayload.StockCount,
		IsMerch:         requestPayload.IsMerch,
		PrepTimeMinutes: requestPayload.PrepTimeMinutes,
	}

	if err := h.repo.CreateProduct(r.Context(), &product); err != nil {
		log.Warn().Err(err).Str("slug", product.Slug).Msg("Failed to create product")
		respondWithError(w, mapErrorToStatusCode(err), err.Error())
		return
	}

	respondWithJSON(w, http.StatusCreated, newProductResponse(&product))
}

func (h *ProductHandler) handleUpdatePrice(w http.ResponseWriter, r *http.Request) {
	if !identity.FromContext(r.Context()).IsStaff() {
		respondWithError(w, http.StatusForbidden, "Staff access required")
		return
	}

	productID, err := uuid.FromString(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid product id")
		return
	}

	var requestPayload UpdateProductPriceRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&requestPayload); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if err := h.validate.Struct(requestPayload); err != nil {
		respondWithValidationErrors(w, err)
		return
	}

	newPrice, err := decimal.NewFromString(requestPayload.Price)
	if err != nil || !newPrice.IsPositive() {
		respondWithError(w, http.StatusBadRequest, "Price must be a positive decimal")
		return
	}

	if err := h.repo.UpdateProductPrice(r.Context(), productID, newPrice); err != nil {
		respondWithError(w, mapErrorToStatusCode(err), err.Error())
		return
	}

	product, err := h.repo.GetProductByID(r.Context(), productID)
	if err != nil {
		respondWithError(w, mapErrorToStatusCode(err), err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, newProductResponse(product))
}

func (h *ProductHandler) handleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	if !identity.FromContext(r.Context()).IsStaff() {
		respondWithError(w, http.StatusForbidden, "Staff access required")
		return
	}

	productID, err := uuid.FromString(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid product id")
		return
	}

	if err := h.repo.DeleteProduct(r.Context(), productID); err != nil {
		respondWithError(w, mapErrorToStatusCode(err), err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
