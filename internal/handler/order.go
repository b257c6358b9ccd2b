package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"

	"github.com/otwjunior/coffee-house/internal/identity"
	"github.com/otwjunior/coffee-house/internal/order"
)

type OrderItemRequest struct {
	ProductID      string         `json:"product_id" validate:"required,uuid"`
	Quantity       int            `json:"quantity" validate:"required,min=1"`
	Customizations map[string]any `json:"customizations"`
}

type CreateOrderRequest struct {
	Items               []OrderItemRequest `json:"items" validate:"required,min=1,dive"`
	CustomerName        string             `json:"customer_name" validate:"omitempty,max=100"`
	RequestedPickupTime *time.Time         `json:"requested_pickup_time"`
	Notes               string             `json:"notes"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=PENDING CONFIRMED PREPARING READY COMPLETED CANCELLED"`
	IsPaid *bool  `json:"is_paid"`
}

type OrderItemResponse struct {
	ID                    uuid.UUID      `json:"id"`
	ProductID             uuid.UUID      `json:"product_id"`
	Quantity              int            `json:"quantity"`
	UnitPrice             string         `json:"unit_price"`
	Subtotal              string         `json:"subtotal"`
	Customizations        map[string]any `json:"customizations"`
	CustomizationsDisplay string         `json:"customizations_display"`
}

type OrderResponse struct {
	ID                  uuid.UUID           `json:"id"`
	OrderNumber         string              `json:"order_number"`
	UserID              *uuid.UUID          `json:"user_id"`
	CustomerName        string              `json:"customer_name"`
	Status              string              `json:"status"`
	IsPaid              bool                `json:"is_paid"`
	TotalAmount         string              `json:"total_amount"`
	RequestedPickupTime *time.Time          `json:"requested_pickup_time"`
	IsLate              bool                `json:"is_late"`
	Notes               string              `json:"notes"`
	Items               []OrderItemResponse `json:"items"`
	ItemsCount          int                 `json:"items_count"`
	CreatedAt           time.Time           `json:"created_at"`
	UpdatedAt           time.Time           `json:"updated_at"`
}

func newOrderResponse(o *order.Order) OrderResponse {
	items := make([]OrderItemResponse, 0, len(o.Items))
	for i := range o.Items {
		item := &o.Items[i]
		items = append(items, OrderItemResponse{
			ID:                    item.ID,
			ProductID:             item.ProductID,
			Quantity:              item.Quantity,
			UnitPrice:             item.UnitPrice.StringFixed(2),
			Subtotal:              item.Subtotal().StringFixed(2),
			Customizations:        item.Customizations,
			CustomizationsDisplay: item.Customizations.Display(),
		})
	}

	resp := OrderResponse{
		ID:                  o.ID,
		OrderNumber:         o.OrderNumber,
		CustomerName:        o.CustomerName,
		Status:              o.Status.String(),
		IsPaid:              o.IsPaid,
		TotalAmount:         o.TotalAmount.StringFixed(2),
		RequestedPickupTime: o.RequestedPickupTime,
		IsLate:              o.IsLate(time.Now()),
		Notes:               o.Notes,
		Items:               items,
		ItemsCount:          len(items),
		CreatedAt:           o.CreatedAt,
		UpdatedAt:           o.UpdatedAt,
	}
	if o.UserID.Valid {
		userID := o.UserID.UUID
		resp.UserID = &userID
	}
	return resp
}

type OrderHandler struct {
	service  order.Service
	validate *validator.Validate
}

func NewOrderHandler(service order.Service) *OrderHandler {
	return &OrderHandler{
		service:  service,
		validate: validator.New(),
	}
}

func (h *OrderHandler) RegisterRoutes(router chi.Router) {
	router.Post("/orders", h.handleCreateOrder)
	router.Get("/orders", h.handleListOrders)
	router.Get("/orders/active", h.handleListActiveOrders)
	router.Get("/orders/{orderNumber}", h.handleGetOrder)
	router.Patch("/orders/{orderNumber}/status", h.handleUpdateStatus)
}

func (h *OrderHandler) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	var requestPayload CreateOrderRequest

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&requestPayload); err != nil {
		log.Warn().Err(err).Msg("Failed to decode create order request")
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if err := h.validate.Struct(requestPayload); err != nil {
		respondWithValidationErrors(w, err)
		return
	}

	input := order.CreateOrderInput{
		Items:               make([]order.ItemRequest, 0, len(requestPayload.Items)),
		CustomerName:        requestPayload.CustomerName,
		RequestedPickupTime: requestPayload.RequestedPickupTime,
		Notes:               requestPayload.Notes,
	}
	for _, item := range requestPayload.Items {
		productID, err := uuid.FromString(item.ProductID)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid product id: "+item.ProductID)
			return
		}
		input.Items = append(input.Items, order.ItemRequest{
			ProductID:      productID,
			Quantity:       item.Quantity,
			Customizations: order.Customizations(item.Customizations),
		})
	}

	caller := identity.FromContext(r.Context())
	createdOrder, err := h.service.CreateOrder(r.Context(), caller, input)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to create order")
		respondWithError(w, mapErrorToStatusCode(err), err.Error())
		return
	}

	respondWithJSON(w, http.StatusCreated, newOrderResponse(createdOrder))
}

func (h *OrderHandler) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	orderNumber := chi.URLParam(r, "orderNumber")
	if orderNumber == "" {
		respondWithError(w, http.StatusBadRequest, "order number is required")
		return
	}

	caller := identity.FromContext(r.Context())
	foundOrder, err := h.service.GetOrderByNumber(r.Context(), caller, orderNumber)
	if err != nil {
		respondWithError(w, mapErrorToStatusCode(err), err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, newOrderResponse(foundOrder))
}

func (h *OrderHandler) handleListOrders(w http.ResponseWriter, r *http.Request) {
	caller := identity.FromContext(r.Context())

	orders, err := h.service.ListOrders(r.Context(), caller)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list orders")
		respondWithError(w, mapErrorToStatusCode(err), "Failed to list orders")
		return
	}

	respondWithJSON(w, http.StatusOK, newOrderListResponse(orders))
}

func (h *OrderHandler) handleListActiveOrders(w http.ResponseWriter, r *http.Request) {
	caller := identity.FromContext(r.Context())

	orders, err := h.service.ListActiveOrders(r.Context(), caller)
	if err != nil {
		respondWithError(w, mapErrorToStatusCode(err), err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, newOrderListResponse(orders))
}

func (h *OrderHandler) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	orderNumber := chi.URLParam(r, "orderNumber")

	var requestPayload UpdateOrderStatusRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&requestPayload); err != nil {
		log.Warn().Err(err).Msg("Failed to decode status update request")
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if err := h.validate.Struct(requestPayload); err != nil {
		respondWithValidationErrors(w, err)
		return
	}

	caller := identity.FromContext(r.Context())
	updatedOrder, err := h.service.UpdateOrderStatus(r.Context(), caller, orderNumber, order.UpdateStatusInput{
		NewStatus: order.OrderStatus(requestPayload.Status),
		IsPaid:    requestPayload.IsPaid,
	})
	if err != nil {
		respondWithError(w, mapErrorToStatusCode(err), err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, newOrderResponse(updatedOrder))
}

func newOrderListResponse(orders []order.Order) []OrderResponse {
	responses := make([]OrderResponse, 0, len(orders))
	for i := range orders {
		responses = append(responses, newOrderResponse(&orders[i]))
	}
	return responses
}
