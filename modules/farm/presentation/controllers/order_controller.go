package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/fieldstone-hq/fieldstone/modules/farm/domain/aggregates/order"
	"github.com/fieldstone-hq/fieldstone/modules/farm/services"
	"github.com/fieldstone-hq/fieldstone/pkg/application"
	"github.com/fieldstone-hq/fieldstone/pkg/configuration"
	"github.com/fieldstone-hq/fieldstone/pkg/middleware"
)

type lineItemPayload struct {
	Crop      string  `json:"crop"`
	Quantity  float64 `json:"quantity"`
	UnitPrice string  `json:"unit_price"`
	Total     string  `json:"total"`
}

type orderPayload struct {
	ID         string            `json:"id"`
	CustomerID string            `json:"customer_id"`
	Items      []lineItemPayload `json:"items"`
	Status     string            `json:"status"`
	Total      string            `json:"total"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
}

func toOrderPayload(o order.Order) orderPayload {
	items := make([]lineItemPayload, 0, len(o.Items()))
	for _, item := range o.Items() {
		items = append(items, lineItemPayload{
			Crop:      item.Crop,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice.StringFixed(2),
			Total:     item.Total().StringFixed(2),
		})
	}
	return orderPayload{
		ID:         o.ID().String(),
		CustomerID: o.CustomerID().String(),
		Items:      items,
		Status:     string(o.Status()),
		Total:      o.Total().StringFixed(2),
		CreatedAt:  o.CreatedAt(),
		UpdatedAt:  o.UpdatedAt(),
	}
}

type OrderController struct {
	orders   *services.OrderService
	basePath string
}

func NewOrderController(app application.Application) application.Controller {
	return &OrderController{
		orders:   app.Service(services.OrderService{}).(*services.OrderService),
		basePath: "/farm/api/orders",
	}
}

func (c *OrderController) Key() string {
	return c.basePath
}

func (c *OrderController) Register(r *mux.Router) {
	router := r.PathPrefix(c.basePath).Subrouter()
	router.Use(middleware.RequireTenant())
	router.HandleFunc("", c.List).Methods(http.MethodGet)
	router.HandleFunc("", c.Create).Methods(http.MethodPost)
	router.HandleFunc("/{id}", c.Get).Methods(http.MethodGet)
	router.HandleFunc("/{id}", c.Delete).Methods(http.MethodDelete)
	router.HandleFunc("/{id}/status", c.Transition).Methods(http.MethodPost)
}

func (c *OrderController) List(w http.ResponseWriter, r *http.Request) {
	conf := configuration.Use()
	limit, offset := parsePagination(r, conf.PageSize, conf.MaxPageSize)

	params := &order.FindParams{Limit: limit, Offset: offset}
	if v := r.URL.Query().Get("customer_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			writeAPIError(w, r, http.StatusBadRequest, "ORDER_INVALID_CUSTOMER_ID", "invalid customer id")
			return
		}
		params.CustomerID = id
	}
	if v := r.URL.Query().Get("status"); v != "" {
		params.Status = order.Status(v)
	}

	items, total, err := c.orders.GetPaginated(r.Context(), params)
	if err != nil {
		writeAPIError(w, r, http.StatusInternalServerError, "ORDER_INTERNAL", "internal error")
		return
	}

	out := make([]orderPayload, 0, len(items))
	for _, o := range items {
		out = append(out, toOrderPayload(o))
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": out, "total": total})
}

func (c *OrderController) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "ORDER_INVALID_ID", "invalid order id")
		return
	}
	o, err := c.orders.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, order.ErrNotFound) {
			writeAPIError(w, r, http.StatusNotFound, "ORDER_NOT_FOUND", "order not found")
			return
		}
		writeAPIError(w, r, http.StatusInternalServerError, "ORDER_INTERNAL", "internal error")
		return
	}
	writeJSON(w, http.StatusOK, toOrderPayload(o))
}

func (c *OrderController) Create(w http.ResponseWriter, r *http.Request) {
	var dto order.CreateDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "ORDER_INVALID_JSON", "invalid json")
		return
	}
	if errs, ok := dto.Ok(); !ok {
		writeValidationError(w, r, "ORDER_VALIDATION_FAILED", errs)
		return
	}

	created, err := c.orders.Create(r.Context(), &dto)
	if err != nil {
		writeAPIError(w, r, http.StatusInternalServerError, "ORDER_INTERNAL", "internal error")
		return
	}
	writeJSON(w, http.StatusCreated, toOrderPayload(created))
}

func (c *OrderController) Transition(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "ORDER_INVALID_ID", "invalid order id")
		return
	}
	var dto order.TransitionDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "ORDER_INVALID_JSON", "invalid json")
		return
	}
	if errs, ok := dto.Ok(); !ok {
		writeValidationError(w, r, "ORDER_VALIDATION_FAILED", errs)
		return
	}

	updated, err := c.orders.Transition(r.Context(), id, &dto)
	if err != nil {
		switch {
		case errors.Is(err, order.ErrNotFound):
			writeAPIError(w, r, http.StatusNotFound, "ORDER_NOT_FOUND", "order not found")
		case errors.Is(err, order.ErrBadState):
			writeAPIError(w, r, http.StatusConflict, "ORDER_BAD_STATE", "transition not allowed from current status")
		default:
			writeAPIError(w, r, http.StatusInternalServerError, "ORDER_INTERNAL", "internal error")
		}
		return
	}
	writeJSON(w, http.StatusOK, toOrderPayload(updated))
}

func (c *OrderController) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "ORDER_INVALID_ID", "invalid order id")
		return
	}
	if err := c.orders.Delete(r.Context(), id); err != nil {
		switch {
		case errors.Is(err, order.ErrNotFound):
			writeAPIError(w, r, http.StatusNotFound, "ORDER_NOT_FOUND", "order not found")
		case errors.Is(err, order.ErrBadState):
			writeAPIError(w, r, http.StatusConflict, "ORDER_BAD_STATE", "only draft orders can be deleted")
		default:
			writeAPIError(w, r, http.StatusInternalServerError, "ORDER_INTERNAL", "internal error")
		}
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}
