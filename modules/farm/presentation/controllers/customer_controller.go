package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/fieldstone-hq/fieldstone/modules/farm/domain/aggregates/customer"
	"github.com/fieldstone-hq/fieldstone/modules/farm/services"
	"github.com/fieldstone-hq/fieldstone/pkg/application"
	"github.com/fieldstone-hq/fieldstone/pkg/configuration"
	"github.com/fieldstone-hq/fieldstone/pkg/middleware"
)

type customerPayload struct {
	ID        string    `json:"id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone,omitempty"`
	Email     string    `json:"email,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toCustomerPayload(c customer.Customer) customerPayload {
	return customerPayload{
		ID:        c.ID().String(),
		Code:      c.Code(),
		Name:      c.Name(),
		Phone:     c.Phone(),
		Email:     c.Email(),
		CreatedAt: c.CreatedAt(),
		UpdatedAt: c.UpdatedAt(),
	}
}

type CustomerController struct {
	customers *services.CustomerService
	basePath  string
}

func NewCustomerController(app application.Application) application.Controller {
	return &CustomerController{
		customers: app.Service(services.CustomerService{}).(*services.CustomerService),
		basePath:  "/farm/api/customers",
	}
}

func (c *CustomerController) Key() string {
	return c.basePath
}

func (c *CustomerController) Register(r *mux.Router) {
	router := r.PathPrefix(c.basePath).Subrouter()
	router.Use(middleware.RequireTenant())
	router.HandleFunc("", c.List).Methods(http.MethodGet)
	router.HandleFunc("", c.Create).Methods(http.MethodPost)
	router.HandleFunc("/{id}", c.Get).Methods(http.MethodGet)
	router.HandleFunc("/{id}", c.Update).Methods(http.MethodPut)
	router.HandleFunc("/{id}", c.Delete).Methods(http.MethodDelete)
}

func (c *CustomerController) List(w http.ResponseWriter, r *http.Request) {
	conf := configuration.Use()
	limit, offset := parsePagination(r, conf.PageSize, conf.MaxPageSize)

	items, total, err := c.customers.GetPaginated(r.Context(), &customer.FindParams{
		Q:      r.URL.Query().Get("q"),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		writeAPIError(w, r, http.StatusInternalServerError, "CUSTOMER_INTERNAL", "internal error")
		return
	}

	out := make([]customerPayload, 0, len(items))
	for _, item := range items {
		out = append(out, toCustomerPayload(item))
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": out, "total": total})
}

func (c *CustomerController) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "CUSTOMER_INVALID_ID", "invalid customer id")
		return
	}
	item, err := c.customers.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, customer.ErrNotFound) {
			writeAPIError(w, r, http.StatusNotFound, "CUSTOMER_NOT_FOUND", "customer not found")
			return
		}
		writeAPIError(w, r, http.StatusInternalServerError, "CUSTOMER_INTERNAL", "internal error")
		return
	}
	writeJSON(w, http.StatusOK, toCustomerPayload(item))
}

func (c *CustomerController) Create(w http.ResponseWriter, r *http.Request) {
	var dto customer.CreateDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "CUSTOMER_INVALID_JSON", "invalid json")
		return
	}
	if errs, ok := dto.Ok(); !ok {
		writeValidationError(w, r, "CUSTOMER_VALIDATION_FAILED", errs)
		return
	}

	created, err := c.customers.Create(r.Context(), &dto)
	if err != nil {
		writeAPIError(w, r, http.StatusInternalServerError, "CUSTOMER_INTERNAL", "internal error")
		return
	}
	writeJSON(w, http.StatusCreated, toCustomerPayload(created))
}

func (c *CustomerController) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "CUSTOMER_INVALID_ID", "invalid customer id")
		return
	}
	var dto customer.UpdateDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "CUSTOMER_INVALID_JSON", "invalid json")
		return
	}
	if errs, ok := dto.Ok(); !ok {
		writeValidationError(w, r, "CUSTOMER_VALIDATION_FAILED", errs)
		return
	}

	updated, err := c.customers.Update(r.Context(), id, &dto)
	if err != nil {
		if errors.Is(err, customer.ErrNotFound) {
			writeAPIError(w, r, http.StatusNotFound, "CUSTOMER_NOT_FOUND", "customer not found")
			return
		}
		writeAPIError(w, r, http.StatusInternalServerError, "CUSTOMER_INTERNAL", "internal error")
		return
	}
	writeJSON(w, http.StatusOK, toCustomerPayload(updated))
}

func (c *CustomerController) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "CUSTOMER_INVALID_ID", "invalid customer id")
		return
	}
	if err := c.customers.Delete(r.Context(), id); err != nil {
		if errors.Is(err, customer.ErrNotFound) {
			writeAPIError(w, r, http.StatusNotFound, "CUSTOMER_NOT_FOUND", "customer not found")
			return
		}
		writeAPIError(w, r, http.StatusInternalServerError, "CUSTOMER_INTERNAL", "internal error")
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}
