package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/fieldstone-hq/fieldstone/modules/core/domain/entities/tenant"
	"github.com/fieldstone-hq/fieldstone/modules/core/services"
	"github.com/fieldstone-hq/fieldstone/pkg/application"
)

type tenantPayload struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Domain    string    `json:"domain,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toTenantPayload(t tenant.Tenant) tenantPayload {
	return tenantPayload{
		ID:        t.ID().String(),
		Name:      t.Name(),
		Domain:    t.Domain(),
		CreatedAt: t.CreatedAt(),
		UpdatedAt: t.UpdatedAt(),
	}
}

// TenantController is the provisioning surface; it is the one API that does
// not require a tenant header, since it creates the tenants themselves.
type TenantController struct {
	tenants  *services.TenantService
	basePath string
}

func NewTenantController(app application.Application) application.Controller {
	return &TenantController{
		tenants:  app.Service(services.TenantService{}).(*services.TenantService),
		basePath: "/core/api/tenants",
	}
}

func (c *TenantController) Key() string {
	return c.basePath
}

func (c *TenantController) Register(r *mux.Router) {
	router := r.PathPrefix(c.basePath).Subrouter()
	router.HandleFunc("", c.List).Methods(http.MethodGet)
	router.HandleFunc("", c.Create).Methods(http.MethodPost)
	router.HandleFunc("/{id}", c.Get).Methods(http.MethodGet)
}

func (c *TenantController) List(w http.ResponseWriter, r *http.Request) {
	items, err := c.tenants.GetAll(r.Context())
	if err != nil {
		writeAPIError(w, r, http.StatusInternalServerError, "TENANT_INTERNAL", "internal error")
		return
	}
	out := make([]tenantPayload, 0, len(items))
	for _, item := range items {
		out = append(out, toTenantPayload(item))
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": out, "total": len(out)})
}

func (c *TenantController) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "TENANT_INVALID_ID", "invalid tenant id")
		return
	}
	item, err := c.tenants.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, tenant.ErrNotFound) {
			writeAPIError(w, r, http.StatusNotFound, "TENANT_NOT_FOUND", "tenant not found")
			return
		}
		writeAPIError(w, r, http.StatusInternalServerError, "TENANT_INTERNAL", "internal error")
		return
	}
	writeJSON(w, http.StatusOK, toTenantPayload(item))
}

func (c *TenantController) Create(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name   string `json:"name"`
		Domain string `json:"domain"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "TENANT_INVALID_JSON", "invalid json")
		return
	}
	if strings.TrimSpace(body.Name) == "" {
		writeAPIError(w, r, http.StatusBadRequest, "TENANT_NAME_REQUIRED", "name is required")
		return
	}

	created, err := c.tenants.Create(r.Context(), body.Name, body.Domain)
	if err != nil {
		writeAPIError(w, r, http.StatusInternalServerError, "TENANT_INTERNAL", "internal error")
		return
	}
	writeJSON(w, http.StatusCreated, toTenantPayload(created))
}
