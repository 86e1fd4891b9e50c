package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/fieldstone-hq/fieldstone/modules/farm/domain/aggregates/farm"
	"github.com/fieldstone-hq/fieldstone/modules/farm/services"
	"github.com/fieldstone-hq/fieldstone/pkg/application"
	"github.com/fieldstone-hq/fieldstone/pkg/configuration"
	"github.com/fieldstone-hq/fieldstone/pkg/middleware"
)

type farmPayload struct {
	ID        string    `json:"id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	Location  string    `json:"location,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toFarmPayload(f farm.Farm) farmPayload {
	return farmPayload{
		ID:        f.ID().String(),
		Code:      f.Code(),
		Name:      f.Name(),
		Location:  f.Location(),
		CreatedAt: f.CreatedAt(),
		UpdatedAt: f.UpdatedAt(),
	}
}

type FarmController struct {
	farms    *services.FarmService
	basePath string
}

func NewFarmController(app application.Application) application.Controller {
	return &FarmController{
		farms:    app.Service(services.FarmService{}).(*services.FarmService),
		basePath: "/farm/api/farms",
	}
}

func (c *FarmController) Key() string {
	return c.basePath
}

func (c *FarmController) Register(r *mux.Router) {
	router := r.PathPrefix(c.basePath).Subrouter()
	router.Use(middleware.RequireTenant())
	router.HandleFunc("", c.List).Methods(http.MethodGet)
	router.HandleFunc("", c.Create).Methods(http.MethodPost)
	router.HandleFunc("/{id}", c.Get).Methods(http.MethodGet)
	router.HandleFunc("/{id}", c.Update).Methods(http.MethodPut)
	router.HandleFunc("/{id}", c.Delete).Methods(http.MethodDelete)
}

func (c *FarmController) List(w http.ResponseWriter, r *http.Request) {
	conf := configuration.Use()
	limit, offset := parsePagination(r, conf.PageSize, conf.MaxPageSize)

	items, total, err := c.farms.GetPaginated(r.Context(), &farm.FindParams{
		Q:      r.URL.Query().Get("q"),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		writeAPIError(w, r, http.StatusInternalServerError, "FARM_INTERNAL", "internal error")
		return
	}

	out := make([]farmPayload, 0, len(items))
	for _, f := range items {
		out = append(out, toFarmPayload(f))
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": out, "total": total})
}

func (c *FarmController) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "FARM_INVALID_ID", "invalid farm id")
		return
	}
	f, err := c.farms.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, farm.ErrNotFound) {
			writeAPIError(w, r, http.StatusNotFound, "FARM_NOT_FOUND", "farm not found")
			return
		}
		writeAPIError(w, r, http.StatusInternalServerError, "FARM_INTERNAL", "internal error")
		return
	}
	writeJSON(w, http.StatusOK, toFarmPayload(f))
}

func (c *FarmController) Create(w http.ResponseWriter, r *http.Request) {
	var dto farm.CreateDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "FARM_INVALID_JSON", "invalid json")
		return
	}
	if errs, ok := dto.Ok(); !ok {
		writeValidationError(w, r, "FARM_VALIDATION_FAILED", errs)
		return
	}

	created, err := c.farms.Create(r.Context(), &dto)
	if err != nil {
		if errors.Is(err, farm.ErrCodeTaken) {
			writeAPIError(w, r, http.StatusConflict, "FARM_CODE_CONFLICT", "farm code already in use")
			return
		}
		writeAPIError(w, r, http.StatusInternalServerError, "FARM_INTERNAL", "internal error")
		return
	}
	writeJSON(w, http.StatusCreated, toFarmPayload(created))
}

func (c *FarmController) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "FARM_INVALID_ID", "invalid farm id")
		return
	}
	var dto farm.UpdateDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "FARM_INVALID_JSON", "invalid json")
		return
	}
	if errs, ok := dto.Ok(); !ok {
		writeValidationError(w, r, "FARM_VALIDATION_FAILED", errs)
		return
	}

	updated, err := c.farms.Update(r.Context(), id, &dto)
	if err != nil {
		if errors.Is(err, farm.ErrNotFound) {
			writeAPIError(w, r, http.StatusNotFound, "FARM_NOT_FOUND", "farm not found")
			return
		}
		writeAPIError(w, r, http.StatusInternalServerError, "FARM_INTERNAL", "internal error")
		return
	}
	writeJSON(w, http.StatusOK, toFarmPayload(updated))
}

func (c *FarmController) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "FARM_INVALID_ID", "invalid farm id")
		return
	}
	if err := c.farms.Delete(r.Context(), id); err != nil {
		if errors.Is(err, farm.ErrNotFound) {
			writeAPIError(w, r, http.StatusNotFound, "FARM_NOT_FOUND", "farm not found")
			return
		}
		writeAPIError(w, r, http.StatusInternalServerError, "FARM_INTERNAL", "internal error")
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}
