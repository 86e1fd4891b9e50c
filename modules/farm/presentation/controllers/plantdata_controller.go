package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/fieldstone-hq/fieldstone/modules/farm/domain/aggregates/plantdata"
	"github.com/fieldstone-hq/fieldstone/modules/farm/services"
	"github.com/fieldstone-hq/fieldstone/pkg/application"
	"github.com/fieldstone-hq/fieldstone/pkg/middleware"
)

type plantDataPayload struct {
	ID        string    `json:"id"`
	Code      string    `json:"code"`
	Item      string    `json:"item"`
	Variety   string    `json:"variety,omitempty"`
	Spacing   float64   `json:"spacing"`
	DripRate  float64   `json:"drip_rate"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toPlantDataPayload(p plantdata.PlantData) plantDataPayload {
	return plantDataPayload{
		ID:        p.ID().String(),
		Code:      p.Code(),
		Item:      p.Item(),
		Variety:   p.Variety(),
		Spacing:   p.Spacing(),
		DripRate:  p.DripRate(),
		CreatedAt: p.CreatedAt(),
		UpdatedAt: p.UpdatedAt(),
	}
}

type PlantDataController struct {
	plants   *services.PlantDataService
	basePath string
}

func NewPlantDataController(app application.Application) application.Controller {
	return &PlantDataController{
		plants:   app.Service(services.PlantDataService{}).(*services.PlantDataService),
		basePath: "/farm/api/plant-data",
	}
}

func (c *PlantDataController) Key() string {
	return c.basePath
}

func (c *PlantDataController) Register(r *mux.Router) {
	router := r.PathPrefix(c.basePath).Subrouter()
	router.Use(middleware.RequireTenant())
	router.HandleFunc("", c.List).Methods(http.MethodGet)
	router.HandleFunc("", c.Create).Methods(http.MethodPost)
	router.HandleFunc("/{id}", c.Get).Methods(http.MethodGet)
	router.HandleFunc("/{id}", c.Update).Methods(http.MethodPut)
	router.HandleFunc("/{id}", c.Delete).Methods(http.MethodDelete)
}

func (c *PlantDataController) List(w http.ResponseWriter, r *http.Request) {
	items, err := c.plants.GetAll(r.Context())
	if err != nil {
		writeAPIError(w, r, http.StatusInternalServerError, "PLANT_DATA_INTERNAL", "internal error")
		return
	}
	out := make([]plantDataPayload, 0, len(items))
	for _, item := range items {
		out = append(out, toPlantDataPayload(item))
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": out, "total": len(out)})
}

func (c *PlantDataController) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "PLANT_DATA_INVALID_ID", "invalid plant template id")
		return
	}
	item, err := c.plants.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, plantdata.ErrNotFound) {
			writeAPIError(w, r, http.StatusNotFound, "PLANT_DATA_NOT_FOUND", "plant template not found")
			return
		}
		writeAPIError(w, r, http.StatusInternalServerError, "PLANT_DATA_INTERNAL", "internal error")
		return
	}
	writeJSON(w, http.StatusOK, toPlantDataPayload(item))
}

func (c *PlantDataController) Create(w http.ResponseWriter, r *http.Request) {
	var dto plantdata.CreateDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "PLANT_DATA_INVALID_JSON", "invalid json")
		return
	}
	if errs, ok := dto.Ok(); !ok {
		writeValidationError(w, r, "PLANT_DATA_VALIDATION_FAILED", errs)
		return
	}

	created, err := c.plants.Create(r.Context(), &dto)
	if err != nil {
		writeAPIError(w, r, http.StatusInternalServerError, "PLANT_DATA_INTERNAL", "internal error")
		return
	}
	writeJSON(w, http.StatusCreated, toPlantDataPayload(created))
}

func (c *PlantDataController) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "PLANT_DATA_INVALID_ID", "invalid plant template id")
		return
	}
	var dto plantdata.UpdateDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "PLANT_DATA_INVALID_JSON", "invalid json")
		return
	}
	if errs, ok := dto.Ok(); !ok {
		writeValidationError(w, r, "PLANT_DATA_VALIDATION_FAILED", errs)
		return
	}

	updated, err := c.plants.Update(r.Context(), id, &dto)
	if err != nil {
		if errors.Is(err, plantdata.ErrNotFound) {
			writeAPIError(w, r, http.StatusNotFound, "PLANT_DATA_NOT_FOUND", "plant template not found")
			return
		}
		writeAPIError(w, r, http.StatusInternalServerError, "PLANT_DATA_INTERNAL", "internal error")
		return
	}
	writeJSON(w, http.StatusOK, toPlantDataPayload(updated))
}

func (c *PlantDataController) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "PLANT_DATA_INVALID_ID", "invalid plant template id")
		return
	}
	if err := c.plants.Delete(r.Context(), id); err != nil {
		if errors.Is(err, plantdata.ErrNotFound) {
			writeAPIError(w, r, http.StatusNotFound, "PLANT_DATA_NOT_FOUND", "plant template not found")
			return
		}
		writeAPIError(w, r, http.StatusInternalServerError, "PLANT_DATA_INTERNAL", "internal error")
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}
