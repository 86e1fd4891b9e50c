package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/fieldstone-hq/fieldstone/modules/farm/domain/aggregates/vehicle"
	"github.com/fieldstone-hq/fieldstone/modules/farm/services"
	"github.com/fieldstone-hq/fieldstone/pkg/application"
	"github.com/fieldstone-hq/fieldstone/pkg/middleware"
)

type vehiclePayload struct {
	ID           string    `json:"id"`
	Code         string    `json:"code"`
	Registration string    `json:"registration"`
	Kind         string    `json:"kind,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func toVehiclePayload(v vehicle.Vehicle) vehiclePayload {
	return vehiclePayload{
		ID:           v.ID().String(),
		Code:         v.Code(),
		Registration: v.Registration(),
		Kind:         v.Kind(),
		CreatedAt:    v.CreatedAt(),
		UpdatedAt:    v.UpdatedAt(),
	}
}

type VehicleController struct {
	vehicles *services.VehicleService
	basePath string
}

func NewVehicleController(app application.Application) application.Controller {
	return &VehicleController{
		vehicles: app.Service(services.VehicleService{}).(*services.VehicleService),
		basePath: "/farm/api/vehicles",
	}
}

func (c *VehicleController) Key() string {
	return c.basePath
}

func (c *VehicleController) Register(r *mux.Router) {
	router := r.PathPrefix(c.basePath).Subrouter()
	router.Use(middleware.RequireTenant())
	router.HandleFunc("", c.List).Methods(http.MethodGet)
	router.HandleFunc("", c.Create).Methods(http.MethodPost)
	router.HandleFunc("/{id}", c.Get).Methods(http.MethodGet)
	router.HandleFunc("/{id}", c.Update).Methods(http.MethodPut)
	router.HandleFunc("/{id}", c.Delete).Methods(http.MethodDelete)
}

func (c *VehicleController) List(w http.ResponseWriter, r *http.Request) {
	items, err := c.vehicles.GetAll(r.Context())
	if err != nil {
		writeAPIError(w, r, http.StatusInternalServerError, "VEHICLE_INTERNAL", "internal error")
		return
	}
	out := make([]vehiclePayload, 0, len(items))
	for _, item := range items {
		out = append(out, toVehiclePayload(item))
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": out, "total": len(out)})
}

func (c *VehicleController) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "VEHICLE_INVALID_ID", "invalid vehicle id")
		return
	}
	item, err := c.vehicles.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, vehicle.ErrNotFound) {
			writeAPIError(w, r, http.StatusNotFound, "VEHICLE_NOT_FOUND", "vehicle not found")
			return
		}
		writeAPIError(w, r, http.StatusInternalServerError, "VEHICLE_INTERNAL", "internal error")
		return
	}
	writeJSON(w, http.StatusOK, toVehiclePayload(item))
}

func (c *VehicleController) Create(w http.ResponseWriter, r *http.Request) {
	var dto vehicle.CreateDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "VEHICLE_INVALID_JSON", "invalid json")
		return
	}
	if errs, ok := dto.Ok(); !ok {
		writeValidationError(w, r, "VEHICLE_VALIDATION_FAILED", errs)
		return
	}

	created, err := c.vehicles.Create(r.Context(), &dto)
	if err != nil {
		writeAPIError(w, r, http.StatusInternalServerError, "VEHICLE_INTERNAL", "internal error")
		return
	}
	writeJSON(w, http.StatusCreated, toVehiclePayload(created))
}

func (c *VehicleController) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "VEHICLE_INVALID_ID", "invalid vehicle id")
		return
	}
	var dto vehicle.UpdateDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "VEHICLE_INVALID_JSON", "invalid json")
		return
	}
	if errs, ok := dto.Ok(); !ok {
		writeValidationError(w, r, "VEHICLE_VALIDATION_FAILED", errs)
		return
	}

	updated, err := c.vehicles.Update(r.Context(), id, &dto)
	if err != nil {
		if errors.Is(err, vehicle.ErrNotFound) {
			writeAPIError(w, r, http.StatusNotFound, "VEHICLE_NOT_FOUND", "vehicle not found")
			return
		}
		writeAPIError(w, r, http.StatusInternalServerError, "VEHICLE_INTERNAL", "internal error")
		return
	}
	writeJSON(w, http.StatusOK, toVehiclePayload(updated))
}

func (c *VehicleController) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "VEHICLE_INVALID_ID", "invalid vehicle id")
		return
	}
	if err := c.vehicles.Delete(r.Context(), id); err != nil {
		if errors.Is(err, vehicle.ErrNotFound) {
			writeAPIError(w, r, http.StatusNotFound, "VEHICLE_NOT_FOUND", "vehicle not found")
			return
		}
		writeAPIError(w, r, http.StatusInternalServerError, "VEHICLE_INTERNAL", "internal error")
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}
