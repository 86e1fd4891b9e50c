package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/fieldstone-hq/fieldstone/modules/farm/services"
	"github.com/fieldstone-hq/fieldstone/pkg/application"
	"github.com/fieldstone-hq/fieldstone/pkg/middleware"
)

type blockArchivePayload struct {
	ID              string    `json:"id"`
	VirtualBlockID  string    `json:"virtual_block_id,omitempty"`
	PhysicalBlockID string    `json:"physical_block_id,omitempty"`
	LegacyBlockCode string    `json:"legacy_block_code,omitempty"`
	Activity        string    `json:"activity"`
	Payload         string    `json:"payload,omitempty"`
	RecordedAt      time.Time `json:"recorded_at"`
}

type harvestPayload struct {
	ID              string    `json:"id"`
	VirtualBlockID  string    `json:"virtual_block_id,omitempty"`
	PhysicalBlockID string    `json:"physical_block_id,omitempty"`
	LegacyBlockCode string    `json:"legacy_block_code,omitempty"`
	Crop            string    `json:"crop"`
	Quantity        string    `json:"quantity"`
	Grade           string    `json:"grade,omitempty"`
	HarvestedAt     time.Time `json:"harvested_at"`
}

type cropPricePayload struct {
	ID           string    `json:"id"`
	CustomerID   string    `json:"customer_id,omitempty"`
	CustomerName string    `json:"customer_name"`
	Crop         string    `json:"crop"`
	Price        string    `json:"price"`
	EffectiveAt  time.Time `json:"effective_at"`
}

func uuidOrEmpty(id uuid.UUID) string {
	if id == uuid.Nil {
		return ""
	}
	return id.String()
}

// ArchiveController exposes the history collections; they are written by
// the migration pipeline only, so every route is a read.
type ArchiveController struct {
	archives *services.ArchiveService
	basePath string
}

func NewArchiveController(app application.Application) application.Controller {
	return &ArchiveController{
		archives: app.Service(services.ArchiveService{}).(*services.ArchiveService),
		basePath: "/farm/api/archives",
	}
}

func (c *ArchiveController) Key() string {
	return c.basePath
}

func (c *ArchiveController) Register(r *mux.Router) {
	router := r.PathPrefix(c.basePath).Subrouter()
	router.Use(middleware.RequireTenant())
	router.HandleFunc("/blocks/{id}/history", c.BlockHistory).Methods(http.MethodGet)
	router.HandleFunc("/blocks/{id}/harvests", c.BlockHarvests).Methods(http.MethodGet)
	router.HandleFunc("/prices", c.Prices).Methods(http.MethodGet)
}

func (c *ArchiveController) BlockHistory(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "ARCHIVE_INVALID_ID", "invalid block id")
		return
	}
	items, err := c.archives.BlockHistory(r.Context(), id)
	if err != nil {
		writeAPIError(w, r, http.StatusInternalServerError, "ARCHIVE_INTERNAL", "internal error")
		return
	}

	out := make([]blockArchivePayload, 0, len(items))
	for _, a := range items {
		out = append(out, blockArchivePayload{
			ID:              a.ID.String(),
			VirtualBlockID:  uuidOrEmpty(a.VirtualBlockID),
			PhysicalBlockID: uuidOrEmpty(a.PhysicalBlockID),
			LegacyBlockCode: a.LegacyBlockCode,
			Activity:        a.Activity,
			Payload:         a.Payload,
			RecordedAt:      a.RecordedAt,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": out, "total": len(out)})
}

func (c *ArchiveController) BlockHarvests(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "ARCHIVE_INVALID_ID", "invalid block id")
		return
	}
	items, err := c.archives.BlockHarvests(r.Context(), id)
	if err != nil {
		writeAPIError(w, r, http.StatusInternalServerError, "ARCHIVE_INTERNAL", "internal error")
		return
	}

	out := make([]harvestPayload, 0, len(items))
	for _, h := range items {
		out = append(out, harvestPayload{
			ID:              h.ID.String(),
			VirtualBlockID:  uuidOrEmpty(h.VirtualBlockID),
			PhysicalBlockID: uuidOrEmpty(h.PhysicalBlockID),
			LegacyBlockCode: h.LegacyBlockCode,
			Crop:            h.Crop,
			Quantity:        h.Quantity.StringFixed(2),
			Grade:           h.Grade,
			HarvestedAt:     h.HarvestedAt,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": out, "total": len(out)})
}

func (c *ArchiveController) Prices(w http.ResponseWriter, r *http.Request) {
	crop := strings.TrimSpace(r.URL.Query().Get("crop"))
	if crop == "" {
		writeAPIError(w, r, http.StatusBadRequest, "ARCHIVE_MISSING_CROP", "crop query parameter is required")
		return
	}
	items, err := c.archives.PricesByCrop(r.Context(), crop)
	if err != nil {
		writeAPIError(w, r, http.StatusInternalServerError, "ARCHIVE_INTERNAL", "internal error")
		return
	}

	out := make([]cropPricePayload, 0, len(items))
	for _, p := range items {
		out = append(out, cropPricePayload{
			ID:           p.ID.String(),
			CustomerID:   uuidOrEmpty(p.CustomerID),
			CustomerName: p.CustomerName,
			Crop:         p.Crop,
			Price:        p.Price.StringFixed(2),
			EffectiveAt:  p.EffectiveAt,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": out, "total": len(out)})
}
