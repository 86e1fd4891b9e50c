package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/fieldstone-hq/fieldstone/modules/farm/domain/aggregates/block"
	"github.com/fieldstone-hq/fieldstone/modules/farm/services"
	"github.com/fieldstone-hq/fieldstone/pkg/application"
	"github.com/fieldstone-hq/fieldstone/pkg/configuration"
	"github.com/fieldstone-hq/fieldstone/pkg/middleware"
)

type blockPayload struct {
	ID         string `json:"id"`
	FarmID     string `json:"farm_id"`
	Category   string `json:"category"`
	BlockCode  string `json:"block_code"`
	LegacyCode string `json:"legacy_code,omitempty"`
	State      string `json:"state"`

	TotalArea      float64  `json:"total_area,omitempty"`
	AvailableArea  float64  `json:"available_area,omitempty"`
	TotalDrips     int      `json:"total_drips,omitempty"`
	ChildBlockIDs  []string `json:"child_block_ids,omitempty"`
	VirtualCounter int      `json:"virtual_counter,omitempty"`

	ParentBlockID string     `json:"parent_block_id,omitempty"`
	AllocatedArea float64    `json:"allocated_area,omitempty"`
	Crop          string     `json:"crop,omitempty"`
	Season        string     `json:"season,omitempty"`
	PlantedAt     *time.Time `json:"planted_at,omitempty"`
	ClearedAt     *time.Time `json:"cleared_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toBlockPayload(b block.Block) blockPayload {
	p := blockPayload{
		ID:         b.ID().String(),
		FarmID:     b.FarmID().String(),
		Category:   string(b.Category()),
		BlockCode:  b.BlockCode(),
		LegacyCode: b.LegacyCode(),
		State:      string(b.State()),
		CreatedAt:  b.CreatedAt(),
		UpdatedAt:  b.UpdatedAt(),
	}
	if b.IsPhysical() {
		p.TotalArea = b.TotalArea()
		p.AvailableArea = b.AvailableArea()
		p.TotalDrips = b.TotalDrips()
		p.VirtualCounter = b.VirtualCounter()
		for _, id := range b.ChildBlockIDs() {
			p.ChildBlockIDs = append(p.ChildBlockIDs, id.String())
		}
	} else {
		p.ParentBlockID = b.ParentBlockID().String()
		p.AllocatedArea = b.AllocatedArea()
		p.Crop = b.Crop()
		p.Season = b.Season()
		if t := b.PlantedAt(); !t.IsZero() {
			p.PlantedAt = &t
		}
		if t := b.ClearedAt(); !t.IsZero() {
			p.ClearedAt = &t
		}
	}
	return p
}

type BlockController struct {
	blocks   *services.BlockService
	basePath string
}

func NewBlockController(app application.Application) application.Controller {
	return &BlockController{
		blocks:   app.Service(services.BlockService{}).(*services.BlockService),
		basePath: "/farm/api/blocks",
	}
}

func (c *BlockController) Key() string {
	return c.basePath
}

func (c *BlockController) Register(r *mux.Router) {
	router := r.PathPrefix(c.basePath).Subrouter()
	router.Use(middleware.RequireTenant())
	router.HandleFunc("", c.List).Methods(http.MethodGet)
	router.HandleFunc("", c.CreatePhysical).Methods(http.MethodPost)
	router.HandleFunc("/{id}", c.Get).Methods(http.MethodGet)
	router.HandleFunc("/{id}", c.Delete).Methods(http.MethodDelete)
	router.HandleFunc("/{id}/children", c.Children).Methods(http.MethodGet)
	router.HandleFunc("/{id}/plantings", c.CreatePlanting).Methods(http.MethodPost)
	router.HandleFunc("/{id}/plantings/{childID}/clear", c.ClearPlanting).Methods(http.MethodPost)
}

func (c *BlockController) List(w http.ResponseWriter, r *http.Request) {
	conf := configuration.Use()
	limit, offset := parsePagination(r, conf.PageSize, conf.MaxPageSize)

	params := &block.FindParams{Limit: limit, Offset: offset}
	if v := r.URL.Query().Get("farm_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			writeAPIError(w, r, http.StatusBadRequest, "BLOCK_INVALID_FARM_ID", "invalid farm id")
			return
		}
		params.FarmID = id
	}
	if v := r.URL.Query().Get("category"); v != "" {
		params.Category = block.Category(v)
	}

	items, total, err := c.blocks.GetPaginated(r.Context(), params)
	if err != nil {
		writeAPIError(w, r, http.StatusInternalServerError, "BLOCK_INTERNAL", "internal error")
		return
	}

	out := make([]blockPayload, 0, len(items))
	for _, b := range items {
		out = append(out, toBlockPayload(b))
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": out, "total": total})
}

func (c *BlockController) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "BLOCK_INVALID_ID", "invalid block id")
		return
	}
	b, err := c.blocks.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, block.ErrNotFound) {
			writeAPIError(w, r, http.StatusNotFound, "BLOCK_NOT_FOUND", "block not found")
			return
		}
		writeAPIError(w, r, http.StatusInternalServerError, "BLOCK_INTERNAL", "internal error")
		return
	}
	writeJSON(w, http.StatusOK, toBlockPayload(b))
}

func (c *BlockController) Children(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "BLOCK_INVALID_ID", "invalid block id")
		return
	}
	children, err := c.blocks.GetChildren(r.Context(), id)
	if err != nil {
		writeAPIError(w, r, http.StatusInternalServerError, "BLOCK_INTERNAL", "internal error")
		return
	}
	out := make([]blockPayload, 0, len(children))
	for _, b := range children {
		out = append(out, toBlockPayload(b))
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": out})
}

func (c *BlockController) CreatePhysical(w http.ResponseWriter, r *http.Request) {
	var dto block.CreatePhysicalDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "BLOCK_INVALID_JSON", "invalid json")
		return
	}
	if errs, ok := dto.Ok(); !ok {
		writeValidationError(w, r, "BLOCK_VALIDATION_FAILED", errs)
		return
	}

	created, err := c.blocks.CreatePhysical(r.Context(), &dto)
	if err != nil {
		switch {
		case errors.Is(err, block.ErrCodeTaken):
			writeAPIError(w, r, http.StatusConflict, "BLOCK_CODE_CONFLICT", "block code already in use")
		case errors.Is(err, block.ErrNotFound):
			writeAPIError(w, r, http.StatusNotFound, "BLOCK_FARM_NOT_FOUND", "farm not found")
		default:
			writeAPIError(w, r, http.StatusInternalServerError, "BLOCK_INTERNAL", "internal error")
		}
		return
	}
	writeJSON(w, http.StatusCreated, toBlockPayload(created))
}

func (c *BlockController) CreatePlanting(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "BLOCK_INVALID_ID", "invalid block id")
		return
	}
	var dto block.CreatePlantingDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "BLOCK_INVALID_JSON", "invalid json")
		return
	}
	if errs, ok := dto.Ok(); !ok {
		writeValidationError(w, r, "BLOCK_VALIDATION_FAILED", errs)
		return
	}

	created, err := c.blocks.CreatePlanting(r.Context(), id, &dto)
	if err != nil {
		switch {
		case errors.Is(err, block.ErrNotFound):
			writeAPIError(w, r, http.StatusNotFound, "BLOCK_NOT_FOUND", "block not found")
		case errors.Is(err, block.ErrNotPhysical):
			writeAPIError(w, r, http.StatusBadRequest, "BLOCK_NOT_PHYSICAL", "plantings can only be added to physical blocks")
		default:
			writeAPIError(w, r, http.StatusInternalServerError, "BLOCK_INTERNAL", "internal error")
		}
		return
	}
	writeJSON(w, http.StatusCreated, toBlockPayload(created))
}

func (c *BlockController) ClearPlanting(w http.ResponseWriter, r *http.Request) {
	parentID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "BLOCK_INVALID_ID", "invalid block id")
		return
	}
	childID, err := uuid.Parse(mux.Vars(r)["childID"])
	if err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "BLOCK_INVALID_ID", "invalid block id")
		return
	}
	if err := c.blocks.ClearPlanting(r.Context(), parentID, childID); err != nil {
		switch {
		case errors.Is(err, block.ErrNotFound):
			writeAPIError(w, r, http.StatusNotFound, "BLOCK_NOT_FOUND", "block not found")
		case errors.Is(err, block.ErrNotVirtual):
			writeAPIError(w, r, http.StatusBadRequest, "BLOCK_NOT_VIRTUAL", "only planting cycles can be cleared")
		default:
			writeAPIError(w, r, http.StatusInternalServerError, "BLOCK_INTERNAL", "internal error")
		}
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (c *BlockController) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "BLOCK_INVALID_ID", "invalid block id")
		return
	}
	if err := c.blocks.Delete(r.Context(), id); err != nil {
		if errors.Is(err, block.ErrNotFound) {
			writeAPIError(w, r, http.StatusNotFound, "BLOCK_NOT_FOUND", "block not found")
			return
		}
		writeAPIError(w, r, http.StatusConflict, "BLOCK_NOT_DELETABLE", err.Error())
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}
