package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/fieldstone-hq/fieldstone/modules/core/domain/aggregates/user"
	"github.com/fieldstone-hq/fieldstone/modules/core/services"
	"github.com/fieldstone-hq/fieldstone/pkg/application"
	"github.com/fieldstone-hq/fieldstone/pkg/configuration"
	"github.com/fieldstone-hq/fieldstone/pkg/middleware"
)

type userPayload struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Role      string    `json:"role"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toUserPayload(u user.User) userPayload {
	return userPayload{
		ID:        u.ID().String(),
		Email:     u.Email(),
		FirstName: u.FirstName(),
		LastName:  u.LastName(),
		Role:      string(u.Role()),
		Status:    string(u.Status()),
		CreatedAt: u.CreatedAt(),
		UpdatedAt: u.UpdatedAt(),
	}
}

type UserController struct {
	users    *services.UserService
	basePath string
}

func NewUserController(app application.Application) application.Controller {
	return &UserController{
		users:    app.Service(services.UserService{}).(*services.UserService),
		basePath: "/core/api/users",
	}
}

func (c *UserController) Key() string {
	return c.basePath
}

func (c *UserController) Register(r *mux.Router) {
	router := r.PathPrefix(c.basePath).Subrouter()
	router.Use(middleware.RequireTenant())
	router.HandleFunc("", c.List).Methods(http.MethodGet)
	router.HandleFunc("", c.Create).Methods(http.MethodPost)
	router.HandleFunc("/{id}", c.Get).Methods(http.MethodGet)
	router.HandleFunc("/{id}", c.Update).Methods(http.MethodPut)
	router.HandleFunc("/{id}", c.Delete).Methods(http.MethodDelete)
}

func (c *UserController) List(w http.ResponseWriter, r *http.Request) {
	conf := configuration.Use()
	limit, offset := parsePagination(r, conf.PageSize, conf.MaxPageSize)

	items, total, err := c.users.GetPaginated(r.Context(), &user.FindParams{
		Q:      r.URL.Query().Get("q"),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		writeAPIError(w, r, http.StatusInternalServerError, "USER_INTERNAL", "internal error")
		return
	}

	out := make([]userPayload, 0, len(items))
	for _, u := range items {
		out = append(out, toUserPayload(u))
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": out, "total": total})
}

func (c *UserController) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "USER_INVALID_ID", "invalid user id")
		return
	}
	u, err := c.users.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			writeAPIError(w, r, http.StatusNotFound, "USER_NOT_FOUND", "user not found")
			return
		}
		writeAPIError(w, r, http.StatusInternalServerError, "USER_INTERNAL", "internal error")
		return
	}
	writeJSON(w, http.StatusOK, toUserPayload(u))
}

func (c *UserController) Create(w http.ResponseWriter, r *http.Request) {
	var dto user.CreateDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "USER_INVALID_JSON", "invalid json")
		return
	}
	if errs, ok := dto.Ok(); !ok {
		writeValidationError(w, r, "USER_VALIDATION_FAILED", errs)
		return
	}

	created, err := c.users.Create(r.Context(), &dto)
	if err != nil {
		if errors.Is(err, user.ErrEmailTaken) {
			writeAPIError(w, r, http.StatusConflict, "USER_EMAIL_CONFLICT", "email already in use")
			return
		}
		writeAPIError(w, r, http.StatusInternalServerError, "USER_INTERNAL", "internal error")
		return
	}
	writeJSON(w, http.StatusCreated, toUserPayload(created))
}

func (c *UserController) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "USER_INVALID_ID", "invalid user id")
		return
	}
	var dto user.UpdateDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "USER_INVALID_JSON", "invalid json")
		return
	}
	if errs, ok := dto.Ok(); !ok {
		writeValidationError(w, r, "USER_VALIDATION_FAILED", errs)
		return
	}

	updated, err := c.users.Update(r.Context(), id, &dto)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			writeAPIError(w, r, http.StatusNotFound, "USER_NOT_FOUND", "user not found")
			return
		}
		writeAPIError(w, r, http.StatusInternalServerError, "USER_INTERNAL", "internal error")
		return
	}
	writeJSON(w, http.StatusOK, toUserPayload(updated))
}

func (c *UserController) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "USER_INVALID_ID", "invalid user id")
		return
	}
	if err := c.users.Delete(r.Context(), id); err != nil {
		if errors.Is(err, user.ErrNotFound) {
			writeAPIError(w, r, http.StatusNotFound, "USER_NOT_FOUND", "user not found")
			return
		}
		writeAPIError(w, r, http.StatusInternalServerError, "USER_INTERNAL", "internal error")
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}
