package coa

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/ledgerline/ledgerline/internal/platform/httpx"
)

// Handler wires chart of accounts endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler constructs the registry handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers account routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Get("/{id}/path", h.Path)
}

type accountRequest struct {
	Code       string `json:"code" validate:"required,max=32"`
	Name       string `json:"name" validate:"required,max=255"`
	ParentID   *int64 `json:"parentId"`
	IsGroup    bool   `json:"isGroup"`
	NormalSide string `json:"normalSide" validate:"required,oneof=DEBIT CREDIT"`
	Category   string `json:"category" validate:"required,oneof=CURRENT_ASSET FIXED_ASSET CURRENT_LIABILITY LONG_TERM_LIABILITY EQUITY REVENUE EXPENSE UNCATEGORIZED"`
	Kind       string `json:"kind" validate:"omitempty,oneof=NONE CASH BANK"`
	IsActive   *bool  `json:"isActive"`
}

type accountResponse struct {
	ID         int64      `json:"id"`
	Code       string     `json:"code"`
	Name       string     `json:"name"`
	ParentID   *int64     `json:"parentId,omitempty"`
	IsGroup    bool       `json:"isGroup"`
	NormalSide NormalSide `json:"normalSide"`
	Category   Category   `json:"category"`
	Kind       Kind       `json:"kind"`
	IsActive   bool       `json:"isActive"`
}

func toAccountResponse(a Account) accountResponse {
	return accountResponse{
		ID:         a.ID,
		Code:       a.Code,
		Name:       a.Name,
		ParentID:   a.ParentID,
		IsGroup:    a.IsGroup,
		NormalSide: a.NormalSide,
		Category:   a.Category,
		Kind:       a.Kind,
		IsActive:   a.IsActive,
	}
}

func (h *Handler) decode(r *http.Request) (accountRequest, error) {
	var req accountRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		return accountRequest{}, errors.Join(httpx.ErrValidation, err)
	}
	if err := h.validate.Struct(req); err != nil {
		return accountRequest{}, errors.Join(httpx.ErrValidation, err)
	}
	if req.Kind == "" {
		req.Kind = string(KindNone)
	}
	return req, nil
}

func parseID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	req, err := h.decode(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	created, err := h.service.Create(r.Context(), CreateInput{
		Code:       req.Code,
		Name:       req.Name,
		ParentID:   req.ParentID,
		IsGroup:    req.IsGroup,
		NormalSide: NormalSide(req.NormalSide),
		Category:   Category(req.Category),
		Kind:       Kind(req.Kind),
	})
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toAccountResponse(created))
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	var (
		accounts []Account
		err      error
	)
	if r.URL.Query().Get("postable") == "true" {
		accounts, err = h.service.ListPostable(r.Context())
	} else {
		accounts, err = h.service.List(r.Context())
	}
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	out := make([]accountResponse, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, toAccountResponse(a))
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"accounts": out})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid account id")
		return
	}
	account, err := h.service.Resolve(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toAccountResponse(account))
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid account id")
		return
	}
	req, err := h.decode(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	updated, err := h.service.Update(r.Context(), id, UpdateInput{
		Code:       req.Code,
		Name:       req.Name,
		ParentID:   req.ParentID,
		NormalSide: NormalSide(req.NormalSide),
		Category:   Category(req.Category),
		Kind:       Kind(req.Kind),
		IsActive:   active,
	})
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toAccountResponse(updated))
}

func (h *Handler) Path(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid account id")
		return
	}
	path, err := h.service.FullPath(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"path": path})
}

func (h *Handler) respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrAccountNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrDuplicateCode):
		httpx.Problem(w, http.StatusConflict, "Duplicate", err.Error())
	case errors.Is(err, ErrAccountInUse), errors.Is(err, ErrInvalidParent), errors.Is(err, ErrNotPostable):
		httpx.Problem(w, http.StatusUnprocessableEntity, "Validation Failed", err.Error())
	default:
		h.logger.Error("account request failed", slog.String("path", r.URL.Path), slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}
