package voucher

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/ledgerline/ledgerline/internal/platform/httpx"
)

// Handler wires voucher endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler constructs the voucher handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers voucher routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Post("/{id}/confirm", h.Confirm)
	r.Delete("/{id}", h.Delete)
}

func (h *Handler) decodeCreate(r *http.Request) (CreateInput, error) {
	var req createRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		return CreateInput{}, errors.Join(httpx.ErrValidation, err)
	}
	if err := h.validate.Struct(req); err != nil {
		return CreateInput{}, errors.Join(httpx.ErrValidation, err)
	}
	date, err := httpx.ParseDate(req.Date)
	if err != nil {
		return CreateInput{}, err
	}
	return req.toInput(date, r.Header.Get("Idempotency-Key")), nil
}

func (h *Handler) respondVoucher(w http.ResponseWriter, r *http.Request, status int, v Voucher) {
	var class ContraClass
	if v.Type == TypeContra {
		resolved, err := h.service.ClassifyContra(r.Context(), v)
		if err != nil {
			h.logger.Warn("classify contra", slog.Any("error", err))
		} else {
			class = resolved
		}
	}
	httpx.JSON(w, status, toResponse(v, class))
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	input, err := h.decodeCreate(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	created, err := h.service.Create(r.Context(), input)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondVoucher(w, r, http.StatusCreated, created)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	var filter *Type
	if raw := r.URL.Query().Get("type"); raw != "" {
		t := Type(raw)
		if !t.Valid() {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "unknown voucher type")
			return
		}
		filter = &t
	}
	vouchers, err := h.service.List(r.Context(), filter)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	out := make([]voucherResponse, 0, len(vouchers))
	for _, v := range vouchers {
		var class ContraClass
		if v.Type == TypeContra {
			if resolved, err := h.service.ClassifyContra(r.Context(), v); err == nil {
				class = resolved
			}
		}
		out = append(out, toResponse(v, class))
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"vouchers": out})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid voucher id")
		return
	}
	v, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondVoucher(w, r, http.StatusOK, v)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid voucher id")
		return
	}
	input, err := h.decodeCreate(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	updated, err := h.service.Update(r.Context(), id, input)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondVoucher(w, r, http.StatusOK, updated)
}

func (h *Handler) Confirm(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid voucher id")
		return
	}
	v, err := h.service.Confirm(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondVoucher(w, r, http.StatusOK, v)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid voucher id")
		return
	}
	force := r.URL.Query().Get("force") == "true"
	if err := h.service.Delete(r.Context(), id, force); err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrAlreadyPosted), errors.Is(err, ErrIdempotencyConflict):
		httpx.Problem(w, http.StatusConflict, "Conflict", err.Error())
	case errors.Is(err, ErrDeleteConfirmed):
		httpx.Problem(w, http.StatusConflict, "Destructive Operation", err.Error())
	default:
		var fieldErr ValidationError
		if errors.As(err, &fieldErr) {
			httpx.RespondError(w, err)
			return
		}
		h.logger.Error("voucher request failed", slog.String("path", r.URL.Path), slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}
