package filings

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/praxis-compliance/praxis/internal/authz"
	"github.com/praxis-compliance/praxis/internal/platform/httpx"
)

// Handler wires the filing endpoints behind the guard chain.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	guard     *authz.Guard
	validator *validator.Validate
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service, guard *authz.Guard) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		guard:     guard,
		validator: validator.New(),
	}
}

type listResponse struct {
	Filings []Filing `json:"filings"`
	Total   int      `json:"total"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	actor, _ := authz.IdentityFromContext(r.Context())

	req := ListFilingsRequest{Limit: 50}
	if raw := r.URL.Query().Get("client_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "client_id must be an integer")
			return
		}
		req.ClientID = &id
	}
	if status := r.URL.Query().Get("status"); status != "" {
		req.Status = &status
	}
	if limit, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && limit > 0 {
		req.Limit = limit
	}
	if offset, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && offset >= 0 {
		req.Offset = offset
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	result, total, err := h.service.List(r.Context(), actor, req)
	if err != nil {
		h.logger.Error("list filings", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, listResponse{Filings: result, Total: total})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	actor, _ := authz.IdentityFromContext(r.Context())
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.RespondError(w, httpx.ErrNotFound)
		return
	}
	filing, err := h.service.Get(r.Context(), actor, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.RespondError(w, httpx.ErrNotFound)
			return
		}
		h.logger.Error("get filing", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, filing)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	actor, _ := authz.IdentityFromContext(r.Context())
	var req CreateFilingRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	filing, err := h.service.Create(r.Context(), actor, req)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.RespondError(w, httpx.ErrNotFound)
			return
		}
		h.logger.Error("create filing", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, filing)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	actor, _ := authz.IdentityFromContext(r.Context())
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.RespondError(w, httpx.ErrNotFound)
		return
	}
	var req UpdateFilingRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	filing, err := h.service.Update(r.Context(), actor, id, req)
	if err != nil {
		h.respondTransition(w, "update filing", err)
		return
	}
	httpx.JSON(w, http.StatusOK, filing)
}

func (h *Handler) submit(w http.ResponseWriter, r *http.Request) {
	actor, _ := authz.IdentityFromContext(r.Context())
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.RespondError(w, httpx.ErrNotFound)
		return
	}
	filing, err := h.service.Submit(r.Context(), actor, id)
	if err != nil {
		h.respondTransition(w, "submit filing", err)
		return
	}
	httpx.JSON(w, http.StatusOK, filing)
}

func (h *Handler) accept(w http.ResponseWriter, r *http.Request) {
	actor, _ := authz.IdentityFromContext(r.Context())
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.RespondError(w, httpx.ErrNotFound)
		return
	}
	filing, err := h.service.Accept(r.Context(), actor, id)
	if err != nil {
		h.respondTransition(w, "accept filing", err)
		return
	}
	httpx.JSON(w, http.StatusOK, filing)
}

func (h *Handler) reject(w http.ResponseWriter, r *http.Request) {
	actor, _ := authz.IdentityFromContext(r.Context())
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.RespondError(w, httpx.ErrNotFound)
		return
	}
	var req RejectFilingRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	filing, err := h.service.Reject(r.Context(), actor, id, req.Reason)
	if err != nil {
		h.respondTransition(w, "reject filing", err)
		return
	}
	httpx.JSON(w, http.StatusOK, filing)
}

func (h *Handler) respondTransition(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.RespondError(w, httpx.ErrNotFound)
	case errors.Is(err, ErrInvalidTransition):
		httpx.Problem(w, http.StatusConflict, "Invalid Transition", err.Error())
	default:
		h.logger.Error(op, slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}
