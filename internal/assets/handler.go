package assets

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/asset-atlas/atlas/internal/platform/httpx"
	"github.com/asset-atlas/atlas/internal/rbac"
)

// Handler manages asset endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	rbac      rbac.Middleware
	validator *validator.Validate
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, rbac rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, rbac: rbac, validator: validator.New()}
}

// MountRoutes registers asset routes. Each group names exactly the
// capability it needs.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(rbac.CapReadAsset))
		r.Get("/", h.list)
		r.Get("/{id}", h.get)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(rbac.CapCreateAsset))
		r.Post("/", h.create)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(rbac.CapUpdateAsset))
		r.Put("/{id}", h.update)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(rbac.CapDeleteAsset))
		r.Delete("/{id}", h.delete)
	})
}

type createRequest struct {
	AssetCode    string `json:"asset_code" validate:"required"`
	Category     string `json:"category" validate:"required"`
	Brand        string `json:"brand"`
	Model        string `json:"model"`
	SerialNumber string `json:"serial_number"`
	Location     string `json:"location"`
	OwnerDept    string `json:"owner_dept"`
	IPAddress    string `json:"ip_address"`
	MACAddress   string `json:"mac_address"`
	OSOrFirmware string `json:"os_or_firmware"`
	Status       string `json:"status" validate:"required,oneof=in_use spare repair retired"`
	Note         string `json:"note"`
}

func (req createRequest) input() CreateInput {
	return CreateInput{
		AssetCode:    req.AssetCode,
		Category:     req.Category,
		Brand:        req.Brand,
		Model:        req.Model,
		SerialNumber: req.SerialNumber,
		Location:     req.Location,
		OwnerDept:    req.OwnerDept,
		IPAddress:    req.IPAddress,
		MACAddress:   req.MACAddress,
		OSOrFirmware: req.OSOrFirmware,
		Status:       req.Status,
		Note:         req.Note,
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filters := ListFilters{
		AssetCode: r.URL.Query().Get("asset_code"),
		IPAddress: r.URL.Query().Get("ip_address"),
		Category:  r.URL.Query().Get("category"),
		Status:    r.URL.Query().Get("status"),
	}
	result, err := h.service.List(r.Context(), filters)
	if err != nil {
		h.logger.Error("list assets", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if result == nil {
		result = []Asset{}
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.assetID(w, r)
	if !ok {
		return
	}
	asset, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, asset)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	actor, _ := rbac.ActorFromContext(r.Context())
	asset, err := h.service.Create(r.Context(), actor.ID, req.input())
	if err != nil {
		h.respondServiceError(w, "create asset", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, asset)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.assetID(w, r)
	if !ok {
		return
	}
	var input UpdateInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if input.Status != nil {
		if err := h.validator.Var(*input.Status, "oneof=in_use spare repair retired"); err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "unknown status")
			return
		}
	}

	actor, _ := rbac.ActorFromContext(r.Context())
	asset, err := h.service.Update(r.Context(), actor.ID, id, input)
	if err != nil {
		if errors.Is(err, ErrNoFields) {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
			return
		}
		h.respondServiceError(w, "update asset", err)
		return
	}
	httpx.JSON(w, http.StatusOK, asset)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.assetID(w, r)
	if !ok {
		return
	}
	actor, _ := rbac.ActorFromContext(r.Context())
	if err := h.service.Delete(r.Context(), actor.ID, id); err != nil {
		h.respondServiceError(w, "delete asset", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) assetID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid asset id")
		return 0, false
	}
	return id, true
}

func (h *Handler) respondServiceError(w http.ResponseWriter, op string, err error) {
	h.logger.Warn(op, slog.Any("error", err))
	httpx.RespondError(w, err)
}
