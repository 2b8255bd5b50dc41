package auth

import (
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/asset-atlas/atlas/internal/platform/httpx"
	"github.com/asset-atlas/atlas/internal/rbac"
	"github.com/asset-atlas/atlas/internal/shared"
)

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountLogin registers the unauthenticated login route.
func (h *Handler) MountLogin(r chi.Router) {
	r.Post("/login", h.handleLogin)
}

// MountMe registers the authenticated self-profile route.
func (h *Handler) MountMe(r chi.Router) {
	r.Get("/me", h.handleMe)
}

type loginRequest struct {
	Username string `json:"username" validate:"required,min=3"`
	Password string `json:"password" validate:"required,min=6"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type loginResponse struct {
	Token tokenResponse `json:"token"`
	User  UserView      `json:"user"`
}

// UserView is the wire representation of an account.
type UserView struct {
	ID          int64     `json:"id"`
	Username    string    `json:"username"`
	DisplayName string    `json:"display_name"`
	Dept        string    `json:"dept"`
	IsActive    bool      `json:"is_active"`
	Role        rbac.Role `json:"role"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewUserView maps a domain user onto its wire shape.
func NewUserView(user *User) UserView {
	return UserView{
		ID:          user.ID,
		Username:    user.Username,
		DisplayName: user.DisplayName,
		Dept:        user.Dept,
		IsActive:    user.IsActive,
		Role:        user.Role,
		CreatedAt:   user.CreatedAt,
		UpdatedAt:   user.UpdatedAt,
	}
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		// Validation failures read the same as bad credentials so the
		// endpoint never confirms which usernames exist.
		httpx.RespondError(w, shared.ErrInvalidCredentials)
		return
	}

	user, token, err := h.service.Login(r.Context(), req.Username, req.Password, clientIP(r))
	if err != nil {
		if !errors.Is(err, shared.ErrInvalidCredentials) {
			h.logger.Error("login", slog.Any("error", err))
		}
		httpx.RespondError(w, err)
		return
	}

	httpx.JSON(w, http.StatusOK, loginResponse{
		Token: tokenResponse{AccessToken: token, TokenType: "bearer"},
		User:  NewUserView(user),
	})
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, shared.ErrUnauthenticated)
		return
	}
	httpx.JSON(w, http.StatusOK, NewUserView(user))
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
