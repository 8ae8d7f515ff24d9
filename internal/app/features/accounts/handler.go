// internal/app/features/accounts/handler.go

// Package accounts implements registration and login. Passwords are
// stored as bcrypt hashes; a successful login returns a signed bearer
// token that the rest of the API consumes.
package accounts

import (
	"context"
	"errors"
	"net/http"

	userstore "github.com/dalemusser/sharebite/internal/app/store/users"
	"github.com/dalemusser/sharebite/internal/app/system/apierr"
	"github.com/dalemusser/sharebite/internal/app/system/auth"
	"github.com/dalemusser/sharebite/internal/app/system/httpjson"
	"github.com/dalemusser/sharebite/internal/app/system/inputval"
	"github.com/dalemusser/sharebite/internal/app/system/normalize"
	"github.com/dalemusser/sharebite/internal/app/system/ratelimit"
	"github.com/dalemusser/sharebite/internal/app/system/sanitize"
	"github.com/dalemusser/sharebite/internal/app/system/timeouts"
	"github.com/dalemusser/sharebite/internal/domain/models"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// UserStore is the slice of the user store the handlers need.
type UserStore interface {
	Create(ctx context.Context, u models.User) (models.User, error)
	GetByUsername(ctx context.Context, username string) (models.User, error)
}

// Handler holds dependencies for the account endpoints.
type Handler struct {
	Users  UserStore
	Tokens *auth.TokenManager
	Limits *ratelimit.Limiter
	Log    *zap.Logger
}

// NewHandler constructs an accounts Handler. limits throttles login
// attempts and may be nil in tests.
func NewHandler(users UserStore, tokens *auth.TokenManager, limits *ratelimit.Limiter, logger *zap.Logger) *Handler {
	return &Handler{Users: users, Tokens: tokens, Limits: limits, Log: logger}
}

type registerRequest struct {
	Username         string             `json:"username" validate:"required,min=3,max=64"`
	Email            string             `json:"email" validate:"required,email"`
	Password         string             `json:"password" validate:"required,min=8,max=128"`
	Role             string             `json:"role" validate:"required,oneof=donor client"`
	OrganizationName string             `json:"organization_name" validate:"omitempty,max=200"`
	Location         string             `json:"location" validate:"required,max=300"`
	Coordinates      models.Coordinates `json:"coordinates"`
	Phone            string             `json:"phone" validate:"omitempty,max=32"`
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// authResponse is returned by both register and login.
type authResponse struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

// Register handles POST /api/auth/register.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := httpjson.Decode(w, r, &req); err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}

	req.Role = normalize.Role(req.Role)
	if err := inputval.Struct(req); err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		httpjson.WriteError(w, h.Log, apierr.Unavailable(err, "could not process password"))
		return
	}

	user := models.User{
		Username:         req.Username,
		Email:            req.Email,
		PasswordHash:     string(hash),
		OrganizationName: sanitize.Text(req.OrganizationName),
		Location:         sanitize.Text(req.Location),
		Coordinates:      req.Coordinates,
		Phone:            normalize.Label(req.Phone),
		Role:             req.Role,
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	created, err := h.Users.Create(ctx, user)
	if err != nil {
		if errors.Is(err, userstore.ErrDuplicate) {
			httpjson.WriteError(w, h.Log, apierr.Conflict("username or email already registered"))
			return
		}
		httpjson.WriteError(w, h.Log, apierr.Unavailable(err, "could not create account"))
		return
	}

	token, err := h.Tokens.Issue(created.ID.Hex(), created.Role)
	if err != nil {
		httpjson.WriteError(w, h.Log, apierr.Unavailable(err, "could not issue token"))
		return
	}

	h.Log.Info("account registered",
		zap.String("user_id", created.ID.Hex()),
		zap.String("role", created.Role))
	httpjson.Write(w, http.StatusCreated, authResponse{Token: token, User: created})
}

// Login handles POST /api/auth/login. Unknown usernames and wrong
// passwords get the same response so the endpoint does not leak which
// usernames exist.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpjson.Decode(w, r, &req); err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}
	if err := inputval.Struct(req); err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	user, err := h.Users.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, userstore.ErrNotFound) {
			httpjson.WriteError(w, h.Log, apierr.Unauthorized("invalid username or password"))
			return
		}
		httpjson.WriteError(w, h.Log, apierr.Unavailable(err, "could not look up account"))
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		httpjson.WriteError(w, h.Log, apierr.Unauthorized("invalid username or password"))
		return
	}

	token, err := h.Tokens.Issue(user.ID.Hex(), user.Role)
	if err != nil {
		httpjson.WriteError(w, h.Log, apierr.Unavailable(err, "could not issue token"))
		return
	}

	if h.Limits != nil {
		h.Limits.Reset(ratelimit.ClientKey(r))
	}

	h.Log.Info("login", zap.String("user_id", user.ID.Hex()))
	httpjson.Write(w, http.StatusOK, authResponse{Token: token, User: user})
}
