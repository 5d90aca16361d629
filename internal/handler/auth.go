package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/qrfood/eatery-backend/internal/config"
	"github.com/qrfood/eatery-backend/internal/middleware"
	"github.com/qrfood/eatery-backend/internal/model"
	"github.com/qrfood/eatery-backend/internal/repository"
	"github.com/qrfood/eatery-backend/internal/response"
	"github.com/qrfood/eatery-backend/internal/utils"
)

// Store interfaces consumed by the auth handlers.  The concrete
// implementations live in internal/repository; handler tests substitute
// in-memory fakes.

// UserStore loads and mutates user accounts.
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (model.User, error)
	GetByID(ctx context.Context, id uint64) (model.User, error)
	CreateBare(ctx context.Context, email string) (uint64, error)
	UpdatePassword(ctx context.Context, id uint64, password string, cost int) error
}

// AccessStore answers tenant-binding questions from user_access.
type AccessStore interface {
	HasAccess(ctx context.Context, userID, eateryID uint64) (bool, error)
	RolesForEatery(ctx context.Context, userID, eateryID uint64) ([]model.Role, error)
	EateriesForUser(ctx context.Context, userID uint64) ([]uint64, error)
}

// RefreshStore persists the single refresh session a user may hold.
type RefreshStore interface {
	Replace(ctx context.Context, userID uint64, tokenHash string, eateryID *uint64, exp time.Time) error
	Lookup(ctx context.Context, tokenHash string) (repository.RefreshSession, error)
	SwitchEatery(ctx context.Context, userID uint64, newHash string, eateryID uint64) error
	DeleteForUser(ctx context.Context, userID uint64) error
}

// AuthHandler bundles dependencies for session endpoints: login, refresh,
// eatery switch and logout.
type AuthHandler struct {
	Cfg    config.Config
	Users  UserStore
	Access AccessStore
	Tokens RefreshStore
}

func NewAuthHandler(cfg config.Config, users UserStore, access AccessStore, tokens RefreshStore) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: users, Access: access, Tokens: tokens}
}

// ----- DTOs -----

type loginReq struct {
	Email    string  `json:"email"`
	Password string  `json:"password"`
	EateryID *uint64 `json:"eateryId"`
}
type refreshReq struct {
	RefreshToken string `json:"refreshToken"`
}
type switchEateryReq struct {
	EateryID uint64 `json:"eateryId"`
}

type sessionResp struct {
	AccessToken  string  `json:"accessToken"`
	RefreshToken string  `json:"refreshToken"`
	UserID       uint64  `json:"userId,omitempty"`
	EateryID     *uint64 `json:"eateryId,omitempty"`
}

// maxEateryID bounds the eatery id accepted on an eatery switch.
const maxEateryID = 99999

// effectiveRoles returns the roles an access token should carry for the
// given tenant context: the user_access bindings for that eatery, with a
// global SUPER_ADMIN carried over.  With no eatery selected the global role
// set is used as-is.
func (h *AuthHandler) effectiveRoles(ctx context.Context, u model.User, eateryID *uint64) ([]model.Role, error) {
	if eateryID == nil {
		return u.Roles, nil
	}
	roles, err := h.Access.RolesForEatery(ctx, u.ID, *eateryID)
	if err != nil {
		return nil, err
	}
	if model.HasAnyRole(u.Roles, model.RoleSuperAdmin) && !model.HasAnyRole(roles, model.RoleSuperAdmin) {
		roles = append(roles, model.RoleSuperAdmin)
	}
	return roles, nil
}

// Login verifies credentials and installs a fresh session: a new refresh
// token replaces any prior one (one live session per user), and the access
// token carries the user's effective roles for the selected eatery.  A
// requested eatery the user is not bound to degrades to no selection; when
// nothing was requested the first bound eatery becomes the default.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return response.Fail(c, http.StatusBadRequest, response.CodeInvalidRequest, "invalid body")
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return response.Fail(c, http.StatusBadRequest, response.CodeInvalidRequest, "email/password required")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return response.Fail(c, http.StatusUnauthorized, response.CodeInvalidCredentials, "invalid credentials")
		}
		return response.Internal(c)
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return response.Fail(c, http.StatusUnauthorized, response.CodeInvalidCredentials, "invalid credentials")
	}

	resp, err := h.issueSession(ctx, u, req.EateryID)
	if err != nil {
		return response.Internal(c)
	}
	return c.JSON(http.StatusOK, resp)
}

// issueSession installs a fresh session for u, replacing any prior one.
// A requested eatery the user is not bound to degrades to no selection;
// when nothing was requested the first bound eatery becomes the default.
func (h *AuthHandler) issueSession(ctx context.Context, u model.User, requested *uint64) (sessionResp, error) {
	eateryID := requested
	if eateryID != nil {
		ok, err := h.Access.HasAccess(ctx, u.ID, *eateryID)
		if err != nil {
			return sessionResp{}, err
		}
		if !ok {
			eateryID = nil // unknown selection falls back to none
		}
	}
	if eateryID == nil {
		ids, err := h.Access.EateriesForUser(ctx, u.ID)
		if err != nil {
			return sessionResp{}, err
		}
		if len(ids) > 0 {
			eateryID = &ids[0]
		}
	}

	roles, err := h.effectiveRoles(ctx, u, eateryID)
	if err != nil {
		return sessionResp{}, err
	}

	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, roles, eateryID, h.Cfg.AccessTTLMin)
	if err != nil {
		return sessionResp{}, err
	}
	refresh, err := utils.NewRefreshToken(h.Cfg.RefreshTTLDays)
	if err != nil {
		return sessionResp{}, err
	}
	if err := h.Tokens.Replace(ctx, u.ID, utils.HashTokenRaw(refresh.Raw), eateryID, refresh.Exp); err != nil {
		return sessionResp{}, err
	}

	return sessionResp{
		AccessToken:  access.Token,
		RefreshToken: refresh.Raw,
		UserID:       u.ID,
		EateryID:     eateryID,
	}, nil
}

// Refresh mints a new access token from a stored refresh session.  The
// refresh token itself is not rotated here; its own expiry bounds the
// session.  Not-found and expired both map to 403.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return response.Fail(c, http.StatusBadRequest, response.CodeInvalidRequest, "refreshToken required")
	}
	raw := strings.TrimSpace(req.RefreshToken)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	sess, err := h.Tokens.Lookup(ctx, utils.HashTokenRaw(raw))
	if err != nil {
		if errors.Is(err, repository.ErrRefreshTokenNotFound) || errors.Is(err, repository.ErrRefreshTokenExpired) {
			return response.Fail(c, http.StatusForbidden, response.CodeRefreshTokenInvalid, "refresh token not found or expired")
		}
		return response.Internal(c)
	}

	u, err := h.Users.GetByID(ctx, sess.UserID)
	if err != nil {
		return response.Internal(c)
	}
	roles, err := h.effectiveRoles(ctx, u, sess.EateryID)
	if err != nil {
		return response.Internal(c)
	}
	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, roles, sess.EateryID, h.Cfg.AccessTTLMin)
	if err != nil {
		return response.Internal(c)
	}

	return c.JSON(http.StatusOK, sessionResp{
		AccessToken:  access.Token,
		RefreshToken: raw, // unchanged on this path
		EateryID:     sess.EateryID,
	})
}

// SwitchEatery moves the caller's session into a different tenant context.
// The user must hold a user_access binding for the target eatery; the
// stored session is updated and a fresh token pair carrying the new
// context is returned.  A denied switch leaves the session untouched.
func (h *AuthHandler) SwitchEatery(c echo.Context) error {
	auth, ok := middleware.Auth(c)
	if !ok {
		return response.Fail(c, http.StatusUnauthorized, response.CodeTokenInvalid, "authentication required")
	}

	var req switchEateryReq
	if err := c.Bind(&req); err != nil || req.EateryID < 1 || req.EateryID > maxEateryID {
		return response.Fail(c, http.StatusBadRequest, response.CodeInvalidRequest, "eateryId must be between 1 and 99999")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	ok, err := h.Access.HasAccess(ctx, auth.UserID, req.EateryID)
	if err != nil {
		return response.Internal(c)
	}
	if !ok {
		return response.Fail(c, http.StatusForbidden, response.CodeEateryAccessDenied, "no access to the requested eatery")
	}

	refresh, err := utils.NewRefreshToken(h.Cfg.RefreshTTLDays)
	if err != nil {
		return response.Internal(c)
	}
	err = h.Tokens.SwitchEatery(ctx, auth.UserID, utils.HashTokenRaw(refresh.Raw), req.EateryID)
	if err != nil {
		if errors.Is(err, repository.ErrRefreshTokenNotFound) || errors.Is(err, repository.ErrRefreshTokenExpired) {
			return response.Fail(c, http.StatusConflict, response.CodeNoSession, "no active session to switch")
		}
		return response.Internal(c)
	}

	u, err := h.Users.GetByID(ctx, auth.UserID)
	if err != nil {
		return response.Internal(c)
	}
	eateryID := req.EateryID
	roles, err := h.effectiveRoles(ctx, u, &eateryID)
	if err != nil {
		return response.Internal(c)
	}
	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, roles, &eateryID, h.Cfg.AccessTTLMin)
	if err != nil {
		return response.Internal(c)
	}

	return c.JSON(http.StatusOK, sessionResp{
		AccessToken:  access.Token,
		RefreshToken: refresh.Raw,
		UserID:       u.ID,
		EateryID:     &eateryID,
	})
}

// Logout deletes the caller's refresh session.  Logging out twice is not
// an error.
func (h *AuthHandler) Logout(c echo.Context) error {
	auth, ok := middleware.Auth(c)
	if !ok {
		return response.Fail(c, http.StatusUnauthorized, response.CodeTokenInvalid, "authentication required")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Tokens.DeleteForUser(ctx, auth.UserID); err != nil {
		return response.Internal(c)
	}
	return response.OK(c, "logged out")
}

// Me returns the authenticated principal, mostly for debugging clients.
func (h *AuthHandler) Me(c echo.Context) error {
	auth, ok := middleware.Auth(c)
	if !ok {
		return response.Fail(c, http.StatusUnauthorized, response.CodeTokenInvalid, "authentication required")
	}
	return c.JSON(http.StatusOK, echo.Map{
		"userId":   auth.UserID,
		"roles":    model.RoleStrings(auth.Roles),
		"eateryId": auth.EateryID,
	})
}
