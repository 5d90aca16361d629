package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/qrfood/eatery-backend/internal/model"
	"github.com/qrfood/eatery-backend/internal/queue"
	"github.com/qrfood/eatery-backend/internal/repository"
	"github.com/qrfood/eatery-backend/internal/response"
)

// AuthTokenStore issues and consumes single-use tokens.  Create returns the
// plaintext exactly once; Consume burns the row whatever the outcome.
type AuthTokenStore interface {
	Create(ctx context.Context, userID uint64, typ model.AuthTokenType, ttl time.Duration) (string, error)
	Consume(ctx context.Context, plaintext string, expected model.AuthTokenType) (uint64, error)
	DeleteForUser(ctx context.Context, userID uint64) error
}

// MailPublisher hands a token link off for delivery.  The real
// implementation publishes to RabbitMQ; tests capture the event.
type MailPublisher func(ctx context.Context, queueName string, ev queue.MailEvent) error

// HybridAuthHandler covers the passwordless flows: magic-link login and
// password reset.  It reuses the session machinery from AuthHandler when a
// verified token turns into a login.
type HybridAuthHandler struct {
	*AuthHandler
	AuthTokens AuthTokenStore
	Mail       MailPublisher
}

func NewHybridAuthHandler(base *AuthHandler, tokens AuthTokenStore, mail MailPublisher) *HybridAuthHandler {
	return &HybridAuthHandler{AuthHandler: base, AuthTokens: tokens, Mail: mail}
}

type emailReq struct {
	Email string `json:"email"`
}
type resetCompleteReq struct {
	Token    string `json:"token"`
	Password string `json:"newPassword"`
}

// RequestMagicLink issues a single-use login token and mails its link.  An
// unknown email gets a bare passwordless account first, so the same flow
// doubles as sign-up.  The response never reveals whether the account
// existed before.
func (h *HybridAuthHandler) RequestMagicLink(c echo.Context) error {
	var req emailReq
	if err := c.Bind(&req); err != nil {
		return response.Fail(c, http.StatusBadRequest, response.CodeInvalidRequest, "invalid body")
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || !strings.Contains(email, "@") {
		return response.Fail(c, http.StatusBadRequest, response.CodeInvalidRequest, "valid email required")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return response.Internal(c)
		}
		id, err := h.Users.CreateBare(ctx, email)
		if err != nil {
			if errors.Is(err, repository.ErrEmailExists) {
				// lost a race with a concurrent request; reload
				u, err = h.Users.GetByEmail(ctx, email)
				if err != nil {
					return response.Internal(c)
				}
			} else {
				return response.Internal(c)
			}
		} else {
			u = model.User{ID: id, Email: email}
		}
	}

	plaintext, err := h.AuthTokens.Create(ctx, u.ID, model.TokenMagicLink, time.Duration(h.Cfg.MagicLinkTTLMin)*time.Minute)
	if err != nil {
		return response.Internal(c)
	}
	link := fmt.Sprintf("%s/auth/magic?token=%s", h.Cfg.FrontendBaseURL, plaintext)
	_ = h.Mail(ctx, queue.KeyMagicLinkMail, queue.MailEvent{Email: email, Link: link, At: time.Now().UTC()})

	return response.OK(c, "magic link sent")
}

// VerifyToken consumes a magic-link token from the query string and turns
// it into a full login session.  The token is burned even when verification
// fails.
func (h *HybridAuthHandler) VerifyToken(c echo.Context) error {
	token := strings.TrimSpace(c.QueryParam("token"))
	if token == "" {
		return response.Fail(c, http.StatusBadRequest, response.CodeInvalidRequest, "token required")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	userID, err := h.AuthTokens.Consume(ctx, token, model.TokenMagicLink)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrAuthTokenExpired):
			return response.Fail(c, http.StatusUnauthorized, response.CodeTokenExpired, "token expired")
		case errors.Is(err, repository.ErrAuthTokenNotFound), errors.Is(err, repository.ErrAuthTokenType):
			return response.Fail(c, http.StatusUnauthorized, response.CodeTokenInvalid, "token invalid")
		}
		return response.Internal(c)
	}

	u, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		return response.Internal(c)
	}
	resp, err := h.issueSession(ctx, u, nil)
	if err != nil {
		return response.Internal(c)
	}
	return c.JSON(http.StatusOK, resp)
}

// RequestPasswordReset issues a reset token for a known account.  The
// response is identical for unknown emails to avoid account enumeration.
func (h *HybridAuthHandler) RequestPasswordReset(c echo.Context) error {
	var req emailReq
	if err := c.Bind(&req); err != nil {
		return response.Fail(c, http.StatusBadRequest, response.CodeInvalidRequest, "invalid body")
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || !strings.Contains(email, "@") {
		return response.Fail(c, http.StatusBadRequest, response.CodeInvalidRequest, "valid email required")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return response.OK(c, "if the account exists, a reset link was sent")
		}
		return response.Internal(c)
	}

	plaintext, err := h.AuthTokens.Create(ctx, u.ID, model.TokenPasswordReset, time.Duration(h.Cfg.ResetTTLMin)*time.Minute)
	if err != nil {
		return response.Internal(c)
	}
	link := fmt.Sprintf("%s/auth/reset?token=%s", h.Cfg.FrontendBaseURL, plaintext)
	_ = h.Mail(ctx, queue.KeyPasswordReset, queue.MailEvent{Email: email, Link: link, At: time.Now().UTC()})

	return response.OK(c, "if the account exists, a reset link was sent")
}

// CompletePasswordReset consumes a reset token and installs the new
// password.  All sessions and outstanding tokens for the user are revoked.
func (h *HybridAuthHandler) CompletePasswordReset(c echo.Context) error {
	var req resetCompleteReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Token) == "" {
		return response.Fail(c, http.StatusBadRequest, response.CodeInvalidRequest, "token required")
	}
	if len(req.Password) < 8 {
		return response.Fail(c, http.StatusBadRequest, response.CodeInvalidRequest, "password must be at least 8 characters")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	userID, err := h.AuthTokens.Consume(ctx, strings.TrimSpace(req.Token), model.TokenPasswordReset)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrAuthTokenExpired):
			return response.Fail(c, http.StatusUnauthorized, response.CodeTokenExpired, "token expired")
		case errors.Is(err, repository.ErrAuthTokenNotFound), errors.Is(err, repository.ErrAuthTokenType):
			return response.Fail(c, http.StatusUnauthorized, response.CodeTokenInvalid, "token invalid")
		}
		return response.Internal(c)
	}

	if err := h.Users.UpdatePassword(ctx, userID, req.Password, h.Cfg.BcryptCost); err != nil {
		return response.Internal(c)
	}
	// a password change invalidates everything outstanding
	_ = h.Tokens.DeleteForUser(ctx, userID)
	_ = h.AuthTokens.DeleteForUser(ctx, userID)

	return response.OK(c, "password updated")
}
