package handler

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qrfood/eatery-backend/internal/model"
	"github.com/qrfood/eatery-backend/internal/queue"
	"github.com/qrfood/eatery-backend/internal/repository"
	"github.com/qrfood/eatery-backend/internal/utils"
)

type authTokenRow struct {
	userID uint64
	typ    model.AuthTokenType
	exp    time.Time
}

// fakeAuthTokens mirrors the single-use semantics of the real store:
// lookup by hash, row deleted on every consume attempt that finds it.
type fakeAuthTokens struct {
	rows map[string]authTokenRow // keyed by sha256 hash
	seq  int
}

func newFakeAuthTokens() *fakeAuthTokens { return &fakeAuthTokens{rows: map[string]authTokenRow{}} }

func (f *fakeAuthTokens) Create(_ context.Context, userID uint64, typ model.AuthTokenType, ttl time.Duration) (string, error) {
	f.seq++
	plaintext := fmt.Sprintf("single-use-%d", f.seq)
	f.rows[utils.HashTokenRaw(plaintext)] = authTokenRow{userID: userID, typ: typ, exp: time.Now().Add(ttl)}
	return plaintext, nil
}

func (f *fakeAuthTokens) Consume(_ context.Context, plaintext string, expected model.AuthTokenType) (uint64, error) {
	hash := utils.HashTokenRaw(plaintext)
	row, ok := f.rows[hash]
	if !ok {
		return 0, repository.ErrAuthTokenNotFound
	}
	delete(f.rows, hash) // burned regardless of outcome
	if time.Now().After(row.exp) {
		return 0, repository.ErrAuthTokenExpired
	}
	if row.typ != expected {
		return 0, repository.ErrAuthTokenType
	}
	return row.userID, nil
}

func (f *fakeAuthTokens) DeleteForUser(_ context.Context, userID uint64) error {
	for hash, row := range f.rows {
		if row.userID == userID {
			delete(f.rows, hash)
		}
	}
	return nil
}

type hybridFixture struct {
	*authFixture
	h      *HybridAuthHandler
	tokens *fakeAuthTokens
	mails  []queue.MailEvent
	queues []string
}

func newHybridFixture() *hybridFixture {
	base := newAuthFixture()
	f := &hybridFixture{authFixture: base, tokens: newFakeAuthTokens()}
	f.h = NewHybridAuthHandler(base.h, f.tokens, func(_ context.Context, queueName string, ev queue.MailEvent) error {
		f.queues = append(f.queues, queueName)
		f.mails = append(f.mails, ev)
		return nil
	})
	return f
}

// ----- magic link -----

func TestMagicLinkKnownUser(t *testing.T) {
	f := newHybridFixture()
	u := f.users.add("waiter@example.com", "pw123456", model.RoleWaiter)

	e := echo.New()
	req, rec := jsonRequest(http.MethodPost, "/v1/auth/magic-link", `{"email":"waiter@example.com"}`)
	require.NoError(t, f.h.RequestMagicLink(e.NewContext(req, rec)))
	assert.Equal(t, http.StatusOK, rec.Code)

	require.Len(t, f.mails, 1)
	assert.Equal(t, queue.KeyMagicLinkMail, f.queues[0])
	assert.Equal(t, "waiter@example.com", f.mails[0].Email)
	assert.Contains(t, f.mails[0].Link, "token=")

	require.Len(t, f.tokens.rows, 1)
	for _, row := range f.tokens.rows {
		assert.Equal(t, u.ID, row.userID)
		assert.Equal(t, model.TokenMagicLink, row.typ)
	}
}

func TestMagicLinkCreatesBareAccount(t *testing.T) {
	f := newHybridFixture()

	e := echo.New()
	req, rec := jsonRequest(http.MethodPost, "/v1/auth/magic-link", `{"email":"new@example.com"}`)
	require.NoError(t, f.h.RequestMagicLink(e.NewContext(req, rec)))
	assert.Equal(t, http.StatusOK, rec.Code)

	u, err := f.users.GetByEmail(context.Background(), "new@example.com")
	require.NoError(t, err)
	assert.Empty(t, u.PasswordHash)
	require.Len(t, f.mails, 1)
}

func TestVerifyTokenLogsIn(t *testing.T) {
	f := newHybridFixture()
	u := f.users.add("waiter@example.com", "pw123456", model.RoleWaiter)
	f.access.grant(u.ID, 7, model.RoleWaiter)

	plaintext, err := f.tokens.Create(context.Background(), u.ID, model.TokenMagicLink, time.Minute)
	require.NoError(t, err)

	e := echo.New()
	req, rec := jsonRequest(http.MethodGet, "/v1/auth/verify-token?token="+plaintext, "")
	require.NoError(t, f.h.VerifyToken(e.NewContext(req, rec)))
	require.Equal(t, http.StatusOK, rec.Code)

	got := decodeSession(t, rec)
	assert.Equal(t, u.ID, got.UserID)
	assert.NotEmpty(t, got.RefreshToken)
	require.NotNil(t, got.EateryID)
	assert.Equal(t, uint64(7), *got.EateryID)
}

func TestVerifyTokenSingleUse(t *testing.T) {
	f := newHybridFixture()
	u := f.users.add("waiter@example.com", "pw123456", model.RoleWaiter)
	plaintext, err := f.tokens.Create(context.Background(), u.ID, model.TokenMagicLink, time.Minute)
	require.NoError(t, err)

	e := echo.New()
	req, rec := jsonRequest(http.MethodGet, "/v1/auth/verify-token?token="+plaintext, "")
	require.NoError(t, f.h.VerifyToken(e.NewContext(req, rec)))
	require.Equal(t, http.StatusOK, rec.Code)

	// second use of the same value fails
	req, rec = jsonRequest(http.MethodGet, "/v1/auth/verify-token?token="+plaintext, "")
	require.NoError(t, f.h.VerifyToken(e.NewContext(req, rec)))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "TOKEN_INVALID")
}

func TestVerifyTokenTypeMismatch(t *testing.T) {
	f := newHybridFixture()
	u := f.users.add("waiter@example.com", "pw123456", model.RoleWaiter)

	// a password-reset token must not work as a magic link, and the attempt burns it
	plaintext, err := f.tokens.Create(context.Background(), u.ID, model.TokenPasswordReset, time.Minute)
	require.NoError(t, err)

	e := echo.New()
	req, rec := jsonRequest(http.MethodGet, "/v1/auth/verify-token?token="+plaintext, "")
	require.NoError(t, f.h.VerifyToken(e.NewContext(req, rec)))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, f.tokens.rows)
}

func TestVerifyTokenExpired(t *testing.T) {
	f := newHybridFixture()
	u := f.users.add("waiter@example.com", "pw123456", model.RoleWaiter)
	plaintext, err := f.tokens.Create(context.Background(), u.ID, model.TokenMagicLink, -time.Minute)
	require.NoError(t, err)

	e := echo.New()
	req, rec := jsonRequest(http.MethodGet, "/v1/auth/verify-token?token="+plaintext, "")
	require.NoError(t, f.h.VerifyToken(e.NewContext(req, rec)))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "TOKEN_EXPIRED")
	assert.Empty(t, f.tokens.rows)
}

// ----- password reset -----

func TestPasswordResetRequestHidesExistence(t *testing.T) {
	f := newHybridFixture()
	f.users.add("known@example.com", "pw123456", model.RoleWaiter)

	e := echo.New()
	req, rec := jsonRequest(http.MethodPost, "/v1/auth/password-reset/request", `{"email":"known@example.com"}`)
	require.NoError(t, f.h.RequestPasswordReset(e.NewContext(req, rec)))
	knownBody := rec.Body.String()
	assert.Equal(t, http.StatusOK, rec.Code)

	req, rec = jsonRequest(http.MethodPost, "/v1/auth/password-reset/request", `{"email":"unknown@example.com"}`)
	require.NoError(t, f.h.RequestPasswordReset(e.NewContext(req, rec)))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, knownBody, rec.Body.String())

	// only the known account produced a token and a mail
	assert.Len(t, f.mails, 1)
	assert.Equal(t, queue.KeyPasswordReset, f.queues[0])
	assert.Len(t, f.tokens.rows, 1)
}

func TestPasswordResetComplete(t *testing.T) {
	f := newHybridFixture()
	u := f.users.add("waiter@example.com", "oldpassword", model.RoleWaiter)
	plaintext, err := f.tokens.Create(context.Background(), u.ID, model.TokenPasswordReset, time.Minute)
	require.NoError(t, err)

	// an open session that must die with the reset
	f.refresh.rows[u.ID] = refreshRow{hash: "h", exp: time.Now().Add(time.Hour)}

	e := echo.New()
	req, rec := jsonRequest(http.MethodPost, "/v1/auth/password-reset/complete",
		`{"token":"`+plaintext+`","newPassword":"brand-new-pw"}`)
	require.NoError(t, f.h.CompletePasswordReset(e.NewContext(req, rec)))
	require.Equal(t, http.StatusOK, rec.Code)

	updated, err := f.users.GetByID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.True(t, utils.VerifyPassword(updated.PasswordHash, "brand-new-pw"))
	assert.False(t, utils.VerifyPassword(updated.PasswordHash, "oldpassword"))
	assert.Empty(t, f.refresh.rows)
}

func TestPasswordResetCompleteRejectsShortPassword(t *testing.T) {
	f := newHybridFixture()
	u := f.users.add("waiter@example.com", "oldpassword", model.RoleWaiter)
	plaintext, err := f.tokens.Create(context.Background(), u.ID, model.TokenPasswordReset, time.Minute)
	require.NoError(t, err)

	e := echo.New()
	req, rec := jsonRequest(http.MethodPost, "/v1/auth/password-reset/complete",
		`{"token":"`+plaintext+`","newPassword":"short"}`)
	require.NoError(t, f.h.CompletePasswordReset(e.NewContext(req, rec)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	// token survives a validation failure that never reached the store
	assert.Len(t, f.tokens.rows, 1)
}
