package utils // package utils provides helper functions for token creation and hashing

import (
	"crypto/rand"   // secure random number generation
	"crypto/sha256" // SHA-256 hashing for refresh and single-use tokens
	"encoding/hex"  // hex encoding of random bytes and digests
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens

	"github.com/qrfood/eatery-backend/internal/model"
)

// Verification failure modes.  ErrTokenExpired covers a structurally valid
// token past its exp claim; everything else (bad signature, wrong algorithm,
// malformed claims) is ErrTokenInvalid.
var (
	ErrTokenExpired = errors.New("access token expired")
	ErrTokenInvalid = errors.New("access token invalid")
)

// AccessToken represents a signed JWT access token along with its expiry.
// Access tokens are short-lived and carried in the Authorization header on
// every tenant-scoped request.
type AccessToken struct {
	Token string    // the serialized JWT string
	Exp   time.Time // the UTC expiration time
}

// AccessClaims is the decoded content of a verified access token: who the
// caller is, which roles they hold and which eatery they are acting in.
type AccessClaims struct {
	UserID   uint64
	Roles    []model.Role
	EateryID *uint64
	IssuedAt time.Time
	Expires  time.Time
}

// NewAccessToken builds and signs an HS256 JWT.  Claims: sub (user id),
// roles, eatery_id (omitted when nil), exp and iat.  Verifying the result
// requires only the same secret; no storage round-trip.
func NewAccessToken(secret string, userID uint64, roles []model.Role, eateryID *uint64, ttlMin int) (AccessToken, error) {
	now := time.Now().UTC()
	exp := now.Add(time.Duration(ttlMin) * time.Minute)
	claims := jwt.MapClaims{
		"sub":   userID,
		"roles": model.RoleStrings(roles),
		"exp":   exp.Unix(),
		"iat":   now.Unix(),
	}
	if eateryID != nil {
		claims["eatery_id"] = *eateryID
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return AccessToken{}, err
	}
	return AccessToken{Token: signed, Exp: exp}, nil
}

// VerifyAccessToken checks signature and expiry and decodes the claims.
// It is pure: the same secret and token always yield the same result at a
// given instant.  Returns ErrTokenExpired or ErrTokenInvalid on failure.
func VerifyAccessToken(secret, raw string) (AccessClaims, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return []byte(secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return AccessClaims{}, ErrTokenExpired
		}
		return AccessClaims{}, ErrTokenInvalid
	}
	if !tok.Valid {
		return AccessClaims{}, ErrTokenInvalid
	}
	mc, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return AccessClaims{}, ErrTokenInvalid
	}
	return claimsFromMap(mc)
}

// claimsFromMap converts jwt.MapClaims into typed AccessClaims.  Numeric
// claims arrive as float64 after JSON decoding.
func claimsFromMap(mc jwt.MapClaims) (AccessClaims, error) {
	var out AccessClaims

	sub, ok := mc["sub"].(float64)
	if !ok || sub <= 0 {
		return AccessClaims{}, ErrTokenInvalid
	}
	out.UserID = uint64(sub)

	if raw, ok := mc["roles"].([]interface{}); ok {
		ss := make([]string, 0, len(raw))
		for _, v := range raw {
			if s, ok := v.(string); ok {
				ss = append(ss, s)
			}
		}
		out.Roles = model.RolesFromStrings(ss)
	}

	if e, ok := mc["eatery_id"].(float64); ok {
		id := uint64(e)
		out.EateryID = &id
	}
	if iat, ok := mc["iat"].(float64); ok {
		out.IssuedAt = time.Unix(int64(iat), 0).UTC()
	}
	if exp, ok := mc["exp"].(float64); ok {
		out.Expires = time.Unix(int64(exp), 0).UTC()
	}
	return out, nil
}

// RefreshToken represents a long-lived opaque token used to obtain new
// access tokens.  The Raw field is returned to the client exactly once; the
// database stores only a SHA-256 hash of it.
type RefreshToken struct {
	Raw string    // raw token string returned to the client
	Exp time.Time // UTC expiration time
}

// NewRefreshToken returns a cryptographically secure random token and its
// expiration time.  ttlDays controls session length; the value is rotated
// on login and eatery switch, never on plain refresh.
func NewRefreshToken(ttlDays int) (RefreshToken, error) {
	raw, err := randomHex(48) // 48 bytes -> 96 hex chars
	if err != nil {
		return RefreshToken{}, err
	}
	return RefreshToken{
		Raw: raw,
		Exp: time.Now().UTC().Add(time.Duration(ttlDays) * 24 * time.Hour),
	}, nil
}

// HashTokenRaw returns the SHA-256 hash of a raw refresh or single-use token
// as a hex string.  Storing only the hash keeps stolen database rows from
// being replayed as live credentials.
func HashTokenRaw(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// randomHex returns a hex-encoded string generated from n bytes of
// cryptographically secure random data.
func randomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
