// Package auth gates the HTTP API behind a shared passphrase. A successful
// login exchanges the passphrase for a short-lived HS256 session token.
package auth

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

const (
	subject    = "scout-operator"
	issuer     = "lead-scout"
	defaultTTL = 12 * time.Hour
)

var (
	// ErrDisabled means no passphrase is configured, so nobody can log in.
	ErrDisabled = eris.New("auth: login disabled")
	// ErrBadPassphrase means the passphrase did not match.
	ErrBadPassphrase = eris.New("auth: invalid passphrase")
	// ErrBadToken means the session token is missing, malformed or expired.
	ErrBadToken = eris.New("auth: invalid token")
)

// Claims are the session token claims.
type Claims struct {
	Sub string `json:"sub"`
	jwt.RegisteredClaims
}

// AuthContext holds the configured passphrase and the session signer.
// It is safe for concurrent use.
type AuthContext struct { //nolint:revive
	passphrase []byte
	secret     []byte
	ttl        time.Duration
	now        func() time.Time
}

// New creates an AuthContext. An empty secret gets a random one, so tokens
// do not survive a restart. A non-positive ttl uses 12 hours.
func New(passphrase, secret string, ttl time.Duration) (*AuthContext, error) {
	key := []byte(secret)
	if len(key) == 0 {
		key = make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			return nil, eris.Wrap(err, "auth: generate secret")
		}
	}
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &AuthContext{
		passphrase: []byte(passphrase),
		secret:     key,
		ttl:        ttl,
		now:        time.Now,
	}, nil
}

// Enabled reports whether a passphrase is configured.
func (a *AuthContext) Enabled() bool {
	return len(a.passphrase) > 0
}

// Login checks passphrase in constant time and returns a signed session
// token and its expiry.
func (a *AuthContext) Login(passphrase string) (string, time.Time, error) {
	if !a.Enabled() {
		return "", time.Time{}, ErrDisabled
	}
	if subtle.ConstantTimeCompare([]byte(passphrase), a.passphrase) != 1 {
		return "", time.Time{}, ErrBadPassphrase
	}

	now := a.now()
	exp := now.Add(a.ttl)
	claims := &Claims{
		Sub: subject,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return "", time.Time{}, eris.Wrap(err, "auth: sign token")
	}
	return token, exp, nil
}

// Verify validates a session token.
func (a *AuthContext) Verify(token string) (*Claims, error) {
	if !a.Enabled() {
		return nil, ErrDisabled
	}
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, eris.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return a.secret, nil
	},
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil {
		return nil, eris.Wrap(ErrBadToken, err.Error())
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.Sub != subject {
		return nil, ErrBadToken
	}
	return claims, nil
}

type ctxKey struct{}

// ClaimsFrom returns the claims stored by Middleware.
func ClaimsFrom(ctx context.Context) (*Claims, bool) {
	c, ok := ctx.Value(ctxKey{}).(*Claims)
	return c, ok
}

// Middleware rejects requests without a valid "Authorization: Bearer"
// session token.
func (a *AuthContext) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearer(r.Header.Get("Authorization"))
		if !ok {
			http.Error(w, "missing bearer token", http.StatusUnauthorized)
			return
		}
		claims, err := a.Verify(token)
		if err != nil {
			zap.L().Debug("auth: rejected request", zap.String("path", r.URL.Path), zap.Error(err))
			http.Error(w, "invalid or expired session", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, claims)))
	})
}

func bearer(header string) (string, bool) {
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	return strings.TrimSpace(header[len(prefix):]), true
}
