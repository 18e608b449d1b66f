package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

var (
	errMissingToken = errors.New("missing token")
	errInvalidToken = errors.New("invalid token")
)

// authenticator issues and verifies the HS256 bearer tokens. The secret comes
// in through the constructor; nothing here touches global state.
type authenticator struct {
	secret []byte
	ttl    time.Duration
}

func newAuthenticator(secret []byte, ttl time.Duration) *authenticator {
	return &authenticator{
		secret: secret,
		ttl:    ttl,
	}
}

func (a *authenticator) issueToken(userID int) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().Add(a.ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.secret)
}

// parseToken returns the embedded user id. Malformed tokens, bad signatures
// and expired tokens all collapse to errInvalidToken; callers answer 401
// either way.
func (a *authenticator) parseToken(raw string) (int, error) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return a.secret, nil
	})
	if err != nil {
		return 0, errInvalidToken
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return 0, errInvalidToken
	}
	id, ok := claims["user_id"].(float64)
	if !ok {
		return 0, errInvalidToken
	}
	return int(id), nil
}

// extractToken pulls the raw token from an Authorization header value. The
// "Bearer " prefix is optional; a bare token is accepted too.
func extractToken(header string) (string, error) {
	token := strings.TrimSpace(header)
	token = strings.TrimPrefix(token, "Bearer ")
	token = strings.TrimSpace(token)
	if token == "" {
		return "", errMissingToken
	}
	return token, nil
}

// requireAuth is the single authorization gate: every protected handler sits
// behind it. A valid token whose user still exists grants full access.
func (app *application) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Add("Vary", "Authorization")
		token, err := extractToken(r.Header.Get("Authorization"))
		if err != nil {
			writeMessage(w, http.StatusUnauthorized, "Token is missing!")
			return
		}
		userID, err := app.auth.parseToken(token)
		if err != nil {
			writeMessage(w, http.StatusUnauthorized, "Token is invalid!")
			return
		}
		u, err := app.storage.getUserByID(userID)
		if err != nil {
			app.serverError(w, err)
			return
		}
		if u == nil {
			writeMessage(w, http.StatusUnauthorized, "Token is invalid!")
			return
		}
		ctx := context.WithValue(r.Context(), userContextKey, u)
		next.ServeHTTP(w, r.WithContext(ctx))
	}
}

type userContext string

const userContextKey userContext = "userContextKey"

func getUserFromRequest(r *http.Request) *user {
	u, _ := r.Context().Value(userContextKey).(*user)
	return u
}
