package peka

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"peka/internal/log"
)

// LoginRemediation tells the operator how to unblock an account the provider
// refuses to log in, usually because it wants a CAPTCHA solved.
const LoginRemediation = "log in manually at https://www.peka.poznan.pl/km/login, solve the captcha and rerun"

// AuthResult is the outcome of a login attempt. Code 0 means success.
type AuthResult struct {
	Code  int
	Token string
	// ExpiresAt is read from the token's exp claim; zero when the token is not a JWT.
	ExpiresAt time.Time
}

// OK reports whether the provider accepted the credentials.
func (r AuthResult) OK() bool { return r.Code == 0 }

type authRequest struct {
	Password string `json:"password"`
	Username string `json:"username"`
}

type authResponse struct {
	Code int    `json:"code"`
	Data string `json:"data"`
}

// Authenticate logs in with the client's credentials. A rejected login is not an
// error: callers inspect AuthResult.OK.
func (c *Client) Authenticate(ctx context.Context) (AuthResult, error) {
	var resp authResponse
	err := c.do(ctx, request{
		method:  http.MethodPost,
		path:    authPath,
		referer: historyReferer,
		body:    authRequest{Password: c.password, Username: c.email},
		extra:   map[string]string{"Priority": "u=0"},
	}, &resp)
	if err != nil {
		return AuthResult{}, fmt.Errorf("authenticate: %w", err)
	}

	result := AuthResult{Code: resp.Code, Token: resp.Data}
	if !result.OK() {
		return result, nil
	}

	if exp, ok := tokenExpiry(resp.Data); ok {
		result.ExpiresAt = exp
		log.FromContext(ctx).DebugContext(ctx, "Bearer token issued",
			log.FieldOperation, log.OpAuthenticate,
			"expires_at", exp.Format(time.RFC3339))
	}
	return result, nil
}

// tokenExpiry reads the exp claim without verifying the signature; the key is the
// provider's and the token is only ever sent back to it.
func tokenExpiry(token string) (time.Time, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
