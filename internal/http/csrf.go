package http

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/csrf"
)

// CSRFTokenHeader is the header name for CSRF token in AJAX requests.
const CSRFTokenHeader = "X-CSRF-Token"

const csrfContextKey = "csrf_token"

// CSRFMiddleware creates a Gin middleware for CSRF protection of the
// upload and confirm forms. Safe methods pass through and receive a token.
// When secure is false, requests without TLS are checked as plain HTTP.
func CSRFMiddleware(secret []byte, secure bool) gin.HandlerFunc {
	csrfProtect := csrf.Protect(
		secret,
		csrf.Secure(secure),
		csrf.HttpOnly(true),
		csrf.SameSite(csrf.SameSiteStrictMode),
		csrf.Path("/"),
		csrf.RequestHeader(CSRFTokenHeader),
		csrf.ErrorHandler(http.HandlerFunc(csrfErrorHandler)),
	)

	return func(c *gin.Context) {
		if !secure && c.Request.TLS == nil {
			c.Request = csrf.PlaintextHTTPRequest(c.Request)
		}

		passed := false
		handler := csrfProtect(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			passed = true
			c.Set(csrfContextKey, csrf.Token(r))
			c.Request = r
			c.Next()
		}))

		handler.ServeHTTP(c.Writer, c.Request)
		if !passed {
			// rejected requests must not reach the handlers
			c.Abort()
		}
	}
}

// csrfErrorHandler handles CSRF validation failures.
func csrfErrorHandler(w http.ResponseWriter, r *http.Request) {
	message := "CSRF token invalid or missing"
	if reason := csrf.FailureReason(r); reason != nil {
		message += ": " + reason.Error()
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusForbidden)
	_, _ = fmt.Fprintf(w, `{"error":%q,"code":"csrf"}`, message)
}

// GetCSRFToken retrieves the CSRF token from the Gin context.
func GetCSRFToken(c *gin.Context) string {
	if token, exists := c.Get(csrfContextKey); exists {
		if t, ok := token.(string); ok {
			return t
		}
	}
	return ""
}

// CSRFToken handles GET /api/csrf. The token is returned in the body and in
// the X-CSRF-Token header for clients that post the import forms.
func CSRFToken(c *gin.Context) {
	token := GetCSRFToken(c)
	if token == "" {
		respondNotFound(c, "csrf token")
		return
	}
	c.Header(CSRFTokenHeader, token)
	c.JSON(http.StatusOK, gin.H{"token": token})
}

// CSRFSecret decodes a configured secret, accepting hex or raw bytes. An
// empty value yields a random 32 byte secret and generated=true.
func CSRFSecret(configured string) (secret []byte, generated bool, err error) {
	configured = strings.TrimSpace(configured)
	if configured != "" {
		if decoded, decodeErr := hex.DecodeString(configured); decodeErr == nil && len(decoded) >= 32 {
			return decoded, false, nil
		}
		if len(configured) < 32 {
			return nil, false, fmt.Errorf("csrf secret must be at least 32 bytes")
		}
		return []byte(configured), false, nil
	}

	secret = make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		return nil, false, fmt.Errorf("generate csrf secret: %w", err)
	}
	return secret, true, nil
}
