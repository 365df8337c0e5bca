package middleware

import (
	"errors"
	"log"
	"net/http"
	"time"

	"batstats/internal/common"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const SessionCookieName = "batstats_session"

// Sessions issues and validates the signed session cookie. The cookie is an
// HS256 JWT whose "sid" claim names the server-side session state.
type Sessions struct {
	secret []byte
	ttl    time.Duration
	secure bool
	now    func() time.Time
}

func NewSessions(secret string, ttl time.Duration, secure bool) *Sessions {
	return &Sessions{
		secret: []byte(secret),
		ttl:    ttl,
		secure: secure,
		now:    time.Now,
	}
}

// Sign creates a token for the session id
func (s *Sessions) Sign(sessionID string) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"sid": sessionID,
		"iat": now.Unix(),
		"exp": now.Add(s.ttl).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Parse validates a token and returns its session id
func (s *Sessions) Parse(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil {
		return "", err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", errors.New("invalid claims")
	}
	sid, ok := claims["sid"].(string)
	if !ok {
		return "", errors.New("missing sid in token")
	}
	if _, err := uuid.Parse(sid); err != nil {
		return "", errors.New("invalid sid format")
	}
	return sid, nil
}

// Middleware attaches the session id to every request, starting a new session
// when the cookie is missing, expired or forged.
func (s *Sessions) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sessionID := ""
			if cookie, err := c.Cookie(SessionCookieName); err == nil {
				sid, err := s.Parse(cookie.Value)
				if err != nil {
					log.Printf("DEBUG: discarding session cookie: %v", err)
				} else {
					sessionID = sid
				}
			}

			if sessionID == "" {
				sessionID = uuid.NewString()
				token, err := s.Sign(sessionID)
				if err != nil {
					log.Printf("ERROR: failed to sign session token: %v", err)
					return echo.NewHTTPError(http.StatusInternalServerError, "Failed to start session")
				}
				c.SetCookie(&http.Cookie{
					Name:     SessionCookieName,
					Value:    token,
					Path:     "/",
					MaxAge:   int(s.ttl.Seconds()),
					HttpOnly: true,
					Secure:   s.secure,
					SameSite: http.SameSiteLaxMode,
				})
			}

			ctx := common.WithSessionID(c.Request().Context(), sessionID)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

// SessionID returns the session id attached by Middleware
func SessionID(c echo.Context) (string, bool) {
	return common.GetSessionIDFromContext(c.Request().Context())
}
