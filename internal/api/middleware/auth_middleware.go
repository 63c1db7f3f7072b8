package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aaravmahajanofficial/storefront/internal/config"
	"github.com/aaravmahajanofficial/storefront/internal/errors"
	"github.com/aaravmahajanofficial/storefront/internal/models"
	"github.com/aaravmahajanofficial/storefront/internal/utils/response"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type contextKey uuid.UUID

var UserContextKey = contextKey(uuid.New())

const bearerPrefix = "Bearer "

// AuthMiddleware accepts shopper tokens minted by the identity service. The
// storefront never issues tokens itself.
type AuthMiddleware struct {
	jwtKey []byte
	parser *jwt.Parser
}

func NewAuthMiddleware(cfg *config.Security) *AuthMiddleware {

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(cfg.JWTLeeway),
	}

	if cfg.JWTIssuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.JWTIssuer))
	}

	return &AuthMiddleware{
		jwtKey: []byte(cfg.JWTKey),
		parser: jwt.NewParser(opts...),
	}
}

// Authenticate stores the verified claims in the request context. Requests
// without a usable shopper id are rejected before reaching the cart or ledger.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := LoggerFromContext(r.Context())

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			logger.Warn("Missing authorization header")
			response.Error(w, errors.UnauthorizedError("Authorization header is required"))
			return
		}

		rawToken, found := strings.CutPrefix(authHeader, bearerPrefix)
		if !found || strings.TrimSpace(rawToken) == "" {
			logger.Warn("Invalid authorization header format")
			response.Error(w, errors.UnauthorizedError("Invalid authorization format"))
			return
		}

		claims := &models.Claims{}

		token, err := m.parser.ParseWithClaims(strings.TrimSpace(rawToken), claims, func(*jwt.Token) (any, error) {
			return m.jwtKey, nil
		})
		if err != nil {
			logger.Warn("Rejected shopper token", slog.String("error", err.Error()))
			response.Error(w, errors.UnauthorizedError("Invalid or expired token"))
			return
		}

		if !token.Valid || claims.UserID == uuid.Nil {
			logger.Warn("Token carries no shopper id")
			response.Error(w, errors.UnauthorizedError("Invalid token"))
			return
		}

		shopperLogger := logger.With(slog.String("userID", claims.UserID.String()))

		ctx := context.WithValue(r.Context(), UserContextKey, claims)
		ctx = context.WithValue(ctx, LoggerKey, shopperLogger)

		shopperLogger.Debug("Shopper authenticated")

		next.ServeHTTP(w, r.WithContext(ctx))
	}
}

func ClaimsFromContext(ctx context.Context) (*models.Claims, bool) {
	claims, ok := ctx.Value(UserContextKey).(*models.Claims)

	return claims, ok && claims != nil
}
