package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"busticket-backend/internal/shared/response"
	"busticket-backend/pkg/jwt"
)

// AuthMiddleware verifies the bearer token and puts the caller's
// customer id into the gin context. Token issuance itself belongs to
// the identity service; this side only needs verification.
func AuthMiddleware(jwtManager *jwt.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, "missing authorization header")
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Unauthorized(c, "invalid authorization header format")
			c.Abort()
			return
		}

		claims, err := jwtManager.VerifyToken(parts[1])
		if err != nil {
			response.Unauthorized(c, "invalid token")
			c.Abort()
			return
		}

		customerID, err := uuid.Parse(claims.CustomerID)
		if err != nil {
			response.Unauthorized(c, "invalid customer id in token")
			c.Abort()
			return
		}

		c.Set("customer_id", customerID)
		c.Set("customer_email", claims.Email)

		c.Next()
	}
}

// GetCustomerID reads the authenticated customer id set by AuthMiddleware
func GetCustomerID(c *gin.Context) (uuid.UUID, bool) {
	v, exists := c.Get("customer_id")
	if !exists {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}
