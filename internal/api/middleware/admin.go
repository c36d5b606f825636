package middleware

import (
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/forkintheroad/fitr-admin/internal/admin"
	"github.com/forkintheroad/fitr-admin/internal/domain"
	"github.com/forkintheroad/fitr-admin/internal/ws"
)

const (
	// LocalAdminUser is the key to retrieve the admin user id from context
	LocalAdminUser = ws.LocalsAdminID
	// LocalAdminEmail is the key to retrieve the admin email from context
	LocalAdminEmail = "admin_email"
	// LocalAdminRole is the key to retrieve admin role from context
	LocalAdminRole = "admin_role"
)

// AdminAuthDependencies contains dependencies for admin authentication
type AdminAuthDependencies struct {
	JWTService *admin.JWTService
	Logger     *slog.Logger
}

// AdminAuth requires a valid admin bearer JWT. Missing or invalid tokens
// are 401, a non-admin role is 403.
func AdminAuth(deps AdminAuthDependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := extractBearerToken(c)
		if token == "" {
			deps.Logger.Debug("missing authorization header")
			return domain.ErrUnauthorized
		}

		claims, err := deps.JWTService.ValidateToken(token)
		if err != nil {
			deps.Logger.Warn("invalid JWT token", "error", err)
			return domain.ErrUnauthorized
		}

		if claims.Role != admin.RoleAdmin {
			deps.Logger.Warn("insufficient privileges", "role", claims.Role, "required", admin.RoleAdmin)
			return domain.ErrForbidden
		}

		storeClaims(c, claims)

		deps.Logger.Debug("admin authenticated",
			"user_id", claims.UserID,
			"email", claims.Email,
		)

		return c.Next()
	}
}

// OptionalAdminAuth stores the admin identity when a valid admin token is
// present and always continues. Handlers behind it decide how to report a
// missing identity.
func OptionalAdminAuth(deps AdminAuthDependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := extractBearerToken(c)
		if token == "" {
			return c.Next()
		}

		claims, err := deps.JWTService.ValidateToken(token)
		if err != nil {
			deps.Logger.Debug("ignoring invalid JWT token", "error", err)
			return c.Next()
		}
		if claims.Role == admin.RoleAdmin {
			storeClaims(c, claims)
		}

		return c.Next()
	}
}

func storeClaims(c *fiber.Ctx, claims *admin.Claims) {
	c.Locals(LocalAdminUser, claims.UserID)
	c.Locals(LocalAdminEmail, claims.Email)
	c.Locals(LocalAdminRole, claims.Role)
}

// GetAdminUserID retrieves the authenticated admin user id from context
func GetAdminUserID(c *fiber.Ctx) (string, error) {
	userID, ok := c.Locals(LocalAdminUser).(string)
	if !ok || userID == "" {
		return "", domain.ErrUnauthorized
	}
	return userID, nil
}

// IsAdmin checks if the current request carries an admin identity
func IsAdmin(c *fiber.Ctx) bool {
	role, ok := c.Locals(LocalAdminRole).(string)
	return ok && role == admin.RoleAdmin
}

// extractBearerToken extracts token from Authorization header
func extractBearerToken(c *fiber.Ctx) string {
	auth := c.Get("Authorization")
	if auth == "" {
		return ""
	}

	// Expected format: "Bearer <token>"
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}

	return strings.TrimSpace(parts[1])
}
