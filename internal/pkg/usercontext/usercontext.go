package usercontext

import "github.com/gofiber/fiber/v2"

// UserContext represents the complete user context for a request
type UserContext struct {
	UserID     uint   `json:"user_id"`
	Username   string `json:"username"`
	Role       string `json:"role"`
	IsLoggedIn bool   `json:"is_logged_in"`
	IsAdmin    bool   `json:"is_admin"`
}

const contextKey = "USER_CONTEXT"

// SetUserContext stores the user context on the request
func SetUserContext(c *fiber.Ctx, userCtx UserContext) {
	c.Locals(contextKey, userCtx)
}

// GetUserContext returns the user context set by the auth middleware, or the
// zero value for anonymous requests.
func GetUserContext(c *fiber.Ctx) UserContext {
	if v := c.Locals(contextKey); v != nil {
		if userCtx, ok := v.(UserContext); ok {
			return userCtx
		}
	}
	return UserContext{}
}
