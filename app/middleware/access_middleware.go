package middleware

import (
	businessflow "github.com/fasehq/backoffice/business_flow"
	"github.com/fasehq/backoffice/app/dto"
	"github.com/fasehq/backoffice/models"
	"github.com/gofiber/fiber/v3"
)

// AccessMiddleware enforces the portal access policy on member routes. It
// runs after OptionalAuth: an absent member id is an anonymous guest.
type AccessMiddleware struct {
	resolutionFlow businessflow.MemberResolutionFlow
}

// NewAccessMiddleware creates a new access policy middleware
func NewAccessMiddleware(resolutionFlow businessflow.MemberResolutionFlow) *AccessMiddleware {
	return &AccessMiddleware{
		resolutionFlow: resolutionFlow,
	}
}

// RequireAccessLevel denies requests whose authenticated member does not
// clear the given capability tier
func (m *AccessMiddleware) RequireAccessLevel(level models.AccessLevel) fiber.Handler {
	return func(c fiber.Ctx) error {
		if level == models.AccessLevelGuest {
			return c.Next()
		}

		memberID, _ := GetMemberIDFromContext(c)
		metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
		if requestID := c.Get("X-Request-ID"); requestID != "" {
			metadata.SetRequestID(requestID)
		}

		granted, err := m.resolutionFlow.CheckAccess(c.Context(), memberID, level, metadata)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(dto.APIResponse{
				Success: false,
				Message: "Access check failed",
				Error:   dto.ErrorDetail{Code: "ACCESS_CHECK_FAILED"},
			})
		}
		if !granted {
			return c.Status(fiber.StatusForbidden).JSON(dto.APIResponse{
				Success: false,
				Message: "Insufficient access level",
				Error:   dto.ErrorDetail{Code: "ACCESS_DENIED"},
			})
		}

		return c.Next()
	}
}
