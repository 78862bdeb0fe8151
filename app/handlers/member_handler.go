// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"log"

	"github.com/fasehq/backoffice/app/dto"
	businessflow "github.com/fasehq/backoffice/business_flow"
	"github.com/fasehq/backoffice/models"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

// MemberHandlerInterface defines the contract for unified member endpoints
type MemberHandlerInterface interface {
	ResolveMember(c fiber.Ctx) error
	CheckAccess(c fiber.Ctx) error
}

// MemberHandler implements MemberHandlerInterface
type MemberHandler struct {
	flow      businessflow.MemberResolutionFlow
	validator *validator.Validate
}

func NewMemberHandler(flow businessflow.MemberResolutionFlow) MemberHandlerInterface {
	return &MemberHandler{
		flow:      flow,
		validator: validator.New(),
	}
}

// ResolveMember resolves an identity id to its unified member view
// @Summary Resolve unified member
// @Description Resolve an identity id to the person behind it, whether the record lives on an individual account or inside a corporate roster
// @Tags Members
// @Produce json
// @Param id path string true "Identity ID"
// @Success 200 {object} dto.APIResponse{data=dto.ResolveMemberResponse} "Member resolved"
// @Failure 404 {object} dto.APIResponse "Member not found"
// @Failure 500 {object} dto.APIResponse "Resolution failed"
// @Router /api/v1/members/{id} [get]
func (h *MemberHandler) ResolveMember(c fiber.Ctx) error {
	memberID := c.Params("id")
	if memberID == "" {
		return errorResponse(c, fiber.StatusBadRequest, "Member id is required", "INVALID_REQUEST", nil)
	}

	member, err := h.flow.ResolveUnifiedMember(createRequestContext(c, "/api/v1/members/:id"), memberID, clientMetadata(c))
	if err != nil {
		if businessflow.IsMemberNotFound(err) {
			return errorResponse(c, fiber.StatusNotFound, "Member not found", "MEMBER_NOT_FOUND", nil)
		}
		if businessflow.IsResolutionFailed(err) {
			log.Println("Member resolution failed", err)
			return errorResponse(c, fiber.StatusInternalServerError, "Member resolution failed", "RESOLUTION_FAILED", nil)
		}
		return businessErrorResponse(c, err, "Member resolution failed", "RESOLUTION_FAILED")
	}

	return successResponse(c, fiber.StatusOK, "Member resolved", dto.ResolveMemberResponse{
		Message: "Member resolved",
		Member:  businessflow.ToUnifiedMemberDTO(*member),
	})
}

// CheckAccess evaluates the portal access policy for an identity id
// @Summary Check portal access
// @Description Report whether an identity clears a capability tier (guest, member, admin). Unknown ids are denied, not errored.
// @Tags Members
// @Accept json
// @Produce json
// @Param request body dto.AccessCheckRequest true "Access check data"
// @Success 200 {object} dto.APIResponse{data=dto.AccessCheckResponse} "Access evaluated"
// @Failure 400 {object} dto.APIResponse "Invalid request"
// @Failure 500 {object} dto.APIResponse "Access check failed"
// @Router /api/v1/members/access [post]
func (h *MemberHandler) CheckAccess(c fiber.Ctx) error {
	var req dto.AccessCheckRequest
	if err := c.Bind().JSON(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationMessages(err))
	}

	granted, err := h.flow.CheckAccess(createRequestContext(c, "/api/v1/members/access"), req.MemberID, models.AccessLevel(req.AccessLevel), clientMetadata(c))
	if err != nil {
		log.Println("Access check failed", err)
		return businessErrorResponse(c, err, "Access check failed", "ACCESS_CHECK_FAILED")
	}

	return successResponse(c, fiber.StatusOK, "Access evaluated", dto.AccessCheckResponse{
		MemberID:    req.MemberID,
		AccessLevel: req.AccessLevel,
		Granted:     granted,
	})
}
