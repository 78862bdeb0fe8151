// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"log"

	"github.com/fasehq/backoffice/app/dto"
	"github.com/fasehq/backoffice/app/middleware"
	businessflow "github.com/fasehq/backoffice/business_flow"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

// RosterHandlerInterface defines the contract for corporate roster endpoints
type RosterHandlerInterface interface {
	GetRoster(c fiber.Ctx) error
	AddMember(c fiber.Ctx) error
	UpdateMember(c fiber.Ctx) error
	RemoveMember(c fiber.Ctx) error
}

// RosterHandler implements RosterHandlerInterface
type RosterHandler struct {
	flow      businessflow.MembershipFlow
	validator *validator.Validate
}

func NewRosterHandler(flow businessflow.MembershipFlow) RosterHandlerInterface {
	return &RosterHandler{
		flow:      flow,
		validator: validator.New(),
	}
}

// GetRoster returns the full member list of one corporate account
// @Summary Get roster
// @Description List every member of one corporate account
// @Tags Roster
// @Produce json
// @Param id path string true "Organization ID"
// @Success 200 {object} dto.APIResponse{data=dto.RosterResponse} "Roster retrieved"
// @Failure 404 {object} dto.APIResponse "Account not found"
// @Failure 422 {object} dto.APIResponse "Account is not corporate"
// @Router /api/v1/admin/organizations/{id}/members [get]
func (h *RosterHandler) GetRoster(c fiber.Ctx) error {
	organizationID := c.Params("id")
	if organizationID == "" {
		return errorResponse(c, fiber.StatusBadRequest, "Organization id is required", "INVALID_REQUEST", nil)
	}

	resp, err := h.flow.GetRoster(createRequestContext(c, "/api/v1/admin/organizations/:id/members"), organizationID, clientMetadata(c))
	if err != nil {
		return h.rosterErrorResponse(c, err, "Failed to list roster", "ROSTER_LIST_FAILED")
	}

	return successResponse(c, fiber.StatusOK, resp.Message, resp)
}

// AddMember adds a person to a corporate account's roster
// @Summary Add roster member
// @Description Add a person to a corporate account's roster. Duplicate ids within one roster are rejected; the same id in another organization's roster is allowed and surfaced.
// @Tags Roster
// @Accept json
// @Produce json
// @Param request body dto.AddMemberRequest true "Member data"
// @Success 201 {object} dto.APIResponse{data=dto.MemberMutationResponse} "Member added"
// @Failure 400 {object} dto.APIResponse "Invalid request"
// @Failure 404 {object} dto.APIResponse "Account not found"
// @Failure 409 {object} dto.APIResponse "Member already in roster"
// @Router /api/v1/admin/organizations/members [post]
func (h *RosterHandler) AddMember(c fiber.Ctx) error {
	var req dto.AddMemberRequest
	if err := c.Bind().JSON(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationMessages(err))
	}

	adminID, ok := middleware.GetAdminIDFromContext(c)
	if !ok {
		return errorResponse(c, fiber.StatusUnauthorized, "Admin authentication required", "ADMIN_AUTHENTICATION_REQUIRED", nil)
	}

	resp, err := h.flow.AddMember(createRequestContext(c, "/api/v1/admin/organizations/members"), &req, adminID, clientMetadata(c))
	if err != nil {
		if businessflow.IsMemberAlreadyInRoster(err) {
			return errorResponse(c, fiber.StatusConflict, "Member already in roster", "MEMBER_ALREADY_IN_ROSTER", nil)
		}
		return h.rosterErrorResponse(c, err, "Failed to add member", "MEMBER_ADD_FAILED")
	}

	return successResponse(c, fiber.StatusCreated, resp.Message, resp)
}

// UpdateMember edits one roster entry
// @Summary Update roster member
// @Description Edit one member of a corporate account's roster
// @Tags Roster
// @Accept json
// @Produce json
// @Param request body dto.UpdateMemberRequest true "Member data"
// @Success 200 {object} dto.APIResponse{data=dto.MemberMutationResponse} "Member updated"
// @Failure 400 {object} dto.APIResponse "Invalid request"
// @Failure 404 {object} dto.APIResponse "Account or member not found"
// @Router /api/v1/admin/organizations/members [put]
func (h *RosterHandler) UpdateMember(c fiber.Ctx) error {
	var req dto.UpdateMemberRequest
	if err := c.Bind().JSON(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationMessages(err))
	}

	adminID, ok := middleware.GetAdminIDFromContext(c)
	if !ok {
		return errorResponse(c, fiber.StatusUnauthorized, "Admin authentication required", "ADMIN_AUTHENTICATION_REQUIRED", nil)
	}

	resp, err := h.flow.UpdateMember(createRequestContext(c, "/api/v1/admin/organizations/members"), &req, adminID, clientMetadata(c))
	if err != nil {
		if businessflow.IsMemberNotInRoster(err) {
			return errorResponse(c, fiber.StatusNotFound, "Member not in roster", "MEMBER_NOT_IN_ROSTER", nil)
		}
		return h.rosterErrorResponse(c, err, "Failed to update member", "MEMBER_UPDATE_FAILED")
	}

	return successResponse(c, fiber.StatusOK, resp.Message, resp)
}

// RemoveMember removes one roster entry
// @Summary Remove roster member
// @Description Remove one member of a corporate account's roster. The last account administrator cannot be removed.
// @Tags Roster
// @Accept json
// @Produce json
// @Param request body dto.RemoveMemberRequest true "Member data"
// @Success 200 {object} dto.APIResponse "Member removed"
// @Failure 404 {object} dto.APIResponse "Account or member not found"
// @Failure 422 {object} dto.APIResponse "Last administrator"
// @Router /api/v1/admin/organizations/members [delete]
func (h *RosterHandler) RemoveMember(c fiber.Ctx) error {
	var req dto.RemoveMemberRequest
	if err := c.Bind().JSON(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationMessages(err))
	}

	adminID, ok := middleware.GetAdminIDFromContext(c)
	if !ok {
		return errorResponse(c, fiber.StatusUnauthorized, "Admin authentication required", "ADMIN_AUTHENTICATION_REQUIRED", nil)
	}

	if err := h.flow.RemoveMember(createRequestContext(c, "/api/v1/admin/organizations/members"), &req, adminID, clientMetadata(c)); err != nil {
		if businessflow.IsMemberNotInRoster(err) {
			return errorResponse(c, fiber.StatusNotFound, "Member not in roster", "MEMBER_NOT_IN_ROSTER", nil)
		}
		if businessflow.IsLastAdministrator(err) {
			return errorResponse(c, fiber.StatusUnprocessableEntity, "Cannot remove the last account administrator", "LAST_ADMINISTRATOR", nil)
		}
		return h.rosterErrorResponse(c, err, "Failed to remove member", "MEMBER_REMOVE_FAILED")
	}

	return successResponse(c, fiber.StatusOK, "Member removed", nil)
}

// rosterErrorResponse handles the failure modes shared by every roster endpoint
func (h *RosterHandler) rosterErrorResponse(c fiber.Ctx, err error, fallbackMessage, fallbackCode string) error {
	if businessflow.IsAccountNotFound(err) {
		return errorResponse(c, fiber.StatusNotFound, "Account not found", "ACCOUNT_NOT_FOUND", nil)
	}
	if businessflow.IsAccountNotCorporate(err) {
		return errorResponse(c, fiber.StatusUnprocessableEntity, "Account is not a corporate account", "ACCOUNT_NOT_CORPORATE", nil)
	}
	log.Println(fallbackMessage, err)
	return businessErrorResponse(c, err, fallbackMessage, fallbackCode)
}
