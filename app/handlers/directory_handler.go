// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"fmt"
	"log"
	"time"

	"github.com/fasehq/backoffice/app/dto"
	businessflow "github.com/fasehq/backoffice/business_flow"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

// DirectoryHandlerInterface defines the contract for directory query endpoints
type DirectoryHandlerInterface interface {
	MembersByStatus(c fiber.Ctx) error
	AccountsByStatus(c fiber.Ctx) error
	MembersWithPortalAccess(c fiber.Ctx) error
	MembersByOrganizationType(c fiber.Ctx) error
	ExportDirectory(c fiber.Ctx) error
}

// DirectoryHandler implements DirectoryHandlerInterface
type DirectoryHandler struct {
	flow      businessflow.DirectoryFlow
	validator *validator.Validate
}

func NewDirectoryHandler(flow businessflow.DirectoryFlow) DirectoryHandlerInterface {
	return &DirectoryHandler{
		flow:      flow,
		validator: validator.New(),
	}
}

// MembersByStatus lists unified members holding one status
// @Summary Members by status
// @Description List every person holding the given status, across individual accounts and corporate rosters
// @Tags Directory
// @Produce json
// @Param status query string true "Status"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} dto.APIResponse{data=dto.MemberListResponse} "Members retrieved"
// @Failure 400 {object} dto.APIResponse "Invalid request"
// @Router /api/v1/directory/members [get]
func (h *DirectoryHandler) MembersByStatus(c fiber.Ctx) error {
	req := dto.MembersByStatusRequest{
		Status:   c.Query("status"),
		Page:     fiber.Query[int](c, "page"),
		PageSize: fiber.Query[int](c, "page_size"),
	}
	if err := h.validator.Struct(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationMessages(err))
	}

	resp, err := h.flow.MembersByStatus(createRequestContext(c, "/api/v1/directory/members"), &req, clientMetadata(c))
	if err != nil {
		if businessflow.IsInvalidStatus(err) {
			return errorResponse(c, fiber.StatusBadRequest, "Unknown status", "INVALID_STATUS", nil)
		}
		log.Println("Members by status failed", err)
		return businessErrorResponse(c, err, "Failed to list members", "DIRECTORY_QUERY_FAILED")
	}

	return successResponse(c, fiber.StatusOK, resp.Message, resp)
}

// AccountsByStatus lists accounts holding one status
// @Summary Accounts by status
// @Description List accounts carrying the given status
// @Tags Directory
// @Produce json
// @Param status query string true "Status"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} dto.APIResponse{data=dto.ListAccountsResponse} "Accounts retrieved"
// @Failure 400 {object} dto.APIResponse "Invalid request"
// @Router /api/v1/directory/accounts [get]
func (h *DirectoryHandler) AccountsByStatus(c fiber.Ctx) error {
	req := dto.AccountsByStatusRequest{
		Status:   c.Query("status"),
		Page:     fiber.Query[int](c, "page"),
		PageSize: fiber.Query[int](c, "page_size"),
	}
	if err := h.validator.Struct(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationMessages(err))
	}

	resp, err := h.flow.AccountsByStatus(createRequestContext(c, "/api/v1/directory/accounts"), &req, clientMetadata(c))
	if err != nil {
		if businessflow.IsInvalidStatus(err) {
			return errorResponse(c, fiber.StatusBadRequest, "Unknown status", "INVALID_STATUS", nil)
		}
		log.Println("Accounts by status failed", err)
		return businessErrorResponse(c, err, "Failed to list accounts", "DIRECTORY_QUERY_FAILED")
	}

	return successResponse(c, fiber.StatusOK, resp.Message, resp)
}

// MembersWithPortalAccess lists members clearing a capability tier
// @Summary Members with portal access
// @Description List members whose status clears the given capability tier; guest access is universal
// @Tags Directory
// @Produce json
// @Param access_level query string true "Access level" Enums(guest, member, admin)
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} dto.APIResponse{data=dto.MemberListResponse} "Members retrieved"
// @Failure 400 {object} dto.APIResponse "Invalid request"
// @Router /api/v1/directory/access [get]
func (h *DirectoryHandler) MembersWithPortalAccess(c fiber.Ctx) error {
	req := dto.MembersWithPortalAccessRequest{
		AccessLevel: c.Query("access_level"),
		Page:        fiber.Query[int](c, "page"),
		PageSize:    fiber.Query[int](c, "page_size"),
	}
	if err := h.validator.Struct(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationMessages(err))
	}

	resp, err := h.flow.MembersWithPortalAccess(createRequestContext(c, "/api/v1/directory/access"), &req, clientMetadata(c))
	if err != nil {
		log.Println("Members with portal access failed", err)
		return businessErrorResponse(c, err, "Failed to list members", "DIRECTORY_QUERY_FAILED")
	}

	return successResponse(c, fiber.StatusOK, resp.Message, resp)
}

// MembersByOrganizationType lists people belonging to organizations of one type
// @Summary Members by organization type
// @Description List corporate rosters and matching individuals for one organization type
// @Tags Directory
// @Produce json
// @Param organization_type query string true "Organization type" Enums(mga, carrier, provider)
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} dto.APIResponse{data=dto.MemberListResponse} "Members retrieved"
// @Failure 400 {object} dto.APIResponse "Invalid request"
// @Router /api/v1/directory/organizations [get]
func (h *DirectoryHandler) MembersByOrganizationType(c fiber.Ctx) error {
	req := dto.MembersByOrganizationTypeRequest{
		OrganizationType: c.Query("organization_type"),
		Page:             fiber.Query[int](c, "page"),
		PageSize:         fiber.Query[int](c, "page_size"),
	}
	if err := h.validator.Struct(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationMessages(err))
	}

	resp, err := h.flow.MembersByOrganizationType(createRequestContext(c, "/api/v1/directory/organizations"), &req, clientMetadata(c))
	if err != nil {
		if businessflow.IsUnknownOrgType(err) {
			return errorResponse(c, fiber.StatusBadRequest, "Unknown organization type", "INVALID_ORGANIZATION_TYPE", nil)
		}
		log.Println("Members by organization type failed", err)
		return businessErrorResponse(c, err, "Failed to list members", "DIRECTORY_QUERY_FAILED")
	}

	return successResponse(c, fiber.StatusOK, resp.Message, resp)
}

// ExportDirectory streams an xlsx workbook of the member directory
// @Summary Export directory
// @Description Build and download an xlsx workbook of unified members matching the optional filters
// @Tags Directory
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param status query string false "Status filter"
// @Param organization_type query string false "Organization type filter" Enums(mga, carrier, provider)
// @Success 200 {file} binary "Workbook"
// @Failure 400 {object} dto.APIResponse "Invalid request"
// @Failure 413 {object} dto.APIResponse "Export too large"
// @Router /api/v1/directory/export [get]
func (h *DirectoryHandler) ExportDirectory(c fiber.Ctx) error {
	var req dto.ExportDirectoryRequest
	if status := c.Query("status"); status != "" {
		req.Status = &status
	}
	if orgType := c.Query("organization_type"); orgType != "" {
		req.OrganizationType = &orgType
	}
	if err := h.validator.Struct(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationMessages(err))
	}

	data, filename, err := h.flow.ExportDirectory(createRequestContextWithTimeout(c, "/api/v1/directory/export", 2*time.Minute), &req, clientMetadata(c))
	if err != nil {
		if businessflow.IsExportTooLarge(err) {
			return errorResponse(c, fiber.StatusRequestEntityTooLarge, "Export exceeds the row cap", "EXPORT_TOO_LARGE", nil)
		}
		if businessflow.IsInvalidStatus(err) {
			return errorResponse(c, fiber.StatusBadRequest, "Unknown status", "INVALID_STATUS", nil)
		}
		log.Println("Directory export failed", err)
		return businessErrorResponse(c, err, "Failed to export directory", "EXPORT_FAILED")
	}

	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Send(data)
}
