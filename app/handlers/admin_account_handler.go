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

// AdminAccountHandlerInterface defines the contract for back-office account endpoints
type AdminAccountHandlerInterface interface {
	ListAccounts(c fiber.Ctx) error
	GetAccount(c fiber.Ctx) error
	UpdateAccountStatus(c fiber.Ctx) error
	ActivityFeed(c fiber.Ctx) error
}

// AdminAccountHandler implements AdminAccountHandlerInterface
type AdminAccountHandler struct {
	flow      businessflow.AdminAccountFlow
	validator *validator.Validate
}

func NewAdminAccountHandler(flow businessflow.AdminAccountFlow) AdminAccountHandlerInterface {
	return &AdminAccountHandler{
		flow:      flow,
		validator: validator.New(),
	}
}

// ListAccounts pages through accounts with optional filters
// @Summary List accounts
// @Description Page through accounts with optional status, membership type, organization type and name filters
// @Tags Admin Accounts
// @Produce json
// @Param status query string false "Status filter"
// @Param membership_type query string false "Membership type filter" Enums(individual, corporate)
// @Param organization_type query string false "Organization type filter" Enums(mga, carrier, provider)
// @Param name query string false "Name substring filter"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} dto.APIResponse{data=dto.ListAccountsResponse} "Accounts retrieved"
// @Failure 400 {object} dto.APIResponse "Invalid request"
// @Router /api/v1/admin/accounts [get]
func (h *AdminAccountHandler) ListAccounts(c fiber.Ctx) error {
	req := dto.ListAccountsRequest{
		Page:     fiber.Query[int](c, "page"),
		PageSize: fiber.Query[int](c, "page_size"),
	}
	if status := c.Query("status"); status != "" {
		req.Status = &status
	}
	if membershipType := c.Query("membership_type"); membershipType != "" {
		req.MembershipType = &membershipType
	}
	if orgType := c.Query("organization_type"); orgType != "" {
		req.OrganizationType = &orgType
	}
	if name := c.Query("name"); name != "" {
		req.NameContains = &name
	}
	if err := h.validator.Struct(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationMessages(err))
	}

	resp, err := h.flow.ListAccounts(createRequestContext(c, "/api/v1/admin/accounts"), &req, clientMetadata(c))
	if err != nil {
		log.Println("Account list failed", err)
		return businessErrorResponse(c, err, "Failed to list accounts", "ACCOUNT_LIST_FAILED")
	}

	return successResponse(c, fiber.StatusOK, resp.Message, resp)
}

// GetAccount returns one account with its roster and recent activity
// @Summary Get account
// @Description Fetch one account, its corporate roster when applicable, and recent activity
// @Tags Admin Accounts
// @Produce json
// @Param id path string true "Account ID"
// @Success 200 {object} dto.APIResponse{data=dto.GetAccountResponse} "Account retrieved"
// @Failure 404 {object} dto.APIResponse "Account not found"
// @Router /api/v1/admin/accounts/{id} [get]
func (h *AdminAccountHandler) GetAccount(c fiber.Ctx) error {
	accountID := c.Params("id")
	if accountID == "" {
		return errorResponse(c, fiber.StatusBadRequest, "Account id is required", "INVALID_REQUEST", nil)
	}

	resp, err := h.flow.GetAccount(createRequestContext(c, "/api/v1/admin/accounts/:id"), accountID, clientMetadata(c))
	if err != nil {
		if businessflow.IsAccountNotFound(err) {
			return errorResponse(c, fiber.StatusNotFound, "Account not found", "ACCOUNT_NOT_FOUND", nil)
		}
		log.Println("Account lookup failed", err)
		return businessErrorResponse(c, err, "Failed to lookup account", "ACCOUNT_LOOKUP_FAILED")
	}

	return successResponse(c, fiber.StatusOK, resp.Message, resp)
}

// UpdateAccountStatus applies a review decision to an account
// @Summary Update account status
// @Description Move an account through the application review lifecycle
// @Tags Admin Accounts
// @Accept json
// @Produce json
// @Param request body dto.UpdateAccountStatusRequest true "Status change data"
// @Success 200 {object} dto.APIResponse{data=dto.UpdateAccountStatusResponse} "Status updated"
// @Failure 400 {object} dto.APIResponse "Invalid request"
// @Failure 404 {object} dto.APIResponse "Account not found"
// @Router /api/v1/admin/accounts/status [put]
func (h *AdminAccountHandler) UpdateAccountStatus(c fiber.Ctx) error {
	var req dto.UpdateAccountStatusRequest
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

	resp, err := h.flow.UpdateAccountStatus(createRequestContext(c, "/api/v1/admin/accounts/status"), &req, adminID, clientMetadata(c))
	if err != nil {
		if businessflow.IsAccountNotFound(err) {
			return errorResponse(c, fiber.StatusNotFound, "Account not found", "ACCOUNT_NOT_FOUND", nil)
		}
		if businessflow.IsInvalidStatus(err) {
			return errorResponse(c, fiber.StatusBadRequest, "Unknown status", "INVALID_STATUS", nil)
		}
		log.Println("Account status update failed", err)
		return businessErrorResponse(c, err, "Failed to update account status", "STATUS_UPDATE_FAILED")
	}

	return successResponse(c, fiber.StatusOK, resp.Message, resp)
}

// ActivityFeed pages through one account's audit entries
// @Summary Account activity feed
// @Description Page through one account's audit trail entries
// @Tags Admin Accounts
// @Produce json
// @Param id path string true "Account ID"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} dto.APIResponse{data=dto.ActivityFeedResponse} "Activity retrieved"
// @Failure 400 {object} dto.APIResponse "Invalid request"
// @Router /api/v1/admin/accounts/{id}/activity [get]
func (h *AdminAccountHandler) ActivityFeed(c fiber.Ctx) error {
	req := dto.ActivityFeedRequest{
		AccountID: c.Params("id"),
		Page:      fiber.Query[int](c, "page"),
		PageSize:  fiber.Query[int](c, "page_size"),
	}
	if err := h.validator.Struct(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationMessages(err))
	}

	resp, err := h.flow.ActivityFeed(createRequestContext(c, "/api/v1/admin/accounts/:id/activity"), &req, clientMetadata(c))
	if err != nil {
		log.Println("Activity feed failed", err)
		return businessErrorResponse(c, err, "Failed to list activity", "ACTIVITY_LIST_FAILED")
	}

	return successResponse(c, fiber.StatusOK, resp.Message, resp)
}
