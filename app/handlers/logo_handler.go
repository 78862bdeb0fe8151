// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"fmt"
	"log"

	businessflow "github.com/fasehq/backoffice/business_flow"
	"github.com/gofiber/fiber/v3"
)

// LogoHandlerInterface defines the contract for organization logo endpoints
type LogoHandlerInterface interface {
	UploadLogo(c fiber.Ctx) error
	DownloadLogo(c fiber.Ctx) error
}

// LogoHandler implements LogoHandlerInterface
type LogoHandler struct {
	flow businessflow.LogoFlow
}

func NewLogoHandler(flow businessflow.LogoFlow) LogoHandlerInterface {
	return &LogoHandler{flow: flow}
}

// UploadLogo stores an organization logo
// @Summary Upload logo
// @Description Upload an organization logo (jpg, jpeg, png, webp); a square thumbnail is generated alongside
// @Tags Logos
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Account ID"
// @Param file formData file true "Logo file"
// @Success 200 {object} dto.APIResponse{data=dto.UploadLogoResponse} "Logo uploaded"
// @Failure 400 {object} dto.APIResponse "Invalid file"
// @Failure 404 {object} dto.APIResponse "Account not found"
// @Failure 413 {object} dto.APIResponse "File too large"
// @Router /api/v1/admin/accounts/{id}/logo [post]
func (h *LogoHandler) UploadLogo(c fiber.Ctx) error {
	accountID := c.Params("id")
	if accountID == "" {
		return errorResponse(c, fiber.StatusBadRequest, "Account id is required", "INVALID_REQUEST", nil)
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Logo file is required", "MISSING_FILE", nil)
	}

	file, err := fileHeader.Open()
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Failed to read uploaded file", "INVALID_FILE", nil)
	}
	defer file.Close()

	resp, err := h.flow.UploadLogo(createRequestContext(c, "/api/v1/admin/accounts/:id/logo"), accountID, file, fileHeader.Filename, fileHeader.Size, clientMetadata(c))
	if err != nil {
		if businessflow.IsAccountNotFound(err) {
			return errorResponse(c, fiber.StatusNotFound, "Account not found", "ACCOUNT_NOT_FOUND", nil)
		}
		if businessflow.IsLogoTooLarge(err) {
			return errorResponse(c, fiber.StatusRequestEntityTooLarge, "Logo exceeds the size limit", "LOGO_TOO_LARGE", nil)
		}
		if businessflow.IsLogoUnsupportedType(err) {
			return errorResponse(c, fiber.StatusBadRequest, "Logo file type not supported", "LOGO_UNSUPPORTED_TYPE", nil)
		}
		log.Println("Logo upload failed", err)
		return businessErrorResponse(c, err, "Failed to upload logo", "LOGO_UPLOAD_FAILED")
	}

	return successResponse(c, fiber.StatusOK, resp.Message, resp)
}

// DownloadLogo streams a stored organization logo
// @Summary Download logo
// @Description Stream the stored logo of one account, or its thumbnail
// @Tags Logos
// @Produce image/jpeg
// @Param id path string true "Account ID"
// @Param thumbnail query bool false "Serve the thumbnail instead of the original"
// @Success 200 {file} binary "Logo"
// @Failure 404 {object} dto.APIResponse "Account or logo not found"
// @Router /api/v1/accounts/{id}/logo [get]
func (h *LogoHandler) DownloadLogo(c fiber.Ctx) error {
	accountID := c.Params("id")
	if accountID == "" {
		return errorResponse(c, fiber.StatusBadRequest, "Account id is required", "INVALID_REQUEST", nil)
	}
	thumbnail := fiber.Query[bool](c, "thumbnail")

	filename, contentType, data, err := h.flow.DownloadLogo(createRequestContext(c, "/api/v1/accounts/:id/logo"), accountID, thumbnail)
	if err != nil {
		if businessflow.IsAccountNotFound(err) {
			return errorResponse(c, fiber.StatusNotFound, "Account not found", "ACCOUNT_NOT_FOUND", nil)
		}
		log.Println("Logo download failed", err)
		return errorResponse(c, fiber.StatusNotFound, "Logo not found", "LOGO_NOT_FOUND", nil)
	}

	c.Set(fiber.HeaderContentType, contentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("inline; filename=%q", filename))
	return c.Send(data)
}
