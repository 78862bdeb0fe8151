// Package businessflow contains the core business logic and use cases for membership workflows
package businessflow

import (
	"context"
	"log"

	"github.com/fasehq/backoffice/app/dto"
	"github.com/fasehq/backoffice/app/services"
	"github.com/fasehq/backoffice/models"
	"github.com/fasehq/backoffice/repository"
	"github.com/fasehq/backoffice/utils"
	"golang.org/x/crypto/bcrypt"
)

// AdminAuthFlow represents the admin authentication flow used by handlers
type AdminAuthFlow interface {
	InitCaptcha(ctx context.Context) (*dto.AdminCaptchaInitResponse, error)
	Verify(ctx context.Context, req *dto.AdminCaptchaVerifyRequest, metadata *ClientMetadata) (*dto.AdminLoginResponse, error)
	Logout(ctx context.Context, token string, metadata *ClientMetadata) error
}

// AdminAuthFlowImpl provides captcha-init and admin credential verification
type AdminAuthFlowImpl struct {
	adminRepo    repository.AdminRepository
	auditRepo    repository.AuditLogRepository
	tokenService services.TokenService
	captchaSvc   services.CaptchaService
}

func NewAdminAuthFlow(
	adminRepo repository.AdminRepository,
	auditRepo repository.AuditLogRepository,
	tokenService services.TokenService,
	captchaSvc services.CaptchaService,
) AdminAuthFlow {
	return &AdminAuthFlowImpl{
		adminRepo:    adminRepo,
		auditRepo:    auditRepo,
		tokenService: tokenService,
		captchaSvc:   captchaSvc,
	}
}

func (af *AdminAuthFlowImpl) InitCaptcha(ctx context.Context) (*dto.AdminCaptchaInitResponse, error) {
	if af.captchaSvc == nil {
		return nil, NewBusinessError("CAPTCHA_NOT_AVAILABLE", "Captcha service not available", ErrCacheNotAvailable)
	}
	ch, err := af.captchaSvc.GenerateRotate(ctx)
	if err != nil {
		return nil, NewBusinessError("CAPTCHA_INIT_FAILED", "Failed to initialize captcha", err)
	}
	return &dto.AdminCaptchaInitResponse{
		ChallengeID:       ch.ID,
		MasterImageBase64: ch.MasterImageBase64,
		ThumbImageBase64:  ch.ThumbImageBase64,
	}, nil
}

func (af *AdminAuthFlowImpl) Verify(ctx context.Context, req *dto.AdminCaptchaVerifyRequest, metadata *ClientMetadata) (*dto.AdminLoginResponse, error) {
	// Validate request
	if req == nil {
		return nil, NewBusinessError("ADMIN_LOGIN_VALIDATION_FAILED", "Admin login validation failed", ErrAdminNotFound)
	}
	if len(req.Username) == 0 || len(req.Password) == 0 {
		return nil, NewBusinessError("ADMIN_LOGIN_VALIDATION_FAILED", "Admin login validation failed", ErrIncorrectPassword)
	}
	if len(req.ChallengeID) == 0 {
		return nil, NewBusinessError("CAPTCHA_INVALID", "Captcha challenge missing", ErrCaptchaInvalid)
	}

	// Verify captcha first
	if af.captchaSvc == nil || !af.captchaSvc.VerifyRotate(ctx, req.ChallengeID, req.UserAngle) {
		return nil, NewBusinessError("CAPTCHA_INVALID", "Captcha validation failed", ErrCaptchaInvalid)
	}

	// Lookup admin
	admin, err := af.adminRepo.ByUsername(ctx, req.Username)
	if err != nil {
		return nil, NewBusinessError("ADMIN_LOOKUP_FAILED", "Failed to lookup admin", err)
	}
	if admin == nil {
		af.recordLogin(ctx, nil, req.Username, false, metadata)
		return nil, NewBusinessError("ADMIN_NOT_FOUND", "Admin not found", ErrAdminNotFound)
	}
	if !utils.IsTrue(admin.IsActive) {
		af.recordLogin(ctx, admin, req.Username, false, metadata)
		return nil, NewBusinessError("ADMIN_INACTIVE", "Admin account is inactive", ErrAdminInactive)
	}

	// Verify password
	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(req.Password)); err != nil {
		af.recordLogin(ctx, admin, req.Username, false, metadata)
		return nil, NewBusinessError("ADMIN_INCORRECT_PASSWORD", "Incorrect password", ErrIncorrectPassword)
	}

	// Generate admin tokens
	accessToken, refreshToken, err := af.tokenService.GenerateAdminTokens(admin.ID)
	if err != nil {
		return nil, NewBusinessError("TOKEN_GENERATION_FAILED", "Failed to generate tokens", err)
	}

	if err := af.adminRepo.UpdateLastLogin(ctx, admin.ID, utils.UTCNow()); err != nil {
		log.Printf("failed to update admin last login: %v", err)
	}
	af.recordLogin(ctx, admin, req.Username, true, metadata)

	resp := &dto.AdminLoginResponse{
		Admin:   ToAdminDTOModel(*admin),
		Session: ToAdminSessionDTO(accessToken, refreshToken),
	}
	return resp, nil
}

// Logout revokes the presented access token
func (af *AdminAuthFlowImpl) Logout(ctx context.Context, token string, metadata *ClientMetadata) error {
	if err := af.tokenService.RevokeToken(ctx, token); err != nil {
		return NewBusinessError("LOGOUT_FAILED", "Failed to revoke token", err)
	}

	entry := &models.AuditLog{
		Action:    models.AuditActionAdminLogout,
		Success:   utils.ToPtr(true),
		CreatedAt: utils.UTCNow(),
	}
	if metadata != nil && metadata.RequestID != "" {
		entry.RequestID = utils.ToPtr(metadata.RequestID)
	}
	if err := af.auditRepo.Save(ctx, entry); err != nil {
		log.Printf("failed to record admin logout: %v", err)
	}
	return nil
}

func (af *AdminAuthFlowImpl) recordLogin(ctx context.Context, admin *models.Admin, username string, success bool, metadata *ClientMetadata) {
	action := models.AuditActionAdminLoginSuccess
	if !success {
		action = models.AuditActionAdminLoginFailed
	}

	entry := &models.AuditLog{
		Action:      action,
		Description: utils.ToPtr("admin login attempt for " + username),
		Success:     utils.ToPtr(success),
		CreatedAt:   utils.UTCNow(),
	}
	if admin != nil {
		entry.AdminID = utils.ToPtr(admin.ID)
	}
	if metadata != nil {
		if metadata.IPAddress != "" {
			entry.IPAddress = utils.ToPtr(metadata.IPAddress)
		}
		if metadata.UserAgent != "" {
			entry.UserAgent = utils.ToPtr(metadata.UserAgent)
		}
		if metadata.RequestID != "" {
			entry.RequestID = utils.ToPtr(metadata.RequestID)
		}
	}

	if err := af.auditRepo.Save(ctx, entry); err != nil {
		log.Printf("failed to record admin login attempt: %v", err)
	}
}
