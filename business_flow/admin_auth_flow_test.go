package businessflow

import (
	"context"
	"testing"
	"time"

	"github.com/fasehq/backoffice/app/dto"
	"github.com/fasehq/backoffice/app/services"
	"github.com/fasehq/backoffice/models"
	testingutil "github.com/fasehq/backoffice/testing"
	"github.com/fasehq/backoffice/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubCaptcha satisfies services.CaptchaService without image generation
type stubCaptcha struct {
	pass bool
}

func (s *stubCaptcha) GenerateRotate(_ context.Context) (*services.RotateChallenge, error) {
	return &services.RotateChallenge{ID: "ch-1", MasterImageBase64: "master", ThumbImageBase64: "thumb"}, nil
}

func (s *stubCaptcha) VerifyRotate(_ context.Context, _ string, _ float64) bool {
	return s.pass
}

type authFixture struct {
	flow    AdminAuthFlow
	admins  *testingutil.FakeAdminRepository
	audit   *testingutil.FakeAuditLogRepository
	tokens  services.TokenService
	captcha *stubCaptcha
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()

	admins := testingutil.NewFakeAdminRepository()
	audit := testingutil.NewFakeAuditLogRepository()
	captcha := &stubCaptcha{pass: true}

	tokens, err := services.NewTokenService(
		15*time.Minute, 7*24*time.Hour,
		"test-issuer", "test-audience",
		false, "", "",
		"test-secret-key-for-jwt-signing-32-chars", nil,
	)
	require.NoError(t, err)

	admin, err := testingutil.TestAdmin("ops", "correct-horse-battery")
	require.NoError(t, err)
	require.NoError(t, admins.Save(context.Background(), admin))

	return &authFixture{
		flow:    NewAdminAuthFlow(admins, audit, tokens, captcha),
		admins:  admins,
		audit:   audit,
		tokens:  tokens,
		captcha: captcha,
	}
}

func verifyRequest() *dto.AdminCaptchaVerifyRequest {
	return &dto.AdminCaptchaVerifyRequest{
		ChallengeID: "ch-1",
		Username:    "ops",
		Password:    "correct-horse-battery",
		UserAngle:   42,
	}
}

func TestInitCaptcha(t *testing.T) {
	fx := newAuthFixture(t)

	resp, err := fx.flow.InitCaptcha(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ch-1", resp.ChallengeID)
	assert.NotEmpty(t, resp.MasterImageBase64)
}

func TestAdminVerify(t *testing.T) {
	fx := newAuthFixture(t)
	ctx := context.Background()

	resp, err := fx.flow.Verify(ctx, verifyRequest(), nil)
	require.NoError(t, err)

	assert.Equal(t, "ops", resp.Admin.Username)
	assert.NotEmpty(t, resp.Session.AccessToken)
	assert.NotEmpty(t, resp.Session.RefreshToken)

	claims, err := fx.tokens.ValidateAdminToken(ctx, resp.Session.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, resp.Admin.ID, claims.AdminID)

	entries := fx.audit.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, models.AuditActionAdminLoginSuccess, entries[0].Action)
}

func TestAdminVerify_WrongPassword(t *testing.T) {
	fx := newAuthFixture(t)

	req := verifyRequest()
	req.Password = "not-the-password"
	_, err := fx.flow.Verify(context.Background(), req, nil)
	require.Error(t, err)
	assert.True(t, IsIncorrectPassword(err))

	entries := fx.audit.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, models.AuditActionAdminLoginFailed, entries[0].Action)
}

func TestAdminVerify_CaptchaRejected(t *testing.T) {
	fx := newAuthFixture(t)
	fx.captcha.pass = false

	_, err := fx.flow.Verify(context.Background(), verifyRequest(), nil)
	require.Error(t, err)
	assert.True(t, IsCaptchaInvalid(err))

	// Credentials are never consulted on a failed captcha
	assert.Empty(t, fx.audit.Entries())
}

func TestAdminVerify_UnknownAdmin(t *testing.T) {
	fx := newAuthFixture(t)

	req := verifyRequest()
	req.Username = "ghost"
	_, err := fx.flow.Verify(context.Background(), req, nil)
	require.Error(t, err)
	assert.True(t, IsAdminNotFound(err))
}

func TestAdminVerify_InactiveAdmin(t *testing.T) {
	fx := newAuthFixture(t)
	ctx := context.Background()

	inactive, err := testingutil.TestAdmin("retired", "correct-horse-battery")
	require.NoError(t, err)
	inactive.IsActive = utils.ToPtr(false)
	require.NoError(t, fx.admins.Save(ctx, inactive))

	req := verifyRequest()
	req.Username = "retired"
	_, err = fx.flow.Verify(ctx, req, nil)
	require.Error(t, err)
	assert.True(t, IsAdminInactive(err))
}

func TestAdminLogout(t *testing.T) {
	fx := newAuthFixture(t)
	ctx := context.Background()

	resp, err := fx.flow.Verify(ctx, verifyRequest(), nil)
	require.NoError(t, err)

	require.NoError(t, fx.flow.Logout(ctx, resp.Session.AccessToken, nil))

	_, err = fx.tokens.ValidateAdminToken(ctx, resp.Session.AccessToken)
	assert.ErrorIs(t, err, services.ErrTokenRevoked)

	entries := fx.audit.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, models.AuditActionAdminLogout, entries[1].Action)
}
