package utils

import (
	"time"
)

// ContextKey is the type for request-metadata context keys
type ContextKey string

const (
	RequestIDKey  ContextKey = "request_id"
	IPAddressKey  ContextKey = "ip_address"
	UserAgentKey  ContextKey = "user_agent"
	EndpointKey   ContextKey = "endpoint"
	CancelFuncKey ContextKey = "cancel_func"
)

// Token and session time constants
const (
	// AccessTokenTTL is the default time-to-live for access tokens
	AccessTokenTTL = 24 * time.Hour

	// RefreshTokenTTL is the default time-to-live for refresh tokens
	RefreshTokenTTL = 7 * 24 * time.Hour

	// CaptchaTTL is the validity window for admin login captcha challenges
	CaptchaTTL = 2 * time.Minute
)

// CORS and security constants
const (
	// CORSMaxAge is the maximum age for CORS preflight requests (24 hours)
	CORSMaxAge = 86400
)

// Directory and asset constants
const (
	// DirectoryExportMaxRows caps the number of rows in an xlsx export
	DirectoryExportMaxRows = 50000

	// LogoMaxSizeBytes caps uploaded organization logos
	LogoMaxSizeBytes = int64(5 * 1024 * 1024)

	// LogoThumbnailSizePx is the bounding square for generated thumbnails
	LogoThumbnailSizePx = 160
)
