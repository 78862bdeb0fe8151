package businessflow

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	imagedraw "image/draw"
	"image/jpeg"
	"io"
	"log"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/fasehq/backoffice/app/dto"
	"github.com/fasehq/backoffice/models"
	"github.com/fasehq/backoffice/repository"
	"github.com/fasehq/backoffice/utils"
	"github.com/google/uuid"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// LogoFlow defines operations for organization logo uploads.
type LogoFlow interface {
	UploadLogo(ctx context.Context, accountID string, file io.Reader, originalFilename string, fileSize int64, metadata *ClientMetadata) (*dto.UploadLogoResponse, error)
	DownloadLogo(ctx context.Context, accountID string, thumbnail bool) (string, string, []byte, error)
}

// LogoFlowImpl implements LogoFlow.
type LogoFlowImpl struct {
	accountRepo  repository.AccountRepository
	auditRepo    repository.AuditLogRepository
	uploadDir    string
	maxSizeBytes int64
	thumbnailPx  int
}

// NewLogoFlow creates a new logo flow instance. Zero values for the storage
// settings fall back to the package defaults.
func NewLogoFlow(accountRepo repository.AccountRepository, auditRepo repository.AuditLogRepository, uploadDir string, maxSizeBytes int64, thumbnailPx int) LogoFlow {
	if uploadDir == "" {
		uploadDir = filepath.Join("data", "uploads")
	}
	if maxSizeBytes <= 0 {
		maxSizeBytes = utils.LogoMaxSizeBytes
	}
	if thumbnailPx <= 0 {
		thumbnailPx = utils.LogoThumbnailSizePx
	}
	return &LogoFlowImpl{
		accountRepo:  accountRepo,
		auditRepo:    auditRepo,
		uploadDir:    uploadDir,
		maxSizeBytes: maxSizeBytes,
		thumbnailPx:  thumbnailPx,
	}
}

// logoDir is the directory logos and thumbnails are written to
func (f *LogoFlowImpl) logoDir() string {
	return filepath.Join(f.uploadDir, "logos")
}

var allowedLogoExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

// UploadLogo stores an organization logo and a square thumbnail, then points
// the account at the stored file
func (f *LogoFlowImpl) UploadLogo(ctx context.Context, accountID string, file io.Reader, originalFilename string, fileSize int64, metadata *ClientMetadata) (*dto.UploadLogoResponse, error) {
	if file == nil {
		return nil, NewBusinessError("INVALID_REQUEST", "file is required", nil)
	}

	account, err := f.accountRepo.ByID(ctx, accountID)
	if err != nil {
		return nil, NewBusinessError("ACCOUNT_LOOKUP_FAILED", "Failed to lookup account", err)
	}
	if account == nil {
		return nil, NewBusinessError("ACCOUNT_NOT_FOUND", "Account not found", ErrAccountNotFound)
	}

	if fileSize <= 0 || fileSize > f.maxSizeBytes {
		return nil, NewBusinessError("LOGO_TOO_LARGE", "logo size exceeds the configured limit", ErrLogoTooLarge)
	}

	ext := strings.ToLower(filepath.Ext(originalFilename))
	if !allowedLogoExts[ext] {
		return nil, NewBusinessError("LOGO_INVALID_TYPE", "allowed file types: jpg, jpeg, png, webp", ErrLogoUnsupportedType)
	}

	storedPath, thumbPath, err := f.saveLogoToDisk(file, account.ID, ext)
	if err != nil {
		return nil, err
	}

	if err := f.accountRepo.UpdateLogoURL(ctx, account.ID, storedPath); err != nil {
		_ = os.Remove(filepath.FromSlash(storedPath))
		_ = os.Remove(filepath.FromSlash(thumbPath))
		return nil, NewBusinessError("LOGO_UPDATE_FAILED", "Failed to store logo location", err)
	}

	entry := &models.AuditLog{
		AccountID:   utils.ToPtr(account.ID),
		Action:      models.AuditActionLogoUploaded,
		Description: utils.ToPtr(originalFilename),
		Success:     utils.ToPtr(true),
		CreatedAt:   utils.UTCNow(),
	}
	if metadata != nil && metadata.RequestID != "" {
		entry.RequestID = utils.ToPtr(metadata.RequestID)
	}
	if err := f.auditRepo.Save(ctx, entry); err != nil {
		log.Printf("failed to record logo upload for %s: %v", account.ID, err)
	}

	return &dto.UploadLogoResponse{
		Message:      "Logo uploaded successfully",
		AccountID:    account.ID,
		LogoURL:      storedPath,
		ThumbnailURL: thumbPath,
	}, nil
}

// DownloadLogo serves the stored logo or its thumbnail
func (f *LogoFlowImpl) DownloadLogo(ctx context.Context, accountID string, thumbnail bool) (string, string, []byte, error) {
	account, err := f.accountRepo.ByID(ctx, accountID)
	if err != nil {
		return "", "", nil, NewBusinessError("ACCOUNT_LOOKUP_FAILED", "Failed to lookup account", err)
	}
	if account == nil || account.LogoURL == nil {
		return "", "", nil, NewBusinessError("LOGO_NOT_FOUND", "logo not found", ErrAccountNotFound)
	}

	path := *account.LogoURL
	if thumbnail {
		path = thumbnailPath(path)
	}

	cleanPath, err := f.sanitizeLogoPath(path)
	if err != nil {
		return "", "", nil, err
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return "", "", nil, err
	}

	filename := filepath.Base(cleanPath)
	contentType := mime.TypeByExtension(strings.ToLower(filepath.Ext(filename)))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	return filename, contentType, data, nil
}

func (f *LogoFlowImpl) saveLogoToDisk(reader io.Reader, accountID, ext string) (string, string, error) {
	head := make([]byte, 512)
	n, err := io.ReadFull(reader, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", "", err
	}
	head = head[:n]

	detected := http.DetectContentType(head)
	if !strings.HasPrefix(detected, "image/") {
		return "", "", NewBusinessError("LOGO_INVALID_TYPE", "file content is not an image", ErrLogoUnsupportedType)
	}

	baseDir := f.logoDir()
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return "", "", err
	}

	filename := fmt.Sprintf("%s-%s%s", accountID, uuid.New().String()[:8], ext)
	fullPath := filepath.Join(baseDir, filename)

	fullReader := io.MultiReader(bytes.NewReader(head), reader)
	limited := io.LimitReader(fullReader, f.maxSizeBytes+1)
	data, err := io.ReadAll(limited)
	if err != nil {
		return "", "", err
	}
	if int64(len(data)) > f.maxSizeBytes {
		return "", "", NewBusinessError("LOGO_TOO_LARGE", "logo size exceeds the configured limit", ErrLogoTooLarge)
	}

	if err := os.WriteFile(fullPath, data, 0o644); err != nil {
		return "", "", err
	}

	thumbPath, err := f.writeLogoThumbnail(data, fullPath)
	if err != nil {
		_ = os.Remove(fullPath)
		return "", "", err
	}

	return filepath.ToSlash(fullPath), filepath.ToSlash(thumbPath), nil
}

func (f *LogoFlowImpl) writeLogoThumbnail(data []byte, fullPath string) (string, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", NewBusinessError("LOGO_DECODE_FAILED", "failed to decode logo image", err)
	}

	thumb := resizeLogo(img, f.thumbnailPx)
	buf := &bytes.Buffer{}
	if err := jpeg.Encode(buf, thumb, &jpeg.Options{Quality: 80}); err != nil {
		return "", err
	}

	thumbPath := thumbnailPath(fullPath)
	if err := os.WriteFile(filepath.FromSlash(thumbPath), buf.Bytes(), 0o644); err != nil {
		return "", err
	}
	return thumbPath, nil
}

func thumbnailPath(logoPath string) string {
	ext := filepath.Ext(logoPath)
	return strings.TrimSuffix(logoPath, ext) + ".thumb.jpg"
}

func (f *LogoFlowImpl) sanitizeLogoPath(path string) (string, error) {
	if path == "" {
		return "", NewBusinessError("INVALID_PATH", "path is empty", nil)
	}
	cleaned := filepath.ToSlash(filepath.Clean(filepath.FromSlash(path)))
	if filepath.IsAbs(cleaned) {
		return "", NewBusinessError("INVALID_PATH", "absolute path not allowed", nil)
	}
	base := filepath.ToSlash(filepath.Clean(f.logoDir()))
	if !strings.HasPrefix(cleaned, base) {
		return "", NewBusinessError("INVALID_PATH", "path is outside allowed directory", nil)
	}
	return filepath.FromSlash(cleaned), nil
}

func resizeLogo(src image.Image, maxDim int) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= maxDim && h <= maxDim {
		return src
	}

	var nw, nh int
	if w >= h {
		nw = maxDim
		nh = int(float64(h) * float64(maxDim) / float64(w))
	} else {
		nh = maxDim
		nw = int(float64(w) * float64(maxDim) / float64(h))
	}

	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	imagedraw.Draw(dst, dst.Bounds(), &image.Uniform{C: color.White}, image.Point{}, imagedraw.Src)
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, b, xdraw.Over, nil)
	return dst
}
