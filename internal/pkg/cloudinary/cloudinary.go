package cloudinary

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// Service handles Cloudinary upload operations
type Service struct {
	cld          *cloudinary.Cloudinary
	uploadFolder string
}

// UploadResult contains the result of a successful upload
type UploadResult struct {
	URL      string
	PublicID string
	Width    int
	Height   int
	FileSize int64
	Format   string
}

// File validation constants
var (
	AllowedImageTypes = []string{".jpg", ".jpeg", ".png", ".gif", ".webp"}

	MaxImageSize = int64(10 * 1024 * 1024) // 10MB
)

// NewService creates a new Cloudinary service instance
func NewService(cloudName, apiKey, apiSecret, uploadFolder string) (*Service, error) {
	if cloudName == "" || apiKey == "" || apiSecret == "" {
		return nil, errors.New("cloudinary credentials are required")
	}

	cloudinaryURL := fmt.Sprintf("cloudinary://%s:%s@%s", apiKey, apiSecret, cloudName)

	cld, err := cloudinary.NewFromURL(cloudinaryURL)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cloudinary client: %w", err)
	}

	if uploadFolder == "" {
		uploadFolder = "reports"
	}

	return &Service{
		cld:          cld,
		uploadFolder: uploadFolder,
	}, nil
}

// Upload stores raw image bytes under the caller-chosen key and returns the
// durable public URL. The key is chosen by the ingestion pipeline and is
// independent of the report identifier.
func (s *Service) Upload(ctx context.Context, data []byte, key, contentType string) (string, error) {
	publicID := strings.TrimSuffix(key, filepath.Ext(key))

	uploadParams := uploader.UploadParams{
		PublicID:     publicID,
		Folder:       s.uploadFolder,
		ResourceType: "image",
	}

	result, err := s.cld.Upload.Upload(ctx, bytes.NewReader(data), uploadParams)
	if err != nil {
		return "", fmt.Errorf("failed to upload image: %w", err)
	}

	return result.SecureURL, nil
}

// Delete removes an asset from Cloudinary
func (s *Service) Delete(ctx context.Context, publicID string) error {
	if publicID == "" {
		return errors.New("publicID is required")
	}

	destroyParams := uploader.DestroyParams{
		PublicID:     publicID,
		ResourceType: "image",
	}

	_, err := s.cld.Upload.Destroy(ctx, destroyParams)
	if err != nil {
		return fmt.Errorf("failed to delete asset: %w", err)
	}

	return nil
}

// ValidateImageFile validates an image file upload
func ValidateImageFile(header *multipart.FileHeader) error {
	if header.Size > MaxImageSize {
		return fmt.Errorf("image file size exceeds maximum allowed size of %d MB", MaxImageSize/(1024*1024))
	}

	ext := getFileExtension(header.Filename)
	if !isAllowedExtension(ext, AllowedImageTypes) {
		return fmt.Errorf("invalid image file type: %s. Allowed types: %s", ext, strings.Join(AllowedImageTypes, ", "))
	}

	return nil
}

// getFileExtension returns the lowercase file extension including the dot
func getFileExtension(filename string) string {
	ext := filepath.Ext(filename)
	return strings.ToLower(ext)
}

// isAllowedExtension checks if the extension is in the allowed list
func isAllowedExtension(ext string, allowedTypes []string) bool {
	for _, allowed := range allowedTypes {
		if ext == allowed {
			return true
		}
	}
	return false
}
