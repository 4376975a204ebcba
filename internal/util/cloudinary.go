package util

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"politicianfinder/internal/config"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"
)

const portraitFolder = "politicianfinder/portraits"

// CloudinaryClient uploads politician portrait images to Cloudinary.
type CloudinaryClient struct {
	cld *cloudinary.Cloudinary
	cfg *config.Config
}

func NewCloudinaryClient(cfg *config.Config) (*CloudinaryClient, error) {
	if cfg.CloudinaryCloudName == "" || cfg.CloudinaryAPIKey == "" || cfg.CloudinaryAPISecret == "" {
		return nil, fmt.Errorf("cloudinary credentials not configured")
	}

	cld, err := cloudinary.NewFromParams(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cloudinary: %w", err)
	}

	return &CloudinaryClient{cld: cld, cfg: cfg}, nil
}

// UploadPortrait uploads an image file to the portraits folder and
// returns a URL that serves the image as WebP.
func (c *CloudinaryClient) UploadPortrait(filePath string) (string, error) {
	ctx := context.Background()

	result, err := c.cld.Upload.Upload(ctx, filePath, uploader.UploadParams{
		Folder:       portraitFolder,
		ResourceType: "image",
	})
	if err != nil {
		return "", fmt.Errorf("error uploading to cloudinary: %w", err)
	}

	// Inject transformation into the URL so the image is served as WebP
	// at a bounded width.
	url := result.SecureURL
	url = strings.Replace(url, "/upload/", "/upload/f_webp,q_auto,w_640/", 1)
	return url, nil
}

// UploadPortraitFromReader writes the uploaded file to a temp file and
// uploads it. Used by the admin portrait-upload endpoint.
func (c *CloudinaryClient) UploadPortraitFromReader(reader io.Reader, filename string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".webp":
	default:
		return "", fmt.Errorf("unsupported image format: %s", ext)
	}

	tmpFile := filepath.Join(os.TempDir(), uuid.New().String()+ext)
	out, err := os.Create(tmpFile)
	if err != nil {
		return "", fmt.Errorf("error creating temp file: %w", err)
	}
	defer os.Remove(tmpFile)

	if _, err := io.Copy(out, reader); err != nil {
		out.Close()
		return "", fmt.Errorf("error writing temp file: %w", err)
	}
	out.Close()

	return c.UploadPortrait(tmpFile)
}
