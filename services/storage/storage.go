package storage

import (
	"context"
	"fmt"

	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// UploadProof uploads a proof document to Cloudinary and returns its URL.
func (s *CloudinaryProofStorage) UploadProof(ctx context.Context, localFilePath string) (string, error) {
	result, err := s.cld.Upload.Upload(ctx, localFilePath, uploader.UploadParams{
		Folder: s.folder,
	})
	if err != nil {
		return "", fmt.Errorf("proof storage: failed to upload file: %w", err)
	}
	if result.SecureURL == "" {
		return "", fmt.Errorf("proof storage: no URL returned for upload")
	}
	return result.SecureURL, nil
}
