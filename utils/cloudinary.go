package utils

import (
	"fmt"

	"staynest/config"
	"staynest/services/storage"

	"github.com/cloudinary/cloudinary-go/v2"
)

// Cloudinary initializes the Cloudinary-backed proof storage service from
// the application configuration.
func Cloudinary() (storage.ProofStorageService, error) {
	cfg := config.AppConfig
	if cfg.CloudinaryCloudName == "" || cfg.CloudinaryAPIKey == "" || cfg.CloudinaryAPISecret == "" {
		return nil, fmt.Errorf("cloudinary credentials not set in configuration")
	}

	cld, err := cloudinary.NewFromParams(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)
	if err != nil {
		return nil, fmt.Errorf("utils.Cloudinary: failed to initialize Cloudinary: %w", err)
	}
	return storage.NewCloudinaryProofStorage(cld, "cancellation-proofs"), nil
}
