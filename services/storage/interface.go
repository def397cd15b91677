package storage

import (
	"context"

	"github.com/cloudinary/cloudinary-go/v2"
)

// ProofStorageService uploads cancellation proof documents and returns an
// opaque URL. The rest of the workflow never looks inside the document.
type ProofStorageService interface {
	UploadProof(ctx context.Context, localFilePath string) (string, error)
}

// CloudinaryProofStorage implements ProofStorageService on Cloudinary.
type CloudinaryProofStorage struct {
	cld    *cloudinary.Cloudinary
	folder string
}

// NewCloudinaryProofStorage returns a proof store writing into the given
// Cloudinary folder.
func NewCloudinaryProofStorage(cld *cloudinary.Cloudinary, folder string) *CloudinaryProofStorage {
	return &CloudinaryProofStorage{cld: cld, folder: folder}
}
