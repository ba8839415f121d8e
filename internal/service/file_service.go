package service

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/agencyos/agencyos/internal/apperr"
	"github.com/agencyos/agencyos/internal/blob"
	"github.com/agencyos/agencyos/internal/domain"
	"github.com/agencyos/agencyos/internal/rbac"
	"github.com/agencyos/agencyos/internal/repository"
)

// FileService records file metadata and signs uploads. Re-uploading the
// same name under the same client/project creates a new version rather
// than overwriting.
type FileService struct {
	store  repository.Store
	rbac   *rbac.Table
	signer blob.Signer
}

func NewFileService(store repository.Store, table *rbac.Table, signer blob.Signer) *FileService {
	return &FileService{store: store, rbac: table, signer: signer}
}

type SignUploadInput struct {
	Name      string  `json:"name" binding:"required"`
	Mime      string  `json:"mime" binding:"required"`
	Size      int64   `json:"size" binding:"required"`
	ClientID  *string `json:"clientId"`
	ProjectID *string `json:"projectId"`
}

type SignUploadResult struct {
	File   *domain.File      `json:"file"`
	Upload blob.SignedUpload `json:"upload"`
}

// SignUpload allocates the next version, signs a direct-upload URL, and
// records the file row. The URL stored on the row is the durable object
// location, not the signed one.
func (s *FileService) SignUpload(ctx context.Context, auth rbac.AuthContext, input SignUploadInput) (*SignUploadResult, error) {
	if err := s.rbac.AssertPermission(auth, rbac.PermFileWrite); err != nil {
		return nil, err
	}
	name := path.Base(strings.TrimSpace(input.Name))
	if name == "" || name == "." || name == "/" {
		return nil, apperr.Validation("invalid file name")
	}
	if input.Size <= 0 {
		return nil, apperr.Validation("size must be positive")
	}
	if input.ClientID != nil {
		if _, err := s.store.Clients().GetByID(ctx, *input.ClientID); err != nil {
			return nil, err
		}
	}
	if input.ProjectID != nil {
		project, err := s.store.Projects().GetByID(ctx, *input.ProjectID)
		if err != nil {
			return nil, err
		}
		if input.ClientID == nil {
			input.ClientID = &project.ClientID
		}
	}

	version, err := s.store.Files().NextVersion(ctx, name, input.ClientID, input.ProjectID)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	key := storageKey(name, version, input.ClientID, input.ProjectID)
	upload, err := s.signer.SignUpload(ctx, key, input.Mime)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	file := &domain.File{
		ID:         uuid.NewString(),
		Name:       name,
		URL:        s.signer.ObjectURL(key),
		Mime:       input.Mime,
		Size:       input.Size,
		Version:    version,
		ClientID:   input.ClientID,
		ProjectID:  input.ProjectID,
		UploaderID: auth.UserID,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.store.Files().Create(ctx, file); err != nil {
		return nil, apperr.Internal(err)
	}
	return &SignUploadResult{File: file, Upload: upload}, nil
}

// storageKey shards objects by owner so listings stay cheap:
// clients/<id>/..., projects/<id>/..., or shared/ for unattached files.
func storageKey(name string, version int, clientID, projectID *string) string {
	prefix := "shared"
	switch {
	case projectID != nil:
		prefix = "projects/" + *projectID
	case clientID != nil:
		prefix = "clients/" + *clientID
	}
	return fmt.Sprintf("%s/v%d/%s", prefix, version, name)
}

type FileListFilter struct {
	ClientID  *string
	ProjectID *string
}

func (s *FileService) List(ctx context.Context, auth rbac.AuthContext, filter FileListFilter) ([]domain.File, error) {
	if err := s.rbac.AssertPermission(auth, rbac.PermFileRead); err != nil {
		return nil, err
	}
	if filter.ProjectID != nil {
		if _, err := authorizeProjectAccess(ctx, s.store, auth, *filter.ProjectID); err != nil {
			return nil, err
		}
	}
	return s.store.Files().List(ctx, repository.FileFilter{
		ClientID:  filter.ClientID,
		ProjectID: filter.ProjectID,
	})
}

func (s *FileService) Delete(ctx context.Context, auth rbac.AuthContext, id string) error {
	if err := s.rbac.AssertPermission(auth, rbac.PermFileWrite); err != nil {
		return err
	}
	return s.store.Files().SoftDelete(ctx, id)
}
