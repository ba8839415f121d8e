package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agencyos/agencyos/internal/apperr"
)

func TestSignUploadVersionsRepeatedNames(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	input := SignUploadInput{
		Name: "brief.pdf", Mime: "application/pdf", Size: 1024,
		ProjectID: &f.project.ID,
	}
	first, err := f.services.Files.SignUpload(ctx, f.dev, input)
	require.NoError(t, err)
	assert.Equal(t, 1, first.File.Version)
	// The client id is inherited from the project.
	require.NotNil(t, first.File.ClientID)
	assert.Equal(t, f.client.ID, *first.File.ClientID)
	assert.Contains(t, first.Upload.Key, "projects/"+f.project.ID)
	assert.Contains(t, first.Upload.Key, "v1/brief.pdf")

	second, err := f.services.Files.SignUpload(ctx, f.dev, input)
	require.NoError(t, err)
	assert.Equal(t, 2, second.File.Version)
	assert.NotEqual(t, first.File.URL, second.File.URL)
}

func TestSignUploadSameNameDifferentScopeStartsAtOne(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.services.Files.SignUpload(ctx, f.dev, SignUploadInput{
		Name: "logo.png", Mime: "image/png", Size: 64, ProjectID: &f.project.ID,
	})
	require.NoError(t, err)

	unattached, err := f.services.Files.SignUpload(ctx, f.dev, SignUploadInput{
		Name: "logo.png", Mime: "image/png", Size: 64,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, unattached.File.Version)
	assert.Contains(t, unattached.Upload.Key, "shared/")
}

func TestSignUploadStripsDirectoryTraversal(t *testing.T) {
	f := newFixture(t)
	result, err := f.services.Files.SignUpload(context.Background(), f.dev, SignUploadInput{
		Name: "../../etc/passwd", Mime: "text/plain", Size: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, "passwd", result.File.Name)
}

func TestSignUploadRejectsBadInput(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.services.Files.SignUpload(ctx, f.dev, SignUploadInput{Name: "a.txt", Mime: "text/plain", Size: 0})
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	missing := "missing"
	_, err = f.services.Files.SignUpload(ctx, f.dev, SignUploadInput{
		Name: "a.txt", Mime: "text/plain", Size: 1, ProjectID: &missing,
	})
	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestClientCannotSignUploads(t *testing.T) {
	f := newFixture(t)
	_, err := f.services.Files.SignUpload(context.Background(), f.contact, SignUploadInput{
		Name: "a.txt", Mime: "text/plain", Size: 1,
	})
	require.Error(t, err)
	assert.Equal(t, apperr.KindAuthorization, apperr.KindOf(err))
}

func TestDeletedFileFreesNothingButHidesRow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	result, err := f.services.Files.SignUpload(ctx, f.dev, SignUploadInput{
		Name: "brief.pdf", Mime: "application/pdf", Size: 1024, ProjectID: &f.project.ID,
	})
	require.NoError(t, err)
	require.NoError(t, f.services.Files.Delete(ctx, f.dev, result.File.ID))

	files, err := f.services.Files.List(ctx, f.dev, FileListFilter{ProjectID: &f.project.ID})
	require.NoError(t, err)
	assert.Empty(t, files)

	// Version numbering still counts the deleted row.
	again, err := f.services.Files.SignUpload(ctx, f.dev, SignUploadInput{
		Name: "brief.pdf", Mime: "application/pdf", Size: 1024, ProjectID: &f.project.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, again.File.Version)
}
