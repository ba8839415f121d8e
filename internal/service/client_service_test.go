package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agencyos/agencyos/internal/apperr"
	"github.com/agencyos/agencyos/internal/domain"
)

func TestCreateClientNormalizesAndDefaults(t *testing.T) {
	f := newFixture(t)
	client, err := f.services.Clients.Create(context.Background(), f.admin, CreateClientInput{
		Name: "  Globex  ",
	})
	require.NoError(t, err)
	assert.Equal(t, "Globex", client.Name)
	assert.Equal(t, "globex", client.NameNormalized)
	assert.Equal(t, domain.ClientStageLead, client.Stage)
	assert.Equal(t, domain.PriorityMedium, client.Priority)
}

func TestCreateClientRejectsDuplicateName(t *testing.T) {
	f := newFixture(t)
	// Fixture already holds "Acme"; case only differs.
	_, err := f.services.Clients.Create(context.Background(), f.admin, CreateClientInput{Name: "ACME"})
	require.Error(t, err)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
}

func TestDeveloperCannotWriteClients(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.services.Clients.Create(ctx, f.dev, CreateClientInput{Name: "Globex"})
	require.Error(t, err)
	assert.Equal(t, apperr.KindAuthorization, apperr.KindOf(err))

	err = f.services.Clients.Delete(ctx, f.dev, f.client.ID)
	require.Error(t, err)
	assert.Equal(t, apperr.KindAuthorization, apperr.KindOf(err))
}

func TestClientListScopedToContacts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.services.Clients.Create(ctx, f.admin, CreateClientInput{Name: "Globex"})
	require.NoError(t, err)

	clients, err := f.services.Clients.List(ctx, f.contact)
	require.NoError(t, err)
	require.Len(t, clients, 1)
	assert.Equal(t, f.client.ID, clients[0].ID)

	clients, err = f.services.Clients.List(ctx, f.admin)
	require.NoError(t, err)
	assert.Len(t, clients, 2)
}

func TestContactReadsOwnClientOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.services.Clients.Get(ctx, f.contact, f.client.ID)
	require.NoError(t, err)

	other, err := f.services.Clients.Create(ctx, f.admin, CreateClientInput{Name: "Globex"})
	require.NoError(t, err)
	_, err = f.services.Clients.Get(ctx, f.contact, other.ID)
	require.Error(t, err)
	assert.Equal(t, apperr.KindAuthorization, apperr.KindOf(err))
}

func TestAddContactRequiresClientRole(t *testing.T) {
	f := newFixture(t)
	err := f.services.Clients.AddContact(context.Background(), f.admin, f.client.ID, f.dev.UserID)
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestSoftDeletedClientDisappears(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.services.Clients.Delete(ctx, f.admin, f.client.ID))
	_, err := f.services.Clients.Get(ctx, f.admin, f.client.ID)
	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	// The freed name can be reused.
	_, err = f.services.Clients.Create(ctx, f.admin, CreateClientInput{Name: "Acme"})
	require.NoError(t, err)
}
