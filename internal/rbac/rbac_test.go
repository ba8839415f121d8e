package rbac

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agencyos/agencyos/internal/apperr"
	"github.com/agencyos/agencyos/internal/domain"
)

func TestTableGrants(t *testing.T) {
	table := NewTable()

	cases := []struct {
		role       domain.Role
		permission Permission
		want       bool
	}{
		{domain.RoleAdmin, PermClientWrite, true},
		{domain.RoleAdmin, PermCalendarWrite, true},
		{domain.RoleDeveloper, PermClientRead, true},
		{domain.RoleDeveloper, PermClientWrite, false},
		{domain.RoleDeveloper, PermCalendarWrite, false},
		{domain.RoleDeveloper, PermReviewWrite, true},
		{domain.RoleDeveloper, PermTimeLogWrite, true},
		{domain.RoleClient, PermClientRead, true},
		{domain.RoleClient, PermTaskWrite, false},
		{domain.RoleClient, PermReviewWrite, false},
		{domain.RoleClient, PermTimeLogRead, false},
		{domain.RoleClient, PermTimeLogWrite, false},
		{domain.RoleClient, PermFileRead, false},
		{domain.RoleClient, PermFileWrite, false},
		{domain.RoleClient, PermFeedbackWrite, true},
		{domain.RoleClient, PermChatWrite, true},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, table.Has(tc.role, tc.permission),
			"%s %s", tc.role, tc.permission)
	}
}

func TestAssertPermission(t *testing.T) {
	table := NewTable()

	err := table.AssertPermission(AuthContext{UserID: "u1", Role: domain.RoleAdmin}, PermClientWrite)
	require.NoError(t, err)

	err = table.AssertPermission(AuthContext{UserID: "u1", Role: domain.RoleClient}, PermTaskWrite)
	require.Error(t, err)
	assert.Equal(t, apperr.KindAuthorization, apperr.KindOf(err))

	err = table.AssertPermission(AuthContext{UserID: "u1", Role: "INTERN"}, PermClientRead)
	require.Error(t, err)
	assert.Equal(t, apperr.KindAuthorization, apperr.KindOf(err))
}

func TestCanAccessClient(t *testing.T) {
	contacts := []string{"c1", "c2"}

	assert.True(t, CanAccessClient(AuthContext{UserID: "x", Role: domain.RoleAdmin}, contacts))
	assert.True(t, CanAccessClient(AuthContext{UserID: "x", Role: domain.RoleDeveloper}, contacts))
	assert.True(t, CanAccessClient(AuthContext{UserID: "c1", Role: domain.RoleClient}, contacts))
	assert.False(t, CanAccessClient(AuthContext{UserID: "c3", Role: domain.RoleClient}, contacts))
	assert.False(t, CanAccessClient(AuthContext{UserID: "c1", Role: domain.RoleClient}, nil))
}

func TestCanAccessProject(t *testing.T) {
	members := []string{"dev1"}
	contacts := []string{"contact1"}

	assert.True(t, CanAccessProject(AuthContext{UserID: "any", Role: domain.RoleAdmin}, members, contacts))
	assert.True(t, CanAccessProject(AuthContext{UserID: "dev2", Role: domain.RoleDeveloper}, members, contacts))
	assert.True(t, CanAccessProject(AuthContext{UserID: "contact1", Role: domain.RoleClient}, members, contacts))
	// A client contact of a different client never inherits membership.
	assert.False(t, CanAccessProject(AuthContext{UserID: "dev1", Role: domain.RoleClient}, members, contacts))
}

func TestCanAccessTask(t *testing.T) {
	assignees := []string{"dev1"}
	members := []string{"dev2"}
	contacts := []string{"contact1"}

	assert.True(t, CanAccessTask(AuthContext{UserID: "x", Role: domain.RoleAdmin}, assignees, members, contacts))
	assert.True(t, CanAccessTask(AuthContext{UserID: "contact1", Role: domain.RoleClient}, assignees, members, contacts))
	assert.False(t, CanAccessTask(AuthContext{UserID: "contact2", Role: domain.RoleClient}, assignees, members, contacts))
	// Assignment counts as access even without project membership.
	assert.True(t, CanAccessTask(AuthContext{UserID: "dev1", Role: ""}, assignees, members, contacts))
	assert.True(t, CanAccessTask(AuthContext{UserID: "dev2", Role: ""}, assignees, members, contacts))
	assert.False(t, CanAccessTask(AuthContext{UserID: "dev3", Role: ""}, assignees, members, contacts))
}

func TestIsPrivileged(t *testing.T) {
	assert.True(t, IsPrivileged(AuthContext{Role: domain.RoleAdmin}))
	assert.True(t, IsPrivileged(AuthContext{Role: domain.RoleDeveloper}))
	assert.False(t, IsPrivileged(AuthContext{Role: domain.RoleClient}))
	assert.False(t, IsPrivileged(AuthContext{Role: ""}))
}
