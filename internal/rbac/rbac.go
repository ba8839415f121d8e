// Package rbac is the access control engine: a static role→permission
// table checked first, then per-resource membership scoping. All
// functions are pure; handlers load the membership data and persist
// nothing here.
package rbac

import (
	"github.com/agencyos/agencyos/internal/apperr"
	"github.com/agencyos/agencyos/internal/domain"
)

// Permission tags one operation category per resource type.
type Permission string

const (
	PermClientRead       Permission = "client:read"
	PermClientWrite      Permission = "client:write"
	PermProjectRead      Permission = "project:read"
	PermProjectWrite     Permission = "project:write"
	PermTaskRead         Permission = "task:read"
	PermTaskWrite        Permission = "task:write"
	PermFeedbackWrite    Permission = "feedback:write"
	PermReviewWrite      Permission = "review:write"
	PermTimeLogRead      Permission = "timelog:read"
	PermTimeLogWrite     Permission = "timelog:write"
	PermFileRead         Permission = "file:read"
	PermFileWrite        Permission = "file:write"
	PermChatRead         Permission = "chat:read"
	PermChatWrite        Permission = "chat:write"
	PermNotificationRead Permission = "notification:read"
	PermCalendarWrite    Permission = "calendar:write"
)

// AuthContext identifies the caller for a single request.
type AuthContext struct {
	UserID string
	Role   domain.Role
}

type permissionSet map[Permission]struct{}

func permSet(perms ...Permission) permissionSet {
	set := make(permissionSet, len(perms))
	for _, p := range perms {
		set[p] = struct{}{}
	}
	return set
}

// Table is the immutable role→capability map, constructed once at
// process start and passed by reference into handlers.
type Table struct {
	grants map[domain.Role]permissionSet
}

// NewTable builds the default capability table.
func NewTable() *Table {
	return &Table{grants: map[domain.Role]permissionSet{
		domain.RoleAdmin: permSet(
			PermClientRead, PermClientWrite,
			PermProjectRead, PermProjectWrite,
			PermTaskRead, PermTaskWrite,
			PermFeedbackWrite, PermReviewWrite,
			PermTimeLogRead, PermTimeLogWrite,
			PermFileRead, PermFileWrite,
			PermChatRead, PermChatWrite,
			PermNotificationRead, PermCalendarWrite,
		),
		domain.RoleDeveloper: permSet(
			PermClientRead,
			PermProjectRead, PermProjectWrite,
			PermTaskRead, PermTaskWrite,
			PermFeedbackWrite, PermReviewWrite,
			PermTimeLogRead, PermTimeLogWrite,
			PermFileRead, PermFileWrite,
			PermChatRead, PermChatWrite,
			PermNotificationRead,
		),
		domain.RoleClient: permSet(
			PermClientRead,
			PermProjectRead,
			PermTaskRead,
			PermFeedbackWrite,
			PermChatRead, PermChatWrite,
			PermNotificationRead,
		),
	}}
}

// AssertPermission fails with an Authorization error when the caller's
// role does not hold the permission. Unknown roles hold nothing.
func (t *Table) AssertPermission(ctx AuthContext, permission Permission) error {
	grants, ok := t.grants[ctx.Role]
	if !ok {
		return apperr.Authorization("unknown role")
	}
	if _, ok := grants[permission]; !ok {
		return apperr.Authorization("missing permission " + string(permission))
	}
	return nil
}

// Has reports the table lookup without the error wrapping.
func (t *Table) Has(role domain.Role, permission Permission) bool {
	grants, ok := t.grants[role]
	if !ok {
		return false
	}
	_, ok = grants[permission]
	return ok
}

// IsPrivileged reports whether the role bypasses membership scoping.
func IsPrivileged(ctx AuthContext) bool {
	return ctx.Role == domain.RoleAdmin || ctx.Role == domain.RoleDeveloper
}

// CanAccessClient gates client reads: privileged roles always pass,
// CLIENT users only when listed as a contact.
func CanAccessClient(ctx AuthContext, contactIDs []string) bool {
	if IsPrivileged(ctx) {
		return true
	}
	return ctx.Role == domain.RoleClient && contains(contactIDs, ctx.UserID)
}

// CanAccessProject gates project-rooted reads. Non-privileged,
// non-client roles should not occur; they fall back to membership.
func CanAccessProject(ctx AuthContext, memberIDs, clientContactIDs []string) bool {
	if IsPrivileged(ctx) {
		return true
	}
	if ctx.Role == domain.RoleClient {
		return contains(clientContactIDs, ctx.UserID)
	}
	return contains(memberIDs, ctx.UserID)
}

// CanAccessTask gates task reads; assignment counts as access even
// without project membership.
func CanAccessTask(ctx AuthContext, assigneeIDs, projectMemberIDs, clientContactIDs []string) bool {
	if IsPrivileged(ctx) {
		return true
	}
	if ctx.Role == domain.RoleClient {
		return contains(clientContactIDs, ctx.UserID)
	}
	return contains(assigneeIDs, ctx.UserID) || contains(projectMemberIDs, ctx.UserID)
}

func contains(ids []string, id string) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}
