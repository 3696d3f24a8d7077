package blog_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clubsite/internal/blog"
	"clubsite/internal/models"
	"clubsite/internal/policy"
)

func TestRegisterAndAuthenticate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a, err := f.svc.Register(ctx, blog.Registration{
		FirstName: "Jordan",
		LastName:  "Lee",
		Email:     "jordan@club.test",
		Password:  "correct horse",
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleMember, a.Role)

	_, err = f.svc.Register(ctx, blog.Registration{
		FirstName: "Jordan", Email: "JORDAN@club.test", Password: "another pass",
	})
	assert.ErrorIs(t, err, blog.ErrConflict)

	got, err := f.svc.Authenticate(ctx, "jordan@club.test", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, a.ID, got.ID)

	_, err = f.svc.Authenticate(ctx, "jordan@club.test", "wrong")
	assert.ErrorIs(t, err, blog.ErrUnauthorized)
	_, err = f.svc.Authenticate(ctx, "nobody@club.test", "correct horse")
	assert.ErrorIs(t, err, blog.ErrUnauthorized)
}

func TestRegisterValidation(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name  string
		in    blog.Registration
		field string
	}{
		{"missing first name", blog.Registration{Email: "a@b.c", Password: "12345678"}, "first_name"},
		{"bad email", blog.Registration{FirstName: "A", Email: "not-an-email", Password: "12345678"}, "email"},
		{"short password", blog.Registration{FirstName: "A", Email: "a@b.c", Password: "short"}, "password"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Register(context.Background(), tt.in)
			var verr *blog.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Errors, tt.field)
		})
	}
}

func TestAssignRole(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	president := f.actor(models.RolePresident)
	coPresident := f.actor(models.RoleCoPresident)
	member := f.store.AddAccount("Casey", "Kim", models.RoleMember)

	_, err := f.svc.AssignRole(ctx, nil, member.ID, models.RoleTreasurer)
	assert.ErrorIs(t, err, blog.ErrUnauthorized)

	_, err = f.svc.AssignRole(ctx, coPresident, member.ID, models.RoleTreasurer)
	assert.ErrorIs(t, err, blog.ErrForbidden)

	// Permission is checked before the target is looked up.
	_, err = f.svc.AssignRole(ctx, coPresident, uuid.New(), models.RoleTreasurer)
	assert.ErrorIs(t, err, blog.ErrForbidden)

	_, err = f.svc.AssignRole(ctx, president, uuid.New(), models.RoleTreasurer)
	assert.ErrorIs(t, err, blog.ErrNotFound)

	_, err = f.svc.AssignRole(ctx, coPresident, uuid.Nil, models.RoleTreasurer)
	assert.ErrorIs(t, err, blog.ErrForbidden)
	_, err = f.svc.AssignRole(ctx, president, uuid.Nil, models.RoleTreasurer)
	assert.ErrorIs(t, err, blog.ErrNotFound)

	_, err = f.svc.AssignRole(ctx, president, member.ID, models.Role(99))
	assert.ErrorIs(t, err, blog.ErrValidation)

	updated, err := f.svc.AssignRole(ctx, president, member.ID, models.RoleTreasurer)
	require.NoError(t, err)
	assert.Equal(t, models.RoleTreasurer, updated.Role)

	// The operation itself does not stop self-assignment.
	self, err := f.svc.AssignRole(ctx, president, president.ID, models.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, self.Role)
}

func TestListAccounts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.actor(models.RoleAdmin)
	f.actor(models.RoleMember)

	accounts, err := f.svc.ListAccounts(ctx, admin)
	require.NoError(t, err)
	assert.Len(t, accounts, 2)

	_, err = f.svc.ListAccounts(ctx, f.actor(models.RoleTreasurer))
	assert.ErrorIs(t, err, blog.ErrForbidden)
}

func TestPermissions(t *testing.T) {
	f := newFixture(t)

	assert.Empty(t, f.svc.Permissions(nil))
	assert.Empty(t, f.svc.Permissions(f.actor(models.RoleMember)))
	assert.Equal(t,
		[]policy.Action{policy.ActionUpdatePost, policy.ActionDeletePost},
		f.svc.Permissions(f.actor(models.RoleCommunicationsDirector)),
	)
	assert.Len(t, f.svc.Permissions(f.actor(models.RoleAdmin)), 4)
}
