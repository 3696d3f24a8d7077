package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clubsite/internal/models"
)

func TestListAccounts(t *testing.T) {
	api := newTestAPI(t)
	president := api.actor("Kim", models.RolePresident)
	api.actor("Lee", models.RoleMember)

	rr := api.do(t, president, http.MethodGet, "/accounts", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	got := decode[struct {
		Accounts []models.Account `json:"accounts"`
	}](t, rr)
	assert.Len(t, got.Accounts, 2)

	rr = api.do(t, api.actor("Co", models.RoleCoPresident), http.MethodGet, "/accounts", nil)
	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestAssignRole(t *testing.T) {
	api := newTestAPI(t)
	president := api.actor("Kim", models.RolePresident)
	member := api.actor("Lee", models.RoleMember)
	path := "/accounts/" + member.ID.String() + "/role"

	rr := api.do(t, president, http.MethodPut, path, map[string]string{"role": "treasurer"})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	got := decode[struct {
		Account models.Account `json:"account"`
	}](t, rr)
	assert.Equal(t, models.RoleTreasurer, got.Account.Role)

	tests := []struct {
		name   string
		actor  models.Role
		path   string
		role   string
		status int
	}{
		{name: "below threshold", actor: models.RoleCoPresident, path: path, role: "admin", status: http.StatusForbidden},
		{name: "unknown role checked after permission", actor: models.RoleMember, path: path, role: "emperor", status: http.StatusForbidden},
		{name: "unknown role", actor: models.RolePresident, path: path, role: "emperor", status: http.StatusBadRequest},
		{name: "bad id checked after permission", actor: models.RoleMember, path: "/accounts/not-a-uuid/role", role: "member", status: http.StatusForbidden},
		{name: "bad id", actor: models.RolePresident, path: "/accounts/not-a-uuid/role", role: "member", status: http.StatusNotFound},
		{name: "missing account", actor: models.RolePresident, path: "/accounts/00000000-0000-0000-0000-000000000001/role", role: "member", status: http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := api.do(t, api.actor("Actor", tt.actor), http.MethodPut, tt.path, map[string]string{"role": tt.role})
			assert.Equal(t, tt.status, rr.Code, rr.Body.String())
		})
	}

	rr = api.do(t, nil, http.MethodPut, path, map[string]string{"role": "member"})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}
