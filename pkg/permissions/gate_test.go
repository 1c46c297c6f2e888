package permissions

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthorize(t *testing.T) {
	tests := []struct {
		name      string
		matrix    Matrix
		module    Module
		action    Action
		allowed   bool
		wantCause Cause
	}{
		{"visualiseur cannot edit work orders", ResolveDefaults(RoleVisualiseur), ModuleWorkOrders, ActionEdit, false, CauseNotGranted},
		{"visualiseur views work orders", ResolveDefaults(RoleVisualiseur), ModuleWorkOrders, ActionView, true, CauseGranted},
		{"technicien deletes inventory", ResolveDefaults(RoleTechnicien), ModuleInventory, ActionDelete, true, CauseGranted},
		{"admin cannot delete journal", ResolveDefaults(RoleAdmin), ModuleJournal, ActionDelete, false, CauseNotGranted},
		{"admin cannot edit journal", ResolveDefaults(RoleAdmin), ModuleJournal, ActionEdit, false, CauseNotGranted},
		{"admin views journal", ResolveDefaults(RoleAdmin), ModuleJournal, ActionView, true, CauseGranted},
		{"nil matrix", nil, ModuleDashboard, ActionView, false, CauseMissingMatrix},
		{"unknown module", ResolveDefaults(RoleAdmin), Module("payroll"), ActionView, false, CauseUnknownModule},
		{"unknown action", ResolveDefaults(RoleAdmin), ModuleAssets, Action("approve"), false, CauseUnknownAction},
		{"empty matrix is not missing", Matrix{}, ModuleAssets, ActionView, false, CauseNotGranted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Authorize(tt.matrix, tt.module, tt.action)
			assert.Equal(t, tt.allowed, d.Allowed)
			assert.Equal(t, tt.wantCause, d.Cause)
			if tt.allowed {
				assert.Empty(t, d.Reason)
				assert.NoError(t, d.Err())
			} else {
				assert.Equal(t, "insufficient permission for module="+string(tt.module)+", action="+string(tt.action), d.Reason)
				assert.Error(t, d.Err())
			}
		})
	}
}

func TestAuthorizeMissingMatrixDeniesEverything(t *testing.T) {
	for _, mod := range AllModules {
		for _, a := range AllActions {
			assert.False(t, Authorize(nil, mod, a).Allowed, "%s/%s", mod, a)
		}
	}
}

func TestAuthorizeIsDeterministic(t *testing.T) {
	m := ResolveDefaults(RoleQHSE)
	for _, mod := range AllModules {
		for _, a := range AllActions {
			assert.Equal(t, Authorize(m, mod, a), Authorize(m, mod, a))
		}
	}
}

func TestAuthorizeDoesNotImplyActions(t *testing.T) {
	m := fill(NoAccess, Matrix{ModuleVendors: {Delete: true}})

	assert.True(t, Authorize(m, ModuleVendors, ActionDelete).Allowed)
	assert.False(t, Authorize(m, ModuleVendors, ActionView).Allowed)
	assert.False(t, Authorize(m, ModuleVendors, ActionEdit).Allowed)
}

func TestAuthorizeDoesNotMutateMatrix(t *testing.T) {
	m := ResolveDefaults(RoleProd)
	before := m.Clone()
	for _, mod := range AllModules {
		Authorize(m, mod, ActionDelete)
	}
	assert.True(t, before.Equal(m))
	assert.Len(t, m, len(AllModules))
}

func TestDeniedErrorHidesCause(t *testing.T) {
	unknown := Authorize(ResolveDefaults(RoleAdmin), Module("payroll"), ActionView).Err()
	notGranted := Authorize(ResolveDefaults(RoleVisualiseur), ModuleAssets, ActionEdit).Err()

	var denied *DeniedError
	require.True(t, errors.As(unknown, &denied))
	assert.Equal(t, CauseUnknownModule, denied.Cause)
	assert.Contains(t, unknown.Error(), "insufficient permission")
	assert.Contains(t, notGranted.Error(), "insufficient permission")
}
