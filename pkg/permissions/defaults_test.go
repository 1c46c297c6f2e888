package permissions

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveDefaultsIsTotal(t *testing.T) {
	for _, role := range AllRoles {
		t.Run(string(role), func(t *testing.T) {
			m := ResolveDefaults(role)
			require.Len(t, m, len(AllModules))
			for _, mod := range AllModules {
				_, ok := m[mod]
				assert.True(t, ok, "missing %s", mod)
			}
		})
	}
}

func TestResolveDefaultsUnknownRoleIsAllFalse(t *testing.T) {
	for _, name := range []string{"NOT_A_ROLE", "", "  ", "root"} {
		m := ResolveDefaults(Role(name))
		require.Len(t, m, len(AllModules))
		for _, mod := range AllModules {
			assert.Equal(t, NoAccess, m[mod], "role %q module %s", name, mod)
		}
	}
}

func TestResolveDefaultsNormalizesRoleName(t *testing.T) {
	assert.True(t, ResolveDefaults(Role(" qhse ")).Equal(ResolveDefaults(RoleQHSE)))
}

func TestResolveDefaultsReturnsCopy(t *testing.T) {
	m := ResolveDefaults(RoleAdmin)
	m[ModuleJournal] = Full

	assert.Equal(t, ViewOnly, ResolveDefaults(RoleAdmin)[ModuleJournal])
}

func TestResolveDefaultsIsDeterministic(t *testing.T) {
	for _, role := range AllRoles {
		assert.True(t, ResolveDefaults(role).Equal(ResolveDefaults(role)), string(role))
	}
}

func TestAdminDefaults(t *testing.T) {
	m := ResolveDefaults(RoleAdmin)
	for _, mod := range AllModules {
		if mod == ModuleJournal {
			assert.Equal(t, Triple{View: true}, m[mod])
			continue
		}
		assert.Equal(t, Full, m[mod], string(mod))
	}
}

func TestJournalAndSettingsAreAdminOnly(t *testing.T) {
	for _, role := range AllRoles {
		m := ResolveDefaults(role)
		assert.False(t, m[ModuleJournal].Edit, "%s journal edit", role)
		assert.False(t, m[ModuleJournal].Delete, "%s journal delete", role)
		if role == RoleAdmin {
			continue
		}
		assert.Equal(t, NoAccess, m[ModuleJournal], "%s journal", role)
		assert.Equal(t, NoAccess, m[ModuleSettings], "%s settings", role)
	}
}

func TestDefaultsNeverProduceNonMonotoneTriples(t *testing.T) {
	allowed := map[Triple]bool{NoAccess: true, ViewOnly: true, ViewEdit: true, Full: true}
	for _, role := range AllRoles {
		for mod, tr := range ResolveDefaults(role) {
			assert.True(t, allowed[tr], "%s/%s produced %+v", role, mod, tr)
		}
	}
}

func TestRolePolicies(t *testing.T) {
	tests := []struct {
		role Role
		want map[Module]Triple
	}{
		{
			role: RoleDirecteur,
			want: map[Module]Triple{
				ModuleInterventionRequests: ViewEdit,
				ModuleImprovementRequests:  ViewEdit,
				ModulePresquaccident:       ViewEdit,
				ModuleDocumentations:       ViewEdit,
				ModuleWorkOrders:           ViewOnly,
				ModuleAssets:               ViewOnly,
				ModuleVendors:              ViewOnly,
			},
		},
		{
			role: RoleQHSE,
			want: map[Module]Triple{
				ModuleInterventionRequests: ViewEdit,
				ModuleImprovementRequests:  ViewEdit,
				ModuleSurveillance:         Full,
				ModulePresquaccident:       Full,
				ModuleDocumentations:       Full,
				ModuleVendors:              NoAccess,
				ModulePeople:               NoAccess,
				ModulePlanning:             NoAccess,
				ModulePurchaseHistory:      NoAccess,
			},
		},
		{
			role: RoleLabo,
			want: map[Module]Triple{
				ModuleInterventionRequests: ViewEdit,
				ModulePresquaccident:       ViewEdit,
				ModuleDocumentations:       ViewEdit,
				ModuleMeters:               ViewOnly,
				ModuleVendors:              ViewOnly,
				ModuleReports:              ViewOnly,
				ModulePurchaseHistory:      ViewOnly,
				ModuleWorkOrders:           NoAccess,
				ModuleAssets:               NoAccess,
				ModuleInventory:            NoAccess,
			},
		},
		{
			role: RoleProd,
			want: map[Module]Triple{
				ModuleInterventionRequests:  ViewEdit,
				ModuleWorkOrders:            ViewEdit,
				ModuleImprovementRequests:   ViewEdit,
				ModuleImprovements:          ViewEdit,
				ModuleAssets:                ViewEdit,
				ModulePresquaccident:        ViewEdit,
				ModuleDocumentations:        ViewEdit,
				ModulePreventiveMaintenance: ViewOnly,
				ModuleInventory:             ViewOnly,
				ModuleVendors:               NoAccess,
				ModulePeople:                NoAccess,
				ModulePlanning:              NoAccess,
				ModuleMeters:                NoAccess,
			},
		},
		{
			role: RoleIndus,
			want: map[Module]Triple{
				ModuleMeters:    ViewOnly,
				ModuleInventory: ViewOnly,
				ModuleVendors:   NoAccess,
			},
		},
		{
			role: RoleLogistique,
			want: map[Module]Triple{
				ModuleInventory:      ViewEdit,
				ModuleVendors:        ViewOnly,
				ModuleDocumentations: ViewEdit,
				ModulePeople:         NoAccess,
				ModulePlanning:       NoAccess,
			},
		},
		{
			role: RoleTechnicien,
			want: map[Module]Triple{
				ModuleWorkOrders:            Full,
				ModuleAssets:                Full,
				ModuleInventory:             Full,
				ModulePreventiveMaintenance: Full,
				ModuleSurveillance:          Full,
				ModulePresquaccident:        Full,
				ModuleDocumentations:        Full,
				ModuleVendors:               Full,
				ModuleLocations:             Full,
				ModuleMeters:                Full,
				ModuleReports:               ViewOnly,
				ModulePeople:                ViewOnly,
				ModuleImportExport:          NoAccess,
				ModuleJournal:               NoAccess,
			},
		},
		{
			role: RoleVisualiseur,
			want: map[Module]Triple{
				ModuleWorkOrders:   ViewOnly,
				ModuleInventory:    ViewOnly,
				ModuleDashboard:    ViewOnly,
				ModuleImportExport: NoAccess,
				ModuleJournal:      NoAccess,
			},
		},
	}

	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			m := ResolveDefaults(tt.role)
			for mod, want := range tt.want {
				assert.Equal(t, want, m[mod], "module %s", mod)
			}
		})
	}
}

func TestDirecteurNeverDeletes(t *testing.T) {
	for mod, tr := range ResolveDefaults(RoleDirecteur) {
		assert.False(t, tr.Delete, string(mod))
	}
}

func TestLaboAndAdvShareDefaults(t *testing.T) {
	assert.True(t, ResolveDefaults(RoleLabo).Equal(ResolveDefaults(RoleADV)))
	assert.True(t, ResolveDefaults(RoleRspProd).Equal(ResolveDefaults(RoleProd)))
}

func TestParseRole(t *testing.T) {
	r, ok := ParseRole("rsp_prod")
	require.True(t, ok)
	assert.Equal(t, RoleRspProd, r)

	_, ok = ParseRole("superuser")
	assert.False(t, ok)
}
