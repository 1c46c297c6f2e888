package permissions

import "strings"

// Role names a class of user carrying a fixed default matrix
type Role string

const (
	RoleAdmin       Role = "ADMIN"
	RoleTechnicien  Role = "TECHNICIEN"
	RoleVisualiseur Role = "VISUALISEUR"
	RoleDirecteur   Role = "DIRECTEUR"
	RoleQHSE        Role = "QHSE"
	RoleRspProd     Role = "RSP_PROD"
	RoleProd        Role = "PROD"
	RoleIndus       Role = "INDUS"
	RoleLogistique  Role = "LOGISTIQUE"
	RoleLabo        Role = "LABO"
	RoleADV         Role = "ADV"
)

// AllRoles is the closed role set
var AllRoles = []Role{
	RoleAdmin,
	RoleTechnicien,
	RoleVisualiseur,
	RoleDirecteur,
	RoleQHSE,
	RoleRspProd,
	RoleProd,
	RoleIndus,
	RoleLogistique,
	RoleLabo,
	RoleADV,
}

// Valid reports whether r is one of AllRoles
func (r Role) Valid() bool {
	_, ok := roleDefaults[r]
	return ok
}

// ParseRole normalizes s (trimmed, upper-cased) and reports whether it names a known role
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", false
	}
	return r, true
}

// ResolveDefaults returns the default matrix of role. Unknown roles resolve to
// the all-false matrix. The returned matrix is a fresh copy.
func ResolveDefaults(role Role) Matrix {
	if m, ok := roleDefaults[role]; ok {
		return m.Clone()
	}
	if r, ok := ParseRole(string(role)); ok {
		return roleDefaults[r].Clone()
	}
	return fill(NoAccess, nil)
}

// fill builds a total matrix: base everywhere, then the listed entries
func fill(base Triple, entries Matrix) Matrix {
	m := make(Matrix, len(AllModules))
	for _, mod := range AllModules {
		m[mod] = base
	}
	for mod, t := range entries {
		m[mod] = t
	}
	return m
}

// prodShape is shared by RSP_PROD, PROD, INDUS and LOGISTIQUE
func prodShape(extra Matrix) Matrix {
	m := fill(NoAccess, Matrix{
		ModuleDashboard:             ViewOnly,
		ModuleInterventionRequests:  ViewEdit,
		ModuleWorkOrders:            ViewEdit,
		ModuleImprovementRequests:   ViewEdit,
		ModuleImprovements:          ViewEdit,
		ModuleAssets:                ViewEdit,
		ModulePresquaccident:        ViewEdit,
		ModuleDocumentations:        ViewEdit,
		ModulePreventiveMaintenance: ViewOnly,
		ModuleInventory:             ViewOnly,
		ModuleLocations:             ViewOnly,
		ModuleReports:               ViewOnly,
	})
	for mod, t := range extra {
		m[mod] = t
	}
	return m
}

// laboShape is shared by LABO and ADV
func laboShape() Matrix {
	return fill(NoAccess, Matrix{
		ModuleDashboard:            ViewOnly,
		ModuleInterventionRequests: ViewEdit,
		ModulePresquaccident:       ViewEdit,
		ModuleDocumentations:       ViewEdit,
		ModuleMeters:               ViewOnly,
		ModuleVendors:              ViewOnly,
		ModuleReports:              ViewOnly,
		ModulePurchaseHistory:      ViewOnly,
	})
}

// roleDefaults must never be handed out directly; ResolveDefaults clones.
// journal and settings stay NoAccess for every role but ADMIN, and no role
// may edit or delete journal entries.
var roleDefaults = map[Role]Matrix{
	RoleAdmin: fill(Full, Matrix{
		ModuleJournal: ViewOnly,
	}),

	RoleDirecteur: fill(ViewOnly, Matrix{
		ModuleInterventionRequests: ViewEdit,
		ModuleImprovementRequests:  ViewEdit,
		ModulePresquaccident:       ViewEdit,
		ModuleDocumentations:       ViewEdit,
		ModuleImportExport:         NoAccess,
		ModuleSettings:             NoAccess,
		ModuleJournal:              NoAccess,
	}),

	RoleQHSE: fill(ViewOnly, Matrix{
		ModuleInterventionRequests: ViewEdit,
		ModuleImprovementRequests:  ViewEdit,
		ModuleSurveillance:         Full,
		ModulePresquaccident:       Full,
		ModuleDocumentations:       Full,
		ModuleVendors:              NoAccess,
		ModulePeople:               NoAccess,
		ModulePlanning:             NoAccess,
		ModulePurchaseHistory:      NoAccess,
		ModuleTeams:                NoAccess,
		ModuleCategories:           NoAccess,
		ModuleImportExport:         NoAccess,
		ModuleSettings:             NoAccess,
		ModuleJournal:              NoAccess,
	}),

	RoleLabo: laboShape(),
	RoleADV:  laboShape(),

	RoleRspProd: prodShape(nil),
	RoleProd:    prodShape(nil),
	RoleIndus: prodShape(Matrix{
		ModuleMeters: ViewOnly,
	}),
	RoleLogistique: prodShape(Matrix{
		ModuleInventory: ViewEdit,
		ModuleVendors:   ViewOnly,
	}),

	RoleTechnicien: fill(NoAccess, Matrix{
		ModuleDashboard:             ViewOnly,
		ModuleWorkOrders:            Full,
		ModuleInterventionRequests:  Full,
		ModuleImprovementRequests:   ViewEdit,
		ModuleImprovements:          ViewEdit,
		ModulePreventiveMaintenance: Full,
		ModuleAssets:                Full,
		ModuleLocations:             Full,
		ModuleMeters:                Full,
		ModuleInventory:             Full,
		ModulePurchaseHistory:       ViewOnly,
		ModuleVendors:               Full,
		ModulePeople:                ViewOnly,
		ModuleTeams:                 ViewOnly,
		ModulePlanning:              ViewEdit,
		ModuleReports:               ViewOnly,
		ModuleAnalytics:             ViewOnly,
		ModuleCategories:            ViewEdit,
		ModuleDocumentations:        Full,
		ModuleSurveillance:          Full,
		ModulePresquaccident:        Full,
	}),

	RoleVisualiseur: fill(ViewOnly, Matrix{
		ModuleImportExport: NoAccess,
		ModuleSettings:     NoAccess,
		ModuleJournal:      NoAccess,
	}),
}
