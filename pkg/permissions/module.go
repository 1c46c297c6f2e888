package permissions

import "strings"

// Module identifies a functional area of the application used as the unit of access control
type Module string

const (
	ModuleDashboard             Module = "dashboard"
	ModuleWorkOrders            Module = "workOrders"
	ModuleInterventionRequests  Module = "interventionRequests"
	ModuleImprovementRequests   Module = "improvementRequests"
	ModuleImprovements          Module = "improvements"
	ModulePreventiveMaintenance Module = "preventiveMaintenance"
	ModuleAssets                Module = "assets"
	ModuleLocations             Module = "locations"
	ModuleMeters                Module = "meters"
	ModuleInventory             Module = "inventory"
	ModulePurchaseHistory       Module = "purchaseHistory"
	ModuleVendors               Module = "vendors"
	ModulePeople                Module = "people"
	ModuleTeams                 Module = "teams"
	ModulePlanning              Module = "planning"
	ModuleReports               Module = "reports"
	ModuleAnalytics             Module = "analytics"
	ModuleCategories            Module = "categories"
	ModuleDocumentations        Module = "documentations"
	ModuleSurveillance          Module = "surveillance"
	ModulePresquaccident        Module = "presquaccident"
	ModuleImportExport          Module = "importExport"
	ModuleSettings              Module = "settings"
	ModuleJournal               Module = "journal"
)

// AllModules is the closed module set, in display order
var AllModules = []Module{
	ModuleDashboard,
	ModuleWorkOrders,
	ModuleInterventionRequests,
	ModuleImprovementRequests,
	ModuleImprovements,
	ModulePreventiveMaintenance,
	ModuleAssets,
	ModuleLocations,
	ModuleMeters,
	ModuleInventory,
	ModulePurchaseHistory,
	ModuleVendors,
	ModulePeople,
	ModuleTeams,
	ModulePlanning,
	ModuleReports,
	ModuleAnalytics,
	ModuleCategories,
	ModuleDocumentations,
	ModuleSurveillance,
	ModulePresquaccident,
	ModuleImportExport,
	ModuleSettings,
	ModuleJournal,
}

var knownModules = func() map[Module]struct{} {
	set := make(map[Module]struct{}, len(AllModules))
	for _, m := range AllModules {
		set[m] = struct{}{}
	}
	return set
}()

// Valid reports whether m belongs to the closed module set
func (m Module) Valid() bool {
	_, ok := knownModules[m]
	return ok
}

// ParseModule returns the module named s. Module names are case sensitive.
func ParseModule(s string) (Module, bool) {
	m := Module(strings.TrimSpace(s))
	if !m.Valid() {
		return "", false
	}
	return m, true
}

// Action is one of the three capabilities a Triple grants
type Action string

const (
	ActionView   Action = "view"
	ActionEdit   Action = "edit"
	ActionDelete Action = "delete"
)

// AllActions lists the actions in triple order
var AllActions = []Action{ActionView, ActionEdit, ActionDelete}

// Valid reports whether a is view, edit or delete
func (a Action) Valid() bool {
	switch a {
	case ActionView, ActionEdit, ActionDelete:
		return true
	}
	return false
}

// ParseAction accepts view/edit/delete in any case
func ParseAction(s string) (Action, bool) {
	a := Action(strings.ToLower(strings.TrimSpace(s)))
	if !a.Valid() {
		return "", false
	}
	return a, true
}
