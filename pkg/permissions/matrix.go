package permissions

// Triple holds the three independent capabilities granted on one module.
// No ordering is implied between them: Delete without View is a legal value.
type Triple struct {
	View   bool `json:"view" bson:"view"`
	Edit   bool `json:"edit" bson:"edit"`
	Delete bool `json:"delete" bson:"delete"`
}

var (
	NoAccess = Triple{}
	ViewOnly = Triple{View: true}
	ViewEdit = Triple{View: true, Edit: true}
	Full     = Triple{View: true, Edit: true, Delete: true}
)

// Allows reports the flag for a single action. Unknown actions are never allowed.
func (t Triple) Allows(a Action) bool {
	switch a {
	case ActionView:
		return t.View
	case ActionEdit:
		return t.Edit
	case ActionDelete:
		return t.Delete
	}
	return false
}

// Matrix maps every module of the closed set to its triple.
// A missing entry reads as NoAccess.
type Matrix map[Module]Triple

// PartialMatrix is what a user document stores: explicit per-module entries only
type PartialMatrix map[Module]Triple

// Get returns the triple for m, NoAccess when absent
func (m Matrix) Get(module Module) Triple {
	if m == nil {
		return NoAccess
	}
	return m[module]
}

// Clone returns an independent copy
func (m Matrix) Clone() Matrix {
	if m == nil {
		return nil
	}
	out := make(Matrix, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Equal compares two matrices over the closed module set
func (m Matrix) Equal(other Matrix) bool {
	for _, mod := range AllModules {
		if m.Get(mod) != other.Get(mod) {
			return false
		}
	}
	return true
}

// Partial views the matrix as a set of explicit entries
func (m Matrix) Partial() PartialMatrix {
	out := make(PartialMatrix, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Unknown returns the stored keys that are outside the closed module set
func (p PartialMatrix) Unknown() []Module {
	var out []Module
	for k := range p {
		if !k.Valid() {
			out = append(out, k)
		}
	}
	return out
}

// Missing returns, in AllModules order, the modules p has no explicit entry for
func (p PartialMatrix) Missing() []Module {
	var out []Module
	for _, mod := range AllModules {
		if _, ok := p[mod]; !ok {
			out = append(out, mod)
		}
	}
	return out
}

// Merge combines role defaults with a user's stored entries. An explicit stored
// entry is used verbatim, otherwise the default applies. The result is total over
// AllModules; stored keys outside the closed set are ignored.
//
// Merge is idempotent: Merge(d, Merge(d, s).Partial()) equals Merge(d, s).
func Merge(defaults Matrix, stored PartialMatrix) Matrix {
	out := make(Matrix, len(AllModules))
	for _, mod := range AllModules {
		if t, ok := stored[mod]; ok {
			out[mod] = t
			continue
		}
		out[mod] = defaults.Get(mod)
	}
	return out
}

// Backfill returns the entries that must be added to stored so that it covers
// every module. Existing entries are never part of the result.
func Backfill(defaults Matrix, stored PartialMatrix) PartialMatrix {
	missing := stored.Missing()
	if len(missing) == 0 {
		return nil
	}
	out := make(PartialMatrix, len(missing))
	for _, mod := range missing {
		out[mod] = defaults.Get(mod)
	}
	return out
}
