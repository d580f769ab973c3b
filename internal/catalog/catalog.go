package catalog

// Method identifies a disposal method. Keep these stable; they are stored
// in the items table and referenced by audit entries.
type Method string

const (
	MethodPhysical      Method = "physical"
	MethodRecycle       Method = "recycle"
	MethodProductionCut Method = "production_cut"
	MethodAid           Method = "aid"
)

// Definition holds the per-unit coefficients for one disposal method.
// Env and risk scores are 0-3 (lower is better) and do not depend on quantity.
type Definition struct {
	ID             Method `json:"id"`
	Label          string `json:"label"`
	CostPerUnit    int64  `json:"cost_per_unit"`
	EnvScore       int    `json:"env_score"`
	RiskScore      int    `json:"risk_score"`
	BenefitPerUnit int64  `json:"benefit_per_unit"`
}

// Catalog is a read-only set of disposal method definitions.
//
// It is injected into the planner and workflow services rather than kept as
// a package-level singleton, so tests can substitute their own coefficients.
type Catalog struct {
	byID  map[Method]Definition
	order []Method
}

// New builds a catalog from the given definitions, preserving their order.
func New(defs ...Definition) *Catalog {
	c := &Catalog{byID: make(map[Method]Definition, len(defs))}
	for _, d := range defs {
		if _, dup := c.byID[d.ID]; dup {
			continue
		}
		c.byID[d.ID] = d
		c.order = append(c.order, d.ID)
	}
	return c
}

// Default returns the reference catalog.
func Default() *Catalog {
	return New(
		Definition{ID: MethodPhysical, Label: "Physical destruction", CostPerUnit: 100, EnvScore: 3, RiskScore: 2, BenefitPerUnit: 30},
		Definition{ID: MethodRecycle, Label: "Recycle", CostPerUnit: 60, EnvScore: 1, RiskScore: 1, BenefitPerUnit: 90},
		Definition{ID: MethodProductionCut, Label: "Production cut", CostPerUnit: 20, EnvScore: 1, RiskScore: 2, BenefitPerUnit: 140},
		Definition{ID: MethodAid, Label: "Aid reuse", CostPerUnit: 130, EnvScore: 1, RiskScore: 2, BenefitPerUnit: 70},
	)
}

// Lookup returns the definition for a method, if present.
func (c *Catalog) Lookup(m Method) (Definition, bool) {
	d, ok := c.byID[m]
	return d, ok
}

// Contains reports whether the method is defined.
func (c *Catalog) Contains(m Method) bool {
	_, ok := c.byID[m]
	return ok
}

// Methods returns all definitions in catalog order.
func (c *Catalog) Methods() []Definition {
	out := make([]Definition, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.byID[id])
	}
	return out
}

// Label returns the human-readable label for a method, or "" if unknown.
func (c *Catalog) Label(m Method) string {
	if d, ok := c.byID[m]; ok {
		return d.Label
	}
	return ""
}

// EnvLabel maps an environmental impact score to a display label.
func EnvLabel(score int) string {
	switch score {
	case 0:
		return "none"
	case 1:
		return "low"
	case 2:
		return "medium"
	case 3:
		return "high"
	default:
		return ""
	}
}

// RiskLabel maps a risk score to a display label.
func RiskLabel(score int) string {
	switch score {
	case 0:
		return "none"
	case 1:
		return "low"
	case 2:
		return "medium"
	case 3:
		return "high"
	default:
		return ""
	}
}
