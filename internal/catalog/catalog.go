// Package catalog provides the static, data-driven registry of menstrual
// health conditions used by the risk scoring engine. Entries are pure
// data; tuning a condition never requires touching scoring logic.
package catalog

import (
	"fmt"
	"sort"

	"github.com/lunacycle-screening-server/internal/domain"
)

// Catalog is a read-only registry of condition definitions.
type Catalog struct {
	byID    map[string]*domain.ConditionDefinition
	ordered []*domain.ConditionDefinition
}

// New builds a catalog from the given definitions. Definitions with
// duplicate IDs or empty weight maps are rejected.
func New(defs []*domain.ConditionDefinition) (*Catalog, error) {
	c := &Catalog{
		byID: make(map[string]*domain.ConditionDefinition, len(defs)),
	}

	for _, def := range defs {
		if def.ConditionID == "" {
			return nil, fmt.Errorf("catalog: condition with empty ID")
		}
		if len(def.SymptomWeights) == 0 {
			return nil, fmt.Errorf("catalog: condition %s has no symptom weights", def.ConditionID)
		}
		if _, exists := c.byID[def.ConditionID]; exists {
			return nil, fmt.Errorf("catalog: duplicate condition ID %s", def.ConditionID)
		}
		c.byID[def.ConditionID] = def
		c.ordered = append(c.ordered, def)
	}

	// Deterministic iteration order regardless of input order.
	sort.Slice(c.ordered, func(i, j int) bool {
		return c.ordered[i].ConditionID < c.ordered[j].ConditionID
	})

	return c, nil
}

// Default returns the catalog loaded with the built-in condition set.
func Default() *Catalog {
	c, err := New(builtinConditions())
	if err != nil {
		// The built-in set is validated by tests; a failure here is a
		// programming error.
		panic(fmt.Sprintf("catalog: invalid built-in condition set: %v", err))
	}
	return c
}

// Get returns the definition for a condition ID.
func (c *Catalog) Get(conditionID string) (*domain.ConditionDefinition, error) {
	def, ok := c.byID[conditionID]
	if !ok {
		return nil, fmt.Errorf("condition %s: %w", conditionID, domain.ErrNotFound)
	}
	return def, nil
}

// All returns every definition ordered by condition ID.
func (c *Catalog) All() []*domain.ConditionDefinition {
	out := make([]*domain.ConditionDefinition, len(c.ordered))
	copy(out, c.ordered)
	return out
}

// Len returns the number of cataloged conditions.
func (c *Catalog) Len() int {
	return len(c.ordered)
}
