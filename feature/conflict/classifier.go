package conflict

import (
	"fmt"
	"sort"

	"modaudit/core/utils"
	"modaudit/feature/index/models"

	"go.uber.org/zap"
)

// Severity classifies how dangerous a multi-mod collision is.
type Severity string

const (
	// SeverityHigh marks a destructive edit colliding with any other edit.
	SeverityHigh Severity = "high"
	// SeverityMedium marks divergent value writes to the same property key.
	SeverityMedium Severity = "medium"
	// SeverityLow marks additive-only overlap, likely compatible.
	SeverityLow Severity = "low"
)

// OpRef is one operation cited in a verdict's justification list.
type OpRef struct {
	ModName     string `json:"mod_name"`
	Kind        string `json:"kind"`
	PropertyKey string `json:"property_key,omitempty"`
	Value       string `json:"value,omitempty"`
}

// Verdict is one classified conflict on a single entity.
type Verdict struct {
	TargetType  string   `json:"target_type"`
	TargetName  string   `json:"target_name"`
	PropertyKey string   `json:"property_key,omitempty"`
	Severity    Severity `json:"severity"`
	Reason      string   `json:"reason"`
	// Operations lists only the operations that justify the verdict. For a
	// high verdict this is the full context, including non-remove edits.
	Operations []OpRef `json:"operations"`
}

// Classifier groups recorded operations by target entity and assigns
// conflict severities. Fragile operations are excluded from grouping (their
// effect is selector-based, not name-based) and surface separately through
// the fragile-selector warning query.
type Classifier struct {
	logger *zap.Logger
	// fold enables case-insensitive, whitespace-trimmed value comparison.
	// The default is exact string match.
	fold bool
}

// NewClassifier creates a classifier. valueCompare is "exact" or "fold".
func NewClassifier(logger *zap.Logger, valueCompare string) *Classifier {
	return &Classifier{logger: logger, fold: valueCompare == "fold"}
}

type entityKey struct {
	targetType string
	targetName string
}

// Classify produces verdicts for every contested entity. Entities touched
// by a single mod, and groups where every mod writes the same effective
// value, produce no verdict: redundancy is not conflict.
func (c *Classifier) Classify(ops []models.ModOperation) []Verdict {
	groups := make(map[entityKey][]models.ModOperation)
	for _, op := range ops {
		if op.Fragile || op.TargetType == "" || op.TargetName == "" {
			continue
		}
		key := entityKey{op.TargetType, op.TargetName}
		groups[key] = append(groups[key], op)
	}

	keys := make([]entityKey, 0, len(groups))
	for key := range groups {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].targetType != keys[j].targetType {
			return keys[i].targetType < keys[j].targetType
		}
		return keys[i].targetName < keys[j].targetName
	})

	var verdicts []Verdict
	for _, key := range keys {
		group := groups[key]
		if len(distinctMods(group)) < 2 {
			continue // not contested
		}
		verdicts = append(verdicts, c.classifyEntity(key, group)...)
	}

	c.logger.Info("Conflict classification finished",
		zap.Int("contested_entities", len(keys)),
		zap.Int("verdicts", len(verdicts)),
	)
	return verdicts
}

// classifyEntity applies the severity rules to one entity's operations.
func (c *Classifier) classifyEntity(key entityKey, group []models.ModOperation) []Verdict {
	// Rule 1: remove-vs-anything takes precedence over everything else and
	// subsumes any medium/low verdicts for the same entity.
	if verdict, ok := c.removeConflict(key, group); ok {
		return []Verdict{verdict}
	}

	// Rule 2: property-value divergence per property key.
	verdicts := c.valueDivergence(key, group)
	if len(verdicts) > 0 {
		return verdicts
	}

	// Rule 3: additive-only overlap.
	if verdict, ok := c.additiveOverlap(key, group); ok {
		return []Verdict{verdict}
	}
	return nil
}

// removeConflict fires when one mod removes the entity while a different
// mod touches it in any way. The justification attaches the full operation
// list so the collision can be explained.
func (c *Classifier) removeConflict(key entityKey, group []models.ModOperation) (Verdict, bool) {
	removingMods := map[string]bool{}
	for _, op := range group {
		if op.Kind == models.KindRemove {
			removingMods[op.ModName] = true
		}
	}
	if len(removingMods) == 0 {
		return Verdict{}, false
	}
	// The group is known to span >= 2 distinct mods, so any remove collides
	// with an operation from a different mod.

	remover := sortedKeys(removingMods)[0]
	return Verdict{
		TargetType: key.targetType,
		TargetName: key.targetName,
		Severity:   SeverityHigh,
		Reason: fmt.Sprintf("%s %q is removed by mod %q while modified by another mod",
			key.targetType, key.targetName, remover),
		Operations: opRefs(group),
	}, true
}

// valueDivergence sub-groups by property key and emits a medium verdict for
// each key where mods disagree on the written value. Same-value writes are
// redundant, not conflicting, and are filtered from the justification list.
func (c *Classifier) valueDivergence(key entityKey, group []models.ModOperation) []Verdict {
	byKey := make(map[string][]models.ModOperation)
	for _, op := range group {
		if op.Kind != models.KindSet && op.Kind != models.KindSetAttribute {
			continue
		}
		byKey[propertyKey(op)] = append(byKey[propertyKey(op)], op)
	}

	var verdicts []Verdict
	for _, pk := range sortedGroupKeys(byKey) {
		ops := byKey[pk]
		if len(distinctMods(ops)) < 2 {
			continue
		}

		// One representative operation per distinct effective value, in
		// load order. A single distinct value means every mod agrees.
		seen := map[string]bool{}
		var divergent []models.ModOperation
		for _, op := range ops {
			norm := utils.NormalizeValue(op.Value, c.fold)
			if seen[norm] {
				continue
			}
			seen[norm] = true
			divergent = append(divergent, op)
		}
		if len(seen) <= 1 {
			continue
		}

		verdicts = append(verdicts, Verdict{
			TargetType:  key.targetType,
			TargetName:  key.targetName,
			PropertyKey: pk,
			Severity:    SeverityMedium,
			Reason: fmt.Sprintf("multiple mods set different values for %q on %s %q; last-loaded wins by load order",
				pk, key.targetType, key.targetName),
			Operations: opRefs(divergent),
		})
	}
	return verdicts
}

// additiveOverlap fires when at least two mods perform only structural
// additions on the entity, with no set or remove involved.
func (c *Classifier) additiveOverlap(key entityKey, group []models.ModOperation) (Verdict, bool) {
	structural := 0
	for _, op := range group {
		switch {
		case models.StructuralKinds[op.Kind]:
			structural++
		case op.Kind == models.KindSet, op.Kind == models.KindSetAttribute, op.Kind == models.KindRemove:
			return Verdict{}, false
		}
	}
	if structural == 0 {
		return Verdict{}, false
	}

	var structuralOps []models.ModOperation
	for _, op := range group {
		if models.StructuralKinds[op.Kind] {
			structuralOps = append(structuralOps, op)
		}
	}
	if len(distinctMods(structuralOps)) < 2 {
		return Verdict{}, false
	}

	return Verdict{
		TargetType: key.targetType,
		TargetName: key.targetName,
		Severity:   SeverityLow,
		Reason: fmt.Sprintf("multiple additive operations on %s %q, likely compatible; verify no duplicate content",
			key.targetType, key.targetName),
		Operations: opRefs(structuralOps),
	}, true
}

// propertyKey is the sub-grouping key of rule 2: resolved property name,
// else raw XPath, else operation kind. First non-empty wins.
func propertyKey(op models.ModOperation) string {
	if op.PropertyName != "" {
		return op.PropertyName
	}
	if op.XPath != "" {
		return op.XPath
	}
	return op.Kind
}

func distinctMods(ops []models.ModOperation) map[string]bool {
	mods := make(map[string]bool)
	for _, op := range ops {
		mods[op.ModName] = true
	}
	return mods
}

func opRefs(ops []models.ModOperation) []OpRef {
	refs := make([]OpRef, 0, len(ops))
	for _, op := range ops {
		refs = append(refs, OpRef{
			ModName:     op.ModName,
			Kind:        op.Kind,
			PropertyKey: propertyKey(op),
			Value:       op.Value,
		})
	}
	return refs
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedGroupKeys(groups map[string][]models.ModOperation) []string {
	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
