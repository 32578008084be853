package extract

import (
	"modaudit/core/utils"
	"modaudit/core/xmlnode"
	"modaudit/feature/index"
	"modaudit/feature/index/models"

	"go.uber.org/zap"
)

// Extractor turns one parsed definition element into a store bundle:
// property rows plus typed reference edges.
type Extractor struct {
	logger *zap.Logger
}

// NewExtractor creates an extractor using the package vocabulary tables.
func NewExtractor(logger *zap.Logger) *Extractor {
	return &Extractor{logger: logger}
}

// ExtractDefinition processes one definition element of the given type.
// It never fails: malformed documents are rejected at parse time, before
// individual definitions are reached.
func (e *Extractor) ExtractDefinition(el *xmlnode.Node, defType, origin, sourceFile string) index.Bundle {
	bundle := index.Bundle{
		Definition: models.Definition{
			Type:       defType,
			Name:       el.Attr("name"),
			Origin:     origin,
			SourceFile: sourceFile,
			SourceLine: el.Line,
		},
	}

	// Step 1: inheritance. Same-type inheritance is assumed unless the game
	// ever grows a type-qualified syntax.
	extends := el.Attr("extends")
	if extends == "" {
		extends = el.Attr("Extends")
	}
	if extends != "" {
		bundle.Definition.Extends = extends
		bundle.References = append(bundle.References, models.Reference{
			TargetType: defType,
			TargetName: extends,
			ContextTag: models.TagExtends,
		})
	}

	// Step 2: property rows, plus table-driven property references.
	seq := 0
	e.walkProperties(el, "", &bundle, &seq)

	// Step 3: trigger/effect references anywhere in the subtree.
	e.walkTriggers(el, &bundle)

	// Step 4: list/group membership edges.
	e.walkMemberships(el, defType, &bundle)

	return bundle
}

// walkProperties emits a Property row for each <property> element. A
// property element carrying a class attribute is a sub-grouping: its inner
// properties are tagged with that class.
func (e *Extractor) walkProperties(el *xmlnode.Node, classTag string, bundle *index.Bundle, seq *int) {
	for _, prop := range el.ChildrenByTag("property") {
		class := prop.Attr("class")
		if class != "" {
			e.walkProperties(prop, class, bundle, seq)
			continue
		}

		name := prop.Attr("name")
		if name == "" {
			continue
		}
		value := prop.Attr("value")

		bundle.Properties = append(bundle.Properties, models.Property{
			Name:     name,
			Value:    value,
			ClassTag: classTag,
			Seq:      *seq,
		})
		*seq++

		// A value that is empty, numeric, or otherwise not an identifier
		// never produces a reference, even for a table-matched name.
		targetType, ok := PropertyTargets[name]
		if !ok || !utils.LooksLikeIdentifier(value) {
			continue
		}
		bundle.References = append(bundle.References, models.Reference{
			TargetType: targetType,
			TargetName: value,
			ContextTag: models.PropertyTag(name),
		})
	}
}

// walkTriggers finds triggered_effect (and legacy triggered_effect_group
// children) elements at any nesting depth.
func (e *Extractor) walkTriggers(el *xmlnode.Node, bundle *index.Bundle) {
	for _, child := range el.Children {
		if child.Tag == "triggered_effect" {
			action := child.Attr("action")
			if action == "" {
				continue
			}
			rule, ok := TriggerTargets[action]
			if !ok {
				// Open vocabulary: unknown actions keep their literal name.
				rule = DefaultTriggerRule
			}
			target := child.Attr(rule.Attr)
			if utils.LooksLikeIdentifier(target) {
				bundle.References = append(bundle.References, models.Reference{
					TargetType: rule.TargetType,
					TargetName: target,
					ContextTag: models.TriggeredEffectTag(action),
				})
			}
		}
		e.walkTriggers(child, bundle)
	}
}

// walkMemberships applies the per-container-type membership rules.
func (e *Extractor) walkMemberships(el *xmlnode.Node, defType string, bundle *index.Bundle) {
	switch defType {
	case "recipe":
		// The recipe's name is the item it produces.
		if name := el.Attr("name"); utils.LooksLikeIdentifier(name) {
			bundle.References = append(bundle.References, models.Reference{
				TargetType: "item",
				TargetName: name,
				ContextTag: models.TagRecipeOutput,
			})
		}
		for _, ing := range el.ChildrenByTag("ingredient") {
			if name := ing.Attr("name"); utils.LooksLikeIdentifier(name) {
				bundle.References = append(bundle.References, models.Reference{
					TargetType: "item",
					TargetName: name,
					ContextTag: models.TagRecipeIngredient,
				})
			}
		}
	case "lootcontainer", "lootgroup":
		for _, entry := range el.ChildrenByTag("item") {
			if name := entry.Attr("name"); utils.LooksLikeIdentifier(name) {
				bundle.References = append(bundle.References, models.Reference{
					TargetType: "item",
					TargetName: name,
					ContextTag: models.TagLootEntry,
				})
			}
			// Group entries nest loot groups inside containers.
			if group := entry.Attr("group"); utils.LooksLikeIdentifier(group) {
				bundle.References = append(bundle.References, models.Reference{
					TargetType: "lootgroup",
					TargetName: group,
					ContextTag: models.TagLootEntry,
				})
			}
		}
	case "entitygroup":
		for _, member := range el.ChildrenByTag("entity") {
			if name := member.Attr("name"); utils.LooksLikeIdentifier(name) {
				bundle.References = append(bundle.References, models.Reference{
					TargetType: "entityclass",
					TargetName: name,
					ContextTag: models.TagGroupMember,
				})
			}
		}
	}
}
