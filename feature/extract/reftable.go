package extract

// DefinitionTags maps a definition element tag to its definition type.
// The scanner classifies each child of a config file's root container by
// this table; unknown tags are skipped. New game content is recognized by
// extending the table, not by code changes.
var DefinitionTags = map[string]string{
	"item":          "item",
	"block":         "block",
	"buff":          "buff",
	"recipe":        "recipe",
	"entity_class":  "entityclass",
	"entitygroup":   "entitygroup",
	"lootcontainer": "lootcontainer",
	"lootgroup":     "lootgroup",
	"progression":   "progression",
	"vehicle":       "vehicle",
	"quest":         "quest",
}

// ContainerTypes maps a top-level container element (also the first segment
// of a mod operation XPath) to the definition type of its children. Shared
// with the mod operation recorder's XPath resolver.
var ContainerTypes = map[string]string{
	"items":          "item",
	"blocks":         "block",
	"buffs":          "buff",
	"recipes":        "recipe",
	"entity_classes": "entityclass",
	"entityclasses":  "entityclass",
	"entitygroups":   "entitygroup",
	"lootcontainers": "lootcontainer",
	"lootgroups":     "lootgroup",
	"progressions":   "progression",
	"vehicles":       "vehicle",
	"quests":         "quest",
}

// PropertyTargets maps reference-bearing property names to the definition
// type their value points at. Only names listed here produce references
// from the generic property scan; every other property is recorded as a
// plain value.
var PropertyTargets = map[string]string{
	"HandItem":          "item",
	"ReplaceItem":       "item",
	"MagazineItemNames": "item",
	"SpawnEntityName":   "entityclass",
	"SpawnOnDeath":      "entityclass",
	"LootListOnDeath":   "lootcontainer",
	"LootList":          "lootcontainer",
	"Buff":              "buff",
	"BuffOnEquip":       "buff",
	"ExplosionBuff":     "buff",
	"DropItem":          "item",
	"PlaceableAsBlock":  "block",
	"DowngradeBlock":    "block",
	"UpgradeBlock":      "block",
}

// TriggerTargets maps a triggered_effect action to the attribute carrying
// the referenced name and the type it names. Actions absent from the table
// fall back to the "buff" attribute and the buff type, so new actions are
// still recorded under their literal name.
var TriggerTargets = map[string]TriggerRule{
	"AddBuff":        {Attr: "buff", TargetType: "buff"},
	"RemoveBuff":     {Attr: "buff", TargetType: "buff"},
	"GiveItem":       {Attr: "item", TargetType: "item"},
	"SpawnParticle":  {Attr: "particle", TargetType: "particle"},
	"AttachParticle": {Attr: "particle", TargetType: "particle"},
}

// TriggerRule describes where a triggered_effect element names its target.
type TriggerRule struct {
	Attr       string
	TargetType string
}

// DefaultTriggerRule applies to actions missing from TriggerTargets.
var DefaultTriggerRule = TriggerRule{Attr: "buff", TargetType: "buff"}
