package models

import "time"

// Origin values for Definition provenance. The ambiguous-name resolution
// policy prefers base-game definitions over mod-contributed duplicates.
const (
	OriginBase = "base"
)

// ModOrigin returns the origin tag for a definition contributed by a mod.
func ModOrigin(modName string) string {
	return "mod:" + modName
}

// Definition is one game-configuration entity (item, block, buff, recipe...)
// parsed from XML. (Type, Name) pairs are not unique at ingestion time:
// duplicate definitions from different files are both retained.
type Definition struct {
	ID         uint   `gorm:"column:id;primaryKey" json:"id"`
	Type       string `gorm:"column:type;index:idx_definitions_type_name" json:"type"`
	Name       string `gorm:"column:name;index:idx_definitions_type_name" json:"name"`
	Extends    string `gorm:"column:extends" json:"extends,omitempty"`
	Origin     string `gorm:"column:origin" json:"origin"`
	SourceFile string `gorm:"column:source_file" json:"source_file"`
	SourceLine int    `gorm:"column:source_line" json:"source_line"`
}

// TableName overrides the table name.
func (Definition) TableName() string { return "definitions" }

// Property is a named value attached to a definition. Multiple properties
// with the same name may exist on one definition; Seq preserves document
// order for display. Lookups never assume last-one-wins at this layer.
type Property struct {
	ID           uint   `gorm:"column:id;primaryKey" json:"id"`
	DefinitionID uint   `gorm:"column:definition_id;index" json:"definition_id"`
	Name         string `gorm:"column:name;index" json:"name"`
	Value        string `gorm:"column:value" json:"value"`
	ClassTag     string `gorm:"column:class_tag" json:"class_tag,omitempty"`
	Seq          int    `gorm:"column:seq" json:"seq"`
}

// TableName overrides the table name.
func (Property) TableName() string { return "properties" }

// Reference context tags. Property and triggered-effect references carry a
// dynamic suffix (property:<Name>, triggered_effect:<Action>), built with
// PropertyTag / TriggeredEffectTag.
const (
	TagExtends          = "extends"
	TagLootEntry        = "loot_entry"
	TagRecipeIngredient = "recipe_ingredient"
	TagRecipeOutput     = "recipe_output"
	TagGroupMember      = "group_member"
)

// PropertyTag returns the context tag for a reference-bearing property.
func PropertyTag(propertyName string) string {
	return "property:" + propertyName
}

// TriggeredEffectTag returns the context tag for a trigger/effect reference.
// Unrecognized actions keep their literal name, so the vocabulary can grow
// without code changes.
func TriggeredEffectTag(action string) string {
	return "triggered_effect:" + action
}

// Reference is a directed edge from a definition to a (type, name) target.
// The target need not resolve to an existing definition: dangling references
// are valid and preserved, since they indicate load-order-dependent or
// optional content.
type Reference struct {
	ID           uint   `gorm:"column:id;primaryKey" json:"id"`
	DefinitionID uint   `gorm:"column:definition_id;index" json:"definition_id"`
	TargetType   string `gorm:"column:target_type;index:idx_references_target" json:"target_type"`
	TargetName   string `gorm:"column:target_name;index:idx_references_target" json:"target_name"`
	ContextTag   string `gorm:"column:context_tag" json:"context_tag"`
}

// TableName overrides the table name.
func (Reference) TableName() string { return "references" }

// TransitiveReference records that the source definition depends on the
// target through a path of length >= 1. Exactly one row exists per
// (source, target) pair: the shortest (first-discovered) path is retained.
// Path and RefTypes hold JSON serializations of the structured forms; they
// are produced at the persistence boundary and never re-parsed by the
// builder or classifier.
type TransitiveReference struct {
	ID       uint   `gorm:"column:id;primaryKey" json:"id"`
	SourceID uint   `gorm:"column:source_id;index" json:"source_id"`
	TargetID uint   `gorm:"column:target_id;index" json:"target_id"`
	Depth    int    `gorm:"column:depth" json:"depth"`
	Path     string `gorm:"column:path" json:"path"`
	RefTypes string `gorm:"column:ref_types" json:"ref_types"`
}

// TableName overrides the table name.
func (TransitiveReference) TableName() string { return "transitive_references" }

// Mod operation kinds, matching the patch-XML element tags.
const (
	KindSet             = "set"
	KindSetAttribute    = "setattribute"
	KindAppend          = "append"
	KindInsertBefore    = "insertBefore"
	KindInsertAfter     = "insertAfter"
	KindRemove          = "remove"
	KindRemoveAttribute = "removeattribute"
)

// StructuralKinds are the additive operations considered by the low-severity
// conflict rule.
var StructuralKinds = map[string]bool{
	KindAppend:       true,
	KindInsertBefore: true,
	KindInsertAfter:  true,
}

// ModOperation is one XPath-addressed patch instruction from a mod. Target
// resolution is best-effort: operations whose selector cannot be
// pattern-matched to a (type, name) keep empty targets and are marked
// Fragile. Fragile operations never join conflict groups but surface as
// fragile-selector warnings.
type ModOperation struct {
	ID           uint   `gorm:"column:id;primaryKey" json:"id"`
	ModName      string `gorm:"column:mod_name;index" json:"mod_name"`
	Kind         string `gorm:"column:kind" json:"kind"`
	XPath        string `gorm:"column:xpath" json:"xpath"`
	TargetType   string `gorm:"column:target_type;index:idx_operations_target" json:"target_type,omitempty"`
	TargetName   string `gorm:"column:target_name;index:idx_operations_target" json:"target_name,omitempty"`
	PropertyName string `gorm:"column:property_name" json:"property_name,omitempty"`
	Value        string `gorm:"column:value" json:"value,omitempty"`
	RawContent   string `gorm:"column:raw_content" json:"raw_content,omitempty"`
	Fragile      bool   `gorm:"column:fragile" json:"fragile"`
	LoadOrder    int    `gorm:"column:load_order" json:"load_order"`
	SourceFile   string `gorm:"column:source_file" json:"source_file"`
	SourceLine   int    `gorm:"column:source_line" json:"source_line"`
}

// TableName overrides the table name.
func (ModOperation) TableName() string { return "mod_operations" }

// SchemaVersion is bumped whenever the table layout changes.
const SchemaVersion = 2

// RunMeta describes one analysis run. A rebuild replaces the whole store,
// so there is at most one row. Skip counters are tracked per grammar: mod
// directories are parsed once for whole-file definitions and once for patch
// operations, so a malformed file surfaces in both passes and a single
// counter would count it twice.
type RunMeta struct {
	ID                string    `gorm:"column:id;primaryKey" json:"id"`
	GameDir           string    `gorm:"column:game_dir" json:"game_dir"`
	ModsDir           string    `gorm:"column:mods_dir" json:"mods_dir"`
	SchemaVersion     int       `gorm:"column:schema_version" json:"schema_version"`
	BuiltAt           time.Time `gorm:"column:built_at" json:"built_at"`
	SkippedFiles      int       `gorm:"column:skipped_files" json:"skipped_files"`
	SkippedPatchFiles int       `gorm:"column:skipped_patch_files" json:"skipped_patch_files"`
	TruncatedPaths    int       `gorm:"column:truncated_paths" json:"truncated_paths"`
}

// TableName overrides the table name.
func (RunMeta) TableName() string { return "run_meta" }
