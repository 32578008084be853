package index

import (
	"fmt"

	"modaudit/feature/index/models"

	"gorm.io/gorm"
)

// insertBatchSize bounds the row count per INSERT; sqlite has a variable
// limit per statement.
const insertBatchSize = 500

// Tables lists every store table, used by Reset and the consistency check.
var Tables = []string{
	"definitions",
	"properties",
	"references",
	"transitive_references",
	"mod_operations",
	"run_meta",
}

// Store wraps the relational index store. All writes happen during a build;
// readers (report service, query API) only run after the build completes.
type Store struct {
	db *gorm.DB
}

// New creates a store over an open database connection.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// DB exposes the underlying connection for schema inspection.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// Reset drops and recreates every table. A build always starts here: the
// store lifecycle is rebuild-from-scratch, never merge-across-runs.
func (s *Store) Reset() error {
	err := s.db.Migrator().DropTable(
		&models.Definition{},
		&models.Property{},
		&models.Reference{},
		&models.TransitiveReference{},
		&models.ModOperation{},
		&models.RunMeta{},
	)
	if err != nil {
		return fmt.Errorf("failed to drop tables: %w", err)
	}
	return s.Migrate()
}

// Migrate creates any missing tables.
func (s *Store) Migrate() error {
	err := s.db.AutoMigrate(
		&models.Definition{},
		&models.Property{},
		&models.Reference{},
		&models.TransitiveReference{},
		&models.ModOperation{},
		&models.RunMeta{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate store: %w", err)
	}
	return nil
}

// AddDefinition inserts one definition and returns its ID. Duplicate
// (type, name) pairs are allowed; the store is append-only within a build.
func (s *Store) AddDefinition(def *models.Definition) (uint, error) {
	if def.Type == "" {
		return 0, &ValidationError{Table: "definitions", Field: "type"}
	}
	if def.Name == "" {
		return 0, &ValidationError{Table: "definitions", Field: "name"}
	}
	if def.SourceFile == "" {
		return 0, &ValidationError{Table: "definitions", Field: "source_file"}
	}
	if def.Origin == "" {
		def.Origin = models.OriginBase
	}
	if err := s.db.Create(def).Error; err != nil {
		return 0, fmt.Errorf("failed to insert definition: %w", err)
	}
	return def.ID, nil
}

// AddProperty inserts one property row.
func (s *Store) AddProperty(p *models.Property) error {
	if p.DefinitionID == 0 {
		return &ValidationError{Table: "properties", Field: "definition_id"}
	}
	if p.Name == "" {
		return &ValidationError{Table: "properties", Field: "name"}
	}
	if err := s.db.Create(p).Error; err != nil {
		return fmt.Errorf("failed to insert property: %w", err)
	}
	return nil
}

// AddReference inserts one reference edge. Dangling targets are allowed.
func (s *Store) AddReference(r *models.Reference) error {
	if r.DefinitionID == 0 {
		return &ValidationError{Table: "references", Field: "definition_id"}
	}
	if r.TargetType == "" {
		return &ValidationError{Table: "references", Field: "target_type"}
	}
	if r.TargetName == "" {
		return &ValidationError{Table: "references", Field: "target_name"}
	}
	if r.ContextTag == "" {
		return &ValidationError{Table: "references", Field: "context_tag"}
	}
	if err := s.db.Create(r).Error; err != nil {
		return fmt.Errorf("failed to insert reference: %w", err)
	}
	return nil
}

// Bundle groups one extracted definition with its properties and references.
// Extractor workers accumulate bundles in per-worker buffers; the merged
// buffers are inserted here on a single goroutine, which serializes writes.
type Bundle struct {
	Definition models.Definition
	Properties []models.Property
	References []models.Reference
}

// InsertBundles inserts extracted definitions with their rows in one
// transaction. Bundles failing validation are skipped and counted, not
// fatal: the extractor already logged the offending unit.
func (s *Store) InsertBundles(bundles []Bundle) (skipped int, err error) {
	err = s.db.Transaction(func(tx *gorm.DB) error {
		var props []models.Property
		var refs []models.Reference

		for i := range bundles {
			b := &bundles[i]
			def := b.Definition
			if def.Type == "" || def.Name == "" || def.SourceFile == "" {
				skipped++
				continue
			}
			if def.Origin == "" {
				def.Origin = models.OriginBase
			}
			if err := tx.Create(&def).Error; err != nil {
				return fmt.Errorf("failed to insert definition %s/%s: %w", def.Type, def.Name, err)
			}
			for j := range b.Properties {
				p := b.Properties[j]
				if p.Name == "" {
					skipped++
					continue
				}
				p.DefinitionID = def.ID
				props = append(props, p)
			}
			for j := range b.References {
				r := b.References[j]
				if r.TargetType == "" || r.TargetName == "" || r.ContextTag == "" {
					skipped++
					continue
				}
				r.DefinitionID = def.ID
				refs = append(refs, r)
			}
		}

		if len(props) > 0 {
			if err := tx.CreateInBatches(props, insertBatchSize).Error; err != nil {
				return fmt.Errorf("failed to insert properties: %w", err)
			}
		}
		if len(refs) > 0 {
			if err := tx.CreateInBatches(refs, insertBatchSize).Error; err != nil {
				return fmt.Errorf("failed to insert references: %w", err)
			}
		}
		return nil
	})
	return skipped, err
}

// AddTransitiveReferences bulk-inserts closure rows.
func (s *Store) AddTransitiveReferences(rows []models.TransitiveReference) error {
	if len(rows) == 0 {
		return nil
	}
	if err := s.db.CreateInBatches(rows, insertBatchSize).Error; err != nil {
		return fmt.Errorf("failed to insert transitive references: %w", err)
	}
	return nil
}

// AddOperations bulk-inserts recorded mod operations.
func (s *Store) AddOperations(rows []models.ModOperation) error {
	if len(rows) == 0 {
		return nil
	}
	if err := s.db.CreateInBatches(rows, insertBatchSize).Error; err != nil {
		return fmt.Errorf("failed to insert mod operations: %w", err)
	}
	return nil
}

// DefinitionsByName returns every definition matching (type, name),
// ordered by ID. Duplicates are possible by design.
func (s *Store) DefinitionsByName(defType, name string) ([]models.Definition, error) {
	var defs []models.Definition
	err := s.db.Where("type = ? AND name = ?", defType, name).Order("id").Find(&defs).Error
	return defs, err
}

// ResolveDefinition picks the deterministic match for (type, name):
// base-game origin first, then lowest ID. Returns nil when nothing matches.
func (s *Store) ResolveDefinition(defType, name string) (*models.Definition, error) {
	var def models.Definition
	err := s.db.Where("type = ? AND name = ?", defType, name).
		Order("CASE WHEN origin = 'base' THEN 0 ELSE 1 END, id").
		Limit(1).Find(&def).Error
	if err != nil {
		return nil, err
	}
	if def.ID == 0 {
		return nil, nil
	}
	return &def, nil
}

// DefinitionByID returns one definition, or nil when absent.
func (s *Store) DefinitionByID(id uint) (*models.Definition, error) {
	var def models.Definition
	err := s.db.Limit(1).Find(&def, id).Error
	if err != nil {
		return nil, err
	}
	if def.ID == 0 {
		return nil, nil
	}
	return &def, nil
}

// PropertiesOf returns a definition's properties in document order.
func (s *Store) PropertiesOf(definitionID uint) ([]models.Property, error) {
	var props []models.Property
	err := s.db.Where("definition_id = ?", definitionID).Order("seq").Find(&props).Error
	return props, err
}

// DefinitionsWithProperty returns all definitions carrying a property with
// the given name.
func (s *Store) DefinitionsWithProperty(propertyName string) ([]models.Definition, error) {
	var defs []models.Definition
	err := s.db.
		Joins("JOIN properties ON properties.definition_id = definitions.id").
		Where("properties.name = ?", propertyName).
		Distinct().Order("definitions.id").Find(&defs).Error
	return defs, err
}

// ReferencesOf returns a definition's outgoing references, ordered by ID.
func (s *Store) ReferencesOf(definitionID uint) ([]models.Reference, error) {
	var refs []models.Reference
	err := s.db.Where("definition_id = ?", definitionID).Order("id").Find(&refs).Error
	return refs, err
}

// ReferencesTo is the reverse lookup: every reference pointing at the given
// (type, name) target, including dangling ones.
func (s *Store) ReferencesTo(targetType, targetName string) ([]models.Reference, error) {
	var refs []models.Reference
	err := s.db.Where("target_type = ? AND target_name = ?", targetType, targetName).
		Order("id").Find(&refs).Error
	return refs, err
}

// AllDefinitions returns every definition ordered by ID.
func (s *Store) AllDefinitions() ([]models.Definition, error) {
	var defs []models.Definition
	err := s.db.Order("id").Find(&defs).Error
	return defs, err
}

// AllReferences returns every reference ordered by ID. Insertion order is
// stable across rebuilds, which keeps closure traversal deterministic.
func (s *Store) AllReferences() ([]models.Reference, error) {
	var refs []models.Reference
	err := s.db.Order("id").Find(&refs).Error
	return refs, err
}

// AllTransitiveReferences returns the full closure table.
func (s *Store) AllTransitiveReferences() ([]models.TransitiveReference, error) {
	var rows []models.TransitiveReference
	err := s.db.Order("id").Find(&rows).Error
	return rows, err
}

// AllOperations returns every recorded mod operation in load order, then
// source position.
func (s *Store) AllOperations() ([]models.ModOperation, error) {
	var ops []models.ModOperation
	err := s.db.Order("load_order, source_file, source_line, id").Find(&ops).Error
	return ops, err
}

// OperationsByMod returns one mod's operations in source order.
func (s *Store) OperationsByMod(modName string) ([]models.ModOperation, error) {
	var ops []models.ModOperation
	err := s.db.Where("mod_name = ?", modName).
		Order("source_file, source_line, id").Find(&ops).Error
	return ops, err
}

// FragileOperations returns all operations flagged as fragile selectors.
func (s *Store) FragileOperations() ([]models.ModOperation, error) {
	var ops []models.ModOperation
	err := s.db.Where("fragile = ?", true).
		Order("mod_name, source_file, source_line, id").Find(&ops).Error
	return ops, err
}

// TypeCount is one aggregate bucket.
type TypeCount struct {
	Key   string `json:"key"`
	Count int64  `json:"count"`
}

// DefinitionCountsByType aggregates definitions per type.
func (s *Store) DefinitionCountsByType() ([]TypeCount, error) {
	var counts []TypeCount
	err := s.db.Model(&models.Definition{}).
		Select("type AS key, COUNT(*) AS count").
		Group("type").Order("type").Scan(&counts).Error
	return counts, err
}

// OperationCountsByKind aggregates mod operations per kind.
func (s *Store) OperationCountsByKind() ([]TypeCount, error) {
	var counts []TypeCount
	err := s.db.Model(&models.ModOperation{}).
		Select("kind AS key, COUNT(*) AS count").
		Group("kind").Order("kind").Scan(&counts).Error
	return counts, err
}

// SaveRunMeta replaces the run metadata row.
func (s *Store) SaveRunMeta(meta *models.RunMeta) error {
	if meta.ID == "" {
		return &ValidationError{Table: "run_meta", Field: "id"}
	}
	if err := s.db.Where("1 = 1").Delete(&models.RunMeta{}).Error; err != nil {
		return fmt.Errorf("failed to clear run meta: %w", err)
	}
	if err := s.db.Create(meta).Error; err != nil {
		return fmt.Errorf("failed to save run meta: %w", err)
	}
	return nil
}

// GetRunMeta returns the run metadata, or nil if the store has none.
func (s *Store) GetRunMeta() (*models.RunMeta, error) {
	var meta models.RunMeta
	err := s.db.Limit(1).Find(&meta).Error
	if err != nil {
		return nil, err
	}
	if meta.ID == "" {
		return nil, nil
	}
	return &meta, nil
}
