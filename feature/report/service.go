package report

import (
	"fmt"

	"modaudit/core/database"
	"modaudit/feature/conflict"
	"modaudit/feature/index"
	"modaudit/feature/index/models"

	"go.uber.org/zap"
)

// Service exposes the read-only query interface the reporting layer
// consumes. All queries are pull-based snapshots over the already-built
// store; nothing here mutates it.
type Service struct {
	store      *index.Store
	classifier *conflict.Classifier
	logger     *zap.Logger
}

// NewService creates a report service. valueCompare configures the conflict
// classifier ("exact" or "fold").
func NewService(store *index.Store, logger *zap.Logger, valueCompare string) *Service {
	return &Service{
		store:      store,
		classifier: conflict.NewClassifier(logger, valueCompare),
		logger:     logger,
	}
}

// VerifyStore checks that every store table exists. A failure here is a
// store-consistency bug (or the wrong file) and is bubbled to the caller.
func (s *Service) VerifyStore() error {
	if err := database.VerifyTables(s.store.DB(), index.Tables); err != nil {
		return fmt.Errorf("store verification failed: %w", err)
	}
	return nil
}

// EntitySummary is one definition with its row counts.
type EntitySummary struct {
	models.Definition
	PropertyCount  int64 `json:"property_count"`
	ReferenceCount int64 `json:"reference_count"`
}

// Entities returns the full entity list with property and reference counts.
func (s *Service) Entities() ([]EntitySummary, error) {
	defs, err := s.store.AllDefinitions()
	if err != nil {
		return nil, err
	}

	type bucket struct {
		DefinitionID uint
		Count        int64
	}
	countsFor := func(model any) (map[uint]int64, error) {
		var rows []bucket
		err := s.store.DB().Model(model).
			Select("definition_id, COUNT(*) AS count").
			Group("definition_id").Scan(&rows).Error
		if err != nil {
			return nil, err
		}
		out := make(map[uint]int64, len(rows))
		for _, r := range rows {
			out[r.DefinitionID] = r.Count
		}
		return out, nil
	}

	propCounts, err := countsFor(&models.Property{})
	if err != nil {
		return nil, err
	}
	refCounts, err := countsFor(&models.Reference{})
	if err != nil {
		return nil, err
	}

	summaries := make([]EntitySummary, 0, len(defs))
	for _, def := range defs {
		summaries = append(summaries, EntitySummary{
			Definition:     def,
			PropertyCount:  propCounts[def.ID],
			ReferenceCount: refCounts[def.ID],
		})
	}
	return summaries, nil
}

// References returns the full direct reference list, dangling edges
// included.
func (s *Service) References() ([]models.Reference, error) {
	return s.store.AllReferences()
}

// TransitiveReferences returns the full closure table.
func (s *Service) TransitiveReferences() ([]models.TransitiveReference, error) {
	return s.store.AllTransitiveReferences()
}

// Dependents answers "what breaks if I change X": every definition that
// transitively depends on the given (type, name).
func (s *Service) Dependents(defType, name string) ([]models.TransitiveReference, error) {
	target, err := s.store.ResolveDefinition(defType, name)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, nil
	}
	var rows []models.TransitiveReference
	err = s.store.DB().Where("target_id = ?", target.ID).Order("depth, source_id").Find(&rows).Error
	return rows, err
}

// Operations returns every recorded mod operation in load order.
func (s *Service) Operations() ([]models.ModOperation, error) {
	return s.store.AllOperations()
}

// OperationsByMod returns one mod's operations in source order.
func (s *Service) OperationsByMod(modName string) ([]models.ModOperation, error) {
	return s.store.OperationsByMod(modName)
}

// Conflicts classifies the recorded operations and returns the verdict
// list. The classification is recomputed per call; the store itself holds
// only the raw operations.
func (s *Service) Conflicts() ([]conflict.Verdict, error) {
	ops, err := s.store.AllOperations()
	if err != nil {
		return nil, err
	}
	return s.classifier.Classify(ops), nil
}

// FragileOperations returns the fragile-selector warnings: operations whose
// XPath could not be resolved to a definite target.
func (s *Service) FragileOperations() ([]models.ModOperation, error) {
	return s.store.FragileOperations()
}

// Aggregates bundles the count queries the reporting layer renders.
type Aggregates struct {
	DefinitionsByType   []index.TypeCount         `json:"definitions_by_type"`
	OperationsByKind    []index.TypeCount         `json:"operations_by_kind"`
	ConflictsBySeverity map[conflict.Severity]int `json:"conflicts_by_severity"`
	FragileOperations   int64                     `json:"fragile_operations"`
}

// AggregateCounts computes the aggregate counts by type, operation kind and
// conflict severity.
func (s *Service) AggregateCounts() (*Aggregates, error) {
	defCounts, err := s.store.DefinitionCountsByType()
	if err != nil {
		return nil, err
	}
	opCounts, err := s.store.OperationCountsByKind()
	if err != nil {
		return nil, err
	}
	verdicts, err := s.Conflicts()
	if err != nil {
		return nil, err
	}
	fragile, err := s.store.FragileOperations()
	if err != nil {
		return nil, err
	}

	bySeverity := make(map[conflict.Severity]int)
	for _, v := range verdicts {
		bySeverity[v.Severity]++
	}

	return &Aggregates{
		DefinitionsByType:   defCounts,
		OperationsByKind:    opCounts,
		ConflictsBySeverity: bySeverity,
		FragileOperations:   int64(len(fragile)),
	}, nil
}

// Meta returns the run metadata, including partial-failure counters.
func (s *Service) Meta() (*models.RunMeta, error) {
	return s.store.GetRunMeta()
}
