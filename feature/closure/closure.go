package closure

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"modaudit/feature/index"
	"modaudit/feature/index/models"

	"go.uber.org/zap"
)

// Config holds the closure builder tunables.
type Config struct {
	// MaxDepth bounds the BFS expansion. Paths at the bound are truncated,
	// not followed; truncation is expected behavior on dense graphs and is
	// reported as a count, never as an error.
	MaxDepth int
	// Workers is the number of parallel per-source traversals.
	Workers int
}

// PathStep is one edge descriptor on a dependency path. The ordered step
// list is the structured form of a closure row's path; it is serialized to
// JSON only when the row is written, and consumers render it without
// re-walking the graph.
type PathStep struct {
	TargetType string `json:"target_type"`
	TargetName string `json:"target_name"`
	ContextTag string `json:"context_tag"`
}

// Stats summarizes one closure build.
type Stats struct {
	// Sources is the number of definitions traversed from.
	Sources int `json:"sources"`
	// Rows is the number of transitive references produced.
	Rows int `json:"rows"`
	// Truncated counts edges not followed because of the depth bound.
	Truncated int `json:"truncated"`
}

// Builder computes the bounded transitive closure of the reference graph.
type Builder struct {
	store  *index.Store
	logger *zap.Logger
	cfg    Config
}

// NewBuilder creates a closure builder.
func NewBuilder(store *index.Store, logger *zap.Logger, cfg Config) *Builder {
	if cfg.MaxDepth <= 0 {
		cfg.MaxDepth = 8
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	return &Builder{store: store, logger: logger, cfg: cfg}
}

// edge is one adjacency entry: a resolved reference to another definition.
type edge struct {
	targetID uint
	step     PathStep
}

// Build recomputes the full closure table. Store read errors bubble up:
// they indicate a consistency bug, not bad input data.
func (b *Builder) Build(ctx context.Context) (Stats, error) {
	var stats Stats

	defs, err := b.store.AllDefinitions()
	if err != nil {
		return stats, fmt.Errorf("failed to load definitions: %w", err)
	}
	refs, err := b.store.AllReferences()
	if err != nil {
		return stats, fmt.Errorf("failed to load references: %w", err)
	}

	adjacency := buildAdjacency(defs, refs)
	stats.Sources = len(defs)

	// Per-source traversals are independent; partition the sources across
	// workers and merge their outputs.
	type partial struct {
		rows      []models.TransitiveReference
		truncated int
	}
	partials := make([]partial, b.cfg.Workers)

	var wg sync.WaitGroup
	jobs := make(chan uint)

	for w := 0; w < b.cfg.Workers; w++ {
		wg.Add(1)
		go func(slot int) {
			defer wg.Done()
			for sourceID := range jobs {
				// Keep draining after cancellation so the producer's sends
				// never block on exited workers.
				if ctx.Err() != nil {
					continue
				}
				rows, truncated := b.traverse(sourceID, adjacency)
				partials[slot].rows = append(partials[slot].rows, rows...)
				partials[slot].truncated += truncated
			}
		}(w)
	}

	for _, def := range defs {
		select {
		case jobs <- def.ID:
		case <-ctx.Done():
		}
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return stats, err
	}

	var merged []models.TransitiveReference
	for _, p := range partials {
		merged = append(merged, p.rows...)
		stats.Truncated += p.truncated
	}

	// Deterministic insert order: rebuilds on unchanged input produce an
	// identical closure table.
	sort.Slice(merged, func(i, j int) bool {
		if merged[i].SourceID != merged[j].SourceID {
			return merged[i].SourceID < merged[j].SourceID
		}
		return merged[i].TargetID < merged[j].TargetID
	})

	if err := b.store.AddTransitiveReferences(merged); err != nil {
		return stats, err
	}
	stats.Rows = len(merged)

	b.logger.Info("Closure build finished",
		zap.Int("sources", stats.Sources),
		zap.Int("rows", stats.Rows),
		zap.Int("truncated", stats.Truncated),
	)
	return stats, nil
}

// buildAdjacency resolves every reference to a definition ID and indexes the
// edges by source. Dangling references are excluded: there is nothing on the
// far end to continue a traversal from. Resolution is deterministic: a
// base-game definition wins over mod duplicates, then the lowest ID.
func buildAdjacency(defs []models.Definition, refs []models.Reference) map[uint][]edge {
	// defs arrive in ID order, so the first base-origin match per key is the
	// lowest-ID base definition; the fallback pass picks the first ingested
	// definition of any origin.
	resolved := make(map[string]uint, len(defs))
	for _, def := range defs {
		if def.Origin != models.OriginBase {
			continue
		}
		key := def.Type + "\x00" + def.Name
		if _, ok := resolved[key]; !ok {
			resolved[key] = def.ID
		}
	}
	for _, def := range defs {
		key := def.Type + "\x00" + def.Name
		if _, ok := resolved[key]; !ok {
			resolved[key] = def.ID
		}
	}

	adjacency := make(map[uint][]edge)
	for _, ref := range refs {
		targetID, ok := resolved[ref.TargetType+"\x00"+ref.TargetName]
		if !ok {
			continue // dangling
		}
		adjacency[ref.DefinitionID] = append(adjacency[ref.DefinitionID], edge{
			targetID: targetID,
			step: PathStep{
				TargetType: ref.TargetType,
				TargetName: ref.TargetName,
				ContextTag: ref.ContextTag,
			},
		})
	}
	return adjacency
}

// node is one BFS queue entry.
type node struct {
	id    uint
	depth int
	path  []PathStep
	tags  map[string]struct{}
}

// traverse runs one bounded BFS from sourceID. First discovery wins: a
// definition reached at depth 2 via one path and depth 4 via another is
// recorded once, at depth 2, with that path. The per-source visited set
// guarantees termination on cycles, and the source itself is never emitted.
func (b *Builder) traverse(sourceID uint, adjacency map[uint][]edge) ([]models.TransitiveReference, int) {
	visited := map[uint]struct{}{sourceID: {}}
	queue := []node{{id: sourceID, depth: 0}}

	var rows []models.TransitiveReference
	truncated := 0

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, e := range adjacency[current.id] {
			if e.targetID == sourceID {
				continue // self-reachability through a cycle is excluded
			}
			if _, seen := visited[e.targetID]; seen {
				continue
			}
			if current.depth >= b.cfg.MaxDepth {
				truncated++
				continue
			}
			visited[e.targetID] = struct{}{}

			path := make([]PathStep, len(current.path)+1)
			copy(path, current.path)
			path[len(current.path)] = e.step

			tags := make(map[string]struct{}, len(current.tags)+1)
			for t := range current.tags {
				tags[t] = struct{}{}
			}
			tags[e.step.ContextTag] = struct{}{}

			rows = append(rows, models.TransitiveReference{
				SourceID: sourceID,
				TargetID: e.targetID,
				Depth:    current.depth + 1,
				Path:     marshalPath(path),
				RefTypes: marshalTags(tags),
			})
			queue = append(queue, node{id: e.targetID, depth: current.depth + 1, path: path, tags: tags})
		}
	}
	return rows, truncated
}

// marshalPath serializes the ordered step list at the persistence boundary.
func marshalPath(path []PathStep) string {
	data, _ := json.Marshal(path)
	return string(data)
}

// marshalTags serializes the distinct context tags seen along the path.
func marshalTags(tags map[string]struct{}) string {
	sorted := make([]string, 0, len(tags))
	for t := range tags {
		sorted = append(sorted, t)
	}
	sort.Strings(sorted)
	data, _ := json.Marshal(sorted)
	return string(data)
}
