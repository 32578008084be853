package modops

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"modaudit/core/xmlnode"
	"modaudit/feature/extract"
	"modaudit/feature/index"
	"modaudit/feature/index/models"

	"go.uber.org/zap"
)

// Mod identifies one modification package and its load-order position.
// Load order is an input: the recorder stores it, it never simulates game
// loading.
type Mod struct {
	Name      string
	Dir       string
	LoadOrder int
}

// Stats summarizes one recording pass.
type Stats struct {
	// Mods is the number of mod packages discovered.
	Mods int `json:"mods"`
	// Files is the number of patch XML files parsed.
	Files int `json:"files"`
	// Operations is the number of instructions recorded.
	Operations int `json:"operations"`
	// Fragile counts operations whose selector could not be resolved.
	Fragile int `json:"fragile"`
	// SkippedFiles counts files skipped due to parse errors.
	SkippedFiles int `json:"skipped_files"`
}

var operationKinds = map[string]bool{
	models.KindSet:             true,
	models.KindSetAttribute:    true,
	models.KindAppend:          true,
	models.KindInsertBefore:    true,
	models.KindInsertAfter:     true,
	models.KindRemove:          true,
	models.KindRemoveAttribute: true,
}

// Recorder captures each XPath-addressed instruction a mod applies. It only
// records; conflict detection happens in the classifier.
type Recorder struct {
	store  *index.Store
	logger *zap.Logger
}

// NewRecorder creates a recorder writing to the given store.
func NewRecorder(store *index.Store, logger *zap.Logger) *Recorder {
	return &Recorder{store: store, logger: logger}
}

// DiscoverMods lists the mod packages under modsDir. Each subdirectory is
// one mod; lexicographic directory order is the declared load order.
func DiscoverMods(modsDir string) ([]Mod, error) {
	entries, err := os.ReadDir(modsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read mods directory %s: %w", modsDir, err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	mods := make([]Mod, 0, len(names))
	for i, name := range names {
		mods = append(mods, Mod{
			Name:      name,
			Dir:       filepath.Join(modsDir, name),
			LoadOrder: i,
		})
	}
	return mods, nil
}

// RecordMods records every patch instruction from every discovered mod.
func (r *Recorder) RecordMods(ctx context.Context, mods []Mod) (Stats, error) {
	var stats Stats
	stats.Mods = len(mods)

	var rows []models.ModOperation
	for _, mod := range mods {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		modRows, modStats, err := r.recordMod(mod)
		if err != nil {
			return stats, err
		}
		rows = append(rows, modRows...)
		stats.Files += modStats.Files
		stats.SkippedFiles += modStats.SkippedFiles
		stats.Fragile += modStats.Fragile
	}

	if err := r.store.AddOperations(rows); err != nil {
		return stats, err
	}
	stats.Operations = len(rows)

	r.logger.Info("Mod operations recorded",
		zap.Int("mods", stats.Mods),
		zap.Int("files", stats.Files),
		zap.Int("operations", stats.Operations),
		zap.Int("fragile", stats.Fragile),
		zap.Int("skipped_files", stats.SkippedFiles),
	)
	return stats, nil
}

// recordMod parses one mod's patch files. Per-file errors are logged and
// counted, never bubbled past the file boundary.
func (r *Recorder) recordMod(mod Mod) ([]models.ModOperation, Stats, error) {
	var stats Stats

	var files []string
	err := filepath.WalkDir(mod.Dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			if path == mod.Dir {
				return err
			}
			return nil
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(path), ".xml") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, stats, fmt.Errorf("failed to read mod directory %s: %w", mod.Dir, err)
	}
	sort.Strings(files)

	var rows []models.ModOperation
	for _, path := range files {
		stats.Files++
		fileRows, err := r.recordFile(mod, path)
		if err != nil {
			r.logger.Warn("Skipping mod patch file", zap.String("mod", mod.Name), zap.String("file", path), zap.Error(err))
			stats.SkippedFiles++
			continue
		}
		rows = append(rows, fileRows...)
	}

	for _, row := range rows {
		if row.Fragile {
			stats.Fragile++
		}
	}
	return rows, stats, nil
}

// recordFile extracts the operation rows from one patch file.
func (r *Recorder) recordFile(mod Mod, path string) ([]models.ModOperation, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &extract.ParseError{File: path, Err: err}
	}
	defer f.Close()

	root, err := xmlnode.Parse(f)
	if err != nil {
		return nil, &extract.ParseError{File: path, Err: err}
	}

	var rows []models.ModOperation
	for _, el := range root.Children {
		if !operationKinds[el.Tag] {
			// Whole-file definitions a mod ships are handled by the
			// extractor's mod scan, not here.
			continue
		}
		xpath := el.Attr("xpath")
		if xpath == "" {
			r.logger.Warn("Operation missing xpath attribute",
				zap.String("mod", mod.Name),
				zap.String("file", path),
				zap.Int("line", el.Line),
			)
			continue
		}

		res := ResolveXPath(xpath)
		row := models.ModOperation{
			ModName:      mod.Name,
			Kind:         el.Tag,
			XPath:        xpath,
			TargetType:   res.TargetType,
			TargetName:   res.TargetName,
			PropertyName: res.PropertyName,
			Fragile:      res.Fragile,
			LoadOrder:    mod.LoadOrder,
			SourceFile:   path,
			SourceLine:   el.Line,
		}

		switch el.Tag {
		case models.KindSet:
			row.Value = operationValue(el)
		case models.KindSetAttribute:
			row.Value = operationValue(el)
			// The attribute being set is the property key when the XPath
			// itself does not narrow to a property.
			if row.PropertyName == "" {
				row.PropertyName = el.Attr("name")
			}
		case models.KindAppend, models.KindInsertBefore, models.KindInsertAfter:
			row.RawContent = el.SerializeChildren()
		case models.KindRemove, models.KindRemoveAttribute:
			// Structural: no value.
		}

		rows = append(rows, row)
	}
	return rows, nil
}

// operationValue returns the new value of a set/setattribute instruction:
// the element text, or a value-bearing attribute as fallback.
func operationValue(el *xmlnode.Node) string {
	if text := el.TrimmedText(); text != "" {
		return text
	}
	return el.Attr("value")
}
