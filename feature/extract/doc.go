// Package extract implements the XML reference extractor and the game
// config directory scanner.
//
// The extractor turns each definition element into a bundle of property
// rows and typed reference edges (extends, property:<Name>,
// triggered_effect:<Action>, loot_entry, recipe_ingredient, recipe_output,
// group_member). Which property names produce references is table-driven
// (reftable.go); everything else is recorded as a plain value.
//
// The scanner walks the config tree, parses each XML file, and classifies
// definitions by element tag. Files are processed by a worker pool with
// per-worker buffers; the merged buffers are inserted into the store on a
// single goroutine. A malformed file is logged, counted and skipped — one
// bad file never aborts the ingestion run.
package extract
