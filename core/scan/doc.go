// Package scan holds the configuration for the batch analysis pipeline.
//
// A run is a full rebuild: the game config tree and the mods folder are read
// once, the store is cleared and repopulated, and the closure and conflict
// tables are recomputed from scratch. There is no incremental update path.
package scan
