package scan

// Config holds configuration for an analysis run: input locations and the
// tunables of the closure builder and conflict classifier.
type Config struct {
	// GameDir is the root of the base game XML config tree.
	GameDir string `mapstructure:"game_dir" default:"./Data/Config"`
	// ModsDir is the root of the mods folder. Each subdirectory is one mod;
	// lexicographic subdirectory order is the declared load order.
	ModsDir string `mapstructure:"mods_dir" default:"./Mods"`
	// MaxDepth bounds the transitive closure expansion. Paths longer than
	// this are truncated, not followed.
	MaxDepth int `mapstructure:"max_depth" default:"8"`
	// Workers is the number of parallel workers for extraction and closure
	// building. Zero or negative falls back to a small default.
	Workers int `mapstructure:"workers" default:"4"`
	// ValueCompare selects how the conflict classifier compares written
	// values: "exact" (default) or "fold" (case-insensitive, trimmed).
	ValueCompare string `mapstructure:"value_compare" default:"exact"`
}
