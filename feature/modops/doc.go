// Package modops records the patch instructions third-party mods apply to
// the game configuration.
//
// A mod's patch files use XPath-addressed elements: set, setattribute,
// append, insertBefore, insertAfter, remove, removeattribute. The recorder
// captures each instruction with a best-effort structural resolution of its
// target: the common /container/element[@name='X'] shape maps to a
// (type, name) pair via the same container table the extractor uses.
// Selectors using non-name predicates or positions cannot be resolved by
// name; they are recorded with empty targets and flagged fragile.
//
// The recorder never detects conflicts itself; that is the classifier's
// job. Load order is an input attribute, not something this package
// computes.
package modops
