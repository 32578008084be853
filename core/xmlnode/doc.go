// Package xmlnode implements a minimal XML document tree with source line
// tracking.
//
// The index stores a source file and line for every definition and mod
// operation, and no maintained Go XML DOM library exposes token positions.
// This package wraps encoding/xml's streaming decoder (which does, via
// InputPos) into a small tree that the extractor and the mod operation
// recorder share.
//
// The tree is read-only after parsing. Serialization is normalized and
// deterministic, which the pipeline relies on for idempotent rebuilds.
package xmlnode
