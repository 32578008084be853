// Package index implements the entity store: the normalized tables holding
// definitions, properties and references extracted from the game XML, plus
// the derived transitive closure and the recorded mod operations.
//
// The store is append-only within one rebuild. Reset clears every table; a
// full pipeline run repopulates them from scratch. Once built, the store is
// read-only for the lifetime of a report pass, so no reader/writer races
// need to be handled.
//
// # Ambiguous names
//
// Duplicate (type, name) definitions are tolerated at ingestion time.
// ResolveDefinition picks deterministically: a base-game definition wins
// over mod-contributed duplicates, then the lowest ID (first ingested).
// This is a deliberate simplification; the closure builder applies the
// same policy so both layers agree.
package index
