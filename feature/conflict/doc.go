// Package conflict classifies multi-mod edits to the same target into
// severities.
//
// Operations with a resolved (type, name) target are grouped per entity.
// Three rules apply, in precedence order:
//
//  1. High: the entity is removed by one mod while any other mod touches
//     it. The verdict attaches every operation on the entity as context and
//     subsumes all lower verdicts for that entity.
//  2. Medium: within a property key (resolved property name, else raw
//     XPath, else operation kind), two or more mods write diverging values.
//     If every mod writes the same effective value the group is redundant,
//     not conflicting, and produces no verdict at all.
//  3. Low: two or more mods perform only additive operations
//     (append/insert) on the entity.
//
// Value equality is an explicit configuration choice: exact string match by
// default, optionally case-folded and trimmed.
package conflict
