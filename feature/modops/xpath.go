package modops

import (
	"regexp"
	"strings"

	"modaudit/feature/extract"
)

// Resolution is the best-effort structural interpretation of an operation's
// XPath. A selector that does not match the common
// /container/element[@name='X']/... shape resolves to empty targets and is
// marked fragile: conflict grouping by name cannot apply, but the operation
// is still recorded and flagged as a fragile-selector risk.
type Resolution struct {
	TargetType   string
	TargetName   string
	PropertyName string
	Fragile      bool
}

var predicateRe = regexp.MustCompile(`\[@([A-Za-z_][A-Za-z0-9_.:-]*)='([^']*)'\]`)

// ResolveXPath pattern-matches the XPath against the common shape. The
// first segment maps to a target type via the container table shared with
// the extractor; the element segment's [@name='X'] predicate gives the
// target name; a later property[@name='P'] segment gives the property name.
func ResolveXPath(xpath string) Resolution {
	var res Resolution

	segments := splitXPath(xpath)
	if len(segments) < 2 {
		res.Fragile = true
		return res
	}

	containerTag, _ := parseSegment(segments[0])
	targetType, knownContainer := extract.ContainerTypes[containerTag]

	_, elementPreds := parseSegment(segments[1])
	targetName := ""
	nameOnly := true
	for _, p := range elementPreds {
		if p.attr == "name" {
			targetName = p.value
		} else {
			nameOnly = false
		}
	}

	// Property narrowing can appear at any later depth (e.g. inside a
	// property class group); the innermost property wins.
	for _, seg := range segments[2:] {
		tag, preds := parseSegment(seg)
		if tag != "property" {
			continue
		}
		for _, p := range preds {
			if p.attr == "name" {
				res.PropertyName = p.value
			}
		}
	}

	if !knownContainer || targetName == "" || !nameOnly {
		// Non-name predicates, positional selectors and unknown containers
		// are all selector-based rather than name-based.
		res.Fragile = true
		return res
	}

	res.TargetType = targetType
	res.TargetName = targetName
	return res
}

type predicate struct {
	attr  string
	value string
}

// parseSegment splits one path segment into its element tag and its
// attribute-equality predicates. Exotic predicate forms (positions,
// functions) simply produce no predicates, which the caller treats as
// fragile.
func parseSegment(seg string) (string, []predicate) {
	tag := seg
	if i := strings.IndexByte(seg, '['); i >= 0 {
		tag = seg[:i]
	}
	var preds []predicate
	for _, m := range predicateRe.FindAllStringSubmatch(seg, -1) {
		preds = append(preds, predicate{attr: m[1], value: m[2]})
	}
	// A bracket without a matched attribute-equality predicate is an exotic
	// selector; report it as a non-name predicate.
	if strings.ContainsRune(seg, '[') && len(preds) == 0 {
		preds = append(preds, predicate{attr: "", value: ""})
	}
	return tag, preds
}

// splitXPath splits on '/' outside quoted predicate values, dropping empty
// segments and trailing attribute selectors (@value and friends).
func splitXPath(xpath string) []string {
	var segments []string
	var current strings.Builder
	inQuote := false

	flush := func() {
		seg := current.String()
		current.Reset()
		if seg == "" || strings.HasPrefix(seg, "@") {
			return
		}
		segments = append(segments, seg)
	}

	for _, r := range xpath {
		switch {
		case r == '\'':
			inQuote = !inQuote
			current.WriteRune(r)
		case r == '/' && !inQuote:
			flush()
		default:
			current.WriteRune(r)
		}
	}
	flush()
	return segments
}
