// Package suppress implements SuppressionMap (spec.md §4.5): it scans
// raw query source text for `sqlsift:disable` directives in SQL
// comments, independent of the AST, and filters a diagnostic list
// against them as the last step before diagnostics are returned.
package suppress

import (
	"regexp"
	"strings"

	"sqlsift/internal/diag"
)

var directiveRe = regexp.MustCompile(`sqlsift:disable(?:\s+([A-Za-z0-9, ]+))?`)

// Map holds, per line, the set of codes suppressed on that line. A
// nil set for a present line key means "suppress everything" (a bare
// directive).
type Map struct {
	// lines maps a 1-based line number to the codes suppressed there.
	// A nil (as opposed to empty, non-nil) set means "all codes".
	lines map[int]map[diag.Code]bool
}

// Build scans source (one query's raw text) for suppression
// directives and returns the resulting Map. Directives are
// recognized in both `--` line comments and `/* ... */` block
// comments; scope is always single-line (spec.md §4.5).
func Build(source string) *Map {
	m := &Map{lines: make(map[int]map[diag.Code]bool)}

	rawLines := strings.Split(source, "\n")
	lastDirectiveCodes := map[diag.Code]bool(nil)
	lastDirectiveIsBare := false
	havePendingDirective := false

	for i, line := range rawLines {
		lineNo := i + 1

		if havePendingDirective && !isCommentOnlyLine(line) {
			if lastDirectiveIsBare {
				m.lines[lineNo] = nil
			} else {
				m.lines[lineNo] = mergeSet(m.lines[lineNo], lastDirectiveCodes)
			}
			havePendingDirective = false
		}

		if isCommentOnlyLine(line) {
			if codes, bare, ok := parseDirective(line); ok {
				lastDirectiveCodes = codes
				lastDirectiveIsBare = bare
				havePendingDirective = true
			}
			continue
		}

		// End-of-line directive: suppresses listed codes on this same
		// line (a bare end-of-line directive has no listed codes, so it
		// suppresses nothing per spec.md's "listed codes" wording — an
		// author who wants whole-line suppression puts the directive on
		// its own line above instead).
		if codes, bare, ok := parseDirective(line); ok && !bare {
			m.lines[lineNo] = mergeSet(m.lines[lineNo], codes)
		}
	}

	return m
}

func mergeSet(existing, add map[diag.Code]bool) map[diag.Code]bool {
	if existing == nil {
		existing = make(map[diag.Code]bool, len(add))
	}
	for c := range add {
		existing[c] = true
	}
	return existing
}

// isCommentOnlyLine reports whether line, once trimmed, is entirely a
// `--` or `/* ... */` comment (the "line by itself" case spec.md's
// own-line directive semantics require).
func isCommentOnlyLine(line string) bool {
	t := strings.TrimSpace(line)
	if strings.HasPrefix(t, "--") {
		return true
	}
	if strings.HasPrefix(t, "/*") && strings.HasSuffix(t, "*/") {
		return true
	}
	return false
}

func parseDirective(line string) (codes map[diag.Code]bool, bare bool, ok bool) {
	m := directiveRe.FindStringSubmatch(line)
	if m == nil {
		return nil, false, false
	}
	codeList := strings.TrimSpace(m[1])
	if codeList == "" {
		return nil, true, true
	}
	codes = make(map[diag.Code]bool)
	for _, part := range strings.Split(codeList, ",") {
		c := strings.TrimSpace(part)
		if c != "" {
			codes[diag.Code(c)] = true
		}
	}
	return codes, false, true
}

// Filter removes every diagnostic suppressed by m, preserving order.
func (m *Map) Filter(diags []diag.Diagnostic) []diag.Diagnostic {
	if m == nil {
		return diags
	}
	out := diags[:0:0]
	for _, d := range diags {
		set, has := m.lines[d.Span.Line]
		if has && (set == nil || set[d.Code]) {
			continue
		}
		out = append(out, d)
	}
	return out
}
