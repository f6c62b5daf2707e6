package scanner

import (
	"strconv"
	"strings"
)

// splitAndTrim and the two parsers below back the Exclude/ports-list parser
// in port.go. They are small, self-contained string operations with no
// third-party equivalent in the retrieved pack worth reaching for.
func splitAndTrim(s string, sep byte) []string {
	parts := strings.Split(s, string(sep))
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}

func splitRange(tok string) (lo, hi uint16, ok bool) {
	// Directive-scoped tokens look like "T:9100" or "U:30000-40000"; the
	// scope prefix is stripped by the caller (parseExcludeLine) before this is
	// reached, so here we only ever see a bare "lo-hi" or a single number.
	idx := strings.IndexByte(tok, '-')
	if idx <= 0 {
		return 0, 0, false
	}
	loN, err1 := parseUint16(tok[:idx])
	hiN, err2 := parseUint16(tok[idx+1:])
	if !err1 || !err2 {
		return 0, 0, false
	}
	return loN, hiN, true
}

func parseUint16(s string) (uint16, bool) {
	n, err := strconv.ParseUint(strings.TrimSpace(s), 10, 16)
	if err != nil {
		return 0, false
	}
	return uint16(n), true
}
