package scanner

import (
	"log/slog"
	"sync"

	"github.com/dlclark/regexp2"
)

// IsMatch parses an nmap-style delimited pattern — "m<delim>body<delim>flags"
// with an optional leading "m" and delim one of | / = @ % — compiles it,
// and reports whether it matches subject. Any failure along the way
// (unterminated delimiter, compile error) yields false rather than an
// error: a malformed rule in the probe database should never stop
// detection, it should just never fire. Flag letters other than i, s and m
// are ignored.
//
// subject is matched byte for byte: each byte becomes the rune of the same
// value, so an escape such as \xff in a pattern matches the byte 0xff even
// when the response is not valid UTF-8.
//
// The parse here follows the same left-to-right stripping the original
// pcre2_is_match implementation used: drop the leading "m", read the
// delimiter byte, scan backwards from the end of the string for its last
// occurrence, and treat whatever follows it as flags.
func IsMatch(pattern []byte, subject []byte) bool {
	body, flags, ok := splitDelimitedPattern(pattern)
	if !ok {
		return false
	}
	re, err := compilePattern(body, flags)
	if err != nil {
		slog.Default().Debug("scanner: pattern compile failed", "pattern", body, "error", err)
		return false
	}
	runes := make([]rune, len(subject))
	for i, b := range subject {
		runes[i] = rune(b)
	}
	matched, err := re.MatchRunes(runes)
	if err != nil {
		slog.Default().Debug("scanner: pattern match failed", "pattern", body, "error", err)
		return false
	}
	return matched
}

func splitDelimitedPattern(pattern []byte) (body []byte, flags []byte, ok bool) {
	p := pattern
	if len(p) > 0 && p[0] == 'm' {
		p = p[1:]
	}
	if len(p) == 0 {
		return nil, nil, false
	}
	delim := p[0]
	switch delim {
	case '|', '/', '=', '@', '%':
	default:
		// No recognizable delimiter: treat the whole remainder as a bare
		// expression with no flags, same as the source's fallthrough arm.
		return p, nil, true
	}

	rest := p[1:]
	if len(rest) == 0 {
		return nil, nil, false
	}
	for idx := len(rest) - 1; idx > 0; idx-- {
		if rest[idx] == delim {
			return rest[:idx], rest[idx+1:], true
		}
	}
	return nil, nil, false
}

// regexCache avoids recompiling the same pattern+flags on every call —
// Detect runs the same probe database against many targets in a process's
// lifetime, so patterns repeat constantly.
var (
	regexCacheMu sync.RWMutex
	regexCache   = map[string]*regexp2.Regexp{}
)

func compilePattern(body, flags []byte) (*regexp2.Regexp, error) {
	key := string(flags) + "\x00" + string(body)

	regexCacheMu.RLock()
	if re, ok := regexCache[key]; ok {
		regexCacheMu.RUnlock()
		return re, nil
	}
	regexCacheMu.RUnlock()

	opts := regexp2.None
	for _, f := range flags {
		switch f {
		case 'i':
			opts |= regexp2.IgnoreCase
		case 's':
			opts |= regexp2.Singleline
		case 'm':
			opts |= regexp2.Multiline
		}
	}

	re, err := regexp2.Compile(string(body), opts)
	if err != nil {
		return nil, err
	}

	regexCacheMu.Lock()
	regexCache[key] = re
	regexCacheMu.Unlock()
	return re, nil
}
