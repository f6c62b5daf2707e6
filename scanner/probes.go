package scanner

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
)

// ServiceProbeMatchRule is one "match"/"softmatch" line attached to a probe.
// Pattern is kept in raw nmap-dialect form ("m|...|flags") and is only
// compiled lazily by IsMatch — most rules in the database are never
// evaluated against any given response, so compiling eagerly would be
// wasted work.
type ServiceProbeMatchRule struct {
	IsSoftMatch      bool
	ServiceNameIndex uint16
	Pattern          []byte
	VersionInfo      [][]byte
}

// ServiceProbe is one "Probe" stanza: the bytes to send and the ordered
// list of match rules to try against whatever comes back.
type ServiceProbe struct {
	ProbeName    string
	ProbeString  []byte
	Protocol     Protocol
	Fallback     *string
	Ports        []Port
	SSLPorts     []Port
	Rarity       *uint8
	TCPWrappedMS *uint64
	TotalWaitMS  *uint64
	Rules        []ServiceProbeMatchRule
}

// ParseError records a single malformed line; LoadProbes collects these
// rather than failing the whole load on one bad line, since a hand-curated
// or operator-edited probe file is far more likely to have an isolated typo
// than to be wholesale garbage.
type ParseError struct {
	LineNumber int
	Message    string
}

func (e ParseError) String() string {
	return fmt.Sprintf("line %d: %s", e.LineNumber, e.Message)
}

// LoadStats summarizes one LoadProbes run.
type LoadStats struct {
	TotalLines int
	ProbeCount int
	MatchCount int
	ErrorLines []ParseError
}

// rawRule/rawProbe hold match rules with the service name still a string;
// LoadProbes resolves every name against the set discovered in the whole
// file in a second pass, after which the caller owns a complete, consistent
// name table it can hand to ResolveServiceName/ServiceName.
type rawRule struct {
	isSoft      bool
	serviceName string
	pattern     []byte
	versionInfo [][]byte
}

type rawProbe struct {
	probeName   string
	probeString []byte
	protocol    Protocol
	fallback    *string
	ports       []Port
	sslPorts    []Port
	rarity      *uint8
	tcpWrapped  *uint64
	totalWait   *uint64
	rules       []rawRule
}

// LoadProbes parses an nmap-service-probes-format document and returns the
// probe list, the service name table collected from every match/softmatch
// rule in the file, any Exclude directive found, and load statistics.
func LoadProbes(r io.Reader) ([]ServiceProbe, []string, PortSpecification, LoadStats, error) {
	var rawProbes []rawProbe
	var current *rawProbe
	var exclude PortSpecification
	stats := LoadStats{}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	for scanner.Scan() {
		stats.TotalLines++
		line := strings.TrimSpace(scanner.Text())
		lineNo := stats.TotalLines

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		switch {
		case strings.HasPrefix(line, "Probe "):
			if current != nil {
				rawProbes = append(rawProbes, *current)
			}
			p, err := parseProbeLine(line)
			if err != nil {
				stats.ErrorLines = append(stats.ErrorLines, ParseError{lineNo, err.Error()})
				current = nil
				continue
			}
			current = &p
			stats.ProbeCount++

		case strings.HasPrefix(line, "match "), strings.HasPrefix(line, "softmatch "):
			if current == nil {
				stats.ErrorLines = append(stats.ErrorLines, ParseError{lineNo, "match found without preceding Probe"})
				continue
			}
			rule, err := parseMatchLine(line)
			if err != nil {
				stats.ErrorLines = append(stats.ErrorLines, ParseError{lineNo, err.Error()})
				continue
			}
			current.rules = append(current.rules, rule)
			stats.MatchCount++

		case strings.HasPrefix(line, "fallback "):
			if current == nil {
				continue
			}
			name := strings.TrimSpace(strings.TrimPrefix(line, "fallback "))
			// A probe can list several comma-separated fallbacks; only the
			// first is used (matching FallbackProbe's single-hop contract).
			name = strings.SplitN(name, ",", 2)[0]
			current.fallback = &name

		case strings.HasPrefix(line, "ports "):
			if current == nil {
				continue
			}
			current.ports = parsePortList(strings.TrimPrefix(line, "ports "))

		case strings.HasPrefix(line, "sslports "):
			if current == nil {
				continue
			}
			current.sslPorts = parsePortList(strings.TrimPrefix(line, "sslports "))

		case strings.HasPrefix(line, "rarity "):
			if current == nil {
				continue
			}
			if n, err := strconv.ParseUint(strings.TrimSpace(strings.TrimPrefix(line, "rarity ")), 10, 8); err == nil {
				v := uint8(n)
				current.rarity = &v
			}

		case strings.HasPrefix(line, "totalwaitms "):
			if current == nil {
				continue
			}
			if n, err := strconv.ParseUint(strings.TrimSpace(strings.TrimPrefix(line, "totalwaitms ")), 10, 64); err == nil {
				current.totalWait = &n
			}

		case strings.HasPrefix(line, "tcpwrappedms "):
			if current == nil {
				continue
			}
			if n, err := strconv.ParseUint(strings.TrimSpace(strings.TrimPrefix(line, "tcpwrappedms ")), 10, 64); err == nil {
				current.tcpWrapped = &n
			}

		case strings.HasPrefix(line, "Exclude "):
			exclude = parseExcludeLine(strings.TrimPrefix(line, "Exclude "))

		default:
			stats.ErrorLines = append(stats.ErrorLines, ParseError{lineNo, "unknown line format"})
		}
	}

	if current != nil {
		rawProbes = append(rawProbes, *current)
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, exclude, stats, ErrProbeDatabase(err)
	}

	names := collectServiceNames(rawProbes)
	probes := make([]ServiceProbe, len(rawProbes))
	for i, rp := range rawProbes {
		probes[i] = ServiceProbe{
			ProbeName:    rp.probeName,
			ProbeString:  rp.probeString,
			Protocol:     rp.protocol,
			Fallback:     rp.fallback,
			Ports:        rp.ports,
			SSLPorts:     rp.sslPorts,
			Rarity:       rp.rarity,
			TCPWrappedMS: rp.tcpWrapped,
			TotalWaitMS:  rp.totalWait,
		}
		for _, rr := range rp.rules {
			idx := sort.SearchStrings(names, rr.serviceName)
			probes[i].Rules = append(probes[i].Rules, ServiceProbeMatchRule{
				IsSoftMatch:      rr.isSoft,
				ServiceNameIndex: uint16(idx),
				Pattern:          rr.pattern,
				VersionInfo:      rr.versionInfo,
			})
		}
	}

	return probes, names, exclude, stats, nil
}

func collectServiceNames(probes []rawProbe) []string {
	set := map[string]struct{}{}
	for _, p := range probes {
		for _, r := range p.rules {
			set[r.serviceName] = struct{}{}
		}
	}
	names := make([]string, 0, len(set))
	for n := range set {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// parseProbeLine parses "Probe TCP GetRequest q|GET / HTTP/1.0\r\n\r\n|".
func parseProbeLine(line string) (rawProbe, error) {
	line = strings.TrimPrefix(line, "Probe ")
	parts := strings.SplitN(line, " ", 3)
	if len(parts) < 3 {
		return rawProbe{}, fmt.Errorf("invalid Probe line")
	}

	protocol, ok := parseProtocolToken(parts[0])
	if !ok {
		return rawProbe{}, fmt.Errorf("unknown probe protocol %q", parts[0])
	}

	data, err := parseProbeData(parts[2])
	if err != nil {
		return rawProbe{}, fmt.Errorf("cannot parse probe data: %w", err)
	}

	return rawProbe{
		probeName:   parts[1],
		probeString: data,
		protocol:    protocol,
	}, nil
}

// parseProbeData turns "q|...|" (with optional trailing attributes after
// the closing delimiter, e.g. "q|..| no-payload") into raw bytes.
func parseProbeData(s string) ([]byte, error) {
	if len(s) < 3 || s[0] != 'q' || s[1] != '|' {
		return nil, fmt.Errorf("probe data must be in format q|...|")
	}

	closeIdx := strings.LastIndex(s[2:], "|")
	if closeIdx == -1 {
		return nil, fmt.Errorf("probe data missing closing delimiter")
	}
	closeIdx += 2

	content := s[2:closeIdx]
	content = normalizeEscapeSequences(content)
	content = escapeInternalQuotes(content)

	unquoted, err := strconv.Unquote(`"` + content + `"`)
	if err != nil {
		return nil, fmt.Errorf("cannot unquote probe data: %w", err)
	}
	return []byte(unquoted), nil
}

// escapeInternalQuotes escapes any double quote not already escaped, so the
// content can be safely wrapped for strconv.Unquote.
func escapeInternalQuotes(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 8)
	for i := 0; i < len(s); i++ {
		if s[i] == '"' && (i == 0 || s[i-1] != '\\') {
			b.WriteString(`\"`)
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

// normalizeEscapeSequences rewrites "\0" (nmap's bare null-byte escape) to
// "\x00" when it is not actually the start of a longer octal sequence, and
// lowercases hex-escape digits — both needed for strconv.Unquote to accept
// the result as a valid Go string literal.
func normalizeEscapeSequences(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 8)
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			next := s[i+1]

			if next == '0' {
				if i+2 >= len(s) {
					b.WriteString(`\x00`)
					i++
					continue
				}
				third := s[i+2]
				if isOctalDigit(third) {
					if i+3 < len(s) && isOctalDigit(s[i+3]) {
						// Three-digit octal escape \0XX: leave untouched,
						// the loop picks up the remaining digits plainly.
						b.WriteByte(s[i])
						continue
					}
					b.WriteString(`\x00`)
					i++
					continue
				}
				b.WriteString(`\x00`)
				i++
				continue
			}

			if next == 'x' && i+3 < len(s) {
				b.WriteString(`\x`)
				b.WriteByte(toLowerHexDigit(s[i+2]))
				b.WriteByte(toLowerHexDigit(s[i+3]))
				i += 3
				continue
			}
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

func isOctalDigit(c byte) bool { return c >= '0' && c <= '7' }

func toLowerHexDigit(c byte) byte {
	if c >= 'A' && c <= 'F' {
		return c + ('a' - 'A')
	}
	return c
}

// parseMatchLine parses "match service m|pattern|flags versioninfo..." or
// the softmatch equivalent. The pattern is kept in raw dialect form; it is
// not compiled here (see pattern.go's IsMatch).
func parseMatchLine(line string) (rawRule, error) {
	isSoft := strings.HasPrefix(line, "softmatch ")
	if isSoft {
		line = strings.TrimPrefix(line, "softmatch ")
	} else {
		line = strings.TrimPrefix(line, "match ")
	}

	parts := strings.SplitN(line, " ", 2)
	if len(parts) < 2 {
		return rawRule{}, fmt.Errorf("invalid match line")
	}
	serviceName := parts[0]
	rest := parts[1]

	if len(rest) < 2 || rest[0] != 'm' {
		return rawRule{}, fmt.Errorf("match pattern missing leading 'm'")
	}
	delim := rest[1]
	tail := rest[2:]
	closeIdx := strings.IndexByte(tail, delim)
	if closeIdx == -1 {
		return rawRule{}, fmt.Errorf("match pattern missing closing delimiter %q", delim)
	}

	pattern := []byte("m" + string(delim) + tail[:closeIdx] + string(delim) + flagsOnly(tail[closeIdx+1:]))
	versionInfo := versionTokens(tail[closeIdx+1:])

	return rawRule{
		isSoft:      isSoft,
		serviceName: serviceName,
		pattern:     pattern,
		versionInfo: versionInfo,
	}, nil
}

// flagsOnly returns the flag letters from the text following the pattern's
// closing delimiter: everything up to the first space (where versioninfo
// fields begin). Letters are not filtered here; compilePattern acts on
// i, s and m and ignores the rest.
func flagsOnly(s string) string {
	end := strings.IndexByte(s, ' ')
	if end == -1 {
		end = len(s)
	}
	return s[:end]
}

// versionTokens splits the space-separated p//, v//, i//, h//, o//, d//
// fields that can trail a match line into raw byte tokens. Their contents
// are never interpreted further — extracting version/CPE information from
// them is explicitly out of scope.
func versionTokens(s string) [][]byte {
	end := strings.IndexByte(s, ' ')
	if end == -1 {
		return nil
	}
	fields := strings.Fields(s[end+1:])
	tokens := make([][]byte, 0, len(fields))
	for _, f := range fields {
		tokens = append(tokens, []byte(f))
	}
	return tokens
}

func parseExcludeLine(s string) PortSpecification {
	var spec PortSpecification
	for _, tok := range splitAndTrim(s, ',') {
		switch {
		case strings.HasPrefix(tok, "T:"):
			spec.TCP = append(spec.TCP, parsePortList(tok[2:])...)
		case strings.HasPrefix(tok, "U:"):
			spec.UDP = append(spec.UDP, parsePortList(tok[2:])...)
		default:
			spec.Both = append(spec.Both, parsePortList(tok)...)
		}
	}
	return spec
}
