package scanner

// Port is either a single port number or an inclusive range, matching the
// comma-separated port lists nmap-service-probes writes for ports/sslports/
// Exclude directives (e.g. "53,U:30000-40000").
type Port struct {
	Number  uint16
	RangeLo uint16
	RangeHi uint16
	isRange bool
}

func PortNumber(n uint16) Port { return Port{Number: n} }

func PortRange(lo, hi uint16) Port {
	if hi < lo {
		lo, hi = hi, lo
	}
	return Port{RangeLo: lo, RangeHi: hi, isRange: true}
}

func (p Port) Contains(port uint16) bool {
	if p.isRange {
		return port >= p.RangeLo && port <= p.RangeHi
	}
	return port == p.Number
}

// PortSpecification is the parsed form of an Exclude directive: ports
// listed bare apply to both protocols, others are scoped to TCP or UDP.
type PortSpecification struct {
	Both []Port
	TCP  []Port
	UDP  []Port
}

// Matches reports whether port is covered by spec for the given protocol.
func (spec PortSpecification) Matches(protocol Protocol, port uint16) bool {
	for _, p := range spec.Both {
		if p.Contains(port) {
			return true
		}
	}
	var scoped []Port
	switch protocol {
	case ProtocolTCP:
		scoped = spec.TCP
	case ProtocolUDP:
		scoped = spec.UDP
	}
	for _, p := range scoped {
		if p.Contains(port) {
			return true
		}
	}
	return false
}

// parsePortList parses a comma-separated port token list such as
// "9100,30000-40000" into individual Port values. Malformed tokens are
// skipped rather than failing the whole list — this function only ever
// feeds exclusion/hint data, never a decision that must be correct to be
// safe.
func parsePortList(s string) []Port {
	var ports []Port
	for _, tok := range splitAndTrim(s, ',') {
		if tok == "" {
			continue
		}
		if lo, hi, ok := splitRange(tok); ok {
			ports = append(ports, PortRange(lo, hi))
			continue
		}
		if n, ok := parseUint16(tok); ok {
			ports = append(ports, PortNumber(n))
		}
	}
	return ports
}
