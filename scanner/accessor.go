package scanner

import "sort"

// ServiceName returns the display name for index, or "" if index is out of
// range — callers that need a hard error (e.g. constructing a Service from
// user input) should go through NewService instead.
func ServiceName(index uint16) string {
	if int(index) >= len(serviceNames) {
		return ""
	}
	return serviceNames[index]
}

// ResolveServiceName looks a name up in the sorted service name table via
// binary search, matching the table's construction invariant (sorted,
// deduplicated) from LoadProbes.
func ResolveServiceName(name string) (uint16, bool) {
	i := sort.SearchStrings(serviceNames, name)
	if i < len(serviceNames) && serviceNames[i] == name {
		return uint16(i), true
	}
	return 0, false
}

// ProbeCache holds the parsed probe database, split by protocol and indexed
// by probe name, so the selector and executor never do a linear scan over
// the full list for something they already know the name of.
type ProbeCache struct {
	all    []ServiceProbe
	tcp    []ServiceProbe
	udp    []ServiceProbe
	byName map[string]*ServiceProbe
}

func NewProbeCache(probes []ServiceProbe) *ProbeCache {
	pc := &ProbeCache{
		all:    probes,
		byName: make(map[string]*ServiceProbe, len(probes)),
	}
	for i := range probes {
		p := &probes[i]
		switch p.Protocol {
		case ProtocolTCP:
			pc.tcp = append(pc.tcp, *p)
		case ProtocolUDP:
			pc.udp = append(pc.udp, *p)
		}
		pc.byName[p.ProbeName] = p
	}
	return pc
}

func (pc *ProbeCache) All() []ServiceProbe       { return pc.all }
func (pc *ProbeCache) TCPProbes() []ServiceProbe { return pc.tcp }
func (pc *ProbeCache) UDPProbes() []ServiceProbe { return pc.udp }

func (pc *ProbeCache) ProbesFor(protocol Protocol) []ServiceProbe {
	if protocol == ProtocolUDP {
		return pc.udp
	}
	return pc.tcp
}

func (pc *ProbeCache) ByName(name string) (*ServiceProbe, bool) {
	p, ok := pc.byName[name]
	return p, ok
}

// FallbackProbe resolves probe's Fallback reference by name. A probe
// without a Fallback, or one naming a probe that does not exist in the
// loaded database, has no fallback.
func (pc *ProbeCache) FallbackProbe(probe *ServiceProbe) (*ServiceProbe, bool) {
	if probe.Fallback == nil {
		return nil, false
	}
	return pc.ByName(*probe.Fallback)
}
