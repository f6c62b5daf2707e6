package scanner

import "sort"

// topProbeCount is the number of frequency-ranked probes the selector hands
// the executor before it falls back to trying every remaining probe in
// declaration order.
const topProbeCount = 6

// SelectProbes returns the probes to try against port on protocol: first
// the up-to-topProbeCount probes most likely to be listening there (the
// literal SERVICE_OPEN_FREQUENCY_DB algorithm below), then every other
// probe for this protocol in the database's declaration order. Probes
// excluded for this (protocol, port) by the exclusion policy never appear
// in either list.
func SelectProbes(cache *ProbeCache, protocol Protocol, port uint16) []ServiceProbe {
	if IsExcluded(protocol, port) {
		return nil
	}

	candidates := cache.ProbesFor(protocol)
	hot := topFrequencyProbes(candidates, protocol, port)

	ordered := make([]ServiceProbe, 0, len(candidates))
	seen := make(map[string]bool, len(candidates))
	for _, p := range hot {
		ordered = append(ordered, p)
		seen[p.ProbeName] = true
	}

	// Exhaustive fallback: every remaining probe for this protocol, in the
	// order the database declares them. Unfiltered — a probe's declared
	// Ports field is not part of the selection algorithm.
	for _, p := range candidates {
		if seen[p.ProbeName] {
			continue
		}
		ordered = append(ordered, p)
		seen[p.ProbeName] = true
	}

	return ordered
}

// topFrequencyProbes implements SERVICE_OPEN_FREQUENCY_DB filtering exactly:
// rows whose service.port matches the target port, sorted by open_frequency
// descending (ties keep first-appearance order), top six taken, each mapped
// to the first declared probe whose protocol matches and which carries a
// rule for that exact service name.
func topFrequencyProbes(candidates []ServiceProbe, protocol Protocol, port uint16) []ServiceProbe {
	type row struct {
		service ServiceOpenFrequency
	}

	var rows []row
	for _, f := range OpenFrequencyTable() {
		if f.Service.Port != port {
			continue
		}
		if !f.Service.Protocol.IsTCP() && !f.Service.Protocol.IsUDP() {
			continue
		}
		rows = append(rows, row{service: f})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].service.OpenFrequency > rows[j].service.OpenFrequency
	})

	if len(rows) > topProbeCount {
		rows = rows[:topProbeCount]
	}

	var hot []ServiceProbe
	seen := make(map[string]bool, len(rows))
	for _, r := range rows {
		if r.service.Service.Protocol != protocol {
			continue
		}
		probe, ok := firstProbeForService(candidates, protocol, r.service.Service.NameIndex)
		if !ok || seen[probe.ProbeName] {
			continue
		}
		hot = append(hot, probe)
		seen[probe.ProbeName] = true
	}
	return hot
}

// firstProbeForService is spec step 4's "first ServiceProbe in SERVICE_PROBES
// that (a) has matching protocol, and (b) contains a rule whose
// service_name_index == service.name_index".
func firstProbeForService(candidates []ServiceProbe, protocol Protocol, nameIndex uint16) (ServiceProbe, bool) {
	for _, p := range candidates {
		if p.Protocol != protocol {
			continue
		}
		for _, rule := range p.Rules {
			if rule.ServiceNameIndex == nameIndex {
				return p, true
			}
		}
	}
	return ServiceProbe{}, false
}
