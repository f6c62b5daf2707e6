package scanner

import "testing"

func TestSelectProbesOrdersByFrequencyThenFallsBackExhaustively(t *testing.T) {
	cache := DefaultProbeCache()
	probes := SelectProbes(cache, ProtocolTCP, 80)
	if len(probes) == 0 {
		t.Fatal("expected at least one applicable probe for port 80")
	}

	// GetRequest is the first declared TCP probe carrying a rule for
	// http, the service SERVICE_OPEN_FREQUENCY_DB names for port 80 — it
	// must rank in the hot set, ahead of NULL, which carries no http rule
	// and only reaches the list through the exhaustive fallback tier.
	getIdx, nullIdx := -1, -1
	for i, p := range probes {
		switch p.ProbeName {
		case "GetRequest":
			getIdx = i
		case "NULL":
			nullIdx = i
		}
	}
	if getIdx == -1 {
		t.Fatal("expected GetRequest to be selected for port 80")
	}
	if nullIdx != -1 && getIdx > nullIdx {
		t.Errorf("expected GetRequest (idx %d) to rank at or before NULL (idx %d)", getIdx, nullIdx)
	}
}

func TestSelectProbesHonorsExclude(t *testing.T) {
	cache := DefaultProbeCache()
	// 53 is excluded for both protocols by the embedded database's
	// Exclude directive.
	probes := SelectProbes(cache, ProtocolTCP, 53)
	if probes != nil {
		t.Fatalf("expected no probes for an excluded port, got %d", len(probes))
	}
}

// The exhaustive fallback tier is every remaining probe for the protocol in
// declaration order — a probe's own Ports field plays no part in selection,
// only in the per-port hot-list lookup driven by SERVICE_OPEN_FREQUENCY_DB.
func TestSelectProbesExhaustiveFallbackIsUnfilteredByProbePorts(t *testing.T) {
	cache := DefaultProbeCache()
	probes := SelectProbes(cache, ProtocolTCP, 6001)

	found := false
	for _, p := range probes {
		if p.ProbeName == "GetRequest" {
			found = true
		}
	}
	if !found {
		t.Error("expected GetRequest to still appear in the exhaustive fallback tier for port 6001")
	}
}

func TestTopFrequencyProbesPicksHighestRankedServiceForPort(t *testing.T) {
	cache := DefaultProbeCache()
	hot := topFrequencyProbes(cache.ProbesFor(ProtocolTCP), ProtocolTCP, 80)
	if len(hot) == 0 {
		t.Fatal("expected a hot probe for port 80")
	}
	if hot[0].ProbeName != "GetRequest" {
		t.Errorf("expected GetRequest as the top-ranked probe for port 80, got %s", hot[0].ProbeName)
	}
}

func TestTopFrequencyProbesEmptyForUnknownPort(t *testing.T) {
	cache := DefaultProbeCache()
	hot := topFrequencyProbes(cache.ProbesFor(ProtocolTCP), ProtocolTCP, 54321)
	if len(hot) != 0 {
		t.Errorf("expected no frequency-ranked probes for a port absent from the table, got %d", len(hot))
	}
}
