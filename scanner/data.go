package scanner

import (
	_ "embed"
	"log/slog"
	"strings"
)

//go:embed probedata/nmap-service-probes
var embeddedProbeDatabase string

var (
	serviceNames       []string
	defaultProbeCache  *ProbeCache
	staticExclude      PortSpecification
	openFrequencyTable []ServiceOpenFrequency
)

// init loads the embedded probe database once at process start. A
// malformed embedded database is a build-time defect, not a runtime
// condition callers can recover from, so init logs and continues with
// whatever probes parsed successfully rather than panicking — Detect on an
// empty ProbeCache simply never finds a match.
func init() {
	probes, names, exclude, stats, err := LoadProbes(strings.NewReader(embeddedProbeDatabase))
	if err != nil {
		slog.Default().Error("scanner: failed to load embedded probe database", "error", err)
	}
	if len(stats.ErrorLines) > 0 {
		slog.Default().Warn("scanner: probe database had malformed lines", "count", len(stats.ErrorLines))
	}

	serviceNames = names
	staticExclude = exclude
	defaultProbeCache = NewProbeCache(probes)
	openFrequencyTable = buildOpenFrequencyTable()
}

// DefaultProbeCache returns the probe database compiled into the binary.
func DefaultProbeCache() *ProbeCache { return defaultProbeCache }

// openFrequencyRow is one SERVICE_OPEN_FREQUENCY_DB entry: a concrete
// (service name, protocol, port) triple and its relative open-frequency.
// The table is deliberately sparse — it is SERVICE_OPEN_FREQUENCY_DB's own
// shape, a list of rows to filter by exact port, not a row per known name.
type openFrequencyRow struct {
	name     string
	protocol Protocol
	port     uint16
	freq     float64
}

// buildOpenFrequencyTable hand-authors SERVICE_OPEN_FREQUENCY_DB for the
// ports the embedded probe database actually declares rules for, so
// component C's per-port filter (spec.md §4.C step 1) has real data to
// filter against instead of a name-keyed stand-in with no port dimension.
//
// These figures approximate nmap-services' documented open-frequency
// column for the corresponding ports; they are illustrative, not derived
// from a live Internet-wide scan.
func buildOpenFrequencyTable() []ServiceOpenFrequency {
	rows := []openFrequencyRow{
		{"ftp", ProtocolTCP, 21, 0.197},
		{"ssh", ProtocolTCP, 22, 0.161},
		{"telnet", ProtocolTCP, 23, 0.221},
		{"smtp", ProtocolTCP, 25, 0.131},
		{"domain", ProtocolTCP, 53, 0.081},
		{"domain", ProtocolUDP, 53, 0.081},
		{"http", ProtocolTCP, 80, 0.484},
		{"rpcbind", ProtocolTCP, 111, 0.053},
		{"pop3", ProtocolTCP, 110, 0.023},
		{"netbios-ns", ProtocolUDP, 137, 0.069},
		{"ntp", ProtocolUDP, 123, 0.043},
		{"imap", ProtocolTCP, 143, 0.018},
		{"ssl", ProtocolTCP, 443, 0.156},
		{"ssl", ProtocolTCP, 465, 0.020},
		{"ssl", ProtocolTCP, 993, 0.012},
		{"ssl", ProtocolTCP, 995, 0.011},
		{"x11", ProtocolTCP, 6000, 0.005},
		{"mysql", ProtocolTCP, 3306, 0.035},
		{"http", ProtocolTCP, 8000, 0.040},
		{"http", ProtocolTCP, 8080, 0.090},
		{"http", ProtocolTCP, 8443, 0.030},
	}

	table := make([]ServiceOpenFrequency, 0, len(rows))
	for _, r := range rows {
		idx, ok := ResolveServiceName(r.name)
		if !ok {
			// A curated row naming a service the embedded database never
			// declares a rule for would be dead weight; skip rather than
			// fabricate an index.
			continue
		}
		table = append(table, ServiceOpenFrequency{
			Service:       Service{NameIndex: idx, Protocol: r.protocol, Port: r.port},
			OpenFrequency: r.freq,
		})
	}
	validateOpenFrequencyTable(table)
	return table
}

// validateOpenFrequencyTable enforces the invariant spec.md assigns to
// ServiceOpenFrequency at load time rather than on every comparison: every
// frequency must be finite and non-negative. A violation here means the
// hand-authored table above was edited incorrectly; it is a programmer
// error, so it panics rather than silently degrading ranking quality.
func validateOpenFrequencyTable(table []ServiceOpenFrequency) {
	for _, f := range table {
		if f.OpenFrequency < 0 || !isFinite(f.OpenFrequency) {
			panic("scanner: invalid open frequency in static table")
		}
	}
}

func isFinite(f float64) bool {
	return f == f && f < maxFloat && f > -maxFloat
}

const maxFloat = 1.7976931348623157e+308

// ServiceProbeExclude returns the Exclude port specification discovered in
// the embedded probe database, merged with any operator-supplied override
// loaded via LoadExcludeOverride.
func ServiceProbeExclude() PortSpecification {
	return mergeExclude(staticExclude, overrideExclude)
}

func mergeExclude(a, b PortSpecification) PortSpecification {
	return PortSpecification{
		Both: append(append([]Port{}, a.Both...), b.Both...),
		TCP:  append(append([]Port{}, a.TCP...), b.TCP...),
		UDP:  append(append([]Port{}, a.UDP...), b.UDP...),
	}
}

// OpenFrequencyTable returns the static service open-frequency table the
// probe selector ranks probes by.
func OpenFrequencyTable() []ServiceOpenFrequency { return openFrequencyTable }
