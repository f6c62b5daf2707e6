package scanner

import (
	"os"

	"gopkg.in/yaml.v2"
)

// overrideExclude holds operator-supplied additions to the database's
// Exclude directive, loaded via LoadExcludeOverride. It starts empty, so a
// deployment that never calls LoadExcludeOverride behaves exactly as if
// only the embedded database's Exclude line applied.
var overrideExclude PortSpecification

// excludeOverrideFile is the on-disk shape of an operator override: plain
// port lists per scope, parsed the same way the Exclude directive's
// comma-separated tokens are.
type excludeOverrideFile struct {
	Both []string `yaml:"both"`
	TCP  []string `yaml:"tcp"`
	UDP  []string `yaml:"udp"`
}

// LoadExcludeOverride reads a YAML file of additional ports/ranges to
// exclude from probing, on top of the database's own Exclude directive.
// This resolves spec.md's open question on SERVICE_PROBE_EXCLUDE in favor
// of making it operator-extensible rather than fixed at build time.
//
// Example file:
//
//	both: ["22"]
//	tcp: ["8080-8090"]
//	udp: ["161"]
func LoadExcludeOverride(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return ErrConfigLoad(err)
	}

	var f excludeOverrideFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return ErrConfigLoad(err)
	}

	overrideExclude = PortSpecification{
		Both: parseTokenList(f.Both),
		TCP:  parseTokenList(f.TCP),
		UDP:  parseTokenList(f.UDP),
	}
	return nil
}

func parseTokenList(tokens []string) []Port {
	var ports []Port
	for _, t := range tokens {
		ports = append(ports, parsePortList(t)...)
	}
	return ports
}

// IsExcluded reports whether port is covered by the merged Exclude policy
// (embedded database plus any operator override) for protocol.
func IsExcluded(protocol Protocol, port uint16) bool {
	return ServiceProbeExclude().Matches(protocol, port)
}
