package scanner

import (
	"sort"
	"strings"
	"testing"

	"github.com/kr/pretty"
)

const sampleDB = `
Exclude 53,T:9100

##############################NEXT PROBE##############################
Probe TCP NULL q||
rarity 1
ports 21,80
match ftp m/^220.*FTP/i
softmatch telnet m/^\xff/s

##############################NEXT PROBE##############################
Probe TCP GetRequest q|GET / HTTP/1.0\r\n\r\n|
rarity 3
ports 80
fallback NULL
match http m|^HTTP/1\.[01] \d\d\d| p/HTTP server/
`

func TestLoadProbesParsesStanzas(t *testing.T) {
	probes, names, exclude, stats, err := LoadProbes(strings.NewReader(sampleDB))
	if err != nil {
		t.Fatalf("LoadProbes returned error: %v", err)
	}
	if len(stats.ErrorLines) != 0 {
		t.Fatalf("unexpected parse errors: %v", stats.ErrorLines)
	}
	if len(probes) != 2 {
		t.Fatalf("got %d probes, want 2", len(probes))
	}
	if probes[0].ProbeName != "NULL" || probes[1].ProbeName != "GetRequest" {
		t.Fatalf("unexpected probe names: %q, %q", probes[0].ProbeName, probes[1].ProbeName)
	}
	if probes[1].Fallback == nil || *probes[1].Fallback != "NULL" {
		t.Fatalf("expected GetRequest to fall back to NULL")
	}
	if len(probes[0].Rules) != 2 {
		t.Fatalf("got %d rules on NULL probe, want 2", len(probes[0].Rules))
	}
	if !probes[0].Rules[1].IsSoftMatch {
		t.Error("telnet rule should be a softmatch")
	}

	foundFTP, foundHTTP := false, false
	for _, n := range names {
		if n == "ftp" {
			foundFTP = true
		}
		if n == "http" {
			foundHTTP = true
		}
	}
	if !foundFTP || !foundHTTP {
		t.Errorf("service name table missing expected names: %v", names)
	}

	if !exclude.Matches(ProtocolTCP, 53) || !exclude.Matches(ProtocolUDP, 53) {
		t.Error("expected bare Exclude token to cover both protocols")
	}
	if !exclude.Matches(ProtocolTCP, 9100) {
		t.Error("expected T: scoped Exclude token to cover TCP")
	}
}

func TestLoadProbesUnknownLineIsRecordedNotFatal(t *testing.T) {
	db := "Probe TCP NULL q||\nbogus directive here\nmatch ftp m/220/\n"
	probes, _, _, stats, err := LoadProbes(strings.NewReader(db))
	if err != nil {
		t.Fatalf("LoadProbes returned error: %v", err)
	}
	if len(probes) != 1 {
		t.Fatalf("got %d probes, want 1", len(probes))
	}
	if len(stats.ErrorLines) != 1 {
		t.Fatalf("got %d error lines, want 1", len(stats.ErrorLines))
	}
}

func TestParseProbeDataEscapes(t *testing.T) {
	data, err := parseProbeData(`q|GET / HTTP/1.0\r\n\r\n|`)
	if err != nil {
		t.Fatalf("parseProbeData error: %v", err)
	}
	want := "GET / HTTP/1.0\r\n\r\n"
	if string(data) != want {
		t.Fatalf("got %q, want %q", data, want)
	}
}

func TestParseProbeDataNullEscape(t *testing.T) {
	data, err := parseProbeData(`q|\0\0\0|`)
	if err != nil {
		t.Fatalf("parseProbeData error: %v", err)
	}
	want := "\x00\x00\x00"
	if string(data) != want {
		t.Fatalf("got %q, want %q", data, want)
	}
}

func TestParseProbeDataMissingDelimiters(t *testing.T) {
	if _, err := parseProbeData("nope"); err == nil {
		t.Fatal("expected error for missing q| prefix")
	}
	if _, err := parseProbeData("q|unterminated"); err == nil {
		t.Fatal("expected error for missing closing delimiter")
	}
}

func TestServiceNameTableSortedAndUnique(t *testing.T) {
	_, names, _, _, err := LoadProbes(strings.NewReader(sampleDB))
	if err != nil {
		t.Fatalf("LoadProbes returned error: %v", err)
	}
	if !sort.StringsAreSorted(names) {
		t.Fatalf("service name table not sorted: %v", names)
	}
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		if seen[n] {
			t.Fatalf("duplicate service name %q in table", n)
		}
		seen[n] = true
	}
}

func TestLoadProbesFieldsMatchExpectedStructs(t *testing.T) {
	probes, names, _, _, err := LoadProbes(strings.NewReader(sampleDB))
	if err != nil {
		t.Fatalf("LoadProbes returned error: %v", err)
	}

	ftpIdx, ok := resolveIndex(names, "ftp")
	if !ok {
		t.Fatal("expected ftp in service name table")
	}
	telnetIdx, ok := resolveIndex(names, "telnet")
	if !ok {
		t.Fatal("expected telnet in service name table")
	}
	httpIdx, ok := resolveIndex(names, "http")
	if !ok {
		t.Fatal("expected http in service name table")
	}

	getFallback := "NULL"
	rarityOne := uint8(1)
	rarityThree := uint8(3)

	cases := []struct {
		name string
		got  ServiceProbe
		want ServiceProbe
	}{
		{
			name: "NULL",
			got:  probes[0],
			want: ServiceProbe{
				ProbeName:   "NULL",
				ProbeString: []byte{},
				Protocol:    ProtocolTCP,
				Ports:       []Port{PortNumber(21), PortNumber(80)},
				Rarity:      &rarityOne,
				Rules: []ServiceProbeMatchRule{
					{ServiceNameIndex: ftpIdx, Pattern: []byte("m/^220.*FTP/i")},
					{IsSoftMatch: true, ServiceNameIndex: telnetIdx, Pattern: []byte(`m/^\xff/s`)},
				},
			},
		},
		{
			name: "GetRequest",
			got:  probes[1],
			want: ServiceProbe{
				ProbeName:   "GetRequest",
				ProbeString: []byte("GET / HTTP/1.0\r\n\r\n"),
				Protocol:    ProtocolTCP,
				Fallback:    &getFallback,
				Ports:       []Port{PortNumber(80)},
				Rarity:      &rarityThree,
				Rules: []ServiceProbeMatchRule{
					{ServiceNameIndex: httpIdx, Pattern: []byte(`m|^HTTP/1\.[01] \d\d\d|`), VersionInfo: [][]byte{[]byte("p/HTTP"), []byte("server/")}},
				},
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if diff := pretty.Diff(tc.want, tc.got); len(diff) > 0 {
				t.Errorf("parsed %s probe does not match expected fields:\n%s", tc.name, strings.Join(diff, "\n"))
			}
		})
	}
}

func resolveIndex(names []string, name string) (uint16, bool) {
	for i, n := range names {
		if n == name {
			return uint16(i), true
		}
	}
	return 0, false
}

func TestProbeCacheFallback(t *testing.T) {
	probes, _, _, _, err := LoadProbes(strings.NewReader(sampleDB))
	if err != nil {
		t.Fatalf("LoadProbes returned error: %v", err)
	}
	cache := NewProbeCache(probes)

	get, ok := cache.ByName("GetRequest")
	if !ok {
		t.Fatal("expected GetRequest probe to be present")
	}
	fb, ok := cache.FallbackProbe(get)
	if !ok || fb.ProbeName != "NULL" {
		t.Fatalf("expected fallback to NULL, got %+v, ok=%v", fb, ok)
	}

	null, _ := cache.ByName("NULL")
	if _, ok := cache.FallbackProbe(null); ok {
		t.Fatal("NULL probe has no fallback and should report ok=false")
	}
}
