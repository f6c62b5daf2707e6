package scanner

import "testing"

func TestPortContains(t *testing.T) {
	if !PortNumber(80).Contains(80) {
		t.Error("PortNumber(80) should contain 80")
	}
	if PortNumber(80).Contains(81) {
		t.Error("PortNumber(80) should not contain 81")
	}

	r := PortRange(1000, 2000)
	if !r.Contains(1000) || !r.Contains(2000) || !r.Contains(1500) {
		t.Error("range should contain its bounds and interior")
	}
	if r.Contains(999) || r.Contains(2001) {
		t.Error("range should not contain values outside its bounds")
	}
}

func TestPortRangeNormalizesSwappedBounds(t *testing.T) {
	r := PortRange(2000, 1000)
	if !r.Contains(1500) {
		t.Error("swapped bounds should still normalize into a valid range")
	}
}

func TestPortSpecificationMatches(t *testing.T) {
	spec := PortSpecification{
		Both: []Port{PortNumber(53)},
		TCP:  []Port{PortNumber(9100)},
		UDP:  []Port{PortRange(30000, 40000)},
	}

	cases := []struct {
		protocol Protocol
		port     uint16
		want     bool
	}{
		{ProtocolTCP, 53, true},
		{ProtocolUDP, 53, true},
		{ProtocolTCP, 9100, true},
		{ProtocolUDP, 9100, false},
		{ProtocolUDP, 35000, true},
		{ProtocolTCP, 35000, false},
		{ProtocolTCP, 80, false},
	}
	for _, tc := range cases {
		if got := spec.Matches(tc.protocol, tc.port); got != tc.want {
			t.Errorf("Matches(%v, %d) = %v, want %v", tc.protocol, tc.port, got, tc.want)
		}
	}
}

func TestParsePortList(t *testing.T) {
	ports := parsePortList("21,43,110-113,199")
	if len(ports) != 4 {
		t.Fatalf("got %d ports, want 4", len(ports))
	}
	if !ports[2].Contains(111) {
		t.Error("range token 110-113 should contain 111")
	}
}

func TestParseExcludeLine(t *testing.T) {
	spec := parseExcludeLine("53,T:9100,U:30000-40000")
	if !spec.Matches(ProtocolTCP, 53) || !spec.Matches(ProtocolUDP, 53) {
		t.Error("bare token should apply to both protocols")
	}
	if !spec.Matches(ProtocolTCP, 9100) {
		t.Error("T: token should apply to TCP")
	}
	if spec.Matches(ProtocolUDP, 9100) {
		t.Error("T: token should not apply to UDP")
	}
	if !spec.Matches(ProtocolUDP, 35000) {
		t.Error("U: range token should apply to UDP")
	}
}
