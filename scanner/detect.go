package scanner

import (
	"context"
	"net"
	"strconv"
)

// Detect is the public façade: given a host:port address and a transport
// protocol, it runs the probe-selection, execution, and rule-evaluation
// pipeline (components C, D, E) and returns the identified service, if
// any. It never scans a range of ports and never discovers which ports are
// open — addr must already name a single endpoint the caller wants
// fingerprinted.
//
// protocol must be ProtocolTCP or ProtocolUDP; ProtocolSCTP is a
// precondition violation and panics, matching the source's treatment of an
// unsupported protocol as a programmer error rather than a runtime
// condition.
func Detect(ctx context.Context, addr string, protocol Protocol) (*Service, bool) {
	if protocol == ProtocolSCTP {
		panic("scanner: Detect does not support SCTP")
	}

	_, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return nil, false
	}
	portNum, err := strconv.ParseUint(portStr, 10, 16)
	if err != nil {
		return nil, false
	}
	port := uint16(portNum)

	if IsExcluded(protocol, port) {
		return nil, false
	}

	if cached, ok := cacheLookup(addr, protocol); ok {
		if !cached.found {
			return nil, false
		}
		return cached.service, true
	}

	cache := DefaultProbeCache()
	probes := SelectProbes(cache, protocol, port)

	var (
		idx     uint16
		banner  string
		matched bool
	)
	if protocol == ProtocolUDP {
		idx, banner, matched = DetectUDP(ctx, addr, cache, probes)
	} else {
		idx, banner, matched = DetectTCP(ctx, addr, cache, probes)
	}

	if !matched {
		cacheStore(addr, protocol, detectionResult{found: false})
		return nil, false
	}

	svc := &Service{NameIndex: idx, Protocol: protocol, Port: port}
	cacheStore(addr, protocol, detectionResult{service: svc, banner: banner, found: true})
	return svc, true
}
