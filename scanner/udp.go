package scanner

import (
	"context"
	"errors"
	"log/slog"
	"syscall"
)

// DetectUDP mirrors DetectTCP's fallback-chain walk, but over UDP. UDP has
// no connection-level distinction between "port is filtered" and "nothing
// is listening" the way TCP's RST vs timeout does — a read or write error
// whose root cause is ECONNREFUSED indicates the one case that is
// definitive (an ICMP port-unreachable bounced back), which is worth
// logging, but it is still dispatched through the exact same fallback path
// as a plain timeout: neither case distinguishes "closed" from "filtered"
// for detection purposes, only port *discovery* would care about that.
func DetectUDP(ctx context.Context, addr string, cache *ProbeCache, probes []ServiceProbe) (uint16, string, bool) {
	visited := make(map[string]bool, len(probes))
	for i := range probes {
		idx, banner, ok := runProbeChain(ctx, "udp", addr, cache, &probes[i], visited)
		if ok {
			return idx, banner, true
		}
		if ctx.Err() != nil {
			break
		}
	}
	return 0, "", false
}

// isConnectionRefused reports whether err indicates the peer's stack
// returned an ICMP port-unreachable message for a UDP socket, which the
// kernel delivers on the connected socket as ECONNREFUSED.
func isConnectionRefused(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, syscall.ECONNREFUSED)
}

// logUDPFailure annotates a failed UDP probe attempt with whether it was a
// definitive ICMP port-unreachable bounce or a silent timeout, purely for
// operator diagnostics — it never changes the fallback decision.
func logUDPFailure(addr, probeName string, err error) {
	if err == nil {
		return
	}
	if isConnectionRefused(err) {
		slog.Default().Debug("scanner: udp probe refused", "addr", addr, "probe", probeName)
		return
	}
	slog.Default().Debug("scanner: udp probe timed out or failed", "addr", addr, "probe", probeName, "error", err)
}
