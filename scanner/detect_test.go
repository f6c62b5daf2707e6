package scanner

import (
	"context"
	"net"
	"sync/atomic"
	"testing"
	"time"
)

// startMockServer listens on an ephemeral TCP port and calls handle for
// every accepted connection, giving each test a throwaway stand-in for a
// real service without touching the network beyond loopback.
func startMockServer(t *testing.T, handle func(net.Conn)) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to start mock listener: %v", err)
	}
	t.Cleanup(func() { ln.Close() })

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go handle(conn)
		}
	}()
	return ln.Addr().String()
}

// E1: the peer answers only after it receives a probe payload. The NULL
// probe sends nothing and times out; GetRequest and HTTPOptions get the FTP
// banner but carry no ftp rule; GenericLines matches it as ftp.
func TestDetectMatchesBannerAfterProbePayload(t *testing.T) {
	addr := startMockServer(t, func(conn net.Conn) {
		defer conn.Close()
		buf := make([]byte, 256)
		_, _ = conn.Read(buf)
		_, _ = conn.Write([]byte("220 mock FTP ready\r\n"))
	})

	svc, ok := Detect(context.Background(), addr, ProtocolTCP)
	if !ok {
		t.Fatal("expected a match")
	}
	if svc.Name() != "ftp" {
		t.Errorf("got service %q, want ftp", svc.Name())
	}
}

// E2: the listener never responds at all — every probe attempt should
// eventually give up rather than hang, and Detect must report no match.
func TestDetectNoResponseYieldsNoMatch(t *testing.T) {
	addr := startMockServer(t, func(conn net.Conn) {
		// Accept and hold the connection open without writing anything.
		time.Sleep(50 * time.Millisecond)
		conn.Close()
	})

	SetTimeouts(200*time.Millisecond, 200*time.Millisecond)
	defer SetTimeouts(3*time.Second, 3*time.Second)

	_, ok := Detect(context.Background(), addr, ProtocolTCP)
	if ok {
		t.Fatal("expected no match against a silent listener")
	}
}

// E3: nothing listens on the port, so every connection is refused — no
// probe can ever get a response, so Detect reports no match without hanging.
func TestDetectConnectionRefused(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to allocate a port: %v", err)
	}
	addr := ln.Addr().String()
	ln.Close() // nothing is listening anymore; connections will be refused

	_, ok := Detect(context.Background(), addr, ProtocolTCP)
	if ok {
		t.Fatal("expected no match against a closed port")
	}
}

// E4: repeated calls against the same live target return the same result
// without a second round of probing, exercising the result cache.
func TestDetectIsCachedWithinTTL(t *testing.T) {
	var attempts int32
	addr := startMockServer(t, func(conn net.Conn) {
		defer conn.Close()
		atomic.AddInt32(&attempts, 1)
		buf := make([]byte, 256)
		_, _ = conn.Read(buf)
		_, _ = conn.Write([]byte("220 mock FTP ready\r\n"))
	})

	first, ok := Detect(context.Background(), addr, ProtocolTCP)
	if !ok {
		t.Fatal("expected a match on first call")
	}
	probed := atomic.LoadInt32(&attempts)
	second, ok := Detect(context.Background(), addr, ProtocolTCP)
	if !ok {
		t.Fatal("expected a cached match on second call")
	}
	if got := atomic.LoadInt32(&attempts); got != probed {
		t.Errorf("second call opened %d new connections, want 0", got-probed)
	}
	if first.Name() != second.Name() {
		t.Errorf("cached result diverged: %q vs %q", first.Name(), second.Name())
	}
}

// E5: a malformed address is rejected without any network I/O.
func TestDetectRejectsMalformedAddress(t *testing.T) {
	_, ok := Detect(context.Background(), "not-a-valid-address", ProtocolTCP)
	if ok {
		t.Fatal("expected no match for a malformed address")
	}
}

// E6: SCTP is a precondition violation, not a runtime outcome.
func TestDetectPanicsOnSCTP(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected Detect to panic for ProtocolSCTP")
		}
	}()
	_, _ = Detect(context.Background(), "127.0.0.1:9999", ProtocolSCTP)
}

func TestDetectHonorsExcludedPort(t *testing.T) {
	// Port 9100 is excluded for TCP by the embedded database.
	_, ok := Detect(context.Background(), "127.0.0.1:9100", ProtocolTCP)
	if ok {
		t.Fatal("expected excluded port to never be probed")
	}
}
