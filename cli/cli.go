// Package cli implements the command-line entry point: a one-shot service
// detection against a single host:port, or a long-running API server.
package cli

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/corvidscan/svcprobe/api"
	"github.com/corvidscan/svcprobe/config"
	"github.com/corvidscan/svcprobe/logging"
	"github.com/corvidscan/svcprobe/scanner"
)

// Run is the main entry point for the CLI application.
func Run() {
	serve := flag.Bool("serve", false, "Run the HTTP detection API instead of a one-shot scan")
	jsonOutput := flag.Bool("json", false, "Output the result in JSON format")
	udp := flag.Bool("udp", false, "Probe using UDP instead of TCP")
	timeout := flag.Duration("timeout", 5*time.Second, "Overall detection timeout")
	flag.Parse()

	cfg := config.Load()
	logging.Configure(slog.LevelInfo)
	scanner.SetDialRateLimit(cfg.DialRatePerSecond, cfg.DialBurst)

	if *serve {
		if err := api.Run(cfg); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	args := flag.Args()
	if len(args) != 2 {
		printUsage()
		os.Exit(1)
	}

	host := args[0]
	port, err := strconv.ParseUint(args[1], 10, 16)
	if err != nil {
		fmt.Printf("Error: %v\n", scanner.ErrInvalidPort(args[1], err))
		os.Exit(1)
	}

	protocol := scanner.ProtocolTCP
	if *udp {
		protocol = scanner.ProtocolUDP
	}

	addr := net.JoinHostPort(host, strconv.FormatUint(port, 10))

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	svc, found := scanner.Detect(ctx, addr, protocol)

	if *jsonOutput {
		outputJSON(host, uint16(port), found, svc)
		return
	}
	outputPlainText(host, uint16(port), found, svc)
}

func printUsage() {
	fmt.Println("Usage: svcprobe [--json] [--udp] [--timeout 5s] host port")
	fmt.Println("       svcprobe --serve")
	fmt.Println("Example: svcprobe scanme.nmap.org 80")
	fmt.Println("Example: svcprobe --udp 127.0.0.1 53")
}

type detectionReport struct {
	Host    string `json:"host"`
	Port    uint16 `json:"port"`
	Matched bool   `json:"matched"`
	Service string `json:"service,omitempty"`
}

func outputJSON(host string, port uint16, found bool, svc *scanner.Service) {
	report := detectionReport{Host: host, Port: port, Matched: found}
	if found {
		report.Service = svc.Name()
	}
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		fmt.Printf("Error encoding to JSON: %v\n", err)
		return
	}
	fmt.Println(string(data))
}

func outputPlainText(host string, port uint16, found bool, svc *scanner.Service) {
	if found {
		fmt.Printf("%s:%d - open - %s\n", host, port, svc.Name())
		return
	}
	fmt.Printf("%s:%d - unknown\n", host, port)
}
