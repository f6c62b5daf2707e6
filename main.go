package main

import "github.com/corvidscan/svcprobe/cli"

func main() {
	cli.Run()
}
