package main

import "apex-sim/internal/cli"

func main() {
	cli.Execute()
}
