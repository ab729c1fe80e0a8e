package main

import "github.com/btcplan/retirement-planner/internal/cli"

func main() {
	cli.Execute()
}
