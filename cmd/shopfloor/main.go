package main

import "github.com/andrescamacho/shopfloor-go/internal/adapters/cli"

func main() {
	cli.Execute()
}
