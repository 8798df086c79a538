// Package main is the entry point for svcctl.
package main

import "github.com/sharkusmanch/svcctl/internal/cli"

func main() {
	cli.Execute()
}
