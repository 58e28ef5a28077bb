// Package main provides the dw CLI.
package main

import "github.com/mesh-intelligence/dw/internal/cli"

func main() {
	cli.Execute()
}
