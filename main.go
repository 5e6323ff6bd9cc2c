// Package main is the entry point for the mockshift CLI.
package main

import "mockshift.dev/pkg/mockshift/cmd"

func main() {
	cmd.Execute()
}
