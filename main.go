// Package main is the entry point for the forgemut CLI.
package main

import "forgemut.dev/pkg/forgemut/cmd"

func main() {
	cmd.Execute()
}
