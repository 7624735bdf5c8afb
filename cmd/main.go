// Package main provides the entry point for the vusession CLI.
package main

func main() {
	Execute()
}
