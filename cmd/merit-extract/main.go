// Package main provides the entry point for the merit-extract CLI.
package main

func main() {
	Execute()
}
