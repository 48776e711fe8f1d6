// Package main is the entry point for the sqllab binary. It serves the HTTP
// API, runs async query workers, and applies metastore migrations.
package main

import "os"

func main() {
	os.Exit(execute())
}
