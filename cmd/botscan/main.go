// Package main provides the entry point for the botscan CLI.
//
// botscan crawls a social graph from trusted seed accounts, scores each
// discovered account against behavioral bot heuristics, and persists
// results in SQLite so interrupted runs can resume without wasting API
// calls.
//
// Usage:
//
//	botscan collect --target 300
//	botscan analyze --all
//	botscan stats
//
// See --help for all available options.
package main

// main is the entry point for botscan.
func main() {
	Execute()
}
