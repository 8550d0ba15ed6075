// Package config provides configuration structures and utilities for botscan.
// It defines the main configuration options for crawling the social graph,
// scoring accounts, and report generation preferences.
package config
