// Package model defines the core data structures shared across botscan:
// account profiles, posts, score breakdowns, and per-account analysis reports.
package model
