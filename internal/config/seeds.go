package config

import (
	"errors"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrSeedsNotFound is returned when the seeds file does not exist.
var ErrSeedsNotFound = errors.New("seeds file not found")

// ErrNoSeeds is returned when the seeds file contains no seed accounts.
var ErrNoSeeds = errors.New("seeds file contains no seed accounts")

// SeedCategory groups seed accounts under a named category, e.g. "news"
// or "tech". Categories are purely organizational; the crawl flattens
// them in file order.
type SeedCategory struct {
	// Name identifies the category.
	Name string `yaml:"name"`

	// Seeds lists the seed handles of this category, in crawl order.
	Seeds []string `yaml:"seeds"`
}

// SeedFile represents the structure of the seeds YAML file.
//
// Design decision: Categories are a slice rather than a map so the file
// order is the crawl order. Popular, well-moderated accounts should come
// first because their follower lists surface the most candidates early.
type SeedFile struct {
	// Categories holds the seed categories in file order.
	Categories []SeedCategory `yaml:"categories"`
}

// LoadSeedsFile loads seed accounts from a YAML file.
// If the file does not exist, it returns ErrSeedsNotFound.
func LoadSeedsFile(path string) (*SeedFile, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided seeds path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrSeedsNotFound
		}
		return nil, err
	}

	var sf SeedFile
	if err := yaml.Unmarshal(data, &sf); err != nil {
		return nil, err
	}

	return &sf, nil
}

// Flatten returns all seed handles in file order, duplicates removed.
// It returns ErrNoSeeds when the file defines no seeds at all.
func (sf *SeedFile) Flatten() ([]string, error) {
	seen := make(map[string]bool)
	seeds := make([]string, 0)

	for _, cat := range sf.Categories {
		for _, seed := range cat.Seeds {
			if seed == "" || seen[seed] {
				continue
			}
			seen[seed] = true
			seeds = append(seeds, seed)
		}
	}

	if len(seeds) == 0 {
		return nil, ErrNoSeeds
	}
	return seeds, nil
}
