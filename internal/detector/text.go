package detector

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/crypto/blake2b"

	"github.com/nobushige/botscan/internal/model"
)

const (
	// similarityThreshold is the mean pairwise Jaccard similarity above
	// which a post set is considered repetitive.
	similarityThreshold = 0.8

	// duplicateShareThreshold is the fraction of exact-duplicate posts
	// above which a post set is considered repetitive.
	duplicateShareThreshold = 0.3
)

var wordPattern = regexp.MustCompile(`[a-zA-Z]+`)

// jaccardSimilarity is the word-set overlap of two texts: intersection over
// union of their lowercased word sets.
func jaccardSimilarity(a, b string) float64 {
	wordsA := wordSet(a)
	wordsB := wordSet(b)

	if len(wordsA) == 0 && len(wordsB) == 0 {
		return 1.0
	}
	if len(wordsA) == 0 || len(wordsB) == 0 {
		return 0.0
	}

	intersection := 0
	for w := range wordsA {
		if _, ok := wordsB[w]; ok {
			intersection++
		}
	}
	union := len(wordsA) + len(wordsB) - intersection
	return float64(intersection) / float64(union)
}

func wordSet(text string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range strings.Fields(strings.ToLower(text)) {
		set[w] = struct{}{}
	}
	return set
}

// meanPairwiseSimilarity averages Jaccard similarity over every pair of
// texts. Returns 0 for fewer than two texts.
func meanPairwiseSimilarity(texts []string) float64 {
	if len(texts) < 2 {
		return 0.0
	}

	total := 0.0
	pairs := 0
	for i := range texts {
		for j := i + 1; j < len(texts); j++ {
			total += jaccardSimilarity(texts[i], texts[j])
			pairs++
		}
	}
	return total / float64(pairs)
}

// duplicateShare is the fraction of texts whose content fingerprint has
// already been seen in the set. Fingerprints are BLAKE2b digests of the
// normalized text, so only byte-identical (after trimming and lowercasing)
// posts count as duplicates.
func duplicateShare(texts []string) float64 {
	if len(texts) == 0 {
		return 0.0
	}

	seen := make(map[[blake2b.Size256]byte]struct{}, len(texts))
	duplicates := 0
	for _, text := range texts {
		sum := blake2b.Sum256([]byte(strings.ToLower(strings.TrimSpace(text))))
		if _, ok := seen[sum]; ok {
			duplicates++
			continue
		}
		seen[sum] = struct{}{}
	}
	return float64(duplicates) / float64(len(texts))
}

// vocabularyDiversity is unique words over total words across all texts.
func vocabularyDiversity(texts []string) float64 {
	unique := make(map[string]struct{})
	total := 0
	for _, text := range texts {
		for _, w := range wordPattern.FindAllString(strings.ToLower(text), -1) {
			unique[w] = struct{}{}
			total++
		}
	}
	if total == 0 {
		return 0.0
	}
	return float64(len(unique)) / float64(total)
}

// followsTemplate reports whether the texts share sentence structure once
// every word is masked out. Fewer than three texts never count as
// templated.
func followsTemplate(texts []string) bool {
	if len(texts) < 3 {
		return false
	}

	structures := make(map[string]struct{}, len(texts))
	for _, text := range texts {
		structures[wordPattern.ReplaceAllString(text, "WORD")] = struct{}{}
	}
	return float64(len(structures))/float64(len(texts)) < 0.5
}

// meanWordCount is the average number of words per text.
func meanWordCount(texts []string) float64 {
	if len(texts) == 0 {
		return 0.0
	}
	total := 0
	for _, text := range texts {
		total += len(strings.Fields(text))
	}
	return float64(total) / float64(len(texts))
}

// repetitionSignal is the crawl-phase text extractor. It only fires when
// recent posts were supplied with the profile, flagging feeds dominated by
// exact duplicates or near-identical wording.
type repetitionSignal struct{}

func (repetitionSignal) Name() string { return "text-repetition" }

func (repetitionSignal) Evaluate(in Input) []Contribution {
	originals := model.OriginalPosts(in.Posts)
	if len(originals) < 2 {
		return nil
	}

	texts := make([]string, len(originals))
	for i, p := range originals {
		texts[i] = p.Text
	}

	if share := duplicateShare(texts); share > duplicateShareThreshold {
		return []Contribution{{
			Weight: 0.3,
			Reason: fmt.Sprintf("Repetitive content: %.0f%% duplicate posts", share*100),
		}}
	}
	if similarity := meanPairwiseSimilarity(texts); similarity > similarityThreshold {
		return []Contribution{{
			Weight: 0.3,
			Reason: fmt.Sprintf("High text similarity between posts (%.0f%%)", similarity*100),
		}}
	}
	return nil
}
