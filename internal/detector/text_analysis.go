package detector

import (
	"fmt"

	"github.com/nobushige/botscan/internal/model"
)

const (
	// lowVocabularyDiversity marks repetitive language: few unique words
	// relative to total output.
	lowVocabularyDiversity = 0.3

	// veryShortMeanWords marks feeds of near-empty posts.
	veryShortMeanWords = 3.0

	// textConfidentMinPosts is the original-post count above which the
	// text sub-score is considered well-grounded.
	textConfidentMinPosts = 5
)

// analyzeText scores an account's original writing: near-identical posts,
// exact duplicates, template reuse, vocabulary poverty, and degenerate
// post length. With no original text the result is neutral (0.5) at low
// confidence.
func analyzeText(posts []model.Post) model.TextResult {
	originals := model.OriginalPosts(posts)
	if len(originals) == 0 {
		return model.TextResult{
			Score:      0.5,
			Confidence: 0.5,
		}
	}

	texts := make([]string, len(originals))
	for i, p := range originals {
		texts[i] = p.Text
	}

	score := 0.0
	var reasons []string

	if similarity := meanPairwiseSimilarity(texts); similarity > similarityThreshold {
		score += 0.4
		reasons = append(reasons, fmt.Sprintf("High text similarity between posts (%.0f%%)", similarity*100))
	}

	if share := duplicateShare(texts); share > duplicateShareThreshold {
		score += 0.2
		reasons = append(reasons, fmt.Sprintf("Repetitive content: %.0f%% duplicate posts", share*100))
	}

	if meanWordCount(texts) < veryShortMeanWords {
		score += 0.2
		reasons = append(reasons, "Posts are unusually short")
	}

	if followsTemplate(texts) {
		score += 0.3
		reasons = append(reasons, "Posts follow template-like patterns")
	}

	if diversity := vocabularyDiversity(texts); diversity < lowVocabularyDiversity {
		score += 0.2
		reasons = append(reasons, fmt.Sprintf("Low vocabulary diversity (%.2f)", diversity))
	}

	if score > 1.0 {
		score = 1.0
	}

	confidence := 0.5
	if len(originals) >= textConfidentMinPosts {
		confidence = 0.8
	}

	return model.TextResult{
		Score:      score,
		Reasons:    reasons,
		Confidence: confidence,
	}
}
