package report

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/nobushige/botscan/internal/model"
)

// SimpleWriter outputs human-readable text reports.
// This format is designed for terminal display with clear section
// formatting.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors by default because:
// 1. It works in all terminals without compatibility issues
// 2. It's easier to pipe to files or other tools
// 3. Color can be added as an option later if needed
type SimpleWriter struct {
	baseWriter

	// verbose enables additional detail in the output, such as the
	// classifier reasoning and per-signal confidences.
	verbose bool

	// titler capitalizes confidence labels for display.
	titler cases.Caser
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
		titler:     cases.Title(language.English),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs one account report in human-readable format.
func (w *SimpleWriter) Write(report *model.AccountReport) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, report)
	w.writeSubAnalyses(&sb, report)
	w.writeClassifier(&sb, report)
	w.writeFooter(&sb, report)

	return w.output.Write([]byte(sb.String()))
}

// WriteBatch outputs a compact ranking of several reports, highest score
// first, followed by the full detail of each candidate.
func (w *SimpleWriter) WriteBatch(reports []*model.AccountReport) (int, error) {
	var sb strings.Builder

	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                      BOT DETECTION RESULTS\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")
	sb.WriteString(fmt.Sprintf("Accounts analyzed: %d\n\n", len(reports)))

	for i, r := range reports {
		marker := " "
		if r.IsCandidate {
			marker = "*"
		}
		sb.WriteString(fmt.Sprintf("%3d. [%s] %-40s %.2f (%s)\n",
			i+1, marker, r.Handle, r.OverallScore, model.Label(r.OverallScore)))
	}
	sb.WriteString("\n")

	total, err := w.output.Write([]byte(sb.String()))
	if err != nil {
		return total, err
	}

	if w.verbose {
		for _, r := range reports {
			if !r.IsCandidate {
				continue
			}
			n, err := w.Write(r)
			total += n
			if err != nil {
				return total, err
			}
		}
	}

	return total, nil
}

// writeHeader writes the account summary section.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, report *model.AccountReport) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                      BOT DETECTION REPORT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("Account:       %s\n", report.Handle))
	sb.WriteString(fmt.Sprintf("Analyzed:      %s\n", report.AnalyzedAt.Format("2006-01-02 15:04:05 MST")))
	sb.WriteString(fmt.Sprintf("Overall Score: %.2f (%s confidence)\n",
		report.OverallScore, w.titler.String(model.Label(report.OverallScore))))
	sb.WriteString(fmt.Sprintf("Candidate:     %v\n", report.IsCandidate))
	sb.WriteString(fmt.Sprintf("Confidence:    %.2f\n", report.Confidence))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("%s\n", report.Summary))
	sb.WriteString("\n")
}

// writeSubAnalyses writes one section per sub-analysis with its reasons.
func (w *SimpleWriter) writeSubAnalyses(sb *strings.Builder, report *model.AccountReport) {
	sections := []struct {
		name       string
		score      float64
		confidence float64
		reasons    []string
	}{
		{"FOLLOW GRAPH", report.Follow.Score, report.Follow.Confidence, report.Follow.Reasons},
		{"POSTING PATTERN", report.Pattern.Score, report.Pattern.Confidence, report.Pattern.Reasons},
		{"TEXT CONTENT", report.Text.Score, report.Text.Confidence, report.Text.Reasons},
	}

	for _, s := range sections {
		sb.WriteString(strings.Repeat("-", 70))
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s (score %.2f)\n", s.name, s.score))
		sb.WriteString(strings.Repeat("-", 70))
		sb.WriteString("\n")

		if len(s.reasons) == 0 {
			sb.WriteString("  No indicators\n")
		} else {
			for _, reason := range s.reasons {
				sb.WriteString(fmt.Sprintf("  * %s\n", reason))
			}
		}
		if w.verbose {
			sb.WriteString(fmt.Sprintf("  (confidence %.2f)\n", s.confidence))
		}
		sb.WriteString("\n")
	}

	if report.Pattern.PostsPerDay > 0 && w.verbose {
		sb.WriteString(fmt.Sprintf("Posts per day: %.1f\n\n", report.Pattern.PostsPerDay))
	}
}

// writeClassifier writes the language-model verdict section if present.
func (w *SimpleWriter) writeClassifier(sb *strings.Builder, report *model.AccountReport) {
	if report.LLM == nil {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("CLASSIFIER VERDICT\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("  Verdict:    %s\n", report.LLM.Verdict))
	sb.WriteString(fmt.Sprintf("  Confidence: %.2f\n", report.LLM.Confidence))
	if report.LLM.Model != "" {
		sb.WriteString(fmt.Sprintf("  Model:      %s\n", report.LLM.Model))
	}
	if w.verbose && report.LLM.Reasoning != "" {
		sb.WriteString(fmt.Sprintf("  Reasoning:  %s\n", report.LLM.Reasoning))
	}
	sb.WriteString("\n")
}

// writeFooter writes the recommendation footer.
func (w *SimpleWriter) writeFooter(sb *strings.Builder, report *model.AccountReport) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("Recommendation: %s\n", report.Recommendation))
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}
