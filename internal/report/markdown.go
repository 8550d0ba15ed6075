package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/nobushige/botscan/internal/model"
)

// MarkdownWriter outputs reports in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter

	// titler capitalizes confidence labels for display.
	titler cases.Caser
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
		titler:     cases.Title(language.English),
	}
}

// Write outputs one account report in Markdown format.
func (w *MarkdownWriter) Write(report *model.AccountReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	w.writeAlert(md, report)
	w.writeSubAnalyses(md, report)
	w.writeClassifier(md, report)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// WriteBatch outputs a ranked table of several reports plus a confidence
// distribution chart.
func (w *MarkdownWriter) WriteBatch(reports []*model.AccountReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Bot Detection Results")
	md.PlainText("")
	md.PlainTextf("Accounts analyzed: %d", len(reports))
	md.PlainText("")

	rows := make([][]string, len(reports))
	for i, r := range reports {
		candidate := "no"
		if r.IsCandidate {
			candidate = "**yes**"
		}
		rows[i] = []string{
			strconv.Itoa(i + 1),
			"`" + r.Handle + "`",
			fmt.Sprintf("%.2f", r.OverallScore),
			w.titler.String(model.Label(r.OverallScore)),
			candidate,
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Rank", "Handle", "Score", "Confidence", "Candidate"},
		Rows:   rows,
	})
	md.PlainText("")

	w.writeDistribution(md, reports)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the account summary table.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.AccountReport) {
	md.H1("Bot Detection Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Account", "`" + report.Handle + "`"},
			{"Analyzed", report.AnalyzedAt.Format("2006-01-02 15:04:05 MST")},
			{"Overall Score", fmt.Sprintf("%.2f", report.OverallScore)},
			{"Confidence Label", w.titler.String(model.Label(report.OverallScore))},
			{"Candidate", strconv.FormatBool(report.IsCandidate)},
			{"Analysis Confidence", fmt.Sprintf("%.2f", report.Confidence)},
		},
	})
	md.PlainText("")
}

// writeAlert writes an appropriate alert based on the overall score.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, report *model.AccountReport) {
	switch {
	case report.OverallScore >= model.HighConfidenceThreshold:
		md.Cautionf("%s", report.Summary)
	case report.OverallScore >= model.ModerateConfidenceThreshold:
		md.Warningf("%s", report.Summary)
	case report.OverallScore >= model.LowConfidenceThreshold:
		md.Importantf("%s", report.Summary)
	default:
		md.Tip(report.Summary)
	}
	md.PlainText("")
}

// writeSubAnalyses writes one section per sub-analysis.
func (w *MarkdownWriter) writeSubAnalyses(md *markdown.Markdown, report *model.AccountReport) {
	sections := []struct {
		title   string
		score   float64
		reasons []string
	}{
		{"Follow Graph", report.Follow.Score, report.Follow.Reasons},
		{"Posting Pattern", report.Pattern.Score, report.Pattern.Reasons},
		{"Text Content", report.Text.Score, report.Text.Reasons},
	}

	md.H2("Sub-Analyses")
	md.PlainText("")

	for _, s := range sections {
		md.H3(fmt.Sprintf("%s (%.2f)", s.title, s.score))
		md.PlainText("")
		if len(s.reasons) == 0 {
			md.PlainText("No indicators.")
		} else {
			md.BulletList(s.reasons...)
		}
		md.PlainText("")
	}

	if report.Pattern.PostsPerDay > 0 {
		md.PlainTextf("Posting rate: %.1f posts/day", report.Pattern.PostsPerDay)
		md.PlainText("")
	}
}

// writeClassifier writes the language-model verdict section if present.
func (w *MarkdownWriter) writeClassifier(md *markdown.Markdown, report *model.AccountReport) {
	if report.LLM == nil {
		return
	}

	md.H2("Classifier Verdict")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Verdict", "Confidence", "Model"},
		Rows: [][]string{
			{report.LLM.Verdict, fmt.Sprintf("%.2f", report.LLM.Confidence), report.LLM.Model},
		},
	})
	if report.LLM.Reasoning != "" {
		md.Details("Reasoning", report.LLM.Reasoning)
	}
	md.PlainText("")
}

// writeDistribution writes a mermaid pie chart of confidence labels.
func (w *MarkdownWriter) writeDistribution(md *markdown.Markdown, reports []*model.AccountReport) {
	if len(reports) == 0 {
		return
	}

	counts := make(map[string]int)
	for _, r := range reports {
		counts[model.Label(r.OverallScore)]++
	}

	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Confidence Distribution"),
		piechart.WithShowData(true),
	)
	for _, label := range []string{"high", "moderate", "low", "very low"} {
		if n := counts[label]; n > 0 {
			chart.LabelAndIntValue(w.titler.String(label), uint64(n))
		}
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [botscan](https://github.com/nobushige/botscan)*")
}
