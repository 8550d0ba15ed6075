package llm

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/jarcoal/httpmock"
)

const testBaseURL = "https://llm.example.com/v1"

func newTestClassifier(t *testing.T) (*OpenAIClassifier, *httpmock.MockTransport) {
	t.Helper()

	transport := httpmock.NewMockTransport()
	c := NewOpenAIClassifier("test-key",
		WithOpenAIBaseURL(testBaseURL),
		WithOpenAIModel("gpt-test"),
		WithOpenAIHTTPClient(&http.Client{Transport: transport}),
	)
	return c, transport
}

func completion(content string) map[string]any {
	return map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"role": "assistant", "content": content}},
		},
	}
}

func TestOpenAIClassifier_Assess(t *testing.T) {
	t.Parallel()

	c, transport := newTestClassifier(t)
	transport.RegisterResponder(http.MethodPost, testBaseURL+"/chat/completions",
		httpmock.NewJsonResponderOrPanic(200, completion(
			`{"verdict": "bot", "confidence": 0.85, "reasoning": "templated promotional posts"}`,
		)))

	result, err := c.Assess(context.Background(), []string{"buy now", "buy now", "buy now"})
	if err != nil {
		t.Fatalf("Assess() error = %v", err)
	}
	if result.Verdict != VerdictBot {
		t.Errorf("Verdict = %q, want bot", result.Verdict)
	}
	if result.Confidence != 0.85 {
		t.Errorf("Confidence = %v, want 0.85", result.Confidence)
	}
	if result.Model != "gpt-test" {
		t.Errorf("Model = %q, want gpt-test", result.Model)
	}
}

func TestOpenAIClassifier_Assess_fencedJSON(t *testing.T) {
	t.Parallel()

	c, transport := newTestClassifier(t)
	transport.RegisterResponder(http.MethodPost, testBaseURL+"/chat/completions",
		httpmock.NewJsonResponderOrPanic(200, completion(
			"Here is my assessment:\n```json\n{\"verdict\": \"human\", \"confidence\": 0.7, \"reasoning\": \"varied informal writing\"}\n```",
		)))

	result, err := c.Assess(context.Background(), []string{"just saw a great movie"})
	if err != nil {
		t.Fatalf("Assess() error = %v", err)
	}
	if result.Verdict != VerdictHuman {
		t.Errorf("Verdict = %q, want human", result.Verdict)
	}
}

func TestOpenAIClassifier_Assess_errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		status  int
		content string
		samples []string
		wantErr error
	}{
		{
			name:    "no samples",
			samples: nil,
			wantErr: ErrNoSamples,
		},
		{
			name:    "server error",
			status:  500,
			content: "",
			samples: []string{"text"},
			wantErr: ErrProvider,
		},
		{
			name:    "no JSON in completion",
			status:  200,
			content: "I cannot help with that.",
			samples: []string{"text"},
			wantErr: ErrProvider,
		},
		{
			name:    "unknown verdict",
			status:  200,
			content: `{"verdict": "maybe", "confidence": 0.5}`,
			samples: []string{"text"},
			wantErr: ErrProvider,
		},
		{
			name:    "confidence out of range",
			status:  200,
			content: `{"verdict": "bot", "confidence": 1.5}`,
			samples: []string{"text"},
			wantErr: ErrProvider,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c, transport := newTestClassifier(t)
			if tt.status != 0 {
				transport.RegisterResponder(http.MethodPost, testBaseURL+"/chat/completions",
					httpmock.NewJsonResponderOrPanic(tt.status, completion(tt.content)))
			}

			_, err := c.Assess(context.Background(), tt.samples)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Assess() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
