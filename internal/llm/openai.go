package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/nobushige/botscan/internal/model"
)

// DefaultOpenAIBaseURL is the hosted chat completions endpoint.
const DefaultOpenAIBaseURL = "https://api.openai.com/v1"

// maxSamples bounds how many posts are sent per assessment; more adds
// token cost without improving the verdict much.
const maxSamples = 10

const systemPrompt = `You are a bot-detection assistant. You will be given recent posts from one social media account. Judge whether the account is automated.
Respond with only a JSON object: {"verdict": "bot" | "human" | "uncertain", "confidence": <0.0-1.0>, "reasoning": "<one sentence>"}`

// OpenAIClassifier implements Classifier against an OpenAI-compatible
// chat completions API.
type OpenAIClassifier struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

// OpenAIOption configures an OpenAIClassifier.
type OpenAIOption func(*OpenAIClassifier)

// WithOpenAIBaseURL overrides the API endpoint, for compatible providers
// and tests.
func WithOpenAIBaseURL(baseURL string) OpenAIOption {
	return func(c *OpenAIClassifier) {
		c.baseURL = strings.TrimSuffix(baseURL, "/")
	}
}

// WithOpenAIModel selects the model name sent with each request.
func WithOpenAIModel(name string) OpenAIOption {
	return func(c *OpenAIClassifier) {
		c.model = name
	}
}

// WithOpenAIHTTPClient replaces the underlying HTTP client.
func WithOpenAIHTTPClient(hc *http.Client) OpenAIOption {
	return func(c *OpenAIClassifier) {
		c.httpClient = hc
	}
}

// NewOpenAIClassifier creates a classifier using the given API key.
func NewOpenAIClassifier(apiKey string, opts ...OpenAIOption) *OpenAIClassifier {
	c := &OpenAIClassifier{
		baseURL: DefaultOpenAIBaseURL,
		apiKey:  apiKey,
		model:   "gpt-4o-mini",
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

type verdictPayload struct {
	Verdict    string  `json:"verdict"`
	Confidence float64 `json:"confidence"`
	Reasoning  string  `json:"reasoning"`
}

// Assess implements Classifier.
func (c *OpenAIClassifier) Assess(ctx context.Context, samples []string) (*model.LLMResult, error) {
	if len(samples) == 0 {
		return nil, ErrNoSamples
	}
	if len(samples) > maxSamples {
		samples = samples[:maxSamples]
	}

	var prompt strings.Builder
	prompt.WriteString("Recent posts:\n")
	for i, s := range samples {
		fmt.Fprintf(&prompt, "%d. %s\n", i+1, s)
	}

	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt.String()},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("llm: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("llm: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProvider, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrProvider, resp.StatusCode)
	}

	var chat chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chat); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrProvider, err)
	}
	if len(chat.Choices) == 0 {
		return nil, fmt.Errorf("%w: empty completion", ErrProvider)
	}

	payload, err := parseVerdict(chat.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}

	return &model.LLMResult{
		Verdict:    payload.Verdict,
		Confidence: payload.Confidence,
		Reasoning:  payload.Reasoning,
		Model:      c.model,
	}, nil
}

// parseVerdict extracts the verdict JSON from a completion. Models often
// wrap the object in prose or code fences, so the parser scans for the
// outermost braces instead of decoding the whole message.
func parseVerdict(content string) (*verdictPayload, error) {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("%w: no JSON object in completion", ErrProvider)
	}

	var payload verdictPayload
	if err := json.Unmarshal([]byte(content[start:end+1]), &payload); err != nil {
		return nil, fmt.Errorf("%w: parse verdict: %v", ErrProvider, err)
	}

	switch payload.Verdict {
	case VerdictBot, VerdictHuman, VerdictUncertain:
	default:
		return nil, fmt.Errorf("%w: unknown verdict %q", ErrProvider, payload.Verdict)
	}
	if payload.Confidence < 0 || payload.Confidence > 1 {
		return nil, fmt.Errorf("%w: confidence %v out of range", ErrProvider, payload.Confidence)
	}
	return &payload, nil
}
