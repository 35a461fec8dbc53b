package ml

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/aman-security/aman/pkg/httputil"
)

// defaultJudgeBaseURL is the OpenAI-compatible endpoint of the judgment
// service.
const defaultJudgeBaseURL = "https://api.groq.com/openai/v1"

// judgePromptLimit caps how much message text is sent to the judge.
const judgePromptLimit = 400

// Judge asks the external semantic-evaluation service for a 0-100 risk
// score. The judge is optional: when no API key is configured the signal is
// absent and fusion excludes it.
type Judge struct {
	client  *http.Client
	apiKey  string
	model   string
	baseURL string
}

// NewJudge creates a judgment client. Returns nil when no API key is set -
// callers nil-check the judge the same way other optional components are
// handled.
func NewJudge(apiKey, model, baseURL string) *Judge {
	if apiKey == "" {
		return nil
	}
	if baseURL == "" {
		baseURL = defaultJudgeBaseURL
	}
	return &Judge{
		client:  httputil.JudgeClient(),
		apiKey:  apiKey,
		model:   model,
		baseURL: baseURL,
	}
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
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

type judgeVerdict struct {
	RiskScore int `json:"risk_score"`
}

// Score asks the judge for a risk score on the message text. Transient
// failures are retried once with fibonacci backoff; any final failure
// surfaces as an error the caller degrades to a missing signal.
func (j *Judge) Score(ctx context.Context, text string) (int, error) {
	prompt := fmt.Sprintf("حلل هذا الإيميل وأرجع JSON: {\"risk_score\": 0-100}\n%q", truncateRunes(text, judgePromptLimit))

	reqBody := chatRequest{
		Model:       j.model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: 0.2,
	}

	var content string
	backoff := retry.WithMaxRetries(1, retry.NewFibonacci(500*time.Millisecond))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		var callErr error
		content, callErr = j.call(ctx, reqBody)
		if callErr != nil {
			return retry.RetryableError(callErr)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	var verdict judgeVerdict
	if err := json.Unmarshal([]byte(extractJSON(content)), &verdict); err != nil {
		return 0, fmt.Errorf("parse judge response: %w", err)
	}

	score := verdict.RiskScore
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score, nil
}

func (j *Judge) call(ctx context.Context, reqBody chatRequest) (string, error) {
	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	endpoint := strings.TrimRight(j.baseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+j.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := j.client.Do(req)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := httputil.ReadResponseBody(resp.Body, httputil.MaxJudgeResponseSize)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("judge API error %d: %s", resp.StatusCode, string(body))
	}

	var result chatResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("unmarshal judge response: %w", err)
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("judge returned no choices")
	}
	return result.Choices[0].Message.Content, nil
}

// extractJSON strips markdown fences and surrounding prose from a model
// response, keeping the outermost JSON object.
func extractJSON(content string) string {
	clean := strings.TrimSpace(content)
	if start := strings.Index(clean, "{"); start != -1 {
		clean = clean[start:]
	}
	if end := strings.LastIndex(clean, "}"); end != -1 {
		clean = clean[:end+1]
	}
	return clean
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
