// Package diagnostics is the "Hailey" symptom chat: a transcript per chat, a
// pluggable responder backend and a speech directive for each reply.
package diagnostics

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/wolfman30/careapp/internal/observability/metrics"
	"github.com/wolfman30/careapp/pkg/logging"
)

const (
	defaultDiagnosticsURL = "https://careappsstg.azurewebsites.net"
	responsePath          = "/api/diagnostics/GetResponse"
)

// Message is one chat bubble.
type Message struct {
	TimeStamp time.Time `json:"timeStamp"`
	Body      string    `json:"body"`
	IsRequest bool      `json:"isRequest"`
}

// Responder produces the assistant's reply to latest, given the prior history.
type Responder interface {
	Respond(ctx context.Context, history []Message, latest Message) (Message, error)
}

// RemoteResponder calls the diagnostics REST endpoint.
type RemoteResponder struct {
	httpClient *http.Client
	baseURL    string
	logger     *logging.Logger
	metrics    *metrics.UpstreamMetrics
}

// NewRemoteResponder constructs a REST-backed responder. m may be nil.
func NewRemoteResponder(baseURL string, timeout time.Duration, logger *logging.Logger, m *metrics.UpstreamMetrics) *RemoteResponder {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = defaultDiagnosticsURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &RemoteResponder{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		logger:     logger,
		metrics:    m,
	}
}

// Respond posts [latest] and decodes {timeStamp, body}.
func (r *RemoteResponder) Respond(ctx context.Context, _ []Message, latest Message) (reply Message, err error) {
	started := time.Now()
	status := "ok"
	defer func() {
		if err != nil && status == "ok" {
			status = "error"
		}
		r.metrics.ObserveRequest("diagnostics", "respond", status, time.Since(started).Seconds())
	}()

	payload, err := json.Marshal([]Message{latest})
	if err != nil {
		return Message{}, fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+responsePath, bytes.NewReader(payload))
	if err != nil {
		return Message{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return Message{}, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Message{}, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		status = fmt.Sprintf("%dxx", resp.StatusCode/100)
		msg := string(body)
		if len(msg) > 300 {
			msg = msg[:300]
		}
		r.logger.Warn("diagnostics API non-2xx response", "status", resp.StatusCode, "body", msg)
		return Message{}, fmt.Errorf("diagnostics API returned %d: %s", resp.StatusCode, msg)
	}

	var out struct {
		TimeStamp string `json:"timeStamp"`
		Body      string `json:"body"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return Message{}, fmt.Errorf("decode response: %w", err)
	}
	reply = Message{Body: out.Body, TimeStamp: time.Now().UTC()}
	if ts, err := time.Parse(time.RFC3339Nano, out.TimeStamp); err == nil {
		reply.TimeStamp = ts
	}
	return reply, nil
}

const geminiInstruction = "You are Hailey, a friendly assistant in a patient care app. " +
	"Ask short clarifying questions about the patient's symptoms, suggest when to book an appointment, " +
	"and never present your answer as a medical diagnosis."

// GeminiResponder answers with a Gemini model, replaying the transcript as chat history.
type GeminiResponder struct {
	client  *genai.Client
	modelID string
	now     func() time.Time
}

// NewGeminiResponder creates a Gemini-backed responder.
func NewGeminiResponder(ctx context.Context, apiKey, modelID string) (*GeminiResponder, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("diagnostics: gemini api key is required")
	}
	if strings.TrimSpace(modelID) == "" {
		modelID = "gemini-2.5-flash"
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("diagnostics: failed to create gemini client: %w", err)
	}
	return &GeminiResponder{client: client, modelID: modelID, now: time.Now}, nil
}

func (g *GeminiResponder) Respond(ctx context.Context, history []Message, latest Message) (Message, error) {
	model := g.client.GenerativeModel(g.modelID)
	model.SystemInstruction = genai.NewUserContent(genai.Text(geminiInstruction))

	cs := model.StartChat()
	cs.History = geminiHistory(history)

	resp, err := cs.SendMessage(ctx, genai.Text(latest.Body))
	if err != nil {
		return Message{}, fmt.Errorf("diagnostics: gemini completion failed: %w", err)
	}
	if len(resp.Candidates) == 0 {
		return Message{}, errors.New("diagnostics: gemini returned no candidates")
	}
	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return Message{}, errors.New("diagnostics: gemini returned empty content")
	}
	var text strings.Builder
	for _, part := range candidate.Content.Parts {
		if t, ok := part.(genai.Text); ok {
			text.WriteString(string(t))
		}
	}
	return Message{TimeStamp: g.now().UTC(), Body: strings.TrimSpace(text.String())}, nil
}

// Close releases the Gemini client.
func (g *GeminiResponder) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}

func geminiHistory(history []Message) []*genai.Content {
	out := make([]*genai.Content, 0, len(history))
	for _, m := range history {
		body := strings.TrimSpace(m.Body)
		if body == "" {
			continue
		}
		role := "model"
		if m.IsRequest {
			role = "user"
		}
		out = append(out, &genai.Content{Role: role, Parts: []genai.Part{genai.Text(body)}})
	}
	return out
}
