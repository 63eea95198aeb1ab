package schema

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/badgeforge/backend/internal/models"
)

// MappingRequest is what the classifier sees: the header line, up to two
// sample data lines, the caller's archetype hint, and any labels the user has
// already renamed elements to (so the classifier can bind matching columns).
type MappingRequest struct {
	HeaderLine    string
	SampleLines   []string
	Delimiter     string
	ArchetypeHint models.Archetype
	LabelHints    map[string]string
}

// Classifier produces a column mapping for an import. Implementations may be
// arbitrarily slow or unavailable; callers fall back to the fixed-column
// parser on any error.
type Classifier interface {
	MapColumns(ctx context.Context, req MappingRequest) (ColumnMapping, error)
}

// AIClassifierConfig configures the LLM-backed classifier.
type AIClassifierConfig struct {
	BaseURL    string
	APIKey     string
	Model      string
	TimeoutSec int
}

// AIClassifier calls an OpenAI-compatible chat completions endpoint and
// parses the returned column mapping. Any transport, status or parse failure
// is returned as an error; the importer handles recovery.
type AIClassifier struct {
	cfg    AIClassifierConfig
	client *http.Client
	logger *zap.Logger
}

// NewAIClassifier creates the LLM-backed classifier.
func NewAIClassifier(cfg AIClassifierConfig, logger *zap.Logger) *AIClassifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := time.Duration(cfg.TimeoutSec) * time.Second
	if cfg.TimeoutSec <= 0 {
		timeout = 30 * time.Second
	}
	return &AIClassifier{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
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

// MapColumns sends the header and sample rows to the model and parses the
// mapping out of the reply.
func (c *AIClassifier) MapColumns(ctx context.Context, req MappingRequest) (ColumnMapping, error) {
	if c.cfg.BaseURL == "" {
		return NewColumnMapping(), fmt.Errorf("schema: classifier endpoint not configured")
	}

	body, err := json.Marshal(chatRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: mappingSystemPrompt},
			{Role: "user", Content: buildMappingPrompt(req)},
		},
	})
	if err != nil {
		return NewColumnMapping(), fmt.Errorf("schema: marshal request: %w", err)
	}

	url := strings.TrimSuffix(c.cfg.BaseURL, "/") + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return NewColumnMapping(), fmt.Errorf("schema: create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return NewColumnMapping(), fmt.Errorf("schema: classifier call: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return NewColumnMapping(), fmt.Errorf("schema: classifier status %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return NewColumnMapping(), fmt.Errorf("schema: read response: %w", err)
	}
	var cr chatResponse
	if err := json.Unmarshal(raw, &cr); err != nil {
		return NewColumnMapping(), fmt.Errorf("schema: decode response: %w", err)
	}
	if len(cr.Choices) == 0 {
		return NewColumnMapping(), fmt.Errorf("schema: empty classifier response")
	}

	mapping, err := ParseColumnMapping(cr.Choices[0].Message.Content)
	if err != nil {
		return NewColumnMapping(), err
	}
	c.logger.Debug("column mapping resolved",
		zap.Int("name", mapping.Name),
		zap.Int("registration_id", mapping.RegistrationID),
		zap.Int("extras", len(mapping.Extras)),
	)
	return mapping, nil
}

const mappingSystemPrompt = `You map spreadsheet columns to badge fields. ` +
	`Reply with a single JSON object. Keys: name, company, passType, ` +
	`registrationId, role, eventName, eventDates, sponsor, guardianName, ` +
	`dateOfBirth, class, schoolId, jobTitle, validFrom, validUntil ` +
	`(zero-based column index, -1 if absent), ` +
	`tracks (array of indices), extras (array of {"label","index"} for every ` +
	`column not mapped elsewhere). No prose.`

func buildMappingPrompt(req MappingRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Header: %s\n", req.HeaderLine)
	for i, s := range req.SampleLines {
		fmt.Fprintf(&b, "Sample %d: %s\n", i+1, s)
	}
	if req.ArchetypeHint != "" {
		fmt.Fprintf(&b, "Card type: %s\n", req.ArchetypeHint)
	}
	if len(req.LabelHints) > 0 {
		b.WriteString("User labels:")
		for k, v := range req.LabelHints {
			fmt.Fprintf(&b, " %s=%q", k, v)
		}
		b.WriteString("\n")
	}
	if req.Delimiter == "\t" {
		b.WriteString("Columns are tab-separated.\n")
	} else {
		b.WriteString("Columns are comma-separated.\n")
	}
	return b.String()
}
