package schema

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chatReply(t *testing.T, content string) []byte {
	t.Helper()
	body, err := json.Marshal(map[string]any{
		"choices": []map[string]any{
			{"message": map[string]string{"role": "assistant", "content": content}},
		},
	})
	require.NoError(t, err)
	return body
}

func TestAIClassifierMapColumns(t *testing.T) {
	var gotPath, gotAuth string
	var gotReq chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		w.Write(chatReply(t, "```json\n{\"name\": 0, \"company\": 1, \"role\": 2}\n```"))
	}))
	defer srv.Close()

	c := NewAIClassifier(AIClassifierConfig{BaseURL: srv.URL, APIKey: "sk-test", Model: "gpt-4o-mini"}, nil)
	m, err := c.MapColumns(context.Background(), MappingRequest{
		HeaderLine:  "Name,Org,Role",
		SampleLines: []string{"Ada,ACME,Speaker"},
		Delimiter:   ",",
	})
	require.NoError(t, err)

	assert.Equal(t, "/chat/completions", gotPath)
	assert.Equal(t, "Bearer sk-test", gotAuth)
	assert.Equal(t, "gpt-4o-mini", gotReq.Model)
	require.Len(t, gotReq.Messages, 2)
	assert.Equal(t, "system", gotReq.Messages[0].Role)
	assert.Contains(t, gotReq.Messages[1].Content, "Name,Org,Role")

	assert.Equal(t, 0, m.Name)
	assert.Equal(t, 1, m.Company)
	assert.Equal(t, 2, m.Role)
	assert.Equal(t, AbsentColumn, m.GuardianName)
}

func TestAIClassifierErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewAIClassifier(AIClassifierConfig{BaseURL: srv.URL}, nil)
	_, err := c.MapColumns(context.Background(), MappingRequest{HeaderLine: "Name"})
	assert.Error(t, err)
}

func TestAIClassifierGarbageContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write(chatReply(t, "I'm not sure what you mean."))
	}))
	defer srv.Close()

	c := NewAIClassifier(AIClassifierConfig{BaseURL: srv.URL}, nil)
	_, err := c.MapColumns(context.Background(), MappingRequest{HeaderLine: "Name"})
	assert.Error(t, err)
}

func TestAIClassifierUnconfigured(t *testing.T) {
	c := NewAIClassifier(AIClassifierConfig{}, nil)
	_, err := c.MapColumns(context.Background(), MappingRequest{HeaderLine: "Name"})
	assert.Error(t, err)
}

func TestBuildMappingPrompt(t *testing.T) {
	p := buildMappingPrompt(MappingRequest{
		HeaderLine:  "Name\tOrg",
		SampleLines: []string{"Ada\tACME"},
		Delimiter:   "\t",
		LabelHints:  map[string]string{"customText1": "School"},
	})
	assert.Contains(t, p, "Header: Name\tOrg")
	assert.Contains(t, p, "Sample 1: Ada\tACME")
	assert.Contains(t, p, "tab-separated")
	assert.Contains(t, p, `customText1="School"`)
}
