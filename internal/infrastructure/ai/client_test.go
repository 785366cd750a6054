package ai

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"mockraft/internal/config"
	"mockraft/internal/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c := NewClient(config.AIConfig{BaseURL: srv.URL, Timeout: 2 * time.Second}, logger.Discard())
	require.NotNil(t, c)
	return c
}

func TestNewClientWithoutBaseURL(t *testing.T) {
	assert.Nil(t, NewClient(config.AIConfig{}, nil))
}

func TestGenerateQuestionsFromFencedBlock(t *testing.T) {
	var prompt string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		prompt = r.URL.Query().Get("prompt")
		_, _ = w.Write([]byte("Here you go:\n```json\n[{\"question\":\"What is a goroutine?\",\"answer\":\"A lightweight thread.\"},{\"question\":\"What is a channel?\",\"answer\":\"A typed conduit.\"},{\"question\":\"extra\",\"answer\":\"x\"}]\n```\nGood luck!"))
	})

	qs, err := c.GenerateQuestions(context.Background(), QuestionRequest{JobRole: "Go Developer", TechStack: []string{"Go"}, Count: 2})
	require.NoError(t, err)
	require.Len(t, qs, 2)
	assert.Equal(t, "What is a goroutine?", qs[0].Question)
	assert.Equal(t, "A typed conduit.", qs[1].Answer)
	assert.Contains(t, prompt, "Go Developer")
	assert.Contains(t, prompt, "Generate 2 interview questions")
}

func TestAnalyzeAnswerAcceptsEnvelopeAndStringRating(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"response":"{\"rating\":\"7/10\",\"feedback\":\"Solid.\",\"strengths\":[\"clear\"],\"improvements\":\"add examples\"}"}`))
	})

	fb, err := c.AnalyzeAnswer(context.Background(), AnswerRequest{Question: "q", Answer: "a"})
	require.NoError(t, err)
	assert.Equal(t, 7, fb.Rating)
	assert.Equal(t, "Solid.", fb.Feedback)
	assert.Equal(t, []string{"clear"}, fb.Strengths)
	assert.Equal(t, []string{"add examples"}, fb.Improvements)
}

func TestAnalyzeAnswerMalformed(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("```json\n{\"rating\": 7, \"feedback\": \n```"))
	})

	_, err := c.AnalyzeAnswer(context.Background(), AnswerRequest{Question: "q", Answer: "a"})
	assert.True(t, errors.Is(err, ErrMalformedAIResponse), "got %v", err)
}

func TestUpstreamErrorIsUnavailable(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	})

	_, err := c.GenerateQuestions(context.Background(), QuestionRequest{JobRole: "x", Count: 1})
	assert.True(t, errors.Is(err, ErrAIUnavailable), "got %v", err)
}

func TestExtractJSON(t *testing.T) {
	cases := []struct {
		name string
		in   string
		ok   bool
	}{
		{"bare object", `{"rating": 5}`, true},
		{"bare array", `[{"question":"q"}]`, true},
		{"fence without language", "```\n{\"rating\": 5}\n```", true},
		{"prose around", "Sure! {\"rating\": 5} Hope it helps.", true},
		{"empty", "   ", false},
		{"no json", "I cannot help with that.", false},
		{"broken", "{\"rating\": ", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := extractJSON(tc.in)
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrMalformedAIResponse)
			}
		})
	}
}

func TestParseQuestionsRejectsMissingQuestion(t *testing.T) {
	_, err := parseQuestions(`[{"answer":"only an answer"}]`)
	assert.ErrorIs(t, err, ErrMalformedAIResponse)

	qs, err := parseQuestions(`{"questions":[{"question":" Why Go? "}]}`)
	require.NoError(t, err)
	assert.Equal(t, "Why Go?", qs[0].Question)
	assert.True(t, strings.HasPrefix(qs[0].Question, "Why"))
}
