package ai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"mockraft/internal/config"
	"mockraft/internal/metrics"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

var (
	ErrAIUnavailable       = errors.New("ai service unavailable")
	ErrMalformedAIResponse = errors.New("malformed ai response")
)

const maxResponseBytes = 1 << 20

type GeneratedQuestion struct {
	Question string
	Answer   string
}

type Feedback struct {
	Rating       int
	Feedback     string
	Strengths    []string
	Improvements []string
}

type QuestionRequest struct {
	JobRole         string
	JobDescription  string
	TechStack       []string
	ExperienceLevel string
	Language        string
	Count           int
}

type AnswerRequest struct {
	JobRole         string
	Question        string
	ReferenceAnswer string
	Answer          string
	Language        string
}

type Client interface {
	GenerateQuestions(ctx context.Context, in QuestionRequest) ([]GeneratedQuestion, error)
	AnalyzeAnswer(ctx context.Context, in AnswerRequest) (Feedback, error)
}

type httpClient struct {
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
	logger  *logrus.Logger
}

// NewClient returns nil when no base URL is configured.
func NewClient(cfg config.AIConfig, logger *logrus.Logger) Client {
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		return nil
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	var limiter *rate.Limiter
	if cfg.RatePerMinute > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RatePerMinute)), cfg.RatePerMinute)
	}
	return &httpClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		limiter: limiter,
		logger:  logger,
	}
}

func (c *httpClient) GenerateQuestions(ctx context.Context, in QuestionRequest) ([]GeneratedQuestion, error) {
	start := time.Now()
	text, err := c.ask(ctx, questionPrompt(in))
	if err != nil {
		metrics.RecordAICall("generate", "unavailable", time.Since(start))
		return nil, err
	}
	qs, err := parseQuestions(text)
	if err != nil {
		metrics.RecordAICall("generate", "malformed", time.Since(start))
		c.logMalformed("generate", text)
		return nil, err
	}
	if in.Count > 0 && len(qs) > in.Count {
		qs = qs[:in.Count]
	}
	metrics.RecordAICall("generate", "ok", time.Since(start))
	return qs, nil
}

func (c *httpClient) AnalyzeAnswer(ctx context.Context, in AnswerRequest) (Feedback, error) {
	start := time.Now()
	text, err := c.ask(ctx, answerPrompt(in))
	if err != nil {
		metrics.RecordAICall("analyze", "unavailable", time.Since(start))
		return Feedback{}, err
	}
	fb, err := parseFeedback(text)
	if err != nil {
		metrics.RecordAICall("analyze", "malformed", time.Since(start))
		c.logMalformed("analyze", text)
		return Feedback{}, err
	}
	metrics.RecordAICall("analyze", "ok", time.Since(start))
	return fb, nil
}

func (c *httpClient) ask(ctx context.Context, prompt string) (string, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("%w: %v", ErrAIUnavailable, err)
		}
	}

	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAIUnavailable, err)
	}
	q := u.Query()
	q.Set("prompt", prompt)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAIUnavailable, err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		if c.logger != nil {
			c.logger.Warnf("[AI] request failed err=%v", err)
		}
		return "", fmt.Errorf("%w: %v", ErrAIUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAIUnavailable, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if c.logger != nil {
			c.logger.Warnf("[AI] upstream error status=%d body=%q", resp.StatusCode, truncate(string(body), 256))
		}
		return "", fmt.Errorf("%w: status=%d", ErrAIUnavailable, resp.StatusCode)
	}
	return unwrapEnvelope(body), nil
}

func (c *httpClient) logMalformed(op, text string) {
	if c.logger == nil {
		return
	}
	c.logger.WithFields(logrus.Fields{"op": op, "body": truncate(text, 256)}).Warn("[AI] malformed response")
}

func questionPrompt(in QuestionRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Generate %d interview questions with answers for the role %q.\n", in.Count, in.JobRole)
	if in.JobDescription != "" {
		fmt.Fprintf(&b, "Job description: %s\n", in.JobDescription)
	}
	if len(in.TechStack) > 0 {
		fmt.Fprintf(&b, "Tech stack: %s\n", strings.Join(in.TechStack, ", "))
	}
	if in.ExperienceLevel != "" {
		fmt.Fprintf(&b, "Candidate experience level: %s\n", in.ExperienceLevel)
	}
	if in.Language != "" {
		fmt.Fprintf(&b, "Write the questions and answers in %s.\n", in.Language)
	}
	b.WriteString(`Respond only with a JSON array of objects with the fields "question" and "answer".`)
	return b.String()
}

func answerPrompt(in AnswerRequest) string {
	var b strings.Builder
	if in.JobRole != "" {
		fmt.Fprintf(&b, "Role: %s\n", in.JobRole)
	}
	fmt.Fprintf(&b, "Interview question: %s\n", in.Question)
	if in.ReferenceAnswer != "" {
		fmt.Fprintf(&b, "Reference answer: %s\n", in.ReferenceAnswer)
	}
	fmt.Fprintf(&b, "Candidate answer: %s\n", in.Answer)
	if in.Language != "" {
		fmt.Fprintf(&b, "Write the feedback in %s.\n", in.Language)
	}
	b.WriteString(`Rate the candidate answer from 0 to 10 and respond only with a JSON object with the fields ` +
		`"rating" (integer), "feedback" (string), "strengths" (array of strings) and "improvements" (array of strings).`)
	return b.String()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

var _ Client = (*httpClient)(nil)
