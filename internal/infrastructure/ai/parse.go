package ai

import (
	"strings"

	"github.com/tidwall/gjson"
)

// extractJSON pulls the JSON payload out of freeform model text. It accepts
// a fenced block (```json ... ``` or ``` ... ```), a bare JSON document, or
// prose surrounding the first object or array.
func extractJSON(text string) (gjson.Result, error) {
	s := strings.TrimSpace(text)
	if s == "" {
		return gjson.Result{}, ErrMalformedAIResponse
	}

	if i := strings.Index(s, "```"); i >= 0 {
		rest := s[i+3:]
		if nl := strings.IndexByte(rest, '\n'); nl >= 0 && !strings.ContainsAny(rest[:nl], "{[") {
			rest = rest[nl+1:]
		}
		if j := strings.Index(rest, "```"); j >= 0 {
			rest = rest[:j]
		}
		s = strings.TrimSpace(rest)
	}

	if gjson.Valid(s) {
		return gjson.Parse(s), nil
	}

	start := strings.IndexAny(s, "{[")
	if start < 0 {
		return gjson.Result{}, ErrMalformedAIResponse
	}
	closer := "}"
	if s[start] == '[' {
		closer = "]"
	}
	end := strings.LastIndex(s, closer)
	if end <= start {
		return gjson.Result{}, ErrMalformedAIResponse
	}
	candidate := s[start : end+1]
	if !gjson.Valid(candidate) {
		return gjson.Result{}, ErrMalformedAIResponse
	}
	return gjson.Parse(candidate), nil
}

// unwrapEnvelope returns the model text when the proxy wraps it in a JSON
// object, otherwise the body unchanged.
func unwrapEnvelope(body []byte) string {
	if gjson.ValidBytes(body) {
		res := gjson.ParseBytes(body)
		if res.IsObject() {
			for _, k := range []string{"response", "text", "output", "result"} {
				if v := res.Get(k); v.Type == gjson.String {
					return v.String()
				}
			}
		}
	}
	return string(body)
}

func parseQuestions(text string) ([]GeneratedQuestion, error) {
	res, err := extractJSON(text)
	if err != nil {
		return nil, err
	}
	if res.IsObject() {
		res = res.Get("questions")
	}
	if !res.IsArray() {
		return nil, ErrMalformedAIResponse
	}

	out := make([]GeneratedQuestion, 0)
	for _, item := range res.Array() {
		q := strings.TrimSpace(firstString(item, "question", "Question"))
		if q == "" {
			return nil, ErrMalformedAIResponse
		}
		out = append(out, GeneratedQuestion{
			Question: q,
			Answer:   strings.TrimSpace(firstString(item, "answer", "Answer", "reference_answer")),
		})
	}
	if len(out) == 0 {
		return nil, ErrMalformedAIResponse
	}
	return out, nil
}

func parseFeedback(text string) (Feedback, error) {
	res, err := extractJSON(text)
	if err != nil {
		return Feedback{}, err
	}
	if !res.IsObject() {
		return Feedback{}, ErrMalformedAIResponse
	}

	rating := res.Get("rating")
	if !rating.Exists() {
		rating = res.Get("Rating")
	}
	var n int64
	switch rating.Type {
	case gjson.Number:
		n = int64(rating.Float() + 0.5)
	case gjson.String:
		// "7/10" and "7" both occur in practice
		head := strings.TrimSpace(strings.SplitN(rating.String(), "/", 2)[0])
		if !gjson.Valid(head) {
			return Feedback{}, ErrMalformedAIResponse
		}
		n = gjson.Parse(head).Int()
	default:
		return Feedback{}, ErrMalformedAIResponse
	}

	return Feedback{
		Rating:       int(n),
		Feedback:     strings.TrimSpace(firstString(res, "feedback", "Feedback")),
		Strengths:    stringList(res.Get("strengths")),
		Improvements: stringList(res.Get("improvements")),
	}, nil
}

func firstString(res gjson.Result, keys ...string) string {
	for _, k := range keys {
		if v := res.Get(k); v.Exists() {
			return v.String()
		}
	}
	return ""
}

func stringList(res gjson.Result) []string {
	out := make([]string, 0)
	if res.Type == gjson.String {
		if s := strings.TrimSpace(res.String()); s != "" {
			out = append(out, s)
		}
		return out
	}
	for _, v := range res.Array() {
		if s := strings.TrimSpace(v.String()); s != "" {
			out = append(out, s)
		}
	}
	return out
}
