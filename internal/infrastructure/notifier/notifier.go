package notifier

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"html/template"
	"strings"

	"mockraft/internal/config"

	"github.com/resend/resend-go/v3"
	"github.com/sirupsen/logrus"
)

//go:embed summary.html
var summaryTemplate string

var summaryTmpl = template.Must(template.New("summary").Parse(summaryTemplate))

type QuestionResult struct {
	Number   int
	Question string
	Rating   int
}

type InterviewSummary struct {
	AppName      string
	UserName     string
	JobRole      string
	OverallScore int
	Questions    []QuestionResult
}

type Notifier interface {
	SendInterviewSummary(ctx context.Context, to string, s InterviewSummary) error
}

type ResendNotifier struct {
	client  *resend.Client
	from    string
	appName string
	logger  *logrus.Logger
}

// New returns a Resend-backed notifier. Without an API key messages are
// only logged.
func New(cfg config.EmailConfig, appName string, logger *logrus.Logger) *ResendNotifier {
	n := &ResendNotifier{from: strings.TrimSpace(cfg.From), appName: appName, logger: logger}
	if n.from == "" {
		n.from = fmt.Sprintf("%s <noreply@mockraft.app>", appName)
	}
	if key := strings.TrimSpace(cfg.ResendAPIKey); key != "" {
		n.client = resend.NewClient(key)
	}
	return n
}

func (n *ResendNotifier) SendInterviewSummary(ctx context.Context, to string, s InterviewSummary) error {
	if strings.TrimSpace(to) == "" {
		return nil
	}
	if s.AppName == "" {
		s.AppName = n.appName
	}
	html, err := RenderSummary(s)
	if err != nil {
		return err
	}
	subject := fmt.Sprintf("Your %s mock interview scored %d/100", s.JobRole, s.OverallScore)

	if n.client == nil {
		if n.logger != nil {
			n.logger.WithFields(logrus.Fields{"to": to, "subject": subject}).Info("[Email] RESEND_API_KEY missing, skipping send")
		}
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	sent, err := n.client.Emails.Send(&resend.SendEmailRequest{
		From:    n.from,
		To:      []string{to},
		Subject: subject,
		Html:    html,
	})
	if err != nil {
		if n.logger != nil {
			n.logger.Warnf("[Email] send failed to=%s err=%v", to, err)
		}
		return err
	}
	if n.logger != nil {
		n.logger.Printf("[Email] sent to=%s id=%s", to, sent.Id)
	}
	return nil
}

func RenderSummary(s InterviewSummary) (string, error) {
	var buf bytes.Buffer
	if err := summaryTmpl.Execute(&buf, s); err != nil {
		return "", fmt.Errorf("render summary: %w", err)
	}
	return buf.String(), nil
}

var _ Notifier = (*ResendNotifier)(nil)
