package service

import (
	"bytes"
	"context"
	"fmt"
	"net/smtp"
	"os"
	"strings"
	"time"

	"github.com/jordan-wright/email"
	"github.com/yuin/goldmark"

	"zapchat/model"
)

// DigestService mails the admin a transcript of the last day's
// conversations. Best-effort: any failure is logged and the next run
// starts fresh.
type DigestService struct {
	store *model.ChatStore
}

func NewDigestService(store *model.ChatStore) *DigestService {
	return &DigestService{store: store}
}

// SendDailyDigest collects messages from the past 24 hours, renders them to
// HTML and sends one email to DIGEST_TO.
func (s *DigestService) SendDailyDigest() error {
	logger.Infof("[%s] Start scheduled task SendDailyDigest", "scheduled task")
	startTime := time.Now()

	ctx := context.Background()
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		logger.Warnf("[%s] list users error, %s", "scheduled task", err)
		return fmt.Errorf("failed to list users: %w", err)
	}

	since := startTime.Add(-24 * time.Hour)
	markdown, total := s.buildTranscript(ctx, users, since)
	if total == 0 {
		logger.Infof("[%s] no messages in the last day, digest skipped", "scheduled task")
		return nil
	}

	var html bytes.Buffer
	if err := goldmark.Convert([]byte(markdown), &html); err != nil {
		logger.Warnf("[%s] render digest error, %s", "scheduled task", err)
		return fmt.Errorf("failed to render digest: %w", err)
	}

	if err := s.send(html.Bytes(), startTime); err != nil {
		logger.Warnf("[%s] send digest error, %s", "scheduled task", err)
		return err
	}

	logger.Infof("[%s] Finished scheduled task SendDailyDigest, %d messages, cost %v",
		"scheduled task", total, time.Since(startTime))
	return nil
}

func (s *DigestService) buildTranscript(ctx context.Context, users []model.User, since time.Time) (string, int) {
	var b strings.Builder
	total := 0

	fmt.Fprintf(&b, "# Conversas desde %s\n\n", since.Format("2006-01-02 15:04"))
	for _, user := range users {
		messages, err := s.store.ListMessagesSince(ctx, user.ID, since)
		if err != nil {
			logger.Warnf("[%s] list messages error for user %d, %s", "scheduled task", user.ID, err)
			continue
		}
		if len(messages) == 0 {
			continue
		}
		fmt.Fprintf(&b, "## %s (%s)\n\n", user.FullName, user.WhatsappNumber)
		for _, msg := range messages {
			who := "Cliente"
			if msg.Sender == model.SenderAssistant {
				who = "Dr. Juan"
			}
			fmt.Fprintf(&b, "- **%s** (%s): %s\n", who, msg.CreatedAt.Format("15:04"), msg.Content)
		}
		b.WriteString("\n")
		total += len(messages)
	}
	return b.String(), total
}

func (s *DigestService) send(html []byte, day time.Time) error {
	host := os.Getenv("SMTP_HOST")
	port := os.Getenv("SMTP_PORT")
	user := os.Getenv("SMTP_USER")
	password := os.Getenv("SMTP_PASSWORD")

	e := email.NewEmail()
	e.From = os.Getenv("DIGEST_FROM")
	e.To = strings.Split(os.Getenv("DIGEST_TO"), ",")
	e.Subject = fmt.Sprintf("Resumo diário de conversas - %s", day.Format("2006-01-02"))
	e.HTML = html
	return e.Send(host+":"+port, smtp.PlainAuth("", user, password, host))
}
