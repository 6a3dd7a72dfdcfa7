package email

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/ses"
	"github.com/aws/aws-sdk-go/service/ses/sesiface"
)

const charset = "UTF-8"

// Message is a single outgoing email.
type Message struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

// SESSender delivers mail through Amazon SES.
type SESSender struct {
	client sesiface.SESAPI
	from   string
}

func NewSESSender(region, from string) (*SESSender, error) {
	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(region),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create aws session: %w", err)
	}
	return NewSESSenderWithClient(ses.New(sess), from), nil
}

func NewSESSenderWithClient(client sesiface.SESAPI, from string) *SESSender {
	return &SESSender{client: client, from: from}
}

func (s *SESSender) Send(ctx context.Context, msg Message) error {
	input := &ses.SendEmailInput{
		Destination: &ses.Destination{
			ToAddresses: []*string{aws.String(msg.To)},
		},
		Message: &ses.Message{
			Body: &ses.Body{
				Html: &ses.Content{Charset: aws.String(charset), Data: aws.String(msg.HTML)},
				Text: &ses.Content{Charset: aws.String(charset), Data: aws.String(msg.Text)},
			},
			Subject: &ses.Content{Charset: aws.String(charset), Data: aws.String(msg.Subject)},
		},
		Source: aws.String(s.from),
	}

	if _, err := s.client.SendEmailWithContext(ctx, input); err != nil {
		return fmt.Errorf("ses send to %s: %w", msg.To, err)
	}
	return nil
}

// LogSender writes mail to the log instead of sending it. Used outside production.
type LogSender struct {
	log *slog.Logger
}

func NewLogSender(log *slog.Logger) *LogSender {
	return &LogSender{log: log}
}

func (s *LogSender) Send(_ context.Context, msg Message) error {
	s.log.Info("email (not sent)", "to", msg.To, "subject", msg.Subject)
	return nil
}
