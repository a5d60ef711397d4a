package mail

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log/slog"

	"github.com/phrazzld/taskapp/internal/config"
	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

const sendEndpoint = "/v3/mail/send"

// ErrRejected is returned when the mail provider answers with a non-2xx status.
var ErrRejected = errors.New("mail provider rejected message")

// Message is a single plain-text email.
type Message struct {
	ToName    string
	ToAddress string
	Subject   string
	Text      string
}

// Sender delivers messages.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// SendGridSender delivers messages through the SendGrid v3 API.
// It is safe for concurrent use.
type SendGridSender struct {
	apiKey string
	host   string
	from   *sgmail.Email
	logger *slog.Logger
}

// SendGridOptions configures a SendGridSender.
type SendGridOptions struct {
	APIKey      string
	FromAddress string
	FromName    string
	// Host overrides the API host; empty means the public SendGrid API.
	Host string
}

// NewSendGridSender creates a SendGridSender.
func NewSendGridSender(opts SendGridOptions, logger *slog.Logger) *SendGridSender {
	if logger == nil {
		logger = slog.Default()
	}

	return &SendGridSender{
		apiKey: opts.APIKey,
		host:   opts.Host,
		from:   sgmail.NewEmail(opts.FromName, opts.FromAddress),
		logger: logger.With(slog.String("component", "sendgrid_sender")),
	}
}

// Send implements Sender.
func (s *SendGridSender) Send(ctx context.Context, msg Message) error {
	to := sgmail.NewEmail(msg.ToName, msg.ToAddress)
	htmlBody := "<p>" + html.EscapeString(msg.Text) + "</p>"
	message := sgmail.NewSingleEmail(s.from, msg.Subject, to, msg.Text, htmlBody)

	// sendgrid.Client stores the body on itself, so each send gets its own.
	client := sendgrid.NewSendClient(s.apiKey)
	if s.host != "" {
		request := sendgrid.GetRequest(s.apiKey, sendEndpoint, s.host)
		request.Method = "POST"
		client = &sendgrid.Client{Request: request}
	}

	resp, err := client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("failed to send mail: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: status %d", ErrRejected, resp.StatusCode)
	}

	s.logger.Debug("mail accepted",
		slog.String("subject", msg.Subject),
		slog.Int("status", resp.StatusCode))
	return nil
}

// LogSender writes messages to the log instead of delivering them.
// It stands in for SendGrid when no API key is configured.
type LogSender struct {
	logger *slog.Logger
}

// NewLogSender creates a LogSender.
func NewLogSender(logger *slog.Logger) *LogSender {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSender{logger: logger.With(slog.String("component", "log_mail_sender"))}
}

// Send implements Sender.
func (s *LogSender) Send(ctx context.Context, msg Message) error {
	s.logger.InfoContext(ctx, "mail delivery skipped, no provider configured",
		slog.String("subject", msg.Subject))
	return nil
}

// NewSender picks the SendGrid sender when an API key is configured and the
// log sender otherwise.
func NewSender(cfg config.MailConfig, logger *slog.Logger) Sender {
	if cfg.SendGridAPIKey == "" {
		return NewLogSender(logger)
	}
	return NewSendGridSender(SendGridOptions{
		APIKey:      cfg.SendGridAPIKey,
		FromAddress: cfg.FromAddress,
		FromName:    cfg.FromName,
	}, logger)
}
