// Package smtp delivers job summaries by email using go-mail.
package smtp

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/fwojciec/harvest"
	"github.com/wneessen/go-mail"
)

// Config holds SMTP delivery settings.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
}

// Configured reports whether credentials are present. An unconfigured
// notifier skips delivery instead of failing.
func (c Config) Configured() bool {
	return c.Username != "" && c.Password != ""
}

// ConfigFromEnv reads SMTP settings from the environment.
func ConfigFromEnv() Config {
	cfg := Config{
		Host:     "smtp.gmail.com",
		Port:     587,
		Username: os.Getenv("SMTP_USERNAME"),
		Password: os.Getenv("SMTP_PASSWORD"),
	}
	if host := os.Getenv("SMTP_SERVER"); host != "" {
		cfg.Host = host
	}
	if port := os.Getenv("SMTP_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.Port = p
		}
	}
	return cfg
}

// Ensure Notifier implements harvest.Notifier at compile time.
var _ harvest.Notifier = (*Notifier)(nil)

// Notifier sends summary emails over SMTP with STARTTLS.
type Notifier struct {
	cfg    Config
	logger *slog.Logger
}

// NewNotifier creates a Notifier with the given configuration.
func NewNotifier(cfg Config, logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Notifier{cfg: cfg, logger: logger}
}

// Notify delivers the summary to target as an HTML email. When SMTP
// credentials are not configured the delivery is skipped with a warning
// and no error is returned.
func (n *Notifier) Notify(ctx context.Context, target, subject string, summary *harvest.Summary) error {
	if !n.cfg.Configured() {
		n.logger.Warn("smtp credentials not configured, skipping email notification")
		return nil
	}

	msg := mail.NewMsg()
	if err := msg.From(n.cfg.Username); err != nil {
		return err
	}
	if err := msg.To(target); err != nil {
		return harvest.Errorf(harvest.EINVALID, "invalid notification target %q: %v", target, err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextHTML, Body(summary))

	client, err := mail.NewClient(n.cfg.Host,
		mail.WithPort(n.cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(n.cfg.Username),
		mail.WithPassword(n.cfg.Password),
		mail.WithTLSPolicy(mail.TLSMandatory),
	)
	if err != nil {
		return err
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return err
	}

	n.logger.Info("email notification sent", "target", target)
	return nil
}

// Body renders the summary as an HTML email body.
func Body(summary *harvest.Summary) string {
	var b strings.Builder

	b.WriteString("<html>\n<body>\n")
	b.WriteString("<h2>Web Scraping Results</h2>\n")
	fmt.Fprintf(&b, "<p><strong>Task:</strong> %s</p>\n", html.EscapeString(summary.TaskName))

	b.WriteString("<h3>Summary</h3>\n<ul>\n")
	fmt.Fprintf(&b, "<li>Successful: %d</li>\n", summary.SuccessCount)
	fmt.Fprintf(&b, "<li>Failed: %d</li>\n", summary.FailureCount)
	fmt.Fprintf(&b, "<li>Total: %d</li>\n", summary.Total())
	b.WriteString("</ul>\n")

	b.WriteString("<h3>Scraped Content Preview</h3>\n")
	for _, item := range summary.Preview {
		b.WriteString(`<div style="margin-bottom: 15px; border-left: 3px solid #007bff; padding-left: 10px;">` + "\n")
		fmt.Fprintf(&b, "<strong>URL:</strong> %s<br>\n", html.EscapeString(item.URL))
		fmt.Fprintf(&b, "<strong>Words:</strong> %d<br>\n", item.WordCount)
		fmt.Fprintf(&b, "<strong>Preview:</strong> %s<br>\n", html.EscapeString(item.Snippet))
		b.WriteString("</div>\n")
	}
	if more := summary.SuccessCount - len(summary.Preview); more > 0 {
		fmt.Fprintf(&b, "<p><em>... and %d more items</em></p>\n", more)
	}

	b.WriteString("</body>\n</html>\n")
	return b.String()
}
