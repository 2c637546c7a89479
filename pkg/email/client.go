package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/wneessen/go-mail"

	"github.com/eduflow/eduflow-server-go/pkg/config"
)

// Sender delivers transactional email. Satisfied by Client; tests substitute
// their own implementation.
type Sender interface {
	Send(ctx context.Context, opts Options) error
}

// Client handles email sending operations over SMTP. It dials per send,
// which is fine for the sporadic traffic this service generates.
type Client struct {
	cfg config.EmailConfig
}

// NewClient creates a new email client.
func NewClient(cfg config.EmailConfig) *Client {
	return &Client{cfg: cfg}
}

// Options represents the options for sending an email.
type Options struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

// Send sends an HTML+plaintext multipart email to a single recipient.
func (c *Client) Send(ctx context.Context, opts Options) error {
	// Strip CR/LF from subject to prevent header injection.
	subject := strings.NewReplacer("\r", "", "\n", "").Replace(opts.Subject)

	m := mail.NewMsg()
	if err := m.FromFormat("EduFlow", c.cfg.From); err != nil {
		return fmt.Errorf("email send: set from: %w", err)
	}
	if err := m.To(opts.To); err != nil {
		return fmt.Errorf("email send: set to: %w", err)
	}
	m.Subject(subject)
	m.SetBodyString(mail.TypeTextPlain, opts.Text)
	m.AddAlternativeString(mail.TypeTextHTML, c.wrapHTMLTemplate(opts.HTML))

	clientOpts := []mail.Option{
		mail.WithPort(c.cfg.Port),
	}
	if c.cfg.Username != "" {
		clientOpts = append(clientOpts, mail.WithSMTPAuth(mail.SMTPAuthPlain))
		clientOpts = append(clientOpts, mail.WithUsername(c.cfg.Username))
		clientOpts = append(clientOpts, mail.WithPassword(c.cfg.Password))
	}
	if c.cfg.UseTLS {
		clientOpts = append(clientOpts, mail.WithTLSPortPolicy(mail.TLSMandatory))
	} else {
		clientOpts = append(clientOpts, mail.WithTLSPortPolicy(mail.TLSOpportunistic))
	}

	client, err := mail.NewClient(c.cfg.Host, clientOpts...)
	if err != nil {
		return fmt.Errorf("email send: create client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("email send: %w", err)
	}
	return nil
}

// CourseUpdate builds the notification sent to subscribers when a course
// gains new material.
func CourseUpdate(courseTitle, lessonTitle string) (subject, html, text string) {
	subject = fmt.Sprintf("Course update: %s", courseTitle)
	html = fmt.Sprintf(
		"<p>The course <strong>%s</strong> has new material: <strong>%s</strong>.</p><p>Log in to check it out.</p>",
		template.HTMLEscapeString(courseTitle), template.HTMLEscapeString(lessonTitle),
	)
	text = fmt.Sprintf("The course %q has new material: %q. Log in to check it out.", courseTitle, lessonTitle)
	return subject, html, text
}

// Welcome builds the registration confirmation email.
func Welcome(firstName string) (subject, html, text string) {
	name := firstName
	if name == "" {
		name = "there"
	}
	subject = "Welcome to EduFlow"
	html = fmt.Sprintf("<p>Hi %s,</p><p>Your account is ready. Browse courses and subscribe to the ones you like.</p>", template.HTMLEscapeString(name))
	text = fmt.Sprintf("Hi %s, your account is ready. Browse courses and subscribe to the ones you like.", name)
	return subject, html, text
}

// wrapHTMLTemplate wraps the HTML content in the shared layout.
func (c *Client) wrapHTMLTemplate(content string) string {
	tmpl := `
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
</head>
<body style="margin: 0; padding: 0; font-family: Arial, sans-serif; background: #f9f9f9;">
    <div style="padding: 32px;">
        <div style="max-width: 600px; margin: auto; background: #fff; border-radius: 8px; box-shadow: 0 2px 8px #eee; padding: 32px;">
            <div style="text-align: center; margin-bottom: 24px;">
                <h2 style="color: #2a7ae2; margin: 0;">EduFlow Notification</h2>
            </div>
            <div style="font-size: 16px; color: #333;">
                {{.Content}}
            </div>
            <div style="margin-top: 32px; text-align: center; color: #aaa; font-size: 12px;">
                &copy; {{.Year}} EduFlow. All rights reserved.
            </div>
        </div>
    </div>
</body>
</html>
`

	t := template.Must(template.New("email").Parse(tmpl))
	var buf bytes.Buffer
	data := map[string]interface{}{
		"Content": template.HTML(content),
		"Year":    time.Now().Year(),
	}

	if err := t.Execute(&buf, data); err != nil {
		return content
	}

	return buf.String()
}
