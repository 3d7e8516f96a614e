package notify

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"github.com/wneessen/go-mail"
)

// MailerConfig holds SMTP delivery settings.
type MailerConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string

	// ResetURL is the front-end page that accepts ?token=. The token is
	// appended as a query parameter in both mail templates.
	ResetURL string
}

// Mailer sends notifications over SMTP.
type Mailer struct {
	cfg MailerConfig
}

func NewMailer(cfg MailerConfig) *Mailer {
	return &Mailer{cfg: cfg}
}

var invitationTmpl = template.Must(template.New("invitation").Parse(`
<p>Hi {{.FirstName}},</p>
<p>An account has been created for you. Click the link below to choose your
password and activate it. The link expires in one hour.</p>
<p><a href="{{.Link}}">Set your password</a></p>
<p>If you did not expect this email you can safely ignore it.</p>
`))

var resetTmpl = template.Must(template.New("reset").Parse(`
<p>Hi {{.FirstName}},</p>
<p>We received a request to reset your password. Click the link below to
choose a new one. The link expires in one hour.</p>
<p><a href="{{.Link}}">Reset your password</a></p>
<p>If you did not request this, you can safely ignore this email.</p>
`))

func (m *Mailer) SendInvitation(ctx context.Context, email, token, firstName string) error {
	return m.send(ctx, email, "Activate your account", invitationTmpl, token, firstName)
}

func (m *Mailer) SendReset(ctx context.Context, email, token, firstName string) error {
	return m.send(ctx, email, "Reset your password", resetTmpl, token, firstName)
}

func (m *Mailer) send(ctx context.Context, email, subject string, tmpl *template.Template, token, firstName string) error {
	var body bytes.Buffer
	err := tmpl.Execute(&body, struct {
		FirstName string
		Link      string
	}{
		FirstName: firstName,
		Link:      fmt.Sprintf("%s?token=%s", m.cfg.ResetURL, token),
	})
	if err != nil {
		return fmt.Errorf("render mail body: %w", err)
	}

	msg := mail.NewMsg()
	if err := msg.From(m.cfg.From); err != nil {
		return fmt.Errorf("set mail from: %w", err)
	}
	if err := msg.To(email); err != nil {
		return fmt.Errorf("set mail to: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextHTML, body.String())

	client, err := mail.NewClient(m.cfg.Host,
		mail.WithPort(m.cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(m.cfg.Username),
		mail.WithPassword(m.cfg.Password),
	)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	return nil
}
