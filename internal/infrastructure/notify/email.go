// Package notify contiene los adaptadores de salida del canal de notificaciones.
package notify

import (
	"context"
	"fmt"
	"html"
	"strings"

	"gopkg.in/gomail.v2"

	appnotify "github.com/jhoicas/materiales-api/internal/application/notify"
)

// EmailConfig servidor SMTP.
type EmailConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

// mailSender abstrae el envío para poder sustituirlo en tests.
type mailSender interface {
	DialAndSend(m ...*gomail.Message) error
}

// EmailNotifier envía cada evento como correo a sus destinatarios.
type EmailNotifier struct {
	from   string
	sender mailSender
}

// NewEmailNotifier construye el notifier sobre gomail.
func NewEmailNotifier(cfg EmailConfig) *EmailNotifier {
	return &EmailNotifier{
		from:   cfg.From,
		sender: gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password),
	}
}

// Notify implementa notify.Notifier. Un evento sin destinatarios no genera correo.
func (n *EmailNotifier) Notify(ctx context.Context, ev appnotify.Event) error {
	to := recipients(ev.Recipients)
	if len(to) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	m := gomail.NewMessage()
	m.SetHeader("From", n.from)
	m.SetHeader("To", to...)
	m.SetHeader("Subject", ev.Subject)
	m.SetBody("text/plain", plainBody(ev))
	m.AddAlternative("text/html", htmlBody(ev))
	if err := n.sender.DialAndSend(m); err != nil {
		return fmt.Errorf("smtp: %w", err)
	}
	return nil
}

func recipients(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, r := range in {
		r = strings.TrimSpace(r)
		key := strings.ToLower(r)
		if r == "" || !strings.Contains(r, "@") || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, r)
	}
	return out
}

func plainBody(ev appnotify.Event) string {
	var b strings.Builder
	b.WriteString(ev.Message)
	b.WriteString("\n\n")
	if ev.Actor != "" {
		fmt.Fprintf(&b, "Usuario: %s\n", ev.Actor)
	}
	fmt.Fprintf(&b, "Fecha: %s\n", ev.OccurredAt.Format("02/01/2006 15:04"))
	return b.String()
}

func htmlBody(ev appnotify.Event) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<h3>%s</h3><p>%s</p>", html.EscapeString(ev.Subject), html.EscapeString(ev.Message))
	if ev.Actor != "" {
		fmt.Fprintf(&b, "<p><small>Usuario: %s</small></p>", html.EscapeString(ev.Actor))
	}
	fmt.Fprintf(&b, "<p><small>%s</small></p>", ev.OccurredAt.Format("02/01/2006 15:04"))
	return b.String()
}
