// Package notify delivers best-effort outbound notifications: account
// mail over SMTP and JSON webhooks to an operator-configured endpoint.
package notify

import (
	"fmt"
	"time"

	"github.com/guonaihong/gout"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"github.com/lacarte-io/lacarte/config"
	"github.com/lacarte-io/lacarte/internal/settings"
	"github.com/lacarte-io/lacarte/pkg/common"
)

type Service struct {
	smtp     config.SmtpConfig
	settings *settings.Manager
}

func NewService(smtp config.SmtpConfig, mgr *settings.Manager) *Service {
	return &Service{smtp: smtp, settings: mgr}
}

func (s *Service) send(to, subject, body string) error {
	if common.IsEmptyOrNA(s.smtp.Host) {
		return fmt.Errorf("smtp not configured")
	}
	m := gomail.NewMessage()
	m.SetHeader("From", s.smtp.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	d := gomail.NewDialer(s.smtp.Host, s.smtp.Port, s.smtp.Username, s.smtp.Password)
	return d.DialAndSend(m)
}

func (s *Service) siteName() string {
	name := s.settings.LocalizedText("site", "Title", "")
	if name == "" {
		name = "lacarte"
	}
	return name
}

func (s *Service) Welcome(email, name string) error {
	site := s.siteName()
	subject := fmt.Sprintf("Bienvenue chez %s", site)
	body := fmt.Sprintf(
		"<p>Bonjour %s,</p><p>Votre compte %s est pr&ecirc;t. Bon app&eacute;tit !</p>",
		name, site)
	return s.send(email, subject, body)
}

func (s *Service) PasswordReset(email, token string) error {
	base := s.settings.GetString("site", "PublicURL")
	link := fmt.Sprintf("%s/reset-password?token=%s", base, token)
	subject := fmt.Sprintf("Réinitialisation de votre mot de passe - %s", s.siteName())
	body := fmt.Sprintf(
		"<p>Pour choisir un nouveau mot de passe, suivez ce lien (valable 30 minutes) :</p><p><a href=%q>%s</a></p>",
		link, link)
	return s.send(email, subject, body)
}

// Event posts a JSON webhook when analytics.WebhookURL is configured.
// Each delivery carries a random event id and a salted digest of
// id+event in X-Lacarte-Signature so the receiver can verify the
// sender. Fire-and-forget: failures are logged, never returned.
func (s *Service) Event(name string, payload map[string]interface{}) {
	url := s.settings.GetString("analytics", "WebhookURL")
	if common.IsEmptyOrNA(url) {
		return
	}
	go func() {
		defer func() {
			if err := recover(); err != nil {
				zap.S().Error("webhook panic: ", err)
			}
		}()
		eventID := common.RandomToken(16)
		var code int
		err := gout.POST(url).
			SetTimeout(5 * time.Second).
			SetHeader(gout.H{
				"X-Lacarte-Signature": common.Sha256HashWithSalt(eventID+name, common.GetSecretSalt()),
			}).
			SetJSON(gout.H{
				"id":      eventID,
				"event":   name,
				"payload": payload,
				"sent_at": time.Now().Format(time.RFC3339),
			}).
			Code(&code).
			Do()
		if err != nil || code >= 400 {
			zap.L().Warn("webhook delivery failed",
				zap.String("event", name), zap.Int("status", code), zap.Error(err))
		}
	}()
}
