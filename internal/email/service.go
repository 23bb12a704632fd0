package email

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/rodhonsys/saude-escolar-api/internal/config"
)

type Service interface {
	SendPasswordReset(ctx context.Context, to, name, resetLink string) error
	SendWelcome(ctx context.Context, to, name, tempPassword string) error
	SendCustom(ctx context.Context, to, subject, content string) error
}

type smtpService struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPService(cfg config.SMTPConfig) Service {
	return &smtpService{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

func (s *smtpService) SendPasswordReset(ctx context.Context, to, name, resetLink string) error {
	body := fmt.Sprintf(
		"<p>Olá %s,</p><p>Recebemos um pedido de redefinição de senha. "+
			"O link abaixo expira em 30 minutos:</p><p><a href=%q>Redefinir senha</a></p>"+
			"<p>Se você não solicitou, ignore esta mensagem.</p>",
		name, resetLink,
	)
	return s.send(ctx, to, "Redefinição de senha", body)
}

func (s *smtpService) SendWelcome(ctx context.Context, to, name, tempPassword string) error {
	body := fmt.Sprintf(
		"<p>Olá %s,</p><p>Sua conta foi criada. Senha provisória: <b>%s</b></p>"+
			"<p>No primeiro acesso será solicitada a senha definitiva.</p>",
		name, tempPassword,
	)
	return s.send(ctx, to, "Bem-vindo ao sistema de saúde escolar", body)
}

func (s *smtpService) SendCustom(ctx context.Context, to, subject, content string) error {
	return s.send(ctx, to, subject, content)
}

func (s *smtpService) send(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}
	return nil
}
