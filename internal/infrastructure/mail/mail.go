package mail

import (
	"github.com/alimikegami/astromart/config"
	"github.com/alimikegami/astromart/pkg/utils"
	"github.com/rs/zerolog/log"
	"gopkg.in/gomail.v2"
)

type SMTPMailer struct {
	conf config.SMTPConfig
}

func CreateSMTPMailer(conf config.SMTPConfig) *SMTPMailer {
	return &SMTPMailer{conf: conf}
}

func (m *SMTPMailer) Send(message *gomail.Message) error {
	return utils.SendEmail(message, m.conf.Sender, m.conf.Password, m.conf.Server, m.conf.Port)
}

// LogMailer stands in when SMTP is not configured.
type LogMailer struct{}

func (LogMailer) Send(message *gomail.Message) error {
	log.Info().Str("component", "LogMailer").Strs("to", message.GetHeader("To")).Strs("subject", message.GetHeader("Subject")).Msg("email not sent, SMTP disabled")
	return nil
}
