package mailer

import (
	"fmt"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// Mailer delivers outbound messages. Sends are queued and never block or
// fail the request that triggered them; delivery errors are logged.
type Mailer interface {
	SendPasswordReset(toEmail, toName, resetURL string)
	SendInvite(toEmail, inviterName, inviteURL string)
	Close()
}

// Options configures the SMTP transport and sender identity.
type Options struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type smtpMailer struct {
	dialer *gomail.Dialer
	from   string
	queue  chan *gomail.Message
	done   chan struct{}
	logger *zap.Logger
}

// NewSMTPMailer creates a mailer delivering through one SMTP account. A
// single worker goroutine drains the queue until Close is called.
func NewSMTPMailer(o Options, logger *zap.Logger) Mailer {
	m := &smtpMailer{
		dialer: gomail.NewDialer(o.Host, o.Port, o.Username, o.Password),
		from:   o.From,
		queue:  make(chan *gomail.Message, 100),
		done:   make(chan struct{}),
		logger: logger,
	}

	go m.worker()

	return m
}

// worker drains queued messages over a single SMTP connection, redialing
// when the server has dropped it between sends.
func (m *smtpMailer) worker() {
	defer close(m.done)

	var sender gomail.SendCloser
	for msg := range m.queue {
		var err error
		if sender == nil {
			if sender, err = m.dialer.Dial(); err != nil {
				m.logger.Error("smtp dial failed", zap.Error(err))
				sender = nil
				continue
			}
		}
		if err = gomail.Send(sender, msg); err != nil {
			m.logger.Error("mail send failed",
				zap.Strings("to", msg.GetHeader("To")),
				zap.Error(err))
			_ = sender.Close()
			sender = nil
		}
	}
	if sender != nil {
		_ = sender.Close()
	}
}

// Close stops accepting new mail and waits for the queue to drain.
func (m *smtpMailer) Close() {
	close(m.queue)
	<-m.done
}

func (m *smtpMailer) enqueue(msg *gomail.Message) {
	select {
	case m.queue <- msg:
	default:
		m.logger.Warn("mail queue full, dropping message",
			zap.Strings("to", msg.GetHeader("To")))
	}
}

func (m *smtpMailer) SendPasswordReset(toEmail, toName, resetURL string) {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetAddressHeader("To", toEmail, toName)
	msg.SetHeader("Subject", "Reset your password")
	msg.SetBody("text/plain", fmt.Sprintf(
		"Hello %s,\n\n"+
			"We received a request to reset your password. Open the link below to choose a new one. "+
			"The link expires shortly and can be used once.\n\n%s\n\n"+
			"If you did not request this, you can ignore this message.\n",
		toName, resetURL))
	m.enqueue(msg)
}

func (m *smtpMailer) SendInvite(toEmail, inviterName, inviteURL string) {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", toEmail)
	msg.SetHeader("Subject", fmt.Sprintf("%s invited you to join", inviterName))
	msg.SetBody("text/plain", fmt.Sprintf(
		"Hello,\n\n"+
			"%s invited you to create an account. Open the link below to accept the invitation:\n\n%s\n\n"+
			"The invitation expires; if the link no longer works, ask for a new one.\n",
		inviterName, inviteURL))
	m.enqueue(msg)
}
