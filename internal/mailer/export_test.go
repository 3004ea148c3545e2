package mailer

import "net/smtp"

func (t *SMTPTransport) UseSendMail(fn func(addr string, a smtp.Auth, from string, to []string, msg []byte) error) {
	t.sendMail = fn
}
