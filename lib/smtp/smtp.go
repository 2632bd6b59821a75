package smtp

import (
	"fmt"
	"strings"

	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"
	log "github.com/sirupsen/logrus"
)

var Instance Provider

type Provider interface {
	IsConfigured() bool
	SendEMail(to, subject, message string) error
}

func Connect(user, password, host, port, from string, tlsEnabled bool) error {
	if from == "" {
		from = user
	}
	Instance = &impl{
		user:       user,
		password:   password,
		host:       host,
		port:       port,
		from:       from,
		tlsEnabled: tlsEnabled,
	}
	return nil
}

type impl struct {
	user       string
	password   string
	host       string
	port       string
	from       string
	tlsEnabled bool
}

func (i impl) IsConfigured() bool {
	return i.user != "" && i.host != "" && i.port != ""
}

func (i impl) SendEMail(to, subject, message string) (err error) {
	logger := log.WithField("recipient", to)
	if !i.IsConfigured() {
		logger.Debug("email skipped, smtp is not configured")
		return nil
	}
	auth := sasl.NewPlainClient("", i.user, i.password)
	mimeHeaders := "MIME-version: 1.0;\r\nContent-Type: text/plain; charset=\"UTF-8\";\r\n"
	body := strings.NewReader(fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: Tasks - %s\r\n%s\r\n%s\r\n", i.from, to, subject, mimeHeaders, message))
	addr := i.host + ":" + i.port
	if i.tlsEnabled {
		err = smtp.SendMailTLS(addr, auth, i.from, []string{to}, body)
	} else {
		err = smtp.SendMail(addr, auth, i.from, []string{to}, body)
	}
	if err != nil {
		logger.WithError(err).Error("unable to send email")
		return err
	}
	logger.Info("email sent")
	return nil
}
