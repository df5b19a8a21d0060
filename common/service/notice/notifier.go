package notice

import (
	"crypto/tls"
	"fmt"
	"log/slog"
	"net"
	"net/smtp"
	"strings"
	"time"

	"github.com/jordan-wright/email"
)

const subjectPrefix = "[mailstack]"

func New(opts ...Option) (*Notifier, error) {
	c := &Notifier{
		port:    587,
		timeout: 30 * time.Second,
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	if c.host == "" {
		return nil, fmt.Errorf("notifier requires a submission host")
	}
	if c.to == "" {
		return nil, fmt.Errorf("notifier requires a recipient address")
	}
	if c.from == "" {
		c.from = fmt.Sprintf("mailstack@%s", c.host)
	}
	return c, nil
}

type Notifier struct {
	host     string
	port     int
	from     string
	to       string
	username string
	password string
	timeout  time.Duration
}

func (self *Notifier) Error(title string, message ...string) error {
	return self.send("error", title, message)
}

func (self *Notifier) Warning(title string, message ...string) error {
	return self.send("warning", title, message)
}

func (self *Notifier) Success(title string, message ...string) error {
	return self.send("success", title, message)
}

func (self *Notifier) send(level, title string, message []string) error {
	e := email.NewEmail()
	e.From = self.from
	e.To = []string{self.to}
	e.Subject = fmt.Sprintf("%s %s: %s", subjectPrefix, level, title)
	body := strings.Join(message, "\n")
	if body == "" {
		body = title
	}
	e.Text = []byte(fmt.Sprintf("%s\n\nsent at %s\n", body, time.Now().Format(time.RFC1123)))

	var auth smtp.Auth
	if self.username != "" {
		auth = smtp.PlainAuth("", self.username, self.password, self.host)
	}
	// the stack's own submission endpoint normally still carries the
	// self-signed bootstrap certificate
	tlsConfig := &tls.Config{
		InsecureSkipVerify: true,
		ServerName:         self.host,
	}
	address := net.JoinHostPort(self.host, fmt.Sprintf("%d", self.port))
	// fail fast on an unreachable relay, the smtp library blocks far longer
	conn, err := net.DialTimeout("tcp", address, self.timeout)
	if err != nil {
		return err
	}
	_ = conn.Close()
	slog.Debug("notice send", "address", address, "to", self.to, "subject", e.Subject)
	return e.SendWithStartTLS(address, auth, tlsConfig)
}
