package notice

import (
	"fmt"
	"net/mail"
	"time"
)

type Option func(self *Notifier) error

func WithSubmission(host string, port int) Option {
	return func(self *Notifier) error {
		self.host = host
		if port > 0 {
			self.port = port
		}
		return nil
	}
}

func WithRecipient(address string) Option {
	return func(self *Notifier) error {
		if _, err := mail.ParseAddress(address); err != nil {
			return fmt.Errorf("invalid notify address %s: %w", address, err)
		}
		self.to = address
		return nil
	}
}

func WithSender(address string) Option {
	return func(self *Notifier) error {
		self.from = address
		return nil
	}
}

func WithAuth(username, password string) Option {
	return func(self *Notifier) error {
		self.username = username
		self.password = password
		return nil
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(self *Notifier) error {
		if timeout > 0 {
			self.timeout = timeout
		}
		return nil
	}
}
