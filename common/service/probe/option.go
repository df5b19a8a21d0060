package probe

import "time"

type Option func(self *Prober)

func WithTimeout(timeout time.Duration) Option {
	return func(self *Prober) {
		if timeout > 0 {
			self.timeout = timeout
		}
	}
}

func WithRetries(retries int) Option {
	return func(self *Prober) {
		if retries > 0 {
			self.retries = retries
		}
	}
}

func WithBackoff(backoff time.Duration) Option {
	return func(self *Prober) {
		if backoff > 0 {
			self.backoff = backoff
		}
	}
}
