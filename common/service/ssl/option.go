package ssl

import (
	"path/filepath"

	"github.com/spf13/afero"
)

type Option func(self *Builder) error

func WithHostname(hostname string) Option {
	return func(self *Builder) error {
		self.hostname = hostname
		return nil
	}
}

func WithSanList(sanList []string) Option {
	return func(self *Builder) error {
		self.sanList = sanList
		return nil
	}
}

func WithValidityDays(days int) Option {
	return func(self *Builder) error {
		if days > 0 {
			self.days = days
		}
		return nil
	}
}

// WithFs routes writes through another filesystem, the sftp one for remote
// engines.
func WithFs(fs afero.Fs) Option {
	return func(self *Builder) error {
		self.fs = fs
		return nil
	}
}

func WithSslPath(dir string) Option {
	return func(self *Builder) error {
		self.certPath = filepath.Join(dir, "cert.pem")
		self.keyPath = filepath.Join(dir, "key.pem")
		return nil
	}
}
