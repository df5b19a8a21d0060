package ssh

import (
	"context"
	"time"

	"github.com/pkg/sftp"
	"github.com/spf13/afero"
	"github.com/spf13/afero/sftpfs"
	"golang.org/x/crypto/ssh"
)

func NewClient(opt ...Option) (*Client, error) {
	c := &Client{
		sshClientConfig: &ssh.ClientConfig{
			Timeout: time.Second * 10,
		},
	}
	var err error
	c.sshClientConfig.HostKeyCallback = NewDefaultKnownHostCallback().Handler

	for _, option := range opt {
		err = option(c)
		if err != nil {
			return nil, err
		}
	}
	if c.ctx == nil {
		c.ctx, c.ctxCancel = context.WithCancel(context.Background())
	}
	c.Conn, err = ssh.Dial(c.protocol, c.address, c.sshClientConfig)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (self *Client) Ctx() context.Context {
	return self.ctx
}

func (self *Client) NewSession() (*ssh.Session, error) {
	return self.Conn.NewSession()
}

// Sftp opens an sftp subsystem session on the connection. The caller owns
// the returned client.
func (self *Client) Sftp() (*sftp.Client, error) {
	return sftp.NewClient(self.Conn)
}

// Fs exposes the remote host through afero so scaffolding and cert install
// run the same code path locally and over ssh.
func (self *Client) Fs() (afero.Fs, error) {
	sftpClient, err := self.Sftp()
	if err != nil {
		return nil, err
	}
	return sftpfs.New(sftpClient), nil
}

func (self *Client) Close() {
	if self.ctxCancel != nil {
		self.ctxCancel()
	}
	if self.Conn != nil {
		_ = self.Conn.Close()
	}
}
