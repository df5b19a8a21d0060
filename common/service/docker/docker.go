package docker

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"

	dockerclient "github.com/docker/docker/client"
	"github.com/spf13/afero"

	"github.com/cswni/mailstack/common/service/config"
	sshconn "github.com/cswni/mailstack/common/service/docker/conn"
	"github.com/cswni/mailstack/common/service/ssh"
	"github.com/cswni/mailstack/common/types/define"
	"github.com/spf13/cast"
)

var (
	Sdk = NewDefaultClient()
)

func NewDefaultClient() *Client {
	defaultDockerHost := dockerclient.DefaultDockerHost
	if e := os.Getenv(dockerclient.EnvOverrideHost); e != "" {
		defaultDockerHost = e
	}
	v, _ := NewClient(WithAddress(defaultDockerHost))
	return v
}

// NewClientWithConfig builds an engine client from the deployment config,
// honoring DOCKER_HOST urls (unix, tcp, ssh) and the TLS material paths.
func NewClientWithConfig(cfg *config.Config, opts ...Option) (*Client, error) {
	options := make([]Option, 0)
	address := cfg.DockerHost
	if address == "" {
		address = dockerclient.DefaultDockerHost
		if e := os.Getenv(dockerclient.EnvOverrideHost); e != "" {
			address = e
		}
	}
	if strings.HasPrefix(address, "ssh://") {
		serverInfo, err := parseSshUrl(address)
		if err != nil {
			return nil, err
		}
		options = append(options, WithSSH(serverInfo))
	} else {
		options = append(options, WithAddress(address))
		if cfg.DockerTlsCa != "" || cfg.DockerTlsCert != "" || cfg.DockerTlsKey != "" {
			options = append(options, WithTLS(cfg.DockerTlsCa, cfg.DockerTlsCert, cfg.DockerTlsKey))
		}
	}
	options = append(options, opts...)
	return NewClient(options...)
}

// InstallSdk replaces the package default client. Commands call it once
// after the config is loaded.
func InstallSdk(client *Client) {
	if Sdk != nil {
		Sdk.Close()
	}
	Sdk = client
}

func NewClient(opts ...Option) (*Client, error) {
	c := &Client{
		Name: define.DockerDefaultClientName,
		Option: []dockerclient.Opt{
			dockerclient.FromEnv,
			dockerclient.WithAPIVersionNegotiation(),
		},
	}

	for _, opt := range opts {
		err := opt(c)
		if err != nil {
			return nil, err
		}
	}

	if c.Ctx == nil {
		c.Ctx, c.CtxCancelFunc = context.WithCancel(context.Background())
	}

	obj, err := dockerclient.NewClientWithOpts(c.Option...)
	if err != nil {
		c.Close()
		return nil, err
	}
	c.Client = obj
	return c, nil
}

type Client struct {
	Name          string
	Address       string
	RemoteType    string
	Client        *dockerclient.Client
	Option        []dockerclient.Opt
	Ctx           context.Context
	CtxCancelFunc context.CancelFunc
	sshClient     *ssh.Client
}

func (self *Client) Close() {
	if self.CtxCancelFunc != nil {
		self.CtxCancelFunc()
	}
	if self.sshClient != nil {
		self.sshClient.Close()
	}
	if self.Client != nil {
		_ = self.Client.Close()
	}
}

// GetTryCtx returns a context for connectivity checks. Socket addresses are
// exempt from the dial timeout, some hosts start the daemon slowly.
func (self *Client) GetTryCtx() context.Context {
	if strings.HasSuffix(self.Address, "docker.sock") {
		return self.Ctx
	}
	tryCtx, _ := context.WithTimeout(self.Ctx, define.DockerConnectServerTimeout)
	return tryCtx
}

// SSHClient exposes the ssh connection for ssh:// engines, nil otherwise.
func (self *Client) SSHClient() *ssh.Client {
	return self.sshClient
}

// Fs exposes the filesystem of the engine host, local or over sftp for
// ssh:// engines. Scaffolding and cert install write through it.
func (self *Client) Fs() (afero.Fs, error) {
	if self.RemoteType == define.DockerRemoteTypeSSH && self.sshClient != nil {
		return self.sshClient.Fs()
	}
	return afero.NewOsFs(), nil
}

type Option func(builder *Client) error

func WithName(name string) Option {
	return func(self *Client) error {
		self.Name = name
		return nil
	}
}

func WithAddress(host string) Option {
	return func(self *Client) error {
		self.Address = host
		if strings.HasPrefix(host, "tcp://") {
			self.RemoteType = define.DockerRemoteTypeTcp
		} else {
			self.RemoteType = define.DockerRemoteTypeSock
		}
		self.Option = append(self.Option, dockerclient.WithHost(host))
		return nil
	}
}

func WithTLS(caPath, certPath, keyPath string) Option {
	return func(self *Client) error {
		if caPath == "" || certPath == "" || keyPath == "" {
			return errors.New("invalid TLS configuration, DOCKER_TLS_CA, DOCKER_TLS_CERT and DOCKER_TLS_KEY must all be set")
		}
		for _, path := range []string{caPath, certPath, keyPath} {
			if _, err := os.Stat(path); err != nil {
				return errors.New("cert file not found: " + path)
			}
		}
		self.Option = append(self.Option, dockerclient.WithTLSClientConfig(caPath, certPath, keyPath))
		return nil
	}
}

func WithSSH(serverInfo *ssh.ServerInfo) Option {
	return func(self *Client) error {
		sshClient, err := ssh.NewClient(ssh.WithServerInfo(serverInfo)...)
		if err != nil {
			return err
		}
		self.sshClient = sshClient
		self.Address = "ssh://" + serverInfo.Host
		self.RemoteType = define.DockerRemoteTypeSSH

		lock := sync.Mutex{}
		transport := &http.Transport{
			DisableKeepAlives: false,
			DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
				lock.Lock()
				opts := ssh.WithServerInfo(serverInfo)
				opts = append(opts, ssh.WithContext(ctx))
				opts = append(opts, ssh.WithTimeout(define.DockerConnectServerTimeout))
				dialClient, err := ssh.NewClient(opts...)
				lock.Unlock()
				if err != nil {
					return nil, err
				}
				return sshconn.New(dialClient, "docker", "system", "dial-stdio")
			},
		}
		self.Option = append(self.Option,
			dockerclient.WithHTTPClient(&http.Client{Transport: transport}),
			dockerclient.WithHost("http://docker.mailstack.localhost"),
		)
		return nil
	}
}

func parseSshUrl(address string) (*ssh.ServerInfo, error) {
	u, err := url.Parse(address)
	if err != nil {
		return nil, err
	}
	info := &ssh.ServerInfo{
		Host:     u.Hostname(),
		Port:     22,
		Username: u.User.Username(),
		AuthType: ssh.SshAuthTypeBasic,
	}
	if p := u.Port(); p != "" {
		info.Port = cast.ToInt(p)
	}
	if password, ok := u.User.Password(); ok {
		info.Password = password
	}
	if info.Username == "" {
		info.Username = "root"
	}
	return info, nil
}
