package logic

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/cswni/mailstack/common/service/config"
)

func testConfig() *config.Config {
	return &config.Config{
		Hostname:            "mail.example.org",
		Timezone:            "UTC",
		StackName:           "mailstack",
		DataRoot:            "/opt/mailstack/data",
		NetworkName:         "mailstack-net",
		IPv4Network:         "172.22.1",
		DbName:              "mailstack",
		DbUser:              "mailstack",
		DbPass:              "db-pass-123456",
		DbRoot:              "db-root-123456",
		RedisPass:           "redis-123456789",
		ApiKey:              "api-key-1234567890abcdef",
		SmtpPort:            25,
		SmtpsPort:           465,
		SubmissionPort:      587,
		ImapPort:            143,
		ImapsPort:           993,
		PopPort:             110,
		PopsPort:            995,
		SievePort:           4190,
		HttpPort:            80,
		HttpsPort:           443,
		AutodiscoverSan:     true,
		CertDays:            365,
		CertRenewBeforeDays: 30,
		TraefikNetwork:      "traefik-public",
		TraefikEntrypoint:   "websecure",
		DeployTimeout:       time.Second * 300,
		ProbeTimeout:        time.Second * 10,
		ProbeRetries:        3,
		LogLines:            200,
		ImageTag:            "latest",
		StackFile:           "../../../asset/stack.yaml",
	}
}

func TestRenderStack(t *testing.T) {
	asserter := assert.New(t)

	wrapper, err := RenderStack(testConfig())
	asserter.NoError(err)
	asserter.Equal([]string{
		"clamd", "dovecot", "memcached", "mysql", "nginx",
		"postfix", "redis", "rspamd", "sogo", "unbound",
	}, wrapper.ServiceNames())

	service, ext, err := wrapper.GetService("postfix")
	asserter.NoError(err)
	asserter.Equal("ghcr.io/cswni/mailstack-postfix:latest", service.Image)
	asserter.True(ext.Required)
	asserter.Equal("mail.example.org", service.Hostname)

	// mail ports publish in host mode with the configured numbers
	asserter.Len(service.Ports, 3)
	asserter.Equal("25", service.Ports[0].Published)
	asserter.Equal("host", service.Ports[0].Mode)

	_, ext, err = wrapper.GetService("nginx")
	asserter.NoError(err)
	asserter.Equal(80, ext.TraefikPort)

	// the TLS material arrives as external stack secrets
	asserter.Contains(wrapper.Project.Secrets, "cert.pem")
	asserter.Contains(wrapper.Project.Secrets, "key.pem")
	asserter.True(bool(wrapper.Project.Secrets["cert.pem"].External))
	asserter.Contains(wrapper.Project.Configs, "nginx.conf")
}

func TestRenderStackSkips(t *testing.T) {
	asserter := assert.New(t)

	cfg := testConfig()
	cfg.SkipClamd = true
	cfg.SkipSogo = true

	wrapper, err := RenderStack(cfg)
	asserter.NoError(err)
	asserter.NotContains(wrapper.ServiceNames(), "clamd")
	asserter.NotContains(wrapper.ServiceNames(), "sogo")
	asserter.Contains(wrapper.ServiceNames(), "postfix")
}

func TestRenderStackMissingOverride(t *testing.T) {
	asserter := assert.New(t)

	cfg := testConfig()
	cfg.StackFile = "/does/not/exist.yaml"
	_, err := RenderStack(cfg)
	asserter.Error(err)
}

func TestActiveSkips(t *testing.T) {
	asserter := assert.New(t)

	cfg := testConfig()
	asserter.Empty(ActiveSkips(cfg))

	cfg.SkipClamd = true
	asserter.Equal([]string{"SKIP_CLAMD"}, ActiveSkips(cfg))

	cfg.SkipSogo = true
	asserter.Equal([]string{"SKIP_CLAMD", "SKIP_SOGO"}, ActiveSkips(cfg))
}
