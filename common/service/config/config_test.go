package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

const testEnvContent = `MAILSTACK_HOSTNAME=mail.example.org
DBPASS=db-pass-123456
DBROOT=db-root-123456
REDISPASS=redis-123456789
API_KEY=api-key-1234567890abcdef
SMTPS_PORT=10465
HOOK_PRE_DEPLOY=echo hello
`

func writeTestEnv(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mailstack.env")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	asserter := assert.New(t)

	cfg, err := Load(writeTestEnv(t, testEnvContent))
	asserter.NoError(err)
	asserter.Equal("mail.example.org", cfg.Hostname)

	// defaults fill everything the file leaves out
	asserter.Equal("mailstack", cfg.StackName)
	asserter.Equal("UTC", cfg.Timezone)
	asserter.Equal(25, cfg.SmtpPort)
	asserter.Equal(993, cfg.ImapsPort)
	asserter.Equal(time.Second*300, cfg.DeployTimeout)
	asserter.Equal(3, cfg.ProbeRetries)
	asserter.True(cfg.AutodiscoverSan)
	asserter.False(cfg.TraefikEnabled)

	// file values win over defaults
	asserter.Equal(10465, cfg.SmtpsPort)
	asserter.Equal("echo hello", cfg.HookPreDeploy)
}

func TestLoadMissingFile(t *testing.T) {
	asserter := assert.New(t)

	_, err := Load(filepath.Join(t.TempDir(), "does-not-exist.env"))
	asserter.Error(err)
	asserter.Contains(err.Error(), "config:init")
}

func validConfig() Config {
	return Config{
		Hostname:            "mail.example.org",
		Timezone:            "UTC",
		StackName:           "mailstack",
		DataRoot:            "/opt/mailstack/data",
		NetworkName:         "mailstack-net",
		IPv4Network:         "172.22.1",
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
		CertDays:            365,
		CertRenewBeforeDays: 30,
		DeployTimeout:       time.Second * 300,
		ProbeTimeout:        time.Second * 10,
		ProbeRetries:        3,
		LogLines:            200,
	}
}

func TestValidate(t *testing.T) {
	asserter := assert.New(t)

	asserter.NoError(validConfig().Validate())

	cfg := validConfig()
	cfg.Hostname = ""
	asserter.ErrorContains(cfg.Validate(), "MAILSTACK_HOSTNAME is required")

	cfg = validConfig()
	cfg.Hostname = "192.168.1.10"
	asserter.ErrorContains(cfg.Validate(), "not an IP address")

	cfg = validConfig()
	cfg.Hostname = "localhost"
	asserter.ErrorContains(cfg.Validate(), "fully qualified")

	cfg = validConfig()
	cfg.SmtpsPort = cfg.ImapPort
	asserter.ErrorContains(cfg.Validate(), "both use port")

	cfg = validConfig()
	cfg.HttpPort = 70000
	asserter.ErrorContains(cfg.Validate(), "outside 1-65535")

	cfg = validConfig()
	cfg.ApiKey = "short"
	asserter.ErrorContains(cfg.Validate(), "API_KEY must be at least")

	cfg = validConfig()
	cfg.IPv4Network = "172.22.1.0/24"
	asserter.ErrorContains(cfg.Validate(), "first three octets")

	cfg = validConfig()
	cfg.TraefikEnabled = true
	asserter.ErrorContains(cfg.Validate(), "TRAEFIK_NETWORK is required")

	cfg = validConfig()
	cfg.UseWatchdog = true
	cfg.WatchdogInterval = "not a schedule"
	asserter.ErrorContains(cfg.Validate(), "WATCHDOG_INTERVAL")

	cfg = validConfig()
	cfg.CertRenewBeforeDays = 400
	asserter.ErrorContains(cfg.Validate(), "CERT_RENEW_BEFORE_DAYS")

	cfg = validConfig()
	cfg.DataRoot = "relative/path"
	asserter.ErrorContains(cfg.Validate(), "absolute path")
}

func TestDomain(t *testing.T) {
	asserter := assert.New(t)

	asserter.Equal("example.org", Config{Hostname: "mail.example.org"}.Domain())
	asserter.Equal("my.example.org", Config{Hostname: "mail.my.example.org"}.Domain())
	asserter.Equal("example", Config{Hostname: "example"}.Domain())
}

func TestSubnet(t *testing.T) {
	asserter := assert.New(t)

	cfg := Config{IPv4Network: "172.22.1"}
	asserter.Equal("172.22.1.0/24", cfg.Subnet())
	asserter.Equal("172.22.1.1", cfg.Gateway())
}

func TestSanList(t *testing.T) {
	asserter := assert.New(t)

	cfg := validConfig()
	cfg.AutodiscoverSan = true
	cfg.AdditionalSan = []string{"webmail.example.org", "mail.example.org", ""}
	sans := cfg.SanList()
	asserter.Equal([]string{
		"mail.example.org",
		"autoconfig.example.org",
		"autodiscover.example.org",
		"webmail.example.org",
	}, sans)

	cfg.AutodiscoverSan = false
	cfg.AdditionalSan = nil
	asserter.Equal([]string{"mail.example.org"}, cfg.SanList())
}

func TestHashStable(t *testing.T) {
	asserter := assert.New(t)

	cfg := validConfig()
	first := cfg.Hash()
	asserter.Equal(first, cfg.Hash())

	cfg.SmtpPort = 2525
	asserter.NotEqual(first, cfg.Hash())
}

func TestMasked(t *testing.T) {
	asserter := assert.New(t)

	cfg := validConfig()
	masked := cfg.Masked()
	asserter.Equal("********", masked.DbPass)
	asserter.Equal("********", masked.ApiKey)
	asserter.Equal(cfg.Hostname, masked.Hostname)
	// the original stays intact
	asserter.Equal("db-pass-123456", cfg.DbPass)
}

func TestWriteExample(t *testing.T) {
	asserter := assert.New(t)

	path := filepath.Join(t.TempDir(), "mailstack.env")
	asserter.NoError(WriteExample(path, false))

	info, err := os.Stat(path)
	asserter.NoError(err)
	asserter.Equal(os.FileMode(0600), info.Mode().Perm())

	// the generated file loads and validates as-is
	cfg, err := Load(path)
	asserter.NoError(err)
	asserter.GreaterOrEqual(len(cfg.DbPass), minSecretChars)
	asserter.GreaterOrEqual(len(cfg.ApiKey), minSecretChars)

	err = WriteExample(path, false)
	asserter.ErrorContains(err, "already exists")
	asserter.NoError(WriteExample(path, true))
}

func TestYesNo(t *testing.T) {
	asserter := assert.New(t)

	for _, value := range []string{"y", "Y", "yes", "true", "1", "on", " y "} {
		asserter.True(yesNo(value), value)
	}
	for _, value := range []string{"", "n", "no", "false", "0", "off", "maybe"} {
		asserter.False(yesNo(value), value)
	}
}

func TestParseDuration(t *testing.T) {
	asserter := assert.New(t)

	asserter.Equal(time.Second*300, parseDuration("300s", time.Second))
	asserter.Equal(time.Minute*5, parseDuration("5m", time.Second))
	// bare numbers mean seconds
	asserter.Equal(time.Second*120, parseDuration("120", time.Second))
	asserter.Equal(time.Second*7, parseDuration("", time.Second*7))
	asserter.Equal(time.Second*7, parseDuration("garbage", time.Second*7))
}

func TestSplitList(t *testing.T) {
	asserter := assert.New(t)

	asserter.Empty(splitList(""))
	asserter.Equal([]string{"a.example.org", "b.example.org"}, splitList("a.example.org, b.example.org,"))
}
