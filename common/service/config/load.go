package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

var defaults = map[string]interface{}{
	"TZ":                     "UTC",
	"STACK_NAME":             "mailstack",
	"DATA_ROOT":              "/opt/mailstack/data",
	"NETWORK_NAME":           "mailstack-net",
	"IPV4_NETWORK":           "172.22.1",
	"ENABLE_IPV6":            "n",
	"IPV6_NETWORK":           "fd4d:6169:6c73:7461::/64",
	"DBNAME":                 "mailstack",
	"DBUSER":                 "mailstack",
	"SMTP_PORT":              25,
	"SMTPS_PORT":             465,
	"SUBMISSION_PORT":        587,
	"IMAP_PORT":              143,
	"IMAPS_PORT":             993,
	"POP_PORT":               110,
	"POPS_PORT":              995,
	"SIEVE_PORT":             4190,
	"HTTP_PORT":              80,
	"HTTPS_PORT":             443,
	"AUTODISCOVER_SAN":       "y",
	"CERT_DAYS":              365,
	"CERT_RENEW_BEFORE_DAYS": 30,
	"SKIP_CLAMD":             "n",
	"SKIP_SOGO":              "n",
	"TRAEFIK_ENABLED":        "n",
	"TRAEFIK_NETWORK":        "traefik-public",
	"TRAEFIK_ENTRYPOINT":     "websecure",
	"DEPLOY_TIMEOUT":         "300s",
	"RESOLVE_IMAGES":         "y",
	"PROBE_TIMEOUT":          "10s",
	"PROBE_RETRIES":          3,
	"SKIP_PROBES":            "n",
	"USE_WATCHDOG":           "n",
	"WATCHDOG_INTERVAL":      "@every 5m",
	"LOG_LINES":              200,
	"IMAGE_TAG":              "latest",
}

// Load reads the env file, lets process environment variables override it,
// fills defaults and validates the result.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("env")
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, statErr := os.Stat(path); statErr != nil {
			return nil, fmt.Errorf("env file %s not found, run `mailstack config:init` to create one: %w", path, statErr)
		}
		return nil, err
	}

	cfg := fromViper(v)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		Hostname:  v.GetString("MAILSTACK_HOSTNAME"),
		Timezone:  v.GetString("TZ"),
		StackName: v.GetString("STACK_NAME"),
		DataRoot:  v.GetString("DATA_ROOT"),

		NetworkName: v.GetString("NETWORK_NAME"),
		IPv4Network: v.GetString("IPV4_NETWORK"),
		EnableIPv6:  yesNo(v.GetString("ENABLE_IPV6")),
		IPv6Network: v.GetString("IPV6_NETWORK"),

		DbName:    v.GetString("DBNAME"),
		DbUser:    v.GetString("DBUSER"),
		DbPass:    v.GetString("DBPASS"),
		DbRoot:    v.GetString("DBROOT"),
		RedisPass: v.GetString("REDISPASS"),
		ApiKey:    v.GetString("API_KEY"),

		SmtpPort:       v.GetInt("SMTP_PORT"),
		SmtpsPort:      v.GetInt("SMTPS_PORT"),
		SubmissionPort: v.GetInt("SUBMISSION_PORT"),
		ImapPort:       v.GetInt("IMAP_PORT"),
		ImapsPort:      v.GetInt("IMAPS_PORT"),
		PopPort:        v.GetInt("POP_PORT"),
		PopsPort:       v.GetInt("POPS_PORT"),
		SievePort:      v.GetInt("SIEVE_PORT"),
		HttpPort:       v.GetInt("HTTP_PORT"),
		HttpsPort:      v.GetInt("HTTPS_PORT"),
		HttpBind:       v.GetString("HTTP_BIND"),
		HttpsBind:      v.GetString("HTTPS_BIND"),

		AdditionalSan:       splitList(v.GetString("ADDITIONAL_SAN")),
		AutodiscoverSan:     yesNo(v.GetString("AUTODISCOVER_SAN")),
		CertDays:            v.GetInt("CERT_DAYS"),
		CertRenewBeforeDays: v.GetInt("CERT_RENEW_BEFORE_DAYS"),

		SkipClamd: yesNo(v.GetString("SKIP_CLAMD")),
		SkipSogo:  yesNo(v.GetString("SKIP_SOGO")),

		TraefikEnabled:      yesNo(v.GetString("TRAEFIK_ENABLED")),
		TraefikNetwork:      v.GetString("TRAEFIK_NETWORK"),
		TraefikEntrypoint:   v.GetString("TRAEFIK_ENTRYPOINT"),
		TraefikCertResolver: v.GetString("TRAEFIK_CERT_RESOLVER"),

		DeployNodeHostname: v.GetString("DEPLOY_NODE_HOSTNAME"),
		DeployTimeout:      parseDuration(v.GetString("DEPLOY_TIMEOUT"), time.Second*300),
		ResolveImages:      yesNo(v.GetString("RESOLVE_IMAGES")),

		DockerHost:    v.GetString("DOCKER_HOST"),
		DockerTlsCa:   v.GetString("DOCKER_TLS_CA"),
		DockerTlsCert: v.GetString("DOCKER_TLS_CERT"),
		DockerTlsKey:  v.GetString("DOCKER_TLS_KEY"),

		ProbeTimeout: parseDuration(v.GetString("PROBE_TIMEOUT"), time.Second*10),
		ProbeRetries: v.GetInt("PROBE_RETRIES"),
		SkipProbes:   yesNo(v.GetString("SKIP_PROBES")),

		UseWatchdog:         yesNo(v.GetString("USE_WATCHDOG")),
		WatchdogInterval:    v.GetString("WATCHDOG_INTERVAL"),
		WatchdogNotifyEmail: v.GetString("WATCHDOG_NOTIFY_EMAIL"),

		HookPreDeploy:  v.GetString("HOOK_PRE_DEPLOY"),
		HookPostDeploy: v.GetString("HOOK_POST_DEPLOY"),

		LogLines:  v.GetInt("LOG_LINES"),
		StackFile: v.GetString("STACK_FILE"),
		ImageTag:  v.GetString("IMAGE_TAG"),
	}
}

func yesNo(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "y", "yes", "true", "1", "on":
		return true
	default:
		return false
	}
}

func splitList(value string) []string {
	if value == "" {
		return []string{}
	}
	result := make([]string, 0)
	for _, item := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func parseDuration(value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	// a plain number means seconds, the way the env file always wrote it
	if seconds, err := cast.ToIntE(value); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}
	return fallback
}
