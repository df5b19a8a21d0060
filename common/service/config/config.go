package config

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/cswni/mailstack/common/function"
)

// Config is the typed view of the mailstack.env schema. Values arrive from
// the env file with process environment overrides on top, defaults fill the
// rest.
type Config struct {
	Hostname  string
	Timezone  string
	StackName string
	DataRoot  string

	NetworkName string
	IPv4Network string
	EnableIPv6  bool  
	IPv6Network string

	DbName    string
	DbUser    string
	DbPass    string
	DbRoot    string
	RedisPass string
	ApiKey    string

	SmtpPort       int   
	SmtpsPort      int   
	SubmissionPort int   
	ImapPort       int   
	ImapsPort      int   
	PopPort        int   
	PopsPort       int   
	SievePort      int   
	HttpPort       int   
	HttpsPort      int   
	HttpBind       string
	HttpsBind      string

	AdditionalSan       []string
	AutodiscoverSan     bool    
	CertDays            int     
	CertRenewBeforeDays int     

	SkipClamd bool
	SkipSogo  bool

	TraefikEnabled      bool  
	TraefikNetwork      string
	TraefikEntrypoint   string
	TraefikCertResolver string

	DeployNodeHostname string       
	DeployTimeout      time.Duration
	ResolveImages      bool         

	DockerHost    string
	DockerTlsCa   string
	DockerTlsCert string
	DockerTlsKey  string

	ProbeTimeout time.Duration
	ProbeRetries int          
	SkipProbes   bool         

	UseWatchdog         bool  
	WatchdogInterval    string
	WatchdogNotifyEmail string

	HookPreDeploy  string
	HookPostDeploy string

	LogLines  int   
	StackFile string
	ImageTag  string
}

// Subnet derives the overlay subnet from the three-octet network prefix.
func (self Config) Subnet() string {
	return fmt.Sprintf("%s.0/24", self.IPv4Network)
}

func (self Config) Gateway() string {
	return fmt.Sprintf("%s.1", self.IPv4Network)
}

// Domain is the mail domain, everything after the first hostname label.
func (self Config) Domain() string {
	for i := 0; i < len(self.Hostname); i++ {
		if self.Hostname[i] == '.' {
			return self.Hostname[i+1:]
		}
	}
	return self.Hostname
}

// SanList returns every DNS name the certificate must cover, hostname first,
// without duplicates.
func (self Config) SanList() []string {
	result := []string{self.Hostname}
	if self.AutodiscoverSan {
		for _, prefix := range []string{"autoconfig", "autodiscover"} {
			name := fmt.Sprintf("%s.%s", prefix, self.Domain())
			if !function.InArray(result, name) {
				result = append(result, name)
			}
		}
	}
	for _, san := range self.AdditionalSan {
		if san != "" && !function.InArray(result, san) {
			result = append(result, san)
		}
	}
	return result
}

// RenewBefore is the remaining-validity threshold that triggers a renewal.
func (self Config) RenewBefore() time.Duration {
	return time.Duration(self.CertRenewBeforeDays) * 24 * time.Hour
}

func (self Config) Ports() map[string]int {
	return map[string]int{
		"SMTP_PORT":       self.SmtpPort,
		"SMTPS_PORT":      self.SmtpsPort,
		"SUBMISSION_PORT": self.SubmissionPort,
		"IMAP_PORT":       self.ImapPort,
		"IMAPS_PORT":      self.ImapsPort,
		"POP_PORT":        self.PopPort,
		"POPS_PORT":       self.PopsPort,
		"SIEVE_PORT":      self.SievePort,
		"HTTP_PORT":       self.HttpPort,
		"HTTPS_PORT":      self.HttpsPort,
	}
}

// EnvMap flattens the config back to the env schema for compose
// interpolation.
func (self Config) EnvMap() map[string]string {
	result := map[string]string{
		"MAILSTACK_HOSTNAME": self.Hostname,
		"TZ":                 self.Timezone,
		"STACK_NAME":         self.StackName,
		"DATA_ROOT":          self.DataRoot,
		"NETWORK_NAME":       self.NetworkName,
		"IPV4_NETWORK":       self.IPv4Network,
		"IPV6_NETWORK":       self.IPv6Network,
		"DBNAME":             self.DbName,
		"DBUSER":             self.DbUser,
		"DBPASS":             self.DbPass,
		"DBROOT":             self.DbRoot,
		"REDISPASS":          self.RedisPass,
		"API_KEY":            self.ApiKey,
		"HTTP_BIND":          self.HttpBind,
		"HTTPS_BIND":         self.HttpsBind,
		"IMAGE_TAG":          self.ImageTag,
	}
	for name, port := range self.Ports() {
		result[name] = strconv.Itoa(port)
	}
	return result
}

// Hash identifies the config in journal entries and stack labels, stable
// across map ordering.
func (self Config) Hash() string {
	env := self.EnvMap()
	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	content := ""
	for _, k := range keys {
		content += fmt.Sprintf("%s=%s\n", k, env[k])
	}
	return function.GetSha256([]byte(content))
}
