package config

import (
	"errors"
	"fmt"
	"net"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/cswni/mailstack/common/service/crontab"
	"golang.org/x/net/idna"
)

var (
	stackNameRule  = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*$`)
	minSecretChars = 12
)

// Validate checks every config invariant and reports all violations at once.
func (self Config) Validate() error {
	var errs error

	errs = errors.Join(errs, self.validateHostname())

	if _, err := time.LoadLocation(self.Timezone); err != nil {
		errs = errors.Join(errs, fmt.Errorf("TZ %q is not a valid timezone: %w", self.Timezone, err))
	}

	if !stackNameRule.MatchString(self.StackName) {
		errs = errors.Join(errs, fmt.Errorf("STACK_NAME %q must match %s", self.StackName, stackNameRule.String()))
	}

	if !filepath.IsAbs(self.DataRoot) {
		errs = errors.Join(errs, fmt.Errorf("DATA_ROOT %q must be an absolute path", self.DataRoot))
	}

	errs = errors.Join(errs, self.validateNetwork())
	errs = errors.Join(errs, self.validatePorts())
	errs = errors.Join(errs, self.validateSecrets())

	for _, san := range self.AdditionalSan {
		if _, err := idna.Lookup.ToASCII(san); err != nil {
			errs = errors.Join(errs, fmt.Errorf("ADDITIONAL_SAN entry %q is not a valid hostname: %w", san, err))
		}
	}

	if self.CertDays <= 0 {
		errs = errors.Join(errs, fmt.Errorf("CERT_DAYS must be positive, got %d", self.CertDays))
	}
	if self.CertRenewBeforeDays < 0 || self.CertRenewBeforeDays >= self.CertDays {
		errs = errors.Join(errs, fmt.Errorf("CERT_RENEW_BEFORE_DAYS %d must be shorter than CERT_DAYS %d", self.CertRenewBeforeDays, self.CertDays))
	}

	if self.UseWatchdog {
		// same parser the watchdog registers jobs with
		if _, err := crontab.NewParser().Parse(self.WatchdogInterval); err != nil {
			errs = errors.Join(errs, fmt.Errorf("WATCHDOG_INTERVAL %q: %w", self.WatchdogInterval, err))
		}
	}

	if self.DeployTimeout <= 0 {
		errs = errors.Join(errs, errors.New("DEPLOY_TIMEOUT must be positive"))
	}
	if self.ProbeRetries < 1 {
		errs = errors.Join(errs, errors.New("PROBE_RETRIES must be at least 1"))
	}
	if self.LogLines < 1 {
		errs = errors.Join(errs, errors.New("LOG_LINES must be at least 1"))
	}

	return errs
}

func (self Config) validateHostname() error {
	if self.Hostname == "" {
		return errors.New("MAILSTACK_HOSTNAME is required")
	}
	if net.ParseIP(self.Hostname) != nil {
		return fmt.Errorf("MAILSTACK_HOSTNAME %q must be a FQDN, not an IP address", self.Hostname)
	}
	if !strings.Contains(strings.Trim(self.Hostname, "."), ".") {
		return fmt.Errorf("MAILSTACK_HOSTNAME %q must be fully qualified (mail.example.org)", self.Hostname)
	}
	if _, err := idna.Lookup.ToASCII(self.Hostname); err != nil {
		return fmt.Errorf("MAILSTACK_HOSTNAME %q is not a valid hostname: %w", self.Hostname, err)
	}
	return nil
}

func (self Config) validateNetwork() error {
	var errs error

	if strings.Contains(self.IPv4Network, "/") {
		return fmt.Errorf("IPV4_NETWORK %q must be the first three octets only (e.g. 172.22.1), the /24 subnet is derived", self.IPv4Network)
	}
	if net.ParseIP(self.IPv4Network+".0") == nil || strings.Count(self.IPv4Network, ".") != 2 {
		errs = errors.Join(errs, fmt.Errorf("IPV4_NETWORK %q must be three dotted octets (e.g. 172.22.1)", self.IPv4Network))
	}

	if self.EnableIPv6 {
		if _, _, err := net.ParseCIDR(self.IPv6Network); err != nil {
			errs = errors.Join(errs, fmt.Errorf("IPV6_NETWORK %q: %w", self.IPv6Network, err))
		}
	}

	if self.NetworkName == "" {
		errs = errors.Join(errs, errors.New("NETWORK_NAME is required"))
	}
	if self.TraefikEnabled && self.TraefikNetwork == "" {
		errs = errors.Join(errs, errors.New("TRAEFIK_NETWORK is required when TRAEFIK_ENABLED=y"))
	}

	return errs
}

func (self Config) validatePorts() error {
	var errs error
	seen := make(map[int]string)
	for name, port := range self.Ports() {
		if port < 1 || port > 65535 {
			errs = errors.Join(errs, fmt.Errorf("%s %d is outside 1-65535", name, port))
			continue
		}
		if other, ok := seen[port]; ok {
			errs = errors.Join(errs, fmt.Errorf("%s and %s both use port %d", other, name, port))
		}
		seen[port] = name
	}
	for name, bind := range map[string]string{"HTTP_BIND": self.HttpBind, "HTTPS_BIND": self.HttpsBind} {
		if bind != "" && net.ParseIP(bind) == nil {
			errs = errors.Join(errs, fmt.Errorf("%s %q is not a valid IP address", name, bind))
		}
	}
	return errs
}

func (self Config) validateSecrets() error {
	var errs error
	for name, value := range map[string]string{
		"DBPASS":    self.DbPass,
		"DBROOT":    self.DbRoot,
		"REDISPASS": self.RedisPass,
		"API_KEY":   self.ApiKey,
	} {
		if value == "" {
			errs = errors.Join(errs, fmt.Errorf("%s is required, `mailstack config:init` generates one", name))
			continue
		}
		if len(value) < minSecretChars {
			errs = errors.Join(errs, fmt.Errorf("%s must be at least %d characters", name, minSecretChars))
		}
	}
	return errs
}
