package config

import (
	"fmt"
	"os"

	"github.com/cswni/mailstack/common/function"
)

const exampleTemplate = `# mailstack deployment configuration
# Values here are interpolated into the stack descriptor and drive every
# deploy step. Process environment variables with the same names win.

# -------------------------------------------------
# Identity
# -------------------------------------------------
MAILSTACK_HOSTNAME=mail.example.org
TZ=UTC
STACK_NAME=mailstack
DATA_ROOT=/opt/mailstack/data

# -------------------------------------------------
# Network
# -------------------------------------------------
NETWORK_NAME=mailstack-net
# First three octets only, the overlay gets <prefix>.0/24
IPV4_NETWORK=172.22.1
ENABLE_IPV6=n
IPV6_NETWORK=fd4d:6169:6c73:7461::/64

# -------------------------------------------------
# Credentials (generated, keep them secret)
# -------------------------------------------------
DBNAME=mailstack
DBUSER=mailstack
DBPASS=%s
DBROOT=%s
REDISPASS=%s
API_KEY=%s

# -------------------------------------------------
# Ports
# -------------------------------------------------
SMTP_PORT=25
SMTPS_PORT=465
SUBMISSION_PORT=587
IMAP_PORT=143
IMAPS_PORT=993
POP_PORT=110
POPS_PORT=995
SIEVE_PORT=4190
HTTP_PORT=80
HTTPS_PORT=443
# Bind web ports to one interface, empty means all
HTTP_BIND=
HTTPS_BIND=

# -------------------------------------------------
# TLS
# -------------------------------------------------
ADDITIONAL_SAN=
AUTODISCOVER_SAN=y
CERT_DAYS=365
CERT_RENEW_BEFORE_DAYS=30

# -------------------------------------------------
# Components
# -------------------------------------------------
SKIP_CLAMD=n
SKIP_SOGO=n

# -------------------------------------------------
# Traefik
# -------------------------------------------------
TRAEFIK_ENABLED=n
TRAEFIK_NETWORK=traefik-public
TRAEFIK_ENTRYPOINT=websecure
TRAEFIK_CERT_RESOLVER=

# -------------------------------------------------
# Scheduling
# -------------------------------------------------
DEPLOY_NODE_HOSTNAME=
DEPLOY_TIMEOUT=300s
RESOLVE_IMAGES=y

# -------------------------------------------------
# Probes
# -------------------------------------------------
PROBE_TIMEOUT=10s
PROBE_RETRIES=3
SKIP_PROBES=n

# -------------------------------------------------
# Watchdog
# -------------------------------------------------
USE_WATCHDOG=n
WATCHDOG_INTERVAL=@every 5m
WATCHDOG_NOTIFY_EMAIL=

# -------------------------------------------------
# Hooks
# -------------------------------------------------
HOOK_PRE_DEPLOY=
HOOK_POST_DEPLOY=

# -------------------------------------------------
# Misc
# -------------------------------------------------
LOG_LINES=200
# Empty means the embedded stack descriptor
STACK_FILE=
IMAGE_TAG=latest
`

// WriteExample creates an env file with freshly generated secrets. An
// existing file is only replaced when force is set.
func WriteExample(path string, force bool) error {
	if function.FileExists(path) && !force {
		return fmt.Errorf("%s already exists, use --force to overwrite", path)
	}
	content := fmt.Sprintf(exampleTemplate,
		function.GetRandomPassword(24),
		function.GetRandomPassword(24),
		function.GetRandomPassword(24),
		function.GetRandomPassword(32),
	)
	return os.WriteFile(path, []byte(content), 0600)
}

// Masked returns a copy with secrets replaced so config:show output is safe
// to paste into tickets.
func (self Config) Masked() Config {
	masked := self
	for _, field := range []*string{&masked.DbPass, &masked.DbRoot, &masked.RedisPass, &masked.ApiKey} {
		if *field != "" {
			*field = "********"
		}
	}
	return masked
}
