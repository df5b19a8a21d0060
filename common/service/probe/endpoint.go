package probe

import (
	"github.com/cswni/mailstack/common/service/config"
)

// Endpoints derives the probe targets from the deployed stack config. Mail
// protocol ports are required, the web frontend stays optional because SoGo
// can be skipped and nginx may sit behind Traefik.
func Endpoints(cfg config.Config) []Endpoint {
	host := cfg.Hostname
	result := []Endpoint{
		{Name: "smtp", Protocol: ProtocolSmtp, Host: host, Port: cfg.SmtpPort, Required: true},
		{Name: "smtps", Protocol: ProtocolSmtps, Host: host, Port: cfg.SmtpsPort, Required: true},
		{Name: "submission", Protocol: ProtocolSmtp, Host: host, Port: cfg.SubmissionPort, Required: true},
		{Name: "imap", Protocol: ProtocolImap, Host: host, Port: cfg.ImapPort, Required: true},
		{Name: "imaps", Protocol: ProtocolImaps, Host: host, Port: cfg.ImapsPort, Required: true},
		{Name: "pop3", Protocol: ProtocolPop3, Host: host, Port: cfg.PopPort, Required: false},
		{Name: "pop3s", Protocol: ProtocolPop3s, Host: host, Port: cfg.PopsPort, Required: false},
	}
	if !cfg.TraefikEnabled {
		httpHost := host
		if cfg.HttpBind != "" && cfg.HttpBind != "0.0.0.0" {
			httpHost = cfg.HttpBind
		}
		httpsHost := host
		if cfg.HttpsBind != "" && cfg.HttpsBind != "0.0.0.0" {
			httpsHost = cfg.HttpsBind
		}
		result = append(result,
			Endpoint{Name: "http", Protocol: ProtocolHttp, Host: httpHost, Port: cfg.HttpPort, Required: false},
			Endpoint{Name: "https", Protocol: ProtocolHttps, Host: httpsHost, Port: cfg.HttpsPort, Required: false},
		)
	}
	return result
}
