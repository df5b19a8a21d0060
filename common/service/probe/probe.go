package probe

import (
	"bufio"
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"
)

const (
	ProtocolSmtp  = "smtp"
	ProtocolSmtps = "smtps"
	ProtocolImap  = "imap"
	ProtocolImaps = "imaps"
	ProtocolPop3  = "pop3"
	ProtocolPop3s = "pop3s"
	ProtocolHttp  = "http"
	ProtocolHttps = "https"
)

type Endpoint struct {
	Name     string `json:"name"`
	Protocol string `json:"protocol"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	// Required failures fail the whole report, optional ones only warn.
	Required bool `json:"required"`
}

func (self Endpoint) Address() string {
	return net.JoinHostPort(self.Host, fmt.Sprintf("%d", self.Port))
}

type Result struct {
	Endpoint Endpoint      `json:"endpoint"`
	Ok       bool          `json:"ok"`
	Attempts int           `json:"attempts"`
	Latency  time.Duration `json:"latency"`
	Message  string        `json:"message,omitempty"`
}

type Report struct {
	Results   []Result  `json:"results"`
	StartedAt time.Time `json:"startedAt"`
}

// Ok reports whether every required endpoint answered.
func (self Report) Ok() bool {
	for _, result := range self.Results {
		if result.Endpoint.Required && !result.Ok {
			return false
		}
	}
	return true
}

func (self Report) Failed() []Result {
	failed := make([]Result, 0)
	for _, result := range self.Results {
		if !result.Ok {
			failed = append(failed, result)
		}
	}
	return failed
}

func New(opts ...Option) *Prober {
	c := &Prober{
		timeout: 10 * time.Second,
		retries: 3,
		backoff: 2 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type Prober struct {
	timeout time.Duration
	retries int
	backoff time.Duration
}

// Run checks every endpoint with retries and linear backoff between
// attempts.
func (self *Prober) Run(ctx context.Context, endpoints []Endpoint) Report {
	report := Report{
		Results:   make([]Result, 0, len(endpoints)),
		StartedAt: time.Now(),
	}
	for _, endpoint := range endpoints {
		report.Results = append(report.Results, self.check(ctx, endpoint))
	}
	return report
}

func (self *Prober) check(ctx context.Context, endpoint Endpoint) Result {
	result := Result{Endpoint: endpoint}
	var lastErr error
	for attempt := 1; attempt <= self.retries; attempt++ {
		result.Attempts = attempt
		started := time.Now()
		err := self.checkOnce(ctx, endpoint)
		result.Latency = time.Since(started)
		if err == nil {
			result.Ok = true
			return result
		}
		lastErr = err
		slog.Debug("probe attempt failed", "endpoint", endpoint.Name, "attempt", attempt, "err", err)
		select {
		case <-ctx.Done():
			result.Message = ctx.Err().Error()
			return result
		case <-time.After(self.backoff * time.Duration(attempt)):
		}
	}
	if lastErr != nil {
		result.Message = lastErr.Error()
	}
	return result
}

func (self *Prober) checkOnce(ctx context.Context, endpoint Endpoint) error {
	switch endpoint.Protocol {
	case ProtocolHttp, ProtocolHttps:
		return self.checkHttp(ctx, endpoint)
	case ProtocolSmtp, ProtocolImap, ProtocolPop3:
		return self.checkBanner(ctx, endpoint, false)
	case ProtocolSmtps, ProtocolImaps, ProtocolPop3s:
		return self.checkBanner(ctx, endpoint, true)
	default:
		return fmt.Errorf("unknown probe protocol %q", endpoint.Protocol)
	}
}

func (self *Prober) checkBanner(ctx context.Context, endpoint Endpoint, useTls bool) error {
	dialer := &net.Dialer{Timeout: self.timeout}
	var conn net.Conn
	var err error
	if useTls {
		// the stack ships self-signed until the operator installs real
		// certs, verification happens in the cert module instead
		tlsDialer := &tls.Dialer{
			NetDialer: dialer,
			Config:    &tls.Config{InsecureSkipVerify: true},
		}
		conn, err = tlsDialer.DialContext(ctx, "tcp", endpoint.Address())
	} else {
		conn, err = dialer.DialContext(ctx, "tcp", endpoint.Address())
	}
	if err != nil {
		return err
	}
	defer func() {
		_ = conn.Close()
	}()

	_ = conn.SetReadDeadline(time.Now().Add(self.timeout))
	line, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil {
		return fmt.Errorf("read greeting: %w", err)
	}
	if !expectedBanner(endpoint.Protocol, line) {
		return fmt.Errorf("unexpected greeting %q", strings.TrimSpace(line))
	}
	return nil
}

func expectedBanner(protocol, line string) bool {
	switch protocol {
	case ProtocolSmtp, ProtocolSmtps:
		return strings.HasPrefix(line, "220 ") || strings.HasPrefix(line, "220-")
	case ProtocolImap, ProtocolImaps:
		return strings.HasPrefix(line, "* OK")
	case ProtocolPop3, ProtocolPop3s:
		return strings.HasPrefix(line, "+OK")
	default:
		return false
	}
}

func (self *Prober) checkHttp(ctx context.Context, endpoint Endpoint) error {
	client := &http.Client{
		Timeout: self.timeout,
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		},
	}
	requestCtx, cancel := context.WithTimeout(ctx, self.timeout)
	defer cancel()
	url := fmt.Sprintf("%s://%s/", schemeOf(endpoint.Protocol), endpoint.Address())
	request, err := http.NewRequestWithContext(requestCtx, "GET", url, nil)
	if err != nil {
		return err
	}
	response, err := client.Do(request)
	if err != nil {
		return err
	}
	defer func() {
		_ = response.Body.Close()
	}()
	if response.StatusCode >= 500 {
		return fmt.Errorf("%s answered %s", url, response.Status)
	}
	return nil
}

func schemeOf(protocol string) string {
	if protocol == ProtocolHttps {
		return "https"
	}
	return "http"
}
