package probe

import (
	"context"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// bannerListener answers every connection with one greeting line.
func bannerListener(t *testing.T, banner string) Endpoint {
	t.Helper()
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		_ = listener.Close()
	})
	go func() {
		for {
			conn, err := listener.Accept()
			if err != nil {
				return
			}
			_, _ = conn.Write([]byte(banner))
			_ = conn.Close()
		}
	}()
	_, portRaw, _ := net.SplitHostPort(listener.Addr().String())
	port, _ := strconv.Atoi(portRaw)
	return Endpoint{Name: "test", Protocol: ProtocolSmtp, Host: "127.0.0.1", Port: port, Required: true}
}

func fastProber() *Prober {
	return New(WithTimeout(2*time.Second), WithRetries(1), WithBackoff(10*time.Millisecond))
}

func TestAddress(t *testing.T) {
	asserter := assert.New(t)

	endpoint := Endpoint{Host: "mail.example.org", Port: 465}
	asserter.Equal("mail.example.org:465", endpoint.Address())
}

func TestExpectedBanner(t *testing.T) {
	asserter := assert.New(t)

	asserter.True(expectedBanner(ProtocolSmtp, "220 mail.example.org ESMTP Postfix\r\n"))
	asserter.True(expectedBanner(ProtocolSmtps, "220-mail.example.org ESMTP\r\n"))
	asserter.False(expectedBanner(ProtocolSmtp, "554 go away\r\n"))

	asserter.True(expectedBanner(ProtocolImap, "* OK [CAPABILITY IMAP4rev1] Dovecot ready.\r\n"))
	asserter.False(expectedBanner(ProtocolImap, "* BYE\r\n"))

	asserter.True(expectedBanner(ProtocolPop3, "+OK Dovecot ready.\r\n"))
	asserter.False(expectedBanner(ProtocolPop3, "-ERR\r\n"))

	asserter.False(expectedBanner("unknown", "220 hi\r\n"))
}

func TestRunSmtpGreeting(t *testing.T) {
	asserter := assert.New(t)

	endpoint := bannerListener(t, "220 mail.example.org ESMTP Postfix\r\n")
	report := fastProber().Run(context.Background(), []Endpoint{endpoint})

	asserter.True(report.Ok())
	asserter.Empty(report.Failed())
	asserter.Len(report.Results, 1)
	asserter.Equal(1, report.Results[0].Attempts)
	asserter.Greater(report.Results[0].Latency, time.Duration(0))
}

func TestRunWrongGreeting(t *testing.T) {
	asserter := assert.New(t)

	endpoint := bannerListener(t, "554 not today\r\n")
	report := fastProber().Run(context.Background(), []Endpoint{endpoint})

	asserter.False(report.Ok())
	failed := report.Failed()
	asserter.Len(failed, 1)
	asserter.Contains(failed[0].Message, "unexpected greeting")
}

func TestRunConnectionRefused(t *testing.T) {
	asserter := assert.New(t)

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	asserter.NoError(err)
	_, portRaw, _ := net.SplitHostPort(listener.Addr().String())
	port, _ := strconv.Atoi(portRaw)
	asserter.NoError(listener.Close())

	endpoint := Endpoint{Name: "down", Protocol: ProtocolSmtp, Host: "127.0.0.1", Port: port, Required: true}
	prober := New(WithTimeout(time.Second), WithRetries(2), WithBackoff(time.Millisecond))
	report := prober.Run(context.Background(), []Endpoint{endpoint})

	asserter.False(report.Ok())
	asserter.Equal(2, report.Results[0].Attempts)
}

func TestOptionalFailureDoesNotFailReport(t *testing.T) {
	asserter := assert.New(t)

	ok := bannerListener(t, "220 mail.example.org ESMTP\r\n")
	down := Endpoint{Name: "pop3", Protocol: ProtocolPop3, Host: "127.0.0.1", Port: 1, Required: false}

	report := fastProber().Run(context.Background(), []Endpoint{ok, down})
	asserter.True(report.Ok())
	asserter.Len(report.Failed(), 1)
}

func TestRunRespectsContext(t *testing.T) {
	asserter := assert.New(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	endpoint := Endpoint{Name: "down", Protocol: ProtocolSmtp, Host: "127.0.0.1", Port: 1, Required: true}
	prober := New(WithTimeout(time.Second), WithRetries(5), WithBackoff(time.Hour))
	report := prober.Run(ctx, []Endpoint{endpoint})

	asserter.False(report.Ok())
	asserter.Equal(1, report.Results[0].Attempts)
}
