package ssl

import (
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
)

func testBuilder(t *testing.T, fs afero.Fs, opts ...Option) *Builder {
	t.Helper()
	opts = append([]Option{
		WithHostname("mail.example.org"),
		WithSanList([]string{"autoconfig.example.org", "autodiscover.example.org"}),
		WithValidityDays(365),
		WithFs(fs),
		WithSslPath("/data/assets/ssl"),
	}, opts...)
	builder, err := New(opts...)
	if err != nil {
		t.Fatal(err)
	}
	return builder
}

func TestNewRequiresHostname(t *testing.T) {
	asserter := assert.New(t)

	_, err := New(WithFs(afero.NewMemMapFs()))
	asserter.ErrorContains(err, "hostname")
}

func TestGenerate(t *testing.T) {
	asserter := assert.New(t)

	fs := afero.NewMemMapFs()
	builder := testBuilder(t, fs)

	cert, err := builder.Generate()
	asserter.NoError(err)
	asserter.Equal("mail.example.org", cert.Subject.CommonName)
	asserter.Contains(cert.DNSNames, "mail.example.org")
	asserter.Contains(cert.DNSNames, "autoconfig.example.org")
	asserter.Contains(cert.DNSNames, "autodiscover.example.org")
	asserter.WithinDuration(time.Now().AddDate(0, 0, 365), cert.NotAfter, time.Hour)

	for _, path := range []string{"/data/assets/ssl/cert.pem", "/data/assets/ssl/key.pem"} {
		exists, err := afero.Exists(fs, path)
		asserter.NoError(err)
		asserter.True(exists, path)
	}
}

func TestInspect(t *testing.T) {
	asserter := assert.New(t)

	fs := afero.NewMemMapFs()
	builder := testBuilder(t, fs)

	cert, err := builder.Inspect()
	asserter.NoError(err)
	asserter.Nil(cert)

	generated, err := builder.Generate()
	asserter.NoError(err)

	cert, err = builder.Inspect()
	asserter.NoError(err)
	asserter.Equal(generated.SerialNumber, cert.SerialNumber)
}

func TestInspectGarbage(t *testing.T) {
	asserter := assert.New(t)

	fs := afero.NewMemMapFs()
	asserter.NoError(afero.WriteFile(fs, "/data/assets/ssl/cert.pem", []byte("not a certificate"), 0644))

	_, err := testBuilder(t, fs).Inspect()
	asserter.ErrorContains(err, "PEM certificate")
}

func TestNeedsRenewal(t *testing.T) {
	asserter := assert.New(t)

	fs := afero.NewMemMapFs()
	builder := testBuilder(t, fs)

	needed, reason := builder.NeedsRenewal(30 * 24 * time.Hour)
	asserter.True(needed)
	asserter.Equal("no certificate installed", reason)

	_, err := builder.Generate()
	asserter.NoError(err)

	needed, _ = builder.NeedsRenewal(30 * 24 * time.Hour)
	asserter.False(needed)

	// renew window longer than the remaining validity
	needed, reason = builder.NeedsRenewal(400 * 24 * time.Hour)
	asserter.True(needed)
	asserter.Contains(reason, "expires")

	// the SAN set grew since the last generate
	grown := testBuilder(t, fs, WithSanList([]string{"webmail.example.org"}))
	needed, reason = grown.NeedsRenewal(30 * 24 * time.Hour)
	asserter.True(needed)
	asserter.Contains(reason, "webmail.example.org")
}
