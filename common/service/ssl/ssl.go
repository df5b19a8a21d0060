package ssl

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/spf13/afero"

	"github.com/cswni/mailstack/common/function"
	"github.com/cswni/mailstack/common/service/storage"
)

const keyBits = 4096

func New(opts ...Option) (*Builder, error) {
	c := &Builder{
		fs:   afero.NewOsFs(),
		days: 365,
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	if c.hostname == "" {
		return nil, errors.New("a certificate needs a hostname")
	}
	if c.certPath == "" {
		c.certPath = storage.Local{}.GetCertPath()
		c.keyPath = storage.Local{}.GetCertKeyPath()
	}
	return c, nil
}

type Builder struct {
	hostname string
	sanList  []string
	days     int
	fs       afero.Fs
	certPath string
	keyPath  string
}

// Generate self-signs a fresh RSA certificate covering the hostname and
// every SAN, and writes key.pem (0600) and cert.pem through the builder's
// filesystem.
func (self *Builder) Generate() (*x509.Certificate, error) {
	key, err := rsa.GenerateKey(rand.Reader, keyBits)
	if err != nil {
		return nil, err
	}

	serial, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	if err != nil {
		return nil, err
	}

	dnsNames := []string{self.hostname}
	for _, san := range self.sanList {
		if !function.InArray(dnsNames, san) {
			dnsNames = append(dnsNames, san)
		}
	}

	now := time.Now()
	template := x509.Certificate{
		SerialNumber: serial,
		Subject: pkix.Name{
			CommonName: self.hostname,
		},
		DNSNames:              dnsNames,
		NotBefore:             now.Add(-time.Hour),
		NotAfter:              now.AddDate(0, 0, self.days),
		KeyUsage:              x509.KeyUsageDigitalSignature | x509.KeyUsageKeyEncipherment,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth, x509.ExtKeyUsageClientAuth},
		BasicConstraintsValid: true,
	}

	der, err := x509.CreateCertificate(rand.Reader, &template, &template, &key.PublicKey, key)
	if err != nil {
		return nil, err
	}

	certPem := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})
	keyPem := pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)})

	if err = storage.WriteFile(self.fs, self.keyPath, keyPem, 0600); err != nil {
		return nil, fmt.Errorf("write %s: %w", self.keyPath, err)
	}
	if err = storage.WriteFile(self.fs, self.certPath, certPem, 0644); err != nil {
		return nil, fmt.Errorf("write %s: %w", self.certPath, err)
	}

	return x509.ParseCertificate(der)
}

// Inspect parses the currently installed certificate, a nil certificate
// with no error means none is installed yet.
func (self *Builder) Inspect() (*x509.Certificate, error) {
	exists, err := afero.Exists(self.fs, self.certPath)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, nil
	}
	content, err := afero.ReadFile(self.fs, self.certPath)
	if err != nil {
		return nil, err
	}
	block, _ := pem.Decode(content)
	if block == nil {
		return nil, fmt.Errorf("%s does not contain a PEM certificate", self.certPath)
	}
	return x509.ParseCertificate(block.Bytes)
}

// NeedsRenewal decides whether Generate must run: missing or unparsable
// cert, expiry within the renew window, or a SAN set that no longer covers
// the config.
func (self *Builder) NeedsRenewal(renewBefore time.Duration) (bool, string) {
	cert, err := self.Inspect()
	if err != nil {
		return true, fmt.Sprintf("unreadable certificate: %v", err)
	}
	if cert == nil {
		return true, "no certificate installed"
	}
	if remaining := time.Until(cert.NotAfter); remaining < renewBefore {
		return true, fmt.Sprintf("certificate expires %s", cert.NotAfter.Format(time.RFC3339))
	}
	for _, san := range append([]string{self.hostname}, self.sanList...) {
		if !function.InArray(cert.DNSNames, san) {
			return true, fmt.Sprintf("certificate does not cover %s", san)
		}
	}
	return false, ""
}
