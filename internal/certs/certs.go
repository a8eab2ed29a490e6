// Package certs keeps a self-signed certificate for serving the API over
// HTTPS on a workstation.
package certs

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"fmt"
	"math/big"
	"net"
	"os"
	"path/filepath"
	"time"
)

// Validity is the lifetime of a generated certificate.
const Validity = 365 * 24 * time.Hour

// renewBefore regenerates certificates this close to expiry.
const renewBefore = 7 * 24 * time.Hour

// Pair names a certificate and its private key on disk.
type Pair struct {
	CertFile string
	KeyFile  string
}

// PairIn returns the file names used inside dir.
func PairIn(dir string) Pair {
	return Pair{
		CertFile: filepath.Join(dir, "triage.crt"),
		KeyFile:  filepath.Join(dir, "triage.key"),
	}
}

// Ensure returns the certificate in dir, generating a new one when it is
// missing, unreadable, about to expire, or does not cover every host.
// Hosts may be DNS names or IP addresses; localhost is always included.
// The boolean reports whether a certificate was generated.
func Ensure(dir string, hosts ...string) (Pair, bool, error) {
	pair := PairIn(dir)
	hosts = append([]string{"localhost", "127.0.0.1", "::1"}, hosts...)

	if err := pair.check(hosts, time.Now()); err == nil {
		return pair, false, nil
	}
	if err := pair.generate(hosts, time.Now()); err != nil {
		return Pair{}, false, err
	}
	return pair, true, nil
}

func (p Pair) check(hosts []string, now time.Time) error {
	cert, err := tls.LoadX509KeyPair(p.CertFile, p.KeyFile)
	if err != nil {
		return err
	}
	leaf, err := x509.ParseCertificate(cert.Certificate[0])
	if err != nil {
		return fmt.Errorf("failed to parse certificate: %w", err)
	}
	if now.Before(leaf.NotBefore) || now.Add(renewBefore).After(leaf.NotAfter) {
		return fmt.Errorf("certificate valid %s to %s", leaf.NotBefore.Format(time.DateOnly), leaf.NotAfter.Format(time.DateOnly))
	}
	for _, h := range hosts {
		if err := leaf.VerifyHostname(h); err != nil {
			return err
		}
	}
	return nil
}

func (p Pair) generate(hosts []string, now time.Time) error {
	if err := os.MkdirAll(filepath.Dir(p.CertFile), 0o700); err != nil {
		return fmt.Errorf("failed to create certificate directory: %w", err)
	}

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return fmt.Errorf("failed to generate private key: %w", err)
	}
	serial, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	if err != nil {
		return fmt.Errorf("failed to generate serial number: %w", err)
	}

	template := x509.Certificate{
		SerialNumber:          serial,
		Subject:               pkix.Name{Organization: []string{"claims-triage"}, CommonName: "localhost"},
		NotBefore:             now.Add(-time.Hour),
		NotAfter:              now.Add(Validity),
		KeyUsage:              x509.KeyUsageDigitalSignature,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		BasicConstraintsValid: true,
	}
	for _, h := range hosts {
		if ip := net.ParseIP(h); ip != nil {
			template.IPAddresses = append(template.IPAddresses, ip)
		} else {
			template.DNSNames = append(template.DNSNames, h)
		}
	}

	der, err := x509.CreateCertificate(rand.Reader, &template, &template, &key.PublicKey, key)
	if err != nil {
		return fmt.Errorf("failed to create certificate: %w", err)
	}
	keyDER, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		return fmt.Errorf("failed to encode private key: %w", err)
	}

	if err := writePEM(p.CertFile, "CERTIFICATE", der); err != nil {
		return err
	}
	return writePEM(p.KeyFile, "PRIVATE KEY", keyDER)
}

func writePEM(path, blockType string, der []byte) error {
	data := pem.EncodeToMemory(&pem.Block{Type: blockType, Bytes: der})
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
