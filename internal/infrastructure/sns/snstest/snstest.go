// Package snstest signs SNS HTTP messages with a throwaway certificate so
// verification can be exercised without AWS.
package snstest

import (
	"context"
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/base64"
	"math/big"
	"testing"
	"time"

	"github.com/go-verification-mailer/internal/infrastructure/sns"
)

// CertURL is a SigningCertURL the verifier accepts.
const CertURL = "https://sns.us-east-1.amazonaws.com/SimpleNotificationService-test.pem"

// Signer holds a key pair and its self-signed certificate.
type Signer struct {
	key  *rsa.PrivateKey
	cert *x509.Certificate
}

func NewSigner(t testing.TB) *Signer {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	tmpl := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "sns.amazonaws.com"},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(time.Hour),
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	if err != nil {
		t.Fatalf("create cert: %v", err)
	}
	cert, err := x509.ParseCertificate(der)
	if err != nil {
		t.Fatalf("parse cert: %v", err)
	}
	return &Signer{key: key, cert: cert}
}

// Sign fills in SignatureVersion 2 fields on m.
func (s *Signer) Sign(t testing.TB, m *sns.HTTPMessage) {
	t.Helper()
	m.SignatureVersion = "2"
	m.SigningCertURL = CertURL
	sum := sha256.Sum256([]byte(m.StringToSign()))
	sig, err := rsa.SignPKCS1v15(rand.Reader, s.key, crypto.SHA256, sum[:])
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	m.Signature = base64.StdEncoding.EncodeToString(sig)
}

// Verifier returns a verifier that trusts only this signer's certificate.
func (s *Signer) Verifier() *sns.Verifier {
	return sns.NewVerifierWithFetcher(func(context.Context, string) (*x509.Certificate, error) {
		return s.cert, nil
	})
}

// Key exposes the private key for tests that need a non-default digest.
func (s *Signer) Key() *rsa.PrivateKey { return s.key }
