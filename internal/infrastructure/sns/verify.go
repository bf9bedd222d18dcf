package sns

import (
	"context"
	"crypto"
	"crypto/rsa"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"sync"
	"time"
)

// ErrInvalidSignature is returned when an HTTP delivery fails verification.
var ErrInvalidSignature = errors.New("invalid SNS signature")

var certHost = regexp.MustCompile(`^sns\.[a-z0-9-]+\.amazonaws\.com(\.cn)?$`)

// CertFetcher loads the signing certificate at url.
type CertFetcher func(ctx context.Context, url string) (*x509.Certificate, error)

// Verifier checks SNS message signatures. Certificates are cached by URL for
// the lifetime of the process.
type Verifier struct {
	fetch CertFetcher

	mu    sync.Mutex
	certs map[string]*x509.Certificate
}

// NewVerifier returns a Verifier that downloads certificates over HTTPS.
func NewVerifier() *Verifier {
	client := &http.Client{Timeout: 5 * time.Second}
	return NewVerifierWithFetcher(func(ctx context.Context, u string) (*x509.Certificate, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return nil, err
		}
		resp, err := client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("fetch signing cert: status %d", resp.StatusCode)
		}
		body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		if err != nil {
			return nil, err
		}
		return ParseCertificate(body)
	})
}

func NewVerifierWithFetcher(fetch CertFetcher) *Verifier {
	return &Verifier{fetch: fetch, certs: make(map[string]*x509.Certificate)}
}

// ParseCertificate decodes a PEM encoded certificate.
func ParseCertificate(pemBytes []byte) (*x509.Certificate, error) {
	block, _ := pem.Decode(pemBytes)
	if block == nil {
		return nil, errors.New("signing cert is not PEM")
	}
	return x509.ParseCertificate(block.Bytes)
}

// Verify checks that m was signed by the certificate at m.SigningCertURL and
// that the certificate is served from an SNS host.
func (v *Verifier) Verify(ctx context.Context, m *HTTPMessage) error {
	u, err := url.Parse(m.SigningCertURL)
	if err != nil || u.Scheme != "https" || !certHost.MatchString(u.Hostname()) {
		return fmt.Errorf("untrusted SigningCertURL %q: %w", m.SigningCertURL, ErrInvalidSignature)
	}

	var hash crypto.Hash
	var digest []byte
	toSign := []byte(m.StringToSign())
	switch m.SignatureVersion {
	case "1":
		sum := sha1.Sum(toSign)
		hash, digest = crypto.SHA1, sum[:]
	case "2":
		sum := sha256.Sum256(toSign)
		hash, digest = crypto.SHA256, sum[:]
	default:
		return fmt.Errorf("unsupported SignatureVersion %q: %w", m.SignatureVersion, ErrInvalidSignature)
	}

	sig, err := base64.StdEncoding.DecodeString(m.Signature)
	if err != nil {
		return fmt.Errorf("decode signature: %w", ErrInvalidSignature)
	}

	cert, err := v.cert(ctx, m.SigningCertURL)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSignature, err)
	}
	pub, ok := cert.PublicKey.(*rsa.PublicKey)
	if !ok {
		return fmt.Errorf("signing cert key is not RSA: %w", ErrInvalidSignature)
	}
	if err := rsa.VerifyPKCS1v15(pub, hash, digest, sig); err != nil {
		return ErrInvalidSignature
	}
	return nil
}

func (v *Verifier) cert(ctx context.Context, u string) (*x509.Certificate, error) {
	v.mu.Lock()
	c, ok := v.certs[u]
	v.mu.Unlock()
	if ok {
		return c, nil
	}
	c, err := v.fetch(ctx, u)
	if err != nil {
		return nil, err
	}
	v.mu.Lock()
	v.certs[u] = c
	v.mu.Unlock()
	return c, nil
}
