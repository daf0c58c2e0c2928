// Package trust loads TLS trust material for talking to clusters behind
// private or self-signed certificate authorities.
package trust

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"io/fs"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Options configures certificate loading and HTTP client behavior
type Options struct {
	CACertFile     string        // PEM bundle file
	CACertDir      string        // directory of *.pem / *.crt files
	ClientCertFile string // client certificate for mutual TLS
	ClientKeyFile  string // private key for the client certificate
	MinTLS         uint16 // minimum TLS version
}

// LoadPool builds a certificate pool from the system roots plus any extras
// named by flags or the SSL_CERT_FILE / SSL_CERT_DIR environment variables.
func LoadPool(opts Options) (*x509.CertPool, error) {
	pool, err := x509.SystemCertPool()
	if err != nil || pool == nil {
		// Some platforms cannot provide the system pool
		pool = x509.NewCertPool()
	}

	add := func(src string, pem []byte) error {
		if ok := pool.AppendCertsFromPEM(pem); !ok {
			return fmt.Errorf("no valid certificates found in %s", src)
		}
		return nil
	}

	if f := first(opts.CACertFile, os.Getenv("SSL_CERT_FILE")); f != "" {
		b, err := os.ReadFile(f)
		if err != nil {
			return nil, fmt.Errorf("failed to read CA cert file %s: %w", f, err)
		}
		if err := add(f, b); err != nil {
			return nil, err
		}
	}

	if d := first(opts.CACertDir, os.Getenv("SSL_CERT_DIR")); d != "" {
		fromFlag := opts.CACertDir != ""

		// SSL_CERT_DIR may hold a colon-separated list
		dirs := strings.Split(d, ":")
		for _, dir := range dirs {
			dir = strings.TrimSpace(dir)
			if dir == "" {
				continue
			}
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				if fromFlag && len(dirs) == 1 {
					return nil, fmt.Errorf("failed to load certificates from directory %s: %w", dir, err)
				}
				continue
			}

			err := filepath.WalkDir(dir, func(p string, e fs.DirEntry, werr error) error {
				if werr != nil {
					return werr
				}
				if e.IsDir() || !hasSuffix(p, ".pem", ".crt") {
					return nil
				}
				b, err := os.ReadFile(p)
				if err != nil {
					return fmt.Errorf("failed to read CA cert file %s: %w", p, err)
				}
				return add(p, b)
			})
			if err != nil {
				return nil, fmt.Errorf("failed to load certificates from directory %s: %w", dir, err)
			}
		}
	}

	// An empty pool is not an error here: the TLS handshake reports a far
	// more specific failure than we could.
	return pool, nil
}

// LoadClientCertificate loads a client certificate and key pair for mutual
// TLS. Both paths empty means no client certificate, which is not an error.
func LoadClientCertificate(certFile, keyFile string) (*tls.Certificate, error) {
	if certFile == "" || keyFile == "" {
		return nil, nil
	}

	cert, err := tls.LoadX509KeyPair(certFile, keyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load client certificate: %w", err)
	}
	return &cert, nil
}

// NewHTTP builds the HTTP client the API layer signs requests through.
// There is no client-level timeout: every call carries a context deadline,
// and a blanket timeout would kill the long-lived event stream.
func NewHTTP(pool *x509.CertPool, clientCert *tls.Certificate, minTLS uint16) *http.Client {
	tlsConfig := &tls.Config{
		RootCAs:    pool,
		MinVersion: minTLS,
	}
	if clientCert != nil {
		tlsConfig.Certificates = []tls.Certificate{*clientCert}
	}

	tr := &http.Transport{
		TLSClientConfig: tlsConfig,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 10 * time.Second,
		IdleConnTimeout:       30 * time.Second,
		MaxIdleConns:          10,
		MaxIdleConnsPerHost:   2,
	}

	return &http.Client{Transport: tr}
}

// first returns the first non-blank string
func first(vs ...string) string {
	for _, v := range vs {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func hasSuffix(s string, suff ...string) bool {
	s = strings.ToLower(s)
	for _, x := range suff {
		if strings.HasSuffix(s, x) {
			return true
		}
	}
	return false
}
