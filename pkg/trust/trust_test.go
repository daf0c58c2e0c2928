package trust

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// testCertPEM generates a self-signed certificate and returns its PEM
// encoding along with the matching key PEM.
func testCertPEM(t *testing.T, cn string) (certPEM, keyPEM []byte) {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}

	tmpl := &x509.Certificate{
		SerialNumber:          big.NewInt(1),
		Subject:               pkix.Name{CommonName: cn},
		NotBefore:             time.Now().Add(-time.Hour),
		NotAfter:              time.Now().Add(time.Hour),
		IsCA:                  true,
		KeyUsage:              x509.KeyUsageCertSign | x509.KeyUsageDigitalSignature,
		BasicConstraintsValid: true,
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	if err != nil {
		t.Fatalf("create certificate: %v", err)
	}
	keyDER, err := x509.MarshalECPrivateKey(key)
	if err != nil {
		t.Fatalf("marshal key: %v", err)
	}

	certPEM = pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})
	keyPEM = pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: keyDER})
	return certPEM, keyPEM
}

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, data, 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

func TestLoadPoolFromFile(t *testing.T) {
	dir := t.TempDir()
	certPEM, _ := testCertPEM(t, "sessionaut-test-ca")
	path := writeFile(t, dir, "ca.pem", certPEM)

	pool, err := LoadPool(Options{CACertFile: path})
	if err != nil {
		t.Fatalf("LoadPool: %v", err)
	}
	if pool == nil {
		t.Fatal("expected a certificate pool")
	}
}

func TestLoadPoolFileMissing(t *testing.T) {
	_, err := LoadPool(Options{CACertFile: filepath.Join(t.TempDir(), "nope.pem")})
	if err == nil {
		t.Fatal("expected error for missing CA file")
	}
}

func TestLoadPoolFileWithoutCertificates(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "junk.pem", []byte("not a certificate"))

	_, err := LoadPool(Options{CACertFile: path})
	if err == nil {
		t.Fatal("expected error for PEM file without certificates")
	}
}

func TestLoadPoolFromDir(t *testing.T) {
	dir := t.TempDir()
	ca1, _ := testCertPEM(t, "manager-ca")
	ca2, _ := testCertPEM(t, "proxy-ca")
	writeFile(t, dir, "manager.pem", ca1)
	writeFile(t, dir, "proxy.crt", ca2)
	// Non-certificate files in the directory must be ignored
	writeFile(t, dir, "README.txt", []byte("not a certificate"))

	if _, err := LoadPool(Options{CACertDir: dir}); err != nil {
		t.Fatalf("LoadPool: %v", err)
	}
}

func TestLoadPoolDirMissingFromFlag(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "absent")
	if _, err := LoadPool(Options{CACertDir: missing}); err == nil {
		t.Fatal("expected error when --ca-path names a missing directory")
	}
}

func TestLoadPoolEnvDirList(t *testing.T) {
	dir := t.TempDir()
	ca, _ := testCertPEM(t, "env-ca")
	writeFile(t, dir, "env.pem", ca)

	// Missing entries in a colon-separated SSL_CERT_DIR are skipped
	t.Setenv("SSL_CERT_DIR", filepath.Join(dir, "absent")+":"+dir)
	if _, err := LoadPool(Options{}); err != nil {
		t.Fatalf("LoadPool: %v", err)
	}
}

func TestLoadPoolEnvFile(t *testing.T) {
	dir := t.TempDir()
	ca, _ := testCertPEM(t, "env-file-ca")
	path := writeFile(t, dir, "env.pem", ca)

	t.Setenv("SSL_CERT_FILE", path)
	if _, err := LoadPool(Options{}); err != nil {
		t.Fatalf("LoadPool: %v", err)
	}
}

func TestLoadClientCertificate(t *testing.T) {
	dir := t.TempDir()
	certPEM, keyPEM := testCertPEM(t, "client")
	certPath := writeFile(t, dir, "client.pem", certPEM)
	keyPath := writeFile(t, dir, "client.key", keyPEM)

	cert, err := LoadClientCertificate(certPath, keyPath)
	if err != nil {
		t.Fatalf("LoadClientCertificate: %v", err)
	}
	if cert == nil {
		t.Fatal("expected a client certificate")
	}
}

func TestLoadClientCertificateEmpty(t *testing.T) {
	cert, err := LoadClientCertificate("", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cert != nil {
		t.Fatal("expected nil certificate when no paths are given")
	}
}

func TestLoadClientCertificateMismatchedKey(t *testing.T) {
	dir := t.TempDir()
	certPEM, _ := testCertPEM(t, "client")
	_, otherKey := testCertPEM(t, "other")
	certPath := writeFile(t, dir, "client.pem", certPEM)
	keyPath := writeFile(t, dir, "other.key", otherKey)

	if _, err := LoadClientCertificate(certPath, keyPath); err == nil {
		t.Fatal("expected error for mismatched certificate and key")
	}
}

func TestNewHTTP(t *testing.T) {
	pool := x509.NewCertPool()
	client := NewHTTP(pool, nil, tls.VersionTLS12)

	tr, ok := client.Transport.(*http.Transport)
	if !ok {
		t.Fatalf("unexpected transport type %T", client.Transport)
	}
	if tr.TLSClientConfig.RootCAs != pool {
		t.Error("transport does not use the provided pool")
	}
	if tr.TLSClientConfig.MinVersion != tls.VersionTLS12 {
		t.Errorf("MinVersion = %d, want TLS 1.2", tr.TLSClientConfig.MinVersion)
	}
	if len(tr.TLSClientConfig.Certificates) != 0 {
		t.Error("expected no client certificates")
	}
	// Long-poll event streams rely on per-request deadlines instead
	if client.Timeout != 0 {
		t.Errorf("client Timeout = %v, want 0", client.Timeout)
	}
}

func TestNewHTTPClientCert(t *testing.T) {
	dir := t.TempDir()
	certPEM, keyPEM := testCertPEM(t, "client")
	certPath := writeFile(t, dir, "client.pem", certPEM)
	keyPath := writeFile(t, dir, "client.key", keyPEM)

	cert, err := LoadClientCertificate(certPath, keyPath)
	if err != nil {
		t.Fatalf("LoadClientCertificate: %v", err)
	}

	client := NewHTTP(x509.NewCertPool(), cert, tls.VersionTLS13)
	tr := client.Transport.(*http.Transport)
	if len(tr.TLSClientConfig.Certificates) != 1 {
		t.Fatalf("expected 1 client certificate, got %d", len(tr.TLSClientConfig.Certificates))
	}
	if tr.TLSClientConfig.MinVersion != tls.VersionTLS13 {
		t.Errorf("MinVersion = %d, want TLS 1.3", tr.TLSClientConfig.MinVersion)
	}
}
