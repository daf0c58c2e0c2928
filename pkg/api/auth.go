package api

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// DefaultAPIVersion is the manager API revision advertised when the
// configuration does not pin one.
const DefaultAPIVersion = "v8.20240915"

// Signer computes keypair request signatures. Every authenticated request
// carries an Authorization header of the form
//
//	BackendAI signMethod=HMAC-SHA256, credential=<access-key>:<signature>
//
// where the signature covers the method, path, date, host, content type,
// API version and a hash of the body.
type Signer struct {
	AccessKey  string
	SecretKey  string
	APIVersion string

	// now is overridable for tests.
	now func() time.Time
}

// NewSigner creates a signer for the given keypair.
func NewSigner(accessKey, secretKey, apiVersion string) *Signer {
	if apiVersion == "" {
		apiVersion = DefaultAPIVersion
	}
	return &Signer{
		AccessKey:  accessKey,
		SecretKey:  secretKey,
		APIVersion: apiVersion,
		now:        time.Now,
	}
}

// Sign adds the Date, version and Authorization headers to req. The body
// must be the exact bytes that will be sent; pass nil for bodyless requests.
func (s *Signer) Sign(req *http.Request, body []byte) {
	date := s.now().UTC()
	req.Header.Set("Date", date.Format(time.RFC3339Nano))
	req.Header.Set("X-BackendAI-Version", s.APIVersion)

	sig := s.signature(req.Method, requestPath(req), req.URL.Host,
		req.Header.Get("Content-Type"), date, body)

	req.Header.Set("Authorization", fmt.Sprintf(
		"BackendAI signMethod=HMAC-SHA256, credential=%s:%s", s.AccessKey, sig))
}

// signature derives the keyed hash chain: the secret keyed over the
// calendar date, then the host, then the canonical request string.
func (s *Signer) signature(method, path, host, contentType string, date time.Time, body []byte) string {
	bodyHash := sha256.Sum256(body)

	canonical := strings.Join([]string{
		method,
		path,
		date.Format(time.RFC3339Nano),
		"host:" + host,
		"content-type:" + contentType,
		"x-backendai-version:" + s.APIVersion,
		hex.EncodeToString(bodyHash[:]),
	}, "\n")

	key := hmacSHA256([]byte(s.SecretKey), []byte(date.Format("20060102")))
	key = hmacSHA256(key, []byte(host))
	return hex.EncodeToString(hmacSHA256(key, []byte(canonical)))
}

func hmacSHA256(key, data []byte) []byte {
	mac := hmac.New(sha256.New, key)
	mac.Write(data)
	return mac.Sum(nil)
}

// requestPath returns the path plus raw query, matching what the server
// sees as the request target.
func requestPath(req *http.Request) string {
	path := req.URL.EscapedPath()
	if path == "" {
		path = "/"
	}
	if req.URL.RawQuery != "" {
		path += "?" + req.URL.RawQuery
	}
	return path
}
