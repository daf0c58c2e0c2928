package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	apperrors "github.com/sessionaut/sessionaut/pkg/errors"
	"github.com/sessionaut/sessionaut/pkg/model"
)

func testServerModel(url string) *model.Server {
	return &model.Server{
		Endpoint:  url,
		AccessKey: "AKIATEST",
		SecretKey: "supersecret",
		Domain:    "default",
		Group:     "default",
	}
}

func TestClientSignsRequests(t *testing.T) {
	var gotAuth, gotVersion, gotDomain, gotDate string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotVersion = r.Header.Get("X-BackendAI-Version")
		gotDomain = r.Header.Get("X-BackendAI-Domain")
		gotDate = r.Header.Get("Date")
		w.Write([]byte("{}"))
	}))
	defer server.Close()

	client := NewClient(testServerModel(server.URL))
	if _, err := client.Get(context.Background(), "/folders"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.HasPrefix(gotAuth, "BackendAI signMethod=HMAC-SHA256, credential=AKIATEST:") {
		t.Errorf("authorization header = %q", gotAuth)
	}
	if gotVersion != DefaultAPIVersion {
		t.Errorf("version header = %q", gotVersion)
	}
	if gotDomain != "default" {
		t.Errorf("domain header = %q", gotDomain)
	}
	if gotDate == "" {
		t.Error("date header missing")
	}
}

func TestClientTrimsEndpointSlash(t *testing.T) {
	var receivedPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		receivedPath = r.URL.Path
		w.Write([]byte("{}"))
	}))
	defer server.Close()

	client := NewClient(testServerModel(server.URL + "/"))
	if _, err := client.Get(context.Background(), "/session"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if receivedPath != "/session" {
		t.Errorf("expected path /session, got %s", receivedPath)
	}
}

func TestClientErrorMapping(t *testing.T) {
	tests := []struct {
		name         string
		status       int
		body         string
		wantCode     string
		wantCategory apperrors.ErrorCategory
		recoverable  bool
	}{
		{
			name:         "unauthorized",
			status:       401,
			body:         `{"type":"https://api.backend.ai/probs/auth-failed","title":"Credential/signature mismatch."}`,
			wantCode:     "UNAUTHORIZED",
			wantCategory: apperrors.ErrorAuth,
			recoverable:  false,
		},
		{
			name:         "forbidden",
			status:       403,
			body:         "",
			wantCode:     "FORBIDDEN",
			wantCategory: apperrors.ErrorPermission,
			recoverable:  false,
		},
		{
			name:         "not found",
			status:       404,
			body:         `{"type":"https://api.backend.ai/probs/session-not-found","title":"Session not found."}`,
			wantCode:     "NOT_FOUND",
			wantCategory: apperrors.ErrorAPI,
			recoverable:  false,
		},
		{
			name:         "quota",
			status:       412,
			body:         `{"title":"You have reached your resource limit."}`,
			wantCode:     "QUOTA_EXCEEDED",
			wantCategory: apperrors.ErrorQuota,
			recoverable:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := NewClient(testServerModel(server.URL))
			_, err := client.Get(context.Background(), "/whatever")
			if err == nil {
				t.Fatal("expected error")
			}

			cerr := apperrors.ConvertError(err, apperrors.ErrorAPI, "API_ERROR")
			if !cerr.IsCode(tt.wantCode) {
				t.Errorf("code = %s, want %s", cerr.Code, tt.wantCode)
			}
			if !cerr.IsCategory(tt.wantCategory) {
				t.Errorf("category = %s, want %s", cerr.Category, tt.wantCategory)
			}
			if cerr.IsRecoverable() != tt.recoverable {
				t.Errorf("recoverable = %v, want %v", cerr.IsRecoverable(), tt.recoverable)
			}
		})
	}
}

func TestClientUsesManagerErrorMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(404)
		w.Write([]byte(`{"type":"https://api.backend.ai/probs/session-not-found","title":"Session 'train-1' is not found."}`))
	}))
	defer server.Close()

	client := NewClient(testServerModel(server.URL))
	_, err := client.Get(context.Background(), "/session/train-1")
	if err == nil {
		t.Fatal("expected error")
	}

	cerr := apperrors.ConvertError(err, apperrors.ErrorAPI, "API_ERROR")
	if cerr.Message != "Session 'train-1' is not found." {
		t.Errorf("manager message not folded in, got %q", cerr.Message)
	}
}

func TestClientRetriesServerErrors(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.WriteHeader(503)
			return
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	client := NewClient(testServerModel(server.URL))
	data, err := client.Get(context.Background(), "/resource/presets")
	if err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
	if attempts != 2 {
		t.Errorf("expected 2 attempts, got %d", attempts)
	}
	if string(data) != `{"ok":true}` {
		t.Errorf("unexpected body %s", data)
	}
}

func TestParseManagerError(t *testing.T) {
	if got := parseManagerError(""); got != nil {
		t.Error("empty body should not parse")
	}
	if got := parseManagerError("<html>nope</html>"); got != nil {
		t.Error("non-JSON body should not parse")
	}
	if got := parseManagerError(`{"code":1}`); got != nil {
		t.Error("body without title or msg should not parse")
	}
	got := parseManagerError(`{"type":"t","title":"Bad request","msg":"details"}`)
	if got == nil || got.Title != "Bad request" || got.Msg != "details" {
		t.Errorf("unexpected parse result %+v", got)
	}
}
