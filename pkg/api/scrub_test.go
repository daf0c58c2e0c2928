package api

import (
	"strings"
	"testing"
)

func TestScrubSecrets(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "secret key redacted",
			in:   `{"endpoint":"https://api.example.com","secret_key":"hunter2"}`,
			want: `{"endpoint":"https://api.example.com","secret_key":"[redacted]"}`,
		},
		{
			name: "access key redacted",
			in:   `{"access_key":"AKIATEST","group":"default"}`,
			want: `{"access_key":"[redacted]","group":"default"}`,
		},
		{
			name: "multiple secrets",
			in:   `{"access_key":"AKIATEST","secret_key":"hunter2","password":"pw"}`,
			want: `{"access_key":"[redacted]","secret_key":"[redacted]","password":"[redacted]"}`,
		},
		{
			name: "no secrets untouched",
			in:   `{"name":"train-resnet","forced":true}`,
			want: `{"name":"train-resnet","forced":true}`,
		},
		{
			name: "non-JSON passthrough",
			in:   "plain text body",
			want: "plain text body",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ScrubSecrets(tt.in)
			if got != tt.want {
				t.Errorf("ScrubSecrets(%q) = %q, want %q", tt.in, got, tt.want)
			}
			if strings.Contains(got, "hunter2") || strings.Contains(got, "AKIATEST") {
				t.Error("secret value leaked into output")
			}
		})
	}
}
