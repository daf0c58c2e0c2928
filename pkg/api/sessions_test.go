package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sessionaut/sessionaut/pkg/model"
)

const sessionListPayload = `{
  "compute_session_list": {
    "items": [
      {
        "id": "00000000-1111-2222-3333-444444444444",
        "name": "train-resnet",
        "image": "cr.backend.ai/stable/python-pytorch:2.3",
        "type": "interactive",
        "status": "RUNNING",
        "status_info": "",
        "access_key": "AKIATEST",
        "group_id": "g-1",
        "occupied_slots": "{\"cpu\": \"8\", \"mem\": \"34359738368\", \"cuda.device\": \"2\"}",
        "created_at": "2026-03-14T10:00:00+00:00",
        "terminated_at": null,
        "scaling_group": "gpu-a100",
        "service_ports": [{"name": "jupyter", "protocol": "http", "container_ports": [8081]}],
        "cluster_size": 1,
        "mounts": [["data", "local:volume1", "rw", "/home/work/data"]]
      },
      {
        "id": "99999999-1111-2222-3333-444444444444",
        "name": "batch-job",
        "status": "TERMINATED",
        "occupied_slots": "{}",
        "mounts": []
      }
    ],
    "total_count": 17
  }
}`

func newSessionService(url string) *SessionService {
	return NewSessionService(testServerModel(url))
}

func TestSessionList(t *testing.T) {
	var gotBody []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/admin/gql" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		gotBody, _ = io.ReadAll(r.Body)
		w.Write([]byte(sessionListPayload))
	}))
	defer server.Close()

	svc := newSessionService(server.URL)
	sessions, total, err := svc.List(context.Background(), ListSessionsOptions{
		Statuses: []model.SessionStatus{model.StatusRunning},
		GroupID:  "g-1",
		Limit:    20,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if total != 17 {
		t.Errorf("total = %d, want 17", total)
	}
	if len(sessions) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(sessions))
	}

	first := sessions[0]
	if first.Name != "train-resnet" || first.Status != model.StatusRunning {
		t.Errorf("unexpected first session %+v", first)
	}
	if first.Occupied["cuda.device"] != "2" {
		t.Errorf("occupied slots not parsed: %v", first.Occupied)
	}
	if len(first.ServicePorts) != 1 || first.ServicePorts[0] != "jupyter" {
		t.Errorf("service ports not parsed: %v", first.ServicePorts)
	}
	if len(first.MountedVFolders) != 1 || first.MountedVFolders[0] != "data" {
		t.Errorf("mounts not parsed: %v", first.MountedVFolders)
	}

	if first.GroupID == nil || *first.GroupID != "g-1" {
		t.Errorf("group id not parsed: %v", first.GroupID)
	}
	if first.ScalingGroup == nil || *first.ScalingGroup != "gpu-a100" {
		t.Errorf("scaling group not parsed: %v", first.ScalingGroup)
	}
	if first.StatusInfo != nil {
		t.Errorf("empty status_info should stay nil, got %q", *first.StatusInfo)
	}
	wantCreated := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	if first.CreatedAt == nil || !first.CreatedAt.Equal(wantCreated) {
		t.Errorf("created_at = %v, want %v", first.CreatedAt, wantCreated)
	}
	if first.TerminatedAt != nil {
		t.Errorf("running session must have nil terminated_at, got %v", first.TerminatedAt)
	}

	var req gqlRequest
	if err := json.Unmarshal(gotBody, &req); err != nil {
		t.Fatalf("request body not JSON: %v", err)
	}
	if req.Variables["status"] != "RUNNING" {
		t.Errorf("status variable = %v", req.Variables["status"])
	}
	if req.Variables["group_id"] != "g-1" {
		t.Errorf("group_id variable = %v", req.Variables["group_id"])
	}
	if req.Variables["limit"] != float64(20) {
		t.Errorf("limit variable = %v", req.Variables["limit"])
	}
}

func TestSessionListDataEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data": ` + sessionListPayload + `}`))
	}))
	defer server.Close()

	sessions, total, err := newSessionService(server.URL).List(context.Background(), ListSessionsOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 17 || len(sessions) != 2 {
		t.Errorf("envelope payload not parsed: %d sessions, total %d", len(sessions), total)
	}
}

func TestSessionListAllPagination(t *testing.T) {
	pages := [][]string{
		{"s-1", "s-2"},
		{"s-3"},
	}
	call := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page := pages[call]
		call++
		items := ""
		for i, name := range page {
			if i > 0 {
				items += ","
			}
			items += `{"id":"` + name + `","name":"` + name + `","status":"RUNNING"}`
		}
		w.Write([]byte(`{"compute_session_list":{"items":[` + items + `],"total_count":3}}`))
	}))
	defer server.Close()

	all, err := newSessionService(server.URL).ListAll(context.Background(), ListSessionsOptions{Limit: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("expected 3 sessions across pages, got %d", len(all))
	}
	if call != 2 {
		t.Errorf("expected 2 page fetches, got %d", call)
	}
}

func TestSessionLogs(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/session/train-resnet/logs" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("kernel_id") != "k-1" {
			t.Errorf("kernel_id not passed: %s", r.URL.RawQuery)
		}
		w.Write([]byte(`{"result": {"logs": "\u001b[31merror\u001b[0m line\n"}}`))
	}))
	defer server.Close()

	logs, err := newSessionService(server.URL).Logs(context.Background(), "train-resnet",
		LogsOptions{KernelID: "k-1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if logs != "\x1b[31merror\x1b[0m line\n" {
		t.Errorf("logs = %q", logs)
	}
}

func TestSessionDestroy(t *testing.T) {
	var gotMethod, gotPath, gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		w.Write([]byte(`{"stats": null}`))
	}))
	defer server.Close()

	err := newSessionService(server.URL).Destroy(context.Background(), "train-resnet", "AKIAOWNER", true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotMethod != "DELETE" || gotPath != "/session/train-resnet" {
		t.Errorf("got %s %s", gotMethod, gotPath)
	}
	if gotQuery != "forced=true&owner_access_key=AKIAOWNER" {
		t.Errorf("query = %s", gotQuery)
	}
}

func TestSessionRenameAndRestart(t *testing.T) {
	type call struct {
		method, path string
		body         map[string]interface{}
	}
	var calls []call
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]interface{}
		raw, _ := io.ReadAll(r.Body)
		if len(raw) > 0 {
			json.Unmarshal(raw, &body)
		}
		calls = append(calls, call{r.Method, r.URL.Path, body})
		w.Write([]byte("{}"))
	}))
	defer server.Close()

	svc := newSessionService(server.URL)
	if err := svc.Rename(context.Background(), "old-name", "new-name"); err != nil {
		t.Fatalf("rename: %v", err)
	}
	if err := svc.Restart(context.Background(), "new-name"); err != nil {
		t.Fatalf("restart: %v", err)
	}

	if len(calls) != 2 {
		t.Fatalf("expected 2 calls, got %d", len(calls))
	}
	if calls[0].method != "POST" || calls[0].path != "/session/old-name/rename" {
		t.Errorf("rename call = %s %s", calls[0].method, calls[0].path)
	}
	if calls[0].body["name"] != "new-name" {
		t.Errorf("rename body = %v", calls[0].body)
	}
	if calls[1].method != "PATCH" || calls[1].path != "/session/new-name" {
		t.Errorf("restart call = %s %s", calls[1].method, calls[1].path)
	}
}

func TestParseSessionTime(t *testing.T) {
	tests := []struct {
		in      string
		wantNil bool
	}{
		{"", true},
		{"not-a-time", true},
		{"2026-03-14T10:00:00+00:00", false},
		{"2026-03-14T10:00:00.123456+09:00", false},
	}
	for _, tt := range tests {
		got := parseSessionTime(tt.in)
		if (got == nil) != tt.wantNil {
			t.Errorf("parseSessionTime(%q) = %v, wantNil=%v", tt.in, got, tt.wantNil)
		}
	}

	got := parseSessionTime("2026-03-14T10:00:00.5+00:00")
	if got == nil || got.Nanosecond() != 500000000 {
		t.Errorf("sub-second precision lost: %v", got)
	}
}

func TestSessionValidation(t *testing.T) {
	svc := &SessionService{client: NewClient(testServerModel("http://unused.invalid"))}
	ctx := context.Background()

	if err := svc.Destroy(ctx, "", "", false); err == nil {
		t.Error("destroy without name should fail")
	}
	if err := svc.Rename(ctx, "a", ""); err == nil {
		t.Error("rename without new name should fail")
	}
	if _, err := svc.Logs(ctx, "", LogsOptions{}); err == nil {
		t.Error("logs without name should fail")
	}
}
