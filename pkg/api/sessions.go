package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	appcontext "github.com/sessionaut/sessionaut/pkg/context"
	"github.com/sessionaut/sessionaut/pkg/model"
)

// DefaultSessionFields are the GraphQL fields fetched for session listings.
var DefaultSessionFields = []string{
	"id", "name", "image", "type", "status", "status_info",
	"access_key", "group_id", "occupied_slots", "created_at",
	"terminated_at", "scaling_group", "service_ports",
	"cluster_size", "mounts",
}

// ListSessionsOptions narrows a session listing.
type ListSessionsOptions struct {
	Fields    []string
	Statuses  []model.SessionStatus
	AccessKey string
	GroupID   string
	Limit     int
	Offset    int
}

// SessionService provides compute session operations.
type SessionService struct {
	client *Client
}

// NewSessionService creates a new session service
func NewSessionService(server *model.Server) *SessionService {
	return &SessionService{
		client: NewClient(server),
	}
}

// gqlRequest is the body shape of an admin GraphQL query.
type gqlRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables,omitempty"`
}

const sessionListQuery = `query($limit: Int!, $offset: Int!, $ak: String, $group_id: String, $status: String) {
  compute_session_list(limit: $limit, offset: $offset, access_key: $ak, group_id: $group_id, status: $status) {
    items { %s }
    total_count
  }
}`

// List fetches one page of compute sessions plus the total count for the
// active filter.
func (s *SessionService) List(ctx context.Context, opts ListSessionsOptions) ([]model.Session, int, error) {
	fields := opts.Fields
	if len(fields) == 0 {
		fields = DefaultSessionFields
	}
	if opts.Limit <= 0 {
		opts.Limit = 50
	}

	variables := map[string]interface{}{
		"limit":  opts.Limit,
		"offset": opts.Offset,
	}
	if opts.AccessKey != "" {
		variables["ak"] = opts.AccessKey
	}
	if opts.GroupID != "" {
		variables["group_id"] = opts.GroupID
	}
	if len(opts.Statuses) > 0 {
		names := make([]string, len(opts.Statuses))
		for i, st := range opts.Statuses {
			names[i] = string(st)
		}
		variables["status"] = strings.Join(names, ",")
	}

	body := gqlRequest{
		Query:     fmt.Sprintf(sessionListQuery, strings.Join(fields, " ")),
		Variables: variables,
	}

	data, err := s.client.Post(ctx, "/admin/gql", body)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list sessions: %w", err)
	}

	root := gjson.GetBytes(data, "compute_session_list")
	if !root.Exists() {
		// Some deployments wrap the payload in a "data" envelope.
		root = gjson.GetBytes(data, "data.compute_session_list")
	}
	if !root.Exists() {
		return nil, 0, fmt.Errorf("failed to parse session list response")
	}

	items := root.Get("items").Array()
	sessions := make([]model.Session, 0, len(items))
	for _, item := range items {
		sess, err := parseSession(item)
		if err != nil {
			// Skip malformed entry
			continue
		}
		sessions = append(sessions, sess)
	}

	total := int(root.Get("total_count").Int())
	return sessions, total, nil
}

// ListAll pages through every session matching opts.
func (s *SessionService) ListAll(ctx context.Context, opts ListSessionsOptions) ([]model.Session, error) {
	if opts.Limit <= 0 {
		opts.Limit = 50
	}
	opts.Offset = 0

	var all []model.Session
	for {
		page, total, err := s.List(ctx, opts)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(page) == 0 || len(all) >= total {
			return all, nil
		}
		opts.Offset += opts.Limit
	}
}

// TotalCount returns the number of sessions in the given status without
// fetching full rows.
func (s *SessionService) TotalCount(ctx context.Context, status model.SessionStatus) (int, error) {
	opts := ListSessionsOptions{
		Fields: []string{"id"},
		Limit:  1,
	}
	if status != "" {
		opts.Statuses = []model.SessionStatus{status}
	}
	_, total, err := s.List(ctx, opts)
	return total, err
}

// LogsOptions narrows a container log fetch.
type LogsOptions struct {
	OwnerAccessKey string
	KernelID       string
}

// Logs fetches container logs for a session.
func (s *SessionService) Logs(ctx context.Context, name string, opts LogsOptions) (string, error) {
	if name == "" {
		return "", fmt.Errorf("session name is required")
	}

	query := url.Values{}
	if opts.OwnerAccessKey != "" {
		query.Set("owner_access_key", opts.OwnerAccessKey)
	}
	if opts.KernelID != "" {
		query.Set("kernel_id", opts.KernelID)
	}

	path := fmt.Sprintf("/session/%s/logs", url.PathEscape(name))
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	ctx, cancel := appcontext.WithLogsTimeout(ctx)
	defer cancel()

	data, err := s.client.Get(ctx, path)
	if err != nil {
		return "", fmt.Errorf("failed to get logs for session %s: %w", name, err)
	}

	return gjson.GetBytes(data, "result.logs").String(), nil
}

// Destroy terminates a session. When forced, the manager skips the
// graceful shutdown path.
func (s *SessionService) Destroy(ctx context.Context, name, ownerAccessKey string, forced bool) error {
	if name == "" {
		return fmt.Errorf("session name is required")
	}

	query := url.Values{}
	if forced {
		query.Set("forced", "true")
	}
	if ownerAccessKey != "" {
		query.Set("owner_access_key", ownerAccessKey)
	}

	path := fmt.Sprintf("/session/%s", url.PathEscape(name))
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	_, err := s.client.Delete(ctx, path, nil)
	if err != nil {
		return fmt.Errorf("failed to destroy session %s: %w", name, err)
	}
	return nil
}

// Rename changes a session's name.
func (s *SessionService) Rename(ctx context.Context, name, newName string) error {
	if name == "" || newName == "" {
		return fmt.Errorf("session name and new name are required")
	}

	body := map[string]interface{}{"name": newName}
	path := fmt.Sprintf("/session/%s/rename", url.PathEscape(name))
	_, err := s.client.Post(ctx, path, body)
	if err != nil {
		return fmt.Errorf("failed to rename session %s: %w", name, err)
	}
	return nil
}

// Restart restarts all kernels belonging to a session.
func (s *SessionService) Restart(ctx context.Context, name string) error {
	if name == "" {
		return fmt.Errorf("session name is required")
	}

	path := fmt.Sprintf("/session/%s", url.PathEscape(name))
	_, err := s.client.Patch(ctx, path, nil)
	if err != nil {
		return fmt.Errorf("failed to restart session %s: %w", name, err)
	}
	return nil
}

// ListFiles lists files in a session's working directory.
func (s *SessionService) ListFiles(ctx context.Context, name, dirPath string) ([]model.FolderFile, error) {
	if name == "" {
		return nil, fmt.Errorf("session name is required")
	}

	path := fmt.Sprintf("/session/%s/files", url.PathEscape(name))
	if dirPath != "" {
		path += "?path=" + url.QueryEscape(dirPath)
	}

	data, err := s.client.Get(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to list files for session %s: %w", name, err)
	}

	// The manager returns the listing as a JSON-encoded string field.
	filesRaw := gjson.GetBytes(data, "files").String()
	if filesRaw == "" {
		return []model.FolderFile{}, nil
	}

	var files []model.FolderFile
	if err := json.Unmarshal([]byte(filesRaw), &files); err != nil {
		// Some versions return the array inline instead.
		if err2 := json.Unmarshal([]byte(gjson.GetBytes(data, "files").Raw), &files); err2 != nil {
			return nil, fmt.Errorf("failed to parse file listing: %w", err)
		}
	}
	return files, nil
}

// optString returns a pointer to s, or nil for the empty string.
func optString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// parseSessionTime parses a manager timestamp. The manager emits RFC3339
// with sub-second precision; nil means absent or unparsable (a session
// that has not terminated yet has terminated_at null).
func parseSessionTime(s string) *time.Time {
	if s == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

// parseSession maps one GraphQL session item onto the domain model.
func parseSession(item gjson.Result) (model.Session, error) {
	id := item.Get("id").String()
	name := item.Get("name").String()
	if id == "" && name == "" {
		return model.Session{}, fmt.Errorf("session item missing id and name")
	}

	sess := model.Session{
		ID:           id,
		Name:         name,
		Image:        item.Get("image").String(),
		Type:         item.Get("type").String(),
		Status:       model.SessionStatus(item.Get("status").String()),
		StatusInfo:   optString(item.Get("status_info").String()),
		AccessKey:    item.Get("access_key").String(),
		GroupID:      optString(item.Get("group_id").String()),
		CreatedAt:    parseSessionTime(item.Get("created_at").String()),
		TerminatedAt: parseSessionTime(item.Get("terminated_at").String()),
		ScalingGroup: optString(item.Get("scaling_group").String()),
		ClusterSize:  int(item.Get("cluster_size").Int()),
	}

	// occupied_slots arrives as a JSON object encoded inside a string.
	if slots := item.Get("occupied_slots").String(); slots != "" {
		occupied := map[string]string{}
		gjson.Parse(slots).ForEach(func(key, value gjson.Result) bool {
			occupied[key.String()] = value.String()
			return true
		})
		if len(occupied) > 0 {
			sess.Occupied = occupied
		}
	}

	if ports := item.Get("service_ports"); ports.Exists() {
		var names []string
		source := ports
		if ports.Type == gjson.String {
			source = gjson.Parse(ports.String())
		}
		source.ForEach(func(_, value gjson.Result) bool {
			if n := value.Get("name").String(); n != "" {
				names = append(names, n)
			}
			return true
		})
		sess.ServicePorts = names
	}

	if mounts := item.Get("mounts"); mounts.IsArray() {
		var folders []string
		mounts.ForEach(func(_, value gjson.Result) bool {
			// Each mount is either a bare name or a [name, host, mode, path] tuple.
			if value.IsArray() {
				arr := value.Array()
				if len(arr) > 0 {
					folders = append(folders, arr[0].String())
				}
			} else {
				folders = append(folders, value.String())
			}
			return true
		})
		sess.MountedVFolders = folders
	}

	return sess, nil
}
