package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	appcontext "github.com/sessionaut/sessionaut/pkg/context"
	"github.com/sessionaut/sessionaut/pkg/model"
)

// wireVFolder is the manager's folder listing row.
type wireVFolder struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Host       string  `json:"host"`
	UsageMode  string  `json:"usage_mode"`
	Permission string  `json:"permission"`
	Ownership  string  `json:"ownership_type"`
	GroupID    *string `json:"group"`
	Creator    string  `json:"creator"`
	Cloneable  bool    `json:"cloneable"`
	CreatedAt  string  `json:"created_at"`
	MaxSize    int64   `json:"max_size"`
	UsedBytes  int64   `json:"cur_size"`
	NumFiles   int     `json:"num_files"`
}

func (w wireVFolder) toModel() model.VFolder {
	folder := model.VFolder{
		ID:         w.ID,
		Name:       w.Name,
		Host:       w.Host,
		UsageMode:  w.UsageMode,
		Permission: model.VFolderPermission(w.Permission),
		Ownership:  w.Ownership,
		GroupID:    w.GroupID,
		Creator:    w.Creator,
		Cloneable:  w.Cloneable,
		MaxSize:    w.MaxSize,
		UsedBytes:  w.UsedBytes,
		NumFiles:   w.NumFiles,
	}
	if w.CreatedAt != "" {
		if ts, err := time.Parse(time.RFC3339, w.CreatedAt); err == nil {
			folder.CreatedAt = &ts
		}
	}
	return folder
}

// wireInvitation is the manager's invitation listing row.
type wireInvitation struct {
	ID         string `json:"id"`
	VFolderID  string `json:"vfolder_id"`
	FolderName string `json:"vfolder_name"`
	Inviter    string `json:"inviter"`
	Invitee    string `json:"invitee"`
	Permission string `json:"perm"`
	State      string `json:"state"`
}

// CreateFolderOptions configures folder creation. Zero values fall back
// to the manager's defaults (general usage, rw permission).
type CreateFolderOptions struct {
	Host       string
	UsageMode  string
	Permission model.VFolderPermission
	GroupID    string
	Cloneable  bool
}

// FolderService provides virtual folder operations.
type FolderService struct {
	client *Client
}

// NewFolderService creates a new folder service
func NewFolderService(server *model.Server) *FolderService {
	return &FolderService{
		client: NewClient(server),
	}
}

// List retrieves the virtual folders visible to the keypair, optionally
// narrowed to one project group.
func (s *FolderService) List(ctx context.Context, groupID string) ([]model.VFolder, error) {
	path := "/folders"
	if groupID != "" {
		path += "?group_id=" + url.QueryEscape(groupID)
	}

	data, err := s.client.Get(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to list folders: %w", err)
	}

	var rows []wireVFolder
	if err := json.Unmarshal(data, &rows); err != nil {
		// Some deployments wrap the rows in an items envelope.
		var withItems struct {
			Items []wireVFolder `json:"items"`
		}
		if err2 := json.Unmarshal(data, &withItems); err2 != nil {
			return nil, fmt.Errorf("failed to parse folder list: %w", err)
		}
		rows = withItems.Items
	}

	folders := make([]model.VFolder, 0, len(rows))
	for _, row := range rows {
		folders = append(folders, row.toModel())
	}
	return folders, nil
}

// Create makes a new virtual folder.
func (s *FolderService) Create(ctx context.Context, name string, opts CreateFolderOptions) (model.VFolder, error) {
	if name == "" {
		return model.VFolder{}, fmt.Errorf("folder name is required")
	}

	body := map[string]interface{}{
		"name":      name,
		"cloneable": opts.Cloneable,
	}
	if opts.Host != "" {
		body["host"] = opts.Host
	}
	if opts.UsageMode != "" {
		body["usage_mode"] = opts.UsageMode
	}
	if opts.Permission != "" {
		body["permission"] = string(opts.Permission)
	}
	if opts.GroupID != "" {
		body["group"] = opts.GroupID
	}

	ctx, cancel := appcontext.WithFolderTimeout(ctx)
	defer cancel()

	data, err := s.client.Post(ctx, "/folders", body)
	if err != nil {
		return model.VFolder{}, fmt.Errorf("failed to create folder %s: %w", name, err)
	}

	var row wireVFolder
	if err := json.Unmarshal(data, &row); err != nil {
		return model.VFolder{}, fmt.Errorf("failed to parse create response: %w", err)
	}
	if row.Name == "" {
		row.Name = name
	}
	return row.toModel(), nil
}

// Delete moves a folder to the trash bin.
func (s *FolderService) Delete(ctx context.Context, name string) error {
	if name == "" {
		return fmt.Errorf("folder name is required")
	}

	ctx, cancel := appcontext.WithFolderTimeout(ctx)
	defer cancel()

	path := fmt.Sprintf("/folders/%s", url.PathEscape(name))
	_, err := s.client.Delete(ctx, path, nil)
	if err != nil {
		return fmt.Errorf("failed to delete folder %s: %w", name, err)
	}
	return nil
}

// Rename changes a folder's name.
func (s *FolderService) Rename(ctx context.Context, name, newName string) error {
	if name == "" || newName == "" {
		return fmt.Errorf("folder name and new name are required")
	}

	body := map[string]interface{}{"new_name": newName}
	path := fmt.Sprintf("/folders/%s/rename", url.PathEscape(name))
	_, err := s.client.Post(ctx, path, body)
	if err != nil {
		return fmt.Errorf("failed to rename folder %s: %w", name, err)
	}
	return nil
}

// Clone copies a folder into a new one, optionally on another host.
func (s *FolderService) Clone(ctx context.Context, name, target string, opts CreateFolderOptions) error {
	if name == "" || target == "" {
		return fmt.Errorf("folder name and clone target are required")
	}

	body := map[string]interface{}{
		"target_name": target,
		"cloneable":   opts.Cloneable,
	}
	if opts.Host != "" {
		body["target_host"] = opts.Host
	}
	if opts.UsageMode != "" {
		body["usage_mode"] = opts.UsageMode
	}
	if opts.Permission != "" {
		body["permission"] = string(opts.Permission)
	}

	ctx, cancel := appcontext.WithFolderTimeout(ctx)
	defer cancel()

	path := fmt.Sprintf("/folders/%s/clone", url.PathEscape(name))
	_, err := s.client.Post(ctx, path, body)
	if err != nil {
		return fmt.Errorf("failed to clone folder %s: %w", name, err)
	}
	return nil
}

// Invite asks other users to share a folder with the given permission.
// Returns the invitee emails the manager actually created invitations for.
func (s *FolderService) Invite(ctx context.Context, name string, perm model.VFolderPermission, emails []string) ([]string, error) {
	if name == "" {
		return nil, fmt.Errorf("folder name is required")
	}
	if len(emails) == 0 {
		return nil, fmt.Errorf("at least one invitee is required")
	}

	body := map[string]interface{}{
		"perm":   string(perm),
		"emails": emails,
	}
	path := fmt.Sprintf("/folders/%s/invite", url.PathEscape(name))
	data, err := s.client.Post(ctx, path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to invite to folder %s: %w", name, err)
	}

	var resp struct {
		InvitedIDs []string `json:"invited_ids"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, nil
	}
	return resp.InvitedIDs, nil
}

// Invitations lists share invitations waiting for this user.
func (s *FolderService) Invitations(ctx context.Context) ([]model.FolderInvitation, error) {
	data, err := s.client.Get(ctx, "/folders/invitations/list")
	if err != nil {
		return nil, fmt.Errorf("failed to list invitations: %w", err)
	}

	var resp struct {
		Invitations []wireInvitation `json:"invitations"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse invitations: %w", err)
	}

	invitations := make([]model.FolderInvitation, 0, len(resp.Invitations))
	for _, inv := range resp.Invitations {
		invitations = append(invitations, model.FolderInvitation{
			ID:         inv.ID,
			FolderName: inv.FolderName,
			Inviter:    inv.Inviter,
			Invitee:    inv.Invitee,
			Permission: model.VFolderPermission(inv.Permission),
			State:      inv.State,
		})
	}
	return invitations, nil
}

// AcceptInvitation accepts a pending share invitation.
func (s *FolderService) AcceptInvitation(ctx context.Context, invitationID string) error {
	if invitationID == "" {
		return fmt.Errorf("invitation id is required")
	}

	body := map[string]interface{}{"inv_id": invitationID}
	_, err := s.client.Post(ctx, "/folders/invitations/accept", body)
	if err != nil {
		return fmt.Errorf("failed to accept invitation: %w", err)
	}
	return nil
}

// Share grants folder access directly, without the invitation flow.
// Only group folders support direct sharing.
func (s *FolderService) Share(ctx context.Context, name string, perm model.VFolderPermission, emails []string) error {
	if name == "" {
		return fmt.Errorf("folder name is required")
	}
	if len(emails) == 0 {
		return fmt.Errorf("at least one user is required")
	}

	body := map[string]interface{}{
		"permission": string(perm),
		"emails":     emails,
	}
	path := fmt.Sprintf("/folders/%s/share", url.PathEscape(name))
	_, err := s.client.Post(ctx, path, body)
	if err != nil {
		return fmt.Errorf("failed to share folder %s: %w", name, err)
	}
	return nil
}

// ListHosts lists the storage hosts this keypair may create folders on.
func (s *FolderService) ListHosts(ctx context.Context) (defaultHost string, hosts []string, err error) {
	data, err := s.client.Get(ctx, "/folders/_/hosts")
	if err != nil {
		return "", nil, fmt.Errorf("failed to list folder hosts: %w", err)
	}

	var resp struct {
		Default string   `json:"default"`
		Allowed []string `json:"allowed"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		return "", nil, fmt.Errorf("failed to parse folder hosts: %w", err)
	}
	return resp.Default, resp.Allowed, nil
}

// ListFiles lists one directory of a folder.
func (s *FolderService) ListFiles(ctx context.Context, name, dirPath string) ([]model.FolderFile, error) {
	if name == "" {
		return nil, fmt.Errorf("folder name is required")
	}

	path := fmt.Sprintf("/folders/%s/files", url.PathEscape(name))
	if dirPath != "" {
		path += "?path=" + url.QueryEscape(dirPath)
	}

	data, err := s.client.Get(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to list files in folder %s: %w", name, err)
	}

	var resp struct {
		Items []model.FolderFile `json:"items"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse file listing: %w", err)
	}
	return resp.Items, nil
}

// Mkdir creates a directory inside a folder.
func (s *FolderService) Mkdir(ctx context.Context, name, dirPath string) error {
	if name == "" || dirPath == "" {
		return fmt.Errorf("folder name and path are required")
	}

	body := map[string]interface{}{"path": dirPath}
	path := fmt.Sprintf("/folders/%s/mkdir", url.PathEscape(name))
	_, err := s.client.Post(ctx, path, body)
	if err != nil {
		return fmt.Errorf("failed to create directory in folder %s: %w", name, err)
	}
	return nil
}
