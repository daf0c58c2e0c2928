package model

import (
	"time"
)

// View represents the current view in the navigation hierarchy
type View string

const (
	ViewSummary  View = "summary"
	ViewSessions View = "sessions"
	ViewFolders  View = "folders"
	ViewLogs     View = "logs"
)

// Mode represents the current application mode
type Mode string

const (
	ModeNormal               Mode = "normal"
	ModeLoading              Mode = "loading"
	ModeSearch               Mode = "search"
	ModeCommand              Mode = "command"
	ModeHelp                 Mode = "help"
	ModeConfirmDestroy       Mode = "confirm-destroy"
	ModeConfirmFolderDelete  Mode = "confirm-folder-delete"
	ModeRenameSession        Mode = "rename-session"
	ModeCreateFolder         Mode = "create-folder"
	ModeInviteFolder         Mode = "invite-folder"
	ModeExternal             Mode = "external"
	ModeAuthRequired         Mode = "auth-required"
	ModeError                Mode = "error"
	ModeConnectionError      Mode = "connection-error"
	ModeAnnouncement         Mode = "announcement"
)

// SessionStatus is the lifecycle state of a compute session as reported
// by the cluster manager
type SessionStatus string

const (
	StatusPending         SessionStatus = "PENDING"
	StatusScheduled       SessionStatus = "SCHEDULED"
	StatusPulling         SessionStatus = "PULLING"
	StatusPreparing       SessionStatus = "PREPARING"
	StatusRunning         SessionStatus = "RUNNING"
	StatusRestarting      SessionStatus = "RESTARTING"
	StatusRunningDegraded SessionStatus = "RUNNING_DEGRADED"
	StatusTerminating     SessionStatus = "TERMINATING"
	StatusTerminated      SessionStatus = "TERMINATED"
	StatusError           SessionStatus = "ERROR"
	StatusCancelled       SessionStatus = "CANCELLED"
)

// ActiveStatuses are the states a session passes through before it ends
var ActiveStatuses = []SessionStatus{
	StatusPending, StatusScheduled, StatusPulling, StatusPreparing,
	StatusRunning, StatusRestarting, StatusRunningDegraded, StatusTerminating,
}

// FinishedStatuses are the terminal states
var FinishedStatuses = []SessionStatus{
	StatusTerminated, StatusError, StatusCancelled,
}

// IsActive reports whether the session still holds cluster resources
func (s SessionStatus) IsActive() bool {
	switch s {
	case StatusTerminated, StatusError, StatusCancelled:
		return false
	}
	return true
}

// IsTransitional reports whether the session is between stable states,
// which means another poll is worth scheduling soon
func (s SessionStatus) IsTransitional() bool {
	switch s {
	case StatusPulling, StatusPreparing, StatusTerminating, StatusRestarting, StatusScheduled, StatusPending:
		return true
	}
	return false
}

// Session is a compute session as shown in the console
type Session struct {
	ID              string            `json:"id"`
	Name            string            `json:"name"`
	Image           string            `json:"image"`
	Type            string            `json:"type"` // interactive or batch
	Status          SessionStatus     `json:"status"`
	StatusInfo      *string           `json:"statusInfo,omitempty"`
	AccessKey       string            `json:"accessKey"`
	GroupID         *string           `json:"groupId,omitempty"`
	Occupied        map[string]string `json:"occupiedSlots,omitempty"` // slot name -> amount
	CreatedAt       *time.Time        `json:"createdAt,omitempty"`
	TerminatedAt    *time.Time        `json:"terminatedAt,omitempty"`
	ScalingGroup    *string           `json:"scalingGroup,omitempty"`
	ServicePorts    []string          `json:"servicePorts,omitempty"`
	ClusterSize     int               `json:"clusterSize,omitempty"`
	MountedVFolders []string          `json:"mounts,omitempty"`
}

// SortKey returns the values used for semantic ordering of sessions.
func (s Session) SortKey() SortKey {
	return SortKey{Status: string(s.Status), Name: s.Name}
}

// VFolderPermission is a virtual folder's permission mode
type VFolderPermission string

const (
	PermReadOnly    VFolderPermission = "ro"
	PermReadWrite   VFolderPermission = "rw"
	PermWriteDelete VFolderPermission = "wd"
)

// Describe returns a human-readable label for the permission
func (p VFolderPermission) Describe() string {
	switch p {
	case PermReadOnly:
		return "Read-Only"
	case PermReadWrite:
		return "Read-Write"
	case PermWriteDelete:
		return "Read-Write-Delete"
	default:
		return string(p)
	}
}

// VFolder is a virtual storage folder
type VFolder struct {
	ID         string            `json:"id"`
	Name       string            `json:"name"`
	Host       string            `json:"host"`
	UsageMode  string            `json:"usageMode"` // general, data, model
	Permission VFolderPermission `json:"permission"`
	Ownership  string            `json:"ownershipType"` // user or group
	GroupID    *string           `json:"groupId,omitempty"`
	Creator    string            `json:"creator,omitempty"`
	Cloneable  bool              `json:"cloneable"`
	CreatedAt  *time.Time        `json:"createdAt,omitempty"`
	MaxSize    int64             `json:"maxSize,omitempty"` // bytes, 0 = unlimited
	UsedBytes  int64             `json:"usedBytes,omitempty"`
	NumFiles   int               `json:"numFiles,omitempty"`
}

// FolderInvitation is a pending share invitation for a virtual folder
type FolderInvitation struct {
	ID         string            `json:"id"`
	FolderName string            `json:"vfolderName"`
	Inviter    string            `json:"inviter"`
	Invitee    string            `json:"invitee"`
	Permission VFolderPermission `json:"permission"`
	State      string            `json:"state"`
}

// FolderFile is one entry of a folder listing
type FolderFile struct {
	Name     string     `json:"name"`
	Type     string     `json:"type"` // FILE or DIRECTORY
	Size     int64      `json:"size"`
	Mode     string     `json:"mode,omitempty"`
	Modified *time.Time `json:"modified,omitempty"`
}

// ResourceSlots maps a slot name (cpu, mem, cuda.device, ...) to an amount
type ResourceSlots map[string]float64

// ResourceInformation holds used and total slot amounts for one group
type ResourceInformation struct {
	GroupName string        `json:"groupName"`
	Used      ResourceSlots `json:"used"`
	Total     ResourceSlots `json:"total"`
}

// PercentUsed returns the usage percentage for one slot, or 0 when the
// slot has no capacity
func (r ResourceInformation) PercentUsed(slot string) float64 {
	total := r.Total[slot]
	if total <= 0 {
		return 0
	}
	return r.Used[slot] / total * 100
}

// ResourcePolicy is a keypair resource policy
type ResourcePolicy struct {
	Name                    string        `json:"name"`
	TotalResourceSlots      ResourceSlots `json:"totalResourceSlots"`
	MaxConcurrentSessions   int           `json:"maxConcurrentSessions"`
	MaxContainersPerSession int           `json:"maxContainersPerSession"`
	IdleTimeout             int64         `json:"idleTimeout"` // seconds
	MaxVFolderCount         int           `json:"maxVfolderCount"`
	MaxVFolderSize          int64         `json:"maxVfolderSize"` // bytes
	AllowedVFolderHosts     []string      `json:"allowedVfolderHosts,omitempty"`
}

// Server is one configured cluster endpoint with its keypair
type Server struct {
	Endpoint   string `json:"endpoint"`
	AccessKey  string `json:"accessKey"`
	SecretKey  string `json:"secretKey"`
	Domain     string `json:"domain,omitempty"`
	Group      string `json:"group,omitempty"`
	APIVersion string `json:"apiVersion,omitempty"`
	Insecure   bool   `json:"insecure,omitempty"`
}

// TerminalState represents terminal dimensions
type TerminalState struct {
	Rows int `json:"rows"`
	Cols int `json:"cols"`
}

// Helper methods for set operations using map[string]bool

// NewStringSet creates a new string set
func NewStringSet() map[string]bool {
	return make(map[string]bool)
}

// StringSetFromSlice creates a string set from a slice
func StringSetFromSlice(items []string) map[string]bool {
	set := make(map[string]bool)
	for _, item := range items {
		set[item] = true
	}
	return set
}

// AddToStringSet adds an item to a string set
func AddToStringSet(set map[string]bool, item string) map[string]bool {
	if set == nil {
		set = make(map[string]bool)
	}
	set[item] = true
	return set
}

// RemoveFromStringSet removes an item from a string set
func RemoveFromStringSet(set map[string]bool, item string) map[string]bool {
	if set != nil {
		delete(set, item)
	}
	return set
}

// HasInStringSet checks if an item exists in a string set
func HasInStringSet(set map[string]bool, item string) bool {
	return set != nil && set[item]
}

// Announcement is the cluster-wide notice rendered on the summary view
type Announcement struct {
	Enabled   bool      `json:"enabled"`
	Markdown  string    `json:"content"`
	FetchedAt time.Time `json:"fetchedAt"`
}
