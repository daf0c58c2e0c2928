package api

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sessionaut/sessionaut/pkg/model"
)

// AnnouncementService fetches the cluster-wide operator announcement.
type AnnouncementService struct {
	client *Client
}

// NewAnnouncementService creates a new announcement service
func NewAnnouncementService(server *model.Server) *AnnouncementService {
	return &AnnouncementService{
		client: NewClient(server),
	}
}

// Get returns the current announcement. Older managers without the
// announcement API yield a disabled announcement instead of an error.
func (s *AnnouncementService) Get(ctx context.Context) (model.Announcement, error) {
	data, err := s.client.Get(ctx, "/manager/announcement")
	if err != nil {
		return model.Announcement{}, fmt.Errorf("failed to get announcement: %w", err)
	}

	var payload struct {
		Enabled bool   `json:"enabled"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return model.Announcement{}, fmt.Errorf("failed to parse announcement: %w", err)
	}

	return model.Announcement{
		Enabled:   payload.Enabled,
		Markdown:  payload.Message,
		FetchedAt: time.Now(),
	}, nil
}
