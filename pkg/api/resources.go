package api

import (
	"context"
	"fmt"
	"math"
	"strconv"

	"github.com/tidwall/gjson"

	appcontext "github.com/sessionaut/sessionaut/pkg/context"
	"github.com/sessionaut/sessionaut/pkg/model"
)

// ResourcePreset is one admin-defined session size with its current
// allocatability against the caller's remaining quota.
type ResourcePreset struct {
	Name        string              `json:"name"`
	Slots       model.ResourceSlots `json:"resource_slots"`
	Allocatable bool                `json:"allocatable"`
}

// PresetCheck is the manager's full quota snapshot: admin presets plus
// keypair and group usage against their policy limits.
type PresetCheck struct {
	Presets          []ResourcePreset
	KeypairLimits    model.ResourceSlots
	KeypairUsing     model.ResourceSlots
	KeypairRemaining model.ResourceSlots
	GroupLimits      model.ResourceSlots
	GroupUsing       model.ResourceSlots
	GroupRemaining   model.ResourceSlots
}

// ResourceService provides cluster resource accounting operations.
type ResourceService struct {
	client *Client
}

// NewResourceService creates a new resource service
func NewResourceService(server *model.Server) *ResourceService {
	return &ResourceService{
		client: NewClient(server),
	}
}

// CheckPresets fetches the manager's preset and quota snapshot for the
// given project group.
func (s *ResourceService) CheckPresets(ctx context.Context, group string) (*PresetCheck, error) {
	body := map[string]interface{}{}
	if group != "" {
		body["group"] = group
	}

	ctx, cancel := appcontext.WithResourceTimeout(ctx)
	defer cancel()

	data, err := s.client.Post(ctx, "/resource/check-presets", body)
	if err != nil {
		return nil, fmt.Errorf("failed to check resource presets: %w", err)
	}

	check := &PresetCheck{
		KeypairLimits:    parseSlots(gjson.GetBytes(data, "keypair_limits")),
		KeypairUsing:     parseSlots(gjson.GetBytes(data, "keypair_using")),
		KeypairRemaining: parseSlots(gjson.GetBytes(data, "keypair_remaining")),
		GroupLimits:      parseSlots(gjson.GetBytes(data, "group_limits")),
		GroupUsing:       parseSlots(gjson.GetBytes(data, "group_using")),
		GroupRemaining:   parseSlots(gjson.GetBytes(data, "group_remaining")),
	}

	gjson.GetBytes(data, "presets").ForEach(func(_, preset gjson.Result) bool {
		check.Presets = append(check.Presets, ResourcePreset{
			Name:        preset.Get("name").String(),
			Slots:       parseSlots(preset.Get("resource_slots")),
			Allocatable: preset.Get("allocatable").Bool(),
		})
		return true
	})

	return check, nil
}

// TotalResourceInformation condenses a preset check into the per-group
// used/total view shown on the summary screen.
func (s *ResourceService) TotalResourceInformation(ctx context.Context, group string) (model.ResourceInformation, error) {
	check, err := s.CheckPresets(ctx, group)
	if err != nil {
		return model.ResourceInformation{}, err
	}

	info := model.ResourceInformation{
		GroupName: group,
		Used:      check.GroupUsing,
		Total:     check.GroupLimits,
	}
	if len(info.Total) == 0 {
		info.Used = check.KeypairUsing
		info.Total = check.KeypairLimits
	}
	return info, nil
}

const keypairPolicyQuery = `query($access_key: String) {
  keypair(access_key: $access_key) { resource_policy }
}`

// OwnPolicyName resolves the name of the resource policy attached to the
// calling keypair.
func (s *ResourceService) OwnPolicyName(ctx context.Context) (string, error) {
	body := gqlRequest{
		Query:     keypairPolicyQuery,
		Variables: map[string]interface{}{"access_key": s.client.signer.AccessKey},
	}

	data, err := s.client.Post(ctx, "/admin/gql", body)
	if err != nil {
		return "", fmt.Errorf("failed to resolve keypair policy: %w", err)
	}

	name := gjson.GetBytes(data, "keypair.resource_policy")
	if !name.Exists() {
		name = gjson.GetBytes(data, "data.keypair.resource_policy")
	}
	if name.String() == "" {
		return "", fmt.Errorf("keypair has no resource policy")
	}
	return name.String(), nil
}

const resourcePolicyQuery = `query($name: String!) {
  keypair_resource_policy(name: $name) {
    name total_resource_slots max_concurrent_sessions
    max_containers_per_session idle_timeout
    max_vfolder_count max_vfolder_size allowed_vfolder_hosts
  }
}`

// ResourcePolicy fetches the keypair resource policy by name.
func (s *ResourceService) ResourcePolicy(ctx context.Context, name string) (model.ResourcePolicy, error) {
	if name == "" {
		return model.ResourcePolicy{}, fmt.Errorf("policy name is required")
	}

	body := gqlRequest{
		Query:     resourcePolicyQuery,
		Variables: map[string]interface{}{"name": name},
	}

	data, err := s.client.Post(ctx, "/admin/gql", body)
	if err != nil {
		return model.ResourcePolicy{}, fmt.Errorf("failed to get resource policy %s: %w", name, err)
	}

	root := gjson.GetBytes(data, "keypair_resource_policy")
	if !root.Exists() {
		root = gjson.GetBytes(data, "data.keypair_resource_policy")
	}
	if !root.Exists() {
		return model.ResourcePolicy{}, fmt.Errorf("failed to parse resource policy response")
	}

	policy := model.ResourcePolicy{
		Name:                    root.Get("name").String(),
		MaxConcurrentSessions:   int(root.Get("max_concurrent_sessions").Int()),
		MaxContainersPerSession: int(root.Get("max_containers_per_session").Int()),
		IdleTimeout:             root.Get("idle_timeout").Int(),
		MaxVFolderCount:         int(root.Get("max_vfolder_count").Int()),
		MaxVFolderSize:          root.Get("max_vfolder_size").Int(),
	}

	// total_resource_slots arrives as a JSON object encoded in a string.
	if slots := root.Get("total_resource_slots"); slots.Exists() {
		source := slots
		if slots.Type == gjson.String {
			source = gjson.Parse(slots.String())
		}
		policy.TotalResourceSlots = parseSlots(source)
	}

	root.Get("allowed_vfolder_hosts").ForEach(func(_, host gjson.Result) bool {
		policy.AllowedVFolderHosts = append(policy.AllowedVFolderHosts, host.String())
		return true
	})

	return policy, nil
}

// parseSlots converts a slot object into numeric amounts. Slot values may
// arrive as numbers, numeric strings, "Infinity" or null; unlimited and
// absent slots are skipped.
func parseSlots(obj gjson.Result) model.ResourceSlots {
	if !obj.Exists() {
		return nil
	}
	slots := model.ResourceSlots{}
	obj.ForEach(func(key, value gjson.Result) bool {
		switch value.Type {
		case gjson.Number:
			slots[key.String()] = value.Float()
		case gjson.String:
			if v, err := strconv.ParseFloat(value.String(), 64); err == nil &&
				!math.IsInf(v, 0) && !math.IsNaN(v) {
				slots[key.String()] = v
			}
		}
		return true
	})
	if len(slots) == 0 {
		return nil
	}
	return slots
}
