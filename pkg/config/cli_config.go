package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sessionaut/sessionaut/pkg/model"
	"gopkg.in/yaml.v3"
)

// Cluster is one configured cluster endpoint with its keypair
type Cluster struct {
	Name       string `yaml:"name"`
	Endpoint   string `yaml:"endpoint"`
	AccessKey  string `yaml:"access-key"`
	SecretKey  string `yaml:"secret-key"`
	Domain     string `yaml:"domain,omitempty"`
	Group      string `yaml:"group,omitempty"`
	APIVersion string `yaml:"api-version,omitempty"`
	Insecure   bool   `yaml:"insecure,omitempty"`
	PlainText  bool   `yaml:"plain-text,omitempty"`
}

// ClusterConfig holds all configured clusters and the active selection
type ClusterConfig struct {
	Clusters       []Cluster `yaml:"clusters,omitempty"`
	CurrentCluster string    `yaml:"current-cluster,omitempty"`
}

// GetConfigPath returns the path to the cluster configuration file
func GetConfigPath() string {
	if configPath := os.Getenv("SESSIONAUT_CLUSTERS"); configPath != "" {
		return configPath
	}

	if configDir := os.Getenv("SESSIONAUT_CONFIG_DIR"); configDir != "" {
		return filepath.Join(configDir, "clusters.yaml")
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "sessionaut", "clusters.yaml")
	}

	return filepath.Join(homeDir, ".config", "sessionaut", "clusters.yaml")
}

// ReadClusterConfig reads and parses the cluster configuration
func ReadClusterConfig() (*ClusterConfig, error) {
	return ReadClusterConfigFromPath(GetConfigPath())
}

// ReadClusterConfigFromPath reads the cluster configuration from a specific path
func ReadClusterConfigFromPath(configPath string) (*ClusterConfig, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read cluster config from %s: %w", configPath, err)
	}

	var config ClusterConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse cluster config: %w", err)
	}

	return &config, nil
}

// WriteClusterConfigToPath saves the cluster configuration. Keypair
// secrets live in this file, so it is written user-only.
func WriteClusterConfigToPath(config *ClusterConfig, configPath string) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal cluster config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write cluster config to %s: %w", configPath, err)
	}
	return nil
}

// GetCurrentCluster returns the active cluster entry
func (c *ClusterConfig) GetCurrentCluster() (*Cluster, error) {
	if len(c.Clusters) == 0 {
		return nil, fmt.Errorf("no clusters configured")
	}

	name := c.CurrentCluster
	if name == "" {
		if len(c.Clusters) == 1 {
			return &c.Clusters[0], nil
		}
		return nil, fmt.Errorf("no current cluster set and %d clusters configured", len(c.Clusters))
	}

	for i := range c.Clusters {
		if c.Clusters[i].Name == name {
			return &c.Clusters[i], nil
		}
	}

	return nil, fmt.Errorf("cluster %s not found in config", name)
}

// SetCurrentCluster switches the active cluster
func (c *ClusterConfig) SetCurrentCluster(name string) error {
	for i := range c.Clusters {
		if c.Clusters[i].Name == name {
			c.CurrentCluster = name
			return nil
		}
	}
	return fmt.Errorf("cluster %s not found in config", name)
}

// ClusterNames lists the configured cluster names
func (c *ClusterConfig) ClusterNames() []string {
	names := make([]string, 0, len(c.Clusters))
	for _, cluster := range c.Clusters {
		names = append(names, cluster.Name)
	}
	return names
}

// ToServerConfig converts the active cluster to the internal Server model.
// BACKEND_ENDPOINT, BACKEND_ACCESS_KEY and BACKEND_SECRET_KEY override
// the file values, matching the conventions of other cluster clients.
func (c *ClusterConfig) ToServerConfig() (*model.Server, error) {
	cluster, err := c.GetCurrentCluster()
	if err != nil {
		return nil, err
	}

	server := &model.Server{
		Endpoint:   ensureScheme(cluster.Endpoint, cluster.PlainText),
		AccessKey:  cluster.AccessKey,
		SecretKey:  cluster.SecretKey,
		Domain:     cluster.Domain,
		Group:      cluster.Group,
		APIVersion: cluster.APIVersion,
		Insecure:   cluster.Insecure,
	}

	if endpoint := os.Getenv("BACKEND_ENDPOINT"); endpoint != "" {
		server.Endpoint = endpoint
	}
	if accessKey := os.Getenv("BACKEND_ACCESS_KEY"); accessKey != "" {
		server.AccessKey = accessKey
	}
	if secretKey := os.Getenv("BACKEND_SECRET_KEY"); secretKey != "" {
		server.SecretKey = secretKey
	}

	if server.Endpoint == "" {
		return nil, fmt.Errorf("cluster %s has no endpoint", cluster.Name)
	}
	if server.AccessKey == "" || server.SecretKey == "" {
		return nil, fmt.Errorf("cluster %s has no keypair. Run 'sessionaut config' to add one", cluster.Name)
	}

	return server, nil
}

// ensureScheme ensures the endpoint URL carries a protocol
func ensureScheme(endpoint string, plainText bool) string {
	if len(endpoint) == 0 {
		return endpoint
	}

	if len(endpoint) >= 7 && (endpoint[:7] == "http://" || (len(endpoint) >= 8 && endpoint[:8] == "https://")) {
		return endpoint
	}

	if plainText {
		return "http://" + endpoint
	}
	return "https://" + endpoint
}
