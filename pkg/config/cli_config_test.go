package config

import (
	"os"
	"path/filepath"
	"testing"
)

const sampleClusterConfig = `clusters:
  - name: production
    endpoint: https://api.cluster.example.com
    access-key: AKIAPROD
    secret-key: prodsecret
    domain: default
    group: default
  - name: staging
    endpoint: staging.cluster.example.com
    access-key: AKIASTAGE
    secret-key: stagesecret
    insecure: true
current-cluster: production
`

func writeClusterConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "clusters.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func clearKeypairEnv(t *testing.T) {
	t.Helper()
	t.Setenv("BACKEND_ENDPOINT", "")
	t.Setenv("BACKEND_ACCESS_KEY", "")
	t.Setenv("BACKEND_SECRET_KEY", "")
}

func TestReadClusterConfig(t *testing.T) {
	path := writeClusterConfig(t, sampleClusterConfig)

	config, err := ReadClusterConfigFromPath(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(config.Clusters) != 2 {
		t.Fatalf("expected 2 clusters, got %d", len(config.Clusters))
	}
	if config.CurrentCluster != "production" {
		t.Errorf("current cluster = %s", config.CurrentCluster)
	}

	names := config.ClusterNames()
	if len(names) != 2 || names[0] != "production" || names[1] != "staging" {
		t.Errorf("cluster names = %v", names)
	}
}

func TestGetCurrentCluster(t *testing.T) {
	t.Run("named selection", func(t *testing.T) {
		config := &ClusterConfig{
			Clusters: []Cluster{
				{Name: "a", Endpoint: "https://a.example.com"},
				{Name: "b", Endpoint: "https://b.example.com"},
			},
			CurrentCluster: "b",
		}
		cluster, err := config.GetCurrentCluster()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cluster.Name != "b" {
			t.Errorf("cluster = %s", cluster.Name)
		}
	})

	t.Run("single cluster needs no selection", func(t *testing.T) {
		config := &ClusterConfig{
			Clusters: []Cluster{{Name: "only", Endpoint: "https://only.example.com"}},
		}
		cluster, err := config.GetCurrentCluster()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cluster.Name != "only" {
			t.Errorf("cluster = %s", cluster.Name)
		}
	})

	t.Run("ambiguous selection fails", func(t *testing.T) {
		config := &ClusterConfig{
			Clusters: []Cluster{{Name: "a"}, {Name: "b"}},
		}
		if _, err := config.GetCurrentCluster(); err == nil {
			t.Error("expected error with two clusters and no selection")
		}
	})

	t.Run("no clusters fails", func(t *testing.T) {
		config := &ClusterConfig{}
		if _, err := config.GetCurrentCluster(); err == nil {
			t.Error("expected error with empty config")
		}
	})

	t.Run("unknown name fails", func(t *testing.T) {
		config := &ClusterConfig{
			Clusters:       []Cluster{{Name: "a"}},
			CurrentCluster: "missing",
		}
		if _, err := config.GetCurrentCluster(); err == nil {
			t.Error("expected error for unknown cluster name")
		}
	})
}

func TestSetCurrentCluster(t *testing.T) {
	config := &ClusterConfig{
		Clusters:       []Cluster{{Name: "a"}, {Name: "b"}},
		CurrentCluster: "a",
	}
	if err := config.SetCurrentCluster("b"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if config.CurrentCluster != "b" {
		t.Errorf("current cluster = %s", config.CurrentCluster)
	}
	if err := config.SetCurrentCluster("nope"); err == nil {
		t.Error("unknown cluster should not be selectable")
	}
}

func TestToServerConfig(t *testing.T) {
	clearKeypairEnv(t)

	path := writeClusterConfig(t, sampleClusterConfig)
	config, err := ReadClusterConfigFromPath(path)
	if err != nil {
		t.Fatal(err)
	}

	server, err := config.ToServerConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if server.Endpoint != "https://api.cluster.example.com" {
		t.Errorf("endpoint = %s", server.Endpoint)
	}
	if server.AccessKey != "AKIAPROD" || server.SecretKey != "prodsecret" {
		t.Errorf("keypair = %s/%s", server.AccessKey, server.SecretKey)
	}
	if server.Domain != "default" {
		t.Errorf("domain = %s", server.Domain)
	}
}

func TestToServerConfigSchemeDefaulting(t *testing.T) {
	clearKeypairEnv(t)

	config := &ClusterConfig{
		Clusters: []Cluster{{
			Name:      "bare",
			Endpoint:  "api.cluster.example.com",
			AccessKey: "AK",
			SecretKey: "SK",
		}},
	}
	server, err := config.ToServerConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if server.Endpoint != "https://api.cluster.example.com" {
		t.Errorf("bare endpoint should default to https, got %s", server.Endpoint)
	}

	config.Clusters[0].PlainText = true
	server, err = config.ToServerConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if server.Endpoint != "http://api.cluster.example.com" {
		t.Errorf("plain-text endpoint should default to http, got %s", server.Endpoint)
	}
}

func TestToServerConfigEnvOverrides(t *testing.T) {
	path := writeClusterConfig(t, sampleClusterConfig)
	config, err := ReadClusterConfigFromPath(path)
	if err != nil {
		t.Fatal(err)
	}

	t.Setenv("BACKEND_ENDPOINT", "https://override.example.com")
	t.Setenv("BACKEND_ACCESS_KEY", "AKIAENV")
	t.Setenv("BACKEND_SECRET_KEY", "envsecret")

	server, err := config.ToServerConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if server.Endpoint != "https://override.example.com" {
		t.Errorf("endpoint override not applied: %s", server.Endpoint)
	}
	if server.AccessKey != "AKIAENV" || server.SecretKey != "envsecret" {
		t.Errorf("keypair override not applied: %s/%s", server.AccessKey, server.SecretKey)
	}
}

func TestToServerConfigMissingKeypair(t *testing.T) {
	clearKeypairEnv(t)

	config := &ClusterConfig{
		Clusters: []Cluster{{Name: "incomplete", Endpoint: "https://x.example.com"}},
	}
	if _, err := config.ToServerConfig(); err == nil {
		t.Error("missing keypair should produce an error")
	}
}

func TestWriteClusterConfigPermissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "clusters.yaml")
	config := &ClusterConfig{
		Clusters: []Cluster{{Name: "a", Endpoint: "https://a", AccessKey: "AK", SecretKey: "SK"}},
	}
	if err := WriteClusterConfigToPath(config, path); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("config file perm = %o, want 0600", perm)
	}

	reread, err := ReadClusterConfigFromPath(path)
	if err != nil {
		t.Fatalf("reread failed: %v", err)
	}
	if len(reread.Clusters) != 1 || reread.Clusters[0].SecretKey != "SK" {
		t.Errorf("round trip lost data: %+v", reread)
	}
}
