// CLAUDE:SUMMARY Canvas service configuration — YAML loader, defaults, and surface URL construction.
package canvas

import (
	"fmt"
	"net"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds all canvas service configuration.
type Config struct {
	Host         string `yaml:"host"`
	Port         int    `yaml:"port"`
	ExternalHost string `yaml:"external_host"` // host used in surface URLs; empty = auto-detect
	DefaultSize  string `yaml:"default_size"`  // size preset for new surfaces
	SubBuffer    int    `yaml:"subscriber_buffer"`
	AuditDB      string `yaml:"audit_db"`
}

func (c *Config) defaults() {
	if c.Host == "" {
		c.Host = "0.0.0.0"
	}
	if c.Port <= 0 {
		c.Port = 8080
	}
	if c.DefaultSize == "" {
		c.DefaultSize = string(PresetTV1080p)
	}
	if c.SubBuffer <= 0 {
		c.SubBuffer = 64
	}
	if c.AuditDB == "" {
		c.AuditDB = "uijit.db"
	}
}

// LoadConfigFile reads a YAML config file.
func LoadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SurfaceURLs returns the HTTP page URL and WebSocket URL for a surface.
// External clients (the Chromecast receiver) need a reachable host, so a
// wildcard bind address is replaced by the machine's network IP unless
// external_host is set.
func (c *Config) SurfaceURLs(surfaceID string) (localURL, wsURL string) {
	host := c.ExternalHost
	if host == "" {
		if c.Host == "0.0.0.0" || c.Host == "::" {
			host = localIP()
		} else {
			host = c.Host
		}
	}
	base := fmt.Sprintf("%s:%d", host, c.Port)
	return fmt.Sprintf("http://%s/canvas/%s", base, surfaceID),
		fmt.Sprintf("ws://%s/ws/%s", base, surfaceID)
}

// localIP finds the machine's outbound network IP. The dial never sends
// traffic; it only selects a route.
func localIP() string {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		return "127.0.0.1"
	}
	defer conn.Close()
	return conn.LocalAddr().(*net.UDPAddr).IP.String()
}
