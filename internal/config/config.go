package config

import (
	"fmt"
	"os"
	"strings"
)

type ErrMissingRequiredEnvVar struct {
	Name string
}

func (e *ErrMissingRequiredEnvVar) Error() string {
	return fmt.Sprintf("required environment variable %q is not set", e.Name)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func requireEnv(key string) (string, error) {
	v := os.Getenv(key)
	if v == "" {
		return "", &ErrMissingRequiredEnvVar{Name: key}
	}
	return v, nil
}

// GateConfig holds warehouse credentials for the gate CLI.
// The target database is fixed; everything else comes from the environment.
type GateConfig struct {
	Account   string
	User      string
	Password  string
	Role      string
	Warehouse string
	Database  string
}

// LoadGate reads the gate configuration from environment variables.
// Password is optional (key-pair or SSO auth may be configured on the driver side).
func LoadGate() (*GateConfig, error) {
	cfg := GateConfig{Database: "EPL"}
	var err error
	if cfg.Account, err = requireEnv("SNOWFLAKE_ACCOUNT"); err != nil {
		return nil, err
	}
	if cfg.User, err = requireEnv("SNOWFLAKE_USER"); err != nil {
		return nil, err
	}
	if cfg.Role, err = requireEnv("SNOWFLAKE_ROLE"); err != nil {
		return nil, err
	}
	if cfg.Warehouse, err = requireEnv("SNOWFLAKE_WAREHOUSE"); err != nil {
		return nil, err
	}
	cfg.Password = os.Getenv("SNOWFLAKE_PASSWORD")
	return &cfg, nil
}

// DispatcherConfig holds the dispatcher service configuration.
// PathBegins/PathEnds are optional safety filters on the event subject;
// the event subscription should already scope delivery for us.
type DispatcherConfig struct {
	Port       string
	Owner      string
	Repo       string
	Token      string
	PathBegins string
	PathEnds   string
	APIBaseURL string
}

// LoadDispatcher reads the dispatcher configuration from environment variables.
// Missing owner/repo/token is a fatal configuration error raised before any
// network call.
func LoadDispatcher() (*DispatcherConfig, error) {
	cfg := DispatcherConfig{
		Port:       getEnv("PORT", "8080"),
		PathBegins: os.Getenv("PATH_BEGINS"),
		PathEnds:   os.Getenv("PATH_ENDS"),
		APIBaseURL: getEnv("GITHUB_API_BASE_URL", "https://api.github.com"),
	}
	var err error
	if cfg.Owner, err = requireEnv("GITHUB_OWNER"); err != nil {
		return nil, err
	}
	if cfg.Repo, err = requireEnv("GITHUB_REPO"); err != nil {
		return nil, err
	}
	if cfg.Token, err = requireEnv("GITHUB_PAT"); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SplitterConfig holds the splitter service configuration.
type SplitterConfig struct {
	Port           string
	ServiceURI     string
	AccessKey      string
	SecretKey      string
	UseSSL         bool
	Container      string
	AcceptedSheets []string
}

// ErrStorageNotConfigured is returned when neither the service URI nor the
// connection string form of the storage settings is present.
type ErrStorageNotConfigured struct{}

func (e *ErrStorageNotConfigured) Error() string {
	return "storage connection not configured: set EPL_STORAGE_SERVICE_URI (preferred) or EPL_STORAGE (connection string)"
}

// LoadSplitter reads the splitter configuration from environment variables.
// The storage endpoint is resolved from EPL_STORAGE_SERVICE_URI plus
// EPL_STORAGE_ACCESS_KEY/EPL_STORAGE_SECRET_KEY, or from the EPL_STORAGE
// connection string as a fallback.
func LoadSplitter() (*SplitterConfig, error) {
	cfg := SplitterConfig{
		Port:      getEnv("PORT", "8080"),
		Container: getEnv("EPL_STORAGE_CONTAINER", "ingestion"),
	}

	if accepted := os.Getenv("ACCEPTED_SHEETS"); accepted != "" {
		for _, s := range strings.Split(accepted, ",") {
			if s = strings.TrimSpace(s); s != "" {
				cfg.AcceptedSheets = append(cfg.AcceptedSheets, s)
			}
		}
	}

	if uri := os.Getenv("EPL_STORAGE_SERVICE_URI"); uri != "" {
		cfg.ServiceURI = uri
		cfg.UseSSL = strings.HasPrefix(uri, "https://")
		var err error
		if cfg.AccessKey, err = requireEnv("EPL_STORAGE_ACCESS_KEY"); err != nil {
			return nil, err
		}
		if cfg.SecretKey, err = requireEnv("EPL_STORAGE_SECRET_KEY"); err != nil {
			return nil, err
		}
		return &cfg, nil
	}

	if connStr := os.Getenv("EPL_STORAGE"); connStr != "" {
		if err := parseConnectionString(connStr, &cfg); err != nil {
			return nil, err
		}
		return &cfg, nil
	}

	return nil, &ErrStorageNotConfigured{}
}

// parseConnectionString fills cfg from a semicolon-separated key=value string,
// e.g. "endpoint=https://store:9000;accessKey=abc;secretKey=def;useSSL=true".
func parseConnectionString(connStr string, cfg *SplitterConfig) error {
	for _, part := range strings.Split(connStr, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, value, ok := strings.Cut(part, "=")
		if !ok {
			return fmt.Errorf("malformed connection string segment %q", part)
		}
		switch strings.ToLower(key) {
		case "endpoint":
			cfg.ServiceURI = value
		case "accesskey":
			cfg.AccessKey = value
		case "secretkey":
			cfg.SecretKey = value
		case "usessl":
			cfg.UseSSL = value == "true"
		}
	}
	if cfg.ServiceURI == "" || cfg.AccessKey == "" || cfg.SecretKey == "" {
		return fmt.Errorf("connection string must include endpoint, accessKey and secretKey")
	}
	return nil
}

// Endpoint strips the URL scheme from the service URI, yielding the
// host[:port] form the storage SDK expects.
func (c *SplitterConfig) Endpoint() string {
	ep := c.ServiceURI
	ep = strings.TrimPrefix(ep, "https://")
	ep = strings.TrimPrefix(ep, "http://")
	return strings.TrimSuffix(ep, "/")
}
