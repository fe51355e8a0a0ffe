package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"
)

// Config aggregates every setting the service reads at startup.
type Config struct {
	Server        ServerConfig
	Gateway       GatewayConfig
	Directory     DirectoryConfig
	Orchestration OrchestrationConfig
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	gateway, err := loadGatewayConfig()
	if err != nil {
		return nil, err
	}

	directory, err := loadDirectoryConfig()
	if err != nil {
		return nil, err
	}

	orchestration, err := loadOrchestrationConfig()
	if err != nil {
		return nil, err
	}

	return &Config{
		Server:        server,
		Gateway:       gateway,
		Directory:     directory,
		Orchestration: orchestration,
	}, nil
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Addr string
}

func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	if strings.Contains(port, ":") {
		// Allow passing ":8080" or "127.0.0.1:8080" directly.
		return ServerConfig{Addr: port}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port}, nil
}

// GatewayConfig describes the language-model gateway.
type GatewayConfig struct {
	Provider   string // "http" or "ark"
	BaseURL    string
	Model      string
	Stream     bool
	Timeout    time.Duration
	MaxRetries int

	// Ark credentials, used when Provider is "ark".
	APIKey    string
	AccessKey string
	SecretKey string
	ArkURL    string
	Region    string
}

// ArkEnabled reports whether the required Ark credentials are present.
func (c GatewayConfig) ArkEnabled() bool {
	return c.Model != "" && (c.APIKey != "" || (c.AccessKey != "" && c.SecretKey != ""))
}

// NewChatModel creates an eino chat model from the Ark credentials.
func (c GatewayConfig) NewChatModel(ctx context.Context) (model.ChatModel, error) {
	if !c.ArkEnabled() {
		return nil, fmt.Errorf("ark credentials missing: provide ARK_API_KEY or ARK_ACCESS_KEY/ARK_SECRET_KEY plus GATEWAY_MODEL")
	}

	return ark.NewChatModel(ctx, &ark.ChatModelConfig{
		BaseURL:   c.ArkURL,
		Region:    c.Region,
		APIKey:    c.APIKey,
		AccessKey: c.AccessKey,
		SecretKey: c.SecretKey,
		Model:     c.Model,
	})
}

func loadGatewayConfig() (GatewayConfig, error) {
	timeoutSeconds := 30
	if override, err := parseOptionalIntEnv("GATEWAY_TIMEOUT"); err != nil {
		return GatewayConfig{}, err
	} else if override != nil {
		timeoutSeconds = *override
	}

	retries := 2
	if override, err := parseOptionalIntEnv("GATEWAY_MAX_RETRIES"); err != nil {
		return GatewayConfig{}, err
	} else if override != nil {
		if *override < 0 {
			return GatewayConfig{}, fmt.Errorf("GATEWAY_MAX_RETRIES must not be negative")
		}
		retries = *override
	}

	stream, err := parseBoolEnv("GATEWAY_STREAM", false)
	if err != nil {
		return GatewayConfig{}, err
	}

	provider := strings.ToLower(getEnvOrDefault("GATEWAY_PROVIDER", "http"))
	if provider != "http" && provider != "ark" {
		return GatewayConfig{}, fmt.Errorf("invalid GATEWAY_PROVIDER value %q: want http or ark", provider)
	}

	return GatewayConfig{
		Provider:   provider,
		BaseURL:    getEnvOrDefault("GATEWAY_BASE_URL", "http://localhost:11434"),
		Model:      getEnvOrDefault("GATEWAY_MODEL", "llama3.1"),
		Stream:     stream,
		Timeout:    time.Duration(timeoutSeconds) * time.Second,
		MaxRetries: retries,
		APIKey:     strings.TrimSpace(os.Getenv("ARK_API_KEY")),
		AccessKey:  strings.TrimSpace(os.Getenv("ARK_ACCESS_KEY")),
		SecretKey:  strings.TrimSpace(os.Getenv("ARK_SECRET_KEY")),
		ArkURL:     getEnvOrDefault("ARK_BASE_URL", "https://ark.cn-beijing.volces.com/api/v3"),
		Region:     getEnvOrDefault("ARK_REGION", "cn-beijing"),
	}, nil
}

// DirectoryConfig describes the external directory and collector services.
// Empty URLs switch the service to in-memory dev mode for that collaborator.
type DirectoryConfig struct {
	PersonaURL   string
	ProfileURL   string
	CollectorURL string
	Timeout      time.Duration
	StrictMatch  bool
}

func loadDirectoryConfig() (DirectoryConfig, error) {
	strict, err := parseBoolEnv("PERSONA_STRICT_MATCH", false)
	if err != nil {
		return DirectoryConfig{}, err
	}

	timeoutSeconds := 10
	if override, err := parseOptionalIntEnv("DIRECTORY_TIMEOUT"); err != nil {
		return DirectoryConfig{}, err
	} else if override != nil {
		timeoutSeconds = *override
	}

	return DirectoryConfig{
		PersonaURL:   strings.TrimRight(strings.TrimSpace(os.Getenv("PERSONA_SERVICE_URL")), "/"),
		ProfileURL:   strings.TrimRight(strings.TrimSpace(os.Getenv("PROFILE_SERVICE_URL")), "/"),
		CollectorURL: strings.TrimRight(strings.TrimSpace(os.Getenv("COLLECTOR_SERVICE_URL")), "/"),
		Timeout:      time.Duration(timeoutSeconds) * time.Second,
		StrictMatch:  strict,
	}, nil
}

// OrchestrationConfig tunes workflow behavior.
type OrchestrationConfig struct {
	OnboardingPersona string
	FanoutWorkers     int
	FanoutPartial     bool
}

func loadOrchestrationConfig() (OrchestrationConfig, error) {
	workers := 4
	if override, err := parseOptionalIntEnv("FANOUT_WORKERS"); err != nil {
		return OrchestrationConfig{}, err
	} else if override != nil {
		if *override < 1 {
			workers = 1
		} else {
			workers = *override
		}
	}

	partial, err := parseBoolEnv("FANOUT_PARTIAL", false)
	if err != nil {
		return OrchestrationConfig{}, err
	}

	return OrchestrationConfig{
		OnboardingPersona: getEnvOrDefault("ONBOARDING_PERSONA", "Alex Generalis"),
		FanoutWorkers:     workers,
		FanoutPartial:     partial,
	}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseBoolEnv(key string, defaultValue bool) (bool, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}

	val, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return val, nil
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}
