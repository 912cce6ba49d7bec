// Package profile holds the runtime configuration of the server.
package profile

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Profile is the configuration to start the main server.
type Profile struct {
	// Mode can be "prod" or "dev" or "demo"
	Mode string
	// Addr is the binding address for server
	Addr string
	// Port is the binding port for server
	Port int
	// Data is the data directory
	Data string
	// DSN points to where satchel stores its own data
	DSN string
	// Driver is the database driver (sqlite only for now)
	Driver string
	// Version is the current version of server
	Version string
	// InstanceURL is the url of your satchel instance.
	InstanceURL string

	// AI configuration
	AIEnabled     bool   // SATCHEL_AI_ENABLED
	AIAPIKey      string // SATCHEL_AI_API_KEY
	AIBaseURL     string // SATCHEL_AI_BASE_URL (default: https://api.openai.com/v1)
	AIChatModel   string // SATCHEL_AI_CHAT_MODEL (default: gpt-4o-mini)
	AIImageModel  string // SATCHEL_AI_IMAGE_MODEL (default: dall-e-3)
	AISpeechModel string // SATCHEL_AI_SPEECH_MODEL (default: tts-1)

	// ProxyURL is the dispatch target for batched AI requests. When empty the
	// server dispatches to its own /api/ai endpoint.
	ProxyURL string // SATCHEL_AI_PROXY_URL
	// ProxySecret, when set, is the shared secret used to sign and verify the
	// bearer token between the dispatch client and the proxy endpoint.
	ProxySecret string // SATCHEL_AI_PROXY_SECRET

	// Canvas configuration
	CanvasBaseURL      string        // SATCHEL_CANVAS_BASE_URL (e.g. https://school.instructure.com)
	CanvasToken        string        // SATCHEL_CANVAS_TOKEN
	CanvasSyncInterval time.Duration // SATCHEL_CANVAS_SYNC_INTERVAL (default: 30m)

	// CacheRedisAddr enables the shared redis result cache when set.
	CacheRedisAddr     string // SATCHEL_CACHE_REDIS_ADDR
	CacheRedisPassword string // SATCHEL_CACHE_REDIS_PASSWORD
	// CacheMaxEntries bounds the in-memory result cache. Zero means unbounded.
	CacheMaxEntries int // SATCHEL_CACHE_MAX_ENTRIES
}

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// IsAIEnabled returns true if AI is enabled and either an API key or an
// external proxy URL is configured.
func (p *Profile) IsAIEnabled() bool {
	return p.AIEnabled && (p.AIAPIKey != "" || p.ProxyURL != "")
}

// IsCanvasEnabled returns true if a Canvas instance and token are configured.
func (p *Profile) IsCanvasEnabled() bool {
	return p.CanvasBaseURL != "" && p.CanvasToken != ""
}

// getEnvOrDefault returns the environment variable value or the default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// FromEnv loads configuration from SATCHEL_* environment variables.
func (p *Profile) FromEnv() {
	p.AIEnabled = os.Getenv("SATCHEL_AI_ENABLED") == "true"
	p.AIAPIKey = os.Getenv("SATCHEL_AI_API_KEY")
	p.AIBaseURL = getEnvOrDefault("SATCHEL_AI_BASE_URL", "https://api.openai.com/v1")
	p.AIChatModel = getEnvOrDefault("SATCHEL_AI_CHAT_MODEL", "gpt-4o-mini")
	p.AIImageModel = getEnvOrDefault("SATCHEL_AI_IMAGE_MODEL", "dall-e-3")
	p.AISpeechModel = getEnvOrDefault("SATCHEL_AI_SPEECH_MODEL", "tts-1")

	p.ProxyURL = os.Getenv("SATCHEL_AI_PROXY_URL")
	p.ProxySecret = os.Getenv("SATCHEL_AI_PROXY_SECRET")

	p.CanvasBaseURL = strings.TrimRight(os.Getenv("SATCHEL_CANVAS_BASE_URL"), "/")
	p.CanvasToken = os.Getenv("SATCHEL_CANVAS_TOKEN")
	p.CanvasSyncInterval = 30 * time.Minute
	if v := os.Getenv("SATCHEL_CANVAS_SYNC_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			p.CanvasSyncInterval = d
		} else if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			p.CanvasSyncInterval = time.Duration(secs) * time.Second
		}
	}

	p.CacheRedisAddr = os.Getenv("SATCHEL_CACHE_REDIS_ADDR")
	p.CacheRedisPassword = os.Getenv("SATCHEL_CACHE_REDIS_PASSWORD")
	if v := os.Getenv("SATCHEL_CACHE_MAX_ENTRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			p.CacheMaxEntries = n
		}
	}
}

func checkDataDir(dataDir string) (string, error) {
	// Convert to absolute path if relative path is supplied.
	if !filepath.IsAbs(dataDir) {
		relativeDir := filepath.Join(filepath.Dir(os.Args[0]), dataDir)
		absDir, err := filepath.Abs(relativeDir)
		if err != nil {
			return "", err
		}
		dataDir = absDir
	}

	// Trim trailing \ or / in case user supplies
	dataDir = strings.TrimRight(dataDir, "\\/")
	if _, err := os.Stat(dataDir); err != nil {
		return "", errors.Wrapf(err, "unable to access data folder %s", dataDir)
	}
	return dataDir, nil
}

func (p *Profile) Validate() error {
	if p.Mode != "demo" && p.Mode != "dev" && p.Mode != "prod" {
		p.Mode = "demo"
	}

	if p.Mode == "prod" && p.Data == "" {
		if runtime.GOOS == "windows" {
			p.Data = filepath.Join(os.Getenv("ProgramData"), "satchel")
			if _, err := os.Stat(p.Data); os.IsNotExist(err) {
				if err := os.MkdirAll(p.Data, 0770); err != nil {
					slog.Error("failed to create data directory", slog.String("data", p.Data), slog.String("error", err.Error()))
					return err
				}
			}
		} else {
			p.Data = "/var/opt/satchel"
		}
	}

	dataDir, err := checkDataDir(p.Data)
	if err != nil {
		slog.Error("failed to check data directory", slog.String("data", p.Data), slog.String("error", err.Error()))
		return err
	}

	p.Data = dataDir
	if p.Driver == "sqlite" && p.DSN == "" {
		dbFile := fmt.Sprintf("satchel_%s.db", p.Mode)
		p.DSN = filepath.Join(dataDir, dbFile)
	}

	return nil
}
