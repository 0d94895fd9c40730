package config

import "time"

type Config struct {
	Server   ServerConfig            `yaml:"server"`
	Log      LogConfig               `yaml:"log"`
	Web      WebConfig               `yaml:"web"`
	Session  SessionConfig           `yaml:"session"`
	Export   ExportConfig            `yaml:"export"`
	Vision   map[string]VisionConfig `yaml:"vision"`
	Selected SelectedConfig          `yaml:"selected_module"`
}

type ServerConfig struct {
	IP   string `yaml:"ip"`
	Port int    `yaml:"port"`
}

type LogConfig struct {
	Level string `yaml:"log_level"`
	Dir   string `yaml:"log_dir"`
	File  string `yaml:"log_file"`
}

type WebConfig struct {
	StaticDir string `yaml:"static_dir"`
}

// SessionConfig selects and tunes the session store driver.
type SessionConfig struct {
	Store StoreConfig `yaml:"store"`
}

type StoreConfig struct {
	Type   string             `yaml:"type"`
	TTL    time.Duration      `yaml:"ttl"`
	Redis  RedisStoreConfig   `yaml:"redis,omitempty"`
	Memory MemoryStoreConfig  `yaml:"memory,omitempty"`
}

type RedisStoreConfig struct {
	Addr     string `yaml:"addr"`
	Username string `yaml:"username,omitempty"`
	Password string `yaml:"password,omitempty"`
	DB       int    `yaml:"db,omitempty"`
	Prefix   string `yaml:"prefix,omitempty"`
}

type MemoryStoreConfig struct {
	Cleanup time.Duration `yaml:"cleanup"`
}

// ExportConfig controls document staging for downloads.
type ExportConfig struct {
	TempDir string `yaml:"temp_dir"`
}

// VisionConfig describes one inference endpoint able to consume
// (prompt, image) pairs.
type VisionConfig struct {
	Type        string         `yaml:"type"`
	ModelName   string         `yaml:"model_name"`
	BaseURL     string         `yaml:"url"`
	APIKey      string         `yaml:"api_key"`
	Temperature float64        `yaml:"temperature"`
	MaxTokens   int            `yaml:"max_tokens"`
	TopP        float64        `yaml:"top_p"`
	Security    SecurityConfig `yaml:"security"`
}

// SecurityConfig bounds what the image intake pipeline accepts.
type SecurityConfig struct {
	MaxFileSize    int64    `yaml:"max_file_size"`
	MaxPixels      int64    `yaml:"max_pixels"`
	MaxWidth       int      `yaml:"max_width"`
	MaxHeight      int      `yaml:"max_height"`
	AllowedFormats []string `yaml:"allowed_formats"`
	EnableDeepScan bool     `yaml:"enable_deep_scan"`
}

type SelectedConfig struct {
	Vision string `yaml:"vision"`
}
