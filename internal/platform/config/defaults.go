package config

import "time"

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			IP:   "0.0.0.0",
			Port: 8080,
		},
		Log: LogConfig{
			Level: "info",
			Dir:   "data/logs",
			File:  "server.log",
		},
		Web: WebConfig{
			StaticDir: "./web",
		},
		Session: SessionConfig{
			Store: StoreConfig{
				Type: "memory",
				TTL:  2 * time.Hour,
				Memory: MemoryStoreConfig{
					Cleanup: 5 * time.Minute,
				},
				Redis: RedisStoreConfig{
					Addr:   "127.0.0.1:6379",
					Prefix: "medinsight:session:",
				},
			},
		},
		Export: ExportConfig{
			TempDir: "data/tmp",
		},
		Selected: SelectedConfig{
			Vision: "GeminiVision",
		},
		Vision: map[string]VisionConfig{
			"GeminiVision": {
				Type:        "openai",
				ModelName:   "gemini-2.0-flash-exp",
				BaseURL:     "https://generativelanguage.googleapis.com/v1beta/openai/",
				APIKey:      "your_api_key",
				Temperature: 0.7,
				MaxTokens:   4096,
				TopP:        0.9,
				Security:    defaultSecurity(),
			},
			"ChatGLMVision": {
				Type:        "openai",
				ModelName:   "glm-4v-flash",
				BaseURL:     "https://open.bigmodel.cn/api/paas/v4/",
				APIKey:      "your_api_key",
				Temperature: 0.7,
				MaxTokens:   4096,
				TopP:        0.9,
				Security:    defaultSecurity(),
			},
			"OllamaVision": {
				Type:        "ollama",
				ModelName:   "qwen2.5vl",
				BaseURL:     "http://localhost:11434",
				Temperature: 0.7,
				MaxTokens:   4096,
				TopP:        0.9,
				Security:    defaultSecurity(),
			},
		},
	}
}

func defaultSecurity() SecurityConfig {
	return SecurityConfig{
		MaxFileSize:    10485760,
		MaxPixels:      16777216,
		MaxWidth:       4096,
		MaxHeight:      4096,
		AllowedFormats: []string{"jpeg", "jpg", "png", "webp", "bmp", "dicom"},
		EnableDeepScan: true,
	}
}
