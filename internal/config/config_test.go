package config

import (
	"strings"
	"testing"
	"time"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		config      Config
		wantErr     bool
		errorString string
	}{
		{
			name: "valid config",
			config: Config{
				Port:          "8080",
				SQLiteDBPath:  "./test.db",
				CacheTTL:      300 * time.Second,
				HeatmapMonths: 12,
			},
			wantErr: false,
		},
		{
			name: "invalid port - non-numeric",
			config: Config{
				Port:          "abc",
				SQLiteDBPath:  "./test.db",
				CacheTTL:      300 * time.Second,
				HeatmapMonths: 12,
			},
			wantErr:     true,
			errorString: "invalid port 'abc': must be a number",
		},
		{
			name: "invalid port - out of range",
			config: Config{
				Port:          "70000",
				SQLiteDBPath:  "./test.db",
				CacheTTL:      300 * time.Second,
				HeatmapMonths: 12,
			},
			wantErr:     true,
			errorString: "invalid port 70000: must be between 1 and 65535",
		},
		{
			name: "empty database path",
			config: Config{
				Port:          "8080",
				SQLiteDBPath:  "",
				CacheTTL:      300 * time.Second,
				HeatmapMonths: 12,
			},
			wantErr:     true,
			errorString: "SQLite database path cannot be empty",
		},
		{
			name: "cache TTL too short",
			config: Config{
				Port:          "8080",
				SQLiteDBPath:  "./test.db",
				CacheTTL:      100 * time.Millisecond,
				HeatmapMonths: 12,
			},
			wantErr:     true,
			errorString: "must be at least 1 second",
		},
		{
			name: "cache TTL too long",
			config: Config{
				Port:          "8080",
				SQLiteDBPath:  "./test.db",
				CacheTTL:      48 * time.Hour,
				HeatmapMonths: 12,
			},
			wantErr:     true,
			errorString: "must be at most 24 hours",
		},
		{
			name: "heatmap months below range",
			config: Config{
				Port:          "8080",
				SQLiteDBPath:  "./test.db",
				CacheTTL:      300 * time.Second,
				HeatmapMonths: 2,
			},
			wantErr:     true,
			errorString: "invalid heatmap months 2: must be between 3 and 24",
		},
		{
			name: "heatmap months above range",
			config: Config{
				Port:          "8080",
				SQLiteDBPath:  "./test.db",
				CacheTTL:      300 * time.Second,
				HeatmapMonths: 25,
			},
			wantErr:     true,
			errorString: "invalid heatmap months 25: must be between 3 and 24",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Validate() expected error containing %q, got nil", tt.errorString)
				}
				if !strings.Contains(err.Error(), tt.errorString) {
					t.Errorf("Validate() error = %v, want substring %q", err, tt.errorString)
				}
				return
			}
			if err != nil {
				t.Errorf("Validate() unexpected error: %v", err)
			}
		})
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("SQLITE_DB_PATH", "")
	t.Setenv("CACHE_TTL", "")
	t.Setenv("HEATMAP_MONTHS", "")

	cfg := Load()

	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.SQLiteDBPath != "./data/koksgladje.db" {
		t.Errorf("SQLiteDBPath = %q, want ./data/koksgladje.db", cfg.SQLiteDBPath)
	}
	if cfg.CacheTTL != 300*time.Second {
		t.Errorf("CacheTTL = %v, want 300s", cfg.CacheTTL)
	}
	if cfg.HeatmapMonths != 12 {
		t.Errorf("HeatmapMonths = %d, want 12", cfg.HeatmapMonths)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("CACHE_TTL", "1m")
	t.Setenv("HEATMAP_MONTHS", "6")

	cfg := Load()

	if cfg.Port != "9090" {
		t.Errorf("Port = %q, want 9090", cfg.Port)
	}
	if cfg.CacheTTL != time.Minute {
		t.Errorf("CacheTTL = %v, want 1m", cfg.CacheTTL)
	}
	if cfg.HeatmapMonths != 6 {
		t.Errorf("HeatmapMonths = %d, want 6", cfg.HeatmapMonths)
	}
}
