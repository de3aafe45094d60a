package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name              string
		configContent     string
		env               map[string]string
		wantErr           bool
		wantErrorContains []string
		want              *Config
	}{
		{
			name: "valid config file with custom values",
			configContent: `wordlists:
  directory: custom/wordlists
storage:
  data_directory: custom/data
remote:
  folder_name: custom-folder
  file_name: custom.json
sync:
  auto: true
  debounce_milliseconds: 250
  conflict_window_minutes: 10
review:
  new_item_limit: 5
`,
			want: &Config{
				Wordlists: WordlistsConfig{Directory: "custom/wordlists"},
				Storage:   StorageConfig{DataDirectory: "custom/data"},
				Remote: RemoteConfig{
					FolderName: "custom-folder",
					FileName:   "custom.json",
				},
				Sync: SyncConfig{
					Auto:                  true,
					DebounceMilliseconds:  250,
					ConflictWindowMinutes: 10,
				},
				Review: ReviewConfig{NewItemLimit: 5},
			},
		},
		{
			name:          "partial config with missing fields uses defaults",
			configContent: `wordlists: {directory: custom/wordlists}`,
			want: &Config{
				Wordlists: WordlistsConfig{Directory: "custom/wordlists"},
				Storage:   StorageConfig{DataDirectory: filepath.Join("data", "local")},
				Remote: RemoteConfig{
					FolderName: "vocasync",
					FileName:   "snapshot.json",
				},
				Sync: SyncConfig{
					DebounceMilliseconds:  1000,
					ConflictWindowMinutes: 5,
				},
				Review: ReviewConfig{NewItemLimit: 10},
			},
		},
		{
			name:          "invalid YAML format",
			configContent: "wordlists:\n  invalid yaml here [[[\n",
			wantErr:       true,
			wantErrorContains: []string{
				"configuration file found but could not be read",
			},
		},
		{
			name:          "remote credentials come from the environment",
			configContent: "{}\n",
			env: map[string]string{
				"VOCASYNC_API_URL":       "https://api.example.com",
				"VOCASYNC_API_TOKEN":     "token-value",
				"VOCASYNC_REFRESH_TOKEN": "refresh-value",
			},
			want: &Config{
				Wordlists: WordlistsConfig{Directory: "wordlists"},
				Storage:   StorageConfig{DataDirectory: filepath.Join("data", "local")},
				Remote: RemoteConfig{
					BaseURL:      "https://api.example.com",
					FolderName:   "vocasync",
					FileName:     "snapshot.json",
					APIToken:     "token-value",
					RefreshToken: "refresh-value",
				},
				Sync: SyncConfig{
					DebounceMilliseconds:  1000,
					ConflictWindowMinutes: 5,
				},
				Review: ReviewConfig{NewItemLimit: 10},
			},
		},
		{
			name:          "invalid base url fails validation",
			configContent: "{}\n",
			env: map[string]string{
				"VOCASYNC_API_URL": "not a url",
			},
			wantErr: true,
		},
		{
			name:          "negative debounce fails validation",
			configContent: "sync: {debounce_milliseconds: -1}\n",
			wantErr:       true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for key, value := range tt.env {
				t.Setenv(key, value)
			}

			configPath := filepath.Join(t.TempDir(), "config.yaml")
			require.NoError(t, os.WriteFile(configPath, []byte(tt.configContent), 0644))

			got, err := Load(configPath)

			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, got)
				for _, wantMsg := range tt.wantErrorContains {
					assert.Contains(t, err.Error(), wantMsg)
				}
				return
			}

			require.NoError(t, err)
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSyncConfig_Durations(t *testing.T) {
	cfg := SyncConfig{DebounceMilliseconds: 250, ConflictWindowMinutes: 10}
	assert.Equal(t, 250*time.Millisecond, cfg.Debounce())
	assert.Equal(t, 10*time.Minute, cfg.ConflictWindow())
}
