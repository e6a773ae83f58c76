package main

import (
	"context"
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/hugr-lab/tablescan-go/auth"
	"github.com/hugr-lab/tablescan-go/encryption"
)

func TestConfigValidate(t *testing.T) {
	key := base64.StdEncoding.EncodeToString(make([]byte, encryption.KeySize))
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{"valid", Config{BatchSize: 10, LogLevel: "debug"}, ""},
		{"zero batch", Config{LogLevel: "info"}, "batch-size"},
		{"bad level", Config{BatchSize: 1, LogLevel: "loud"}, "log-level"},
		{"table without schema", Config{BatchSize: 1, LogLevel: "info", Tables: map[string]TableConfig{"t": {}}}, "schema path"},
		{"short key", Config{BatchSize: 1, LogLevel: "info", Encryption: EncryptionConfig{MasterKeys: map[string]string{"k": "AAAA"}}}, "want 32 bytes"},
		{"bad base64", Config{BatchSize: 1, LogLevel: "info", Encryption: EncryptionConfig{MasterKeys: map[string]string{"k": "%%"}}}, "master key k"},
		{"good key", Config{BatchSize: 1, LogLevel: "info", Encryption: EncryptionConfig{MasterKeys: map[string]string{"k": key}}}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("validate() error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("validate() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestConfigAuthenticator(t *testing.T) {
	if (&Config{}).authenticator() != nil {
		t.Error("authenticator without tokens is not nil")
	}
	cfg := Config{Auth: AuthConfig{Tokens: map[string]string{"alice": "Secret-1"}}}
	a := cfg.authenticator()
	identity, err := a.Authenticate(context.Background(), "Secret-1")
	if err != nil || identity != "alice" {
		t.Errorf("Authenticate() = %q, %v", identity, err)
	}
	if _, err := a.Authenticate(context.Background(), "alice"); err == nil {
		t.Error("identity accepted as token")
	}
	if _, ok := a.(auth.StaticTokens); !ok {
		t.Errorf("authenticator = %T, want auth.StaticTokens", a)
	}
}

func TestConfigEncryption(t *testing.T) {
	m, err := (&Config{}).encryption(nil)
	if err != nil || m != nil {
		t.Errorf("encryption() without keys = %v, %v", m, err)
	}
	key := base64.StdEncoding.EncodeToString(make([]byte, encryption.KeySize))
	m, err = (&Config{Encryption: EncryptionConfig{MasterKeys: map[string]string{"k": key}}}).encryption(nil)
	if err != nil || m == nil {
		t.Errorf("encryption() = %v, %v", m, err)
	}
}

func TestLoadConfigEnv(t *testing.T) {
	t.Setenv("TABLESCAN_BATCH_SIZE", "17")
	t.Setenv("TABLESCAN_LOG_LEVEL", "warn")

	cfg, err := loadConfig(&cobra.Command{})
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}
	if cfg.BatchSize != 17 {
		t.Errorf("BatchSize = %d, want 17", cfg.BatchSize)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("LogLevel = %q, want warn", cfg.LogLevel)
	}
	if cfg.Listen != ":50051" {
		t.Errorf("Listen = %q, want default", cfg.Listen)
	}
}

func TestFileIORoutesBarePaths(t *testing.T) {
	io, err := (&Config{}).fileIO()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := io.NewInputFile("/tmp/data.avro"); err != nil {
		t.Errorf("bare path: %v", err)
	}
	if _, err := io.NewInputFile("s3://bucket/key"); err == nil {
		t.Error("s3 location routed without s3 config")
	}
}

func TestBuildTablesLocation(t *testing.T) {
	avsc := filepath.Join(t.TempDir(), "people.avsc")
	if err := os.WriteFile(avsc, []byte(`{"type": "record", "name": "p", "fields": [{"name": "id", "type": "long"}]}`), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg := Config{Tables: map[string]TableConfig{
		"people":  {Schema: avsc, Location: "s3://warehouse/people"},
		"scratch": {Schema: avsc},
	}}
	tables, err := buildTables(&cfg)
	if err != nil {
		t.Fatalf("buildTables() error = %v", err)
	}
	people, err := tables.Table("people")
	if err != nil {
		t.Fatal(err)
	}
	if people.Location != "s3://warehouse/people" || people.Contains("s3://warehouse/payroll/a.avro") {
		t.Errorf("people location = %q", people.Location)
	}
	scratch, err := tables.Table("scratch")
	if err != nil {
		t.Fatal(err)
	}
	if scratch.Location != "" || !scratch.Contains("/anywhere.avro") {
		t.Errorf("scratch location = %q", scratch.Location)
	}
}
