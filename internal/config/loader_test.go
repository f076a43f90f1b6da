package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/okian/chartrec/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldResemble, config.New())
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("CHARTREC_ADDR", ":8080")
			_ = os.Setenv("CHARTREC_DB_PATH", "/tmp/records.db")
			_ = os.Setenv("CHARTREC_FETCH_TIMEOUT_MS", "0")
			_ = os.Setenv("CHARTREC_DROP_UNPLAYED", "false")
			_ = os.Setenv("CHARTREC_SEARCH_THRESHOLD", "0.5")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.DBPath, convey.ShouldEqual, "/tmp/records.db")
				convey.So(cfg.FetchTimeoutMS, convey.ShouldEqual, 0)
				convey.So(cfg.DropUnplayed, convey.ShouldBeFalse)
				convey.So(cfg.SearchThreshold, convey.ShouldEqual, 0.5)
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			tmpFile := createTempConfigFile(t, "config.yaml", `
addr: ":9090"
log_format: json
catalog_path: /srv/songs.json
max_import_bytes: 1024
`)
			_ = os.Setenv("CHARTREC_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from YAML file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.LogFormat, convey.ShouldEqual, "json")
				convey.So(cfg.CatalogPath, convey.ShouldEqual, "/srv/songs.json")
				convey.So(cfg.MaxImportBytes, convey.ShouldEqual, int64(1024))
				convey.So(cfg.DropUnplayed, convey.ShouldBeTrue)
			})
		})

		convey.Convey("When loading config with TOML file", func() {
			tmpFile := createTempConfigFile(t, "config.toml", `
addr = ":7070"
drop_unplayed = false
search_title_weight = 0.8
search_artist_weight = 0.2
`)

			cfg, err := config.LoadFile(ctx, tmpFile)

			convey.Convey("Then it should parse by extension", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":7070")
				convey.So(cfg.DropUnplayed, convey.ShouldBeFalse)
				convey.So(cfg.SearchTitleWeight, convey.ShouldEqual, 0.8)
				convey.So(cfg.SearchArtistWeight, convey.ShouldEqual, 0.2)
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			tmpFile := createTempConfigFile(t, "config.yaml", `
addr: ":9090"
log_level: debug
`)
			_ = os.Setenv("CHARTREC_CONFIG", tmpFile)
			_ = os.Setenv("CHARTREC_ADDR", ":8080")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.LogLevel, convey.ShouldEqual, "debug")
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			tmpFile := createTempConfigFile(t, "config.yaml", `invalid: yaml: content: [`)

			cfg, err := config.LoadFile(ctx, tmpFile)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			cfg, err := config.LoadFile(ctx, "/non/existent/file.yaml")

			convey.Convey("Then it should return an error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with empty addr", func() {
			_ = os.Setenv("CHARTREC_ADDR", "")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "addr must not be empty")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When a .env file is present in the working directory", func() {
			dir := t.TempDir()
			err := os.WriteFile(filepath.Join(dir, ".env"), []byte("CHARTREC_ADDR=:6060\nCHARTREC_LOG_LEVEL=warn\n"), 0o600)
			convey.So(err, convey.ShouldBeNil)

			wd, _ := os.Getwd()
			convey.So(os.Chdir(dir), convey.ShouldBeNil)
			defer func() { _ = os.Chdir(wd) }()

			_ = os.Setenv("CHARTREC_LOG_LEVEL", "error")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should fill unset variables only", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":6060")
				convey.So(cfg.LogLevel, convey.ShouldEqual, "error")
			})
		})
	})
}

func createTempConfigFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func clearConfigEnvVars() {
	for _, kv := range os.Environ() {
		key, _, _ := strings.Cut(kv, "=")
		if strings.HasPrefix(key, config.EnvPrefix) {
			_ = os.Unsetenv(key)
		}
	}
}
