package config_test

import (
	"errors"
	"testing"

	"github.com/okian/chartrec/internal/adapters/fetch"
	"github.com/okian/chartrec/internal/config"
	"github.com/okian/chartrec/internal/domain/catalog"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.LogLevel, convey.ShouldEqual, "info")
			convey.So(cfg.LogFormat, convey.ShouldEqual, "text")
			convey.So(cfg.DBPath, convey.ShouldBeEmpty)
			convey.So(cfg.CatalogPath, convey.ShouldBeEmpty)
			convey.So(cfg.FetchURL, convey.ShouldEqual, fetch.DefaultURL)
			convey.So(cfg.FetchTimeoutMS, convey.ShouldEqual, 30_000)
			convey.So(cfg.DropUnplayed, convey.ShouldBeTrue)
			convey.So(cfg.MaxImportBytes, convey.ShouldEqual, int64(8<<20))
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})

		convey.Convey("Then search options should match the catalog defaults", func() {
			convey.So(cfg.SearchOptions(), convey.ShouldResemble, catalog.DefaultSearchOptions())
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given configs with out of range values", t, func() {
		cases := []struct {
			name   string
			mutate func(*config.Config)
		}{
			{"empty addr", func(c *config.Config) { c.Addr = "" }},
			{"negative timeout", func(c *config.Config) { c.FetchTimeoutMS = -1 }},
			{"zero import cap", func(c *config.Config) { c.MaxImportBytes = 0 }},
			{"threshold above one", func(c *config.Config) { c.SearchThreshold = 1.5 }},
			{"negative weight", func(c *config.Config) { c.SearchArtistWeight = -0.1 }},
			{"zero weights", func(c *config.Config) { c.SearchTitleWeight, c.SearchArtistWeight = 0, 0 }},
			{"unknown level", func(c *config.Config) { c.LogLevel = "loud" }},
			{"unknown format", func(c *config.Config) { c.LogFormat = "xml" }},
			{"relative fetch url", func(c *config.Config) { c.FetchURL = "/v0/CloudSave" }},
			{"ftp fetch url", func(c *config.Config) { c.FetchURL = "ftp://example.com/save" }},
		}

		for _, tc := range cases {
			convey.Convey("Then "+tc.name+" should be rejected", func() {
				cfg := config.New()
				tc.mutate(cfg)
				convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		}

		convey.Convey("Then an empty fetch url should be allowed", func() {
			cfg := config.New()
			cfg.FetchURL = ""
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}
