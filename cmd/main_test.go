package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/smartystreets/goconvey/convey"
)

const cloudSave = `{"data":{"records":[
	{"songId":"aurora-drive","difficulty":"IV","achievementRate":1005000},
	{"songId":"neon-orbit","difficulty":"IV-α","achievementRate":990000},
	{"songId":"neon-orbit","difficulty":"I","achievementRate":0},
	{"songId":"missing-song","difficulty":"I","achievementRate":900000}
]}}`

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetIn(strings.NewReader(stdin))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func clearEnv() {
	for _, kv := range os.Environ() {
		key, _, _ := strings.Cut(kv, "=")
		if strings.HasPrefix(key, "CHARTREC_") {
			_ = os.Unsetenv(key)
		}
	}
}

func TestRecordCommands(t *testing.T) {
	convey.Convey("Given a fresh database", t, func() {
		clearEnv()
		_ = os.Setenv("CHARTREC_FETCH_URL", "")
		defer clearEnv()
		db := filepath.Join(t.TempDir(), "records.db")

		convey.Convey("When a record is added", func() {
			out, err := run(t, "", "--db", db, "add", "aurora-drive", "IV", "100.5%")
			convey.So(err, convey.ShouldBeNil)
			convey.So(out, convey.ShouldContainSubstring, "inserted: Aurora Drive IV 100.5000%")

			convey.Convey("Then it is listed after a restart", func() {
				out, err := run(t, "", "--db", db, "list")
				convey.So(err, convey.ShouldBeNil)
				convey.So(out, convey.ShouldContainSubstring, "Aurora Drive")
				convey.So(out, convey.ShouldContainSubstring, "1 records")
			})

			convey.Convey("Then a lower rate leaves it unchanged", func() {
				out, err := run(t, "", "--db", db, "add", "aurora-drive", "IV", "950000")
				convey.So(err, convey.ShouldBeNil)
				convey.So(out, convey.ShouldContainSubstring, "unchanged")
				convey.So(out, convey.ShouldContainSubstring, "100.5000%")
			})

			convey.Convey("Then it can be removed", func() {
				_, err := run(t, "", "--db", db, "rm", "aurora-drive", "IV")
				convey.So(err, convey.ShouldBeNil)
				out, _ := run(t, "", "--db", db, "list")
				convey.So(out, convey.ShouldContainSubstring, "No records.")

				_, err = run(t, "", "--db", db, "rm", "aurora-drive", "IV")
				convey.So(err, convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When the rate is out of range", func() {
			_, err := run(t, "", "--db", db, "add", "aurora-drive", "IV", "1010001")
			convey.So(err, convey.ShouldNotBeNil)
		})

		convey.Convey("When the chart is unknown", func() {
			_, err := run(t, "", "--db", db, "add", "aurora-drive", "V", "900000")
			convey.So(err, convey.ShouldNotBeNil)
		})
	})
}

func TestImportCommands(t *testing.T) {
	convey.Convey("Given a fresh database", t, func() {
		clearEnv()
		defer clearEnv()
		db := filepath.Join(t.TempDir(), "records.db")

		convey.Convey("When a cloud save is imported from stdin", func() {
			out, err := run(t, cloudSave, "--db", db, "import")

			convey.Convey("Then played records replace the collection", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(out, convey.ShouldContainSubstring, "imported 2 of 4 entries from cloud_save capture, 1 unplayed dropped")
				convey.So(out, convey.ShouldContainSubstring, "skipped #3 missing-song")

				list, _ := run(t, "", "--db", db, "list")
				convey.So(list, convey.ShouldContainSubstring, "2 records")
			})
		})

		convey.Convey("When a capture is imported from a file", func() {
			path := filepath.Join(t.TempDir(), "capture.json")
			convey.So(os.WriteFile(path, []byte(cloudSave), 0o600), convey.ShouldBeNil)

			_, err := run(t, "", "--db", db, "import", path)
			convey.So(err, convey.ShouldBeNil)
		})

		convey.Convey("When the capture is malformed", func() {
			_, _ = run(t, "", "--db", db, "add", "aurora-drive", "I", "900000")
			_, err := run(t, `{"data":`, "--db", db, "import", "-")

			convey.Convey("Then the stored records are untouched", func() {
				convey.So(err, convey.ShouldNotBeNil)
				list, _ := run(t, "", "--db", db, "list")
				convey.So(list, convey.ShouldContainSubstring, "1 records")
			})
		})

		convey.Convey("When a capture is fetched", func() {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(cloudSave))
			}))
			defer srv.Close()
			_ = os.Setenv("CHARTREC_FETCH_URL", srv.URL)

			out, err := run(t, "", "--db", db, "fetch")
			convey.So(err, convey.ShouldBeNil)
			convey.So(out, convey.ShouldContainSubstring, "imported 2 of 4 entries")
		})

		convey.Convey("When fetching is disabled", func() {
			_ = os.Setenv("CHARTREC_FETCH_URL", "")
			_, err := run(t, "", "--db", db, "fetch")
			convey.So(err, convey.ShouldNotBeNil)
		})
	})
}

func TestSearchCommand(t *testing.T) {
	convey.Convey("Given the bundled catalog", t, func() {
		clearEnv()
		db := filepath.Join(t.TempDir(), "records.db")

		convey.Convey("When searching by title", func() {
			out, err := run(t, "", "--db", db, "search", "aurora")
			convey.So(err, convey.ShouldBeNil)
			convey.So(out, convey.ShouldContainSubstring, "aurora-drive")
		})

		convey.Convey("When nothing matches", func() {
			out, err := run(t, "", "--db", db, "search", "zzzzzzzzzzzz")
			convey.So(err, convey.ShouldBeNil)
			convey.So(out, convey.ShouldContainSubstring, "No matching songs.")
		})
	})
}

func TestRouter(t *testing.T) {
	convey.Convey("Given a router over a started service", t, func() {
		clearEnv()
		c := &cli{dbPath: filepath.Join(t.TempDir(), "records.db")}
		root := newRootCmd()
		root.SetContext(context.Background())
		convey.So(c.setup(root), convey.ShouldBeNil)

		ctx := context.Background()
		svc, err := c.openService(ctx)
		convey.So(err, convey.ShouldBeNil)
		defer svc.Stop()

		router := newRouter(ctx, svc, c.cfg.MaxImportBytes)

		convey.Convey("Then API and docs routes are served", func() {
			for _, path := range []string{"/records", "/songs", "/stats", "/openapi.yaml", "/healthz"} {
				rec := httptest.NewRecorder()
				router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
				convey.So(rec.Code, convey.ShouldEqual, http.StatusOK)
			}
		})
	})
}
