package update

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"runtime"
	"strings"
	"testing"
	"time"
)

// releaseServer serves a minimal GitHub latest-release response with
// one downloadable asset per given name.
func releaseServer(t *testing.T, tag string, assets ...string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var items []string
		for _, a := range assets {
			items = append(items, fmt.Sprintf(
				`{"name":%q,"browser_download_url":"https://example.com/%s"}`, a, a))
		}
		fmt.Fprintf(w, `{"tag_name":%q,"html_url":"https://example.com/releases/%s","assets":[%s]}`,
			tag, tag, strings.Join(items, ","))
	}))
}

func testUpdater(srv *httptest.Server) *Updater {
	return &Updater{
		cfg:    DefaultConfig(),
		apiURL: srv.URL,
		client: srv.Client(),
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{"valid", Config{Repo: "o/r", Binary: "b", Timeout: time.Second}, false},
		{"missing repo", Config{Binary: "b", Timeout: time.Second}, true},
		{"missing binary", Config{Repo: "o/r", Timeout: time.Second}, true},
		{"zero timeout", Config{Repo: "o/r", Binary: "b"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestUpdater_Check_NewerRelease(t *testing.T) {
	asset := (&Updater{cfg: DefaultConfig()}).assetName(Version{1, 5, 0})

	srv := releaseServer(t, "v1.5.0", asset)
	defer srv.Close()
	u := testUpdater(srv)

	rel, err := u.Check(context.Background(), "1.4.0")
	if err != nil {
		t.Fatalf("Check() error: %v", err)
	}
	if rel == nil {
		t.Fatal("expected a release")
	}
	if rel.Latest != (Version{1, 5, 0}) {
		t.Errorf("Latest = %v, want 1.5.0", rel.Latest)
	}
	if rel.Current != (Version{1, 4, 0}) {
		t.Errorf("Current = %v, want 1.4.0", rel.Current)
	}
	if rel.AssetURL != "https://example.com/"+asset {
		t.Errorf("AssetURL = %q, want the matching asset", rel.AssetURL)
	}
}

func TestUpdater_Check_UpToDate(t *testing.T) {
	srv := releaseServer(t, "v1.4.0")
	defer srv.Close()

	rel, err := testUpdater(srv).Check(context.Background(), "1.4.0")
	if err != nil {
		t.Fatalf("Check() error: %v", err)
	}
	if rel != nil {
		t.Errorf("expected nil release when current, got %+v", rel)
	}
}

func TestUpdater_Check_NoPlatformAsset(t *testing.T) {
	srv := releaseServer(t, "v1.5.0", "gpmtud_1.5.0_plan9_mips.tar.gz")
	defer srv.Close()

	rel, err := testUpdater(srv).Check(context.Background(), "1.4.0")
	if err != nil {
		t.Fatalf("Check() error: %v", err)
	}
	if rel == nil {
		t.Fatal("expected a release")
	}
	if rel.AssetURL != "" {
		t.Errorf("expected empty AssetURL without a platform archive, got %q", rel.AssetURL)
	}
	if rel.PageURL == "" {
		t.Error("expected the release page URL for manual download")
	}
}

func TestUpdater_Check_NonReleaseBuild(t *testing.T) {
	srv := releaseServer(t, "v1.5.0")
	defer srv.Close()

	if _, err := testUpdater(srv).Check(context.Background(), "dev"); err == nil {
		t.Error("expected error for a dev build")
	}
}

func TestUpdater_Check_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	if _, err := testUpdater(srv).Check(context.Background(), "1.4.0"); err == nil {
		t.Error("expected error on server failure")
	}
}

func TestUpdater_AssetName(t *testing.T) {
	u := &Updater{cfg: DefaultConfig()}
	name := u.assetName(Version{1, 5, 0})

	want := "gpmtud_1.5.0_" + runtime.GOOS + "_" + runtime.GOARCH + ".tar.gz"
	if runtime.GOOS == "windows" {
		want = "gpmtud_1.5.0_" + runtime.GOOS + "_" + runtime.GOARCH + ".zip"
	}
	if name != want {
		t.Errorf("assetName() = %q, want %q", name, want)
	}
}

func TestNewUpdater_RejectsInvalidConfig(t *testing.T) {
	if _, err := NewUpdater(&Config{}); err == nil {
		t.Error("expected error for empty config")
	}
}
