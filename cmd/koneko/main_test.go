package main

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"koneko/internal/layout"
	"koneko/internal/services"
)

type cliTestEnv struct {
	base       string
	configPath string
	cacheDir   string
	downloads  string
	pages      string
	images     *httptest.Server
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()
	t.Setenv("COLUMNS", "100")
	t.Setenv("LINES", "20")
	t.Setenv("KONEKO_ACCESS_TOKEN", "")

	base := t.TempDir()
	env := &cliTestEnv{
		base:       base,
		configPath: filepath.Join(base, "config.toml"),
		cacheDir:   filepath.Join(base, "cache"),
		downloads:  filepath.Join(base, "Downloads"),
		pages:      filepath.Join(base, "pages"),
	}
	if err := os.MkdirAll(env.downloads, 0o755); err != nil {
		t.Fatal(err)
	}

	env.images = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Referer") == "" {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		if strings.Contains(r.URL.Path, "img-original") && strings.HasSuffix(r.URL.Path, ".jpg") {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte("image:" + r.URL.Path))
	}))
	t.Cleanup(env.images.Close)

	content := fmt.Sprintf(`[paths]
cache_dir = %q
log_dir = %q
downloads_dir = %q

[api]
base_url = "http://127.0.0.1:1"
access_token = "secret-token"
`, env.cacheDir, filepath.Join(base, "logs"), env.downloads)
	if err := os.WriteFile(env.configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return env
}

func (e *cliTestEnv) writePage(t *testing.T, rel, body string) {
	t.Helper()
	path := filepath.Join(e.pages, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	body = strings.ReplaceAll(body, "IMG", e.images.URL)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

const galleryPage = `{
  "illusts": [
    {"id": 11, "title": "one", "user": {"id": 7, "name": "a"}, "page_count": 1,
     "image_urls": {"square_medium": "IMG/c/360x360_70/img-master/img/11_p0_square1200.jpg"}},
    {"id": 12, "title": "two/2", "user": {"id": 7, "name": "a"}, "page_count": 1,
     "image_urls": {"square_medium": "IMG/c/360x360_70/img-master/img/12_p0_square1200.jpg"}}
  ],
  "next_url": null
}`

func TestGalleryOfflineListsItemsInOrder(t *testing.T) {
	env := setupCLITestEnv(t)
	env.writePage(t, "gallery/7/0.json", galleryPage)

	out, _, err := runCLI(t, []string{"gallery", "https://www.pixiv.net/en/users/7", "--offline", env.pages, "--no-render"}, env.configPath)
	if err != nil {
		t.Fatalf("gallery: %v", err)
	}
	first := strings.Index(out, "000_one.jpg")
	second := strings.Index(out, "001_two2.jpg")
	if first < 0 || second < 0 || second < first {
		t.Fatalf("items missing or out of order:\n%s", out)
	}
	requireContains(t, out, "size=310 x=2 y=0")

	data, err := os.ReadFile(filepath.Join(env.cacheDir, "7", "0", "001_two2.jpg"))
	if err != nil {
		t.Fatalf("downloaded file: %v", err)
	}
	if !strings.HasSuffix(string(data), "12_p0_square1200.jpg") {
		t.Fatalf("unexpected content %q", data)
	}

	out, _, err = runCLI(t, []string{"cache", "ls"}, env.configPath)
	if err != nil {
		t.Fatalf("cache ls: %v", err)
	}
	requireContains(t, out, "gallery")

	out, _, err = runCLI(t, []string{"cache", "clear"}, env.configPath)
	if err != nil {
		t.Fatalf("cache clear: %v", err)
	}
	requireContains(t, out, "Cleared")
	if _, err := os.Stat(filepath.Join(env.cacheDir, "7")); !os.IsNotExist(err) {
		t.Fatalf("expected gallery directory removed, stat err %v", err)
	}
}

// userPreview is one followed artist with three recent works.
func userPreview(id int, name string) string {
	works := make([]string, 0, 3)
	for w := 1; w <= 3; w++ {
		works = append(works, fmt.Sprintf(`{"id": %d%d, "title": "w", "page_count": 1,
			"image_urls": {"square_medium": "IMG/c/360x360_70/img-master/img/%d%d_p0_square1200.jpg"}}`, id, w, id, w))
	}
	return fmt.Sprintf(`{"user": {"id": %d, "name": %q, "profile_image_urls": {"medium": "IMG/user-profile/img/%d_170.png"}},
		"illusts": [%s]}`, id, name, id, strings.Join(works, ","))
}

func TestFollowingOfflineInterleavesArtists(t *testing.T) {
	env := setupCLITestEnv(t)
	env.writePage(t, "following/5/0.json", fmt.Sprintf(`{"user_previews": [%s, %s], "next_url": null}`,
		userPreview(1, "alice"), userPreview(2, "bob")))

	out, _, err := runCLI(t, []string{"following", "5", "--offline", env.pages, "--no-render"}, env.configPath)
	if err != nil {
		t.Fatalf("following: %v", err)
	}
	requireContains(t, out, "01"+strings.Repeat(" ", 19)+"alice")
	requireContains(t, out, "02"+strings.Repeat(" ", 19)+"bob")

	var order []string
	for _, line := range strings.Split(out, "\n") {
		if idx := strings.Index(line, "\t"); idx > 0 {
			order = append(order, filepath.Base(line[:idx])[:3])
		}
	}
	want := "000,002,003,004,001,005,006,007"
	if strings.Join(order, ",") != want {
		t.Fatalf("display order = %v, want %s", order, want)
	}

	marker, err := os.ReadFile(filepath.Join(env.cacheDir, "following", "5", "0", ".koneko"))
	if err != nil || string(marker) != "0" {
		t.Fatalf("marker = %q, %v", marker, err)
	}
}

func TestFollowingRejectsTerminalNarrowerThanArtistRow(t *testing.T) {
	env := setupCLITestEnv(t)
	t.Setenv("COLUMNS", "60")
	env.writePage(t, "following/5/0.json", fmt.Sprintf(`{"user_previews": [%s], "next_url": null}`,
		userPreview(1, "alice")))

	_, _, err := runCLI(t, []string{"following", "5", "--offline", env.pages}, env.configPath)
	if !errors.Is(err, layout.ErrNoRoom) {
		t.Fatalf("expected ErrNoRoom on a 3-column terminal, got %v", err)
	}
}

func TestPostSaveCopiesOriginal(t *testing.T) {
	env := setupCLITestEnv(t)
	env.writePage(t, "post/99.json", `{"illust": {"id": 99, "title": "p", "user": {"id": 7, "name": "a"}, "page_count": 1,
		"image_urls": {"large": "IMG/c/600x1200_90_webp/img-master/img/99_p0_master1200.jpg"}}}`)

	out, _, err := runCLI(t, []string{"post", "https://www.pixiv.net/en/artworks/99", "--offline", env.pages, "--no-render", "--save"}, env.configPath)
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	requireContains(t, out, "000_99_p0_master1200.jpg")
	requireContains(t, out, "Saved")

	saved := filepath.Join(env.downloads, "99_p0.png")
	data, err := os.ReadFile(saved)
	if err != nil {
		t.Fatalf("saved original: %v", err)
	}
	requireContains(t, string(data), "img-original")
}

func TestBrowseRejectsBadInput(t *testing.T) {
	env := setupCLITestEnv(t)
	_, _, err := runCLI(t, []string{"gallery", "not-a-number", "--offline", env.pages}, env.configPath)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	_, _, err = runCLI(t, []string{"gallery", "7", "--offline", env.pages, "--no-render"}, env.configPath)
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected missing page error, got %v", err)
	}
	_, _, err = runCLI(t, []string{"feed", "--page", "-1", "--offline", env.pages}, env.configPath)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error for negative page, got %v", err)
	}
}

func TestInvalidConfigExitsWithUsageStatus(t *testing.T) {
	env := setupCLITestEnv(t)
	content, err := os.ReadFile(env.configPath)
	if err != nil {
		t.Fatal(err)
	}
	content = append(content, []byte("\n[pipeline]\ncompletion_policy = \"bogus\"\n")...)
	if err := os.WriteFile(env.configPath, content, 0o644); err != nil {
		t.Fatal(err)
	}

	_, _, err = runCLI(t, []string{"gallery", "7", "--offline", env.pages, "--no-render"}, env.configPath)
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	if !strings.Contains(err.Error(), "completion_policy") {
		t.Fatalf("error should name the bad key: %v", err)
	}
	if code := services.ExitCode(err); code != 2 {
		t.Fatalf("ExitCode = %d, want 2", code)
	}
}

func TestLayoutCommand(t *testing.T) {
	env := setupCLITestEnv(t)
	out, _, err := runCLI(t, []string{"layout", "--width", "100", "--height", "20"}, env.configPath)
	if err != nil {
		t.Fatalf("layout: %v", err)
	}
	requireContains(t, out, "Columns")
	requireContains(t, out, "2 20 38 56 74")

	out, _, err = runCLI(t, []string{"layout", "--width", "100", "--height", "20", "--users", "--items", "8"}, env.configPath)
	if err != nil {
		t.Fatalf("layout --users: %v", err)
	}
	requireContains(t, out, "0 2 3 4 1 5 6 7")
}

func TestConfigInitAndShow(t *testing.T) {
	env := setupCLITestEnv(t)

	target := filepath.Join(t.TempDir(), "config.toml")
	out, _, err := runCLI(t, []string{"config", "init", "--path", target}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}
	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, ""); err == nil {
		t.Fatal("expected refusal to overwrite")
	}

	out, _, err = runCLI(t, []string{"config", "show"}, env.configPath)
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	requireContains(t, out, "(set)")
	if strings.Contains(out, "secret-token") {
		t.Fatalf("access token leaked:\n%s", out)
	}
}

func TestDoctorReportsFailures(t *testing.T) {
	env := setupCLITestEnv(t)
	out, _, err := runCLI(t, []string{"doctor"}, env.configPath)
	if err == nil {
		t.Fatal("expected doctor to fail without a terminal")
	}
	requireContains(t, out, "Cache directory")
	requireContains(t, out, "Terminal")
}
