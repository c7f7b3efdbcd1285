package main

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/klauspost/compress/gzip"

	"subfetch/internal/testsupport"
)

type cliTestEnv struct {
	baseDir    string
	configPath string
	videoDir   string
	catalog    *fakeCatalog
}

// fakeCatalog answers LogIn, SearchSubtitles and LogOut and serves the
// gzip payload every search result links to.
type fakeCatalog struct {
	mu      sync.Mutex
	calls   map[string]int
	server  *httptest.Server
	results bool
}

func (f *fakeCatalog) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/sub.gz" {
		zw := gzip.NewWriter(w)
		_, _ = io.WriteString(zw, "1\n00:00:01,000 --> 00:00:02,000\nhello\n")
		_ = zw.Close()
		return
	}
	var call struct {
		Method string `xml:"methodName"`
	}
	raw, _ := io.ReadAll(r.Body)
	if err := xml.Unmarshal(raw, &call); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	f.mu.Lock()
	f.calls[call.Method]++
	f.mu.Unlock()

	members := member("status", "200 OK")
	switch call.Method {
	case "LogIn":
		members += member("token", "tok")
	case "SearchSubtitles":
		if f.results {
			record := member("MatchedBy", "moviehash") +
				member("MovieName", "Show") +
				member("SubFileName", "Show.S01E02.srt") +
				member("SubFormat", "srt") +
				member("SubDownloadsCnt", "10") +
				member("SubDownloadLink", f.server.URL+"/sub.gz")
			members += `<member><name>data</name><value><array><data><value><struct>` + record + `</struct></value></data></array></value></member>`
		} else {
			members += `<member><name>data</name><value><boolean>0</boolean></value></member>`
		}
	}
	w.Header().Set("Content-Type", "text/xml")
	fmt.Fprintf(w, `<?xml version="1.0"?><methodResponse><params><param><value><struct>%s</struct></value></param></params></methodResponse>`, members)
}

func (f *fakeCatalog) count(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[method]
}

func member(name, value string) string {
	return `<member><name>` + name + `</name><value><string>` + value + `</string></value></member>`
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)
	t.Setenv("SUBFETCH_LANGUAGE", "")

	catalog := &fakeCatalog{calls: map[string]int{}, results: true}
	catalog.server = httptest.NewServer(catalog)
	t.Cleanup(catalog.server.Close)

	configPath := filepath.Join(base, "config.toml")
	content := fmt.Sprintf(`[paths]
data_dir = %q

[catalog]
endpoint = %q
retry_delay_seconds = 0
min_interval_ms = 0
`, filepath.Join(base, "data"), catalog.server.URL)
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	videoDir := filepath.Join(base, "tv")
	return &cliTestEnv{baseDir: base, configPath: configPath, videoDir: videoDir, catalog: catalog}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(""))
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

func TestFetchDownloadsSubtitleForFolder(t *testing.T) {
	env := setupCLITestEnv(t)
	video := filepath.Join(env.videoDir, "Show.S01E02.mkv")
	testsupport.WriteFile(t, video, testsupport.HashableSize)
	testsupport.WriteFile(t, filepath.Join(env.videoDir, "notes.txt"), 10)

	out, stderr, err := runCLI(t, []string{"fetch", env.videoDir}, env.configPath)
	if err != nil {
		t.Fatalf("fetch: %v\nstderr: %s", err, stderr)
	}
	requireContains(t, out, "downloaded")

	data, err := os.ReadFile(video + ".srt")
	if err != nil {
		t.Fatalf("expected subtitle file: %v", err)
	}
	requireContains(t, string(data), "hello")

	if got := env.catalog.count("LogIn"); got != 1 {
		t.Fatalf("expected one login, got %d", got)
	}
	if got := env.catalog.count("LogOut"); got != 1 {
		t.Fatalf("expected one logout, got %d", got)
	}

	out, _, err = runCLI(t, []string{"history"}, env.configPath)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	requireContains(t, out, "Show.S01E02.mkv")
	requireContains(t, out, "content-fingerprint")
}

func TestFetchSkipsExistingWithoutContactingCatalog(t *testing.T) {
	env := setupCLITestEnv(t)
	video := filepath.Join(env.videoDir, "Show.S01E02.mkv")
	testsupport.WriteFile(t, video, testsupport.HashableSize)
	testsupport.WriteFile(t, filepath.Join(env.videoDir, "Show.S01E02.srt"), 10)

	out, _, err := runCLI(t, []string{"fetch", video}, env.configPath)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	requireContains(t, out, "skipped_existing")
	if got := env.catalog.count("LogIn"); got != 0 {
		t.Fatalf("expected no login, got %d", got)
	}
}

func TestFetchNoResults(t *testing.T) {
	env := setupCLITestEnv(t)
	env.catalog.results = false
	video := filepath.Join(env.videoDir, "Show.S01E02.mkv")
	testsupport.WriteFile(t, video, testsupport.HashableSize)

	out, _, err := runCLI(t, []string{"fetch", "--subfolder", "Subs", video}, env.configPath)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	requireContains(t, out, "no_candidates")
	if _, err := os.Stat(filepath.Join(env.videoDir, "Subs")); !os.IsNotExist(err) {
		t.Fatalf("expected no subfolder to be created, got %v", err)
	}
}

func TestFetchRejectsUnknownLanguage(t *testing.T) {
	env := setupCLITestEnv(t)
	video := filepath.Join(env.videoDir, "a.mkv")
	testsupport.WriteFile(t, video, 10)

	_, _, err := runCLI(t, []string{"fetch", "--lang", "klingonese", video}, env.configPath)
	if err == nil {
		t.Fatal("expected language error")
	}
	requireContains(t, err.Error(), "unknown language")
}

func TestFetchMissingPath(t *testing.T) {
	env := setupCLITestEnv(t)
	_, _, err := runCLI(t, []string{"fetch", filepath.Join(env.baseDir, "nope.mkv")}, env.configPath)
	if err == nil {
		t.Fatal("expected error for missing path")
	}
}

func TestHashCommand(t *testing.T) {
	dir := t.TempDir()
	big := filepath.Join(dir, "Show.S01E02.mkv")
	small := filepath.Join(dir, "small.mkv")
	testsupport.WriteFile(t, big, testsupport.HashableSize)
	testsupport.WriteFile(t, small, 100)

	out, _, err := runCLI(t, []string{"hash", big, small}, "")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	requireContains(t, out, "too small")
	requireContains(t, out, "Show S01E02")
}

func TestLanguagesCommand(t *testing.T) {
	out, _, err := runCLI(t, []string{"languages"}, "")
	if err != nil {
		t.Fatalf("languages: %v", err)
	}
	requireContains(t, out, "Brazilian")
	requireContains(t, out, "pob")
}

func TestConfigInitValidateShow(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"config", "validate"}, env.configPath)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")

	out, _, err = runCLI(t, []string{"config", "show"}, env.configPath)
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	requireContains(t, out, env.catalog.server.URL)

	target := filepath.Join(t.TempDir(), "config.toml")
	out, _, err = runCLI(t, []string{"config", "init", "--path", target}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, ""); err == nil {
		t.Fatal("expected error when config already exists")
	}
}

func TestStatusCommand(t *testing.T) {
	env := setupCLITestEnv(t)
	out, _, err := runCLI(t, []string{"status"}, env.configPath)
	if err != nil {
		t.Fatalf("status: %v\n%s", err, out)
	}
	requireContains(t, out, "Data directory")
	requireContains(t, out, "English")
}
