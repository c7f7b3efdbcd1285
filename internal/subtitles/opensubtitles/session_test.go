package opensubtitles

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"subfetch/internal/query"
	"subfetch/internal/subtitles"
)

type fakeCall struct {
	Method string   `xml:"methodName"`
	Params []string `xml:"params>param>value>string"`
}

// fakeCatalog is a scripted XML-RPC endpoint. Handlers are keyed by method
// name and receive the 1-based call count for that method.
type fakeCatalog struct {
	mu       sync.Mutex
	counts   map[string]int
	bodies   []string
	handlers map[string]func(w http.ResponseWriter, n int)
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{counts: map[string]int{}, handlers: map[string]func(http.ResponseWriter, int){}}
}

func (f *fakeCatalog) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	raw, _ := io.ReadAll(r.Body)
	var call fakeCall
	if err := xml.Unmarshal(raw, &call); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	f.mu.Lock()
	f.counts[call.Method]++
	n := f.counts[call.Method]
	f.bodies = append(f.bodies, string(raw))
	handler := f.handlers[call.Method]
	f.mu.Unlock()
	if handler == nil {
		writeStruct(w, `<member><name>status</name><value><string>200 OK</string></value></member>`)
		return
	}
	handler(w, n)
}

func (f *fakeCatalog) count(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.counts[method]
}

func writeStruct(w http.ResponseWriter, members string) {
	w.Header().Set("Content-Type", "text/xml")
	fmt.Fprintf(w, `<?xml version="1.0"?><methodResponse><params><param><value><struct>%s</struct></value></param></params></methodResponse>`, members)
}

func statusMember(status string) string {
	return `<member><name>status</name><value><string>` + status + `</string></value></member>`
}

func loginOK(w http.ResponseWriter, _ int) {
	writeStruct(w, statusMember("200 OK")+`<member><name>token</name><value><string>tok123</string></value></member>`)
}

func newTestSession(t *testing.T, fake *fakeCatalog, opts SessionOptions) *Session {
	t.Helper()
	server := httptest.NewServer(fake)
	t.Cleanup(server.Close)
	client, err := New(Config{Endpoint: server.URL, Language: "eng", HTTPClient: server.Client()})
	if err != nil {
		t.Fatalf("New client failed: %v", err)
	}
	return NewSession(client, opts)
}

func TestNewValidatesConfig(t *testing.T) {
	if _, err := New(Config{Language: ""}); err == nil {
		t.Fatal("expected error without language")
	}
	if _, err := New(Config{Endpoint: "ftp://example.org", Language: "eng"}); err == nil {
		t.Fatal("expected error for non-http endpoint")
	}
	client, err := New(Config{Language: "eng"})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if client.endpoint.String() != DefaultEndpoint || client.userAgent != DefaultUserAgent {
		t.Fatalf("unexpected defaults: %s %s", client.endpoint, client.userAgent)
	}
}

func TestSessionLifecycle(t *testing.T) {
	fake := newFakeCatalog()
	fake.handlers["LogIn"] = loginOK
	fake.handlers["SearchSubtitles"] = func(w http.ResponseWriter, _ int) {
		writeStruct(w, statusMember("200 OK")+`<member><name>data</name><value><array><data>
<value><struct>
<member><name>MatchedBy</name><value><string>moviehash</string></value></member>
<member><name>MovieName</name><value><string>Awesome Test</string></value></member>
<member><name>SubDownloadsCnt</name><value><string>12</string></value></member>
<member><name>SubFormat</name><value><string>srt</string></value></member>
</struct></value>
</data></array></value></member>`)
	}
	session := newTestSession(t, fake, SessionOptions{})

	if session.State() != StateLoggedOut {
		t.Fatalf("unexpected initial state: %s", session.State())
	}
	if _, err := session.Search(context.Background(), query.Request{Kind: query.KindHash}); !errors.Is(err, ErrNotLoggedIn) {
		t.Fatalf("expected ErrNotLoggedIn before login, got %v", err)
	}
	if err := session.Login(context.Background()); err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if session.State() != StateLoggedIn {
		t.Fatalf("unexpected state after login: %s", session.State())
	}
	if err := session.Login(context.Background()); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState on double login, got %v", err)
	}

	req := query.Request{Kind: query.KindHash, Language: "eng", Fingerprint: "b7b7afc0abb9e5b7", Size: 150000}
	candidates, err := session.Search(context.Background(), req)
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	if len(candidates) != 1 {
		t.Fatalf("expected one candidate, got %d", len(candidates))
	}
	if candidates[0].MatchedBy != subtitles.ProvenanceFingerprint || candidates[0].DownloadCount != 12 {
		t.Fatalf("unexpected candidate: %+v", candidates[0])
	}

	if err := session.Logout(context.Background()); err != nil {
		t.Fatalf("Logout returned error: %v", err)
	}
	if session.State() != StateLoggedOut {
		t.Fatalf("unexpected state after logout: %s", session.State())
	}
	if err := session.Logout(context.Background()); err != nil {
		t.Fatalf("second Logout should be a no-op, got %v", err)
	}
	if fake.count("LogOut") != 1 {
		t.Fatalf("expected one LogOut call, got %d", fake.count("LogOut"))
	}

	fake.mu.Lock()
	defer fake.mu.Unlock()
	var searchBody string
	for _, body := range fake.bodies {
		if strings.Contains(body, "SearchSubtitles") {
			searchBody = body
		}
	}
	for _, fragment := range []string{"<string>tok123</string>", "<name>moviehash</name>", "<string>b7b7afc0abb9e5b7</string>"} {
		if !strings.Contains(searchBody, fragment) {
			t.Fatalf("expected %q in search body %s", fragment, searchBody)
		}
	}
}

func TestLoginRetriesTransientFailures(t *testing.T) {
	fake := newFakeCatalog()
	fake.handlers["LogIn"] = func(w http.ResponseWriter, n int) {
		if n < 3 {
			http.Error(w, "overloaded", http.StatusServiceUnavailable)
			return
		}
		loginOK(w, n)
	}
	session := newTestSession(t, fake, SessionOptions{LoginAttempts: 3})
	if err := session.Login(context.Background()); err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if fake.count("LogIn") != 3 {
		t.Fatalf("expected 3 login attempts, got %d", fake.count("LogIn"))
	}
}

func TestLoginGivesUpAfterBudget(t *testing.T) {
	fake := newFakeCatalog()
	fake.handlers["LogIn"] = func(w http.ResponseWriter, _ int) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}
	session := newTestSession(t, fake, SessionOptions{LoginAttempts: 3})
	err := session.Login(context.Background())
	if !errors.Is(err, ErrLogin) {
		t.Fatalf("expected ErrLogin, got %v", err)
	}
	if fake.count("LogIn") != 3 {
		t.Fatalf("expected 3 login attempts, got %d", fake.count("LogIn"))
	}
	if session.State() != StateLoggedOut {
		t.Fatalf("expected logged-out after failure, got %s", session.State())
	}
}

func TestLoginBadStatusIsNotRetried(t *testing.T) {
	fake := newFakeCatalog()
	fake.handlers["LogIn"] = func(w http.ResponseWriter, _ int) {
		writeStruct(w, statusMember("401 Unauthorized"))
	}
	session := newTestSession(t, fake, SessionOptions{LoginAttempts: 3})
	if err := session.Login(context.Background()); !errors.Is(err, ErrLogin) {
		t.Fatalf("expected ErrLogin, got %v", err)
	}
	if fake.count("LogIn") != 1 {
		t.Fatalf("expected a single login attempt, got %d", fake.count("LogIn"))
	}
}

func TestSearchRetryBudget(t *testing.T) {
	fake := newFakeCatalog()
	fake.handlers["LogIn"] = loginOK
	fake.handlers["SearchSubtitles"] = func(w http.ResponseWriter, _ int) {
		writeStruct(w, statusMember("503 Service Unavailable"))
	}
	session := newTestSession(t, fake, SessionOptions{QueryAttempts: 2})
	if err := session.Login(context.Background()); err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	_, err := session.Search(context.Background(), query.Request{Kind: query.KindDescriptive, Query: "Show S01E01"})
	if !errors.Is(err, ErrQueryFailed) {
		t.Fatalf("expected ErrQueryFailed, got %v", err)
	}
	if fake.count("SearchSubtitles") != 2 {
		t.Fatalf("expected 2 search attempts, got %d", fake.count("SearchSubtitles"))
	}
}

func TestSearchRecoversOnSecondAttempt(t *testing.T) {
	fake := newFakeCatalog()
	fake.handlers["LogIn"] = loginOK
	fake.handlers["SearchSubtitles"] = func(w http.ResponseWriter, n int) {
		if n == 1 {
			http.Error(w, "bad gateway", http.StatusBadGateway)
			return
		}
		writeStruct(w, statusMember("200 OK")+`<member><name>data</name><value><boolean>0</boolean></value></member>`)
	}
	session := newTestSession(t, fake, SessionOptions{})
	if err := session.Login(context.Background()); err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	candidates, err := session.Search(context.Background(), query.Request{Kind: query.KindDescriptive})
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	if len(candidates) != 0 {
		t.Fatalf("expected no candidates for data=false, got %d", len(candidates))
	}
}

func TestSearchHonoursCancellation(t *testing.T) {
	fake := newFakeCatalog()
	fake.handlers["LogIn"] = loginOK
	session := newTestSession(t, fake, SessionOptions{})
	if err := session.Login(context.Background()); err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := session.Search(ctx, query.Request{Kind: query.KindHash}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestStateString(t *testing.T) {
	if StateLoggingIn.String() != "logging-in" || State(9).String() != "state(9)" {
		t.Fatalf("unexpected state strings")
	}
}
