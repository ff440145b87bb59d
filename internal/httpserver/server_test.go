package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/MrSnakeDoc/mrunner/internal/bookmarks"
	"github.com/MrSnakeDoc/mrunner/internal/config"
	"github.com/MrSnakeDoc/mrunner/internal/domain"
	"github.com/MrSnakeDoc/mrunner/internal/hotkeys"
	"github.com/MrSnakeDoc/mrunner/internal/httpserver/deps"
	"github.com/MrSnakeDoc/mrunner/internal/index"
	"github.com/MrSnakeDoc/mrunner/internal/logger"
	"github.com/MrSnakeDoc/mrunner/internal/palette"
	"github.com/MrSnakeDoc/mrunner/internal/runner"
	"github.com/MrSnakeDoc/mrunner/internal/scheduler"
	"github.com/MrSnakeDoc/mrunner/internal/search"
	"github.com/MrSnakeDoc/mrunner/internal/shortcuts"
	"github.com/MrSnakeDoc/mrunner/internal/sources/apps"
	"github.com/MrSnakeDoc/mrunner/internal/store/file"
)

type testEnv struct {
	router    http.Handler
	catalog   *index.Catalog
	bookmarks *bookmarks.Store
	shortcuts *shortcuts.Store
	trigger   chan struct{}

	mu      sync.Mutex
	started []string
}

func (e *testEnv) start(name string, args ...string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.started = append(e.started, strings.Join(append([]string{name}, args...), " "))
	return nil
}

func (e *testEnv) startedCommands() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.started...)
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()
	log := logger.NewNop()

	home := t.TempDir()
	if err := os.Mkdir(filepath.Join(home, "Documents"), 0o755); err != nil {
		t.Fatal(err)
	}
	prefs, err := file.New(filepath.Join(home, ".config", "mrunner"), logger.NewNop())
	if err != nil {
		t.Fatal(err)
	}

	db, err := bookmarks.OpenDB(ctx, bookmarks.Memory)
	if err != nil {
		t.Fatal(err)
	}
	bm := bookmarks.NewStore(db)
	t.Cleanup(func() { _ = bm.Close() })

	env := &testEnv{
		catalog:   index.NewCatalog(),
		bookmarks: bm,
		trigger:   make(chan struct{}, 1),
	}

	filter := search.NewFilter(env.catalog, search.DefaultOptions(), log)
	session := palette.NewSession(filter, bm, env.catalog, log, palette.WithDebounce(5*time.Millisecond))
	t.Cleanup(session.Close)

	registry := hotkeys.NewRegistry(log)
	env.shortcuts = shortcuts.NewStore(prefs, registry, log)
	env.shortcuts.Load(ctx)
	env.shortcuts.Wait()

	folders, err := apps.NewFolders(prefs, home)
	if err != nil {
		t.Fatal(err)
	}
	syncer := scheduler.NewCommandSyncer(apps.NewSource(folders, "linux", log), env.catalog, log)
	syncer.Sync(ctx)

	run := runner.New(log, runner.WithStarter(env.start), runner.WithGOOS("linux"))

	cfg := &config.Config{
		ListenAddr:   "127.0.0.1:7878",
		AllowedHosts: []string{"127.0.0.1", "localhost"},
		AllowedCIDRS: []string{"127.0.0.1/32", "::1/128"},
		CORSOrigins:  []string{"tauri://localhost"},
	}
	d := deps.Deps{
		Logger:         log,
		StartTime:      time.Now(),
		Version:        "test",
		AllowedHosts:   cfg.AllowedHosts,
		AllowedCIDRS:   cfg.AllowedCIDRS,
		Catalog:        env.catalog,
		Filter:         filter,
		Session:        session,
		Shortcuts:      env.shortcuts,
		Bookmarks:      bm,
		Runner:         run,
		Hotkeys:        registry,
		Folders:        folders,
		ReloadTrigger:  env.trigger,
		FoldersChanged: syncer.Sync,
	}
	env.router = NewRouter(cfg, log, d)
	return env
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	r := httptest.NewRequest(method, "http://127.0.0.1:7878"+path, &buf)
	r.RemoteAddr = "127.0.0.1:40000"
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, r)
	return w
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return v
}

type rows struct {
	Query string `json:"query"`
	Count int    `json:"count"`
	Rows  []struct {
		ID     string  `json:"id"`
		Action string  `json:"action"`
		Target string  `json:"target"`
		Score  float64 `json:"score"`
	} `json:"rows"`
}

func (r rows) ids() []string {
	out := make([]string, 0, len(r.Rows))
	for _, row := range r.Rows {
		out = append(out, row.ID)
	}
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func TestGuards(t *testing.T) {
	env := newTestEnv(t)

	r := httptest.NewRequest(http.MethodGet, "http://127.0.0.1:7878/shortcuts", nil)
	r.RemoteAddr = "192.168.1.5:40000"
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, r)
	if w.Code != http.StatusForbidden {
		t.Errorf("foreign client status = %d, want 403", w.Code)
	}

	r = httptest.NewRequest(http.MethodGet, "http://rebind.attacker.test/shortcuts", nil)
	r.RemoteAddr = "127.0.0.1:40000"
	w = httptest.NewRecorder()
	env.router.ServeHTTP(w, r)
	if w.Code != http.StatusMisdirectedRequest {
		t.Errorf("foreign host status = %d, want 421", w.Code)
	}
}

func TestStatusEndpoints(t *testing.T) {
	env := newTestEnv(t)

	for _, path := range []string{"/healthz", "/readyz", "/infra"} {
		if w := env.do(t, http.MethodGet, path, nil); w.Code != http.StatusOK {
			t.Errorf("GET %s = %d: %s", path, w.Code, w.Body.String())
		}
	}

	infra := decodeBody[struct {
		Mode       string `json:"mode"`
		Components map[string]struct {
			OK     bool `json:"ok"`
			Loaded *int `json:"loaded"`
		} `json:"components"`
	}](t, env.do(t, http.MethodGet, "/infra", nil))

	if c := infra.Components["commands"]; !c.OK || c.Loaded == nil || *c.Loaded == 0 {
		t.Errorf("commands component = %+v", c)
	}
	if infra.Components["redis"].OK != true {
		t.Errorf("disabled redis should not degrade")
	}
}

func TestSearchMergesBookmarks(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	title := "Go documentation"
	if _, err := env.bookmarks.Add(ctx, bookmarks.Input{URL: "https://go.dev/doc", Title: &title, Tags: []string{"dev"}}); err != nil {
		t.Fatal(err)
	}

	res := decodeBody[rows](t, env.do(t, http.MethodGet, "/search?q=doc%20%23dev", nil))
	if len(res.Rows) == 0 || res.Rows[0].ID != "bookmark-1" {
		t.Fatalf("rows = %v, want bookmark-1 first", res.ids())
	}

	res = decodeBody[rows](t, env.do(t, http.MethodGet, "/search?q=code", nil))
	if !contains(res.ids(), "app-code") {
		t.Errorf("rows = %v, want app-code", res.ids())
	}

	res = decodeBody[rows](t, env.do(t, http.MethodGet, "/search?q=&limit=2", nil))
	if res.Count != 2 {
		t.Errorf("limited count = %d", res.Count)
	}
}

func TestPaletteDebouncedBookmarks(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	if _, err := env.bookmarks.Add(ctx, bookmarks.Input{URL: "https://pkg.go.dev", Tags: []string{"go"}}); err != nil {
		t.Fatal(err)
	}

	w := env.do(t, http.MethodPut, "/palette/query", map[string]string{"query": "pkg"})
	if w.Code != http.StatusOK {
		t.Fatalf("PUT /palette/query = %d: %s", w.Code, w.Body.String())
	}

	deadline := time.Now().Add(3 * time.Second)
	for {
		res := decodeBody[rows](t, env.do(t, http.MethodGet, "/palette/results", nil))
		if res.Query != "pkg" {
			t.Fatalf("query = %q", res.Query)
		}
		if len(res.Rows) > 0 && res.Rows[0].ID == "bookmark-1" {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("bookmark never showed up: %v", res.ids())
		}
		time.Sleep(5 * time.Millisecond)
	}

	if w := env.do(t, http.MethodPut, "/palette/query", "{"); w.Code != http.StatusBadRequest {
		t.Errorf("bad body status = %d", w.Code)
	}
}

func TestRunCommand(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/commands/app-code/run", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("run app-code = %d: %s", w.Code, w.Body.String())
	}
	res := decodeBody[runner.Result](t, w)
	if !res.Success || res.Output != "Process started" {
		t.Errorf("result = %+v", res)
	}

	if w := env.do(t, http.MethodPost, "/commands/folder-system-documents/run", nil); w.Code != http.StatusOK {
		t.Errorf("run folder = %d: %s", w.Code, w.Body.String())
	}

	got := env.startedCommands()
	if len(got) != 2 || got[0] != "code" || !strings.HasPrefix(got[1], "xdg-open ") {
		t.Errorf("started = %q", got)
	}

	if w := env.do(t, http.MethodPost, "/commands/nope/run", nil); w.Code != http.StatusNotFound {
		t.Errorf("unknown command status = %d", w.Code)
	}
	if w := env.do(t, http.MethodPost, "/commands/app-code/input", map[string]string{"value": "x"}); w.Code != http.StatusUnprocessableEntity {
		t.Errorf("input on shell command status = %d", w.Code)
	}
}

func TestShortcutLifecycle(t *testing.T) {
	env := newTestEnv(t)

	list := decodeBody[struct {
		Shortcuts []domain.ShortcutRule `json:"shortcuts"`
	}](t, env.do(t, http.MethodGet, "/shortcuts", nil))
	if len(list.Shortcuts) != len(domain.DefaultShortcuts()) {
		t.Fatalf("got %d rules", len(list.Shortcuts))
	}

	w := env.do(t, http.MethodPut, "/shortcuts/"+domain.ShortcutToggleWindow+"/hotkey", map[string]string{"hotkey": "Alt+Space"})
	if w.Code != http.StatusOK {
		t.Fatalf("update = %d: %s", w.Code, w.Body.String())
	}
	rule := decodeBody[domain.ShortcutRule](t, w)
	if rule.Hotkey.String() != "Alt+Space" {
		t.Errorf("hotkey = %s", rule.Hotkey)
	}

	obj := `{"hotkey": {"modifiers": ["Control"], "key": "Space"}}`
	if w := env.do(t, http.MethodPut, "/shortcuts/"+domain.ShortcutToggleWindow+"/hotkey", obj); w.Code != http.StatusOK {
		t.Errorf("object form = %d: %s", w.Code, w.Body.String())
	}

	w = env.do(t, http.MethodPost, "/shortcuts", map[string]string{"hotkey": "Control+Space", "action": "open-terminal", "description": "Terminal"})
	if w.Code != http.StatusCreated {
		t.Fatalf("add = %d: %s", w.Code, w.Body.String())
	}
	custom := decodeBody[domain.ShortcutRule](t, w)
	if !custom.IsCustom || !strings.HasPrefix(custom.ID, domain.CustomShortcutPrefix) {
		t.Errorf("custom = %+v", custom)
	}

	conflicts := decodeBody[[]struct {
		Hotkey string   `json:"hotkey"`
		IDs    []string `json:"ids"`
	}](t, env.do(t, http.MethodGet, "/shortcuts/conflicts", nil))
	if len(conflicts) != 1 || conflicts[0].Hotkey != "Control+Space" || len(conflicts[0].IDs) != 2 {
		t.Errorf("conflicts = %+v", conflicts)
	}

	if w := env.do(t, http.MethodPost, "/shortcuts/"+custom.ID+"/toggle", map[string]bool{"enabled": false}); w.Code != http.StatusOK {
		t.Errorf("toggle = %d", w.Code)
	}
	if w := env.do(t, http.MethodDelete, "/shortcuts/"+domain.ShortcutEscape, nil); w.Code != http.StatusConflict {
		t.Errorf("delete built-in = %d", w.Code)
	}
	if w := env.do(t, http.MethodDelete, "/shortcuts/"+custom.ID, nil); w.Code != http.StatusNoContent {
		t.Errorf("delete custom = %d", w.Code)
	}
	if w := env.do(t, http.MethodPost, "/shortcuts/"+domain.ShortcutToggleWindow+"/reset", nil); w.Code != http.StatusOK {
		t.Errorf("reset = %d", w.Code)
	}
	if r, _ := env.shortcuts.Get(domain.ShortcutToggleWindow); r.Hotkey.String() != "Super+Space" {
		t.Errorf("after reset hotkey = %s", r.Hotkey)
	}

	tests := []struct {
		name string
		path string
		body any
		want int
	}{
		{"unknown rule", "/shortcuts/missing/hotkey", map[string]string{"hotkey": "Control+K"}, http.StatusNotFound},
		{"modifier only", "/shortcuts/" + domain.ShortcutEscape + "/hotkey", map[string]string{"hotkey": "Control"}, http.StatusBadRequest},
		{"missing hotkey", "/shortcuts/" + domain.ShortcutEscape + "/hotkey", map[string]string{}, http.StatusBadRequest},
		{"bad object", "/shortcuts/" + domain.ShortcutEscape + "/hotkey", `{"hotkey": {"modifiers": ["Hyper"], "key": "K"}}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if w := env.do(t, http.MethodPut, tt.path, tt.body); w.Code != tt.want {
				t.Errorf("status = %d, want %d: %s", w.Code, tt.want, w.Body.String())
			}
		})
	}
}

func TestGlobalHotkeys(t *testing.T) {
	env := newTestEnv(t)
	env.shortcuts.Wait()

	res := decodeBody[struct {
		Bindings   []domain.GlobalBinding `json:"bindings"`
		Registered []hotkeys.Binding      `json:"registered"`
	}](t, env.do(t, http.MethodGet, "/hotkeys/global", nil))

	if len(res.Bindings) != 1 || res.Bindings[0].Hotkey != "Super+Space" {
		t.Errorf("bindings = %+v", res.Bindings)
	}
	if len(res.Registered) != 1 {
		t.Errorf("registered = %+v", res.Registered)
	}

	w := env.do(t, http.MethodPost, "/hotkeys/trigger", map[string]string{"hotkey": "Control+F12"})
	if w.Code != http.StatusNotFound {
		t.Errorf("unbound trigger = %d", w.Code)
	}
}

func TestBookmarkEndpoints(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/bookmarks", map[string]any{"url": "https://example.com", "title": "Example", "tags": []string{"demo", "web"}})
	if w.Code != http.StatusCreated {
		t.Fatalf("add = %d: %s", w.Code, w.Body.String())
	}
	b := decodeBody[domain.Bookmark](t, w)
	if b.Index != 1 || b.Tags != "demo, web" {
		t.Errorf("bookmark = %+v", b)
	}

	if w := env.do(t, http.MethodPost, "/bookmarks", map[string]string{"url": "https://example.com"}); w.Code != http.StatusConflict {
		t.Errorf("duplicate = %d", w.Code)
	}
	if w := env.do(t, http.MethodPost, "/bookmarks", map[string]string{"url": ""}); w.Code != http.StatusBadRequest {
		t.Errorf("empty url = %d", w.Code)
	}

	w = env.do(t, http.MethodPut, "/bookmarks/1", map[string]string{"title": "Renamed"})
	if got := decodeBody[domain.Bookmark](t, w); got.Title != "Renamed" || got.URI != "https://example.com" {
		t.Errorf("updated = %+v", got)
	}

	found := decodeBody[[]domain.Bookmark](t, env.do(t, http.MethodGet, "/bookmarks?q=%23demo", nil))
	if len(found) != 1 {
		t.Errorf("tag search = %+v", found)
	}
	tags := decodeBody[[]domain.Tag](t, env.do(t, http.MethodGet, "/bookmarks/tags", nil))
	if len(tags) != 2 {
		t.Errorf("tags = %+v", tags)
	}

	if w := env.do(t, http.MethodGet, "/bookmarks/abc", nil); w.Code != http.StatusBadRequest {
		t.Errorf("bad id = %d", w.Code)
	}
	if w := env.do(t, http.MethodDelete, "/bookmarks/1", nil); w.Code != http.StatusNoContent {
		t.Errorf("delete = %d", w.Code)
	}
	if w := env.do(t, http.MethodDelete, "/bookmarks/1", nil); w.Code != http.StatusNotFound {
		t.Errorf("second delete = %d", w.Code)
	}
}

func TestBookmarkEditsRefreshPalette(t *testing.T) {
	env := newTestEnv(t)

	paletteIDs := func() []string {
		return decodeBody[rows](t, env.do(t, http.MethodGet, "/palette/results", nil)).ids()
	}

	if w := env.do(t, http.MethodPost, "/bookmarks", map[string]any{"url": "https://go.dev", "tags": []string{"go"}}); w.Code != http.StatusCreated {
		t.Fatalf("POST /bookmarks = %d: %s", w.Code, w.Body.String())
	}
	if ids := paletteIDs(); !contains(ids, "bookmark-1") {
		t.Fatalf("empty query rows = %v, want bookmark-1 after add", ids)
	}

	if w := env.do(t, http.MethodDelete, "/bookmarks/tags/go", nil); w.Code != http.StatusNoContent {
		t.Fatalf("DELETE tag = %d", w.Code)
	}
	if ids := paletteIDs(); !contains(ids, "bookmark-1") {
		t.Errorf("rows = %v, tag removal should keep the bookmark", ids)
	}

	if w := env.do(t, http.MethodDelete, "/bookmarks/1", nil); w.Code != http.StatusNoContent {
		t.Fatalf("DELETE /bookmarks/1 = %d", w.Code)
	}
	if ids := paletteIDs(); contains(ids, "bookmark-1") {
		t.Errorf("empty query rows = %v, deleted bookmark still listed", ids)
	}
}

func TestFolderEndpoints(t *testing.T) {
	env := newTestEnv(t)

	if _, ok := env.catalog.Get("folder-system-documents"); !ok {
		t.Fatal("system folder missing from catalog")
	}

	w := env.do(t, http.MethodPost, "/folders", map[string]string{"name": "Work", "path": "~/work"})
	if w.Code != http.StatusCreated {
		t.Fatalf("add = %d: %s", w.Code, w.Body.String())
	}
	added := decodeBody[domain.FolderConfig](t, w)
	if _, ok := env.catalog.Get(added.ID); !ok {
		t.Errorf("catalog missing %s after add", added.ID)
	}

	if w := env.do(t, http.MethodPost, "/folders/system-documents/hide", nil); w.Code != http.StatusNoContent {
		t.Fatalf("hide = %d: %s", w.Code, w.Body.String())
	}
	if _, ok := env.catalog.Get("folder-system-documents"); ok {
		t.Error("hidden folder still in catalog")
	}
	if w := env.do(t, http.MethodDelete, "/folders/system-documents", nil); w.Code != http.StatusConflict {
		t.Errorf("remove system = %d", w.Code)
	}
	if w := env.do(t, http.MethodPost, "/folders/system-documents/show", nil); w.Code != http.StatusNoContent {
		t.Errorf("show = %d", w.Code)
	}
	if w := env.do(t, http.MethodDelete, "/folders/"+added.ID, nil); w.Code != http.StatusNoContent {
		t.Errorf("remove = %d", w.Code)
	}
	if w := env.do(t, http.MethodPost, "/folders", map[string]string{"name": "", "path": "/tmp"}); w.Code != http.StatusBadRequest {
		t.Errorf("invalid folder = %d", w.Code)
	}
}

func TestReloadTrigger(t *testing.T) {
	env := newTestEnv(t)

	if w := env.do(t, http.MethodPost, "/reload", nil); w.Code != http.StatusAccepted {
		t.Errorf("first reload = %d", w.Code)
	}
	if w := env.do(t, http.MethodPost, "/reload", nil); w.Code != http.StatusTooManyRequests {
		t.Errorf("second reload = %d", w.Code)
	}
	<-env.trigger
}
