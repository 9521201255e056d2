package minecraft

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/PiotrWarzachowski/blue-launcher/internal/config"
	"github.com/PiotrWarzachowski/blue-launcher/internal/download"
)

const (
	hashStone = "a1b2c3d4e5f60718293a4b5c6d7e8f9012345678"
	hashSound = "ff00112233445566778899aabbccddeeff001122"
)

// contentServer serves a small manifest, one descriptor, its client archive,
// libraries and assets, and counts every request by path.
type contentServer struct {
	*httptest.Server

	mu      sync.Mutex
	hits    map[string]int
	missing map[string]bool
}

func newContentServer(t *testing.T) *contentServer {
	t.Helper()
	cs := &contentServer{hits: make(map[string]int), missing: make(map[string]bool)}
	cs.Server = httptest.NewServer(http.HandlerFunc(cs.serve))
	t.Cleanup(cs.Close)
	return cs
}

func (cs *contentServer) fail(path string) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.missing[path] = true
}

func (cs *contentServer) count(path string) int {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return cs.hits[path]
}

func (cs *contentServer) total() int {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	n := 0
	for _, v := range cs.hits {
		n += v
	}
	return n
}

func (cs *contentServer) serve(w http.ResponseWriter, r *http.Request) {
	cs.mu.Lock()
	cs.hits[r.URL.Path]++
	missing := cs.missing[r.URL.Path]
	cs.mu.Unlock()

	if missing {
		http.NotFound(w, r)
		return
	}

	base := "http://" + r.Host
	switch {
	case r.URL.Path == "/manifest.json":
		json.NewEncoder(w).Encode(map[string]any{
			"latest": map[string]string{"release": "1.20.1", "snapshot": "23w31a"},
			"versions": []map[string]string{
				{"id": "23w31a", "type": "snapshot", "url": base + "/v/23w31a.json", "releaseTime": "2023-08-01T10:00:00+00:00"},
				{"id": "1.20.1", "type": "release", "url": base + "/v/1.20.1.json", "releaseTime": "2023-06-12T13:25:51+00:00"},
				{"id": "b1.7.3", "type": "old_beta", "url": base + "/v/b1.7.3.json", "releaseTime": "2011-07-07T22:00:00+00:00"},
			},
		})
	case r.URL.Path == "/v/1.20.1.json":
		json.NewEncoder(w).Encode(testDescriptor(base))
	case r.URL.Path == "/indexes/5.json":
		json.NewEncoder(w).Encode(map[string]any{
			"objects": map[string]any{
				"minecraft/textures/block/stone.png":  map[string]any{"hash": hashStone, "size": 4},
				"minecraft/textures/block/stone2.png": map[string]any{"hash": hashStone, "size": 4},
				"minecraft/sounds/step.ogg":           map[string]any{"hash": hashSound, "size": 4},
			},
		})
	case r.URL.Path == "/client.jar",
		strings.HasPrefix(r.URL.Path, "/libs/"),
		strings.HasPrefix(r.URL.Path, "/resources/"),
		strings.HasPrefix(r.URL.Path, "/mods/"):
		w.Write([]byte("data"))
	default:
		http.NotFound(w, r)
	}
}

func testDescriptor(base string) map[string]any {
	lib := func(name, path string, rules ...map[string]any) map[string]any {
		l := map[string]any{
			"name": name,
			"downloads": map[string]any{
				"artifact": map[string]any{"path": path, "url": base + "/libs/" + path, "sha1": "x", "size": 4},
			},
		}
		if len(rules) > 0 {
			l["rules"] = rules
		}
		return l
	}

	return map[string]any{
		"id":        "1.20.1",
		"type":      "release",
		"mainClass": "net.minecraft.client.main.Main",
		"assets":    "5",
		"assetIndex": map[string]any{
			"id":  "5",
			"url": base + "/indexes/5.json",
		},
		"downloads": map[string]any{
			"client": map[string]any{"url": base + "/client.jar", "sha1": "x", "size": 4},
		},
		"libraries": []map[string]any{
			lib("org.lwjgl:lwjgl:3.3.1", "org/lwjgl/lwjgl.jar"),
			lib("com.example:windows-only:1.0", "com/example/windows-only.jar",
				map[string]any{"action": "allow", "os": map[string]any{"name": "windows"}},
			),
			lib("com.example:not-osx:1.0", "com/example/not-osx.jar",
				map[string]any{"action": "allow"},
				map[string]any{"action": "disallow", "os": map[string]any{"name": "osx"}},
			),
			lib("org.lwjgl:lwjgl:3.3.1", "org/lwjgl/lwjgl.jar"),
			lib("com.example:demo:1.0", "com/example/demo.jar",
				map[string]any{"action": "allow", "features": map[string]any{"is_demo_user": true}},
			),
			lib("com.google:gson:2.10", "com/google/gson.jar"),
		},
	}
}

func testConfig(t *testing.T, cs *contentServer) *config.Config {
	t.Helper()
	cfg := config.Default(t.TempDir())
	cfg.Endpoints.Manifest = cs.URL + "/manifest.json"
	cfg.Endpoints.Resources = cs.URL + "/resources"
	cfg.DownloadWorkers = 4
	return cfg
}

func testFetcher(cs *contentServer) *download.Fetcher {
	return download.New(cs.Client(), 0, nil)
}
