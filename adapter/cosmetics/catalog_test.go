package cosmetics

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/forest33/arena/pkg/logger"
)

var zlog = logger.New(logger.Config{Level: "disabled"})

const testCatalog = `
baseUrl: https://cdn.example.com/arena/
items:
  sword-01: weapons/sword-01.png
  cape-07: /capes/cape-07.png
  hat-99: https://other.example.com/hat.png
`

func writeCatalog(t *testing.T, dir, data string) string {
	path := filepath.Join(dir, "cosmetics.yaml")
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("failed to write catalog: %v", err)
	}
	return path
}

func TestResolve(t *testing.T) {
	c, err := New(writeCatalog(t, t.TempDir(), testCatalog), zlog)
	if err != nil {
		t.Fatal(err)
	}

	tests := map[string]struct {
		items []string
		want  map[string]string
	}{
		"relative": {
			items: []string{"sword-01"},
			want:  map[string]string{"sword-01": "https://cdn.example.com/arena/weapons/sword-01.png"},
		},
		"leading slash": {
			items: []string{"cape-07"},
			want:  map[string]string{"cape-07": "https://cdn.example.com/arena/capes/cape-07.png"},
		},
		"absolute": {
			items: []string{"hat-99"},
			want:  map[string]string{"hat-99": "https://other.example.com/hat.png"},
		},
		"unknown skipped": {
			items: []string{"sword-01", "nope"},
			want:  map[string]string{"sword-01": "https://cdn.example.com/arena/weapons/sword-01.png"},
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := c.Resolve(context.Background(), tc.items)
			if err != nil {
				t.Fatal(err)
			}
			if len(got) != len(tc.want) {
				t.Fatalf("got %v, expected %v", got, tc.want)
			}
			for k, v := range tc.want {
				if got[k] != v {
					t.Fatalf("item %s: got %q, expected %q", k, got[k], v)
				}
			}
		})
	}
}

func TestResolveCancelled(t *testing.T) {
	c, err := New(writeCatalog(t, t.TempDir(), testCatalog), zlog)
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := c.Resolve(ctx, []string{"sword-01"}); err == nil {
		t.Fatal("expected a context error")
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()

	if _, err := New(filepath.Join(dir, "missing.yaml"), zlog); err == nil {
		t.Fatal("missing catalog must fail")
	}
	if _, err := New(writeCatalog(t, dir, "items: [1, 2"), zlog); err == nil {
		t.Fatal("broken catalog must fail")
	}
}

func TestWatchReloads(t *testing.T) {
	dir := t.TempDir()
	path := writeCatalog(t, dir, testCatalog)

	c, err := New(path, zlog)
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Watch(); err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	// the watcher polls by modification time
	time.Sleep(1500 * time.Millisecond)
	writeCatalog(t, dir, "items:\n  boots-02: boots.png\n")

	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		got, _ := c.Resolve(context.Background(), []string{"boots-02"})
		if got["boots-02"] == "boots.png" {
			return
		}
		time.Sleep(100 * time.Millisecond)
	}
	t.Fatal("catalog was not reloaded")
}
