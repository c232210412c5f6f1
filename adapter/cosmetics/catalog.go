// Package cosmetics item catalog read from a YAML file
package cosmetics

import (
	"context"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/radovskyb/watcher"
	"gopkg.in/yaml.v3"

	"github.com/forest33/arena/business/entity"
	"github.com/forest33/arena/pkg/logger"
)

const watchInterval = time.Second

type Catalog struct {
	path    string
	log     *logger.Logger
	baseURL string
	items   map[string]string
	watcher *watcher.Watcher
	mux     sync.RWMutex
}

type catalogFile struct {
	BaseURL string            `yaml:"baseUrl"`
	Items   map[string]string `yaml:"items"`
}

func New(path string, log *logger.Logger) (*Catalog, error) {
	c := &Catalog{
		path: path,
		log:  log.Layer("cosmetics"),
	}

	if err := c.load(); err != nil {
		return nil, err
	}

	return c, nil
}

// Resolve maps item ids to asset references, unknown items are left out
func (c *Catalog) Resolve(ctx context.Context, items []string) (map[string]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mux.RLock()
	defer c.mux.RUnlock()

	out := make(map[string]string, len(items))
	for _, id := range items {
		ref, ok := c.items[id]
		if !ok {
			c.log.Debug().Str("item", id).Msg("unknown item")
			continue
		}
		out[id] = c.reference(ref)
	}

	return out, nil
}

func (c *Catalog) reference(ref string) string {
	if c.baseURL == "" || strings.Contains(ref, "://") {
		return ref
	}
	return strings.TrimSuffix(c.baseURL, "/") + "/" + strings.TrimPrefix(ref, "/")
}

func (c *Catalog) load() error {
	data, err := os.ReadFile(c.path)
	if err != nil {
		return errors.Wrap(err, "failed to read cosmetics catalog")
	}

	f := &catalogFile{}
	if err := yaml.Unmarshal(data, f); err != nil {
		return errors.Wrap(err, "failed to parse cosmetics catalog")
	}

	c.mux.Lock()
	c.baseURL = f.BaseURL
	c.items = f.Items
	c.mux.Unlock()

	c.log.Info().Str("path", c.path).Int("items", len(f.Items)).Msg("cosmetics catalog loaded")

	return nil
}

// Watch reloads the catalog every time the file is written
func (c *Catalog) Watch() error {
	w := watcher.New()
	w.SetMaxEvents(1)
	w.FilterOps(watcher.Write, watcher.Create)
	if err := w.Add(c.path); err != nil {
		return err
	}
	c.watcher = w

	go func() {
		if err := w.Start(watchInterval); err != nil {
			c.log.Error().Err(err).Str("path", c.path).Msg("failed to start watching cosmetics catalog")
		}
	}()

	go func() {
		for {
			select {
			case <-w.Event:
				if err := c.load(); err != nil {
					c.log.Error().Err(err).Msg("failed to reload cosmetics catalog")
				}
			case err := <-w.Error:
				c.log.Error().Err(err).Msg("error on watching cosmetics catalog")
			case <-w.Closed:
				return
			}
		}
	}()

	return nil
}

func (c *Catalog) Close() {
	if c.watcher != nil {
		c.watcher.Close()
	}
}

var _ entity.CosmeticsResolver = (*Catalog)(nil)
