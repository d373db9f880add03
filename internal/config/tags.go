package config

import (
	"errors"
	"os"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"tweet-suggester/internal/domain"
	"tweet-suggester/pkg/log"
)

// TagCatalog holds the selectable filter tags in display order.
// The backing file is reloaded when it changes on disk.
type TagCatalog struct {
	mu          sync.RWMutex
	tags        []string
	lastModTime time.Time
	filePath    string
	stop        chan struct{}
	once        sync.Once
}

// rawTags represents the YAML structure.
type rawTags struct {
	Tags []string `yaml:"tags"`
}

// NewTagCatalog returns a fixed catalogue without a backing file.
func NewTagCatalog(tags ...string) *TagCatalog {
	return &TagCatalog{tags: domain.NormalizeTags(tags), stop: make(chan struct{})}
}

// LoadTagCatalog loads the catalogue from a YAML file.
// It starts a background goroutine for hot-reloading.
func LoadTagCatalog(filePath string, interval time.Duration) (*TagCatalog, error) {
	c := &TagCatalog{filePath: filePath, stop: make(chan struct{})}
	if err := c.reload(); err != nil {
		return nil, err
	}

	go c.watch(interval)

	return c, nil
}

// Tags returns the canonical (uppercase) tags.
func (c *TagCatalog) Tags() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]string{}, c.tags...)
}

// Close stops the watcher.
func (c *TagCatalog) Close() {
	c.once.Do(func() { close(c.stop) })
}

// reload reads the catalogue from the file.
func (c *TagCatalog) reload() error {
	info, err := os.Stat(c.filePath)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(c.filePath)
	if err != nil {
		return err
	}

	var raw rawTags
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return err
	}
	tags := domain.NormalizeTags(raw.Tags)
	if len(tags) == 0 {
		return errors.New("tag catalogue is empty")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.tags = tags
	c.lastModTime = info.ModTime()
	return nil
}

// watch monitors the file for changes and reloads it.
// A broken file keeps the previous catalogue.
func (c *TagCatalog) watch(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			info, err := os.Stat(c.filePath)
			if err != nil {
				continue
			}
			c.mu.RLock()
			changed := info.ModTime().After(c.lastModTime)
			c.mu.RUnlock()
			if !changed {
				continue
			}
			if err := c.reload(); err != nil {
				log.GlobalWarn("tag catalogue reload failed", "path", c.filePath, "error", err)
				continue
			}
			log.GlobalInfo("tag catalogue reloaded", "path", c.filePath)
		}
	}
}
