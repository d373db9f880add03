package config

import (
	"os"
	"testing"
	"time"
)

func TestLoadTagCatalog_NormalizesTags(t *testing.T) {
	// Arrange
	path := writeFile(t, "tags.yaml", "tags:\n  - Bitcoin\n  - defi\n  - Bitcoin\n")

	// Act
	c, err := LoadTagCatalog(path, time.Hour)
	if err != nil {
		t.Fatalf("LoadTagCatalog() error = %v", err)
	}
	defer c.Close()

	// Assert
	got := c.Tags()
	if len(got) != 2 || got[0] != "BITCOIN" || got[1] != "DEFI" {
		t.Errorf("Tags() = %v, want [BITCOIN DEFI]", got)
	}
}

func TestLoadTagCatalog_RepositoryFile(t *testing.T) {
	c, err := LoadTagCatalog("../../config/tags.yaml", time.Hour)
	if err != nil {
		t.Fatalf("LoadTagCatalog() error = %v", err)
	}
	defer c.Close()

	if len(c.Tags()) != 10 {
		t.Errorf("Tags() = %v, want the 10 default tags", c.Tags())
	}
}

func TestLoadTagCatalog_Errors(t *testing.T) {
	empty := writeFile(t, "empty.yaml", "tags: []\n")

	if _, err := LoadTagCatalog(empty, time.Hour); err == nil {
		t.Error("empty catalogue should fail")
	}
	if _, err := LoadTagCatalog("/does/not/exist.yaml", time.Hour); err == nil {
		t.Error("missing file should fail")
	}
}

func TestTagCatalog_HotReload(t *testing.T) {
	// Arrange
	path := writeFile(t, "tags.yaml", "tags: [bitcoin]\n")
	c, err := LoadTagCatalog(path, 10*time.Millisecond)
	if err != nil {
		t.Fatalf("LoadTagCatalog() error = %v", err)
	}
	defer c.Close()

	// Act
	if err := os.WriteFile(path, []byte("tags: [memes, runes]\n"), 0o644); err != nil {
		t.Fatalf("rewrite: %v", err)
	}
	future := time.Now().Add(time.Minute)
	os.Chtimes(path, future, future)

	// Assert
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if tags := c.Tags(); len(tags) == 2 && tags[0] == "MEMES" {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Errorf("Tags() = %v, want reloaded [MEMES RUNES]", c.Tags())
}

func TestTagCatalog_BrokenReloadKeepsPrevious(t *testing.T) {
	path := writeFile(t, "tags.yaml", "tags: [bitcoin]\n")
	c, err := LoadTagCatalog(path, 10*time.Millisecond)
	if err != nil {
		t.Fatalf("LoadTagCatalog() error = %v", err)
	}
	defer c.Close()

	os.WriteFile(path, []byte("tags: [\n"), 0o644)
	future := time.Now().Add(time.Minute)
	os.Chtimes(path, future, future)
	time.Sleep(50 * time.Millisecond)

	if tags := c.Tags(); len(tags) != 1 || tags[0] != "BITCOIN" {
		t.Errorf("Tags() = %v, want previous [BITCOIN]", tags)
	}
}

func TestNewTagCatalog_Fixed(t *testing.T) {
	c := NewTagCatalog("runes", "Memes")
	defer c.Close()

	tags := c.Tags()
	tags[0] = "changed"

	if got := c.Tags(); got[0] != "RUNES" || got[1] != "MEMES" {
		t.Errorf("Tags() = %v, want an unaffected copy of [RUNES MEMES]", got)
	}
}
