package sitecfg

import (
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := Open(filepath.Join(t.TempDir(), "siteconfig.db"))
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	return store
}

func TestStoreGetMissing(t *testing.T) {
	store := openTestStore(t)

	config, err := store.Get("example.com")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if config != nil {
		t.Errorf("Expected nil config for unknown host, got: %+v", config)
	}
}

func TestStorePutGet(t *testing.T) {
	store := openTestStore(t)

	err := store.Put("example.com", Config{
		BuildID: "abc123",
		Token:   "tok-1",
		Cookie:  "session=xyz",
	})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	config, err := store.Get("example.com")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if config == nil {
		t.Fatal("Expected config, got nil")
	}
	if config.Host != "example.com" {
		t.Errorf("Expected host 'example.com', got '%s'", config.Host)
	}
	if config.BuildID != "abc123" {
		t.Errorf("Expected build ID 'abc123', got '%s'", config.BuildID)
	}
	if config.Token != "tok-1" {
		t.Errorf("Expected token 'tok-1', got '%s'", config.Token)
	}
	if config.Cookie != "session=xyz" {
		t.Errorf("Expected cookie 'session=xyz', got '%s'", config.Cookie)
	}
	if config.UpdatedAt.IsZero() {
		t.Error("Expected updated_at to be set")
	}
}

func TestStorePutOverwrite(t *testing.T) {
	store := openTestStore(t)

	if err := store.Put("example.com", Config{BuildID: "old"}); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if err := store.Put("example.com", Config{BuildID: "new"}); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	config, err := store.Get("example.com")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if config.BuildID != "new" {
		t.Errorf("Expected build ID 'new' after overwrite, got '%s'", config.BuildID)
	}
}
