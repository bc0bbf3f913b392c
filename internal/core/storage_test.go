package core

import (
	"context"
	"path/filepath"
	"testing"
)

func TestOpenPersistentStoreMemory(t *testing.T) {
	store, err := OpenPersistentStore(context.Background(), StorageConfig{Driver: StorageMemory})
	if err != nil {
		t.Fatalf("open memory store: %v", err)
	}
	defer func() { _ = store.Close() }()
	if orgs := store.ListOrganizations(); len(orgs) != 0 {
		t.Fatalf("expected empty store, got %+v", orgs)
	}
}

func TestOpenPersistentStoreSQLiteDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")
	store, err := OpenPersistentStore(context.Background(), StorageConfig{SQLitePath: path})
	if err != nil {
		t.Fatalf("open sqlite store: %v", err)
	}
	defer func() { _ = store.Close() }()

	svc := NewService(store)
	if _, _, err := svc.CreateOrganization(context.Background(), Organization{Name: "Durable"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(store.ListOrganizations()) != 1 {
		t.Fatalf("expected one organization committed")
	}
}

func TestOpenPersistentStoreUnknownDriver(t *testing.T) {
	if _, err := OpenPersistentStore(context.Background(), StorageConfig{Driver: "voodoo"}); err == nil {
		t.Fatalf("expected unknown driver error")
	}
}

func TestOpenPersistentStoreS3RequiresBucket(t *testing.T) {
	if _, err := OpenPersistentStore(context.Background(), StorageConfig{Driver: StorageS3}); err == nil {
		t.Fatalf("expected bucket required error")
	}
}
