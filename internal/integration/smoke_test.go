package integration

import (
	"context"
	"path/filepath"
	"testing"

	"usergate/internal/blob"
	"usergate/internal/core"
	"usergate/internal/infra/persistence/sqlite"
	"usergate/internal/keys"
	"usergate/pkg/domain"
)

// TestIntegrationSmoke runs a minimal issue-then-authorize cycle against each
// in-process key record backend and a user round trip through the service.
// Scope stays tiny so it can act as a fast CI health check.
func TestIntegrationSmoke(t *testing.T) {
	ctx := context.Background()

	recordVariants := []struct {
		name string
		open func(t *testing.T) domain.KeyRecordStore
	}{
		{
			name: "filesystem",
			open: func(t *testing.T) domain.KeyRecordStore {
				store, err := keys.OpenRecordStore(ctx, keys.StorageConfig{
					Driver: keys.StorageFilesystem,
					Path:   filepath.Join(t.TempDir(), "data", "api-keys.json"),
				})
				if err != nil {
					t.Fatalf("open fs record: %v", err)
				}
				return store
			},
		},
		{
			name: "memory-blob",
			open: func(_ *testing.T) domain.KeyRecordStore {
				return keys.NewBlobRecordStore(blob.NewMemory(), "")
			},
		},
		{
			name: "s3-mock",
			open: func(_ *testing.T) domain.KeyRecordStore {
				return keys.NewBlobRecordStore(blob.NewMockS3ForTests(), "pools/api-keys.json")
			},
		},
		{
			name: "sqlite",
			open: func(t *testing.T) domain.KeyRecordStore {
				s, err := sqlite.NewStore(filepath.Join(t.TempDir(), "keys.db"))
				if err != nil {
					t.Skipf("sqlite unavailable: %v", err)
				}
				return s
			},
		},
	}

	for _, rv := range recordVariants {
		t.Run(rv.name, func(t *testing.T) {
			store := rv.open(t)
			pool := keys.NewPool(store)
			if err := pool.Load(ctx); err != nil {
				t.Fatalf("load: %v", err)
			}
			if _, err := pool.EnsureCapacity(ctx, 3); err != nil {
				t.Fatalf("ensure capacity: %v", err)
			}
			iss, err := keys.NewIssuer(pool).Issue(ctx, "smoke@example.com")
			if err != nil {
				t.Fatalf("issue: %v", err)
			}
			gate := keys.NewGate(pool, keys.AuthIssued)
			if !gate.Authorize(iss.Key) {
				t.Fatalf("issued key %q was rejected", iss.Key)
			}

			// A second pool over the same record sees the issuance.
			reloaded := keys.NewPool(store)
			if err := reloaded.Load(ctx); err != nil {
				t.Fatalf("reload: %v", err)
			}
			if got := reloaded.Lookup(iss.Key); got != keys.PartitionUsed {
				t.Fatalf("reloaded partition = %s, want used", got)
			}
			if stats := reloaded.Stats(); stats.Available != 2 || stats.Used != 1 {
				t.Fatalf("reloaded stats = %+v", stats)
			}
			if err := pool.Close(); err != nil {
				t.Fatalf("close: %v", err)
			}
		})
	}

	t.Run("users", func(t *testing.T) {
		svc := core.NewInMemoryService(core.NewDefaultRuleBook(core.DefaultRulesConfig()))
		created, err := svc.Create(ctx, domain.VersionV2, domain.Input{
			Name: domain.StringPtr("Smoke Test"),
			Age:  domain.AgePtr(40),
		})
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		if created.Status != domain.StatusCandidate {
			t.Fatalf("status = %s, want candidate", created.Status)
		}
		if _, err := svc.Read(ctx, domain.VersionV2, "1"); err != nil {
			t.Fatalf("read: %v", err)
		}
		if _, err := svc.Delete(ctx, "1"); err != nil {
			t.Fatalf("delete: %v", err)
		}
		if len(svc.List(ctx)) != 0 {
			t.Fatal("list not empty after delete")
		}
	})
}
