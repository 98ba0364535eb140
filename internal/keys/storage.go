package keys

import (
	"context"
	"fmt"
	"path/filepath"

	"usergate/internal/blob"
	"usergate/internal/infra/persistence/postgres"
	"usergate/internal/infra/persistence/sqlite"
	"usergate/pkg/domain"
)

// StorageDriver identifies a key record backend.
type StorageDriver string

const (
	StorageFilesystem StorageDriver = "fs"       // JSON file (default)
	StorageMemory     StorageDriver = "memory"   // process memory (tests / ephemeral)
	StorageS3         StorageDriver = "s3"       // S3 / MinIO object
	StorageSQLite     StorageDriver = "sqlite"   // embedded sqlite file
	StoragePostgres   StorageDriver = "postgres" // PostgreSQL server
)

// DefaultRecordPath is the file used by the fs driver when none is configured.
const DefaultRecordPath = "./data/api-keys.json"

// StorageConfig selects and configures the key record backend.
type StorageConfig struct {
	Driver      StorageDriver `yaml:"driver"`
	Path        string        `yaml:"path"`
	ObjectKey   string        `yaml:"object_key"`
	S3          blob.S3Config `yaml:"s3"`
	SQLitePath  string        `yaml:"sqlite_path"`
	PostgresDSN string        `yaml:"postgres_dsn"`
}

// OpenRecordStore constructs the KeyRecordStore described by cfg. An empty
// driver selects the filesystem backend.
func OpenRecordStore(ctx context.Context, cfg StorageConfig) (domain.KeyRecordStore, error) {
	driver := cfg.Driver
	if driver == "" {
		driver = StorageFilesystem
	}
	switch driver {
	case StorageFilesystem:
		path := cfg.Path
		if path == "" {
			path = DefaultRecordPath
		}
		fs, err := blob.Open(ctx, blob.Config{Driver: blob.DriverFilesystem, FSRoot: filepath.Dir(path)})
		if err != nil {
			return nil, err
		}
		return NewBlobRecordStore(fs, filepath.Base(path)), nil
	case StorageMemory:
		mem, err := blob.Open(ctx, blob.Config{Driver: blob.DriverMemory})
		if err != nil {
			return nil, err
		}
		return NewBlobRecordStore(mem, cfg.ObjectKey), nil
	case StorageS3:
		s3, err := blob.Open(ctx, blob.Config{Driver: blob.DriverS3, S3: cfg.S3})
		if err != nil {
			return nil, err
		}
		return NewBlobRecordStore(s3, cfg.ObjectKey), nil
	case StorageSQLite:
		return sqlite.NewStore(cfg.SQLitePath)
	case StoragePostgres:
		return postgres.NewStore(ctx, cfg.PostgresDSN)
	default:
		return nil, fmt.Errorf("unknown storage driver %s", driver)
	}
}
