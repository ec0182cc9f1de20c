package blob

import (
	"context"
	"fmt"

	"numatage/internal/infra/blob/fs"
	"numatage/internal/infra/blob/memory"
	"numatage/internal/infra/blob/s3"
)

// Config selects and parameterises an artifact store.
type Config struct {
	Driver Driver    `yaml:"driver" json:"driver"`
	FSRoot string    `yaml:"fs_root" json:"fs_root"`
	S3     s3.Config `yaml:"s3" json:"s3"`
}

// Open constructs the store named by cfg.Driver. DriverNone (and an empty
// driver) yields a nil store and no error.
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Driver {
	case "", DriverNone:
		return nil, nil
	case DriverFilesystem:
		store, err := fs.New(cfg.FSRoot)
		if err != nil {
			return nil, err
		}
		return store, nil
	case DriverMemory:
		return memory.New(), nil
	case DriverS3:
		store, err := s3.New(ctx, cfg.S3)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown blob driver %q", cfg.Driver)
	}
}
