package main

import (
	"context"

	"github.com/koustreak/nullscan/internal/config"
	"github.com/koustreak/nullscan/internal/filestore"
	"github.com/koustreak/nullscan/internal/filestore/minio"
)

// openStore validates the MINIO_* settings and connects to the bucket's
// server.
func openStore(ctx context.Context, s config.Storage) (filestore.Store, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	cfg := filestore.DefaultConfig(s.Endpoint, s.AccessKey, s.SecretKey, s.Bucket)
	cfg.UseSSL = s.UseSSL

	store, err := minio.New(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return store, nil
}
