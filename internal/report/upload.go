package report

import (
	"bytes"
	"context"
	"path"
	"strings"
	"time"

	"github.com/koustreak/nullscan/internal/errs"
	"github.com/koustreak/nullscan/internal/filestore"
)

// Key is the object key the report is stored under:
// reports/<table>/<run-id>.json, where table is the sampled table.
func (r *Report) Key() string {
	table := "unknown"
	if len(r.Stages) > 0 {
		table = strings.ToLower(r.Stages[0].Table)
	}
	return path.Join("reports", table, r.RunID.String()+".json")
}

// Upload stores the JSON report in bucket, creating the bucket if needed,
// then stats the object and returns the metadata the store reports.
func (r *Report) Upload(ctx context.Context, store filestore.Store, bucket string) (*filestore.ObjectInfo, error) {
	var buf bytes.Buffer
	if err := r.WriteJSON(&buf); err != nil {
		return nil, err
	}
	size := int64(buf.Len())

	if err := store.EnsureBucket(ctx, bucket); err != nil {
		return nil, err
	}
	if _, err := store.PutObject(ctx, bucket, r.Key(), &buf, size, "application/json"); err != nil {
		return nil, err
	}

	info, err := store.StatObject(ctx, bucket, r.Key())
	if err != nil {
		return nil, err
	}
	if info.Size != size {
		return nil, errs.Newf(errs.ErrKindConnectionFailed,
			"stored report %s/%s has %d bytes, wrote %d", bucket, info.Key, info.Size, size)
	}
	return info, nil
}

// ShareURL uploads the report and returns a download link valid for ttl.
func (r *Report) ShareURL(ctx context.Context, store filestore.Store, bucket string, ttl time.Duration) (string, error) {
	info, err := r.Upload(ctx, store, bucket)
	if err != nil {
		return "", err
	}
	return store.PresignGetURL(ctx, bucket, info.Key, ttl)
}
