package filestore

import "time"

// ObjectInfo describes a stored report.
type ObjectInfo struct {
	Key          string
	Size         int64
	ContentType  string
	ETag         string
	LastModified time.Time
}

// ListOptions filters ListObjects.
type ListOptions struct {
	// Prefix restricts results to keys starting with it, e.g. "reports/corp_party/".
	Prefix string

	// Limit caps the number of results. 0 means no cap.
	Limit int
}
