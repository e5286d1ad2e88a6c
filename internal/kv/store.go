// Package kv provides the key-value persistence used for the post
// collection. Values are opaque text; callers own serialization.
package kv

import "context"

// Store is a minimal text key-value store. Get reports found=false when the
// key has never been written.
type Store interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string) error
}
