package record

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
)

const (
	snapshotMaxTries       = 4
	snapshotInitialBackoff = 2 * time.Second
)

// Snapshot mirrors every record under prefix from src into dst, typically a
// local filesystem cache. The whole download is retried with bounded
// exponential backoff; exhaustion fails the refresh cycle that requested it.
func Snapshot(ctx context.Context, src, dst Store, prefix string) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = snapshotInitialBackoff

	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		return struct{}{}, copyAll(ctx, src, dst, prefix)
	}, backoff.WithBackOff(bo), backoff.WithMaxTries(snapshotMaxTries))
	if err != nil {
		return fmt.Errorf("snapshot of %q: %w", prefix, err)
	}

	return nil
}

func copyAll(ctx context.Context, src, dst Store, prefix string) error {
	paths, err := src.List(ctx, prefix)
	if err != nil {
		return err
	}
	for _, p := range paths {
		var v json.RawMessage
		if err := src.ReadJSON(ctx, p, &v); err != nil {
			return fmt.Errorf("reading %s: %w", p, err)
		}
		if err := dst.WriteJSON(ctx, p, v); err != nil {
			return fmt.Errorf("writing %s: %w", p, err)
		}
	}

	return nil
}
