package typesupport

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// SerializeBatch serializes objs concurrently, preserving order. The first
// failure cancels the remaining work and is returned; limit <= 0 uses
// GOMAXPROCS workers.
func SerializeBatch[P any](ctx context.Context, ts *MessageTypeSupport[P], objs []P, limit int) ([][]byte, error) {
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}
	out := make([][]byte, len(objs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i := range objs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			buf, err := ts.Serialize(objs[i])
			if err != nil {
				return err
			}
			out[i] = buf
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
