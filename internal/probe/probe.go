// Package probe resolves an identifier that may belong to one of several
// resource types by trying each type in order.
package probe

import (
	"context"

	"github.com/danielolaszy/ticketbridge/internal/logging"
	"github.com/danielolaszy/ticketbridge/pkg/tracker"
)

// Step tries one resource type.
type Step[T any] struct {
	// Kind names the resource type in logs, e.g. "merge_request"
	Kind string
	Call func(ctx context.Context) (T, error)
}

// First runs steps in order and returns the first success. A failing step is
// swallowed and the next one is tried; the last step's error is returned
// as-is unless it is a not-found, in which case a not-found naming id is
// returned. A wrong-order guess costs an extra round trip and a nonexistent
// id costs one failed call per step.
func First[T any](ctx context.Context, platform tracker.Platform, id string, steps ...Step[T]) (T, error) {
	var zero T
	for i, step := range steps {
		result, err := step.Call(ctx)
		if err == nil {
			return result, nil
		}

		if i == len(steps)-1 {
			if tracker.IsNotFound(err) {
				return zero, tracker.NotFound(platform, id)
			}
			return zero, err
		}

		if !tracker.IsNotFound(err) {
			logging.Warn("probe failed, trying next resource type",
				"platform", platform,
				"id", id,
				"kind", step.Kind,
				"error", err)
			continue
		}

		logging.Debug("probe missed, trying next resource type",
			"platform", platform,
			"id", id,
			"kind", step.Kind)
	}
	return zero, tracker.NotFound(platform, id)
}
