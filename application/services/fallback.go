package services

import (
	"context"
	"strings"

	"debate-video-pipeline/application/ports/outbound"
	"debate-video-pipeline/domain"
)

// fallbackCall is one link of an ordered provider chain. Skip marks a link
// that must be passed over without being invoked (missing credential).
type fallbackCall[T any] struct {
	Name string
	Skip bool
	Run  func(ctx context.Context) (T, error)
}

// tryFallbacks invokes the chain in order and returns the first success along
// with the name of the provider that produced it. A failing link is an
// advisory degradation, not an error; only an exhausted chain is terminal.
func tryFallbacks[T any](ctx context.Context, logger outbound.LoggerPort, stage string, calls []fallbackCall[T]) (T, string, error) {
	var zero T
	tried := make([]string, 0, len(calls))

	for _, call := range calls {
		if call.Skip {
			logger.DebugWithFields("provider not configured, skipping", map[string]interface{}{
				"stage":    stage,
				"provider": call.Name,
			})
			continue
		}
		if err := ctx.Err(); err != nil {
			return zero, "", domain.NewError(domain.DeadlineExceededKind, err)
		}

		result, err := call.Run(ctx)
		if err == nil {
			return result, call.Name, nil
		}

		tried = append(tried, call.Name)
		logger.WarnWithFields("provider degraded, advancing fallback chain", map[string]interface{}{
			"stage":    stage,
			"provider": call.Name,
			"error":    err.Error(),
		})
	}

	if len(tried) == 0 {
		return zero, "", domain.Errorf(domain.ServiceUnavailableKind, "%s: no provider configured", stage)
	}
	return zero, "", domain.Errorf(domain.ServiceUnavailableKind, "%s: all providers failed (%s)", stage, strings.Join(tried, ", "))
}
