package channel_utils

import (
	"sync"

	"debate-video-pipeline/application/ports/outbound"
)

// MergeChannels fans several channels of the same type into one. The merged
// channel closes once every input channel has closed. Readers run on the
// shared worker pool rather than raw goroutines. The buffer holds one value
// per input so a reader is not pinned when the consumer stops reading after
// the first value, as the error-channel consumer does.
func MergeChannels[T any](workerPool outbound.TaskDispatcher, channels ...<-chan T) (<-chan T, error) {
	var wg sync.WaitGroup
	merged := make(chan T, len(channels))

	wg.Add(len(channels))
	for _, c := range channels {
		ch := c
		err := workerPool.Submit(func() {
			defer wg.Done()
			for val := range ch {
				merged <- val
			}
		})
		if err != nil {
			wg.Done()
			return nil, err
		}
	}

	err := workerPool.Submit(func() {
		wg.Wait()
		close(merged)
	})
	if err != nil {
		return nil, err
	}

	return merged, nil
}
