package outbound

// TaskDispatcher abstracts the worker pool so services do not depend on the
// pool implementation directly.
type TaskDispatcher interface {
	Submit(task func()) error
}
