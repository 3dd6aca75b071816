package outbound

import "context"

type CollaboratorHealth struct {
	Name    string
	URL     string
	Healthy bool
	Detail  string
}

// HealthCheckerPort polls the liveness endpoints of the external
// collaborators. The pipeline consumes these surfaces, it does not implement
// them.
type HealthCheckerPort interface {
	Check(ctx context.Context) []CollaboratorHealth
}
