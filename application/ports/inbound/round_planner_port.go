package inbound

import "debate-video-pipeline/domain"

// RoundPlannerPort expands a round count into the ordered speaking turns of
// the debate. Pure: same count, same plan.
type RoundPlannerPort interface {
	Plan(rounds int) ([]domain.Turn, error)
}
