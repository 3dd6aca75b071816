package services

import (
	"debate-video-pipeline/application/ports/inbound"
	"debate-video-pipeline/domain"
)

const (
	MinRounds = 1
	MaxRounds = 3
)

type roundPlanner struct {
	alternateOpening bool
}

// NewRoundPlanner builds the turn planner. With alternateOpening false the
// debate opens with PRO in every round; with true the opening side flips
// round to round.
func NewRoundPlanner(alternateOpening bool) inbound.RoundPlannerPort {
	return &roundPlanner{alternateOpening: alternateOpening}
}

func (p *roundPlanner) Plan(rounds int) ([]domain.Turn, error) {
	if rounds < MinRounds || rounds > MaxRounds {
		return nil, domain.Errorf(domain.ValidationKind, "rounds must be between %d and %d, got %d", MinRounds, MaxRounds, rounds)
	}

	turns := make([]domain.Turn, 0, rounds*2)
	sequence := 0
	for round := 0; round < rounds; round++ {
		opening := domain.SidePro
		if p.alternateOpening && round%2 == 1 {
			opening = domain.SideCon
		}
		for _, side := range []domain.Side{opening, opening.Opponent()} {
			turns = append(turns, domain.Turn{
				Round:    round,
				Side:     side,
				Sequence: sequence,
				Speaker:  domain.SpeakerForSide(side),
			})
			sequence++
		}
	}

	return turns, nil
}
