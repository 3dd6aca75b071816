package adapters

import (
	"context"
	"hash/fnv"
	"strings"

	"debate-video-pipeline/application/ports/outbound"
	"debate-video-pipeline/domain"
)

var proTemplates = []string{
	"The transformation where %TOPIC% represents an inevitable technological evolution that will ultimately benefit society. Historical evidence from the Industrial Revolution shows that while automation initially displaces workers, it creates new industries and higher-skilled employment opportunities. Early adopters consistently demonstrate how such change reduces costs while generating entirely new categories of work.",
	"Economic data strongly supports that %TOPIC% will drive unprecedented productivity gains. Independent research indicates this transition could contribute trillions to global GDP through increased efficiency and innovation. Countries embracing it early are already seeing reduced risk, improved quality, and new service sectors emerging around human creativity.",
	"The capabilities now exist to make %TOPIC% a reality within this timeframe. Recent advances have reached human-level performance across the relevant tasks. Organizations that resist this transition will become uncompetitive, while early adopters create safer, more fulfilling environments focused on uniquely human skills.",
}

var conTemplates = []string{
	"The premise that %TOPIC% fundamentally misunderstands the complexity of the systems involved and the limitations of current technology. While the optimistic case sounds appealing, most real scenarios require judgment, context, and accountability that remain far beyond what is being proposed.",
	"Historical precedent suggests that %TOPIC% overestimates the speed of adoption and underestimates human adaptability. Previous transitions of this scale took generations, allowing gradual adjustment. Current institutions are already preparing for collaboration rather than replacement.",
	"The assumption that %TOPIC% ignores critical economic and social factors that will slow this transition. Regulatory frameworks, ethical concerns, and the high cost of implementation create natural barriers, and people consistently prefer human judgment in the areas that matter most.",
}

type templateArgumentGenerator struct {
	logger outbound.LoggerPort
}

// NewTemplateArgumentGenerator builds the local deterministic fallback. It
// never needs the network and never produces empty text, so the argument
// stage cannot fail while this generator is reachable.
func NewTemplateArgumentGenerator(logger outbound.LoggerPort) outbound.ArgumentGeneratorPort {
	return &templateArgumentGenerator{logger: logger}
}

func (g *templateArgumentGenerator) Name() string {
	return "template"
}

func (g *templateArgumentGenerator) Generate(_ context.Context, req outbound.GenerateArgumentRequest) (string, error) {
	templates := proTemplates
	if req.Side == domain.SideCon {
		templates = conTemplates
	}

	// Rotate by how often this side has already spoken so multi-round
	// debates do not repeat the same argument. With no transcript the topic
	// hash keeps single-round debates deterministic.
	index := g.topicIndex(req.Topic, len(templates))
	if len(req.Transcript) > 0 {
		spoken := 0
		for _, entry := range req.Transcript {
			if entry.Side == req.Side {
				spoken++
			}
		}
		index = spoken % len(templates)
	}

	text := strings.ReplaceAll(templates[index], "%TOPIC%", strings.ToLower(req.Topic))

	g.logger.DebugWithFields("using template argument", map[string]interface{}{
		"side":     req.Side,
		"round":    req.Round,
		"template": index,
	})

	return text, nil
}

func (g *templateArgumentGenerator) topicIndex(topic string, buckets int) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(strings.ToLower(topic)))
	return int(h.Sum32() % uint32(buckets))
}
