package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"debate-video-pipeline/application/ports/inbound"
	"debate-video-pipeline/application/ports/outbound"
	"debate-video-pipeline/channel_utils"
	"debate-video-pipeline/domain"
)

// How long the collect loop waits after a cancellation for the failing
// stage's error to arrive through the merged channel.
const stageErrorGrace = 250 * time.Millisecond

type pipelineOrchestrator struct {
	logger         outbound.LoggerPort
	workerPool     outbound.TaskDispatcher
	planner        inbound.RoundPlannerPort
	arguments      inbound.ArgumentClientPort
	voices         inbound.VoiceSynthesizerPort
	renderer       outbound.LipsyncRendererPort
	compositor     outbound.CompositorPort
	publisher      outbound.VideoPublisherPort
	recorder       outbound.TurnRecorderPort
	profiles       map[string]domain.VoiceProfile
	workDir        string
	outputDir      string
	background     string
	requestTimeout time.Duration
}

// NewPipelineOrchestrator wires the end-to-end debate pipeline. publisher and
// recorder may be nil; both are optional side channels, not stages.
func NewPipelineOrchestrator(
	logger outbound.LoggerPort,
	workerPool outbound.TaskDispatcher,
	planner inbound.RoundPlannerPort,
	arguments inbound.ArgumentClientPort,
	voices inbound.VoiceSynthesizerPort,
	renderer outbound.LipsyncRendererPort,
	compositor outbound.CompositorPort,
	publisher outbound.VideoPublisherPort,
	recorder outbound.TurnRecorderPort,
	profiles map[string]domain.VoiceProfile,
	workDir string,
	outputDir string,
	background string,
	requestTimeout time.Duration) inbound.DebatePipelinePort {
	return &pipelineOrchestrator{
		logger:         logger,
		workerPool:     workerPool,
		planner:        planner,
		arguments:      arguments,
		voices:         voices,
		renderer:       renderer,
		compositor:     compositor,
		publisher:      publisher,
		recorder:       recorder,
		profiles:       profiles,
		workDir:        workDir,
		outputDir:      outputDir,
		background:     background,
		requestTimeout: requestTimeout,
	}
}

func (o *pipelineOrchestrator) StartPipeline(ctx context.Context, params inbound.StartPipelineParams) (*inbound.DebateResult, error) {
	if strings.TrimSpace(params.Topic) == "" {
		return nil, domain.Errorf(domain.ValidationKind, "topic must not be empty")
	}
	if strings.TrimSpace(params.RenderEndpoint) == "" {
		return nil, domain.Errorf(domain.ValidationKind, "render endpoint must not be empty")
	}

	turns, err := o.planner.Plan(params.Rounds)
	if err != nil {
		return nil, err
	}

	// Each request gets its own sub-directory so concurrent requests never
	// collide on artifact paths.
	sessionDir := filepath.Join(o.workDir, params.SessionID)
	if err := os.MkdirAll(sessionDir, 0o755); err != nil {
		return nil, domain.NewError(domain.ResourceKind, err)
	}
	if err := os.MkdirAll(o.outputDir, 0o755); err != nil {
		return nil, domain.NewError(domain.ResourceKind, err)
	}

	newCtx, cancel := context.WithTimeout(ctx, o.requestTimeout)
	defer cancel()

	state := domain.NewPipelineState(turns)

	o.logger.InfoWithFields("starting debate pipeline", map[string]interface{}{
		"session": params.SessionID,
		"topic":   params.Topic,
		"rounds":  params.Rounds,
		"turns":   len(turns),
	})

	textCh, textErrCh := o.generateTexts(newCtx, cancel, params, turns, state)
	audioCh, audioErrCh := o.synthesizeAudio(newCtx, cancel, params.SessionID, sessionDir, textCh, state)
	videoCh, renderErrCh := o.renderClips(newCtx, cancel, params, sessionDir, audioCh, state)

	mergedErrCh, err := channel_utils.MergeChannels(o.workerPool, textErrCh, audioErrCh, renderErrCh)
	if err != nil {
		o.logger.Error(err, "failed to merge pipeline error channels")
		return nil, err
	}

	clips, stageErr := o.collectClips(newCtx, videoCh, mergedErrCh, state)
	if stageErr != nil {
		state.Fail(stageErr)
		o.logger.ErrorWithFields(stageErr, "debate pipeline failed", map[string]interface{}{
			"session": params.SessionID,
			"stage":   string(stageErr.Stage),
			"turn":    stageErr.Turn,
			"kind":    string(stageErr.Kind()),
		})
		return nil, stageErr
	}

	if len(clips) != len(turns) {
		stageErr := domain.NewStageError(-1, domain.StageCompositing,
			domain.Errorf(domain.ValidationKind, "expected %d clips, got %d", len(turns), len(clips)))
		state.Fail(stageErr)
		return nil, stageErr
	}
	sort.Slice(clips, func(i, j int) bool {
		return clips[i].Turn.Sequence < clips[j].Turn.Sequence
	})

	state.Advance(domain.RequestCompositing)
	composed, err := o.compositor.Compose(newCtx, outbound.ComposeRequest{
		Topic:              params.Topic,
		Segments:           clips,
		BackgroundFileName: o.background,
		WorkDir:            sessionDir,
		OutputDir:          o.outputDir,
		SessionID:          params.SessionID,
	})
	if err != nil {
		stageErr := domain.NewStageError(-1, domain.StageCompositing, err)
		state.Fail(stageErr)
		o.logger.Error(stageErr, "composition failed, artifacts retained for diagnosis")
		return nil, stageErr
	}

	result := &inbound.DebateResult{
		VideoFileName: composed.FileName,
		Duration:      composed.Duration,
	}

	if o.publisher != nil {
		published, err := o.publisher.Publish(newCtx, outbound.PublishVideoRequest{
			SessionID:     params.SessionID,
			VideoFileName: composed.FileName,
		})
		if err != nil {
			// Publishing is a side channel; the finished artifact is still
			// served locally.
			o.logger.Error(err, "failed to publish final video")
		} else {
			result.VideoKey = published.VideoKey
			result.StoreRegion = published.StoreRegion
		}
	}

	state.Advance(domain.RequestDone)
	o.logger.InfoWithFields("debate pipeline done", map[string]interface{}{
		"session":  params.SessionID,
		"video":    composed.FileName,
		"duration": composed.Duration,
	})

	return result, nil
}

// generateTexts runs the argument stage. Turns are processed strictly in
// sequence order because each turn's prompt carries the transcript of every
// turn before it.
func (o *pipelineOrchestrator) generateTexts(ctx context.Context, cancel context.CancelFunc,
	params inbound.StartPipelineParams, turns []domain.Turn, state *domain.PipelineState) (<-chan domain.Artifact, <-chan *domain.StageError) {
	out := make(chan domain.Artifact)
	errCh := make(chan *domain.StageError, 1)

	err := o.workerPool.Submit(func() {
		defer close(out)
		defer close(errCh)

		state.Advance(domain.RequestGeneratingText)
		transcript := make([]domain.TranscriptEntry, 0, len(turns))

		for _, turn := range turns {
			select {
			case <-ctx.Done():
				return
			default:
			}

			state.MarkTurnRunning(turn.Sequence, domain.StageGeneratingText)
			artifact, err := o.arguments.Generate(ctx, turn, params.Topic, transcript)
			if err != nil {
				errCh <- domain.NewStageError(turn.Sequence, domain.StageGeneratingText, err)
				cancel()
				return
			}
			state.MarkTurnDone(turn.Sequence, domain.StageGeneratingText)
			o.recordTurn(ctx, params.SessionID, artifact)

			transcript = append(transcript, domain.TranscriptEntry{Side: turn.Side, Text: artifact.Text})

			select {
			case out <- artifact:
			case <-ctx.Done():
				return
			}
		}
	})
	if err != nil {
		errCh <- domain.NewStageError(-1, domain.StageGeneratingText, err)
	}

	return out, errCh
}

// synthesizeAudio runs the TTS stage. Turns synthesize concurrently; a turn's
// audio may be produced while an earlier turn is still rendering.
func (o *pipelineOrchestrator) synthesizeAudio(ctx context.Context, cancel context.CancelFunc,
	sessionID string, sessionDir string, in <-chan domain.Artifact, state *domain.PipelineState) (<-chan domain.Artifact, <-chan *domain.StageError) {
	out := make(chan domain.Artifact)
	errCh := make(chan *domain.StageError, 1)

	err := o.workerPool.Submit(func() {
		defer close(out)
		defer close(errCh)

		var wg sync.WaitGroup
		for textArtifact := range in {
			select {
			case <-ctx.Done():
				return
			default:
			}

			artifact := textArtifact
			state.Advance(domain.RequestSynthesizingAudio)
			state.MarkTurnRunning(artifact.Turn.Sequence, domain.StageSynthesizingAudio)

			wg.Add(1)
			err := o.workerPool.Submit(func() {
				defer wg.Done()
				audio, err := o.voices.Synthesize(ctx, artifact.Turn, artifact.Text, sessionDir)
				if err != nil {
					select {
					case errCh <- domain.NewStageError(artifact.Turn.Sequence, domain.StageSynthesizingAudio, err):
						cancel()
					case <-ctx.Done():
					}
					return
				}
				state.MarkTurnDone(audio.Turn.Sequence, domain.StageSynthesizingAudio)
				o.recordTurn(ctx, sessionID, audio)
				select {
				case out <- audio:
				case <-ctx.Done():
				}
			})
			if err != nil {
				wg.Done()
				errCh <- domain.NewStageError(artifact.Turn.Sequence, domain.StageSynthesizingAudio, err)
				cancel()
				return
			}
		}
		wg.Wait()
	})
	if err != nil {
		errCh <- domain.NewStageError(-1, domain.StageSynthesizingAudio, err)
	}

	return out, errCh
}

// renderClips runs the remote lip-sync stage. The remote endpoint is a single
// GPU resource, so jobs are submitted one at a time in arrival order.
func (o *pipelineOrchestrator) renderClips(ctx context.Context, cancel context.CancelFunc,
	params inbound.StartPipelineParams, sessionDir string, in <-chan domain.Artifact, state *domain.PipelineState) (<-chan domain.Artifact, <-chan *domain.StageError) {
	out := make(chan domain.Artifact)
	errCh := make(chan *domain.StageError, 1)

	err := o.workerPool.Submit(func() {
		defer close(out)
		defer close(errCh)

		for audio := range in {
			select {
			case <-ctx.Done():
				return
			default:
			}

			profile, ok := o.profiles[audio.Turn.Speaker]
			if !ok {
				errCh <- domain.NewStageError(audio.Turn.Sequence, domain.StageRendering,
					domain.Errorf(domain.ValidationKind, "no voice profile for speaker %s", audio.Turn.Speaker))
				cancel()
				return
			}

			state.Advance(domain.RequestRenderingVideo)
			state.MarkTurnRunning(audio.Turn.Sequence, domain.StageRendering)

			rendered, err := o.renderer.Render(ctx, outbound.RenderRequest{
				Endpoint:      params.RenderEndpoint,
				ImageFileName: profile.ImageFileName,
				AudioFileName: audio.FileName,
				AudioDuration: audio.Duration,
				OutputDir:     sessionDir,
				BaseName:      fmt.Sprintf("turn_%d", audio.Turn.Sequence),
			})
			if err != nil {
				errCh <- domain.NewStageError(audio.Turn.Sequence, domain.StageRendering, err)
				cancel()
				return
			}

			clip := domain.Artifact{
				Kind:     domain.VideoArtifact,
				Turn:     audio.Turn,
				FileName: rendered.FileName,
				Duration: rendered.Duration,
			}
			state.MarkTurnDone(clip.Turn.Sequence, domain.StageRendering)
			o.recordTurn(ctx, params.SessionID, clip)

			select {
			case out <- clip:
			case <-ctx.Done():
				return
			}
		}
	})
	if err != nil {
		errCh <- domain.NewStageError(-1, domain.StageRendering, err)
	}

	return out, errCh
}

func (o *pipelineOrchestrator) collectClips(ctx context.Context, videoCh <-chan domain.Artifact,
	errCh <-chan *domain.StageError, state *domain.PipelineState) ([]domain.Artifact, *domain.StageError) {
	clips := make([]domain.Artifact, 0)
	for {
		select {
		case stageErr, ok := <-errCh:
			if !ok {
				errCh = nil
				continue
			}
			return nil, stageErr
		case <-ctx.Done():
			// A failing stage cancels the context right after reporting, and
			// the merge reader may not have forwarded the error yet. Wait a
			// grace window for it so the stage's error wins over the bare
			// cancellation.
			grace := time.NewTimer(stageErrorGrace)
			select {
			case stageErr, ok := <-errCh:
				grace.Stop()
				if ok && stageErr != nil {
					return nil, stageErr
				}
			case <-grace.C:
			}
			return nil, o.deadlineError(ctx, state)
		case clip, ok := <-videoCh:
			if !ok {
				return clips, nil
			}
			clips = append(clips, clip)
		}
	}
}

// deadlineError shapes a context expiry into a stage error pointing at
// whatever work was still outstanding when the request deadline passed.
func (o *pipelineOrchestrator) deadlineError(ctx context.Context, state *domain.PipelineState) *domain.StageError {
	turn, stage := -1, domain.StageRendering
	if seq, s, ok := state.FirstRunning(); ok {
		turn, stage = seq, s
	}
	kind := domain.DeadlineExceededKind
	if ctx.Err() != context.DeadlineExceeded {
		kind = domain.InternalKind
	}
	return domain.NewStageError(turn, stage, domain.NewError(kind, ctx.Err()))
}

// recordTurn writes the artifact's metadata to the diagnostic store when one
// is configured. Failures are advisory; the pipeline never fails on them.
func (o *pipelineOrchestrator) recordTurn(ctx context.Context, sessionID string, artifact domain.Artifact) {
	if o.recorder == nil {
		return
	}
	err := o.recorder.Record(ctx, outbound.TurnRecord{
		SessionID: sessionID,
		Sequence:  artifact.Turn.Sequence,
		Stage:     string(artifact.Kind),
		Status:    string(domain.TurnDone),
		FileName:  artifact.FileName,
		Duration:  artifact.Duration,
	})
	if err != nil {
		o.logger.WarnWithFields("failed to record turn artifact", map[string]interface{}{
			"session":  sessionID,
			"sequence": artifact.Turn.Sequence,
			"error":    err.Error(),
		})
	}
}
