package extraction

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/google/uuid"

	"github.com/2025-GDGoC-KRJP-Hackaton/Team-8/internal/common/errors"
	"github.com/2025-GDGoC-KRJP-Hackaton/Team-8/internal/common/logger"
	"github.com/2025-GDGoC-KRJP-Hackaton/Team-8/internal/common/metrics"
	"github.com/2025-GDGoC-KRJP-Hackaton/Team-8/internal/common/observability"
	"github.com/2025-GDGoC-KRJP-Hackaton/Team-8/internal/genai"
	"github.com/2025-GDGoC-KRJP-Hackaton/Team-8/internal/models"
	"github.com/2025-GDGoC-KRJP-Hackaton/Team-8/internal/prompts"
)

// State tracks how far a request has progressed through the pipeline.
type State string

const (
	StateReceived   State = "RECEIVED"
	StateComposed   State = "COMPOSED"
	StateGenerated  State = "GENERATED"
	StateNormalized State = "NORMALIZED"
	StateValidated  State = "VALIDATED"
	StateCompleted  State = "COMPLETED"
	StateFailed     State = "FAILED"
)

// Dispatcher runs the sequential extraction pipeline. Each request advances
// strictly Received -> Composed -> Generated -> Normalized -> Validated ->
// Completed; the first stage failure aborts the run and is converted to a
// uniform error envelope at this boundary.
type Dispatcher struct {
	composer  *prompts.Composer
	generator genai.Generator
	logger    logger.Logger
	obs       *observability.Observability
}

func NewDispatcher(composer *prompts.Composer, generator genai.Generator, log logger.Logger, obs *observability.Observability) *Dispatcher {
	return &Dispatcher{
		composer:  composer,
		generator: generator,
		logger:    log.WithFields(map[string]interface{}{"component": "dispatcher"}),
		obs:       obs,
	}
}

// Outcome is the terminal record of one dispatched request.
type Outcome struct {
	RequestID string
	State     State
	Result    *models.ExtractionResult
	Envelope  *errors.ErrorEnvelope
}

// Dispatch runs one request through the pipeline. The context bounds the
// whole run; cancellation between stages aborts before the next stage starts.
func (d *Dispatcher) Dispatch(ctx context.Context, req *models.ExtractionRequest) *Outcome {
	requestID := uuid.New().String()
	state := StateReceived
	started := time.Now()

	metrics.RequestsInFlight.Inc()
	defer metrics.RequestsInFlight.Dec()
	metrics.ExtractionRequests.WithLabelValues(string(req.Kind)).Inc()

	log := d.logger.WithFields(map[string]interface{}{
		"requestId":  requestID,
		"promptKind": string(req.Kind),
	})
	log.Info("request received", map[string]interface{}{"messages": len(req.Messages)})

	fail := func(stage errors.Stage, err error, raw, normalized string) *Outcome {
		pipeErr := errors.NewPipelineError(stage, err)
		pipeErr.RawText = raw
		pipeErr.NormalizedText = normalized

		metrics.ExtractionFailures.WithLabelValues(string(stage), string(pipeErr.Err.Code)).Inc()
		d.obs.RecordRequest(ctx, string(req.Kind), "failed")
		d.obs.RecordDuration(ctx, time.Since(started), string(req.Kind), "failed")

		log.Error("pipeline stage failed", map[string]interface{}{
			"stage":     string(stage),
			"errorCode": string(pipeErr.Err.Code),
			"error":     pipeErr.Err.Message,
		})

		return &Outcome{
			RequestID: requestID,
			State:     StateFailed,
			Envelope:  errors.ToEnvelope(requestID, pipeErr),
		}
	}

	// Composition
	_, endStage := d.obs.StartStage(ctx, "composition")
	stageStart := time.Now()
	composed, err := d.composer.Compose(req)
	endStage()
	metrics.StageDuration.WithLabelValues("composition").Observe(time.Since(stageStart).Seconds())
	if err != nil {
		return fail(errors.StageComposition, err, "", "")
	}
	state = StateComposed
	log.Debug("prompt composed", map[string]interface{}{"state": string(state)})

	if ctxErr := ctx.Err(); ctxErr != nil {
		// A deadline that expired before generation is a timeout; an explicit
		// cancellation is not.
		cause := errors.NewGenerationUnavailableError(ctxErr)
		if stderrors.Is(ctxErr, context.DeadlineExceeded) {
			cause = errors.NewGenerationTimeoutError()
		}
		return fail(errors.StageGeneration, cause, "", "")
	}

	// Generation
	genCtx, endStage := d.obs.StartStage(ctx, "generation")
	stageStart = time.Now()
	raw, err := d.generator.Generate(genCtx, composed.SystemInstruction, composed.Prompt)
	endStage()
	metrics.StageDuration.WithLabelValues("generation").Observe(time.Since(stageStart).Seconds())
	if err != nil {
		return fail(errors.StageGeneration, err, "", "")
	}
	state = StateGenerated
	log.Debug("text generated", map[string]interface{}{"state": string(state), "chars": len(raw)})

	// Normalization never fails; it still gets a span for latency attribution.
	_, endStage = d.obs.StartStage(ctx, "normalization")
	stageStart = time.Now()
	normalized := Normalize(raw)
	endStage()
	metrics.StageDuration.WithLabelValues("normalization").Observe(time.Since(stageStart).Seconds())
	state = StateNormalized

	// Validation
	_, endStage = d.obs.StartStage(ctx, "validation")
	stageStart = time.Now()
	result, err := Validate(normalized, req.Kind)
	endStage()
	metrics.StageDuration.WithLabelValues("validation").Observe(time.Since(stageStart).Seconds())
	if err != nil {
		return fail(errors.StageValidation, err, raw, normalized)
	}
	state = StateValidated
	log.Debug("document validated", map[string]interface{}{"state": string(state)})

	state = StateCompleted
	d.obs.RecordRequest(ctx, string(req.Kind), "completed")
	d.obs.RecordDuration(ctx, time.Since(started), string(req.Kind), "completed")

	log.Info("request completed", map[string]interface{}{
		"state":    string(state),
		"duration": time.Since(started).String(),
	})

	return &Outcome{
		RequestID: requestID,
		State:     state,
		Result:    result,
	}
}
