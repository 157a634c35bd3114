package services

import (
	"context"
	"fmt"
	"strings"

	"student/models"
	"student/utils"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "student/services"

// RunObserver receives progress of a run. RunTracker is the production implementation.
type RunObserver interface {
	Update(id string, mutate func(*models.RunInfo))
}

type noopObserver struct{}

func (noopObserver) Update(string, func(*models.RunInfo)) {}

// RoundResult is the outcome of one round
type RoundResult struct {
	Repo     string        `json:"repo"`
	Report   PublishReport `json:"report"`
	Notified bool          `json:"notified"`
}

// Orchestrator sequences identity, generation, attachments, publishing and the callback
type Orchestrator struct {
	generator ContentGenerator
	publisher *Publisher
	notifier  CompletionNotifier
	observer  RunObserver
	tracer    trace.Tracer
	logger    logrus.FieldLogger
}

// NewOrchestrator wires the round pipeline. A nil observer discards progress.
// Spans go to the global TracerProvider, a no-op unless one is installed.
func NewOrchestrator(generator ContentGenerator, publisher *Publisher, notifier CompletionNotifier, observer RunObserver, logger logrus.FieldLogger) *Orchestrator {
	if observer == nil {
		observer = noopObserver{}
	}
	return &Orchestrator{
		generator: generator,
		publisher: publisher,
		notifier:  notifier,
		observer:  observer,
		tracer:    otel.Tracer(tracerName),
		logger:    logger,
	}
}

// SetTracerProvider replaces the provider rounds are traced with
func (o *Orchestrator) SetTracerProvider(tp trace.TracerProvider) {
	o.tracer = tp.Tracer(tracerName)
}

// RunRound executes round 1 (create) or round 2 (revise) for req.
// Round 1 also ensures the repository and static hosting exist. Per-file
// publish failures never abort the round: the callback is sent whenever an
// evaluation URL is present, and a failed callback is logged only.
func (o *Orchestrator) RunRound(ctx context.Context, runID string, req models.TaskRequest) (RoundResult, error) {
	if !req.IsActionable() {
		return RoundResult{}, fmt.Errorf("round %d is not actionable", req.Round)
	}

	repo := utils.DeriveRepoName(req.Task, req.Secret)
	result := RoundResult{Repo: repo}
	log := o.logger.WithFields(logrus.Fields{"run_id": runID, "repo": repo, "round": req.Round})

	ctx, span := o.tracer.Start(ctx, "round", trace.WithAttributes(
		attribute.String("run_id", runID),
		attribute.String("repo", repo),
		attribute.Int("round", req.Round),
	))
	defer span.End()

	o.observer.Update(runID, func(info *models.RunInfo) {
		info.Repo = repo
	})

	o.transition(runID, models.RunStateGenerating)
	log.Info("Generating files")
	genCtx, genSpan := o.tracer.Start(ctx, "generating")
	files := o.generator.Generate(genCtx, req.Brief, req.Checks)
	files = mergeAttachments(files, MaterializeAttachments(req.Attachments, log), log)
	genSpan.SetAttributes(attribute.Int("files", len(files)))
	genSpan.End()
	log.WithField("files", len(files)).Info("File set ready")

	o.transition(runID, models.RunStatePublishing)
	pubCtx, pubSpan := o.tracer.Start(ctx, "publishing")
	if req.Round == models.RoundCreate {
		// failures are logged by the publisher and the writes below surface them
		_ = o.publisher.EnsureRepository(pubCtx, repo)
		_ = o.publisher.EnsureHosting(pubCtx, repo)
	}

	result.Report = o.publisher.Publish(pubCtx, repo, files, req.Round)
	pubSpan.SetAttributes(
		attribute.Int("created", len(result.Report.Created)),
		attribute.Int("updated", len(result.Report.Updated)),
		attribute.Int("skipped", len(result.Report.Skipped)),
	)
	pubSpan.End()

	o.observer.Update(runID, func(info *models.RunInfo) {
		info.FilesCreated = len(result.Report.Created)
		info.FilesUpdated = len(result.Report.Updated)
		info.FilesSkipped = len(result.Report.Skipped)
	})
	reportLog := log.WithFields(logrus.Fields{
		"created": len(result.Report.Created),
		"updated": len(result.Report.Updated),
		"skipped": len(result.Report.Skipped),
	})
	if result.Report.Written() == 0 {
		reportLog.Error("Publish finished without writing any file")
	} else {
		reportLog.Info("Publish finished")
	}

	if strings.TrimSpace(req.EvaluationURL) == "" {
		log.Info("No evaluation URL, skipping callback")
	} else {
		o.transition(runID, models.RunStateNotifying)
		notifyCtx, notifySpan := o.tracer.Start(ctx, "notifying")
		payload := models.NewCompletionPayload(req.Round, repo, req.Nonce)
		if err := o.notifier.Notify(notifyCtx, req.EvaluationURL, payload); err != nil {
			notifySpan.RecordError(err)
			notifySpan.SetStatus(codes.Error, "callback failed")
			log.WithError(err).Error("Completion callback failed")
		} else {
			result.Notified = true
		}
		notifySpan.End()
	}

	o.observer.Update(runID, func(info *models.RunInfo) {
		info.Notified = result.Notified
		info.State = models.RunStateDone
	})
	log.Info("Round complete")
	return result, nil
}

func (o *Orchestrator) transition(runID string, state models.RunState) {
	o.observer.Update(runID, func(info *models.RunInfo) {
		info.State = state
	})
}

// mergeAttachments appends attachments, letting them replace generated files
// of the same path. The generated README is never replaced.
func mergeAttachments(files, attachments []models.FileRecord, logger logrus.FieldLogger) []models.FileRecord {
	if len(attachments) == 0 {
		return files
	}

	index := make(map[string]int, len(files))
	for i, f := range files {
		if p, ok := utils.CleanRepoPath(f.Name); ok {
			index[p] = i
		}
	}

	merged := append([]models.FileRecord(nil), files...)
	for _, att := range attachments {
		p, ok := utils.CleanRepoPath(att.Name)
		if ok && utils.IsReadme(p) {
			logger.WithField("attachment", att.Name).Info("Skipping attachment that would replace the generated README")
			continue
		}
		if i, exists := index[p]; ok && exists {
			logger.WithField("attachment", att.Name).Info("Attachment replaces generated file")
			merged[i] = att
			continue
		}
		merged = append(merged, att)
		if ok {
			index[p] = len(merged) - 1
		}
	}
	return merged
}
