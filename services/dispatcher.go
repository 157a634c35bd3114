package services

import (
	"context"
	"fmt"
	"time"

	"student/models"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/sourcegraph/conc"
	"github.com/sourcegraph/conc/panics"
)

// RoundRunner executes one round synchronously. Orchestrator is the production implementation.
type RoundRunner interface {
	RunRound(ctx context.Context, runID string, req models.TaskRequest) (RoundResult, error)
}

// Dispatcher runs rounds in the background after the webhook has been answered.
// Runs are detached from the request context, bounded by a per-round timeout
// and tracked in a RunTracker.
type Dispatcher struct {
	runner  RoundRunner
	tracker *RunTracker
	timeout time.Duration
	logger  logrus.FieldLogger

	ctx    context.Context
	cancel context.CancelFunc
	wg     conc.WaitGroup
}

func NewDispatcher(runner RoundRunner, tracker *RunTracker, roundTimeout time.Duration, logger logrus.FieldLogger) *Dispatcher {
	ctx, cancel := context.WithCancel(context.Background())
	return &Dispatcher{
		runner:  runner,
		tracker: tracker,
		timeout: roundTimeout,
		logger:  logger,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Dispatch schedules req and returns its run id immediately
func (d *Dispatcher) Dispatch(req models.TaskRequest) string {
	runID := uuid.New().String()
	d.tracker.Start(runID, req)

	d.logger.WithFields(logrus.Fields{
		"run_id": runID,
		"task":   req.Task,
		"round":  req.Round,
	}).Info("Round dispatched")

	d.wg.Go(func() {
		d.execute(runID, req)
	})
	return runID
}

func (d *Dispatcher) execute(runID string, req models.TaskRequest) {
	log := d.logger.WithFields(logrus.Fields{"run_id": runID, "round": req.Round})

	ctx := d.ctx
	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	var catcher panics.Catcher
	var err error
	catcher.Try(func() {
		_, err = d.runner.RunRound(ctx, runID, req)
	})
	if recovered := catcher.Recovered(); recovered != nil {
		err = fmt.Errorf("round panicked: %v", recovered.Value)
		log.WithField("stack", string(recovered.Stack)).Error("Round panicked")
	}

	if err != nil {
		log.WithError(err).Error("Round failed")
		d.tracker.Update(runID, func(info *models.RunInfo) {
			info.State = models.RunStateFailed
			info.Error = err.Error()
		})
	}
}

// Wait blocks until every dispatched round has finished
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Shutdown waits for in-flight rounds until ctx expires, then cancels them
// and waits for them to unwind.
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		d.cancel()
		return nil
	case <-ctx.Done():
		d.logger.Warn("Shutdown deadline reached, cancelling in-flight rounds")
		d.cancel()
		<-done
		return ctx.Err()
	}
}
