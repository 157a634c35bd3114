package services

import (
	"context"
	"errors"
	"fmt"

	"student/models"
	"student/utils"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// PublishReport summarises a Publish pass
type PublishReport struct {
	Created []string          `json:"created"`
	Updated []string          `json:"updated"`
	Skipped map[string]string `json:"skipped,omitempty"` // path -> reason
}

// Written returns the number of files that reached the repository
func (r PublishReport) Written() int {
	return len(r.Created) + len(r.Updated)
}

func (r *PublishReport) skip(path string, err error) {
	if r.Skipped == nil {
		r.Skipped = map[string]string{}
	}
	r.Skipped[path] = err.Error()
}

// Publisher creates the target repository, turns on hosting and writes files
// one by one. A failing file never aborts or rolls back its siblings.
type Publisher struct {
	hosting HostingClient
	logger  logrus.FieldLogger
}

func NewPublisher(hosting HostingClient, logger logrus.FieldLogger) *Publisher {
	return &Publisher{hosting: hosting, logger: logger}
}

// EnsureRepository creates repo, treating "already exists" as success
func (p *Publisher) EnsureRepository(ctx context.Context, repo string) error {
	log := p.logger.WithField("repo", repo)

	err := p.hosting.CreateRepository(ctx, repo)
	switch {
	case err == nil:
		log.Info("Created repository")
		return nil
	case errors.Is(err, ErrAlreadyExists):
		log.Info("Repository already exists")
		return nil
	default:
		log.WithError(err).Error("Failed to create repository")
		return err
	}
}

// EnsureHosting enables static hosting, treating "already enabled" as success
func (p *Publisher) EnsureHosting(ctx context.Context, repo string) error {
	log := p.logger.WithField("repo", repo)

	err := p.hosting.EnablePages(ctx, repo)
	switch {
	case err == nil:
		log.Info("Enabled static hosting")
		return nil
	case errors.Is(err, ErrAlreadyEnabled):
		log.Info("Static hosting already enabled")
		return nil
	default:
		log.WithError(err).Error("Failed to enable static hosting")
		return err
	}
}

// Publish writes every file to repo as a create or an update.
// Each write gets a child span of the span carried by ctx, if any.
func (p *Publisher) Publish(ctx context.Context, repo string, files []models.FileRecord, round int) PublishReport {
	var report PublishReport
	tracer := trace.SpanFromContext(ctx).TracerProvider().Tracer(tracerName)

	for _, file := range files {
		if err := ctx.Err(); err != nil {
			report.skip(file.Name, err)
			continue
		}

		path, ok := utils.CleanRepoPath(file.Name)
		if !ok {
			err := fmt.Errorf("%w: %q", ErrInvalidPath, file.Name)
			p.logger.WithFields(logrus.Fields{"repo": repo, "path": file.Name}).Warn("Skipping file with invalid path")
			report.skip(file.Name, err)
			continue
		}

		fileCtx, span := tracer.Start(ctx, "write_file", trace.WithAttributes(attribute.String("path", path)))
		updated, err := p.writeFile(fileCtx, repo, path, []byte(file.Content), round)
		log := p.logger.WithFields(logrus.Fields{"repo": repo, "path": path, "round": round})
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "write failed")
			span.End()
			log.WithError(err).Error("Failed to publish file")
			report.skip(path, err)
			continue
		}
		span.SetAttributes(attribute.Bool("update", updated))
		span.End()

		if updated {
			report.Updated = append(report.Updated, path)
			log.Info("Updated file")
		} else {
			report.Created = append(report.Created, path)
			log.Info("Created file")
		}
	}

	return report
}

// writeFile performs one compare-and-swap write, re-reading the version token
// and retrying once on a conflict. It reports whether the write was an update.
func (p *Publisher) writeFile(ctx context.Context, repo, path string, content []byte, round int) (bool, error) {
	var err error
	for attempt := 0; attempt < 2; attempt++ {
		sha, lookupErr := p.hosting.GetContentSHA(ctx, repo, path)
		if lookupErr != nil {
			// unknown state, attempt a create and let the write decide
			p.logger.WithFields(logrus.Fields{"repo": repo, "path": path}).WithError(lookupErr).Warn("Version token lookup failed")
			sha = ""
		}

		err = p.hosting.PutContent(ctx, repo, path, content, CommitMessage(round, path, sha != ""), sha)
		if err == nil {
			return sha != "", nil
		}
		if !errors.Is(err, ErrVersionConflict) {
			return false, err
		}
		p.logger.WithFields(logrus.Fields{"repo": repo, "path": path, "attempt": attempt + 1}).Warn("Version conflict, re-reading token")
	}
	return false, err
}

// CommitMessage names the round and whether path is added or updated
func CommitMessage(round int, path string, update bool) string {
	verb := "add"
	if update {
		verb = "update"
	}
	return fmt.Sprintf("Round %d: %s %s", round, verb, path)
}
