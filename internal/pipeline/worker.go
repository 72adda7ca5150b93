package pipeline

import (
	"context"
	"log/slog"
	"time"
)

// Worker processes queued extraction jobs.
type Worker struct {
	log   *slog.Logger
	stats *RunStats
}

func NewWorker(log *slog.Logger, stats *RunStats) *Worker {
	return &Worker{log: log, stats: stats}
}

// Process runs the pipeline for one job. The context only gates whether we
// begin; a run in flight is pure CPU work over in-memory data and finishes on
// its own.
func (w *Worker) Process(ctx context.Context, job *Job) {
	if ctx.Err() != nil {
		job.SetError(ctx.Err())
		return
	}

	log := w.log.With("job_id", job.ID, "document_id", job.DocumentID)
	start := time.Now()

	result, err := Extract(job.params, func(ph Phase) {
		job.SetStatus(StatusProcessing, string(ph))
	})
	elapsed := time.Since(start)
	w.stats.Record(elapsed.Milliseconds())

	if err != nil {
		log.Error("extraction failed", "error", err)
		job.SetError(err)
		return
	}

	job.SetResult(result)
	log.Info("extraction complete",
		"pages", len(result.Pages),
		"chunks", len(result.Chunks),
		"dropped", len(result.Dropped),
		"duration_ms", elapsed.Milliseconds(),
	)
}
