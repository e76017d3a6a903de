package jobs

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/locvowork/sheetexport/internal/logger"
	"github.com/locvowork/sheetexport/internal/service"
	"github.com/locvowork/sheetexport/pkg/dataflow"
)

// Outcome reports the result of one job.
type Outcome struct {
	Job      string        `json:"job"`
	Output   string        `json:"output"`
	Bytes    int           `json:"bytes"`
	Duration time.Duration `json:"duration"`
	Err      error         `json:"-"`
}

// Runner executes jobs concurrently. Jobs share nothing but the export
// service, so one failing job does not affect the others.
type Runner struct {
	svc     *service.ExportService
	workers int
}

func NewRunner(svc *service.ExportService, workers int) *Runner {
	if workers < 1 {
		workers = 1
	}
	return &Runner{svc: svc, workers: workers}
}

type indexedJob struct {
	index int
	job   Job
}

type indexedOutcome struct {
	index   int
	outcome Outcome
}

// Run executes every job and returns the outcomes in job order.
func (r *Runner) Run(ctx context.Context, jobs []Job) ([]Outcome, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	items := make([]indexedJob, len(jobs))
	for i, job := range jobs {
		items[i] = indexedJob{index: i, job: job}
	}

	results := dataflow.Map(ctx, dataflow.From(ctx, items...), func(ctx context.Context, item indexedJob) (indexedOutcome, error) {
		return indexedOutcome{index: item.index, outcome: r.runJob(ctx, item.job)}, nil
	}, dataflow.WithWorkers(r.workers), dataflow.WithBufferSize(len(items)))

	collected, err := dataflow.Collect(ctx, results)
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		return nil, err
	}
	sort.Slice(collected, func(i, j int) bool { return collected[i].index < collected[j].index })

	outcomes := make([]Outcome, len(collected))
	for i, c := range collected {
		outcomes[i] = c.outcome
	}
	return outcomes, nil
}

func (r *Runner) runJob(ctx context.Context, job Job) Outcome {
	start := time.Now()
	ctx = logger.WithLogger(ctx, map[string]interface{}{"job": job.Name})
	out := Outcome{Job: job.Name, Output: job.Output}

	res, err := r.svc.Export(ctx, job.ExportRequest)
	if err == nil {
		err = writeFile(job.Output, res.Data)
	}
	out.Duration = time.Since(start)
	if err != nil {
		out.Err = err
		logger.ErrorLog(ctx, "job failed", err)
		return out
	}

	out.Bytes = len(res.Data)
	logger.InfoLog(ctx, "job finished: wrote %s in %s", job.Output, out.Duration)
	return out
}

// writeFile writes through a temporary file so a failed write never leaves
// a truncated export behind.
func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// Failed counts the outcomes that carry an error.
func Failed(outcomes []Outcome) int {
	n := 0
	for _, o := range outcomes {
		if o.Err != nil {
			n++
		}
	}
	return n
}
