// Package runner drives one execution of a plan through its states:
// parsed, validated, backed up, safe and risky operations executed,
// logged and done. A plan with blocking issues ends rejected instead,
// before anything is backed up or mutated.
package runner

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"path/filepath"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/pders01/extraction-plan/internal/backup"
	"github.com/pders01/extraction-plan/internal/execlog"
	"github.com/pders01/extraction-plan/internal/executor"
	"github.com/pders01/extraction-plan/internal/history"
	"github.com/pders01/extraction-plan/internal/lock"
	"github.com/pders01/extraction-plan/internal/models"
	"github.com/pders01/extraction-plan/internal/plan"
)

// Recorder stores finished runs
type Recorder interface {
	RecordRun(ctx context.Context, run history.Run) error
}

// Options configures a Runner. Relative directories are resolved against
// Workdir.
type Options struct {
	Workdir   string
	BackupDir string
	LogsDir   string
	// Out mirrors every log line as it is recorded
	Out      io.Writer
	Recorder Recorder
	// Lock serializes runs sharing BackupDir
	Lock bool
	Now  func() time.Time
}

// Runner executes plans
type Runner struct {
	opts    Options
	entropy io.Reader
}

// New creates a runner
func New(opts Options) *Runner {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Runner{
		opts:    opts,
		entropy: ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0),
	}
}

func (r *Runner) dir(path string) string {
	return plan.Resolve(r.opts.Workdir, path)
}

// DryRun parses and validates the plan without writing anything
func (r *Runner) DryRun(planPath string) (*models.ExecutionResult, error) {
	log := execlog.New(r.opts.Out).WithClock(r.opts.Now)

	p, res, err := r.parse(planPath, r.opts.Now(), log)
	if err != nil {
		return nil, err
	}

	res.Issues = plan.Validate(p, r.opts.Workdir, log)
	res.State = models.StateValidated
	if len(res.Issues) > 0 {
		res.State = models.StateRejected
		for _, issue := range res.Issues {
			log.Errorf("%s", issue)
		}
		return res, nil
	}
	log.Infof("Dry run: %d safe and %d risky operation(s) would execute", res.SafeTotal, len(p.ApprovedRisky()))
	return res, nil
}

// Run executes the plan at planPath. A missing or unparsable plan is
// returned as an error and a rejected plan ends the run; neither touches
// the filesystem. Once validation passes, the execution-log artifact is
// always written, also when the lock is taken or a backup fault aborts
// the run.
func (r *Runner) Run(ctx context.Context, planPath string) (res *models.ExecutionResult, err error) {
	started := r.opts.Now()
	log := execlog.New(r.opts.Out).WithClock(r.opts.Now)

	p, res, err := r.parse(planPath, started, log)
	if err != nil {
		return nil, err
	}

	res.Issues = plan.Validate(p, r.opts.Workdir, log)
	res.State = models.StateValidated
	if len(res.Issues) > 0 {
		res.State = models.StateRejected
		log.Errorf("Execution blocked by %d issue(s):", len(res.Issues))
		for _, issue := range res.Issues {
			log.Errorf("  - %s", issue)
		}
		return res, nil
	}
	log.Infof("Validation passed")

	// The run lock, once taken, is held until the log is written
	var unlock func() error
	defer func() {
		if ferr := r.finish(ctx, res, log, started, err); ferr != nil && err == nil {
			err = ferr
		}
		if unlock != nil {
			unlock()
		}
	}()

	if r.opts.Lock {
		u, lerr := lock.InDir(r.dir(r.opts.BackupDir))
		if lerr != nil {
			log.Errorf("Could not acquire run lock: %v", lerr)
			return res, lerr
		}
		unlock = u
	}

	safe := models.InOrder(p.SafeOperations)
	risky := models.InOrder(p.ApprovedRisky())

	mgr := backup.NewManager(r.opts.Workdir, r.opts.BackupDir, log)
	set, err := mgr.Snapshot(backup.Run{ID: res.RunID, ExecutionID: res.ExecutionID, Started: started}, append(append([]models.Operation{}, safe...), risky...))
	if err != nil {
		log.Errorf("Backup failed, no operation was executed: %v", err)
		return res, fmt.Errorf("backup failed: %w", err)
	}
	res.BackupDirectory = set.Root
	res.RollbackScript = set.RollbackScript
	res.State = models.StateBackedUp

	ex := executor.New(r.opts.Workdir, log)

	log.Infof("Executing %d safe operation(s)", len(safe))
	for _, op := range safe {
		ok := ex.Execute(op)
		res.Outcomes = append(res.Outcomes, outcome(op, ok))
		if ok {
			res.SafeExecuted++
		}
	}
	res.State = models.StateSafeExecuted

	log.Infof("Executing %d approved risky operation(s)", len(risky))
	for _, op := range risky {
		ok := ex.Execute(op)
		res.Outcomes = append(res.Outcomes, outcome(op, ok))
		if ok {
			res.RiskyExecuted++
		}
	}
	res.State = models.StateRiskyExecuted

	return res, nil
}

func (r *Runner) parse(planPath string, started time.Time, log *execlog.Log) (*models.Plan, *models.ExecutionResult, error) {
	p, err := plan.ParseFile(planPath)
	if err != nil {
		return nil, nil, err
	}

	base := filepath.Base(planPath)
	res := &models.ExecutionResult{
		RunID:       ulid.MustNew(ulid.Timestamp(started), r.entropy).String(),
		ExecutionID: models.ExecutionID(strings.TrimSuffix(base, filepath.Ext(base)), started),
		PlanFile:    planPath,
		State:       models.StateParsed,
		SafeTotal:   len(p.SafeOperations),
		RiskyTotal:  len(p.RiskyOperations),
	}
	log.Infof("Parsed plan %s: %d safe, %d risky operation(s)", planPath, res.SafeTotal, res.RiskyTotal)
	return p, res, nil
}

// finish writes the execution-log artifact and records the run. It runs
// on every exit path once validation has passed.
func (r *Runner) finish(ctx context.Context, res *models.ExecutionResult, log *execlog.Log, started time.Time, runErr error) error {
	status := "COMPLETED"
	switch {
	case runErr != nil:
		status = "FAILED"
	case res.SafeExecuted+res.RiskyExecuted < len(res.Outcomes):
		status = "COMPLETED WITH ERRORS"
	}

	finished := r.opts.Now()
	path := filepath.Join(r.dir(r.opts.LogsDir), models.ExecutionLogName(res.ExecutionID))
	log.Infof("Execution finished: %s", status)

	report := execlog.Report{
		PlanFile:        res.PlanFile,
		ExecutionID:     res.ExecutionID,
		BackupDirectory: res.BackupDirectory,
		Status:          status,
		FinishedAt:      finished,
		SafeTotal:       res.SafeTotal,
		SafeSucceeded:   res.SafeExecuted,
		RiskyTotal:      res.RiskyTotal,
		RiskySucceeded:  res.RiskyExecuted,
		Issues:          res.Issues,
	}
	if err := report.Save(path, log.Entries()); err != nil {
		return err
	}
	res.LogPath = path
	if res.State == models.StateRiskyExecuted {
		res.State = models.StateLogged
	}

	if r.opts.Recorder != nil {
		run := history.FromResult(res, started, finished)
		if run.State == models.StateLogged {
			run.State = models.StateDone
		}
		if err := r.opts.Recorder.RecordRun(ctx, run); err != nil {
			log.Warnf("Failed to record run history: %v", err)
		}
	}

	if res.State == models.StateLogged {
		res.State = models.StateDone
	}
	return nil
}

func outcome(op models.Operation, ok bool) models.OperationOutcome {
	return models.OperationOutcome{
		Number:  op.Number,
		Kind:    op.Kind,
		Target:  op.TargetPath(),
		Safe:    op.IsSafe(),
		Success: ok,
	}
}
