package core

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/placemap/internal/logging"
)

// DefaultImportTimeout is the maximum duration of one import run.
const DefaultImportTimeout = 2 * time.Minute

// Import log listing bounds.
const (
	DefaultImportLogLimit = 100
	MaxImportLogLimit     = 500
)

// ServiceOptions tunes a Service. Zero values select the defaults.
type ServiceOptions struct {
	MaxConcurrent int           // Parallel import runs
	MaxWait       time.Duration // How long a run waits for a slot
	Timeout       time.Duration // Deadline for one run
}

// Service runs import files through decode, validate, resolve, write and
// audit. It is safe for concurrent use.
type Service struct {
	store   Store
	auditor *Auditor
	limiter *ImportLimiter
	timeout time.Duration
}

// NewService creates a Service backed by store.
func NewService(store Store, opts ServiceOptions) *Service {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultImportTimeout
	}
	return &Service{
		store:   store,
		auditor: NewAuditor(store),
		limiter: NewImportLimiter(opts.MaxConcurrent, opts.MaxWait),
		timeout: timeout,
	}
}

// Limiter exposes the run limiter for shutdown draining.
func (s *Service) Limiter() *ImportLimiter {
	return s.limiter
}

// Kinds returns the settings of every registered import kind.
func (s *Service) Kinds() []KindInfo {
	defs := All()
	infos := make([]KindInfo, len(defs))
	for i, def := range defs {
		infos[i] = def.Info
	}
	return infos
}

// Import runs one file through the pipeline for kind.
//
// Invalid rows never stop a run; they are collected in Report.Errors.
// An empty or unreadable file is rejected with an *InputError and leaves no
// import log entry. A storage failure aborts the run with a *StorageError;
// the partial report is returned alongside it and the import log entry is
// still written with a success count of zero.
func (s *Service) Import(ctx context.Context, kind Kind, fileName string, data []byte) (report *Report, err error) {
	def, ok := Get(kind)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownKind, kind)
	}

	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.limiter.Release()

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	run := newImportRun(ctx, def.Info, fileName)
	defer func() {
		if r := recover(); r != nil {
			run.logger.Error("panic in import",
				"panic", r,
				"stack", string(debug.Stack()),
			)
			if report != nil {
				s.auditor.Record(ctx, run.logger, run.info, fileName, 0, len(report.Errors))
			}
			run.finish(PhaseAborted)
			report, err = nil, fmt.Errorf("import panicked: %v", r)
		}
	}()

	if len(data) == 0 {
		run.logger.Info("import rejected", "error", ErrMissingFile)
		run.finish(PhaseRejected)
		return nil, &InputError{Kind: kind, Err: ErrMissingFile}
	}

	rows, err := Decode(data, fileName)
	if err != nil {
		run.logger.Info("import rejected", "error", err)
		run.finish(PhaseRejected)
		return nil, &InputError{Kind: kind, Err: err}
	}
	run.enter(PhaseDecoded, "rows", len(rows))

	valid, rowErrs := validateRows(def, rows)
	report = &Report{Errors: rowErrs}
	run.enter(PhaseValidated, "valid", len(valid), "invalid", len(rowErrs))
	for _, re := range rowErrs {
		run.logger.Debug("row rejected", "row", re.Row, "violations", re.Violations)
	}

	if def.Resolve != nil {
		created, err := def.Resolve(ctx, s.store, valid)
		if err != nil {
			return s.abort(ctx, run, report, "resolve references", err)
		}
		report.CategoriesCreated = created
		categoriesAutoCreated.Add(float64(created))
		run.enter(PhaseReferencesResolved, "created", created)
	}

	written, err := def.Write(ctx, s.store, valid)
	if err != nil {
		return s.abort(ctx, run, report, "write "+def.Info.Table, err)
	}
	report.Inserted = int(written)
	report.Skipped = max(len(valid)-report.Inserted, 0)
	run.enter(PhaseWritten, "inserted", report.Inserted, "skipped", report.Skipped)

	s.auditor.Record(ctx, run.logger, def.Info, fileName, report.Inserted, len(report.Errors))
	run.enter(PhaseAudited)

	importRows.WithLabelValues(string(kind), "inserted").Add(float64(report.Inserted))
	importRows.WithLabelValues(string(kind), "skipped").Add(float64(report.Skipped))
	importRows.WithLabelValues(string(kind), "invalid").Add(float64(len(report.Errors)))

	run.finish(PhaseCompleted,
		"inserted", report.Inserted,
		"skipped", report.Skipped,
		"errors", len(report.Errors),
	)
	return report, nil
}

// abort moves a run to the aborted phase. The audit entry is still written
// with zero successes, counting the rows that failed validation.
func (s *Service) abort(ctx context.Context, run *importRun, report *Report, op string, cause error) (*Report, error) {
	report.Inserted = 0
	report.Skipped = 0
	run.logger.Error("import aborted", "op", op, "error", cause)

	s.auditor.Record(ctx, run.logger, run.info, run.fileName, 0, len(report.Errors))
	run.finish(PhaseAborted)

	return report, &StorageError{Op: op, Err: cause}
}

// ListImportLogs returns the newest import log entries first.
// A limit below 1 selects DefaultImportLogLimit; larger ones are capped at
// MaxImportLogLimit.
func (s *Service) ListImportLogs(ctx context.Context, limit int) ([]ImportLogEntry, error) {
	if limit <= 0 {
		limit = DefaultImportLogLimit
	}
	limit = min(limit, MaxImportLogLimit)
	entries, err := s.store.ListImportLogs(ctx, limit)
	if err != nil {
		return nil, &StorageError{Op: "list import logs", Err: err}
	}
	if entries == nil {
		entries = []ImportLogEntry{}
	}
	return entries, nil
}

// validateRows checks every row independently. Errors keep source order.
func validateRows(def KindDefinition, rows []RawRow) ([]any, []RowError) {
	valid := make([]any, 0, len(rows))
	rowErrs := make([]RowError, 0)
	for _, raw := range rows {
		rec, rowErr := def.Validate(raw)
		if rowErr != nil {
			rowErrs = append(rowErrs, *rowErr)
			continue
		}
		valid = append(valid, rec)
	}
	return valid, rowErrs
}

// importRun tracks the phase of a single run for logging and metrics.
type importRun struct {
	id       uuid.UUID
	info     KindInfo
	fileName string
	logger   *slog.Logger
	started  time.Time
	phase    Phase
}

func newImportRun(ctx context.Context, info KindInfo, fileName string) *importRun {
	id := uuid.New()
	logger := logging.WithFields(ctx,
		"run_id", id.String(),
		"kind", string(info.Kind),
		"file", fileName,
	)
	if ip := ClientIPFromContext(ctx); ip != "" {
		logger = logger.With("client_ip", ip)
	}
	run := &importRun{
		id:       id,
		info:     info,
		fileName: fileName,
		logger:   logger,
		started:  time.Now(),
	}
	run.enter(PhaseReceived)
	return run
}

func (r *importRun) enter(phase Phase, args ...any) {
	r.phase = phase
	r.logger.Debug("import phase", append([]any{"phase", string(phase)}, args...)...)
}

func (r *importRun) finish(phase Phase, args ...any) {
	r.phase = phase
	elapsed := time.Since(r.started)

	importRuns.WithLabelValues(string(r.info.Kind), string(phase)).Inc()
	importDuration.WithLabelValues(string(r.info.Kind), string(phase)).Observe(elapsed.Seconds())

	fields := append([]any{"phase", string(phase), "duration", elapsed}, args...)
	if phase == PhaseCompleted {
		r.logger.Info("import finished", fields...)
		return
	}
	r.logger.Warn("import finished", fields...)
}
