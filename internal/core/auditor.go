package core

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// DefaultAuditTimeout bounds a single import log write.
const DefaultAuditTimeout = 5 * time.Second

// Auditor appends one import log entry per finished run.
// Write failures are logged and counted but never returned: the import's
// data outcome is already settled by the time the entry is written.
type Auditor struct {
	store   Store
	now     func() time.Time
	timeout time.Duration
}

// NewAuditor creates an Auditor writing to store.
func NewAuditor(store Store) *Auditor {
	return &Auditor{
		store:   store,
		now:     time.Now,
		timeout: DefaultAuditTimeout,
	}
}

// Record writes the entry for one run. The entry is written even when ctx is
// already cancelled, so an aborted or timed-out run still leaves a trace.
func (a *Auditor) Record(ctx context.Context, logger *slog.Logger, info KindInfo, fileName string, success, failed int) {
	entry := ImportLogEntry{
		ID:           uuid.New(),
		TableName:    info.Table,
		FileName:     fileName,
		SuccessCount: success,
		ErrorCount:   failed,
		ImportType:   ImportTypeManual,
		CreatedAt:    a.now().UTC(),
	}

	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.timeout)
	defer cancel()

	if err := a.store.AppendImportLog(writeCtx, entry); err != nil {
		auditFailures.Inc()
		logger.Error("import log write failed",
			"table", entry.TableName,
			"file", fileName,
			"success_count", success,
			"error_count", failed,
			"error", err,
		)
		return
	}

	logger.Debug("import log written", "log_id", entry.ID)
}
