// Package core provides the business logic for bulk category and place imports.
//
// The package has no transport dependencies. The HTTP server and the placectl
// CLI both drive it through [Service].
//
// # Import Kinds
//
// Each importable entity registers a [KindDefinition] at init time (see the
// kinds package). A definition carries the row validator, an optional
// reference resolver and the writer, so a single pipeline serves every kind:
//
//	core.Register(core.KindDefinition{
//	    Info:     core.KindInfo{Kind: core.KindCategory, Table: "categories"},
//	    Validate: validateCategory,
//	    Write:    writeCategories,
//	})
//
// # Pipeline
//
// [Service.Import] moves a run through these phases:
//
//	received -> decoded -> validated -> [references_resolved] -> written -> audited -> completed
//
// A file that cannot be decoded ends in rejected and writes no import log.
// A storage failure while resolving or writing ends in aborted; the import
// log entry is still written with a success count of zero.
//
// # Error Handling
//
// Row problems are data, not errors: they are collected in [Report.Errors]
// with their source row number. Run-level failures are [*InputError] or
// [*StorageError]. [MapError] turns either into a coded message for users:
//
//   - DB001-DB006: Database errors
//   - FILE001-FILE004: File errors
//   - IMP001-IMP004: Import run errors
//
// # Concurrency
//
// Runs are bounded by an [ImportLimiter]. Writes are conflict-safe, so two
// runs racing on the same category name leave exactly one row.
package core
