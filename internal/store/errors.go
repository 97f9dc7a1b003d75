package store

import "errors"

// Sentinel errors returned by repository methods to signal well-known failure
// conditions. Callers should use [errors.Is] to match against these values.
var (
	// ErrCredentialNotFound is returned when a query or update targets a
	// credential id that does not exist in the database.
	ErrCredentialNotFound = errors.New("credential was not found")

	// ErrProjectNotFound is returned when a query or update targets a
	// project id that does not exist in the database.
	ErrProjectNotFound = errors.New("project was not found")

	// ErrSettingNotFound is returned when the settings table has no row for
	// the requested key. First-run code paths rely on this to detect a
	// fresh store.
	ErrSettingNotFound = errors.New("setting was not found")
)

// Low-level database operation errors. These are returned (or wrapped) by
// repository methods when a SQL-level operation fails before any domain logic
// can be applied.
var (
	// ErrBuildingSQLQuery is returned when constructing a parameterised SQL
	// query fails (e.g. an update with no columns to set).
	ErrBuildingSQLQuery = errors.New("error building sql query")

	// ErrExecutingQuery is returned when executing a query against the
	// database fails.
	ErrExecutingQuery = errors.New("error executing sql query")

	// ErrScanningRow is returned when scanning column values from a single
	// result row into a destination struct fails.
	ErrScanningRow = errors.New("failed to scan row")

	// ErrScanningRows is returned when scanning column values during
	// multi-row iteration fails, typically mid-result-set.
	ErrScanningRows = errors.New("failed to scan rows")
)
