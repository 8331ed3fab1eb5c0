// Package errors provides structured error handling for cascade.
//
// Error codes are grouped by range:
//
//	1XX — configuration
//	2XX — index and cache
//	3XX — external scoring services
//	4XX — query processing
//	5XX — internal
package errors

// Category represents the error category.
type Category string

const (
	// CategoryConfig indicates configuration errors.
	CategoryConfig Category = "CONFIG"

	// CategoryIndex indicates index or cache errors.
	CategoryIndex Category = "INDEX"

	// CategoryService indicates external service errors.
	CategoryService Category = "SERVICE"

	// CategoryQuery indicates query processing errors.
	CategoryQuery Category = "QUERY"

	// CategoryInternal indicates internal errors.
	CategoryInternal Category = "INTERNAL"
)

// Severity represents the error severity level.
type Severity string

const (
	// SeverityFatal aborts the current operation.
	SeverityFatal Severity = "FATAL"

	// SeverityError indicates the operation failed but the process continues.
	SeverityError Severity = "ERROR"

	// SeverityWarning indicates a degraded but functional state.
	SeverityWarning Severity = "WARNING"
)

// Error codes.
const (
	// Configuration (1XX).
	ErrCodeConfigInvalid = "ERR_101_CONFIG_INVALID"
	ErrCodeConfigLoad    = "ERR_102_CONFIG_LOAD"

	// Index and cache (2XX).
	ErrCodeIndexUnavailable = "ERR_201_INDEX_UNAVAILABLE"
	ErrCodeCacheCorrupt     = "ERR_202_CACHE_CORRUPT"
	ErrCodeCorpusLoad       = "ERR_203_CORPUS_LOAD"
	ErrCodeIndexBuild       = "ERR_204_INDEX_BUILD"

	// External scoring services (3XX).
	ErrCodeExternalService = "ERR_301_EXTERNAL_SERVICE"
	ErrCodeServiceTimeout  = "ERR_302_SERVICE_TIMEOUT"

	// Query processing (4XX).
	ErrCodeEmptyQuery = "ERR_401_EMPTY_QUERY"
	ErrCodeRetrieval  = "ERR_402_RETRIEVAL"

	// Internal (5XX).
	ErrCodeInternal = "ERR_501_INTERNAL"
)

// categoryFromCode derives the category from the code's range digit.
func categoryFromCode(code string) Category {
	if len(code) < 5 {
		return CategoryInternal
	}
	switch code[4] {
	case '1':
		return CategoryConfig
	case '2':
		return CategoryIndex
	case '3':
		return CategoryService
	case '4':
		return CategoryQuery
	default:
		return CategoryInternal
	}
}

// severityFromCode derives the severity from the code.
func severityFromCode(code string) Severity {
	switch code {
	case ErrCodeRetrieval, ErrCodeIndexBuild:
		return SeverityFatal
	}
	if isRecoverableCode(code) {
		return SeverityWarning
	}
	return SeverityError
}

// isRecoverableCode reports whether the pipeline handles the error
// locally instead of failing the query.
func isRecoverableCode(code string) bool {
	switch code {
	case ErrCodeExternalService, ErrCodeServiceTimeout,
		ErrCodeCacheCorrupt, ErrCodeIndexUnavailable:
		return true
	}
	return false
}
