package exitcode

// Exit codes for the gate CLI.
// The CI pipeline uses these to decide whether to proceed, fail, or alert.
const (
	// Success - the target file reached LOADED
	Success = 0

	// ConfigError - missing or invalid flags/environment
	// Don't retry: fix the config first
	ConfigError = 1

	// LoadFailed - warehouse reported LOAD_FAILED or PARTIALLY_LOADED
	// Don't retry: the load itself needs investigation
	LoadFailed = 2

	// Timeout - no terminal status within the wall-clock budget
	// The pipeline may re-run the gate or alert
	Timeout = 3

	// CatalogError - the copy-history query or connection failed
	// Retry is usually safe
	CatalogError = 4
)
