package exitcodes

// Exit codes for the rmlong CLI
// These codes form the operational contract with scripts and CI jobs
const (
	Success         = 0 // Every target removed (or dry run completed)
	InvalidConfig   = 2 // Configuration file invalid or missing
	SafetyViolation = 3 // Safety validator rejected a target
	RuntimeError    = 4 // Runtime error during execution
	Incomplete      = 5 // At least one target still exists afterwards
)
