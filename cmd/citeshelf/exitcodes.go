package main

// Exit codes
const (
	ExitSuccess      = 0 // Success
	ExitError        = 1 // General error (invalid arguments, runtime failure)
	ExitConfigError  = 2 // Configuration error (no library, unreadable config or preferences)
	ExitDataError    = 3 // Data error (malformed input, unknown record id)
	ExitMissingField = 4 // --strict and at least one citation had an empty field
)
