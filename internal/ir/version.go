package ir

// Version constants for the tooling.
const (
	// IRVersion is the version of the class declaration schema.
	IRVersion = "1"

	// ToolVersion is the lateinit CLI version.
	ToolVersion = "0.1.0"
)
