package ir

// Version constants for the document format and tooling.
const (
	// IRVersion is the document schema version.
	IRVersion = "1"

	// EngineVersion is the blueprint tooling version.
	EngineVersion = "0.1.0"
)
