package candid

// Version constants for the canonical form.
const (
	// FormVersion is the canonical text form version. Bump when Emit changes.
	FormVersion = "1"

	// ToolVersion is the candid tool version.
	ToolVersion = "0.1.0"
)
