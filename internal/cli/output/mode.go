// Package output renders command results for terminals, pipes and
// machine consumers.
package output

// OutputMode selects how command results are rendered.
type OutputMode string

// Mode is shorthand for OutputMode.
type Mode = OutputMode

// Output modes.
const (
	ModeAuto     OutputMode = "auto"     // text on a TTY, markdown otherwise
	ModeText     OutputMode = "text"     // styled terminal output
	ModeMarkdown OutputMode = "markdown" // plain markdown, agent friendly
	ModeJSON     OutputMode = "json"
	ModeYAML     OutputMode = "yaml"
)

// Structured reports whether the mode emits a machine-readable document.
func (m OutputMode) Structured() bool {
	return m == ModeJSON || m == ModeYAML
}
