package dispatch

// DefaultCommand runs the transcription script shipped in the worker image.
var DefaultCommand = []string{"python3", "/app/transcribe.py"}

// Invocation is one call of the transcription capability, with every path
// already in the worker namespace.
type Invocation struct {
	Input     string
	ModelTier string
	OutputDir string
}

// Args appends the invocation flags to the base command without modifying it.
func (i Invocation) Args(base []string) []string {
	args := make([]string, 0, len(base)+6)
	args = append(args, base...)
	return append(args,
		"--video", i.Input,
		"--model", i.ModelTier,
		"--output_dir", i.OutputDir,
	)
}
