package story

// FileState is the lifecycle state of a placeholder file.
type FileState int

const (
	// Pending files still contain the placeholder sentinel.
	Pending FileState = iota
	// Filled files have been persisted with generated content.
	Filled
)

func (s FileState) String() string {
	switch s {
	case Pending:
		return "pending"
	case Filled:
		return "filled"
	default:
		return "unknown"
	}
}

// PlaceholderFile is a content file discovered by the scanner.
type PlaceholderFile struct {
	Path       string
	Topic      string
	Difficulty Difficulty
	StoryIndex int
	State      FileState
	Skeletons  []Skeleton
	// Reconstructed is set when the skeletons were synthesized because the
	// file's questions array could not be read.
	Reconstructed bool
}

// HasPlaceholders reports whether the file still needs generation.
func (f PlaceholderFile) HasPlaceholders() bool {
	return f.State == Pending
}

// Label returns the short name used in logs and reports.
func (f PlaceholderFile) Label() string {
	return string(f.Difficulty) + f.Topic
}
