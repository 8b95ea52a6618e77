package snapshot

// Kind tags the tri-state of a path: absent, file, or directory.
type Kind int

const (
	Absent Kind = iota
	File
	Dir
)

func (k Kind) String() string {
	switch k {
	case File:
		return "file"
	case Dir:
		return "dir"
	default:
		return "absent"
	}
}

// State is the observed state of one path. Size and XXH3 are only
// meaningful when Kind is File; the constructors keep the invalid
// combinations out of reach.
type State struct {
	Kind Kind
	Size int64
	XXH3 string
}

func AbsentState() State { return State{Kind: Absent} }

func FileState(size int64, xxh3 string) State {
	return State{Kind: File, Size: size, XXH3: xxh3}
}

func DirState() State { return State{Kind: Dir} }

// Equal reports whether two states describe the same entry.
// Directories carry no content, so identity is structural; files
// compare size and fingerprint.
func (s State) Equal(other State) bool {
	if s.Kind != other.Kind {
		return false
	}
	if s.Kind == File {
		return s.Size == other.Size && s.XXH3 == other.XXH3
	}
	return true
}
