package pipeline

// State is a step of a mode.
type State int

const (
	StateSearch State = iota
	StateFilter
	StateExtendPrimary
	StateResolvePairs
	StateExtract
	StateDone

	StateReadInput
	StateBuild
	StateFinalize

	StateDump
)

var stateNames = [...]string{
	StateSearch:        "search",
	StateFilter:        "filter",
	StateExtendPrimary: "extend-primary",
	StateResolvePairs:  "resolve-pairs",
	StateExtract:       "extract",
	StateDone:          "done",
	StateReadInput:     "read-input",
	StateBuild:         "build",
	StateFinalize:      "finalize",
	StateDump:          "dump",
}

func (s State) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "unknown"
}
