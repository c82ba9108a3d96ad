package tcgclient

type State int

const (
	StateIdle State = iota
	StateLoading
	StateSuccess
	StateError
	// StateFallbackServed means a search failed and the sample cards were
	// returned in its place.
	StateFallbackServed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateSuccess:
		return "success"
	case StateError:
		return "error"
	case StateFallbackServed:
		return "fallback"
	default:
		return "unknown"
	}
}
