package board

type State uint8

const (
	// StateUnknown is when the game state is unknown.
	StateUnknown State = iota

	// StateRunning is when the game is in progress.
	StateRunning

	// StateWon is when the side that just moved has connected four.
	StateWon

	// StateDrawn is when the board is full without a connection.
	StateDrawn
)

func (s State) IsRunning() bool {
	return s == StateRunning
}

func (s State) String() string {
	switch s {
	case StateUnknown:
		return "StateUnknown"
	case StateRunning:
		return "StateRunning"
	case StateWon:
		return "StateWon"
	case StateDrawn:
		return "StateDrawn"
	default:
		return ""
	}
}
