package tui

type opKind int

const (
	opLogin opKind = iota
	opList
	opCreate
	opUpdate
	opDelete
)

// opDoneMsg reports a finished controller call. The outcome itself already
// lives in the session and collection; the error only steers the form.
type opDoneMsg struct {
	kind opKind
	id   int
	err  error
}
