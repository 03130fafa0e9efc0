package tarea

// Change describes the observable effect of a status transition.
type Change int

const (
	// ChangeNone means the requested state equals the current one.
	ChangeNone Change = iota
	// ChangeCompleted means the task moved into Completada.
	ChangeCompleted
	// ChangeOther is any other move between distinct states.
	ChangeOther
)

func (c Change) String() string {
	switch c {
	case ChangeCompleted:
		return "completed"
	case ChangeOther:
		return "other"
	default:
		return "none"
	}
}

// Transition resolves a status change request. Every move between distinct
// states is allowed; there is no terminal state.
func Transition(current, requested Estado) (Estado, Change) {
	if current == requested {
		return current, ChangeNone
	}
	if requested == EstadoCompletada {
		return requested, ChangeCompleted
	}
	return requested, ChangeOther
}
