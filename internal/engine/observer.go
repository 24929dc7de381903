package engine

import "fmt"

// ChangeKind identifies what changed in the engine.
type ChangeKind int

const (
	ChangeMode ChangeKind = iota
	ChangeGroups
	ChangeActiveSet
	ChangeSetting
	ChangeActivation
	ChangeSession
	ChangePostFailure
	// ChangeFocus fires when input focus moves onto or off every managed
	// window.
	ChangeFocus
)

func (k ChangeKind) String() string {
	switch k {
	case ChangeMode:
		return "mode"
	case ChangeGroups:
		return "groups"
	case ChangeActiveSet:
		return "active_set"
	case ChangeSetting:
		return "setting"
	case ChangeActivation:
		return "activation"
	case ChangeSession:
		return "session"
	case ChangePostFailure:
		return "post_failure"
	case ChangeFocus:
		return "focus"
	default:
		return fmt.Sprintf("change(%d)", int(k))
	}
}

// Change describes one state transition. Mode, Active and Session are the
// values after the change.
type Change struct {
	Kind    ChangeKind
	Mode    Mode
	Active  bool
	Session bool
	// Detail is a short human readable note, e.g. the setting name.
	Detail string
}

// Observer receives changes after the engine lock is released.
type Observer interface {
	EngineChanged(Change)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Change)

func (f ObserverFunc) EngineChanged(c Change) { f(c) }

// ChannelObserver forwards changes to a buffered channel. Changes are
// dropped while the channel is full.
type ChannelObserver struct {
	C chan Change
}

// NewChannelObserver returns an observer with a buffer of size n.
func NewChannelObserver(n int) *ChannelObserver {
	if n < 1 {
		n = 1
	}
	return &ChannelObserver{C: make(chan Change, n)}
}

func (o *ChannelObserver) EngineChanged(c Change) {
	select {
	case o.C <- c:
	default:
	}
}
