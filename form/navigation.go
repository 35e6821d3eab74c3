package form

import "time"

type TransitionState int

const (
	Idle TransitionState = iota
	Preparing
	Animating
)

func (s TransitionState) String() string {
	switch s {
	case Preparing:
		return "preparing"
	case Animating:
		return "animating"
	}
	return "idle"
}

type Direction int

const (
	Forward Direction = iota
	Backward
)

func (d Direction) String() string {
	if d == Backward {
		return "backward"
	}
	return "forward"
}

// Navigator decides which step is visible. While a transition runs every
// navigation request is refused, so step changes never overlap.
type Navigator struct {
	steps     int
	current   int
	direction Direction
	state     TransitionState
	settleAt  time.Time

	allowSkip bool
	complete  func(step int) bool

	duration time.Duration
	now      func() time.Time
}

type NavigatorOption func(*Navigator)

// WithTransition keeps the navigator in the Animating state for d after
// every step change.
func WithTransition(d time.Duration) NavigatorOption {
	return func(n *Navigator) { n.duration = d }
}

func WithClock(now func() time.Time) NavigatorOption {
	return func(n *Navigator) { n.now = now }
}

// NewNavigator creates a navigator over steps steps, positioned on the
// first one. complete reports whether a step may be left going forward.
func NewNavigator(steps int, allowSkip bool, complete func(step int) bool, opts ...NavigatorOption) *Navigator {
	n := &Navigator{
		steps:     steps,
		allowSkip: allowSkip,
		complete:  complete,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

func (n *Navigator) Current() int         { return n.current }
func (n *Navigator) Direction() Direction { return n.direction }
func (n *Navigator) Last() int            { return n.steps - 1 }

func (n *Navigator) State() TransitionState {
	if n.state == Animating && !n.now().Before(n.settleAt) {
		n.state = Idle
	}
	return n.state
}

// GoTo moves to target and reports whether the move happened.
func (n *Navigator) GoTo(target int) bool {
	if target < 0 || target >= n.steps {
		return false
	}
	if target == n.current || n.State() != Idle {
		return false
	}
	if target > n.current && !n.allowSkip && !n.complete(n.current) {
		return false
	}

	n.state = Preparing
	if target > n.current {
		n.direction = Forward
	} else {
		n.direction = Backward
	}
	n.current = target

	n.state = Animating
	n.settleAt = n.now().Add(n.duration)
	if n.duration <= 0 {
		n.state = Idle
	}
	return true
}

func (n *Navigator) Next() bool {
	if n.current >= n.Last() {
		return false
	}
	return n.GoTo(n.current + 1)
}

func (n *Navigator) Prev() bool {
	if n.current <= 0 {
		return false
	}
	return n.GoTo(n.current - 1)
}

// CanSubmit is true on the last step only.
func (n *Navigator) CanSubmit() bool {
	return n.current == n.Last()
}
