package dialog

import (
	"time"

	"fyne.io/fyne/v2"
)

type pickerState int

const (
	stateCollapsed pickerState = iota
	stateExpanding
	stateExpanded
	stateShrinking
)

func (s pickerState) String() string {
	switch s {
	case stateExpanding:
		return "expanding"
	case stateExpanded:
		return "expanded"
	case stateShrinking:
		return "shrinking"
	default:
		return "collapsed"
	}
}

type transitionAction int

const (
	actionNone transitionAction = iota
	actionExpand
	actionShrink
	actionScrollTo
)

// stateMachine tracks the expand/shrink lifecycle. Only one transition is
// in flight at a time; events arriving mid-transition move the target and
// the follow-up transition starts from animationComplete.
type stateMachine struct {
	state        pickerState
	focus        int
	wantExpanded bool
}

func newStateMachine() *stateMachine {
	return &stateMachine{state: stateCollapsed, focus: -1}
}

func (m *stateMachine) selected(id int) transitionAction {
	m.focus = id
	m.wantExpanded = true

	switch m.state {
	case stateCollapsed:
		m.state = stateExpanding
		return actionExpand
	case stateExpanded:
		return actionScrollTo
	}
	return actionNone
}

// deselected is called after the tracker dropped id. remaining is the
// selection left behind, oldest first. Dropping the focused item moves the
// focus to the newest remaining selection.
func (m *stateMachine) deselected(id int, remaining []int) transitionAction {
	if len(remaining) > 0 {
		if m.focus != id {
			return actionNone
		}
		m.focus = remaining[len(remaining)-1]
		if m.state == stateExpanded {
			return actionScrollTo
		}
		return actionNone
	}

	m.wantExpanded = false
	m.focus = id
	if m.state == stateExpanded {
		m.state = stateShrinking
		return actionShrink
	}
	return actionNone
}

func (m *stateMachine) animationComplete() transitionAction {
	switch m.state {
	case stateExpanding:
		if m.wantExpanded {
			m.state = stateExpanded
			return actionNone
		}
		m.state = stateShrinking
		return actionShrink
	case stateShrinking:
		if m.wantExpanded {
			m.state = stateExpanding
			return actionExpand
		}
		m.state = stateCollapsed
	}
	return actionNone
}

func (m *stateMachine) inFlight() bool {
	return m.state == stateExpanding || m.state == stateShrinking
}

// mode is the layout mode the strip is heading to. It follows the
// selection, not the animation in flight.
func (m *stateMachine) mode() LayoutMode {
	if m.wantExpanded {
		return Expanded
	}
	return Collapsed
}

// animator runs a timed transition. tick receives progress in [0,1] and
// done runs once after the final tick.
type animator interface {
	animate(d time.Duration, curve fyne.AnimationCurve, tick func(float32), done func())
}

type fyneAnimator struct{}

func (fyneAnimator) animate(d time.Duration, curve fyne.AnimationCurve, tick func(float32), done func()) {
	finished := false
	anim := fyne.NewAnimation(d, func(p float32) {
		if finished {
			return
		}
		tick(p)
		if p >= 1 {
			finished = true
			if done != nil {
				done()
			}
		}
	})
	anim.Curve = curve
	anim.Start()
}
