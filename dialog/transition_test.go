package dialog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStateMachine_ExpandAndShrink(t *testing.T) {
	m := newStateMachine()
	assert.Equal(t, Collapsed, m.mode())

	assert.Equal(t, actionExpand, m.selected(4))
	assert.Equal(t, stateExpanding, m.state)
	assert.True(t, m.inFlight())
	assert.Equal(t, Expanded, m.mode())

	assert.Equal(t, actionNone, m.animationComplete())
	assert.Equal(t, stateExpanded, m.state)

	assert.Equal(t, actionScrollTo, m.selected(7))
	assert.Equal(t, 7, m.focus)
	assert.Equal(t, stateExpanded, m.state)

	// selection not empty yet and 7 is not focused
	m.selected(9)
	assert.Equal(t, actionNone, m.deselected(7, []int{4, 9}))
	assert.Equal(t, stateExpanded, m.state)
	assert.Equal(t, 9, m.focus)

	// dropping the focused item refocuses the newest remaining one
	assert.Equal(t, actionScrollTo, m.deselected(9, []int{4}))
	assert.Equal(t, 4, m.focus)
	assert.Equal(t, Expanded, m.mode())

	assert.Equal(t, actionShrink, m.deselected(4, nil))
	assert.Equal(t, stateShrinking, m.state)
	assert.Equal(t, Collapsed, m.mode())

	assert.Equal(t, actionNone, m.animationComplete())
	assert.Equal(t, stateCollapsed, m.state)
	assert.False(t, m.inFlight())
}

func TestStateMachine_DeselectWhileExpanding(t *testing.T) {
	m := newStateMachine()
	m.selected(1)
	assert.Equal(t, actionNone, m.deselected(1, nil))
	assert.Equal(t, stateExpanding, m.state)
	assert.Equal(t, Collapsed, m.mode())

	assert.Equal(t, actionShrink, m.animationComplete())
	assert.Equal(t, stateShrinking, m.state)
	assert.Equal(t, actionNone, m.animationComplete())
	assert.Equal(t, stateCollapsed, m.state)
}

func TestStateMachine_SelectWhileShrinking(t *testing.T) {
	m := newStateMachine()
	m.selected(1)
	m.animationComplete()
	m.deselected(1, nil)

	assert.Equal(t, actionNone, m.selected(2))
	assert.Equal(t, stateShrinking, m.state)
	assert.Equal(t, Expanded, m.mode())

	assert.Equal(t, actionExpand, m.animationComplete())
	assert.Equal(t, stateExpanding, m.state)
	assert.Equal(t, 2, m.focus)
	assert.Equal(t, actionNone, m.animationComplete())
	assert.Equal(t, stateExpanded, m.state)
}

func TestPickerState_String(t *testing.T) {
	assert.Equal(t, "collapsed", stateCollapsed.String())
	assert.Equal(t, "expanding", stateExpanding.String())
	assert.Equal(t, "expanded", stateExpanded.String())
	assert.Equal(t, "shrinking", stateShrinking.String())
}
