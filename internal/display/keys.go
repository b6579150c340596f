//go:build !noebiten

package display

import "github.com/hajimehoshi/ebiten/v2"

type keyBinding struct {
	key    ebiten.Key
	ctrl   bool
	shift  bool
	action Action
}

var keyBindings = []keyBinding{
	{ebiten.KeyZ, true, true, ActionRedo},
	{ebiten.KeyZ, true, false, ActionUndo},
	{ebiten.KeyY, true, false, ActionRedo},
	{ebiten.KeyB, false, false, ActionBrush},
	{ebiten.KeyM, false, false, ActionMove},
	{ebiten.KeyF, false, false, ActionFill},
	{ebiten.KeyE, false, false, ActionErase},
	{ebiten.KeyR, false, false, ActionResetPerspective},
}

// matchKeys returns the actions of the bindings whose key was just
// pressed with exactly the given modifiers held.
func matchKeys(justPressed func(ebiten.Key) bool, ctrl, shift bool) []Action {
	var actions []Action
	for _, b := range keyBindings {
		if b.ctrl == ctrl && b.shift == shift && justPressed(b.key) {
			actions = append(actions, b.action)
		}
	}
	return actions
}
