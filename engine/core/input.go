package core

import "sync"

// KeyCode identifies a keyboard key. Values follow the GLFW key tokens so
// the platform layer can pass them through without translation.
type KeyCode uint16

const (
	KEY_SPACE  KeyCode = 32
	KEY_ESCAPE KeyCode = 256
	KEY_ENTER  KeyCode = 257
	KEY_F5     KeyCode = 294

	MAX_KEYS KeyCode = 512
)

type keyboardState struct {
	keys [MAX_KEYS]bool
}

type inputSystem struct {
	keyboardCurrent  keyboardState
	keyboardPrevious keyboardState
}

var inputOnce sync.Once
var inputState *inputSystem

func InputInitialize() {
	inputOnce.Do(func() {
		inputState = &inputSystem{}
	})
}

func InputShutdown() {
	if inputState != nil {
		inputState.keyboardCurrent = keyboardState{}
		inputState.keyboardPrevious = keyboardState{}
	}
}

// InputUpdate rolls the current keyboard state into the previous one. Call
// once per frame, after all input processing for the frame is done.
func InputUpdate() {
	if inputState == nil {
		return
	}
	inputState.keyboardPrevious = inputState.keyboardCurrent
}

// InputProcessKey records a key state change and fires the matching event.
func InputProcessKey(key KeyCode, pressed bool) {
	if inputState == nil || key >= MAX_KEYS {
		return
	}
	if inputState.keyboardCurrent.keys[key] == pressed {
		return
	}
	inputState.keyboardCurrent.keys[key] = pressed

	code := EVENT_CODE_KEY_RELEASED
	if pressed {
		code = EVENT_CODE_KEY_PRESSED
	}
	EventFire(EventContext{Type: code, Data: KeyEventData{Key: key}})
}

func InputIsKeyDown(key KeyCode) bool {
	if inputState == nil || key >= MAX_KEYS {
		return false
	}
	return inputState.keyboardCurrent.keys[key]
}

func InputIsKeyUp(key KeyCode) bool {
	return !InputIsKeyDown(key)
}

func InputWasKeyDown(key KeyCode) bool {
	if inputState == nil || key >= MAX_KEYS {
		return false
	}
	return inputState.keyboardPrevious.keys[key]
}

// InputWasKeyPressed reports a down edge: the key is down this frame and
// was up the frame before.
func InputWasKeyPressed(key KeyCode) bool {
	return InputIsKeyDown(key) && !InputWasKeyDown(key)
}
