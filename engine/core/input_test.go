package core

import "testing"

func TestInputKeyEdges(t *testing.T) {
	InputInitialize()
	t.Cleanup(InputShutdown)

	if InputIsKeyDown(KEY_SPACE) {
		t.Fatal("KEY_SPACE down before any input")
	}

	InputProcessKey(KEY_SPACE, true)
	if !InputIsKeyDown(KEY_SPACE) {
		t.Error("KEY_SPACE not down after press")
	}
	if !InputWasKeyPressed(KEY_SPACE) {
		t.Error("press edge not reported on the frame the key went down")
	}

	// After the frame rolls over the key is held, not freshly pressed.
	InputUpdate()
	if !InputIsKeyDown(KEY_SPACE) {
		t.Error("KEY_SPACE no longer down after InputUpdate")
	}
	if InputWasKeyPressed(KEY_SPACE) {
		t.Error("press edge reported again for a held key")
	}

	InputProcessKey(KEY_SPACE, false)
	if InputIsKeyDown(KEY_SPACE) {
		t.Error("KEY_SPACE still down after release")
	}
	if !InputIsKeyUp(KEY_SPACE) {
		t.Error("InputIsKeyUp() = false after release")
	}
	if !InputWasKeyDown(KEY_SPACE) {
		t.Error("InputWasKeyDown() = false for a key down last frame")
	}
}

func TestInputProcessKeyFiresEvents(t *testing.T) {
	InputInitialize()
	EventInitialize()
	t.Cleanup(InputShutdown)
	t.Cleanup(EventShutdown)

	var events []EventContext
	EventRegister(EVENT_CODE_KEY_PRESSED, func(ctx EventContext) bool {
		events = append(events, ctx)
		return false
	})
	EventRegister(EVENT_CODE_KEY_RELEASED, func(ctx EventContext) bool {
		events = append(events, ctx)
		return false
	})

	InputProcessKey(KEY_ENTER, true)
	// Repeating the same state must not fire a second event.
	InputProcessKey(KEY_ENTER, true)
	InputProcessKey(KEY_ENTER, false)

	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	if events[0].Type != EVENT_CODE_KEY_PRESSED || events[1].Type != EVENT_CODE_KEY_RELEASED {
		t.Errorf("event types = %v, %v, want press then release", events[0].Type, events[1].Type)
	}
	if data, ok := events[0].Data.(KeyEventData); !ok || data.Key != KEY_ENTER {
		t.Errorf("press event data = %+v, want KEY_ENTER", events[0].Data)
	}
}

func TestInputIgnoresOutOfRangeKeys(t *testing.T) {
	InputInitialize()
	t.Cleanup(InputShutdown)

	InputProcessKey(MAX_KEYS, true)
	InputProcessKey(MAX_KEYS+100, true)
	if InputIsKeyDown(MAX_KEYS) || InputIsKeyDown(MAX_KEYS+100) {
		t.Error("out of range key reported down")
	}
}
