package core

import "testing"

func TestEventRegisterAndFire(t *testing.T) {
	EventInitialize()
	t.Cleanup(EventShutdown)

	var got []EventContext
	err := EventRegister(EVENT_CODE_RESIZED, func(ctx EventContext) bool {
		got = append(got, ctx)
		return true
	})
	if err != nil {
		t.Fatalf("EventRegister() error = %v", err)
	}

	data := ResizeEventData{Width: 800, Height: 600}
	if !EventFire(EventContext{Type: EVENT_CODE_RESIZED, Data: data}) {
		t.Error("EventFire() = false, want true with a handling listener")
	}
	if len(got) != 1 {
		t.Fatalf("listener fired %d times, want 1", len(got))
	}
	if resize, ok := got[0].Data.(ResizeEventData); !ok || resize != data {
		t.Errorf("listener received %+v, want %+v", got[0].Data, data)
	}
}

func TestEventFireStopsOnHandled(t *testing.T) {
	EventInitialize()
	t.Cleanup(EventShutdown)

	var order []string
	EventRegister(EVENT_CODE_KEY_PRESSED, func(EventContext) bool {
		order = append(order, "first")
		return false
	})
	EventRegister(EVENT_CODE_KEY_PRESSED, func(EventContext) bool {
		order = append(order, "second")
		return true
	})
	EventRegister(EVENT_CODE_KEY_PRESSED, func(EventContext) bool {
		order = append(order, "third")
		return false
	})

	if !EventFire(EventContext{Type: EVENT_CODE_KEY_PRESSED}) {
		t.Error("EventFire() = false, want true")
	}
	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Errorf("listener order = %v, want [first second]", order)
	}
}

func TestEventFireWithoutListeners(t *testing.T) {
	EventInitialize()
	t.Cleanup(EventShutdown)

	if EventFire(EventContext{Type: EVENT_CODE_APPLICATION_QUIT}) {
		t.Error("EventFire() with no listeners = true, want false")
	}
}

func TestEventRegisterNilListener(t *testing.T) {
	EventInitialize()
	t.Cleanup(EventShutdown)

	if err := EventRegister(EVENT_CODE_RESIZED, nil); err == nil {
		t.Error("EventRegister(nil) returned no error")
	}
}

func TestEventShutdownClearsListeners(t *testing.T) {
	EventInitialize()

	fired := false
	EventRegister(EVENT_CODE_RESIZED, func(EventContext) bool {
		fired = true
		return true
	})
	EventShutdown()

	EventFire(EventContext{Type: EVENT_CODE_RESIZED})
	if fired {
		t.Error("listener survived EventShutdown")
	}
}
