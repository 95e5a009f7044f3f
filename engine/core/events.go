package core

import (
	"fmt"
	"sync"
)

type SystemEventCode int

const (
	// Shuts the application down on the next frame.
	EVENT_CODE_APPLICATION_QUIT SystemEventCode = 0x01
	// Keyboard key pressed. Data is a KeyEventData.
	EVENT_CODE_KEY_PRESSED SystemEventCode = 0x02
	// Keyboard key released. Data is a KeyEventData.
	EVENT_CODE_KEY_RELEASED SystemEventCode = 0x03
	// Framebuffer resized (or minimized to zero). Data is a ResizeEventData.
	EVENT_CODE_RESIZED SystemEventCode = 0x08

	MAX_EVENT_CODE SystemEventCode = 0xFF
)

type KeyEventData struct {
	Key KeyCode
}

type ResizeEventData struct {
	Width  uint32
	Height uint32
}

type EventContext struct {
	Type SystemEventCode
	Data interface{}
}

// FnOnEvent handles a fired event. Returning true marks the event handled
// and stops propagation to later listeners.
type FnOnEvent func(data EventContext) bool

type eventSystem struct {
	registered map[SystemEventCode][]FnOnEvent
}

var eventOnce sync.Once
var eventState *eventSystem

// EventInitialize prepares the event system. The system is single threaded;
// all registration and firing happens on the main thread.
func EventInitialize() {
	eventOnce.Do(func() {
		eventState = &eventSystem{
			registered: make(map[SystemEventCode][]FnOnEvent),
		}
	})
}

func EventShutdown() {
	if eventState != nil {
		eventState.registered = make(map[SystemEventCode][]FnOnEvent)
	}
}

func EventRegister(code SystemEventCode, listener FnOnEvent) error {
	if eventState == nil {
		return fmt.Errorf("event system not initialized")
	}
	if listener == nil {
		return fmt.Errorf("cannot register a nil listener for event code 0x%02X", int(code))
	}
	eventState.registered[code] = append(eventState.registered[code], listener)
	return nil
}

// EventFire dispatches the context to every listener registered for its
// type, in registration order, until one reports the event handled.
func EventFire(ctx EventContext) bool {
	if eventState == nil {
		return false
	}
	for _, listener := range eventState.registered[ctx.Type] {
		if listener(ctx) {
			return true
		}
	}
	return false
}
