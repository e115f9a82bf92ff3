// Package input polls SDL2 events and feeds game key state.
package input

import (
	"github.com/veandco/go-sdl2/sdl"

	"github.com/Faultbox/project-tails/internal/game/world"
)

// Event types for game use
type EventType int

const (
	EventNone EventType = iota
	EventQuit
	EventWindowResize
	EventKeyDown
	EventKeyUp
)

// Event represents a processed input event.
type Event struct {
	Type   EventType
	Key    sdl.Scancode
	Repeat bool
	Width  int
	Height int
}

// Bindings maps physical keys to game keys.
type Bindings map[sdl.Scancode]world.Key

// DefaultBindings binds both WASD-style and arrow keys.
func DefaultBindings() Bindings {
	return Bindings{
		sdl.SCANCODE_A:     world.KeyLeft,
		sdl.SCANCODE_LEFT:  world.KeyLeft,
		sdl.SCANCODE_D:     world.KeyRight,
		sdl.SCANCODE_RIGHT: world.KeyRight,
		sdl.SCANCODE_SPACE: world.KeyJump,
	}
}

// Input handles all input processing.
type Input struct {
	events   []Event
	bindings Bindings
	keys     world.KeyState
}

// New creates a new input handler.
func New(bindings Bindings) *Input {
	if bindings == nil {
		bindings = DefaultBindings()
	}
	return &Input{
		events:   make([]Event, 0, 16),
		bindings: bindings,
	}
}

// Update polls SDL events, converts them to game events and updates the key
// state. It returns true if the game should quit.
func (i *Input) Update() bool {
	i.events = i.events[:0] // Clear previous events

	quit := false
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch e := event.(type) {
		case *sdl.QuitEvent:
			i.events = append(i.events, Event{Type: EventQuit})
			quit = true

		case *sdl.WindowEvent:
			if e.Event == sdl.WINDOWEVENT_RESIZED || e.Event == sdl.WINDOWEVENT_SIZE_CHANGED {
				i.events = append(i.events, Event{
					Type:   EventWindowResize,
					Width:  int(e.Data1),
					Height: int(e.Data2),
				})
			}

		case *sdl.KeyboardEvent:
			ev := Event{Key: e.Keysym.Scancode, Repeat: e.Repeat != 0}
			if e.Type == sdl.KEYDOWN {
				ev.Type = EventKeyDown
				if e.Keysym.Scancode == sdl.SCANCODE_ESCAPE {
					quit = true
				}
			} else {
				ev.Type = EventKeyUp
			}
			i.events = append(i.events, ev)
			i.apply(ev)
		}
	}

	return quit
}

func (i *Input) apply(ev Event) {
	key, ok := i.bindings[ev.Key]
	if !ok {
		return
	}
	switch ev.Type {
	case EventKeyDown:
		i.keys.KeyDown(key)
	case EventKeyUp:
		i.keys.KeyUp(key)
	}
}

// BeginTick clears the pressed flags once a tick has consumed them.
func (i *Input) BeginTick() {
	i.keys.BeginTick()
}

// Keys returns the game key state.
func (i *Input) Keys() *world.KeyState {
	return &i.keys
}

// Events returns the events from the last Update.
func (i *Input) Events() []Event {
	return i.events
}

// IsKeyPressed checks if a specific key went down this frame.
func (i *Input) IsKeyPressed(scancode sdl.Scancode) bool {
	for _, e := range i.events {
		if e.Type == EventKeyDown && !e.Repeat && e.Key == scancode {
			return true
		}
	}
	return false
}
