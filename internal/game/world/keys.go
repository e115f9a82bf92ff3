package world

// Key is a game action bound to a physical key.
type Key int

// Game keys.
const (
	KeyLeft Key = iota
	KeyRight
	KeyJump
	keyCount
)

// String returns the key name.
func (k Key) String() string {
	switch k {
	case KeyLeft:
		return "left"
	case KeyRight:
		return "right"
	case KeyJump:
		return "jump"
	default:
		return "unknown"
	}
}

// Controls reports key state for the current tick.
type Controls interface {
	// Held reports whether the key is down.
	Held(k Key) bool
	// Pressed reports whether the key went down during this tick.
	Pressed(k Key) bool
}

// KeyState tracks held and pressed flags per key. Call BeginTick before
// feeding the events of a tick.
type KeyState struct {
	held    [keyCount]bool
	pressed [keyCount]bool
}

// BeginTick clears the pressed flags of the previous tick.
func (s *KeyState) BeginTick() {
	s.pressed = [keyCount]bool{}
}

// KeyDown records a key down event. Repeated key down events while the key is
// held do not count as a new press.
func (s *KeyState) KeyDown(k Key) {
	if !k.valid() {
		return
	}
	s.pressed[k] = !s.held[k]
	s.held[k] = true
}

// KeyUp records a key up event.
func (s *KeyState) KeyUp(k Key) {
	if !k.valid() {
		return
	}
	s.pressed[k] = false
	s.held[k] = false
}

// Held reports whether the key is down.
func (s *KeyState) Held(k Key) bool {
	return k.valid() && s.held[k]
}

// Pressed reports whether the key went down this tick.
func (s *KeyState) Pressed(k Key) bool {
	return k.valid() && s.pressed[k]
}

func (k Key) valid() bool {
	return k >= 0 && k < keyCount
}
