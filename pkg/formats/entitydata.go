package formats

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// EntityData format errors.
var (
	ErrInvalidEntityData = errors.New("invalid entity data")
)

const (
	entityRecordTag    = "OBJ"
	entityAnimationEnd = "EA"
	// entitySkippedFields are unused fields between the kind and the first animation.
	entitySkippedFields = 7
)

// AnimationDef describes one sprite sheet animation.
type AnimationDef struct {
	Sheet  string        // Asset name without the .png extension
	Delay  time.Duration // Time per frame; -1 in the file is stored as zero
	Frames int
}

// EntityData maps an entity kind to its animations.
type EntityData map[string][]AnimationDef

// Kinds returns the known entity kinds in sorted order.
func (d EntityData) Kinds() []string {
	kinds := make([]string, 0, len(d))
	for k := range d {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

// ParseEntityData parses an entity data table.
//
// Each non-blank line has the form
//
//	OBJ <kind> <7 ignored fields> (<sheet>.png <delay_ms|-1> <frames>)* EA
func ParseEntityData(data []byte) (EntityData, error) {
	result := make(EntityData)

	for i, line := range strings.Split(string(data), "\n") {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		kind, anims, err := parseEntityRecord(fields)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		result[kind] = anims
	}

	return result, nil
}

func parseEntityRecord(fields []string) (string, []AnimationDef, error) {
	if fields[0] != entityRecordTag {
		return "", nil, fmt.Errorf("%w: expected %s, got %q", ErrInvalidEntityData, entityRecordTag, fields[0])
	}
	if len(fields) < 2+entitySkippedFields {
		return "", nil, fmt.Errorf("%w: record too short", ErrInvalidEntityData)
	}

	kind := fields[1]
	rest := fields[2+entitySkippedFields:]

	var anims []AnimationDef
	for {
		if len(rest) == 0 {
			return "", nil, fmt.Errorf("%w: %s: missing %s", ErrInvalidEntityData, kind, entityAnimationEnd)
		}
		if rest[0] == entityAnimationEnd {
			break
		}
		if len(rest) < 3 {
			return "", nil, fmt.Errorf("%w: %s: truncated animation %q", ErrInvalidEntityData, kind, rest[0])
		}

		sheet, ok := strings.CutSuffix(rest[0], ".png")
		if !ok {
			return "", nil, fmt.Errorf("%w: %s: sheet %q is not a .png", ErrInvalidEntityData, kind, rest[0])
		}
		delayMs, err := strconv.Atoi(rest[1])
		if err != nil || delayMs < -1 {
			return "", nil, fmt.Errorf("%w: %s: delay %q", ErrInvalidEntityData, kind, rest[1])
		}
		frames, err := strconv.Atoi(rest[2])
		if err != nil || frames < 1 {
			return "", nil, fmt.Errorf("%w: %s: frame count %q", ErrInvalidEntityData, kind, rest[2])
		}

		var delay time.Duration
		if delayMs > 0 {
			delay = time.Duration(delayMs) * time.Millisecond
		}
		anims = append(anims, AnimationDef{Sheet: sheet, Delay: delay, Frames: frames})
		rest = rest[3:]
	}

	return kind, anims, nil
}
