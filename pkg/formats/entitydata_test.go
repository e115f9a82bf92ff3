package formats

import (
	"errors"
	"reflect"
	"testing"
	"time"
)

func TestParseEntityData(t *testing.T) {
	data := []byte(
		"OBJ RING 0 0 0 0 0 0 0 Ring.png 100 4 RingSparkle.png -1 1 EA\n" +
			"\n" +
			"OBJ  SPRING 1 2 3 4 5 6 7 Spring/Yellow.png 0 2 EA\n" +
			"OBJ MARKER a b c d e f g EA\n",
	)

	ed, err := ParseEntityData(data)
	if err != nil {
		t.Fatalf("ParseEntityData failed: %v", err)
	}

	want := EntityData{
		"RING": {
			{Sheet: "Ring", Delay: 100 * time.Millisecond, Frames: 4},
			{Sheet: "RingSparkle", Delay: 0, Frames: 1},
		},
		"SPRING": {
			{Sheet: "Spring/Yellow", Delay: 0, Frames: 2},
		},
		"MARKER": nil,
	}
	if !reflect.DeepEqual(ed, want) {
		t.Errorf("got %+v\nexpected %+v", ed, want)
	}

	if kinds := ed.Kinds(); !reflect.DeepEqual(kinds, []string{"MARKER", "RING", "SPRING"}) {
		t.Errorf("unexpected kinds %v", kinds)
	}
}

func TestParseEntityData_LaterRecordWins(t *testing.T) {
	ed, err := ParseEntityData([]byte(
		"OBJ RING 0 0 0 0 0 0 0 A.png 1 1 EA\n" +
			"OBJ RING 0 0 0 0 0 0 0 B.png 1 1 EA\n",
	))
	if err != nil {
		t.Fatalf("ParseEntityData failed: %v", err)
	}
	if got := ed["RING"][0].Sheet; got != "B" {
		t.Errorf("expected later record to win, got sheet %q", got)
	}
}

func TestParseEntityData_Errors(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{"wrong tag", "OBJECT RING 0 0 0 0 0 0 0 EA"},
		{"too short", "OBJ RING 0 0 0"},
		{"missing end", "OBJ RING 0 0 0 0 0 0 0 Ring.png 100 4"},
		{"truncated animation", "OBJ RING 0 0 0 0 0 0 0 Ring.png 100 EA"},
		{"not png", "OBJ RING 0 0 0 0 0 0 0 Ring.bmp 100 4 EA"},
		{"bad delay", "OBJ RING 0 0 0 0 0 0 0 Ring.png -2 4 EA"},
		{"non-numeric delay", "OBJ RING 0 0 0 0 0 0 0 Ring.png fast 4 EA"},
		{"zero frames", "OBJ RING 0 0 0 0 0 0 0 Ring.png 100 0 EA"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseEntityData([]byte(tt.line))
			if !errors.Is(err, ErrInvalidEntityData) {
				t.Errorf("expected ErrInvalidEntityData, got %v", err)
			}
		})
	}
}
