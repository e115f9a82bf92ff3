package math

import (
	"testing"
)

func TestVec2Add(t *testing.T) {
	a := Vec2{1, 2}
	b := Vec2{3, 4}
	got := a.Add(b)
	want := Vec2{4, 6}
	if got != want {
		t.Errorf("Vec2.Add() = %v, want %v", got, want)
	}
}

func TestVec2Sub(t *testing.T) {
	got := Vec2{5, 5}.Sub(Vec2{2, 7})
	want := Vec2{3, -2}
	if got != want {
		t.Errorf("Vec2.Sub() = %v, want %v", got, want)
	}
}

func TestVec2Length(t *testing.T) {
	v := Vec2{3, 4}
	if got := v.Length(); got != 5 {
		t.Errorf("Vec2.Length() = %v, want 5", got)
	}
}

func TestVec2Point(t *testing.T) {
	x, y := Vec2{12.9, -3.7}.Point()
	if x != 12 || y != -3 {
		t.Errorf("Vec2.Point() = (%d, %d), want (12, -3)", x, y)
	}
}
