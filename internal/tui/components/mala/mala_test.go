package mala

import (
	"strings"
	"testing"
)

func TestBeads(t *testing.T) {
	beads := Beads(21)
	if len(beads) != 108 {
		t.Fatalf("len = %d", len(beads))
	}

	done := 0
	for _, b := range beads {
		if b.Done {
			done++
		}
	}
	if done != 21 {
		t.Errorf("done = %d, want 21", done)
	}
	if !beads[20].Current || beads[21].Current {
		t.Error("bead 21 should be current")
	}

	var markers []int
	for _, b := range beads {
		if b.Marker {
			markers = append(markers, b.Index)
		}
	}
	want := []int{7, 21, 40, 60, 90, 108}
	if len(markers) != len(want) {
		t.Fatalf("markers = %v", markers)
	}
	for i := range want {
		if markers[i] != want[i] {
			t.Errorf("markers = %v, want %v", markers, want)
		}
	}
}

func TestRenderRows(t *testing.T) {
	out := Render(1)
	if rows := strings.Count(out, "\n") + 1; rows != 9 {
		t.Errorf("rows = %d, want 9", rows)
	}
}
