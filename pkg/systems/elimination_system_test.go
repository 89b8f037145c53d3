package systems

import (
	"testing"
)

func TestEliminateHighlighted(t *testing.T) {
	em, sys, ids := newObjectScene(t)
	elim := NewEliminationSystem(em, sys)

	sys.ApplyHighlight(ids[0])
	sys.BlinkMultiple(ids[2], 2, 1.0, 1)
	sys.Update(0.5, 1) // Amor 处于熄灭相位，仍应被消除

	names := elim.EliminateHighlighted()
	if len(names) != 2 || names[0] != "Tomate" || names[1] != "Amor" {
		t.Errorf("unexpected eliminated names: %v", names)
	}

	remaining := sys.AllInteractiveObjects()
	if len(remaining) != 1 || remaining[0].Name != "Fresa" {
		t.Errorf("unexpected remaining objects: %+v", remaining)
	}
}

func TestEliminateHighlighted_Nothing(t *testing.T) {
	em, sys, _ := newObjectScene(t)
	elim := NewEliminationSystem(em, sys)

	if names := elim.EliminateHighlighted(); len(names) != 0 {
		t.Errorf("expected nothing eliminated, got %v", names)
	}
	if n := len(sys.AllInteractiveObjects()); n != 3 {
		t.Errorf("scene should be untouched, got %d objects", n)
	}
}
