package systems

import (
	"testing"

	"github.com/decker502/magicword/pkg/ecs"
)

func TestTimerSystem_FiresOnce(t *testing.T) {
	em := ecs.NewEntityManager()
	ts := NewTimerSystem(em)

	fired := 0
	ts.Schedule("round_end", 0.5, 1, func() { fired++ })

	ts.Update(0.3, 1)
	if fired != 0 {
		t.Fatal("timer fired early")
	}
	ts.Update(0.3, 1)
	if fired != 1 {
		t.Fatalf("expected 1 fire, got %d", fired)
	}
	if ts.Pending("round_end") {
		t.Error("fired timer should not be pending")
	}

	em.RemoveMarkedEntities()
	ts.Update(1.0, 1)
	if fired != 1 {
		t.Errorf("timer must be one-shot, fired %d times", fired)
	}
	if em.EntityCount() != 0 {
		t.Errorf("timer entity should be cleaned up, %d remain", em.EntityCount())
	}
}

func TestTimerSystem_CoalescesByPurpose(t *testing.T) {
	ts := NewTimerSystem(ecs.NewEntityManager())

	var got []string
	ts.Schedule("round_end", 0.5, 1, func() { got = append(got, "first") })
	ts.Schedule("round_end", 0.5, 1, func() { got = append(got, "second") })

	ts.Update(1.0, 1)
	if len(got) != 1 || got[0] != "second" {
		t.Errorf("expected only the replacement to fire, got %v", got)
	}
}

func TestTimerSystem_StaleGenerationDropped(t *testing.T) {
	ts := NewTimerSystem(ecs.NewEntityManager())

	fired := false
	ts.Schedule("round_end", 0.5, 1, func() { fired = true })
	ts.Update(1.0, 2)

	if fired {
		t.Error("timer from an old round must not fire")
	}
}

func TestTimerSystem_UnboundGeneration(t *testing.T) {
	ts := NewTimerSystem(ecs.NewEntityManager())

	fired := false
	ts.Schedule("celebration", 5.0, 0, func() { fired = true })
	ts.Update(5.0, 7)

	if !fired {
		t.Error("generation 0 timers fire regardless of the live round")
	}
}

func TestTimerSystem_Cancel(t *testing.T) {
	ts := NewTimerSystem(ecs.NewEntityManager())

	fired := false
	ts.Schedule("round_end", 0.5, 1, func() { fired = true })
	ts.Cancel("round_end")
	ts.Cancel("round_end")
	ts.Update(1.0, 1)

	if fired {
		t.Error("cancelled timer fired")
	}
}
