package entities

import (
	"testing"

	"github.com/decker502/magicword/pkg/components"
	"github.com/decker502/magicword/pkg/config"
	"github.com/decker502/magicword/pkg/ecs"
)

func TestNewInteractiveObjectEntity(t *testing.T) {
	em := ecs.NewEntityManager()

	id := NewInteractiveObjectEntity(em, config.CategoryFruit, "Fresa")

	obj, ok := ecs.GetComponent[*components.InteractiveObjectComponent](em, id)
	if !ok {
		t.Fatal("InteractiveObjectComponent missing")
	}
	if obj.Name != "Fresa" || obj.Category != config.CategoryFruit {
		t.Errorf("unexpected component: %+v", obj)
	}
	if obj.Highlighted {
		t.Error("new objects must start unhighlighted")
	}
}

func TestNewSpawnedObjectEntity(t *testing.T) {
	em := ecs.NewEntityManager()

	id := NewSpawnedObjectEntity(em, config.SpawnerConfig{Name: "Amor", Category: config.CategoryPotion}, 4)

	spawned, ok := ecs.GetComponent[*components.SpawnedByComponent](em, id)
	if !ok || spawned.SpawnerIndex != 4 {
		t.Errorf("SpawnedByComponent = %+v, %v", spawned, ok)
	}
	if !ecs.HasComponentOf[*components.InteractiveObjectComponent](em, id) {
		t.Error("spawned entity must be an interactive object")
	}
}
