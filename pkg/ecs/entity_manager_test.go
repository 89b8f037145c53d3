package ecs

import (
	"reflect"
	"testing"
)

// 测试组件类型定义
type testNameComponent struct {
	Name string
}

type testFlagComponent struct {
	On bool
}

func TestCreateEntity(t *testing.T) {
	em := NewEntityManager()
	id1 := em.CreateEntity()
	id2 := em.CreateEntity()

	// 测试实体ID唯一性
	if id1 == id2 {
		t.Error("Entity IDs should be unique")
	}

	// 测试ID从1开始
	if id1 != 1 {
		t.Errorf("First entity ID should be 1, got %d", id1)
	}

	if !em.Exists(id1) || em.Exists(InvalidEntity) {
		t.Error("Exists() reported wrong state")
	}
}

func TestAddAndGetComponent(t *testing.T) {
	em := NewEntityManager()
	id := em.CreateEntity()

	em.AddComponent(id, &testNameComponent{Name: "Tomate"})

	comp, found := GetComponent[*testNameComponent](em, id)
	if !found {
		t.Fatal("Component should be found")
	}
	if comp.Name != "Tomate" {
		t.Errorf("Component data mismatch, expected Tomate, got %q", comp.Name)
	}

	// 通过指针修改后再次获取应看到新值
	comp.Name = "Fresa"
	again, _ := GetComponent[*testNameComponent](em, id)
	if again.Name != "Fresa" {
		t.Errorf("expected pointer semantics, got %q", again.Name)
	}
}

func TestRemoveComponent(t *testing.T) {
	em := NewEntityManager()
	id := em.CreateEntity()
	em.AddComponent(id, &testFlagComponent{On: true})

	if !HasComponentOf[*testFlagComponent](em, id) {
		t.Fatal("component should exist before removal")
	}

	RemoveComponentOf[*testFlagComponent](em, id)

	if HasComponentOf[*testFlagComponent](em, id) {
		t.Error("component should be removed")
	}
	if em.HasComponent(id, reflect.TypeOf(&testFlagComponent{})) {
		t.Error("HasComponent should agree with HasComponentOf")
	}
}

func TestDestroyEntity_Deferred(t *testing.T) {
	em := NewEntityManager()
	id := em.CreateEntity()
	em.AddComponent(id, &testNameComponent{Name: "Vida"})

	em.DestroyEntity(id)

	// 标记删除后，清理前仍然存在
	if !em.Exists(id) {
		t.Error("entity should still exist before RemoveMarkedEntities")
	}

	em.RemoveMarkedEntities()

	if em.Exists(id) {
		t.Error("entity should be gone after RemoveMarkedEntities")
	}
	if _, ok := GetComponent[*testNameComponent](em, id); ok {
		t.Error("components of a removed entity should not be found")
	}
}

func TestGetEntitiesWith_SortedAndFiltered(t *testing.T) {
	em := NewEntityManager()

	var withBoth []EntityID
	for i := 0; i < 20; i++ {
		id := em.CreateEntity()
		em.AddComponent(id, &testNameComponent{})
		if i%2 == 0 {
			em.AddComponent(id, &testFlagComponent{})
			withBoth = append(withBoth, id)
		}
	}

	names := GetEntitiesWith1[*testNameComponent](em)
	if len(names) != 20 {
		t.Fatalf("expected 20 entities, got %d", len(names))
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] >= names[i] {
			t.Fatalf("result not sorted at %d: %v", i, names)
		}
	}

	both := GetEntitiesWith2[*testNameComponent, *testFlagComponent](em)
	if len(both) != len(withBoth) {
		t.Fatalf("expected %d entities, got %d", len(withBoth), len(both))
	}
	for i := range both {
		if both[i] != withBoth[i] {
			t.Errorf("index %d: expected %d, got %d", i, withBoth[i], both[i])
		}
	}
}
