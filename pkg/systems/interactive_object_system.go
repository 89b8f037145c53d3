package systems

import (
	"log"

	"github.com/decker502/magicword/pkg/components"
	"github.com/decker502/magicword/pkg/config"
	"github.com/decker502/magicword/pkg/ecs"
)

// SceneObject 场景物体快照（只读）
type SceneObject struct {
	ID          ecs.EntityID
	Category    config.Category
	Name        string
	Highlighted bool
}

// InteractiveObjectSystem 可交互物体系统
//
// 对外提供场景索引能力：每次调用都重新查询实体，
// 以容忍生成器/消除系统在回合之间创建或销毁物体。
// 同时驱动物体的多次闪烁效果。
type InteractiveObjectSystem struct {
	entityManager *ecs.EntityManager
}

// NewInteractiveObjectSystem 创建可交互物体系统
func NewInteractiveObjectSystem(em *ecs.EntityManager) *InteractiveObjectSystem {
	return &InteractiveObjectSystem{
		entityManager: em,
	}
}

// AllInteractiveObjects 返回场景中所有可交互物体（按实体 ID 升序）
func (s *InteractiveObjectSystem) AllInteractiveObjects() []SceneObject {
	ids := ecs.GetEntitiesWith1[*components.InteractiveObjectComponent](s.entityManager)
	result := make([]SceneObject, 0, len(ids))
	for _, id := range ids {
		obj, ok := ecs.GetComponent[*components.InteractiveObjectComponent](s.entityManager, id)
		if !ok {
			continue
		}
		result = append(result, SceneObject{
			ID:          id,
			Category:    obj.Category,
			Name:        obj.Name,
			Highlighted: obj.Highlighted,
		})
	}
	return result
}

// ApplyHighlight 点亮指定物体，物体不存在时返回 false
func (s *InteractiveObjectSystem) ApplyHighlight(id ecs.EntityID) bool {
	obj, ok := ecs.GetComponent[*components.InteractiveObjectComponent](s.entityManager, id)
	if !ok {
		log.Printf("[InteractiveObjectSystem] Warning: entity %d is not an interactive object", id)
		return false
	}
	obj.ApplyHighlight()
	return true
}

// ClearHighlight 取消物体高亮，并停止其未完成的闪烁
func (s *InteractiveObjectSystem) ClearHighlight(id ecs.EntityID) {
	obj, ok := ecs.GetComponent[*components.InteractiveObjectComponent](s.entityManager, id)
	if !ok {
		return
	}
	ecs.RemoveComponentOf[*components.BlinkComponent](s.entityManager, id)
	obj.ClearHighlight()
}

// BlinkMultiple 让物体闪烁 times 次，每半个 interval 切换一次，最终保持点亮
//
// 同一物体上新的闪烁会替换未完成的旧闪烁。
// generation 为发起闪烁的回合代数，回合过期时闪烁直接结束于点亮状态。
func (s *InteractiveObjectSystem) BlinkMultiple(id ecs.EntityID, times int, interval float64, generation uint64) bool {
	if !s.ApplyHighlight(id) {
		return false
	}

	if times <= 0 || interval <= 0 {
		ecs.RemoveComponentOf[*components.BlinkComponent](s.entityManager, id)
		return true
	}

	if ecs.HasComponentOf[*components.BlinkComponent](s.entityManager, id) {
		log.Printf("[InteractiveObjectSystem] Replacing pending blink on entity %d", id)
	}

	s.entityManager.AddComponent(id, &components.BlinkComponent{
		PhasesLeft: times * 2,
		Step:       interval / 2,
		Generation: generation,
	})
	log.Printf("[InteractiveObjectSystem] Entity %d blinking %d times (interval=%.2fs)", id, times, interval)
	return true
}

// IsMarked 物体是否处于高亮或闪烁中
func (s *InteractiveObjectSystem) IsMarked(id ecs.EntityID) bool {
	if ecs.HasComponentOf[*components.BlinkComponent](s.entityManager, id) {
		return true
	}
	obj, ok := ecs.GetComponent[*components.InteractiveObjectComponent](s.entityManager, id)
	return ok && obj.Highlighted
}

// MarkedObjects 返回所有高亮或闪烁中的物体 ID
func (s *InteractiveObjectSystem) MarkedObjects() []ecs.EntityID {
	ids := ecs.GetEntitiesWith1[*components.InteractiveObjectComponent](s.entityManager)
	marked := make([]ecs.EntityID, 0)
	for _, id := range ids {
		if s.IsMarked(id) {
			marked = append(marked, id)
		}
	}
	return marked
}

// HighlightedCount 高亮（含闪烁中）的物体数量
func (s *InteractiveObjectSystem) HighlightedCount() int {
	return len(s.MarkedObjects())
}

// Update 推进所有闪烁效果
// 参数：
//   - dt: 时间增量（秒）
//   - liveGeneration: 当前回合代数
func (s *InteractiveObjectSystem) Update(dt float64, liveGeneration uint64) {
	entities := ecs.GetEntitiesWith2[*components.InteractiveObjectComponent, *components.BlinkComponent](s.entityManager)

	for _, id := range entities {
		obj, _ := ecs.GetComponent[*components.InteractiveObjectComponent](s.entityManager, id)
		blink, _ := ecs.GetComponent[*components.BlinkComponent](s.entityManager, id)

		if blink.Generation != liveGeneration {
			// 回合已过期：直接进入最终状态
			obj.Highlighted = true
			ecs.RemoveComponentOf[*components.BlinkComponent](s.entityManager, id)
			continue
		}

		blink.Elapsed += dt
		for blink.PhasesLeft > 0 && blink.Elapsed >= blink.Step {
			blink.Elapsed -= blink.Step
			blink.PhasesLeft--
			obj.Highlighted = !obj.Highlighted
		}

		if blink.PhasesLeft == 0 {
			obj.Highlighted = true
			ecs.RemoveComponentOf[*components.BlinkComponent](s.entityManager, id)
			log.Printf("[InteractiveObjectSystem] Entity %d blink finished", id)
		}
	}
}
