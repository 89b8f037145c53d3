package systems

import (
	"log"

	"github.com/decker502/magicword/pkg/components"
	"github.com/decker502/magicword/pkg/ecs"
)

// EliminationSystem 消除系统
// 一次性移除场景中所有被点亮（含闪烁中）的物体
type EliminationSystem struct {
	entityManager *ecs.EntityManager
	objects       *InteractiveObjectSystem
}

// NewEliminationSystem 创建消除系统
func NewEliminationSystem(em *ecs.EntityManager, objects *InteractiveObjectSystem) *EliminationSystem {
	return &EliminationSystem{
		entityManager: em,
		objects:       objects,
	}
}

// EliminateHighlighted 销毁所有被标记的物体，返回被消除物体的名称
func (s *EliminationSystem) EliminateHighlighted() []string {
	marked := s.objects.MarkedObjects()
	names := make([]string, 0, len(marked))

	for _, id := range marked {
		if obj, ok := ecs.GetComponent[*components.InteractiveObjectComponent](s.entityManager, id); ok {
			names = append(names, obj.Name)
		}
		s.entityManager.DestroyEntity(id)
	}

	if len(marked) > 0 {
		// 立即清理，保证同一帧内的场景查询不再看到被消除的物体
		s.entityManager.RemoveMarkedEntities()
		log.Printf("[EliminationSystem] Eliminated %d object(s): %v", len(names), names)
	}
	return names
}
