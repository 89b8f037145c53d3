package systems

import (
	"log"

	"github.com/decker502/magicword/pkg/components"
	"github.com/decker502/magicword/pkg/ecs"
)

// TimerSystem 一次性计时器系统
//
// 每个计时器以用途标签为键：同一用途重新调度会替换未触发的旧计时器。
// 计时器记录调度时的回合代数，回合过期后触发的计时器被丢弃。
// Generation 为 0 的计时器不绑定回合。
type TimerSystem struct {
	entityManager *ecs.EntityManager
	byPurpose     map[string]ecs.EntityID
	callbacks     map[ecs.EntityID]func()
}

// NewTimerSystem 创建计时器系统
func NewTimerSystem(em *ecs.EntityManager) *TimerSystem {
	return &TimerSystem{
		entityManager: em,
		byPurpose:     make(map[string]ecs.EntityID),
		callbacks:     make(map[ecs.EntityID]func()),
	}
}

// Schedule 在 delay 秒后执行 fn
func (s *TimerSystem) Schedule(purpose string, delay float64, generation uint64, fn func()) {
	if _, exists := s.byPurpose[purpose]; exists {
		log.Printf("[TimerSystem] Replacing pending timer %q", purpose)
		s.Cancel(purpose)
	}

	id := s.entityManager.CreateEntity()
	s.entityManager.AddComponent(id, &components.TimerComponent{
		Name:       purpose,
		TargetTime: delay,
		Generation: generation,
	})
	s.byPurpose[purpose] = id
	s.callbacks[id] = fn
}

// Cancel 取消指定用途的计时器（不存在时无操作）
func (s *TimerSystem) Cancel(purpose string) {
	id, exists := s.byPurpose[purpose]
	if !exists {
		return
	}
	s.release(id, purpose)
}

// Pending 指定用途的计时器是否尚未触发
func (s *TimerSystem) Pending(purpose string) bool {
	_, exists := s.byPurpose[purpose]
	return exists
}

// Update 推进所有计时器并执行到期的回调
// 参数：
//   - dt: 时间增量（秒）
//   - liveGeneration: 当前回合代数
func (s *TimerSystem) Update(dt float64, liveGeneration uint64) {
	entities := ecs.GetEntitiesWith1[*components.TimerComponent](s.entityManager)

	for _, id := range entities {
		timer, ok := ecs.GetComponent[*components.TimerComponent](s.entityManager, id)
		if !ok || !timer.Advance(dt) {
			continue
		}

		fn := s.callbacks[id]
		s.release(id, timer.Name)

		if timer.Generation != 0 && timer.Generation != liveGeneration {
			log.Printf("[TimerSystem] Dropping stale timer %q (generation %d, live %d)",
				timer.Name, timer.Generation, liveGeneration)
			continue
		}
		if fn != nil {
			fn()
		}
	}
}

func (s *TimerSystem) release(id ecs.EntityID, purpose string) {
	if timer, ok := ecs.GetComponent[*components.TimerComponent](s.entityManager, id); ok {
		timer.IsReady = true
	}
	if s.byPurpose[purpose] == id {
		delete(s.byPurpose, purpose)
	}
	delete(s.callbacks, id)
	s.entityManager.DestroyEntity(id)
}
