package systems

import (
	"log"

	"github.com/decker502/magicword/pkg/components"
	"github.com/decker502/magicword/pkg/config"
	"github.com/decker502/magicword/pkg/ecs"
	"github.com/decker502/magicword/pkg/entities"
)

// SpawnerSystem 可交互物体生成系统
//
// 每个生成器维护自己的计时器：场景中该生成器的物体数量低于上限时，
// 每隔 Interval 秒补充一个。
type SpawnerSystem struct {
	entityManager *ecs.EntityManager
	spawners      []config.SpawnerConfig
	timers        []float64
}

// NewSpawnerSystem 创建生成系统
func NewSpawnerSystem(em *ecs.EntityManager, scene *config.SceneConfig) *SpawnerSystem {
	spawners := make([]config.SpawnerConfig, len(scene.Spawners))
	copy(spawners, scene.Spawners)
	log.Printf("[SpawnerSystem] Initialized with %d spawner(s)", len(spawners))
	return &SpawnerSystem{
		entityManager: em,
		spawners:      spawners,
		timers:        make([]float64, len(spawners)),
	}
}

// GenerateUpToLimit 立即为每个生成器补足到上限（场景加载时调用）
// 返回: 新创建的物体数量
func (s *SpawnerSystem) GenerateUpToLimit() int {
	counts := s.liveCounts()
	created := 0
	for i, sp := range s.spawners {
		for n := counts[i]; n < sp.MaxCount; n++ {
			entities.NewSpawnedObjectEntity(s.entityManager, sp, i)
			created++
		}
		s.timers[i] = 0
	}
	return created
}

// Update 推进生成计时器
func (s *SpawnerSystem) Update(dt float64) {
	counts := s.liveCounts()
	for i, sp := range s.spawners {
		if counts[i] >= sp.MaxCount {
			s.timers[i] = 0
			continue
		}

		s.timers[i] += dt
		if s.timers[i] >= sp.Interval {
			s.timers[i] = 0
			id := entities.NewSpawnedObjectEntity(s.entityManager, sp, i)
			log.Printf("[SpawnerSystem] Respawned %q (ID: %d)", sp.Name, id)
		}
	}
}

// LiveCount 指定生成器当前在场景中的物体数量
func (s *SpawnerSystem) LiveCount(spawnerIndex int) int {
	return s.liveCounts()[spawnerIndex]
}

func (s *SpawnerSystem) liveCounts() []int {
	counts := make([]int, len(s.spawners))
	for _, id := range ecs.GetEntitiesWith1[*components.SpawnedByComponent](s.entityManager) {
		sb, _ := ecs.GetComponent[*components.SpawnedByComponent](s.entityManager, id)
		if sb.SpawnerIndex >= 0 && sb.SpawnerIndex < len(counts) {
			counts[sb.SpawnerIndex]++
		}
	}
	return counts
}
