package entities

import (
	"log"

	"github.com/decker502/magicword/pkg/components"
	"github.com/decker502/magicword/pkg/config"
	"github.com/decker502/magicword/pkg/ecs"
)

// NewInteractiveObjectEntity 创建一个可交互物体实体
// 参数:
//   - manager: EntityManager 实例
//   - category: 物体分类（蔬菜/水果/药水）
//   - name: 显示名称，与单词文本一致时可被精确匹配
//
// 返回: 创建的实体ID
func NewInteractiveObjectEntity(manager *ecs.EntityManager, category config.Category, name string) ecs.EntityID {
	id := manager.CreateEntity()

	manager.AddComponent(id, &components.InteractiveObjectComponent{
		Category: category,
		Name:     name,
	})

	log.Printf("[ObjectFactory] Created %s object %q (ID: %d)", category, name, id)
	return id
}

// NewSpawnedObjectEntity 由生成器创建可交互物体，并记录来源生成器
func NewSpawnedObjectEntity(manager *ecs.EntityManager, spawner config.SpawnerConfig, spawnerIndex int) ecs.EntityID {
	id := NewInteractiveObjectEntity(manager, spawner.Category, spawner.Name)
	manager.AddComponent(id, &components.SpawnedByComponent{SpawnerIndex: spawnerIndex})
	return id
}
