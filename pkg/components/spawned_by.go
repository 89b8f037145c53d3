package components

// SpawnedByComponent 记录物体由哪个生成器创建
type SpawnedByComponent struct {
	SpawnerIndex int
}
