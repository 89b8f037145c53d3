package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// SpawnerConfig 可交互物体生成器配置
// 每个生成器负责一种物体，场景中数量不足时按间隔补充
type SpawnerConfig struct {
	Name     string   `yaml:"name"`     // 物体名称（需与单词文本一致才能精确匹配）
	Category Category `yaml:"category"` // 分类编码 0=蔬菜 1=水果 2=药水
	MaxCount int      `yaml:"maxCount"` // 场景中同时存在的最大数量，默认 1
	Interval float64  `yaml:"interval"` // 两次生成之间的间隔（秒），默认 5
}

// SceneConfig 场景配置
type SceneConfig struct {
	Spawners []SpawnerConfig `yaml:"spawners"`
}

const (
	defaultSpawnerMaxCount = 1
	defaultSpawnerInterval = 5.0
)

// DefaultSceneConfig 为单词库中的每个单词创建一个生成器
func DefaultSceneConfig(bank *WordBank) *SceneConfig {
	cfg := &SceneConfig{}
	for _, w := range bank.AllWords() {
		cfg.Spawners = append(cfg.Spawners, SpawnerConfig{
			Name:     w.Text,
			Category: w.Category,
			MaxCount: defaultSpawnerMaxCount,
			Interval: defaultSpawnerInterval,
		})
	}
	return cfg
}

// LoadSceneConfig 从 YAML 数据加载场景配置
func LoadSceneConfig(data []byte) (*SceneConfig, error) {
	var cfg SceneConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse scene config YAML: %w", err)
	}

	for i := range cfg.Spawners {
		if cfg.Spawners[i].MaxCount == 0 {
			cfg.Spawners[i].MaxCount = defaultSpawnerMaxCount
		}
		if cfg.Spawners[i].Interval == 0 {
			cfg.Spawners[i].Interval = defaultSpawnerInterval
		}
	}

	if err := validateSceneConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid scene config: %w", err)
	}

	return &cfg, nil
}

func validateSceneConfig(cfg *SceneConfig) error {
	for i, s := range cfg.Spawners {
		if s.Name == "" {
			return fmt.Errorf("spawner %d: name is required", i)
		}
		if !s.Category.Valid() {
			return fmt.Errorf("spawner %d (%s): category must be 0, 1 or 2, got %d", i, s.Name, s.Category)
		}
		if s.MaxCount < 1 {
			return fmt.Errorf("spawner %d (%s): maxCount must be at least 1, got %d", i, s.Name, s.MaxCount)
		}
		if s.Interval < 0 {
			return fmt.Errorf("spawner %d (%s): interval cannot be negative, got %v", i, s.Name, s.Interval)
		}
	}
	return nil
}
