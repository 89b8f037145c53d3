package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// LevelCount 练习关卡数量（索引 0-6 对应第 1-7 关）
const LevelCount = 7

// LevelDefinition 关卡定义
// 描述关卡的显示名称、说明以及语速倍率
type LevelDefinition struct {
	Name        string  `yaml:"name"`        // 关卡名称，如 "Nivel 1: Sílaba inicial"
	Description string  `yaml:"description"` // 关卡说明
	SpeechRate  float64 `yaml:"speechRate"`  // 语速倍率（逐字显示速度 × 该值），默认 1.0
}

// levelDefinitionsFile YAML 文件结构
type levelDefinitionsFile struct {
	Levels []LevelDefinition `yaml:"levels"`
}

// DefaultLevelDefinitions 返回内置的 7 个关卡定义
func DefaultLevelDefinitions() []LevelDefinition {
	return []LevelDefinition{
		{Name: "Nivel 1: Sílaba inicial", Description: "Pronunciar una sílaba de la palabra", SpeechRate: 1.0},
		{Name: "Nivel 2: Repetición", Description: "Repetir la sílaba varias veces", SpeechRate: 1.0},
		{Name: "Nivel 3: Variación de vocales", Description: "Cambiar la vocal manteniendo la consonante", SpeechRate: 1.0},
		{Name: "Nivel 4: Diferentes consonantes", Description: "Alternancia de sílabas de diferentes palabras", SpeechRate: 1.0},
		{Name: "Nivel 5: Sílaba con tamaños variables", Description: "Repetir una sílaba con diferentes tamaños", SpeechRate: 0.8},
		{Name: "Nivel 6: Palabra completa con sílabas", Description: "Mostrar todas las sílabas con diferentes tamaños", SpeechRate: 0.9},
		{Name: "Nivel 7: Palabra completa", Description: "Repetir la palabra completa", SpeechRate: 1.0},
	}
}

// LoadLevelDefinitions 从 YAML 数据加载关卡定义
// 参数：
//
//	data - YAML 文件内容
//
// 返回：
//
//	[]LevelDefinition - 解析并补齐默认值后的关卡定义
//	error - 解析或校验失败时返回错误
func LoadLevelDefinitions(data []byte) ([]LevelDefinition, error) {
	var file levelDefinitionsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse level definitions YAML: %w", err)
	}

	applyLevelDefaults(file.Levels)

	if err := validateLevelDefinitions(file.Levels); err != nil {
		return nil, fmt.Errorf("invalid level definitions: %w", err)
	}

	return file.Levels, nil
}

// applyLevelDefaults 为缺失的可选字段设置默认值
func applyLevelDefaults(levels []LevelDefinition) {
	for i := range levels {
		// 未配置语速时使用 1.0
		if levels[i].SpeechRate == 0 {
			levels[i].SpeechRate = 1.0
		}
	}
}

// validateLevelDefinitions 校验关卡定义的完整性
func validateLevelDefinitions(levels []LevelDefinition) error {
	if len(levels) != LevelCount {
		return fmt.Errorf("expected %d levels, got %d", LevelCount, len(levels))
	}

	for i, level := range levels {
		if level.Name == "" {
			return fmt.Errorf("level %d: name is required", i+1)
		}
		if level.SpeechRate < 0 {
			return fmt.Errorf("level %d: speechRate cannot be negative, got %v", i+1, level.SpeechRate)
		}
	}

	return nil
}
