package exercise

import (
	"strings"
	"unicode/utf8"

	"github.com/decker502/magicword/pkg/config"
	"github.com/decker502/magicword/pkg/systems"
)

// findExactMatch 名称与单词完全一致（忽略大小写，药水比较去前缀的名称）的第一个物体
func findExactMatch(objs []systems.SceneObject, name string) (systems.SceneObject, bool) {
	bare := config.BarePotionName(name)
	for _, obj := range objs {
		if strings.EqualFold(obj.Name, name) || strings.EqualFold(config.BarePotionName(obj.Name), bare) {
			return obj, true
		}
	}
	return systems.SceneObject{}, false
}

// matchBySyllable 音节集合中包含 target 的物体
func matchBySyllable(bank *config.WordBank, objs []systems.SceneObject, target string) []systems.SceneObject {
	var result []systems.SceneObject
	for _, obj := range objs {
		for _, s := range bank.SyllablesOf(config.BarePotionName(obj.Name)) {
			if strings.EqualFold(s, target) {
				result = append(result, obj)
				break
			}
		}
	}
	return result
}

// matchByInitial 任一音节以 syllable 的首字母开头的物体；首字母为元音时没有候选
func matchByInitial(bank *config.WordBank, objs []systems.SceneObject, syllable string) []systems.SceneObject {
	first, size := utf8.DecodeRuneInString(syllable)
	if size == 0 || isVowel(first) {
		return nil
	}
	prefix := strings.ToLower(string(first))

	var result []systems.SceneObject
	for _, obj := range objs {
		for _, s := range bank.SyllablesOf(config.BarePotionName(obj.Name)) {
			if strings.HasPrefix(strings.ToLower(s), prefix) {
				result = append(result, obj)
				break
			}
		}
	}
	return result
}

// matchByWords 为每个原始单词找到第一个名称匹配的物体（药水比较去前缀的名称）
func matchByWords(objs []systems.SceneObject, words []string) []systems.SceneObject {
	seen := make(map[string]bool)
	var result []systems.SceneObject
	for _, w := range words {
		bare := config.BarePotionName(w)
		key := strings.ToLower(bare)
		if seen[key] {
			continue
		}
		for _, obj := range objs {
			if strings.EqualFold(obj.Name, w) || strings.EqualFold(config.BarePotionName(obj.Name), bare) {
				seen[key] = true
				result = append(result, obj)
				break
			}
		}
	}
	return result
}
