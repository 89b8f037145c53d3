package components

import (
	"log"

	"github.com/decker502/magicword/pkg/config"
)

// InteractiveObjectComponent 可交互物体组件
//
// 场景中可被魔法文字"点亮"的物体（蔬菜、水果、药水）。
// Highlighted 是物体唯一的"这就是答案"状态。
type InteractiveObjectComponent struct {
	Category    config.Category // 分类 0=蔬菜 1=水果 2=药水
	Name        string          // 显示名称（与单词文本一致时可精确匹配）
	Highlighted bool            // 是否处于高亮（被选为答案）状态
}

// ApplyHighlight 点亮物体
func (c *InteractiveObjectComponent) ApplyHighlight() {
	if !c.Highlighted {
		log.Printf("[InteractiveObject] %s -> highlighted", c.Name)
	}
	c.Highlighted = true
}

// ClearHighlight 取消高亮，恢复默认状态（可重复调用）
func (c *InteractiveObjectComponent) ClearHighlight() {
	c.Highlighted = false
}
