package config

// 布局配置常量
// 本文件定义了练习画面中的布局参数，包括窗口尺寸、文字区域、物体列表和关卡面板位置

// 窗口尺寸（逻辑分辨率）
const (
	GameWindowWidth  = 960
	GameWindowHeight = 540
)

// 魔法文字区域
const (
	// MagicTextX 魔法文字左上角 X
	MagicTextX = 80
	// MagicTextBaseY 上升动画结束时文字所在的 Y
	MagicTextBaseY = 160
	// MagicTextRise 上升动画的总位移（像素），字号从最小到最大时文字上移该距离
	MagicTextRise = 80
	// DebugLineHeight 调试字体的行高
	DebugLineHeight = 16
)

// 场景物体列表
const (
	ObjectListX = 620
	ObjectListY = 40
)

// 关卡面板
const (
	LevelPanelX = 80
	LevelPanelY = 300
)

// ColorSwatchSize 第 7 关情绪颜色色块边长
const ColorSwatchSize = 24

// MagicTextY 根据上升动画进度（0~1）计算文字的 Y 坐标
func MagicTextY(progress float64) int {
	if progress < 0 {
		progress = 0
	}
	if progress > 1 {
		progress = 1
	}
	return MagicTextBaseY + int(float64(MagicTextRise)*(1-progress))
}

// ObjectListLineY 物体列表第 i 行的 Y 坐标
func ObjectListLineY(i int) int {
	return ObjectListY + (i+1)*DebugLineHeight
}
