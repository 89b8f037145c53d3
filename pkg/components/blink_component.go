package components

// BlinkComponent 多次闪烁效果组件
//
// 序列：点亮 → 每半个间隔切换一次 → 共 Times 次"灭-亮"循环 → 最终保持点亮。
// 由 InteractiveObjectSystem 每帧推进，完成后移除。
type BlinkComponent struct {
	PhasesLeft int     // 剩余的半周期数（初始为 Times*2）
	Step       float64 // 半周期时长（秒）= interval / 2
	Elapsed    float64 // 当前半周期已过时间（秒）
	Generation uint64  // 发起闪烁时的回合代数
}
