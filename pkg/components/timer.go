package components

// TimerComponent 通用一次性计时器
// 用于回合结束延迟、庆祝效果停止等需要时间延迟的行为
type TimerComponent struct {
	Name        string  // 计时器用途标签，如 "round_end"
	TargetTime  float64 // 目标时间（秒）
	CurrentTime float64 // 当前已过时间（秒）
	IsReady     bool    // 计时器是否已完成
	Generation  uint64  // 调度时的回合代数，0 表示不绑定回合
}

// Advance 推进计时器，返回本次是否刚好完成
func (t *TimerComponent) Advance(deltaTime float64) bool {
	if t.IsReady {
		return false
	}
	t.CurrentTime += deltaTime
	if t.CurrentTime >= t.TargetTime {
		t.IsReady = true
		return true
	}
	return false
}
