// Package input 定义与设备无关的输入信号
//
// 宿主（Ebiten 窗口、终端）把按键翻译成 Signal，经过 CooldownGate 去抖后
// 转换为练习引擎的 InputEvent。
package input

import (
	"fmt"
	"log"

	"github.com/decker502/magicword/pkg/exercise"
)

// Signal 抽象输入信号
type Signal int

const (
	SelectLevel1 Signal = iota
	SelectLevel2
	SelectLevel3
	SelectLevel4
	SelectLevel5
	SelectLevel6
	SelectLevel7
	StartRound
	RespondSuccess
	RespondFailure
	Sweep
	ToggleLevelPanel

	signalCount
)

var signalNames = [signalCount]string{
	"SelectLevel1", "SelectLevel2", "SelectLevel3", "SelectLevel4",
	"SelectLevel5", "SelectLevel6", "SelectLevel7",
	"StartRound", "RespondSuccess", "RespondFailure", "Sweep", "ToggleLevelPanel",
}

func (s Signal) String() string {
	if s < 0 || s >= signalCount {
		return fmt.Sprintf("Signal(%d)", int(s))
	}
	return signalNames[s]
}

// SelectLevel 返回选择第 index 关（0-6）的信号
func SelectLevel(index int) (Signal, bool) {
	if index < 0 || index > int(SelectLevel7-SelectLevel1) {
		return 0, false
	}
	return SelectLevel1 + Signal(index), true
}

// LevelIndex 选择关卡信号对应的关卡索引
func (s Signal) LevelIndex() (int, bool) {
	if s < SelectLevel1 || s > SelectLevel7 {
		return 0, false
	}
	return int(s - SelectLevel1), true
}

// DefaultCooldown 默认冷却时间（秒），过滤手柄按键抖动造成的重复触发
const DefaultCooldown = 0.25

// CooldownGate 按信号分别计算冷却时间
type CooldownGate struct {
	cooldowns [signalCount]float64
	lastFired [signalCount]float64
	fired     [signalCount]bool
}

// NewCooldownGate 创建冷却门，所有信号使用相同的冷却时间
func NewCooldownGate(cooldown float64) *CooldownGate {
	g := &CooldownGate{}
	for i := range g.cooldowns {
		g.cooldowns[i] = cooldown
	}
	return g
}

// SetCooldown 设置单个信号的冷却时间（0 表示不限制）
func (g *CooldownGate) SetCooldown(s Signal, seconds float64) {
	if s < 0 || s >= signalCount {
		return
	}
	if seconds < 0 {
		seconds = 0
	}
	g.cooldowns[s] = seconds
}

// Allow 判断信号在游戏时间 now（秒）是否可以触发，允许时记录触发时间
func (g *CooldownGate) Allow(s Signal, now float64) bool {
	if s < 0 || s >= signalCount {
		return false
	}
	if g.fired[s] && now-g.lastFired[s] < g.cooldowns[s] {
		log.Printf("[Input] %s suppressed (cooldown %.2fs)", s, g.cooldowns[s])
		return false
	}
	g.fired[s] = true
	g.lastFired[s] = now
	return true
}

// Filter 过滤掉处于冷却中的信号
func (g *CooldownGate) Filter(signals []Signal, now float64) []Signal {
	var allowed []Signal
	for _, s := range signals {
		if g.Allow(s, now) {
			allowed = append(allowed, s)
		}
	}
	return allowed
}

// Reset 清除所有冷却记录
func (g *CooldownGate) Reset() {
	g.fired = [signalCount]bool{}
}

// ToEvents 把信号翻译为引擎输入事件；ToggleLevelPanel 由宿主处理，不产生事件
func ToEvents(signals []Signal) []exercise.InputEvent {
	events := make([]exercise.InputEvent, 0, len(signals))
	for _, s := range signals {
		if level, ok := s.LevelIndex(); ok {
			events = append(events, exercise.InputEvent{Kind: exercise.InputSelectLevel, Level: level})
			continue
		}
		switch s {
		case StartRound:
			events = append(events, exercise.InputEvent{Kind: exercise.InputStartRound})
		case RespondSuccess:
			events = append(events, exercise.InputEvent{Kind: exercise.InputRespondSuccess})
		case RespondFailure:
			events = append(events, exercise.InputEvent{Kind: exercise.InputRespondFailure})
		case Sweep:
			events = append(events, exercise.InputEvent{Kind: exercise.InputSweep})
		}
	}
	return events
}

// Contains 信号列表中是否包含 s
func Contains(signals []Signal, s Signal) bool {
	for _, v := range signals {
		if v == s {
			return true
		}
	}
	return false
}
