package exercise

import (
	"log"
	"strings"
	"time"
)

// EventKind 引擎事件类型
type EventKind string

const (
	EventLevelChanged      EventKind = "level_changed"
	EventRoundStarted      EventKind = "round_started"
	EventResponseAccepted  EventKind = "response_accepted"
	EventResponseRejected  EventKind = "response_rejected"
	EventResponseIgnored   EventKind = "response_ignored"
	EventRoundResolved     EventKind = "round_resolved"
	EventRoundFailed       EventKind = "round_failed"
	EventRoundHeld         EventKind = "round_held"
	EventRoundEnded        EventKind = "round_ended"
	EventObjectsSwept      EventKind = "objects_swept"
	EventStatisticsUpdated EventKind = "statistics_updated"
)

// Event 结构化的引擎事件，供日志、回合日志库和测试使用
type Event struct {
	Kind       EventKind
	Generation uint64   // 回合代数
	Level      int      // 关卡索引 0-6
	Word       string   // 本回合选中的单词
	Text       string   // 当前完整显示文本
	Remaining  int      // 剩余次数
	Success    bool     // 仅对回答事件有效
	Objects    []string // 涉及的物体名称（高亮/消除）
	Reason     string
	At         time.Time
}

// EventSink 事件接收者
type EventSink interface {
	Emit(ev Event)
}

// InputKind 抽象输入事件类型
type InputKind int

const (
	InputSelectLevel InputKind = iota
	InputStartRound
	InputRespondSuccess
	InputRespondFailure
	InputSweep
)

// InputEvent 抽象输入事件（与具体设备无关）
type InputEvent struct {
	Kind  InputKind
	Level int // 仅 InputSelectLevel 使用，关卡索引 0-6
}

// StatsRecorder 记录玩家回答结果（由会话层实现）
type StatsRecorder interface {
	RecordResponse(level int, success bool) error
}

// Randomizer 随机源，*rand.Rand 满足该接口
type Randomizer interface {
	Intn(n int) int
	Shuffle(n int, swap func(i, j int))
}

// LogSink 将事件写入标准日志
type LogSink struct{}

// Emit 实现 EventSink
func (LogSink) Emit(ev Event) {
	switch ev.Kind {
	case EventRoundStarted:
		log.Printf("[MagicText] Round %d started: level=%d word=%q text=%q remaining=%d",
			ev.Generation, ev.Level+1, ev.Word, ev.Text, ev.Remaining)
	case EventResponseAccepted, EventResponseRejected:
		log.Printf("[MagicText] Response (success=%v): remaining=%d text=%q", ev.Success, ev.Remaining, ev.Text)
	case EventRoundResolved:
		log.Printf("[MagicText] Round %d resolved (%s): %s", ev.Generation, ev.Reason, strings.Join(ev.Objects, ", "))
	case EventRoundFailed, EventRoundHeld, EventResponseIgnored:
		log.Printf("[MagicText] Warning: %s: %s", ev.Kind, ev.Reason)
	default:
		log.Printf("[MagicText] %s (round %d) %s", ev.Kind, ev.Generation, ev.Reason)
	}
}

// MultiSink 将事件分发给多个接收者
type MultiSink []EventSink

// Emit 实现 EventSink
func (m MultiSink) Emit(ev Event) {
	for _, s := range m {
		if s != nil {
			s.Emit(ev)
		}
	}
}
