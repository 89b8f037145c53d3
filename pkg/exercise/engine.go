package exercise

import (
	"errors"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/decker502/magicword/pkg/config"
	"github.com/decker502/magicword/pkg/ecs"
	"github.com/decker502/magicword/pkg/systems"
)

var (
	// ErrLevelOutOfRange 关卡索引超出范围
	ErrLevelOutOfRange = errors.New("level out of range")
	// ErrNoActiveRound 当前没有进行中的回合
	ErrNoActiveRound = errors.New("no active round")
)

// 计时器用途
const (
	timerRoundEnd    = "round_end"
	timerCelebration = "celebration"

	failedRoundDelay    = 0.5 // 无匹配时延迟结束（秒）
	celebrationDuration = 5.0 // 消除后庆祝效果持续时间（秒）
)

// SceneIndex 场景物体查询与高亮能力
type SceneIndex interface {
	AllInteractiveObjects() []systems.SceneObject
	ApplyHighlight(id ecs.EntityID) bool
	BlinkMultiple(id ecs.EntityID, times int, interval float64, generation uint64) bool
	HighlightedCount() int
}

// Eliminator 消除所有被点亮的物体
type Eliminator interface {
	EliminateHighlighted() []string
}

// Scheduler 一次性计时器（按用途合并、按回合代数过期）
type Scheduler interface {
	Schedule(purpose string, delay float64, generation uint64, fn func())
	Cancel(purpose string)
	Update(dt float64, liveGeneration uint64)
}

// Deps 引擎依赖
type Deps struct {
	Words      *config.WordBank
	Levels     []config.LevelDefinition // 为空时使用内置定义
	Scene      SceneIndex
	Eliminator Eliminator
	Timers     Scheduler
	Stats      StatsRecorder // 可选
	Sink       EventSink     // 可选
	Rand       Randomizer    // 为空时使用基于时间的随机源
	Display    DisplaySettings
	Now        func() time.Time // 为空时使用 time.Now
}

// Effects 每帧 Tick 的输出
type Effects struct {
	Display DisplayIntent
	Events  []Event
}

// Engine 魔法文字练习引擎
//
// 7 个关卡组成的状态机：选择单词、按关卡规则生成显示文本、
// 统计剩余回答次数、在场景中匹配并点亮答案物体。
// 所有方法都应在同一个帧循环 goroutine 中调用。
type Engine struct {
	words      *config.WordBank
	levels     []config.LevelDefinition
	scene      SceneIndex
	eliminator Eliminator
	timers     Scheduler
	stats      StatsRecorder
	sink       EventSink
	rng        Randomizer
	now        func() time.Time

	level      int
	generation uint64
	round      *round
	animator   textAnimator

	// 当前回合被点亮物体的引用
	highlighted []ecs.EntityID
	celebrating bool

	pending []Event
}

// NewEngine 创建练习引擎
func NewEngine(deps Deps) (*Engine, error) {
	if deps.Words == nil {
		return nil, fmt.Errorf("word bank is required")
	}
	if deps.Scene == nil || deps.Eliminator == nil || deps.Timers == nil {
		return nil, fmt.Errorf("scene index, eliminator and timers are required")
	}

	levels := deps.Levels
	if len(levels) == 0 {
		levels = config.DefaultLevelDefinitions()
	}
	if len(levels) != config.LevelCount {
		return nil, fmt.Errorf("expected %d level definitions, got %d", config.LevelCount, len(levels))
	}

	rng := deps.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}

	e := &Engine{
		words:      deps.Words,
		levels:     levels,
		scene:      deps.Scene,
		eliminator: deps.Eliminator,
		timers:     deps.Timers,
		stats:      deps.Stats,
		sink:       deps.Sink,
		rng:        rng,
		now:        now,
		animator:   textAnimator{settings: deps.Display},
	}
	log.Printf("[MagicText] Engine initialized: level=%s", levels[0].Name)
	return e, nil
}

// Level 当前选择的关卡索引（0-6）
func (e *Engine) Level() int { return e.level }

// Generation 当前回合代数
func (e *Engine) Generation() uint64 { return e.generation }

// Active 是否有进行中的回合
func (e *Engine) Active() bool { return e.round != nil && e.round.active }

// Remaining 当前回合剩余次数
func (e *Engine) Remaining() int {
	if e.round == nil {
		return 0
	}
	return e.round.remaining
}

// SetDisplaySettings 更新显示设置（从下一次文本刷新开始生效）
func (e *Engine) SetDisplaySettings(s DisplaySettings) {
	e.animator.settings = s
}

// SelectLevel 选择关卡（索引 0-6）
// 进行中的回合保持开始时的关卡，新关卡从下一回合生效。
func (e *Engine) SelectLevel(level int) error {
	if level < 0 || level >= len(e.levels) {
		log.Printf("[MagicText] Warning: level %d out of range [0,%d)", level, len(e.levels))
		return fmt.Errorf("select level %d: %w", level, ErrLevelOutOfRange)
	}
	e.level = level
	e.emit(Event{Kind: EventLevelChanged, Level: level, Reason: e.levels[level].Name})
	return nil
}

// StartRound 开始新回合；已有回合时放弃旧回合
// 上一回合点亮的物体保持点亮，直到 Sweep 消除它们。
func (e *Engine) StartRound() {
	if e.Active() {
		log.Printf("[MagicText] Abandoning round %d", e.generation)
	}

	e.generation++
	e.timers.Cancel(timerRoundEnd)

	category := config.Category(e.rng.Intn(config.CategoryCount))
	words := e.words.WordsFor(category)
	word := words[e.rng.Intn(len(words))]

	r := &round{
		generation: e.generation,
		level:      e.level,
		category:   category,
		word:       word.Text,
		matchName:  word.Text,
		active:     true,
	}
	if e.level == config.LevelCount-1 && category == config.CategoryPotion {
		r.word = config.PotionName(word.Text)
	}
	r.syllables = e.words.SyllablesOf(r.matchName)

	policy := policies[r.level]
	policy.setup(e, r)
	r.initialAttempts = r.remaining
	policy.compose(e, r)

	e.round = r
	e.animator.restart(r.fullText)
	e.emit(Event{Kind: EventRoundStarted, Word: r.word})
}

// Respond 记录一次回答（正确或错误都使剩余次数减一）
func (e *Engine) Respond(success bool) error {
	if !e.Active() {
		e.emit(Event{Kind: EventResponseIgnored, Success: success, Reason: "no active round"})
		return ErrNoActiveRound
	}
	r := e.round
	policy := policies[r.level]

	r.remaining--
	policy.advance(r)
	policy.compose(e, r)
	e.animator.refresh(r.fullText)

	if e.stats != nil {
		if err := e.stats.RecordResponse(r.level, success); err != nil {
			log.Printf("[MagicText] Warning: failed to record response: %v", err)
		} else {
			e.emit(Event{Kind: EventStatisticsUpdated, Success: success})
		}
	}

	kind := EventResponseRejected
	if success {
		kind = EventResponseAccepted
	}
	e.emit(Event{Kind: kind, Success: success})

	switch {
	case r.remaining == 0 && len(e.highlighted) == 0 && e.scene.HighlightedCount() == 0:
		e.resolve(r)
	case r.remaining == 0:
		// 上一回合的答案还没有被消除
		e.emit(Event{Kind: EventRoundHeld, Reason: "previous answer not swept"})
	case r.remaining < 0:
		if e.scene.HighlightedCount() == 0 {
			e.endRound("attempts exhausted")
		} else {
			e.emit(Event{Kind: EventRoundHeld, Reason: "highlighted objects remain in scene"})
		}
	}
	return nil
}

// Sweep 消除所有被点亮的物体并结束当前回合
func (e *Engine) Sweep() []string {
	names := e.eliminator.EliminateHighlighted()
	e.emit(Event{Kind: EventObjectsSwept, Objects: names})

	e.highlighted = nil
	if e.Active() {
		e.endRound("swept")
	}

	if len(names) > 0 {
		e.celebrating = true
		e.timers.Schedule(timerCelebration, celebrationDuration, 0, func() {
			e.celebrating = false
		})
	}
	return names
}

// Tick 按顺序处理输入事件，推进时钟与动画，返回显示意图和本帧事件
func (e *Engine) Tick(dt float64, events []InputEvent) Effects {
	for _, ev := range events {
		e.apply(ev)
	}

	e.timers.Update(dt, e.generation)
	e.animator.advance(dt, e.speechRate())

	out := e.pending
	e.pending = nil
	return Effects{Display: e.Display(), Events: out}
}

// Display 当前显示意图
func (e *Engine) Display() DisplayIntent {
	def := e.levels[e.level]
	intent := DisplayIntent{
		Scale:            1.0,
		LevelName:        def.Name,
		LevelDescription: def.Description,
		Celebrating:      e.celebrating,
	}
	if !e.Active() {
		return intent
	}

	r := e.round
	intent.Visible = true
	intent.Text = e.animator.visibleText()
	intent.FullText = r.fullText
	intent.Scale = r.scale()
	intent.FontSize = e.animator.fontSize()
	intent.Color, intent.HasColor = r.color()
	intent.Segments = r.segments()
	return intent
}

func (e *Engine) apply(ev InputEvent) {
	switch ev.Kind {
	case InputSelectLevel:
		_ = e.SelectLevel(ev.Level)
	case InputStartRound:
		e.StartRound()
	case InputRespondSuccess:
		_ = e.Respond(true)
	case InputRespondFailure:
		_ = e.Respond(false)
	case InputSweep:
		e.Sweep()
	default:
		log.Printf("[MagicText] Warning: unknown input kind %d", ev.Kind)
	}
}

// resolve 剩余次数归零：在场景中寻找答案
func (e *Engine) resolve(r *round) {
	policy := policies[r.level]
	objs := e.scene.AllInteractiveObjects()

	if policy.usesExactMatch() {
		if obj, ok := findExactMatch(objs, r.matchName); ok {
			e.highlight(r, []systems.SceneObject{obj}, "exact match")
			return
		}
	}

	candidates := policy.candidates(e, r, objs)
	if len(candidates) == 0 {
		e.emit(Event{Kind: EventRoundFailed, Reason: fmt.Sprintf("no object matches %q", r.baseText)})
		gen := r.generation
		e.timers.Schedule(timerRoundEnd, failedRoundDelay, gen, func() {
			if e.round == r && r.active {
				e.endRound("no match")
			}
		})
		return
	}

	if policy.highlightsAll() {
		e.highlight(r, candidates, "all matches")
		return
	}
	pick := candidates[e.rng.Intn(len(candidates))]
	e.highlight(r, []systems.SceneObject{pick}, "random candidate")
}

func (e *Engine) highlight(r *round, objs []systems.SceneObject, reason string) {
	policy := policies[r.level]
	names := make([]string, 0, len(objs))
	for _, obj := range objs {
		var ok bool
		if policy.blinks() {
			ok = e.scene.BlinkMultiple(obj.ID, r.initialAttempts, blinkInterval, r.generation)
		} else {
			ok = e.scene.ApplyHighlight(obj.ID)
		}
		if ok {
			e.highlighted = append(e.highlighted, obj.ID)
			names = append(names, obj.Name)
		}
	}
	e.emit(Event{Kind: EventRoundResolved, Objects: names, Reason: reason})
}

func (e *Engine) endRound(reason string) {
	if e.round == nil {
		return
	}
	e.round.active = false
	e.timers.Cancel(timerRoundEnd)
	e.emit(Event{Kind: EventRoundEnded, Reason: reason})
}

func (e *Engine) speechRate() float64 {
	if e.round == nil {
		return e.levels[e.level].SpeechRate
	}
	return e.levels[e.round.level].SpeechRate
}

// emit 补全回合上下文后分发事件
func (e *Engine) emit(ev Event) {
	ev.At = e.now()
	if ev.Generation == 0 {
		ev.Generation = e.generation
	}
	if r := e.round; r != nil && ev.Kind != EventLevelChanged {
		ev.Level = r.level
		if ev.Word == "" {
			ev.Word = r.word
		}
		ev.Text = r.fullText
		ev.Remaining = r.remaining
	}
	e.pending = append(e.pending, ev)
	if e.sink != nil {
		e.sink.Emit(ev)
	}
}
