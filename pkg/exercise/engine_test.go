package exercise

import (
	"errors"
	"testing"

	"github.com/decker502/magicword/pkg/components"
	"github.com/decker502/magicword/pkg/config"
	"github.com/decker502/magicword/pkg/ecs"
	"github.com/decker502/magicword/pkg/entities"
	"github.com/decker502/magicword/pkg/systems"
)

// scriptedRand 按顺序返回预设值（对 n 取模），Shuffle 不改变顺序
type scriptedRand struct {
	values []int
	pos    int
}

func (s *scriptedRand) Intn(n int) int {
	if s.pos >= len(s.values) {
		return 0
	}
	v := s.values[s.pos] % n
	s.pos++
	return v
}

func (s *scriptedRand) Shuffle(n int, swap func(i, j int)) {}

type recordedResponse struct {
	level   int
	success bool
}

type fakeStats struct {
	calls []recordedResponse
}

func (f *fakeStats) RecordResponse(level int, success bool) error {
	f.calls = append(f.calls, recordedResponse{level, success})
	return nil
}

type testWorld struct {
	em      *ecs.EntityManager
	objects *systems.InteractiveObjectSystem
	timers  *systems.TimerSystem
	engine  *Engine
	stats   *fakeStats
	ids     map[string]ecs.EntityID
}

func newTestWorld(t *testing.T, level int, script []int, sceneObjects ...config.Word) *testWorld {
	t.Helper()
	em := ecs.NewEntityManager()
	objects := systems.NewInteractiveObjectSystem(em)
	timers := systems.NewTimerSystem(em)
	stats := &fakeStats{}

	w := &testWorld{em: em, objects: objects, timers: timers, stats: stats, ids: make(map[string]ecs.EntityID)}
	for _, o := range sceneObjects {
		w.ids[o.Text] = entities.NewInteractiveObjectEntity(em, o.Category, o.Text)
	}

	engine, err := NewEngine(Deps{
		Words:      config.DefaultWordBank(),
		Scene:      objects,
		Eliminator: systems.NewEliminationSystem(em, objects),
		Timers:     timers,
		Stats:      stats,
		Rand:       &scriptedRand{values: script},
	})
	if err != nil {
		t.Fatalf("NewEngine() error: %v", err)
	}
	if err := engine.SelectLevel(level); err != nil {
		t.Fatalf("SelectLevel(%d) error: %v", level, err)
	}
	w.engine = engine
	return w
}

// tick 模拟宿主帧循环：先推进物体系统，再推进引擎
func (w *testWorld) tick(dt float64, events ...InputEvent) Effects {
	w.objects.Update(dt, w.engine.Generation())
	fx := w.engine.Tick(dt, events)
	w.em.RemoveMarkedEntities()
	return fx
}

func (w *testWorld) highlighted(name string) bool {
	obj, ok := ecs.GetComponent[*components.InteractiveObjectComponent](w.em, w.ids[name])
	return ok && obj.Highlighted
}

func hasEvent(events []Event, kind EventKind) bool {
	for _, ev := range events {
		if ev.Kind == kind {
			return true
		}
	}
	return false
}

var (
	tomate   = config.Word{Text: "Tomate", Category: config.CategoryVegetable}
	pimiento = config.Word{Text: "Pimiento", Category: config.CategoryVegetable}
	pepino   = config.Word{Text: "Pepino", Category: config.CategoryVegetable}
	sandia   = config.Word{Text: "Sandía", Category: config.CategoryFruit}
	fresa    = config.Word{Text: "Fresa", Category: config.CategoryFruit}
	manzana  = config.Word{Text: "Manzana", Category: config.CategoryFruit}
	amor     = config.Word{Text: "Amor", Category: config.CategoryPotion}
)

// 第 1 关：Tomate 音节 "ma"，场景中有 Tomate → 精确匹配直接点亮
func TestLevel1_ExactMatchShortCircuit(t *testing.T) {
	w := newTestWorld(t, 0, []int{0, 0, 1}, tomate, fresa)

	fx := w.tick(0, InputEvent{Kind: InputStartRound})
	if !fx.Display.Visible || fx.Display.FullText != "ma" {
		t.Fatalf("display = %+v, want visible \"ma\"", fx.Display)
	}
	if w.engine.Remaining() != 1 {
		t.Fatalf("remaining = %d, want 1", w.engine.Remaining())
	}

	fx = w.tick(0, InputEvent{Kind: InputRespondSuccess})
	if !w.highlighted("Tomate") || w.highlighted("Fresa") {
		t.Error("expected only Tomate highlighted")
	}
	if !hasEvent(fx.Events, EventRoundResolved) {
		t.Error("expected round_resolved event")
	}
	if len(w.stats.calls) != 1 || w.stats.calls[0] != (recordedResponse{0, true}) {
		t.Errorf("stats calls = %+v", w.stats.calls)
	}
}

// 第 1 关：没有精确匹配时按音节匹配
func TestLevel1_SyllableMatch(t *testing.T) {
	// Pepino 音节 "pi" 与 Pimiento 的 "Pi" 匹配（忽略大小写）
	w := newTestWorld(t, 0, []int{0, 2, 1}, pimiento, fresa)

	w.tick(0, InputEvent{Kind: InputStartRound})
	w.tick(0, InputEvent{Kind: InputRespondFailure})

	if !w.highlighted("Pimiento") {
		t.Error("expected Pimiento highlighted by syllable")
	}
	if w.objects.HighlightedCount() != 1 {
		t.Errorf("highlighted count = %d, want 1", w.objects.HighlightedCount())
	}
}

// 第 2 关：计数显示与闪烁 N 次
func TestLevel2_RepeatAndBlink(t *testing.T) {
	// Pimiento 音节 "Pi"，次数 2+1=3
	w := newTestWorld(t, 1, []int{0, 1, 0, 1}, pimiento)

	fx := w.tick(0, InputEvent{Kind: InputStartRound})
	if fx.Display.FullText != "Pi x3" {
		t.Fatalf("text = %q, want \"Pi x3\"", fx.Display.FullText)
	}

	wantTexts := []string{"Pi x2", "Pi"}
	for i, want := range wantTexts {
		fx = w.tick(0, InputEvent{Kind: InputRespondSuccess})
		if fx.Display.FullText != want {
			t.Errorf("response %d: text = %q, want %q", i+1, fx.Display.FullText, want)
		}
		if w.objects.HighlightedCount() != 0 {
			t.Fatalf("response %d: matched too early", i+1)
		}
	}

	w.tick(0, InputEvent{Kind: InputRespondSuccess})
	blink, ok := ecs.GetComponent[*components.BlinkComponent](w.em, w.ids["Pimiento"])
	if !ok {
		t.Fatal("expected Pimiento to blink")
	}
	if blink.PhasesLeft != 6 {
		t.Errorf("blink phases = %d, want 6 (3 blinks)", blink.PhasesLeft)
	}

	// 3 次闪烁共 1.5 秒，结束时保持点亮
	for i := 0; i < 6; i++ {
		w.tick(0.25)
	}
	if !w.highlighted("Pimiento") || ecs.HasComponentOf[*components.BlinkComponent](w.em, w.ids["Pimiento"]) {
		t.Error("blink should finish highlighted")
	}
}

// 第 3 关：元音替换与首字母匹配
func TestLevel3_VowelVariation(t *testing.T) {
	// Tomate 音节 "ma"，k=3，元音顺序 a,e,i
	w := newTestWorld(t, 2, []int{0, 0, 1, 0}, manzana, fresa)

	fx := w.tick(0, InputEvent{Kind: InputStartRound})
	if fx.Display.FullText != "ma-me-mi" {
		t.Fatalf("text = %q, want \"ma-me-mi\"", fx.Display.FullText)
	}

	w.tick(0, InputEvent{Kind: InputRespondSuccess})
	if !w.highlighted("Manzana") || w.highlighted("Fresa") {
		t.Error("expected Manzana matched by initial consonant")
	}
}

func TestLevel3_VowelInitialHasNoCandidates(t *testing.T) {
	// Amor 音节 "A"：首字母是元音，没有候选
	w := newTestWorld(t, 2, []int{2, 0, 0, 0}, fresa)

	fx := w.tick(0, InputEvent{Kind: InputStartRound})
	if fx.Display.FullText != "A-E-I" {
		t.Fatalf("text = %q, want \"A-E-I\"", fx.Display.FullText)
	}

	fx = w.tick(0, InputEvent{Kind: InputRespondSuccess})
	if !hasEvent(fx.Events, EventRoundFailed) {
		t.Error("expected round_failed")
	}
}

// 第 4 关：三个单词各取一个音节，点亮全部匹配物体
func TestLevel4_MixedWordsHighlightAll(t *testing.T) {
	// Tomate("ma") + Sandía("San") + Amor("mor")，次数 3
	script := []int{0, 0, 1, 4, 8, 0, 1, 0}
	w := newTestWorld(t, 3, script, tomate, sandia, amor, fresa)

	fx := w.tick(0, InputEvent{Kind: InputStartRound})
	if fx.Display.FullText != "ma-San-mor x3" {
		t.Fatalf("text = %q, want \"ma-San-mor x3\"", fx.Display.FullText)
	}

	for i := 0; i < 3; i++ {
		fx = w.tick(0, InputEvent{Kind: InputRespondSuccess})
	}

	// 第 4 关不使用精确匹配：三个物体全部点亮
	if n := w.objects.HighlightedCount(); n != 3 {
		t.Errorf("highlighted count = %d, want 3", n)
	}
	for _, name := range []string{"Tomate", "Sandía", "Amor"} {
		if !w.highlighted(name) {
			t.Errorf("%s should be highlighted", name)
		}
	}
	if w.highlighted("Fresa") {
		t.Error("Fresa should not be highlighted")
	}
}

func TestLevel4_PotionObjectWithPrefix(t *testing.T) {
	script := []int{0, 0, 1, 4, 8, 0, 1, 0}
	potion := config.Word{Text: "Poción de Amor", Category: config.CategoryPotion}
	w := newTestWorld(t, 3, script, potion)

	w.tick(0, InputEvent{Kind: InputStartRound})
	for i := 0; i < 3; i++ {
		w.tick(0, InputEvent{Kind: InputRespondSuccess})
	}

	if !w.highlighted("Poción de Amor") {
		t.Error("potion object should match the bare word")
	}
	if n := w.objects.HighlightedCount(); n != 1 {
		t.Errorf("highlighted count = %d, want 1", n)
	}
}

// 第 5 关：比例缩放循环
func TestLevel5_ScaleCycle(t *testing.T) {
	// Fresa 音节 "Fre"，K=3+2=5
	w := newTestWorld(t, 4, []int{1, 1, 0, 2}, fresa)

	fx := w.tick(0, InputEvent{Kind: InputStartRound})
	if w.engine.Remaining() != 5 {
		t.Fatalf("remaining = %d, want 5", w.engine.Remaining())
	}

	wantScales := []float64{2.0, 3.0, 4.5, 6.75, 10.125}
	if fx.Display.Scale != wantScales[0] {
		t.Errorf("initial scale = %v, want %v", fx.Display.Scale, wantScales[0])
	}
	for i := 1; i < len(wantScales); i++ {
		fx = w.tick(0, InputEvent{Kind: InputRespondSuccess})
		if fx.Display.Scale != wantScales[i] {
			t.Errorf("response %d: scale = %v, want %v", i, fx.Display.Scale, wantScales[i])
		}
	}

	// 第 5 次回答：光标回到 0，剩余归零后精确匹配 Fresa
	fx = w.tick(0, InputEvent{Kind: InputRespondSuccess})
	if fx.Display.Scale != wantScales[0] {
		t.Errorf("cursor should wrap, scale = %v", fx.Display.Scale)
	}
	if !w.highlighted("Fresa") {
		t.Error("expected Fresa highlighted")
	}
}

// 第 6 关：逐个显示音节并轮换突出
func TestLevel6_ProgressiveReveal(t *testing.T) {
	w := newTestWorld(t, 5, []int{0, 0}, tomate)

	fx := w.tick(0, InputEvent{Kind: InputStartRound})
	if w.engine.Remaining() != 6 {
		t.Fatalf("remaining = %d, want 6", w.engine.Remaining())
	}
	if fx.Display.FullText != "To" {
		t.Fatalf("text = %q, want \"To\"", fx.Display.FullText)
	}

	steps := []struct {
		text       string
		emphasized int
	}{
		{"To ma", 1},
		{"To ma te", 2},
		{"To ma te", 0},
		{"To ma te", 1},
	}
	for i, step := range steps {
		fx = w.tick(0, InputEvent{Kind: InputRespondSuccess})
		if fx.Display.FullText != step.text {
			t.Errorf("step %d: text = %q, want %q", i+1, fx.Display.FullText, step.text)
		}
		for j, seg := range fx.Display.Segments {
			if seg.Emphasize != (j == step.emphasized) {
				t.Errorf("step %d: segment %d emphasize=%v", i+1, j, seg.Emphasize)
			}
			if seg.Emphasize && seg.Scale != 5.0 || !seg.Emphasize && seg.Scale != 3.0 {
				t.Errorf("step %d: segment %d scale=%v", i+1, j, seg.Scale)
			}
		}
	}
}

func TestLevel6_FirstSyllableFallback(t *testing.T) {
	// Pimiento：剩余 4+3=7，场景只有 Pepino（音节 "pi"）
	w := newTestWorld(t, 5, []int{0, 1}, pepino)

	w.tick(0, InputEvent{Kind: InputStartRound})
	for i := 0; i < 7; i++ {
		w.tick(0, InputEvent{Kind: InputRespondSuccess})
	}

	if !w.highlighted("Pepino") {
		t.Error("expected Pepino matched by first syllable")
	}
}

// 第 7 关：药水加前缀，情绪标签与颜色随剩余次数变化
func TestLevel7_EmotionWord(t *testing.T) {
	w := newTestWorld(t, 6, []int{2, 0}, amor)
	palette := config.DefaultWordBank().EmotionPalette()

	fx := w.tick(0, InputEvent{Kind: InputStartRound})
	if fx.Display.FullText != "Poción de Amor (RABIA)" {
		t.Fatalf("text = %q", fx.Display.FullText)
	}
	if !fx.Display.HasColor || fx.Display.Color != palette[0].Color {
		t.Errorf("color = %+v, want %+v", fx.Display.Color, palette[0].Color)
	}

	fx = w.tick(0, InputEvent{Kind: InputRespondSuccess})
	if fx.Display.FullText != "Poción de Amor (DESAGRADO)" || fx.Display.Color != palette[1].Color {
		t.Errorf("after 1 response: %q %+v", fx.Display.FullText, fx.Display.Color)
	}

	for i := 0; i < 4; i++ {
		fx = w.tick(0, InputEvent{Kind: InputRespondSuccess})
	}
	if fx.Display.FullText != "Poción de Amor" {
		t.Errorf("final text = %q", fx.Display.FullText)
	}
	if !w.highlighted("Amor") {
		t.Error("expected exact match on bare potion name")
	}
}

func TestLevel7_NoExactMatchFails(t *testing.T) {
	w := newTestWorld(t, 6, []int{0, 0}, pimiento)

	w.tick(0, InputEvent{Kind: InputStartRound})
	var fx Effects
	for i := 0; i < 5; i++ {
		fx = w.tick(0, InputEvent{Kind: InputRespondSuccess})
	}
	if !hasEvent(fx.Events, EventRoundFailed) || w.objects.HighlightedCount() != 0 {
		t.Error("level 7 matches exact words only")
	}
}

// 剩余次数每次回答严格减一（成功与失败相同）
func TestRemainingDecrementsByOne(t *testing.T) {
	w := newTestWorld(t, 5, []int{0, 1}, pepino)

	w.tick(0, InputEvent{Kind: InputStartRound})
	prev := w.engine.Remaining()
	for i := 0; i < 10; i++ {
		kind := InputRespondSuccess
		if i%2 == 1 {
			kind = InputRespondFailure
		}
		w.tick(0, InputEvent{Kind: kind})
		if got := w.engine.Remaining(); w.engine.Active() && got != prev-1 {
			t.Fatalf("response %d: remaining %d -> %d", i+1, prev, got)
		}
		prev--
	}
}

// 无匹配：0.5 秒后结束回合
func TestNoMatch_EndsAfterDelay(t *testing.T) {
	w := newTestWorld(t, 0, []int{0, 0, 1})

	w.tick(0, InputEvent{Kind: InputStartRound})
	fx := w.tick(0, InputEvent{Kind: InputRespondSuccess})
	if !hasEvent(fx.Events, EventRoundFailed) {
		t.Fatal("expected round_failed")
	}

	fx = w.tick(0.4)
	if !fx.Display.Visible {
		t.Fatal("round ended too early")
	}
	fx = w.tick(0.2)
	if fx.Display.Visible || !hasEvent(fx.Events, EventRoundEnded) {
		t.Error("round should end 0.5s after a failed match")
	}
}

func TestNoMatch_StaleTimerIgnoredAfterRestart(t *testing.T) {
	w := newTestWorld(t, 0, []int{0, 0, 1, 0, 0, 1})

	w.tick(0, InputEvent{Kind: InputStartRound})
	w.tick(0, InputEvent{Kind: InputRespondSuccess})
	w.tick(0.3, InputEvent{Kind: InputStartRound})

	fx := w.tick(0.5)
	if !fx.Display.Visible || hasEvent(fx.Events, EventRoundEnded) {
		t.Error("timer from the previous round must not end the new round")
	}
}

// 剩余次数为负：仍有高亮物体时保持，消除后结束
func TestNegativeCounter_HoldUntilSwept(t *testing.T) {
	w := newTestWorld(t, 0, []int{0, 0, 1}, tomate)

	w.tick(0, InputEvent{Kind: InputStartRound})
	w.tick(0, InputEvent{Kind: InputRespondSuccess})

	fx := w.tick(0, InputEvent{Kind: InputRespondSuccess})
	if !hasEvent(fx.Events, EventRoundHeld) || !w.engine.Active() {
		t.Fatal("round should be held while Tomate is highlighted")
	}

	fx = w.tick(0, InputEvent{Kind: InputSweep})
	if w.engine.Active() || !hasEvent(fx.Events, EventRoundEnded) {
		t.Error("sweep should end the round")
	}
	if !fx.Display.Celebrating {
		t.Error("expected celebration after eliminating objects")
	}
	if len(w.objects.AllInteractiveObjects()) != 0 {
		t.Error("Tomate should be eliminated")
	}

	fx = w.tick(5.0)
	if fx.Display.Celebrating {
		t.Error("celebration should stop after 5 seconds")
	}
}

// 上一回合的答案未消除时，新回合不会再点亮第二个物体
func TestNextRound_WaitsForSweep(t *testing.T) {
	w := newTestWorld(t, 0, []int{0, 0, 1, 0, 0, 1}, tomate, fresa)

	w.tick(0, InputEvent{Kind: InputStartRound})
	w.tick(0, InputEvent{Kind: InputRespondSuccess})
	if !w.highlighted("Tomate") {
		t.Fatal("round 1 should highlight Tomate")
	}

	w.tick(0, InputEvent{Kind: InputStartRound})
	fx := w.tick(0, InputEvent{Kind: InputRespondSuccess})
	if hasEvent(fx.Events, EventRoundResolved) {
		t.Error("round 2 must not resolve while Tomate is still highlighted")
	}
	if !hasEvent(fx.Events, EventRoundHeld) {
		t.Error("expected round_held for the unswept answer")
	}
	if got := w.objects.HighlightedCount(); got != 1 {
		t.Errorf("highlighted count = %d, want 1", got)
	}

	fx = w.tick(0, InputEvent{Kind: InputSweep})
	if !hasEvent(fx.Events, EventObjectsSwept) || w.engine.Active() {
		t.Fatal("sweep should eliminate Tomate and end round 2")
	}

	// 脚本耗尽：Tomate / "To"，场景中只剩 Fresa，匹配照常进行
	w.tick(0, InputEvent{Kind: InputStartRound})
	fx = w.tick(0, InputEvent{Kind: InputRespondSuccess})
	if !hasEvent(fx.Events, EventRoundFailed) {
		t.Errorf("matching should run again after the sweep, events: %+v", fx.Events)
	}
	if w.highlighted("Fresa") {
		t.Error("Fresa must not be highlighted")
	}
}

func TestNegativeCounter_EndsWhenNothingHighlighted(t *testing.T) {
	w := newTestWorld(t, 0, []int{0, 0, 1}, tomate)

	w.tick(0, InputEvent{Kind: InputStartRound})
	w.tick(0, InputEvent{Kind: InputRespondSuccess})
	w.objects.ClearHighlight(w.ids["Tomate"])

	fx := w.tick(0, InputEvent{Kind: InputRespondSuccess})
	if w.engine.Active() || !hasEvent(fx.Events, EventRoundEnded) {
		t.Error("round should end when no object is highlighted")
	}
}

func TestSweep_NothingHighlighted(t *testing.T) {
	w := newTestWorld(t, 0, []int{0, 0, 1}, tomate)

	w.tick(0, InputEvent{Kind: InputStartRound})
	fx := w.tick(0, InputEvent{Kind: InputSweep})

	if w.engine.Active() {
		t.Error("sweep always ends the round")
	}
	if fx.Display.Celebrating {
		t.Error("no celebration when nothing was eliminated")
	}
}

func TestSelectLevel_OutOfRange(t *testing.T) {
	w := newTestWorld(t, 2, nil)

	for _, level := range []int{-1, 7, 100} {
		if err := w.engine.SelectLevel(level); !errors.Is(err, ErrLevelOutOfRange) {
			t.Errorf("SelectLevel(%d) = %v, want ErrLevelOutOfRange", level, err)
		}
	}
	if w.engine.Level() != 2 {
		t.Errorf("level changed to %d", w.engine.Level())
	}
}

// 回合进行中切换关卡：当前回合保持原关卡
func TestSelectLevel_DuringRound(t *testing.T) {
	w := newTestWorld(t, 1, []int{0, 1, 0, 0}, pimiento)

	w.tick(0, InputEvent{Kind: InputStartRound})
	fx := w.tick(0, InputEvent{Kind: InputSelectLevel, Level: 6})

	if fx.Display.FullText != "Pi x2" {
		t.Errorf("in-flight round text changed: %q", fx.Display.FullText)
	}
	if fx.Display.LevelName != config.DefaultLevelDefinitions()[6].Name {
		t.Errorf("level description not updated: %q", fx.Display.LevelName)
	}

	w.tick(0, InputEvent{Kind: InputRespondSuccess})
	if len(w.stats.calls) != 1 || w.stats.calls[0].level != 1 {
		t.Errorf("response recorded for wrong level: %+v", w.stats.calls)
	}
}

func TestRespond_NoActiveRound(t *testing.T) {
	w := newTestWorld(t, 0, nil)

	if err := w.engine.Respond(true); !errors.Is(err, ErrNoActiveRound) {
		t.Errorf("Respond() = %v, want ErrNoActiveRound", err)
	}
	fx := w.tick(0)
	if !hasEvent(fx.Events, EventResponseIgnored) {
		t.Error("expected response_ignored event")
	}
	if len(w.stats.calls) != 0 {
		t.Error("ignored responses must not be recorded")
	}
}

func TestTypewriterAndRise(t *testing.T) {
	w := newTestWorld(t, 6, []int{0, 0}, tomate)
	w.engine.SetDisplaySettings(DisplaySettings{TypewriterEnabled: true, TypewriterSpeed: 8})

	fx := w.tick(0, InputEvent{Kind: InputStartRound})
	if fx.Display.Text != "" || fx.Display.FontSize != 1.0 {
		t.Fatalf("initial display = %q size %v", fx.Display.Text, fx.Display.FontSize)
	}

	fx = w.tick(0.5)
	if fx.Display.Text != "Toma" {
		t.Errorf("after 0.5s text = %q, want \"Toma\"", fx.Display.Text)
	}
	if fx.Display.FontSize != 2.5 || fx.Display.RiseProgress() != 0.5 {
		t.Errorf("font size = %v progress %v, want 2.5 / 0.5", fx.Display.FontSize, fx.Display.RiseProgress())
	}

	fx = w.tick(1.0)
	if fx.Display.FontSize != 4.0 || fx.Display.RiseProgress() != 1 {
		t.Errorf("font size = %v, want 4.0", fx.Display.FontSize)
	}
	if (DisplayIntent{}).RiseProgress() != 1 {
		t.Error("hidden text has no rise animation")
	}
}
