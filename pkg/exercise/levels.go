package exercise

import (
	"fmt"
	"log"
	"math"
	"strings"
	"unicode"

	"github.com/decker502/magicword/pkg/config"
	"github.com/decker502/magicword/pkg/systems"
)

const (
	blinkInterval = 0.5

	level5BaseScale = 2.0
	level5Ratio     = 1.5

	level6BaseScale       = 3.0
	level6EmphasizedScale = 5.0
	level6ExtraAttempts   = 3

	level7Attempts = 5
)

var substitutionVowels = []string{"a", "e", "i", "o", "u"}

// levelPolicy 单个关卡的出题、推进与匹配规则
type levelPolicy interface {
	// setup 生成 baseText、剩余次数及关卡专属状态
	setup(e *Engine, r *round)
	// advance 每次回答后推进关卡状态
	advance(r *round)
	// compose 根据当前状态生成 fullText
	compose(e *Engine, r *round)
	// candidates 非精确匹配时的候选物体
	candidates(e *Engine, r *round, objs []systems.SceneObject) []systems.SceneObject

	usesExactMatch() bool
	highlightsAll() bool
	blinks() bool
}

// basePolicy 默认行为：允许精确匹配，只点亮一个物体，静态高亮
type basePolicy struct{}

func (basePolicy) advance(r *round)     {}
func (basePolicy) usesExactMatch() bool { return true }
func (basePolicy) highlightsAll() bool  { return false }
func (basePolicy) blinks() bool         { return false }

func (basePolicy) compose(e *Engine, r *round) {
	r.fullText = r.baseText
}

func pickSyllable(e *Engine, r *round) string {
	if len(r.syllables) == 0 {
		return r.word
	}
	return r.syllables[e.rng.Intn(len(r.syllables))]
}

// withCounter "X xN"（N>1 时）
func withCounter(base string, remaining int) string {
	if remaining > 1 {
		return fmt.Sprintf("%s x%d", base, remaining)
	}
	return base
}

// --- 第 1 关：单个音节 ---

type singleSyllablePolicy struct{ basePolicy }

func (singleSyllablePolicy) setup(e *Engine, r *round) {
	r.syllable = pickSyllable(e, r)
	r.baseText = r.syllable
	r.remaining = 1
}

func (singleSyllablePolicy) candidates(e *Engine, r *round, objs []systems.SceneObject) []systems.SceneObject {
	return matchBySyllable(e.words, objs, r.baseText)
}

// --- 第 2 关：重复音节 ---

type repeatSyllablePolicy struct{ basePolicy }

func (repeatSyllablePolicy) setup(e *Engine, r *round) {
	r.syllable = pickSyllable(e, r)
	r.baseText = r.syllable
	r.remaining = 2 + e.rng.Intn(4)
}

func (repeatSyllablePolicy) compose(e *Engine, r *round) {
	r.fullText = withCounter(r.baseText, r.remaining)
}

func (repeatSyllablePolicy) candidates(e *Engine, r *round, objs []systems.SceneObject) []systems.SceneObject {
	return matchBySyllable(e.words, objs, r.baseText)
}

func (repeatSyllablePolicy) blinks() bool { return true }

// --- 第 3 关：元音变化 ---

type vowelVariationPolicy struct{ basePolicy }

func (vowelVariationPolicy) setup(e *Engine, r *round) {
	r.syllable = pickSyllable(e, r)
	k := 3 + e.rng.Intn(3)

	vowels := make([]string, len(substitutionVowels))
	copy(vowels, substitutionVowels)
	e.rng.Shuffle(len(vowels), func(i, j int) { vowels[i], vowels[j] = vowels[j], vowels[i] })

	variants := make([]string, 0, k)
	for _, v := range vowels[:k] {
		variants = append(variants, substituteFirstVowel(r.syllable, v))
	}
	r.baseText = strings.Join(variants, "-")
	r.remaining = 1
}

func (vowelVariationPolicy) candidates(e *Engine, r *round, objs []systems.SceneObject) []systems.SceneObject {
	return matchByInitial(e.words, objs, r.syllable)
}

// --- 第 4 关：混合音节 ---

type mixedSyllablePolicy struct{ basePolicy }

func (mixedSyllablePolicy) setup(e *Engine, r *round) {
	r.mixedWords = []string{r.matchName}
	parts := []string{pickSyllable(e, r)}

	pool := make([]config.Word, 0)
	for _, w := range e.words.AllWords() {
		if !strings.EqualFold(w.Text, r.matchName) {
			pool = append(pool, w)
		}
	}

	for i := 0; i < 2 && len(pool) > 0; i++ {
		idx := e.rng.Intn(len(pool))
		r.mixedWords = append(r.mixedWords, pool[idx].Text)
		pool = append(pool[:idx], pool[idx+1:]...)
	}
	for _, w := range r.mixedWords[1:] {
		syl := e.words.SyllablesOf(w)
		parts = append(parts, syl[e.rng.Intn(len(syl))])
	}

	e.rng.Shuffle(len(parts), func(i, j int) { parts[i], parts[j] = parts[j], parts[i] })
	r.baseText = strings.Join(parts, "-")
	r.remaining = 3 + e.rng.Intn(3)
	log.Printf("[MagicText] Level 4 words: %s", strings.Join(r.mixedWords, ", "))
}

func (mixedSyllablePolicy) compose(e *Engine, r *round) {
	r.fullText = withCounter(r.baseText, r.remaining)
}

func (mixedSyllablePolicy) candidates(e *Engine, r *round, objs []systems.SceneObject) []systems.SceneObject {
	return matchByWords(objs, r.mixedWords)
}

func (mixedSyllablePolicy) usesExactMatch() bool { return false }
func (mixedSyllablePolicy) highlightsAll() bool  { return true }

// --- 第 5 关：比例缩放音节 ---

type scaledSyllablePolicy struct{ basePolicy }

func (scaledSyllablePolicy) setup(e *Engine, r *round) {
	r.syllable = pickSyllable(e, r)
	r.baseText = r.syllable

	k := 3 + e.rng.Intn(3)
	r.scales = make([]float64, k)
	for i := range r.scales {
		r.scales[i] = level5BaseScale * math.Pow(level5Ratio, float64(i))
	}
	r.scaleCursor = 0
	r.remaining = k
}

func (scaledSyllablePolicy) advance(r *round) {
	r.scaleCursor = (r.scaleCursor + 1) % len(r.scales)
}

func (scaledSyllablePolicy) candidates(e *Engine, r *round, objs []systems.SceneObject) []systems.SceneObject {
	return matchBySyllable(e.words, objs, r.baseText)
}

// --- 第 6 关：逐个显示音节 ---

type progressiveRevealPolicy struct{ basePolicy }

func (progressiveRevealPolicy) setup(e *Engine, r *round) {
	r.segmentScales = [2]float64{level6BaseScale, level6EmphasizedScale}
	if len(r.syllables) == 0 {
		r.baseText = r.word
		r.remaining = 1
		return
	}
	r.revealed = []string{r.syllables[0]}
	r.revealCursor = 0
	r.highlightCursor = 0
	r.baseText = r.syllables[0]
	r.remaining = len(r.syllables) + level6ExtraAttempts
}

func (progressiveRevealPolicy) advance(r *round) {
	if len(r.syllables) == 0 {
		return
	}
	if r.revealCursor < len(r.syllables)-1 {
		r.revealCursor++
		r.revealed = append(r.revealed, r.syllables[r.revealCursor])
		r.highlightCursor = r.revealCursor
		return
	}
	r.highlightCursor = (r.highlightCursor + 1) % len(r.syllables)
}

func (progressiveRevealPolicy) compose(e *Engine, r *round) {
	if len(r.revealed) == 0 {
		r.fullText = r.baseText
		return
	}
	r.fullText = strings.Join(r.revealed, " ")
}

func (progressiveRevealPolicy) candidates(e *Engine, r *round, objs []systems.SceneObject) []systems.SceneObject {
	if len(r.syllables) == 0 {
		return nil
	}
	return matchBySyllable(e.words, objs, r.syllables[0])
}

// --- 第 7 关：情绪与完整单词 ---

type emotionWordPolicy struct{ basePolicy }

func (emotionWordPolicy) setup(e *Engine, r *round) {
	r.baseText = r.word
	r.remaining = level7Attempts
}

func (emotionWordPolicy) compose(e *Engine, r *round) {
	palette := e.words.EmotionPalette()
	if r.remaining > 0 && r.remaining <= len(palette) {
		r.emotion = palette[len(palette)-r.remaining]
		r.hasEmotion = true
		r.fullText = fmt.Sprintf("%s (%s)", r.baseText, r.emotion.Name)
		return
	}
	r.fullText = r.baseText
}

func (emotionWordPolicy) candidates(e *Engine, r *round, objs []systems.SceneObject) []systems.SceneObject {
	return nil
}

// policies 按关卡索引排列
var policies = [config.LevelCount]levelPolicy{
	singleSyllablePolicy{},
	repeatSyllablePolicy{},
	vowelVariationPolicy{},
	mixedSyllablePolicy{},
	scaledSyllablePolicy{},
	progressiveRevealPolicy{},
	emotionWordPolicy{},
}

// substituteFirstVowel 将第一个元音替换为 vowel（保持大小写），没有元音时追加
func substituteFirstVowel(syllable, vowel string) string {
	runes := []rune(syllable)
	for i, c := range runes {
		if !isVowel(c) {
			continue
		}
		v := []rune(vowel)[0]
		if unicode.IsUpper(c) {
			v = unicode.ToUpper(v)
		}
		runes[i] = v
		return string(runes)
	}
	return syllable + vowel
}

func isVowel(c rune) bool {
	return strings.ContainsRune("aeiouáéíóúü", unicode.ToLower(c))
}
