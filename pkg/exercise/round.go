package exercise

import (
	"image/color"

	"github.com/decker502/magicword/pkg/config"
)

// round 一次练习回合的运行状态
type round struct {
	generation uint64
	level      int
	category   config.Category
	word       string // 选中的单词（第 7 关药水带 "Poción de " 前缀）
	matchName  string // 用于精确匹配的名称（药水去掉前缀）
	syllables  []string

	syllable        string // 选中的音节
	baseText        string
	fullText        string
	remaining       int
	initialAttempts int
	active          bool

	// 第 4 关：参与混合的原始单词
	mixedWords []string

	// 第 5 关：按比例递增的缩放列表
	scales      []float64
	scaleCursor int

	// 第 6 关：逐个显示的音节
	revealed        []string
	revealCursor    int
	highlightCursor int
	segmentScales   [2]float64 // {普通, 突出}

	// 第 7 关：当前情绪
	emotion    config.Emotion
	hasEmotion bool
}

func (r *round) scale() float64 {
	if len(r.scales) == 0 {
		return 1.0
	}
	return r.scales[r.scaleCursor]
}

func (r *round) color() (color.RGBA, bool) {
	return r.emotion.Color, r.hasEmotion
}

func (r *round) segments() []TextSegment {
	if len(r.revealed) == 0 {
		return nil
	}
	segs := make([]TextSegment, 0, len(r.revealed))
	for i, s := range r.revealed {
		seg := TextSegment{Text: s, Scale: r.segmentScales[0]}
		if i == r.highlightCursor {
			seg.Scale = r.segmentScales[1]
			seg.Emphasize = true
		}
		segs = append(segs, seg)
	}
	return segs
}
