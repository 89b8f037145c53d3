package exercise

import (
	"image/color"
)

// 浮动文字上升动画参数
const (
	riseDuration    = 1.0 // 秒
	initialFontSize = 1.0
	finalFontSize   = 4.0
)

// DisplaySettings 显示相关设置
type DisplaySettings struct {
	TypewriterEnabled bool    // 是否逐字显示
	TypewriterSpeed   float64 // 每秒显示字符数（再乘以关卡语速）
}

// DefaultDisplaySettings 默认显示设置
func DefaultDisplaySettings() DisplaySettings {
	return DisplaySettings{
		TypewriterEnabled: false,
		TypewriterSpeed:   20.0,
	}
}

// TextSegment 分段文本（第 6 关逐个显示音节，突出当前音节）
type TextSegment struct {
	Text      string
	Scale     float64
	Emphasize bool
}

// DisplayIntent 交给渲染层的显示意图
type DisplayIntent struct {
	Visible          bool
	Text             string // 当前可见文本（打字机效果下为 FullText 的前缀）
	FullText         string
	Scale            float64 // 文本缩放（第 5 关按比例变化）
	FontSize         float64 // 上升动画中的字号
	Color            color.RGBA
	HasColor         bool
	Segments         []TextSegment
	LevelName        string
	LevelDescription string
	Celebrating      bool
}

// textAnimator 打字机与上升动画状态
type textAnimator struct {
	settings    DisplaySettings
	fullText    []rune
	progress    float64
	riseElapsed float64
}

// restart 新回合开始：重新播放上升动画
func (a *textAnimator) restart(text string) {
	a.riseElapsed = 0
	a.refresh(text)
}

// refresh 文本变化：打字机效果从头开始
func (a *textAnimator) refresh(text string) {
	a.fullText = []rune(text)
	a.progress = 0
}

func (a *textAnimator) advance(dt, speechRate float64) {
	if a.riseElapsed < riseDuration {
		a.riseElapsed += dt
	}
	if a.settings.TypewriterEnabled && int(a.progress) < len(a.fullText) {
		a.progress += a.settings.TypewriterSpeed * speechRate * dt
	}
}

func (a *textAnimator) visibleText() string {
	if !a.settings.TypewriterEnabled {
		return string(a.fullText)
	}
	n := int(a.progress)
	if n > len(a.fullText) {
		n = len(a.fullText)
	}
	return string(a.fullText[:n])
}

func (a *textAnimator) fontSize() float64 {
	t := a.riseElapsed / riseDuration
	if t > 1 {
		t = 1
	}
	return initialFontSize + (finalFontSize-initialFontSize)*t
}

// RiseProgress 上升动画进度（0~1），由字号推算
func (d DisplayIntent) RiseProgress() float64 {
	if !d.Visible {
		return 1
	}
	p := (d.FontSize - initialFontSize) / (finalFontSize - initialFontSize)
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}
