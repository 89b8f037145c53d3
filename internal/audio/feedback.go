// Package audio 为练习引擎事件播放简短的反馈音
//
// 回答正确播放高音，回答错误播放低音，回合点亮答案和消除物体时各有一个提示音。
// 音频设备初始化失败时静默降级，不影响练习。
package audio

import (
	"log"
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"

	"github.com/decker502/magicword/pkg/exercise"
)

// SampleRate 反馈音采样率
const SampleRate = beep.SampleRate(44100)

// Tone 单个正弦提示音
type Tone struct {
	Freq     float64
	Duration time.Duration
}

// 反馈音定义
var (
	ToneAccepted = Tone{Freq: 880, Duration: 120 * time.Millisecond}
	ToneRejected = Tone{Freq: 220, Duration: 200 * time.Millisecond}
	ToneResolved = Tone{Freq: 660, Duration: 250 * time.Millisecond}
	ToneSwept    = Tone{Freq: 1320, Duration: 150 * time.Millisecond}
)

// ToneFor 返回事件对应的提示音
func ToneFor(ev exercise.Event) (Tone, bool) {
	switch ev.Kind {
	case exercise.EventResponseAccepted:
		return ToneAccepted, true
	case exercise.EventResponseRejected:
		return ToneRejected, true
	case exercise.EventRoundResolved:
		return ToneResolved, true
	case exercise.EventObjectsSwept:
		if len(ev.Objects) > 0 {
			return ToneSwept, true
		}
	}
	return Tone{}, false
}

// Streamer 生成音量为 volume（0~1）的正弦音
func (t Tone) Streamer(volume float64) (beep.Streamer, error) {
	sine, err := generators.SineTone(SampleRate, t.Freq)
	if err != nil {
		return nil, err
	}
	return newVolume(beep.Take(SampleRate.N(t.Duration), sine), volume), nil
}

// newVolume 线性音量转换为 effects.Volume（0 为静音）
func newVolume(s beep.Streamer, vol float64) beep.Streamer {
	if vol <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Volume: 0, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(vol), Silent: false}
}

// FeedbackPlayer 实现 exercise.EventSink，为事件播放反馈音
type FeedbackPlayer struct {
	mu      sync.Mutex
	enabled bool
	volume  float64
	ready   bool
	play    func(beep.Streamer)
}

// NewFeedbackPlayer 创建反馈音播放器（需调用 Init 打开音频设备）
func NewFeedbackPlayer(enabled bool, volume float64) *FeedbackPlayer {
	return &FeedbackPlayer{
		enabled: enabled,
		volume:  volume,
		play:    func(s beep.Streamer) { speaker.Play(s) },
	}
}

// Init 打开音频设备
func (p *FeedbackPlayer) Init() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ready {
		return nil
	}
	if err := speaker.Init(SampleRate, SampleRate.N(time.Second/10)); err != nil {
		return err
	}
	p.ready = true
	log.Printf("[Audio] Speaker initialized at %d Hz", SampleRate)
	return nil
}

// SetEnabled 开关反馈音
func (p *FeedbackPlayer) SetEnabled(enabled bool) {
	p.mu.Lock()
	p.enabled = enabled
	p.mu.Unlock()
}

// SetVolume 设置音量（0~1）
func (p *FeedbackPlayer) SetVolume(volume float64) {
	p.mu.Lock()
	p.volume = volume
	p.mu.Unlock()
}

// Emit 实现 exercise.EventSink
func (p *FeedbackPlayer) Emit(ev exercise.Event) {
	tone, ok := ToneFor(ev)
	if !ok {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.enabled || !p.ready {
		return
	}

	s, err := tone.Streamer(p.volume)
	if err != nil {
		log.Printf("[Audio] Warning: failed to build tone %.0f Hz: %v", tone.Freq, err)
		return
	}
	p.play(s)
}

// Close 关闭音频设备
func (p *FeedbackPlayer) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ready {
		speaker.Close()
		p.ready = false
	}
}
