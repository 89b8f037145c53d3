package game

import (
	"fmt"
	"log"

	"github.com/quasilyte/gdata/v2"
	"gopkg.in/yaml.v3"
)

// GameSettings 全局游戏设置
// 注意：这些设置是全局的，不绑定到特定用户；LastUserID 仅用于下次启动时恢复登录
type GameSettings struct {
	// 浮动文字设置
	TypewriterEnabled bool    `yaml:"typewriterEnabled"` // 是否逐字显示
	TypewriterSpeed   float64 `yaml:"typewriterSpeed"`   // 每秒显示字符数

	// 音频设置
	SoundEnabled bool    `yaml:"soundEnabled"` // 反馈音开关
	SoundVolume  float64 `yaml:"soundVolume"`  // 反馈音音量 0.0 ~ 1.0

	// 显示设置
	Fullscreen bool `yaml:"fullscreen"` // 启动时是否全屏

	// 会话
	LastUserID string `yaml:"lastUserID"` // 上次登录的用户
}

// DefaultSettings 返回默认设置
func DefaultSettings() *GameSettings {
	return &GameSettings{
		TypewriterEnabled: false,
		TypewriterSpeed:   20.0,
		SoundEnabled:      true,
		SoundVolume:       0.8,
		Fullscreen:        false,
	}
}

// SettingsManager 设置管理器
// 负责游戏设置的加载、保存和内存管理
type SettingsManager struct {
	gdataManager *gdata.Manager // gdata 跨平台存储管理器，可为 nil（降级模式）
	settings     *GameSettings  // 当前设置
}

// 存储路径常量
const (
	settingsObject   = "settings"
	settingsProperty = "global"
)

// NewSettingsManager 创建新的设置管理器实例
//
// 参数：
//   - gdataManager: gdata 跨平台存储管理器，可为 nil（降级模式，仅内存设置）
//
// 返回：
//   - *SettingsManager: 设置管理器实例
//   - error: 保留用于将来的初始化错误（加载失败不影响创建）
func NewSettingsManager(gdataManager *gdata.Manager) (*SettingsManager, error) {
	sm := &SettingsManager{
		gdataManager: gdataManager,
		settings:     DefaultSettings(),
	}

	// 尝试加载已保存的设置
	if err := sm.Load(); err != nil {
		// 加载失败不是致命错误，使用默认设置
		log.Printf("[SettingsManager] Warning: Failed to load settings: %v (using defaults)", err)
	}

	return sm, nil
}

// Load 从 gdata 加载设置
//
// 如果 gdataManager 为 nil 或数据不存在，使用默认设置
func (sm *SettingsManager) Load() error {
	// 降级模式：无法持久化，使用默认设置
	if sm.gdataManager == nil {
		sm.settings = DefaultSettings()
		return nil
	}

	if !sm.gdataManager.ObjectPropExists(settingsObject, settingsProperty) {
		sm.settings = DefaultSettings()
		return nil
	}

	data, err := sm.gdataManager.LoadObjectProp(settingsObject, settingsProperty)
	if err != nil {
		sm.settings = DefaultSettings()
		return fmt.Errorf("failed to load settings: %w", err)
	}

	// 以默认值为基础反序列化，旧版本缺失的字段保持默认
	loaded := DefaultSettings()
	if err := yaml.Unmarshal(data, loaded); err != nil {
		sm.settings = DefaultSettings()
		return fmt.Errorf("failed to unmarshal settings: %w", err)
	}
	if loaded.TypewriterSpeed <= 0 {
		loaded.TypewriterSpeed = DefaultSettings().TypewriterSpeed
	}
	loaded.SoundVolume = clampVolume(loaded.SoundVolume)

	sm.settings = loaded
	log.Printf("[SettingsManager] Settings loaded successfully")
	return nil
}

// Save 保存设置到 gdata
//
// 如果 gdataManager 为 nil，返回 nil（降级模式，不报错）
func (sm *SettingsManager) Save() error {
	if sm.gdataManager == nil {
		return nil
	}

	data, err := yaml.Marshal(sm.settings)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	if err := sm.gdataManager.SaveObjectProp(settingsObject, settingsProperty, data); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	log.Printf("[SettingsManager] Settings saved successfully")
	return nil
}

// GetSettings 获取当前设置
func (sm *SettingsManager) GetSettings() *GameSettings {
	return sm.settings
}

// SetTypewriterEnabled 设置逐字显示开关
// 注意：仅修改内存中的设置，需调用 Save() 方法持久化
func (sm *SettingsManager) SetTypewriterEnabled(enabled bool) {
	sm.settings.TypewriterEnabled = enabled
}

// SetTypewriterSpeed 设置逐字显示速度（非正数被忽略）
func (sm *SettingsManager) SetTypewriterSpeed(charsPerSecond float64) {
	if charsPerSecond <= 0 {
		log.Printf("[SettingsManager] Warning: ignoring non-positive typewriter speed %v", charsPerSecond)
		return
	}
	sm.settings.TypewriterSpeed = charsPerSecond
}

// SetSoundVolume 设置反馈音音量
//
// 音量值会被限制在 0.0 ~ 1.0 范围内
func (sm *SettingsManager) SetSoundVolume(volume float64) {
	sm.settings.SoundVolume = clampVolume(volume)
}

// SetSoundEnabled 设置反馈音开关
func (sm *SettingsManager) SetSoundEnabled(enabled bool) {
	sm.settings.SoundEnabled = enabled
}

// SetFullscreen 设置全屏模式
func (sm *SettingsManager) SetFullscreen(enabled bool) {
	sm.settings.Fullscreen = enabled
}

// SetLastUserID 记录最后登录的用户
func (sm *SettingsManager) SetLastUserID(id string) {
	sm.settings.LastUserID = id
}

// clampVolume 将音量值限制在 0.0 ~ 1.0 范围内
func clampVolume(volume float64) float64 {
	if volume < 0.0 {
		return 0.0
	}
	if volume > 1.0 {
		return 1.0
	}
	return volume
}
