package game

import (
	"os"
	"testing"

	"github.com/quasilyte/gdata/v2"
)

// openTestGdata 在临时 HOME 下打开 gdata 存储
func openTestGdata(t *testing.T, appName string) *gdata.Manager {
	t.Helper()
	tempDir := t.TempDir()
	originalHome := os.Getenv("HOME")
	os.Setenv("HOME", tempDir)
	t.Cleanup(func() { os.Setenv("HOME", originalHome) })

	gdataManager, err := gdata.Open(gdata.Config{
		AppName: appName,
	})
	if err != nil {
		t.Fatalf("Failed to create gdata manager: %v", err)
	}
	return gdataManager
}

// TestDefaultSettings 测试 DefaultSettings() 返回正确的默认值
func TestDefaultSettings(t *testing.T) {
	settings := DefaultSettings()

	if settings.TypewriterEnabled {
		t.Error("TypewriterEnabled: got true, want false")
	}
	if settings.TypewriterSpeed != 20.0 {
		t.Errorf("TypewriterSpeed: got %v, want 20", settings.TypewriterSpeed)
	}
	if settings.SoundVolume != 0.8 {
		t.Errorf("SoundVolume: got %v, want 0.8", settings.SoundVolume)
	}
	if !settings.SoundEnabled {
		t.Error("SoundEnabled: got false, want true")
	}
	if settings.Fullscreen {
		t.Error("Fullscreen: got true, want false")
	}
	if settings.LastUserID != "" {
		t.Errorf("LastUserID: got %q, want empty", settings.LastUserID)
	}
}

// TestNewSettingsManagerNilGdata 测试 gdataManager 为 nil 时的降级场景
func TestNewSettingsManagerNilGdata(t *testing.T) {
	sm, err := NewSettingsManager(nil)
	if err != nil {
		t.Fatalf("NewSettingsManager(nil) error: %v", err)
	}

	if sm.GetSettings().TypewriterSpeed != 20.0 {
		t.Errorf("Degraded mode TypewriterSpeed: got %v", sm.GetSettings().TypewriterSpeed)
	}

	// 降级模式下 Save() 不报错
	if err := sm.Save(); err != nil {
		t.Errorf("Save() in degraded mode should return nil, got: %v", err)
	}
}

// TestSettingsLoadSave 测试 Load() 和 Save() 功能
func TestSettingsLoadSave(t *testing.T) {
	gdataManager := openTestGdata(t, "test_magicword_settings")

	sm1, err := NewSettingsManager(gdataManager)
	if err != nil {
		t.Fatalf("NewSettingsManager() error: %v", err)
	}

	sm1.SetTypewriterEnabled(true)
	sm1.SetTypewriterSpeed(12)
	sm1.SetSoundVolume(0.6)
	sm1.SetSoundEnabled(false)
	sm1.SetFullscreen(true)
	sm1.SetLastUserID("123456789")

	if err := sm1.Save(); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	// 创建新的设置管理器，验证加载
	sm2, err := NewSettingsManager(gdataManager)
	if err != nil {
		t.Fatalf("NewSettingsManager() error on reload: %v", err)
	}

	got := *sm2.GetSettings()
	want := GameSettings{
		TypewriterEnabled: true,
		TypewriterSpeed:   12,
		SoundEnabled:      false,
		SoundVolume:       0.6,
		Fullscreen:        true,
		LastUserID:        "123456789",
	}
	if got != want {
		t.Errorf("loaded settings = %+v, want %+v", got, want)
	}
}

// TestSettingsLoad_PartialData 旧版本数据缺失的字段保持默认值
func TestSettingsLoad_PartialData(t *testing.T) {
	gdataManager := openTestGdata(t, "test_magicword_settings_partial")

	if err := gdataManager.SaveObjectProp(settingsObject, settingsProperty, []byte("fullscreen: true\n")); err != nil {
		t.Fatalf("SaveObjectProp() error: %v", err)
	}

	sm, _ := NewSettingsManager(gdataManager)
	settings := sm.GetSettings()

	if !settings.Fullscreen {
		t.Error("Fullscreen should be loaded")
	}
	if settings.TypewriterSpeed != 20.0 || !settings.SoundEnabled {
		t.Errorf("missing fields should keep defaults: %+v", settings)
	}
}

// TestSettingsLoad_Corrupt 数据损坏时回退默认设置
func TestSettingsLoad_Corrupt(t *testing.T) {
	gdataManager := openTestGdata(t, "test_magicword_settings_corrupt")

	if err := gdataManager.SaveObjectProp(settingsObject, settingsProperty, []byte("soundVolume: [oops")); err != nil {
		t.Fatalf("SaveObjectProp() error: %v", err)
	}

	sm, err := NewSettingsManager(gdataManager)
	if err != nil {
		t.Fatalf("corrupt settings must not fail creation: %v", err)
	}
	if sm.GetSettings().SoundVolume != 0.8 {
		t.Errorf("expected defaults, got %+v", sm.GetSettings())
	}
	if err := sm.Load(); err == nil {
		t.Error("Load() should report the corrupt data")
	}
}

// TestSetSoundVolumeClamp 测试 SetSoundVolume 范围校验
func TestSetSoundVolumeClamp(t *testing.T) {
	sm, _ := NewSettingsManager(nil)

	tests := []struct {
		input    float64
		expected float64
	}{
		{0.5, 0.5},  // 正常值
		{0.0, 0.0},  // 下限
		{1.0, 1.0},  // 上限
		{-0.5, 0.0}, // 低于下限
		{1.5, 1.0},  // 高于上限
	}

	for _, tt := range tests {
		sm.SetSoundVolume(tt.input)
		if sm.GetSettings().SoundVolume != tt.expected {
			t.Errorf("SetSoundVolume(%v): got %v, want %v",
				tt.input, sm.GetSettings().SoundVolume, tt.expected)
		}
	}
}

// TestSetTypewriterSpeed 非正数速度被忽略
func TestSetTypewriterSpeed(t *testing.T) {
	sm, _ := NewSettingsManager(nil)

	sm.SetTypewriterSpeed(30)
	sm.SetTypewriterSpeed(0)
	sm.SetTypewriterSpeed(-5)

	if sm.GetSettings().TypewriterSpeed != 30 {
		t.Errorf("TypewriterSpeed: got %v, want 30", sm.GetSettings().TypewriterSpeed)
	}
}

// TestClampVolume 测试 clampVolume 辅助函数
func TestClampVolume(t *testing.T) {
	tests := []struct {
		input    float64
		expected float64
	}{
		{0.5, 0.5},
		{-1.0, 0.0},
		{2.0, 1.0},
		{0.999, 0.999},
	}

	for _, tt := range tests {
		if result := clampVolume(tt.input); result != tt.expected {
			t.Errorf("clampVolume(%v): got %v, want %v", tt.input, result, tt.expected)
		}
	}
}
