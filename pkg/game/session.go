package game

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/decker502/magicword/pkg/config"
)

// ErrNoCurrentUser 没有登录的用户
var ErrNoCurrentUser = errors.New("no user logged in")

// Session 当前玩家会话
//
// 持有当前登录用户，把练习引擎的每次回答写回用户数据库。
// 登录成功后在设置中记录 LastUserID，下次启动时可自动恢复。
type Session struct {
	store    *UserStore
	settings *SettingsManager // 可为 nil
	current  string
}

// NewSession 创建会话
func NewSession(store *UserStore, settings *SettingsManager) *Session {
	return &Session{
		store:    store,
		settings: settings,
	}
}

// CurrentUserID 当前用户 ID（未登录时为空）
func (s *Session) CurrentUserID() string {
	return s.current
}

// Register 注册并直接登录
func (s *Session) Register(id, name, sex string, age int) (UserRecord, error) {
	if _, err := s.store.Register(id, name, sex, age); err != nil {
		return UserRecord{}, err
	}
	return s.Login(id)
}

// Login 登录已有用户
func (s *Session) Login(id string) (UserRecord, error) {
	if err := ValidateUserID(id); err != nil {
		return UserRecord{}, err
	}

	user, err := s.store.Login(id)
	if err != nil {
		return UserRecord{}, err
	}

	s.current = user.ID
	s.rememberUser(user.ID)
	log.Printf("[Session] User %s (%s) logged in", user.ID, user.Name)
	return user, nil
}

// Logout 退出登录并清除记住的用户
func (s *Session) Logout() {
	if s.current == "" {
		return
	}
	log.Printf("[Session] User %s logged out", s.current)
	s.current = ""
	s.rememberUser("")
}

// RestoreLastUser 根据设置中的 LastUserID 自动登录
// 返回: 是否恢复成功
func (s *Session) RestoreLastUser() bool {
	if s.settings == nil {
		return false
	}
	id := s.settings.GetSettings().LastUserID
	if id == "" {
		return false
	}
	if _, err := s.Login(id); err != nil {
		log.Printf("[Session] Warning: failed to restore last user %s: %v", id, err)
		s.rememberUser("")
		return false
	}
	return true
}

// RecordResponse 记录一次回答：对应关卡的正确/错误计数加一并写回数据库
func (s *Session) RecordResponse(level int, success bool) error {
	if level < 0 || level >= config.LevelCount {
		log.Printf("[Session] Warning: rejecting response for level %d", level)
		return fmt.Errorf("record response for level %d: level out of range", level)
	}
	if s.current == "" {
		log.Printf("[Session] No active user, response not recorded")
		return ErrNoCurrentUser
	}

	user, ok := s.store.FindByID(s.current)
	if !ok {
		return fmt.Errorf("record response for %s: %w", s.current, ErrUserNotFound)
	}

	if success {
		user.Correct[level]++
	} else {
		user.Errors[level]++
	}
	return s.store.UpdateStatistics(user.ID, user.Correct, user.Errors)
}

// CurrentUserInfo 当前用户信息文本
func (s *Session) CurrentUserInfo() string {
	if s.current == "" {
		return "No hay usuario activo"
	}
	user, ok := s.store.FindByID(s.current)
	if !ok {
		return "No hay usuario activo"
	}
	return fmt.Sprintf("Usuario: %s (TI: %s)\nEdad: %d - Sexo: %s", user.Name, user.ID, user.Age, user.Sex)
}

// LevelStats 单个关卡的统计
type LevelStats struct {
	Level    int // 关卡索引 0-6
	Correct  int
	Errors   int
	Accuracy float64 // 0.0 ~ 1.0，无回答时为 0
}

// LevelReport 返回用户每个关卡的统计
func (s *Session) LevelReport(id string) ([]LevelStats, error) {
	user, ok := s.store.FindByID(id)
	if !ok {
		return nil, fmt.Errorf("level report for %s: %w", id, ErrUserNotFound)
	}
	return BuildLevelReport(user), nil
}

// BuildLevelReport 根据用户记录计算每个关卡的正确率
func BuildLevelReport(user UserRecord) []LevelStats {
	report := make([]LevelStats, config.LevelCount)
	for i := range report {
		st := LevelStats{Level: i, Correct: user.Correct[i], Errors: user.Errors[i]}
		if total := st.Correct + st.Errors; total > 0 {
			st.Accuracy = float64(st.Correct) / float64(total)
		}
		report[i] = st
	}
	return report
}

// FormatLevelReport 以文本形式输出统计
func FormatLevelReport(report []LevelStats) string {
	var b strings.Builder
	for _, st := range report {
		fmt.Fprintf(&b, "Nivel %d: aciertos=%d errores=%d precisión=%.0f%%\n",
			st.Level+1, st.Correct, st.Errors, st.Accuracy*100)
	}
	return b.String()
}

func (s *Session) rememberUser(id string) {
	if s.settings == nil {
		return
	}
	s.settings.SetLastUserID(id)
	if err := s.settings.Save(); err != nil {
		log.Printf("[Session] Warning: failed to save settings: %v", err)
	}
}
