package game

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/decker502/magicword/pkg/config"
)

// UserDatabaseFile 用户数据库文件名
const UserDatabaseFile = "user_database.json"

// 演示用户（数据库为空或损坏时写入）
const (
	DemoUserID   = "123456789"
	demoUserName = "Usuario de Prueba"
	demoUserSex  = "Masculino"
	demoUserAge  = 8
)

// lastSessionNoOffset 不带时区的 ISO-8601 格式
const lastSessionNoOffset = "2006-01-02T15:04:05.999999999"

// UserRecord 用户记录
//
// Correct/Errors 每个关卡一个计数，长度固定为 config.LevelCount。
type UserRecord struct {
	ID          string
	Name        string
	Sex         string
	Age         int
	Correct     []int
	Errors      []int
	LastSession time.Time
}

// clone 深拷贝，避免调用方修改存储中的数组
func (u UserRecord) clone() UserRecord {
	c := u
	c.Correct = append([]int(nil), u.Correct...)
	c.Errors = append([]int(nil), u.Errors...)
	return c
}

// userFileRecord JSON 文件中的用户结构
type userFileRecord struct {
	UserID            string `json:"userID"`
	UserName          string `json:"userName"`
	Sexo              string `json:"sexo"`
	Edad              int    `json:"edad"`
	Aciertos          []int  `json:"aciertos"`
	Errores           []int  `json:"errores"`
	LastSessionString string `json:"lastSessionString"`
}

// userDatabaseFile JSON 文件顶层结构
type userDatabaseFile struct {
	Users []userFileRecord `json:"users"`
}

// UserStore 用户数据库
//
// 职责：
//   - 启动时加载一次 JSON 文件，内存中保存唯一可写副本
//   - 每次修改后整体重写文件（临时文件 + 原子重命名）
//   - 文件缺失、为空或损坏时写入演示用户
type UserStore struct {
	mu    sync.Mutex
	path  string
	users []UserRecord
	now   func() time.Time
}

// StoreOption UserStore 选项
type StoreOption func(*UserStore)

// WithClock 注入时钟（测试用）
func WithClock(now func() time.Time) StoreOption {
	return func(s *UserStore) {
		s.now = now
	}
}

// NewUserStore 打开（或创建）dataDir 下的用户数据库
//
// 参数：
//   - dataDir: 数据目录
//
// 返回：
//   - *UserStore: 用户数据库
//   - error: 无法创建目录或写入初始文件时返回错误
func NewUserStore(dataDir string, opts ...StoreOption) (*UserStore, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	s := &UserStore{
		path: filepath.Join(dataDir, UserDatabaseFile),
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	seeded, err := s.load()
	if err != nil {
		log.Printf("[UserStore] Warning: %v (reinitializing database)", err)
	}
	if seeded {
		if err := s.persist(); err != nil {
			return nil, err
		}
	}

	log.Printf("[UserStore] Loaded %d user(s) from %s", len(s.users), s.path)
	return s, nil
}

// load 读取文件，返回是否写入了演示用户
func (s *UserStore) load() (bool, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		s.seed()
		if errors.Is(err, os.ErrNotExist) {
			return true, nil
		}
		return true, fmt.Errorf("failed to read user database: %w", err)
	}

	if len(bytes.TrimSpace(data)) == 0 {
		s.seed()
		return true, nil
	}

	var file userDatabaseFile
	if err := json.Unmarshal(data, &file); err != nil {
		s.seed()
		return true, fmt.Errorf("failed to parse user database: %w", err)
	}

	if len(file.Users) == 0 {
		s.seed()
		return true, nil
	}

	now := s.now()
	s.users = make([]UserRecord, 0, len(file.Users))
	for _, fu := range file.Users {
		s.users = append(s.users, UserRecord{
			ID:          fu.UserID,
			Name:        fu.UserName,
			Sex:         fu.Sexo,
			Age:         fu.Edad,
			Correct:     normalizeCounts(fu.Aciertos),
			Errors:      normalizeCounts(fu.Errores),
			LastSession: parseLastSession(fu.LastSessionString, now),
		})
	}
	return false, nil
}

// seed 重置为只包含演示用户的数据库
func (s *UserStore) seed() {
	demo := UserRecord{
		ID:          DemoUserID,
		Name:        demoUserName,
		Sex:         demoUserSex,
		Age:         demoUserAge,
		Correct:     make([]int, config.LevelCount),
		Errors:      make([]int, config.LevelCount),
		LastSession: s.now(),
	}
	demo.Correct[0], demo.Errors[0] = 5, 2
	demo.Correct[1], demo.Errors[1] = 3, 1

	s.users = []UserRecord{demo}
	log.Printf("[UserStore] Seeded demo user %s (%s)", demo.ID, demo.Name)
}

// persist 整体重写数据库文件（调用方需持有锁）
func (s *UserStore) persist() error {
	file := userDatabaseFile{Users: make([]userFileRecord, 0, len(s.users))}
	for _, u := range s.users {
		file.Users = append(file.Users, userFileRecord{
			UserID:            u.ID,
			UserName:          u.Name,
			Sexo:              u.Sex,
			Edad:              u.Age,
			Aciertos:          u.Correct,
			Errores:           u.Errors,
			LastSessionString: u.LastSession.Format(time.RFC3339Nano),
		})
	}

	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal user database: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), UserDatabaseFile+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write user database: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace user database: %w", err)
	}
	return nil
}

// Path 数据库文件路径
func (s *UserStore) Path() string {
	return s.path
}

// indexOf 查找用户下标（调用方需持有锁）
func (s *UserStore) indexOf(id string) int {
	for i := range s.users {
		if s.users[i].ID == id {
			return i
		}
	}
	return -1
}

// FindByID 按 ID 查找用户（返回副本）
func (s *UserStore) FindByID(id string) (UserRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return UserRecord{}, false
	}
	return s.users[i].clone(), true
}

// Exists 用户是否存在
func (s *UserStore) Exists(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.indexOf(id) >= 0
}

// Count 用户数量
func (s *UserStore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users)
}

// List 返回所有用户的快照（深拷贝）
func (s *UserStore) List() []UserRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]UserRecord, 0, len(s.users))
	for _, u := range s.users {
		result = append(result, u.clone())
	}
	return result
}

// Register 注册新用户
//
// 返回：
//   - UserRecord: 新用户记录
//   - error: 输入非法时返回 *ValidationError（ID 重复时同时满足 errors.Is(err, ErrUserExists)）
func (s *UserStore) Register(id, name, sex string, age int) (UserRecord, error) {
	if err := validateUser(id, name, sex, age); err != nil {
		log.Printf("[UserStore] Registration rejected: %v", err)
		return UserRecord{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexOf(id) >= 0 {
		err := &ValidationError{Field: "userID", Message: "Esta TI ya está registrada. Inicia sesión.", Err: ErrUserExists}
		log.Printf("[UserStore] Registration rejected: %v", err)
		return UserRecord{}, err
	}

	user := UserRecord{
		ID:          id,
		Name:        name,
		Sex:         sex,
		Age:         age,
		Correct:     make([]int, config.LevelCount),
		Errors:      make([]int, config.LevelCount),
		LastSession: s.now(),
	}
	s.users = append(s.users, user)
	if err := s.persist(); err != nil {
		s.users = s.users[:len(s.users)-1]
		return UserRecord{}, err
	}

	log.Printf("[UserStore] Registered user %s (%s)", id, name)
	return user.clone(), nil
}

// Login 登录：更新最后会话时间，不修改统计数据
func (s *UserStore) Login(id string) (UserRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		log.Printf("[UserStore] Login failed: user %s not found", id)
		return UserRecord{}, fmt.Errorf("login %s: %w", id, ErrUserNotFound)
	}

	s.users[i].LastSession = s.now()
	if err := s.persist(); err != nil {
		return UserRecord{}, err
	}
	return s.users[i].clone(), nil
}

// UpdateStatistics 覆盖用户的统计数据（逐元素覆盖到两者长度的较小值）并更新最后会话时间
func (s *UserStore) UpdateStatistics(id string, correct, errs []int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		log.Printf("[UserStore] Warning: cannot update statistics, user %s not found", id)
		return fmt.Errorf("update statistics for %s: %w", id, ErrUserNotFound)
	}

	previous := s.users[i].clone()
	u := &s.users[i]
	copy(u.Correct, correct)
	copy(u.Errors, errs)
	u.LastSession = s.now()

	if err := s.persist(); err != nil {
		s.users[i] = previous
		return err
	}
	log.Printf("[UserStore] Statistics updated for user %s", id)
	return nil
}

// Update 用 record 覆盖 oldID 对应的用户
//
// 新 ID 与其他用户冲突时失败；record.LastSession 为零值时保留原有时间。
func (s *UserStore) Update(oldID string, record UserRecord) error {
	if err := validateUser(record.ID, record.Name, record.Sex, record.Age); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(oldID)
	if i < 0 {
		return fmt.Errorf("update %s: %w", oldID, ErrUserNotFound)
	}
	if record.ID != oldID && s.indexOf(record.ID) >= 0 {
		log.Printf("[UserStore] Update rejected: user %s already exists", record.ID)
		return fmt.Errorf("update %s -> %s: %w", oldID, record.ID, ErrUserExists)
	}

	previous := s.users[i].clone()
	u := &s.users[i]
	u.ID = record.ID
	u.Name = record.Name
	u.Sex = record.Sex
	u.Age = record.Age
	copy(u.Correct, record.Correct)
	copy(u.Errors, record.Errors)
	if !record.LastSession.IsZero() {
		u.LastSession = record.LastSession
	}

	if err := s.persist(); err != nil {
		s.users[i] = previous
		return err
	}
	log.Printf("[UserStore] Updated user %s (%s)", u.ID, u.Name)
	return nil
}

// Delete 删除用户，用户不存在时返回 false
func (s *UserStore) Delete(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		log.Printf("[UserStore] Warning: cannot delete user %s, not found", id)
		return false, nil
	}

	removed := s.users[i]
	s.users = append(s.users[:i], s.users[i+1:]...)
	if err := s.persist(); err != nil {
		s.users = append(s.users[:i], append([]UserRecord{removed}, s.users[i:]...)...)
		return false, err
	}
	log.Printf("[UserStore] Deleted user %s (%s)", removed.ID, removed.Name)
	return true, nil
}

// normalizeCounts 将计数数组调整为固定长度
func normalizeCounts(counts []int) []int {
	result := make([]int, config.LevelCount)
	copy(result, counts)
	return result
}

// parseLastSession 解析最后会话时间，缺失或无法解析时返回 now
func parseLastSession(s string, now time.Time) time.Time {
	if s == "" {
		return now
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t
	}
	if t, err := time.ParseInLocation(lastSessionNoOffset, s, time.Local); err == nil {
		return t
	}
	log.Printf("[UserStore] Warning: unparsable lastSessionString %q, using now", s)
	return now
}
