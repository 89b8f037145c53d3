// Package journal 将练习引擎的事件写入本地 SQLite 数据库
//
// 每条事件一行，供管理工具查询最近的回合和按关卡汇总。
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"github.com/decker502/magicword/pkg/config"
	"github.com/decker502/magicword/pkg/exercise"
)

// DefaultFileName 默认数据库文件名
const DefaultFileName = "journal.db"

// Entry 一条已记录的事件
type Entry struct {
	ID         string             `json:"id"`
	Kind       exercise.EventKind `json:"kind"`
	Generation uint64             `json:"generation"`
	Level      int                `json:"level"`
	Word       string             `json:"word,omitempty"`
	Text       string             `json:"text,omitempty"`
	Remaining  int                `json:"remaining"`
	Success    bool               `json:"success"`
	Objects    []string           `json:"objects,omitempty"`
	Reason     string             `json:"reason,omitempty"`
	At         time.Time          `json:"at"`
}

// LevelSummary 单个关卡的汇总
type LevelSummary struct {
	Level             int `json:"level"`
	RoundsStarted     int `json:"roundsStarted"`
	RoundsResolved    int `json:"roundsResolved"`
	RoundsFailed      int `json:"roundsFailed"`
	ResponsesAccepted int `json:"responsesAccepted"`
	ResponsesRejected int `json:"responsesRejected"`
}

// Journal 回合日志库，实现 exercise.EventSink
type Journal struct {
	db *sql.DB

	mu      sync.Mutex // 保护 entropy
	entropy *ulid.MonotonicEntropy
}

// Open 打开（或创建）path 处的日志库
func Open(path string) (*Journal, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create journal dir: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}

	j := &Journal{
		db:      db,
		entropy: ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0),
	}
	if err := j.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate journal: %w", err)
	}

	log.Printf("[Journal] Opened %s", path)
	return j, nil
}

func (j *Journal) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS events (
		id          TEXT PRIMARY KEY,
		kind        TEXT NOT NULL,
		generation  INTEGER NOT NULL,
		level       INTEGER NOT NULL,
		word        TEXT NOT NULL DEFAULT '',
		text        TEXT NOT NULL DEFAULT '',
		remaining   INTEGER NOT NULL DEFAULT 0,
		success     INTEGER NOT NULL DEFAULT 0,
		objects     TEXT NOT NULL DEFAULT '',
		reason      TEXT NOT NULL DEFAULT '',
		created_at  TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_events_created ON events(created_at DESC);
	CREATE INDEX IF NOT EXISTS idx_events_level_kind ON events(level, kind);
	`
	_, err := j.db.Exec(schema)
	return err
}

func (j *Journal) newID(at time.Time) string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(at), j.entropy).String()
}

// Emit 实现 exercise.EventSink，写入失败只记录日志
func (j *Journal) Emit(ev exercise.Event) {
	if err := j.Record(context.Background(), ev); err != nil {
		log.Printf("[Journal] Warning: failed to record %s: %v", ev.Kind, err)
	}
}

// Record 写入一条事件
func (j *Journal) Record(ctx context.Context, ev exercise.Event) error {
	at := ev.At
	if at.IsZero() {
		at = time.Now()
	}
	at = at.UTC()

	success := 0
	if ev.Success {
		success = 1
	}

	_, err := j.db.ExecContext(ctx,
		`INSERT INTO events (id, kind, generation, level, word, text, remaining, success, objects, reason, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		j.newID(at), string(ev.Kind), int64(ev.Generation), ev.Level, ev.Word, ev.Text,
		ev.Remaining, success, strings.Join(ev.Objects, "\n"), ev.Reason, at.Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

// Recent 返回最近写入的 limit 条事件（新的在前），limit 非正数时取 20 条
func (j *Journal) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := j.db.QueryContext(ctx,
		`SELECT id, kind, generation, level, word, text, remaining, success, objects, reason, created_at
		 FROM events ORDER BY rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e         Entry
			kind      string
			gen       int64
			success   int
			objects   string
			createdAt string
		)
		if err := rows.Scan(&e.ID, &kind, &gen, &e.Level, &e.Word, &e.Text, &e.Remaining,
			&success, &objects, &e.Reason, &createdAt); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		e.Kind = exercise.EventKind(kind)
		e.Generation = uint64(gen)
		e.Success = success != 0
		if objects != "" {
			e.Objects = strings.Split(objects, "\n")
		}
		e.At, _ = time.Parse(time.RFC3339Nano, createdAt)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// LevelSummary 按关卡汇总回合与回答数量，总是返回全部 7 个关卡
func (j *Journal) LevelSummary(ctx context.Context) ([]LevelSummary, error) {
	summary := make([]LevelSummary, config.LevelCount)
	for i := range summary {
		summary[i].Level = i
	}

	rows, err := j.db.QueryContext(ctx,
		`SELECT level, kind, COUNT(*) FROM events
		 WHERE kind IN (?, ?, ?, ?, ?)
		 GROUP BY level, kind`,
		string(exercise.EventRoundStarted), string(exercise.EventRoundResolved), string(exercise.EventRoundFailed),
		string(exercise.EventResponseAccepted), string(exercise.EventResponseRejected))
	if err != nil {
		return nil, fmt.Errorf("query summary: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			level int
			kind  string
			count int
		)
		if err := rows.Scan(&level, &kind, &count); err != nil {
			return nil, fmt.Errorf("scan summary: %w", err)
		}
		if level < 0 || level >= config.LevelCount {
			continue
		}
		s := &summary[level]
		switch exercise.EventKind(kind) {
		case exercise.EventRoundStarted:
			s.RoundsStarted = count
		case exercise.EventRoundResolved:
			s.RoundsResolved = count
		case exercise.EventRoundFailed:
			s.RoundsFailed = count
		case exercise.EventResponseAccepted:
			s.ResponsesAccepted = count
		case exercise.EventResponseRejected:
			s.ResponsesRejected = count
		}
	}
	return summary, rows.Err()
}

// Close 关闭数据库
func (j *Journal) Close() error {
	return j.db.Close()
}
