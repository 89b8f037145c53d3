// Package bootstrap 把场景、练习引擎、用户数据和回合日志组装成一个可运行的 Runtime
//
// 宿主（Ebiten 窗口、终端）只需要采样输入信号并按固定步长调用 Tick。
package bootstrap

import (
	"fmt"
	"log"
	"time"

	"github.com/quasilyte/gdata/v2"

	"github.com/decker502/magicword/pkg/config"
	"github.com/decker502/magicword/pkg/ecs"
	"github.com/decker502/magicword/pkg/embedded"
	"github.com/decker502/magicword/pkg/exercise"
	"github.com/decker502/magicword/pkg/game"
	"github.com/decker502/magicword/pkg/input"
	"github.com/decker502/magicword/pkg/journal"
	"github.com/decker502/magicword/pkg/systems"
)

// 数据文件路径（嵌入路径，磁盘覆盖时取文件名）
const (
	LevelsFile   = "data/levels.yaml"
	WordBankFile = "data/word_bank.yaml"
	SceneFile    = "data/scene.yaml"
)

// FrameTime 固定帧步长（秒）
const FrameTime = 1.0 / 60.0

// Options 启动参数
type Options struct {
	DataDir      string              // 用户数据库目录，同时是数据文件的覆盖目录
	JournalPath  string              // 回合日志库路径，为空时不记录
	Gdata        *gdata.Manager      // 设置存储，可为 nil
	InitialLevel int                 // 启动关卡（1-7），0 表示第 1 关
	Rand         exercise.Randomizer // 为空时使用默认随机源
	Now          func() time.Time
	Sinks        []exercise.EventSink // 额外的事件接收者（例如宿主的反馈音）
	UserID       string               // 启动时登录的用户，为空时恢复上次登录的用户
	Register     *Registration        // 非空时先注册新用户再登录，忽略 UserID
}

// Registration 启动时注册的新用户
type Registration struct {
	ID   string
	Name string
	Sex  string
	Age  int
}

// Runtime 组装后的运行时
type Runtime struct {
	Entities   *ecs.EntityManager
	Words      *config.WordBank
	Levels     []config.LevelDefinition
	Scene      *config.SceneConfig
	Objects    *systems.InteractiveObjectSystem
	Timers     *systems.TimerSystem
	Eliminator *systems.EliminationSystem
	Spawner    *systems.SpawnerSystem
	Engine     *exercise.Engine
	Store      *game.UserStore
	Settings   *game.SettingsManager
	Session    *game.Session
	Journal    *journal.Journal // 未启用时为 nil
	Gate       *input.CooldownGate

	clock           float64 // 累计游戏时间（秒），用于输入冷却
	levelPanelShown bool
}

// LoadData 读取关卡、单词库和场景配置
//
// 每个文件优先读取 overrideDir 下的同名文件，其次是嵌入版本；
// 两者都不存在时使用内置默认值。文件存在但内容非法时返回错误。
func LoadData(overrideDir string) (*config.WordBank, []config.LevelDefinition, *config.SceneConfig, error) {
	words := config.DefaultWordBank()
	if data, source, err := embedded.ReadWithOverride(WordBankFile, overrideDir); err == nil {
		if words, err = config.LoadWordBank(data); err != nil {
			return nil, nil, nil, fmt.Errorf("%s: %w", source, err)
		}
		log.Printf("[Bootstrap] Word bank loaded from %s", source)
	} else {
		log.Printf("[Bootstrap] Using built-in word bank (%v)", err)
	}

	levels := config.DefaultLevelDefinitions()
	if data, source, err := embedded.ReadWithOverride(LevelsFile, overrideDir); err == nil {
		if levels, err = config.LoadLevelDefinitions(data); err != nil {
			return nil, nil, nil, fmt.Errorf("%s: %w", source, err)
		}
		log.Printf("[Bootstrap] Level definitions loaded from %s", source)
	} else {
		log.Printf("[Bootstrap] Using built-in level definitions (%v)", err)
	}

	scene := config.DefaultSceneConfig(words)
	if data, source, err := embedded.ReadWithOverride(SceneFile, overrideDir); err == nil {
		if scene, err = config.LoadSceneConfig(data); err != nil {
			return nil, nil, nil, fmt.Errorf("%s: %w", source, err)
		}
		log.Printf("[Bootstrap] Scene loaded from %s (%d spawners)", source, len(scene.Spawners))
	} else {
		log.Printf("[Bootstrap] Using default scene (%v)", err)
	}

	return words, levels, scene, nil
}

// DisplaySettingsFrom 把玩家设置转换为引擎显示设置
func DisplaySettingsFrom(s *game.GameSettings) exercise.DisplaySettings {
	ds := exercise.DefaultDisplaySettings()
	if s == nil {
		return ds
	}
	ds.TypewriterEnabled = s.TypewriterEnabled
	if s.TypewriterSpeed > 0 {
		ds.TypewriterSpeed = s.TypewriterSpeed
	}
	return ds
}

// New 创建运行时
func New(opts Options) (*Runtime, error) {
	words, levels, scene, err := LoadData(opts.DataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load data: %w", err)
	}

	storeOpts := []game.StoreOption{}
	if opts.Now != nil {
		storeOpts = append(storeOpts, game.WithClock(opts.Now))
	}
	store, err := game.NewUserStore(opts.DataDir, storeOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to open user store: %w", err)
	}

	settings, err := game.NewSettingsManager(opts.Gdata)
	if err != nil {
		return nil, fmt.Errorf("failed to create settings manager: %w", err)
	}
	session := game.NewSession(store, settings)

	rt := &Runtime{
		Entities: ecs.NewEntityManager(),
		Words:    words,
		Levels:   levels,
		Scene:    scene,
		Store:    store,
		Settings: settings,
		Session:  session,
		Gate:     input.NewCooldownGate(input.DefaultCooldown),
	}
	rt.Objects = systems.NewInteractiveObjectSystem(rt.Entities)
	rt.Timers = systems.NewTimerSystem(rt.Entities)
	rt.Eliminator = systems.NewEliminationSystem(rt.Entities, rt.Objects)
	rt.Spawner = systems.NewSpawnerSystem(rt.Entities, scene)

	sinks := exercise.MultiSink{exercise.LogSink{}}
	if opts.JournalPath != "" {
		j, err := journal.Open(opts.JournalPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open journal: %w", err)
		}
		rt.Journal = j
		sinks = append(sinks, j)
	}
	sinks = append(sinks, opts.Sinks...)

	engine, err := exercise.NewEngine(exercise.Deps{
		Words:      words,
		Levels:     levels,
		Scene:      rt.Objects,
		Eliminator: rt.Eliminator,
		Timers:     rt.Timers,
		Stats:      session,
		Sink:       sinks,
		Rand:       opts.Rand,
		Display:    DisplaySettingsFrom(settings.GetSettings()),
		Now:        opts.Now,
	})
	if err != nil {
		rt.Close()
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}
	rt.Engine = engine

	if opts.InitialLevel > 0 {
		if err := engine.SelectLevel(opts.InitialLevel - 1); err != nil {
			rt.Close()
			return nil, err
		}
	}

	spawned := rt.Spawner.GenerateUpToLimit()
	log.Printf("[Bootstrap] Scene ready: %d object(s)", spawned)

	if err := rt.login(opts); err != nil {
		rt.Close()
		return nil, err
	}
	return rt, nil
}

// login 按启动参数登录：注册新用户、登录指定用户或恢复上次登录的用户
func (rt *Runtime) login(opts Options) error {
	switch {
	case opts.Register != nil:
		r := opts.Register
		if _, err := rt.Session.Register(r.ID, r.Name, r.Sex, r.Age); err != nil {
			return fmt.Errorf("failed to register user %s: %w", r.ID, err)
		}
	case opts.UserID != "":
		if _, err := rt.Session.Login(opts.UserID); err != nil {
			return fmt.Errorf("failed to log in user %s: %w", opts.UserID, err)
		}
	default:
		if rt.Session.RestoreLastUser() {
			log.Printf("[Bootstrap] Restored session for user %s", rt.Session.CurrentUserID())
		} else {
			log.Printf("[Bootstrap] No user logged in, responses will not be recorded")
		}
	}
	return nil
}

// ApplySettings 把当前玩家设置同步到引擎（设置修改后调用）
func (rt *Runtime) ApplySettings() {
	rt.Engine.SetDisplaySettings(DisplaySettingsFrom(rt.Settings.GetSettings()))
}

// LevelPanelShown 关卡面板是否可见
func (rt *Runtime) LevelPanelShown() bool {
	return rt.levelPanelShown
}

// Clock 累计游戏时间（秒）
func (rt *Runtime) Clock() float64 {
	return rt.clock
}

// Tick 推进一帧
//
// 顺序：输入冷却过滤 → 物体闪烁 → 生成器补充 → 引擎（输入、计时器、动画）→ 清理实体。
func (rt *Runtime) Tick(dt float64, signals []input.Signal) exercise.Effects {
	rt.clock += dt

	allowed := rt.Gate.Filter(signals, rt.clock)
	if input.Contains(allowed, input.ToggleLevelPanel) {
		rt.levelPanelShown = !rt.levelPanelShown
	}

	rt.Objects.Update(dt, rt.Engine.Generation())
	rt.Spawner.Update(dt)
	effects := rt.Engine.Tick(dt, input.ToEvents(allowed))
	rt.Entities.RemoveMarkedEntities()
	return effects
}

// Close 释放资源
func (rt *Runtime) Close() error {
	if rt.Journal != nil {
		return rt.Journal.Close()
	}
	return nil
}
