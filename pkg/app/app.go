// Package app 提供练习应用的 Ebiten 宿主
//
// 该包把键盘输入翻译为抽象信号，按固定步长推进 bootstrap.Runtime，
// 并用调试文字绘制魔法文字、场景物体和关卡面板。
package app

import (
	"fmt"
	"image/color"
	"io"
	"log"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/quasilyte/gdata/v2"

	"github.com/decker502/magicword/pkg/bootstrap"
	"github.com/decker502/magicword/pkg/config"
	"github.com/decker502/magicword/pkg/exercise"
	"github.com/decker502/magicword/pkg/input"
	"github.com/decker502/magicword/pkg/utils"
)

// Config 定义应用启动配置
type Config struct {
	// Verbose 启用详细日志输出
	Verbose bool
	// Level 启动关卡（1-7），0 表示默认第 1 关
	Level int
	// DataDir 用户数据库目录
	DataDir string
	// JournalPath 回合日志库路径，为空时不记录
	JournalPath string
	// Gdata 设置存储，可为 nil
	Gdata *gdata.Manager
	// UserID 登录的用户，为空时恢复上次登录的用户
	UserID string
	// Register 非空时注册新用户并登录
	Register *bootstrap.Registration
}

// keyBinding 按键到信号的映射
type keyBinding struct {
	key    ebiten.Key
	signal input.Signal
}

var keyBindings = []keyBinding{
	{ebiten.KeyDigit1, input.SelectLevel1},
	{ebiten.KeyDigit2, input.SelectLevel2},
	{ebiten.KeyDigit3, input.SelectLevel3},
	{ebiten.KeyDigit4, input.SelectLevel4},
	{ebiten.KeyDigit5, input.SelectLevel5},
	{ebiten.KeyDigit6, input.SelectLevel6},
	{ebiten.KeyDigit7, input.SelectLevel7},
	{ebiten.KeyE, input.StartRound},
	{ebiten.KeyQ, input.RespondSuccess},
	{ebiten.KeyR, input.RespondFailure},
	{ebiten.KeyF, input.Sweep},
	{ebiten.KeyTab, input.ToggleLevelPanel},
}

var (
	backgroundColor  = color.RGBA{R: 24, G: 20, B: 48, A: 255}
	celebrationColor = color.RGBA{R: 60, G: 40, B: 90, A: 255}
)

// celebrationFadeTime 庆祝背景渐变时长（秒）
const celebrationFadeTime = 0.5

// App 是练习应用的核心包装器，实现 ebiten.Game 接口
type App struct {
	runtime                  *bootstrap.Runtime
	effects                  exercise.Effects
	swatch                   *ebiten.Image
	verbose                  bool
	celebrationFade          float64 // 庆祝背景渐变进度 0~1
	pendingWindowSizeReset   bool    // 延迟设置窗口大小标志
	windowSizeResetCountdown int     // 延迟帧数
}

// NewApp 创建并初始化练习应用
//
// 调用此函数前，必须先调用 embedded.Init() 初始化嵌入数据。
func NewApp(cfg Config) (*App, error) {
	// 配置日志输出
	if !cfg.Verbose {
		log.SetOutput(io.Discard)
		log.SetFlags(0)
	}

	rt, err := bootstrap.New(bootstrap.Options{
		DataDir:      cfg.DataDir,
		JournalPath:  cfg.JournalPath,
		Gdata:        cfg.Gdata,
		InitialLevel: cfg.Level,
		UserID:       cfg.UserID,
		Register:     cfg.Register,
	})
	if err != nil {
		return nil, fmt.Errorf("初始化失败: %w", err)
	}

	if rt.Settings.GetSettings().Fullscreen {
		ebiten.SetFullscreen(true)
	}

	log.Printf("[App] Ready: level %d, user %q", rt.Engine.Level()+1, rt.Session.CurrentUserID())
	return &App{
		runtime: rt,
		effects: exercise.Effects{Display: rt.Engine.Display()},
		swatch:  ebiten.NewImage(config.ColorSwatchSize, config.ColorSwatchSize),
		verbose: cfg.Verbose,
	}, nil
}

// SampleSignals 读取本帧刚按下的按键
func SampleSignals() []input.Signal {
	var signals []input.Signal
	for _, b := range keyBindings {
		if inpututil.IsKeyJustPressed(b.key) {
			signals = append(signals, b.signal)
		}
	}
	return signals
}

// Update 更新练习逻辑
// 每个 tick 调用一次（通常每秒 60 次）
func (a *App) Update() error {
	// 延迟设置窗口大小（退出全屏后需要等待几帧才能正确设置）
	if a.pendingWindowSizeReset {
		a.windowSizeResetCountdown--
		if a.windowSizeResetCountdown <= 0 {
			ebiten.SetWindowSize(config.GameWindowWidth, config.GameWindowHeight)
			a.pendingWindowSizeReset = false
		}
	}

	// F11 切换全屏
	if inpututil.IsKeyJustPressed(ebiten.KeyF11) {
		a.toggleFullscreen()
	}

	a.effects = a.runtime.Tick(bootstrap.FrameTime, SampleSignals())

	step := bootstrap.FrameTime / celebrationFadeTime
	if a.effects.Display.Celebrating {
		a.celebrationFade = utils.Clamp01(a.celebrationFade + step)
	} else {
		a.celebrationFade = utils.Clamp01(a.celebrationFade - step)
	}
	return nil
}

func (a *App) toggleFullscreen() {
	fullscreen := !ebiten.IsFullscreen()
	ebiten.SetFullscreen(fullscreen)
	if !fullscreen {
		if ebiten.IsWindowMaximized() || ebiten.IsWindowMinimized() {
			ebiten.RestoreWindow()
		}
		a.pendingWindowSizeReset = true
		a.windowSizeResetCountdown = 3
	}

	a.runtime.Settings.SetFullscreen(fullscreen)
	if err := a.runtime.Settings.Save(); err != nil {
		log.Printf("[App] Warning: failed to save settings: %v", err)
	}
}

// Draw 绘制练习画面
// 每帧调用一次
func (a *App) Draw(screen *ebiten.Image) {
	d := a.effects.Display
	screen.Fill(blendColor(backgroundColor, celebrationColor, utils.EaseInOutQuad(a.celebrationFade)))

	ebitenutil.DebugPrintAt(screen, d.LevelName, 10, 10)
	ebitenutil.DebugPrintAt(screen, d.LevelDescription, 10, 10+config.DebugLineHeight)
	ebitenutil.DebugPrintAt(screen, a.runtime.Session.CurrentUserInfo(), 10, 10+3*config.DebugLineHeight)

	if d.Visible {
		a.drawMagicText(screen, d)
	}
	if d.Celebrating {
		ebitenutil.DebugPrintAt(screen, "¡Bien hecho!", config.MagicTextX, config.MagicTextBaseY-2*config.DebugLineHeight)
	}

	a.drawObjects(screen)
	if a.runtime.LevelPanelShown() {
		a.drawLevelPanel(screen)
	}
}

func (a *App) drawMagicText(screen *ebiten.Image, d exercise.DisplayIntent) {
	y := config.MagicTextY(utils.EaseOutCubic(d.RiseProgress()))

	text := d.Text
	if len(d.Segments) > 0 {
		parts := make([]string, 0, len(d.Segments))
		for _, seg := range d.Segments {
			if seg.Emphasize {
				parts = append(parts, "["+seg.Text+"]")
			} else {
				parts = append(parts, seg.Text)
			}
		}
		text = strings.Join(parts, " ")
	}
	ebitenutil.DebugPrintAt(screen, text, config.MagicTextX, y)
	ebitenutil.DebugPrintAt(screen,
		fmt.Sprintf("escala %.2f  tamaño %.1f  restantes %d", d.Scale, d.FontSize, a.runtime.Engine.Remaining()),
		config.MagicTextX, y+config.DebugLineHeight)

	if d.HasColor {
		a.swatch.Fill(d.Color)
		op := &ebiten.DrawImageOptions{}
		op.GeoM.Translate(float64(config.MagicTextX-config.ColorSwatchSize-8), float64(y))
		screen.DrawImage(a.swatch, op)
	}
}

func blendColor(from, to color.RGBA, t float64) color.RGBA {
	mix := func(a, b uint8) uint8 {
		return uint8(utils.Lerp(float64(a), float64(b), t))
	}
	return color.RGBA{R: mix(from.R, to.R), G: mix(from.G, to.G), B: mix(from.B, to.B), A: 255}
}

func (a *App) drawObjects(screen *ebiten.Image) {
	ebitenutil.DebugPrintAt(screen, "Objetos en escena:", config.ObjectListX, config.ObjectListY)
	for i, obj := range a.runtime.Objects.AllInteractiveObjects() {
		mark := "   "
		if a.runtime.Objects.IsMarked(obj.ID) {
			mark = "(*)"
		}
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("%s %s", mark, obj.Name), config.ObjectListX, config.ObjectListLineY(i))
	}
}

func (a *App) drawLevelPanel(screen *ebiten.Image) {
	for i, l := range a.runtime.Levels {
		prefix := "  "
		if i == a.runtime.Engine.Level() {
			prefix = "> "
		}
		ebitenutil.DebugPrintAt(screen, prefix+l.Name, config.LevelPanelX, config.LevelPanelY+i*config.DebugLineHeight)
	}
}

// DrawFinalScreen 实现 FinalScreenDrawer 接口
// 用于控制全屏时的缩放和 letterbox 颜色
func (a *App) DrawFinalScreen(screen ebiten.FinalScreen, offscreen *ebiten.Image, geoM ebiten.GeoM) {
	screen.Fill(color.Black)
	op := &ebiten.DrawImageOptions{}
	op.GeoM = geoM
	op.Filter = ebiten.FilterLinear
	screen.DrawImage(offscreen, op)
}

// Layout 返回逻辑屏幕尺寸
// 此尺寸独立于实际窗口大小，Ebitengine 会自动处理缩放
func (a *App) Layout(outsideWidth, outsideHeight int) (int, int) {
	return config.GameWindowWidth, config.GameWindowHeight
}

// Close 释放资源（窗口关闭后调用）
func (a *App) Close() error {
	return a.runtime.Close()
}

// IsVerbose 返回是否启用了详细日志
func (a *App) IsVerbose() bool {
	return a.verbose
}
