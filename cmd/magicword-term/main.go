// magicword-term 在终端中运行魔法文字练习
//
// 按键与窗口版一致：1-7 选择关卡，E 开始回合，Q 回答正确，R 回答错误，
// F 消除点亮的物体，Tab 显示关卡面板，Esc 或 Ctrl+C 退出。
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/quasilyte/gdata/v2"

	"github.com/decker502/magicword/data"
	"github.com/decker502/magicword/internal/audio"
	"github.com/decker502/magicword/pkg/bootstrap"
	"github.com/decker502/magicword/pkg/embedded"
	"github.com/decker502/magicword/pkg/exercise"
	"github.com/decker502/magicword/pkg/input"
	"github.com/decker502/magicword/pkg/journal"
)

var (
	verbose     = flag.Bool("verbose", false, "把详细日志写入 <data-dir>/magicword-term.log")
	level       = flag.Int("level", 0, "启动关卡 (1-7)")
	dataDir     = flag.String("data-dir", defaultDataDir(), "用户数据库目录（同名 YAML 文件覆盖内置数据）")
	journalPath = flag.String("journal", "", "回合日志库路径（默认 <data-dir>/journal.db，设为 off 关闭）")
	userID      = flag.String("user", "", "登录的用户 TI（默认恢复上次登录的用户）")
	userName    = flag.String("name", "", "注册新用户的姓名（与 --user、--sex、--age 一起使用）")
	userSex     = flag.String("sex", "", "注册新用户的性别 (Masculino/Femenino)")
	userAge     = flag.Int("age", 0, "注册新用户的年龄 (6-14)")
	noSound     = flag.Bool("no-sound", false, "关闭反馈音")
)

var runeBindings = map[rune]input.Signal{
	'1': input.SelectLevel1,
	'2': input.SelectLevel2,
	'3': input.SelectLevel3,
	'4': input.SelectLevel4,
	'5': input.SelectLevel5,
	'6': input.SelectLevel6,
	'7': input.SelectLevel7,
	'e': input.StartRound,
	'q': input.RespondSuccess,
	'r': input.RespondFailure,
	'f': input.Sweep,
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "magicword-data"
	}
	return filepath.Join(home, ".magicword")
}

// registration 指定 --name 时按命令行参数注册新用户
func registration() *bootstrap.Registration {
	if *userName == "" {
		return nil
	}
	return &bootstrap.Registration{ID: *userID, Name: *userName, Sex: *userSex, Age: *userAge}
}

// Terminal 终端宿主
type Terminal struct {
	screen  tcell.Screen
	runtime *bootstrap.Runtime
	player  *audio.FeedbackPlayer
	effects exercise.Effects
	pending []input.Signal
}

func setupLogging() (io.Closer, error) {
	if !*verbose {
		log.SetOutput(io.Discard)
		return nil, nil
	}
	if err := os.MkdirAll(*dataDir, 0o755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(filepath.Join(*dataDir, "magicword-term.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	log.SetOutput(f)
	return f, nil
}

func newTerminal() (*Terminal, error) {
	jp := *journalPath
	switch jp {
	case "":
		jp = filepath.Join(*dataDir, journal.DefaultFileName)
	case "off":
		jp = ""
	}

	gdataManager, err := gdata.Open(gdata.Config{AppName: "magicword"})
	if err != nil {
		log.Printf("[Term] Warning: settings storage unavailable: %v", err)
		gdataManager = nil
	}

	player := audio.NewFeedbackPlayer(!*noSound, 0.8)
	rt, err := bootstrap.New(bootstrap.Options{
		DataDir:      *dataDir,
		JournalPath:  jp,
		Gdata:        gdataManager,
		InitialLevel: *level,
		Sinks:        []exercise.EventSink{player},
		UserID:       *userID,
		Register:     registration(),
	})
	if err != nil {
		return nil, err
	}

	settings := rt.Settings.GetSettings()
	player.SetEnabled(settings.SoundEnabled && !*noSound)
	player.SetVolume(settings.SoundVolume)
	if err := player.Init(); err != nil {
		// 没有音频设备时继续运行
		log.Printf("[Term] Audio initialization failed: %v", err)
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		rt.Close()
		return nil, err
	}
	if err := screen.Init(); err != nil {
		rt.Close()
		return nil, err
	}

	return &Terminal{
		screen:  screen,
		runtime: rt,
		player:  player,
		effects: exercise.Effects{Display: rt.Engine.Display()},
	}, nil
}

// handleEvent 处理终端事件，返回 false 表示退出
func (t *Terminal) handleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return false
		case tcell.KeyTab:
			t.pending = append(t.pending, input.ToggleLevelPanel)
		case tcell.KeyRune:
			r := ev.Rune()
			if r >= 'A' && r <= 'Z' {
				r += 'a' - 'A'
			}
			if s, ok := runeBindings[r]; ok {
				t.pending = append(t.pending, s)
			}
		}
	case *tcell.EventResize:
		t.screen.Sync()
	}
	return true
}

func (t *Terminal) drawText(x, y int, text string, style tcell.Style) {
	for _, r := range text {
		t.screen.SetContent(x, y, r, nil, style)
		x++
	}
}

func (t *Terminal) draw() {
	t.screen.Clear()
	d := t.effects.Display
	rt := t.runtime

	header := tcell.StyleDefault.Bold(true)
	t.drawText(1, 0, d.LevelName, header)
	t.drawText(1, 1, d.LevelDescription, tcell.StyleDefault)

	y := 3
	for i, line := range strings.Split(rt.Session.CurrentUserInfo(), "\n") {
		t.drawText(1, y+i, line, tcell.StyleDefault.Foreground(tcell.ColorGray))
	}

	textStyle := tcell.StyleDefault.Foreground(tcell.ColorWhite).Bold(true)
	if d.HasColor {
		textStyle = textStyle.Foreground(tcell.NewRGBColor(int32(d.Color.R), int32(d.Color.G), int32(d.Color.B)))
	}
	if d.Visible {
		x := 4
		if len(d.Segments) > 0 {
			for _, seg := range d.Segments {
				style := textStyle
				if seg.Emphasize {
					style = style.Underline(true)
				}
				t.drawText(x, 7, seg.Text, style)
				x += len([]rune(seg.Text)) + 1
			}
		} else {
			t.drawText(x, 7, d.Text, textStyle)
		}
		t.drawText(4, 8, fmt.Sprintf("escala %.2f  restantes %d", d.Scale, rt.Engine.Remaining()), tcell.StyleDefault.Dim(true))
	}
	if d.Celebrating {
		t.drawText(4, 10, "¡Bien hecho!", tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true))
	}

	width, _ := t.screen.Size()
	col := width - 28
	if col < 40 {
		col = 40
	}
	t.drawText(col, 0, "Objetos en escena:", header)
	for i, obj := range rt.Objects.AllInteractiveObjects() {
		style := tcell.StyleDefault
		if obj.Highlighted {
			style = style.Foreground(tcell.ColorYellow).Reverse(true)
		}
		t.drawText(col, i+1, obj.Name, style)
	}

	if rt.LevelPanelShown() {
		for i, l := range rt.Levels {
			style := tcell.StyleDefault
			if i == rt.Engine.Level() {
				style = style.Reverse(true)
			}
			t.drawText(1, 12+i, l.Name, style)
		}
	}

	t.screen.Show()
}

func (t *Terminal) run() {
	ticker := time.NewTicker(16 * time.Millisecond) // ~60 FPS
	defer ticker.Stop()

	eventChan := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := t.screen.PollEvent()
			if ev == nil {
				return
			}
			eventChan <- ev
		}
	}()

	for {
		select {
		case ev := <-eventChan:
			if !t.handleEvent(ev) {
				return
			}
		case <-ticker.C:
			t.effects = t.runtime.Tick(bootstrap.FrameTime, t.pending)
			t.pending = t.pending[:0]
			t.draw()
		}
	}
}

func (t *Terminal) cleanup() {
	t.player.Close()
	t.screen.Fini()
	if err := t.runtime.Close(); err != nil {
		log.Printf("[Term] Warning: %v", err)
	}
}

func main() {
	flag.Parse()

	logFile, err := setupLogging()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open log file: %v\n", err)
		os.Exit(1)
	}
	if logFile != nil {
		defer logFile.Close()
	}

	embedded.Init(data.FS)

	term, err := newTerminal()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	defer term.cleanup()

	term.run()
}
