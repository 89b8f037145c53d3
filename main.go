package main

import (
	"flag"
	"log"
	"os"
	"path/filepath"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/quasilyte/gdata/v2"

	"github.com/decker502/magicword/data"
	"github.com/decker502/magicword/pkg/app"
	"github.com/decker502/magicword/pkg/bootstrap"
	"github.com/decker502/magicword/pkg/config"
	"github.com/decker502/magicword/pkg/embedded"
	"github.com/decker502/magicword/pkg/journal"
)

var (
	verbose     = flag.Bool("verbose", false, "显示详细调试信息")
	level       = flag.Int("level", 0, "启动关卡 (1-7)")
	dataDir     = flag.String("data-dir", defaultDataDir(), "用户数据库目录（同名 YAML 文件覆盖内置数据）")
	journalPath = flag.String("journal", "", "回合日志库路径（默认 <data-dir>/journal.db，设为 off 关闭）")
	userID      = flag.String("user", "", "登录的用户 TI（默认恢复上次登录的用户）")
	userName    = flag.String("name", "", "注册新用户的姓名（与 --user、--sex、--age 一起使用）")
	userSex     = flag.String("sex", "", "注册新用户的性别 (Masculino/Femenino)")
	userAge     = flag.Int("age", 0, "注册新用户的年龄 (6-14)")
)

// defaultDataDir 默认数据目录 ~/.magicword
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

func main() {
	flag.Parse()

	// 初始化嵌入数据
	embedded.Init(data.FS)

	jp := *journalPath
	switch jp {
	case "":
		jp = filepath.Join(*dataDir, journal.DefaultFileName)
	case "off":
		jp = ""
	}

	gdataManager, err := gdata.Open(gdata.Config{AppName: "magicword"})
	if err != nil {
		log.Printf("[Main] Warning: settings storage unavailable: %v", err)
		gdataManager = nil
	}

	game, err := app.NewApp(app.Config{
		Verbose:     *verbose,
		Level:       *level,
		DataDir:     *dataDir,
		JournalPath: jp,
		Gdata:       gdataManager,
		UserID:      *userID,
		Register:    registration(),
	})
	if err != nil {
		log.SetOutput(os.Stderr)
		log.Fatalf("启动失败: %v", err)
	}
	defer game.Close()

	ebiten.SetWindowSize(config.GameWindowWidth, config.GameWindowHeight)
	ebiten.SetWindowTitle("Palabras Mágicas")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	if err := ebiten.RunGame(game); err != nil {
		log.Fatal(err)
	}
}
