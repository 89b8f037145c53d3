//go:build mobile

// Package mobile 提供 ebitenmobile 绑定入口
//
// 此包用于构建 Android (.aar) 和 iOS (.xcframework) 包，
// 仅在使用 -tags mobile 时编译：
//
//	ebitenmobile bind -target android -tags mobile -androidapi 23 -javapkg com.decker.magicword -o build/android/magicword.aar ./mobile
package mobile

import (
	"log"
	"path/filepath"

	"github.com/hajimehoshi/ebiten/v2/mobile"
	"github.com/quasilyte/gdata/v2"

	"github.com/decker502/magicword/data"
	"github.com/decker502/magicword/pkg/app"
	"github.com/decker502/magicword/pkg/embedded"
	"github.com/decker502/magicword/pkg/journal"
	"github.com/decker502/magicword/pkg/utils"
)

func init() {
	embedded.Init(data.FS)
	dataDir, err := utils.AppDataDir("magicword")
	if err != nil {
		log.Fatalf("初始化失败: %v", err)
	}

	gdataManager, err := gdata.Open(gdata.Config{AppName: "magicword"})
	if err != nil {
		log.Printf("[Mobile] Warning: settings storage unavailable: %v", err)
		gdataManager = nil
	}

	gameApp, err := app.NewApp(app.Config{
		Verbose:     true,
		DataDir:     dataDir,
		JournalPath: filepath.Join(dataDir, journal.DefaultFileName),
		Gdata:       gdataManager,
	})
	if err != nil {
		log.Fatalf("初始化失败: %v", err)
	}

	// 注册到 ebitenmobile
	mobile.SetGame(gameApp)
}

// Dummy 是一个空导出函数，确保包被 ebitenmobile 正确识别
func Dummy() {}
