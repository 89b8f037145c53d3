// Package embedded 提供嵌入数据文件的统一访问接口
//
// 由于 Go embed 指令只能嵌入当前包目录及其子目录的文件，
// embed.FS 变量声明在 data 包中（data/embed.go）。
// 本包提供包装函数，让其他包以 "data/..." 路径访问嵌入的数据，并支持用磁盘上的同名文件覆盖。
//
// 使用前必须调用 Init() 初始化。
package embedded

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
)

var (
	dataFS      fs.FS
	initialized bool
)

// errNotInitialized 未调用 Init
var errNotInitialized = errors.New("embedded package not initialized, call Init() first")

// Init 初始化数据文件系统（以 data 目录为根）
// 必须在 main() 开始时、任何数据加载之前调用
func Init(data fs.FS) {
	dataFS = data
	initialized = data != nil
}

// IsInitialized 返回 embedded 包是否已初始化
func IsInitialized() bool {
	return initialized
}

// normalize 标准化路径：正斜杠、去掉 "./" 前缀，且必须以 "data/" 开头
func normalize(path string) (string, error) {
	path = filepath.ToSlash(path)
	path = strings.TrimPrefix(path, "./")
	if !strings.HasPrefix(path, "data/") {
		return "", fmt.Errorf("unknown resource path prefix: %s (must start with 'data/')", path)
	}
	return path, nil
}

// ReadFile 读取嵌入的数据文件
// 路径必须以 "data/" 开头
func ReadFile(path string) ([]byte, error) {
	if !initialized {
		return nil, errNotInitialized
	}
	path, err := normalize(path)
	if err != nil {
		return nil, err
	}
	return fs.ReadFile(dataFS, strings.TrimPrefix(path, "data/"))
}

// Exists 检查文件是否存在于嵌入数据中
func Exists(path string) bool {
	if !initialized {
		return false
	}
	path, err := normalize(path)
	if err != nil {
		return false
	}
	_, err = fs.Stat(dataFS, strings.TrimPrefix(path, "data/"))
	return err == nil
}

// ReadWithOverride 优先读取 overrideDir 下的同名文件，不存在时读取嵌入版本
//
// 例如 ReadWithOverride("data/levels.yaml", "/home/u/.magicword") 先尝试
// /home/u/.magicword/levels.yaml。overrideDir 为空时只读嵌入版本。
//
// 返回：
//   - []byte: 文件内容
//   - string: 实际来源（磁盘路径或 "embedded:<path>"）
//   - error: 两处都无法读取时返回错误
func ReadWithOverride(path, overrideDir string) ([]byte, string, error) {
	normalized, err := normalize(path)
	if err != nil {
		return nil, "", err
	}

	if overrideDir != "" {
		diskPath := filepath.Join(overrideDir, strings.TrimPrefix(normalized, "data/"))
		data, err := os.ReadFile(diskPath)
		if err == nil {
			log.Printf("[Embedded] Using override %s", diskPath)
			return data, diskPath, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, "", fmt.Errorf("failed to read override %s: %w", diskPath, err)
		}
	}

	data, err := ReadFile(normalized)
	if err != nil {
		return nil, "", err
	}
	return data, "embedded:" + normalized, nil
}
