//go:build !android

package utils

import (
	"fmt"
	"os"
	"path/filepath"
)

// AppDataDir 返回并创建应用数据目录：<UserConfigDir>/<app>
// UserConfigDir 不可用时退回当前目录下的 .<app>
func AppDataDir(app string) (string, error) {
	base, err := os.UserConfigDir()
	dir := filepath.Join(base, app)
	if err != nil {
		dir = "." + app
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create data directory %s: %w", dir, err)
	}
	return dir, nil
}
