//go:build android

package utils

import (
	"fmt"
	"os"
	"path/filepath"
)

// AppDataDir 返回并创建 Android 应用数据目录：/data/data/{package}/<app>
//
// 目录创建后会做一次写入测试，不可写时返回错误。
func AppDataDir(app string) (string, error) {
	pkg, err := detectAndroidApp()
	if err != nil {
		return "", fmt.Errorf("failed to detect Android app: %w", err)
	}

	dir := filepath.Join("/data/data", pkg, app)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create data directory %s: %w", dir, err)
	}

	probe := filepath.Join(dir, ".write_test")
	if err := os.WriteFile(probe, []byte("test"), 0644); err != nil {
		return "", fmt.Errorf("data directory %s is not writable: %w", dir, err)
	}
	os.Remove(probe)

	return dir, nil
}

// detectAndroidApp 从 /proc/self/cmdline 读取应用包名
func detectAndroidApp() (string, error) {
	raw, err := os.ReadFile("/proc/self/cmdline")
	if err != nil {
		return "", err
	}

	name := make([]byte, 0, len(raw))
	for _, ch := range raw {
		if ch == 0 || ch == '\n' {
			continue
		}
		name = append(name, ch)
	}
	if len(name) == 0 {
		return "", fmt.Errorf("got empty output from /proc/self/cmdline")
	}
	return string(name), nil
}
