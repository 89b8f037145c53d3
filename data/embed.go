// Package data 嵌入内置的 YAML 数据文件
//
// 各个入口（窗口版、终端版、移动端）都通过 embedded.Init(data.FS) 使用这些文件。
package data

import "embed"

// FS 以 data 目录为根的内置数据
//
//go:embed levels.yaml word_bank.yaml scene.yaml
var FS embed.FS
