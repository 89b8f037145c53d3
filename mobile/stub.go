//go:build !mobile

// 普通构建时 mobile 包只保留 Dummy，
// 绑定入口 mobile.go 需要 -tags mobile 才会编译（见包文档中的 ebitenmobile 命令）。
package mobile

// Dummy 空导出函数，保证桌面端 go build ./... 时包不为空
func Dummy() {}
