package configs

import "strings"

// HeadlessMode 浏览器 headless 模式
type HeadlessMode string

const (
	HeadlessOff HeadlessMode = "false" // 有窗口（调试/排查选择器用）
	HeadlessOld HeadlessMode = "true"  // 旧 headless（易被反爬检测）
	HeadlessNew HeadlessMode = "new"   // 新 headless（Chrome 112+，推荐）
)

// ParseHeadlessMode 解析 "new"/"true"/"false"，无法识别时使用 new
func ParseHeadlessMode(m string) HeadlessMode {
	switch HeadlessMode(strings.ToLower(strings.TrimSpace(m))) {
	case HeadlessOff:
		return HeadlessOff
	case HeadlessOld:
		return HeadlessOld
	default:
		return HeadlessNew
	}
}

// Headless 是否无窗口运行
func (m HeadlessMode) Headless() bool {
	return m != HeadlessOff
}

// Download 下载命令配置
type Download struct {
	Site     string       // 第三方下载站点
	Dir      string       // 媒体保存目录
	Headless HeadlessMode // 浏览器模式
	BinPath  string       // 浏览器二进制文件路径
	Proxy    string
}
