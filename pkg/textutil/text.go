package textutil

import (
	"regexp"
	"strings"

	"github.com/mattn/go-runewidth"
)

var linkPattern = regexp.MustCompile(`https?://[^\s<>"]+`)

// ExtractLinks 从粘贴的文本中提取链接，按出现顺序去重
func ExtractLinks(text string) []string {
	seen := make(map[string]bool)
	var links []string
	for _, link := range linkPattern.FindAllString(text, -1) {
		if seen[link] {
			continue
		}
		seen[link] = true
		links = append(links, link)
	}
	return links
}

// Truncate 按终端显示宽度截断，中文算 2 列，超出时以 ... 结尾
func Truncate(s string, width int) string {
	if runewidth.StringWidth(s) <= width {
		return s
	}
	return runewidth.Truncate(s, width, "...")
}

// PadRight 按显示宽度右侧补空格，用于对齐的控制台输出
func PadRight(s string, width int) string {
	return runewidth.FillRight(Truncate(s, width), width)
}

// Indent 每一行加上前缀
func Indent(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = prefix + line
	}
	return strings.Join(lines, "\n")
}
