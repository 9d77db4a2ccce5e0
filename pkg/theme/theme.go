// Package theme 过渡画面的配色方案
package theme

import (
	"fmt"
	"image/color"
	"strings"
)

// ID 配色方案标识
type ID string

const (
	P1 ID = "p1"
	P2 ID = "p2"
	P3 ID = "p3"
	P4 ID = "p4"
	P5 ID = "p5"
	P6 ID = "p6"
)

// DefaultID 未知方案时使用的默认方案
const DefaultID = P6

// Spec 一套配色
type Spec struct {
	ID         ID
	Name       string
	Background color.RGBA
	Text       color.RGBA
}

func rgb(hex uint32) color.RGBA {
	return color.RGBA{R: uint8(hex >> 16), G: uint8(hex >> 8), B: uint8(hex), A: 0xff}
}

var registry = [...]Spec{
	{ID: P1, Name: "经典黑白", Background: rgb(0xFFFFFF), Text: rgb(0x333333)},
	{ID: P2, Name: "柔和灰白", Background: rgb(0xF5F5F5), Text: rgb(0x2C3E50)},
	{ID: P3, Name: "暖色调", Background: rgb(0xFFF8F0), Text: rgb(0x8B4513)},
	{ID: P4, Name: "冷色调", Background: rgb(0xF0F8FF), Text: rgb(0x1B4F72)},
	{ID: P5, Name: "现代灰白", Background: rgb(0x333333), Text: rgb(0xFFFFFF)},
	{ID: P6, Name: "经典白黑", Background: rgb(0x000000), Text: rgb(0xFFFFFF)},
}

// Lookup 精确查找配色方案
func Lookup(id string) (Spec, bool) {
	for _, s := range registry {
		if string(s.ID) == id {
			return s, true
		}
	}
	return Spec{}, false
}

// Resolve 查找配色方案，找不到时返回默认方案 p6，从不失败
func Resolve(id string) Spec {
	if s, ok := Lookup(id); ok {
		return s
	}
	return Default()
}

// Default 默认方案（黑底白字）
func Default() Spec {
	s, _ := Lookup(string(DefaultID))
	return s
}

// IDs 所有方案标识，按表顺序
func IDs() []ID {
	ids := make([]ID, 0, len(registry))
	for _, s := range registry {
		ids = append(ids, s.ID)
	}
	return ids
}

// Describe 命令行帮助用的方案列表
func Describe() string {
	lines := make([]string, 0, len(registry))
	for _, s := range registry {
		lines = append(lines, fmt.Sprintf("%s: %s", s.ID, s.Name))
	}
	return strings.Join(lines, "\n")
}
