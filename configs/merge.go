package configs

import (
	"path/filepath"
	"time"
)

// Frame 画面尺寸与帧率
type Frame struct {
	Width  int
	Height int
	FPS    int
}

// Encode 编码参数，所有片段共用同一套参数，保证最终可以直接 stream copy 拼接
type Encode struct {
	VideoCodec   string
	AudioCodec   string
	Preset       string
	VideoBitrate string
	AudioBitrate string
	SampleRate   int
}

// Sound 过渡音效
type Sound struct {
	Dir     string
	Tick    string
	TickMax float64 // 秒
	End     string
	EndMax  float64 // 秒
}

// Merge 视频合并配置
type Merge struct {
	Frame              Frame
	Encode             Encode
	Sound              Sound
	TransitionDuration float64 // 秒
	FinalDuration      float64 // 秒
	FFmpegBin          string
	JoinTimeout        time.Duration
	FontPaths          []string
}

// TickPath 普通过渡音效路径
func (s Sound) TickPath() string {
	return filepath.Join(s.Dir, s.Tick)
}

// EndPath 结尾音效路径
func (s Sound) EndPath() string {
	return filepath.Join(s.Dir, s.End)
}
