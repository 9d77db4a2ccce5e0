// Package media 封装 ffmpeg：静帧成片、素材归一化、片段拼接和元数据探测
package media

import (
	"context"

	"github.com/xpzouying/clipkit/configs"
)

// ProbeResult 媒体文件元数据
type ProbeResult struct {
	Duration   float64 // 秒
	Width      int
	Height     int
	FrameRate  float64
	VideoCodec string
	AudioCodec string
	HasAudio   bool
}

// StillJob 把一张静态图片编码成固定时长的视频
type StillJob struct {
	FramePath string
	Duration  float64 // 秒
	AudioPath string  // 为空时输出静音音轨
	AudioMax  float64 // 音效最长截取时长（秒）
	Output    string
}

// JoinMode 拼接方式
type JoinMode int

const (
	JoinReencode JoinMode = iota // 重新编码
	JoinCopy                     // stream copy，不重新编码
)

func (m JoinMode) String() string {
	if m == JoinCopy {
		return "copy"
	}
	return "reencode"
}

// Codec 合并流程依赖的媒体能力
type Codec interface {
	Probe(ctx context.Context, path string) (*ProbeResult, error)
	EncodeStill(ctx context.Context, job StillJob) error
	// Normalize 把任意素材转成统一的分辨率、帧率、编码参数，没有音轨时补静音
	Normalize(ctx context.Context, src, dst string) error
	// Join 按清单顺序拼接
	Join(ctx context.Context, manifest, dst string, mode JoinMode) error
}

// Profile 统一的输出参数
type Profile struct {
	Frame  configs.Frame
	Encode configs.Encode
}
