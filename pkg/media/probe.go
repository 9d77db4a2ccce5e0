package media

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	ffmpeg "github.com/u2takey/ffmpeg-go"
)

type probeStream struct {
	CodecType    string `json:"codec_type"`
	CodecName    string `json:"codec_name"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	AvgFrameRate string `json:"avg_frame_rate"`
	RFrameRate   string `json:"r_frame_rate"`
	Duration     string `json:"duration"`
}

type probeOutput struct {
	Streams []probeStream `json:"streams"`
	Format  struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// Probe 用 ffprobe 读取时长、分辨率、帧率和音轨信息
func (f *FFmpeg) Probe(ctx context.Context, path string) (*ProbeResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := ffmpeg.Probe(path)
	if err != nil {
		return nil, errors.Wrapf(err, "读取视频信息失败: %s", path)
	}

	return parseProbe(data)
}

func parseProbe(data string) (*ProbeResult, error) {
	var out probeOutput
	if err := json.Unmarshal([]byte(data), &out); err != nil {
		return nil, errors.Wrap(err, "解析 ffprobe 输出失败")
	}

	result := &ProbeResult{}
	var videoDuration float64
	foundVideo := false
	for _, s := range out.Streams {
		switch s.CodecType {
		case "video":
			if foundVideo {
				continue
			}
			foundVideo = true
			result.Width = s.Width
			result.Height = s.Height
			result.VideoCodec = s.CodecName
			result.FrameRate = parseRate(s.AvgFrameRate)
			if result.FrameRate == 0 {
				result.FrameRate = parseRate(s.RFrameRate)
			}
			videoDuration = parseSeconds(s.Duration)
		case "audio":
			if !result.HasAudio {
				result.HasAudio = true
				result.AudioCodec = s.CodecName
			}
		}
	}

	if !foundVideo {
		return nil, errors.New("没有找到视频流")
	}

	result.Duration = parseSeconds(out.Format.Duration)
	if result.Duration == 0 {
		result.Duration = videoDuration
	}
	return result, nil
}

// parseRate 解析 "30000/1001" 形式的帧率
func parseRate(s string) float64 {
	num, den, ok := strings.Cut(s, "/")
	if !ok {
		return parseSeconds(s)
	}
	n, err1 := strconv.ParseFloat(num, 64)
	d, err2 := strconv.ParseFloat(den, 64)
	if err1 != nil || err2 != nil || d == 0 {
		return 0
	}
	return n / d
}

func parseSeconds(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return v
}
