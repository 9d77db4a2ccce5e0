package merger

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/xpzouying/clipkit/pkg/media"
)

// mp4 文件头，足够通过类型识别
var mp4Header = append([]byte("\x00\x00\x00\x18ftypisom\x00\x00\x02\x00isomiso2avc1mp41"), make([]byte, 64)...)

const defaultSourceDuration = 3.0

// fakeFile 假编码器写出的"视频"内容
type fakeFile struct {
	Duration float64 `json:"duration"`
	Audio    bool    `json:"audio"`
}

type joinCall struct {
	Entries []string
	Dst     string
	Mode    media.JoinMode
}

// fakeCodec 不调用 ffmpeg，用 JSON 文件模拟视频时长
type fakeCodec struct {
	durations map[string]float64 // 源视频文件名 -> 时长

	failAudio     bool   // 带音效的静帧编码失败
	failNormalize string // 对该文件名归一化失败
	failCopy      bool   // 最终拼接失败

	stills []media.StillJob
	joins  []joinCall
}

func (c *fakeCodec) Probe(_ context.Context, path string) (*media.ProbeResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if bytes.HasPrefix(data, mp4Header[:12]) {
		d, ok := c.durations[filepath.Base(path)]
		if !ok {
			d = defaultSourceDuration
		}
		return &media.ProbeResult{Duration: d, Width: 1920, Height: 1080, FrameRate: 25}, nil
	}

	var f fakeFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, errors.Wrapf(err, "not a video: %s", path)
	}
	return &media.ProbeResult{Duration: f.Duration, Width: 720, Height: 1280, FrameRate: 30, HasAudio: true}, nil
}

func (c *fakeCodec) EncodeStill(_ context.Context, job media.StillJob) error {
	c.stills = append(c.stills, job)
	if _, err := os.Stat(job.FramePath); err != nil {
		return errors.Wrap(err, "frame missing")
	}
	if c.failAudio && job.AudioPath != "" {
		return errors.New("bad audio")
	}
	return writeFake(job.Output, fakeFile{Duration: job.Duration, Audio: job.AudioPath != ""})
}

func (c *fakeCodec) Normalize(ctx context.Context, src, dst string) error {
	if filepath.Base(src) == c.failNormalize {
		// 模拟 ffmpeg 已写出部分内容后失败
		_ = os.WriteFile(dst, []byte("partial"), 0644)
		return errors.New("decode error")
	}
	info, err := c.Probe(ctx, src)
	if err != nil {
		return err
	}
	return writeFake(dst, fakeFile{Duration: info.Duration, Audio: true})
}

func (c *fakeCodec) Join(ctx context.Context, manifest, dst string, mode media.JoinMode) error {
	entries, err := media.ReadManifest(manifest)
	if err != nil {
		return err
	}
	c.joins = append(c.joins, joinCall{Entries: entries, Dst: dst, Mode: mode})

	if mode == media.JoinCopy && c.failCopy {
		_ = os.WriteFile(dst, []byte("partial"), 0644)
		return errors.New("non monotonous DTS")
	}

	var total float64
	for _, e := range entries {
		info, err := c.Probe(ctx, e)
		if err != nil {
			return err
		}
		total += info.Duration
	}
	return writeFake(dst, fakeFile{Duration: total, Audio: true})
}

func (c *fakeCodec) copyJoins() []joinCall {
	var calls []joinCall
	for _, j := range c.joins {
		if j.Mode == media.JoinCopy {
			calls = append(calls, j)
		}
	}
	return calls
}

func writeFake(path string, f fakeFile) error {
	data, err := json.Marshal(f)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
