package media

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	ffmpeg "github.com/u2takey/ffmpeg-go"
)

const stderrTailLines = 12

// FFmpeg 基于 ffmpeg-go 构造命令，用 exec 执行，受 ctx 控制
type FFmpeg struct {
	bin     string
	profile Profile
	log     *logrus.Entry
}

func NewFFmpeg(bin string, profile Profile, logger *logrus.Entry) *FFmpeg {
	if bin == "" {
		bin = "ffmpeg"
	}
	return &FFmpeg{
		bin:     bin,
		profile: profile,
		log:     logger,
	}
}

// Available ffmpeg 是否可执行
func (f *FFmpeg) Available() bool {
	_, err := exec.LookPath(f.bin)
	return err == nil
}

func (f *FFmpeg) EncodeStill(ctx context.Context, job StillJob) error {
	if job.Duration <= 0 {
		return errors.Errorf("无效的时长: %v", job.Duration)
	}

	frame := ffmpeg.Input(job.FramePath, ffmpeg.KwArgs{
		"loop":      1,
		"framerate": f.profile.Frame.FPS,
	})

	var audio *ffmpeg.Stream
	if job.AudioPath != "" {
		audio = ffmpeg.Input(job.AudioPath, ffmpeg.KwArgs{"t": seconds(job.AudioMax)}).Audio()
		audio = f.audioFilters(audio)
	} else {
		audio = f.silence()
	}

	kwargs := f.encodeArgs()
	kwargs["t"] = seconds(job.Duration)

	out := ffmpeg.Output([]*ffmpeg.Stream{f.videoFilters(frame.Video()), audio}, job.Output, kwargs)
	return f.run(ctx, out)
}

func (f *FFmpeg) Normalize(ctx context.Context, src, dst string) error {
	info, err := f.Probe(ctx, src)
	if err != nil {
		return err
	}
	if info.Duration <= 0 {
		return errors.Errorf("视频长度无效: %s", src)
	}

	in := ffmpeg.Input(src)

	var audio *ffmpeg.Stream
	if info.HasAudio {
		audio = f.audioFilters(in.Audio())
	} else {
		audio = f.silence()
	}

	kwargs := f.encodeArgs()
	kwargs["t"] = seconds(info.Duration)

	out := ffmpeg.Output([]*ffmpeg.Stream{f.videoFilters(in.Video()), audio}, dst, kwargs)
	return f.run(ctx, out)
}

func (f *FFmpeg) Join(ctx context.Context, manifest, dst string, mode JoinMode) error {
	in := ffmpeg.Input(manifest, ffmpeg.KwArgs{"f": "concat", "safe": 0})

	var kwargs ffmpeg.KwArgs
	if mode == JoinCopy {
		kwargs = ffmpeg.KwArgs{"c": "copy", "movflags": "+faststart"}
	} else {
		kwargs = f.encodeArgs()
	}

	return f.run(ctx, in.Output(dst, kwargs))
}

func (f *FFmpeg) encodeArgs() ffmpeg.KwArgs {
	e := f.profile.Encode
	return ffmpeg.KwArgs{
		"c:v":      e.VideoCodec,
		"preset":   e.Preset,
		"b:v":      e.VideoBitrate,
		"pix_fmt":  "yuv420p",
		"r":        f.profile.Frame.FPS,
		"c:a":      e.AudioCodec,
		"b:a":      e.AudioBitrate,
		"ar":       e.SampleRate,
		"ac":       2,
		"movflags": "+faststart",
	}
}

// videoFilters 等比缩放后补边到目标尺寸，统一 SAR、帧率和像素格式
func (f *FFmpeg) videoFilters(v *ffmpeg.Stream) *ffmpeg.Stream {
	w := strconv.Itoa(f.profile.Frame.Width)
	h := strconv.Itoa(f.profile.Frame.Height)
	return v.
		Filter("scale", ffmpeg.Args{w, h}, ffmpeg.KwArgs{"force_original_aspect_ratio": "decrease"}).
		Filter("pad", ffmpeg.Args{w, h, "(ow-iw)/2", "(oh-ih)/2"}).
		Filter("setsar", ffmpeg.Args{"1"}).
		Filter("fps", ffmpeg.Args{strconv.Itoa(f.profile.Frame.FPS)}).
		Filter("format", ffmpeg.Args{"yuv420p"})
}

// audioFilters 重采样并用静音补齐，输出时长由 -t 截断
func (f *FFmpeg) audioFilters(a *ffmpeg.Stream) *ffmpeg.Stream {
	return a.
		Filter("aresample", ffmpeg.Args{strconv.Itoa(f.profile.Encode.SampleRate)}).
		Filter("apad", ffmpeg.Args{})
}

func (f *FFmpeg) silence() *ffmpeg.Stream {
	src := fmt.Sprintf("anullsrc=channel_layout=stereo:sample_rate=%d", f.profile.Encode.SampleRate)
	return ffmpeg.Input(src, ffmpeg.KwArgs{"f": "lavfi"})
}

// run 阻塞执行；ctx 超时或取消时杀掉子进程。失败时附带 stderr 末尾几行
func (f *FFmpeg) run(ctx context.Context, stream *ffmpeg.Stream) error {
	args := append([]string{"-hide_banner", "-loglevel", "error"}, stream.OverWriteOutput().GetArgs()...)

	cmd := exec.CommandContext(ctx, f.bin, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	f.log.Debugf("执行: %s %s", f.bin, strings.Join(args, " "))

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return errors.Wrap(ctxErr, "ffmpeg 被取消或超时")
		}
		return errors.Wrapf(err, "ffmpeg 执行失败: %s", tail(stderr.String(), stderrTailLines))
	}
	return nil
}

func seconds(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}

func tail(s string, n int) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}
