package merger

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/xpzouying/clipkit/configs"
	"github.com/xpzouying/clipkit/pkg/media"
	"github.com/xpzouying/clipkit/pkg/titlecard"
)

// TransitionClip 一段由过渡画面生成的短视频
type TransitionClip struct {
	Number    int
	Path      string
	FramePath string
	Duration  float64
	Final     bool
	Silent    bool
}

// Synthesizer 把过渡画面编码成带音效的短视频
type Synthesizer struct {
	codec media.Codec
	sound configs.Sound
	log   *logrus.Entry
}

func NewSynthesizer(codec media.Codec, sound configs.Sound, logger *logrus.Entry) *Synthesizer {
	return &Synthesizer{
		codec: codec,
		sound: sound,
		log:   logger,
	}
}

// Synthesize 画面写入工作目录，再编码成 duration 秒的视频。
// 音效不存在或无法使用时输出静音片段。
func (s *Synthesizer) Synthesize(ctx context.Context, frame *titlecard.Frame, duration float64, final bool, workDir string) (*TransitionClip, error) {
	name := fmt.Sprintf("transition_%d", frame.Number)
	if final {
		name = "transition_final"
	}

	clip := &TransitionClip{
		Number:    frame.Number,
		Path:      filepath.Join(workDir, name+".mp4"),
		FramePath: filepath.Join(workDir, name+".png"),
		Duration:  duration,
		Final:     final,
	}

	if err := frame.SavePNG(clip.FramePath); err != nil {
		return nil, stageError(KindRender, name, err)
	}
	// 编码完成后画面文件就不再需要
	defer removeQuietly(s.log, clip.FramePath)

	job := media.StillJob{
		FramePath: clip.FramePath,
		Duration:  duration,
		Output:    clip.Path,
	}
	job.AudioPath, job.AudioMax = s.cue(final)

	err := s.codec.EncodeStill(ctx, job)
	if err != nil && job.AudioPath != "" && ctx.Err() == nil {
		s.log.Warnf("带音效编码失败，改用静音: %s, err=%v", job.AudioPath, err)
		job.AudioPath, job.AudioMax = "", 0
		err = s.codec.EncodeStill(ctx, job)
	}
	if err != nil {
		removeQuietly(s.log, clip.Path)
		return nil, stageError(KindEncode, name, err)
	}

	clip.Silent = job.AudioPath == ""
	return clip, nil
}

func (s *Synthesizer) cue(final bool) (string, float64) {
	path, max := s.sound.TickPath(), s.sound.TickMax
	if final {
		path, max = s.sound.EndPath(), s.sound.EndMax
	}

	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		s.log.Warnf("未找到音效文件 %s，使用静音", path)
		return "", 0
	}
	return path, max
}

// removeQuietly 删除中间文件，文件不存在时忽略
func removeQuietly(log *logrus.Entry, path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warnf("删除临时文件失败: %s, err=%v", path, err)
	}
}
