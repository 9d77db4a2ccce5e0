package merger

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/h2non/filetype"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/xpzouying/clipkit/pkg/media"
)

// 文件类型识别只需要文件头
const sniffLen = 262

// Assembler 把过渡片段和对应的源视频合成一个 segment
type Assembler struct {
	codec media.Codec
	log   *logrus.Entry
}

func NewAssembler(codec media.Codec, logger *logrus.Entry) *Assembler {
	return &Assembler{
		codec: codec,
		log:   logger,
	}
}

// Assemble 生成 segment_<nnn>.mp4。source 为 nil 时只包含过渡片段（结尾画面）。
// 无论成功与否，过渡片段和中间文件都会被删除。
func (a *Assembler) Assemble(ctx context.Context, clip *TransitionClip, source *SourceVideo, workDir string) (string, error) {
	defer removeQuietly(a.log, clip.Path)

	base := fmt.Sprintf("segment_%03d", clip.Number)
	segment := filepath.Join(workDir, base+".mp4")
	label := filepath.Base(clip.Path)

	parts := []string{clip.Path}
	if source != nil {
		label = source.Name
		if err := checkVideoHeader(source.Path); err != nil {
			return "", stageError(KindEncode, source.Name, err)
		}

		normalized := filepath.Join(workDir, fmt.Sprintf("source_%03d.mp4", clip.Number))
		defer removeQuietly(a.log, normalized)

		if err := a.codec.Normalize(ctx, source.Path, normalized); err != nil {
			removeQuietly(a.log, normalized)
			return "", stageError(KindEncode, source.Name, err)
		}
		parts = append(parts, normalized)
	}

	manifest := filepath.Join(workDir, base+".txt")
	defer removeQuietly(a.log, manifest)
	if err := media.WriteManifest(manifest, parts); err != nil {
		return "", stageError(KindEncode, label, err)
	}

	if err := a.codec.Join(ctx, manifest, segment, media.JoinReencode); err != nil {
		removeQuietly(a.log, segment)
		return "", stageError(KindEncode, label, err)
	}

	a.log.Debugf("片段已生成: %s", segment)
	return segment, nil
}

// checkVideoHeader 空文件或文件头不是视频时直接拒绝
func checkVideoHeader(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err, "打开视频失败")
	}
	defer f.Close()

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return errors.Wrap(err, "读取视频失败")
	}
	if n == 0 {
		return errors.New("视频文件为空")
	}
	if !filetype.IsVideo(head[:n]) {
		return errors.New("无法识别的视频格式")
	}
	return nil
}
