package merger

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/xpzouying/clipkit/pkg/media"
)

const manifestName = "segments.txt"

// Concatenator 不重新编码，按顺序把所有 segment 拼成最终文件
type Concatenator struct {
	codec   media.Codec
	timeout time.Duration
	log     *logrus.Entry
}

func NewConcatenator(codec media.Codec, timeout time.Duration, logger *logrus.Entry) *Concatenator {
	return &Concatenator{
		codec:   codec,
		timeout: timeout,
		log:     logger,
	}
}

// Concatenate 先拼到 segment 所在目录的临时文件，成功后再改名到 output，
// 失败时 output 不会出现半成品。
func (c *Concatenator) Concatenate(ctx context.Context, segments []string, output string) error {
	if len(segments) == 0 {
		return stageError(KindJoin, "", errors.New("没有可拼接的片段"))
	}

	dir := filepath.Dir(segments[0])
	manifest := filepath.Join(dir, manifestName)
	if err := media.WriteManifest(manifest, segments); err != nil {
		return stageError(KindJoin, manifestName, err)
	}
	defer removeQuietly(c.log, manifest)

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	tmp := filepath.Join(dir, "output"+filepath.Ext(output))
	c.log.Infof("开始拼接 %d 个片段", len(segments))
	if err := c.codec.Join(ctx, manifest, tmp, media.JoinCopy); err != nil {
		removeQuietly(c.log, tmp)
		return stageError(KindJoin, filepath.Base(output), err)
	}

	if err := os.Rename(tmp, output); err != nil {
		removeQuietly(c.log, tmp)
		return stageError(KindOutput, filepath.Base(output), errors.Wrap(err, "写入输出文件失败"))
	}
	return nil
}
