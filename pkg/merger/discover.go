package merger

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"
)

const (
	workDirPrefix     = ".clipkit-"
	defaultOutputStem = "merged-video-"
)

var videoExts = map[string]bool{
	".mp4": true,
	".mov": true,
}

// 输出文件和中间文件的命名，扫描时跳过
var reservedPrefixes = []string{defaultOutputStem, "transition_", "segment_", "source_", "test_", "."}

// SourceVideo 一个待合并的源视频
type SourceVideo struct {
	Path string
	Name string
}

// DefaultOutputName 默认输出文件名 merged-video-MMDD-HHMM.mp4
func DefaultOutputName(now time.Time) string {
	return defaultOutputStem + now.Format("0102-1504") + ".mp4"
}

// Discover 列出目录下的 .mp4/.mov（不区分大小写），排除输出和中间文件，按文件名升序
func Discover(dir, outputName string) ([]SourceVideo, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "读取输入目录失败: %s", dir)
	}

	var sources []SourceVideo
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !videoExts[strings.ToLower(filepath.Ext(name))] {
			continue
		}
		if isReserved(name, outputName) {
			continue
		}
		sources = append(sources, SourceVideo{
			Path: filepath.Join(dir, name),
			Name: name,
		})
	}

	sort.Slice(sources, func(i, j int) bool {
		return sources[i].Name < sources[j].Name
	})
	return sources, nil
}

func isReserved(name, outputName string) bool {
	if outputName != "" && name == outputName {
		return true
	}
	for _, prefix := range reservedPrefixes {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}
	return strings.HasSuffix(strings.ToLower(name), "_merged.mp4")
}
