package media

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// WriteManifest 写 concat 清单，每行 file '<path>'，路径转成绝对路径
func WriteManifest(path string, entries []string) error {
	if len(entries) == 0 {
		return errors.New("拼接清单为空")
	}

	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "创建拼接清单失败")
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for _, entry := range entries {
		abs, err := filepath.Abs(entry)
		if err != nil {
			return errors.Wrapf(err, "解析路径失败: %s", entry)
		}
		if _, err := w.WriteString("file " + quoteManifestPath(abs) + "\n"); err != nil {
			return errors.Wrap(err, "写入拼接清单失败")
		}
	}
	if err := w.Flush(); err != nil {
		return errors.Wrap(err, "写入拼接清单失败")
	}
	return f.Close()
}

// ReadManifest 读取 WriteManifest 写出的清单
func ReadManifest(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "读取拼接清单失败")
	}

	var entries []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !strings.HasPrefix(line, "file ") {
			return nil, errors.Errorf("无法识别的清单行: %s", line)
		}
		entries = append(entries, unquoteManifestPath(strings.TrimPrefix(line, "file ")))
	}
	return entries, nil
}

// concat demuxer 的单引号转义：' -> '\''
func quoteManifestPath(p string) string {
	return "'" + strings.ReplaceAll(p, "'", `'\''`) + "'"
}

func unquoteManifestPath(s string) string {
	s = strings.ReplaceAll(s, `'\''`, "'")
	return strings.TrimSuffix(strings.TrimPrefix(s, "'"), "'")
}
