// Package logger 进程日志：同时写 stderr 和日志文件
package logger

import (
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

type Options struct {
	File  string // 为空时只写 stderr
	Level string // debug/info/warn/error
}

// New 创建 logger，返回的 close 用于关闭日志文件
func New(opts Options) (*logrus.Logger, func() error, error) {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	level := logrus.InfoLevel
	if opts.Level != "" {
		l, err := logrus.ParseLevel(opts.Level)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "无效的日志级别: %s", opts.Level)
		}
		level = l
	}
	log.SetLevel(level)

	if opts.File == "" {
		log.SetOutput(os.Stderr)
		return log, func() error { return nil }, nil
	}

	f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "打开日志文件失败: %s", opts.File)
	}
	log.SetOutput(io.MultiWriter(os.Stderr, f))
	return log, f.Close, nil
}

// Component 带组件名的日志入口
func Component(log *logrus.Logger, name string) *logrus.Entry {
	return log.WithField("component", name)
}
