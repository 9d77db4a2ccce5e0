package main

import (
	"context"
	"os"
	"runtime"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/xpzouying/clipkit/browser"
	"github.com/xpzouying/clipkit/configs"
	"github.com/xpzouying/clipkit/pkg/downloader"
	"github.com/xpzouying/clipkit/pkg/logger"
	"github.com/xpzouying/clipkit/pkg/media"
	"github.com/xpzouying/clipkit/pkg/merger"
	"github.com/xpzouying/clipkit/pkg/theme"
	"github.com/xpzouying/clipkit/pkg/titlecard"
	"github.com/xpzouying/clipkit/snapinsta"
)

// ClipkitService 合并与下载两个功能的入口
type ClipkitService struct {
	v   *viper.Viper
	log *logrus.Logger
}

func NewClipkitService(v *viper.Viper, log *logrus.Logger) *ClipkitService {
	return &ClipkitService{
		v:   v,
		log: log,
	}
}

// MergeRequest 合并参数
type MergeRequest struct {
	InputDir    string
	OutputPath  string
	Title       string
	Author      string
	ColorScheme string
}

// Merge 合并输入目录中的视频，输入目录不存在时先创建
func (s *ClipkitService) Merge(ctx context.Context, req *MergeRequest) (*merger.Result, error) {
	cfg := configs.LoadMerge(s.v)

	if _, err := os.Stat(req.InputDir); os.IsNotExist(err) {
		if err := os.MkdirAll(req.InputDir, 0755); err != nil {
			return nil, errors.Wrapf(err, "创建输入目录失败: %s", req.InputDir)
		}
		s.log.Infof("已创建输入目录: %s", req.InputDir)
	}

	codec := media.NewFFmpeg(cfg.FFmpegBin, media.Profile{Frame: cfg.Frame, Encode: cfg.Encode}, logger.Component(s.log, "ffmpeg"))
	if !codec.Available() {
		return nil, errors.Errorf("未找到 ffmpeg: %s", cfg.FFmpegBin)
	}

	pipeline := merger.NewPipeline(cfg, codec, s.newRenderer(cfg), logger.Component(s.log, "merger"))
	return pipeline.Run(ctx, merger.Request{
		InputDir: req.InputDir,
		Output:   req.OutputPath,
		Title:    req.Title,
		Author:   req.Author,
		Scheme:   req.ColorScheme,
	})
}

// RenderSamples 测试模式：在 dir 中生成样例画面，不处理视频
func (s *ClipkitService) RenderSamples(dir, title, scheme string) ([]string, error) {
	cfg := configs.LoadMerge(s.v)

	spec, ok := theme.Lookup(scheme)
	if !ok {
		s.log.Warnf("未知的配色方案 %q，使用默认方案 %s", scheme, theme.DefaultID)
		spec = theme.Default()
	}
	return s.newRenderer(cfg).RenderSamples(dir, cfg.Frame.Width, cfg.Frame.Height, title, spec)
}

func (s *ClipkitService) newRenderer(cfg configs.Merge) *titlecard.Renderer {
	paths := cfg.FontPaths
	if len(paths) == 0 {
		paths = titlecard.DefaultFontPaths(runtime.GOOS)
	}
	entry := logger.Component(s.log, "titlecard")
	return titlecard.NewRenderer(titlecard.NewFontLoader(paths, entry), entry)
}

// Download 逐条解析链接并下载媒体
func (s *ClipkitService) Download(ctx context.Context, links []string) (*snapinsta.Report, error) {
	if len(links) == 0 {
		return nil, errors.New("没有找到链接")
	}
	cfg := configs.LoadDownload(s.v)

	fetcher, err := downloader.NewMediaDownloader(cfg.Dir)
	if err != nil {
		return nil, err
	}

	b := browser.NewBrowser(cfg.Headless.Headless(), browser.FromConfig(cfg)...)
	defer b.Close()

	page := b.NewPage()
	defer page.Close()

	resolver := snapinsta.NewResolveAction(page, cfg.Site, logger.Component(s.log, "snapinsta"))
	batch := snapinsta.NewBatch(resolver, fetcher, resolver.Site(), logger.Component(s.log, "download"))
	return batch.Run(ctx, links), nil
}
