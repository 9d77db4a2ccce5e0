package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/xpzouying/clipkit/configs"
	"github.com/xpzouying/clipkit/pkg/logger"
	"github.com/xpzouying/clipkit/pkg/merger"
	"github.com/xpzouying/clipkit/pkg/textutil"
	"github.com/xpzouying/clipkit/pkg/theme"
)

const (
	defaultTitle  = "今日份快乐"
	defaultAuthor = "Cynvann"
)

// app 命令共享的配置和日志
type app struct {
	configFile string
	logLevel   string

	v        *viper.Viper
	log      *logrus.Logger
	closeLog func() error

	stdin  io.Reader
	stdout io.Writer
}

func newRootCmd(stdin io.Reader, stdout io.Writer) *cobra.Command {
	a := &app{
		stdin:  stdin,
		stdout: stdout,
	}

	root := &cobra.Command{
		Use:               "clipkit",
		Short:             "短视频合并与下载工具",
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: func(*cobra.Command, []string) { a.teardown() },
	}
	root.PersistentFlags().StringVar(&a.configFile, "config", "", "配置文件路径，默认查找 ./clipkit.yaml")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "日志级别: debug/info/warn/error")

	root.AddCommand(newMergeCmd(a), newDownloadCmd(a))
	return root
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	v, err := configs.NewViper(a.configFile)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		v.Set("log.level", a.logLevel)
	}

	log, closeLog, err := logger.New(logger.Options{
		File:  v.GetString("log.file"),
		Level: v.GetString("log.level"),
	})
	if err != nil {
		return err
	}

	a.v, a.log, a.closeLog = v, log, closeLog
	return nil
}

func (a *app) teardown() {
	if a.closeLog != nil {
		_ = a.closeLog()
	}
}

func (a *app) service() *ClipkitService {
	return NewClipkitService(a.v, a.log)
}

func newMergeCmd(a *app) *cobra.Command {
	var (
		req      MergeRequest
		testMode bool
	)

	cmd := &cobra.Command{
		Use:   "merge",
		Short: "合并目录中的视频，每段前插入编号过渡画面",
		Long:  "合并目录中的 mp4/mov 视频，每段前插入编号过渡画面，最后接结尾画面。\n\n配色方案:\n" + theme.Describe(),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if testMode {
				return a.runSamples(req)
			}
			return a.runMerge(cmd.Context(), &req)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&req.InputDir, "input_dir", "i", configs.DefaultInputDir, "输入视频目录")
	f.StringVarP(&req.OutputPath, "output_path", "o", "", "输出文件名，默认 merged-video-MMDD-HHMM.mp4")
	f.StringVarP(&req.Title, "title", "t", defaultTitle, "第一张过渡画面的标题")
	f.StringVarP(&req.Author, "author", "a", defaultAuthor, "第一张过渡画面的作者")
	f.StringVarP(&req.ColorScheme, "color_scheme", "c", string(theme.DefaultID), "配色方案 p1-p6")
	f.BoolVar(&testMode, "test", false, "只生成样例过渡画面")
	return cmd
}

func (a *app) runSamples(req MergeRequest) error {
	paths, err := a.service().RenderSamples(".", req.Title, req.ColorScheme)
	if err != nil {
		return errors.Wrap(err, "生成样例失败")
	}

	fmt.Fprintln(a.stdout, "🎨 已生成样例画面:")
	for _, p := range paths {
		fmt.Fprintf(a.stdout, "  %s\n", p)
	}
	return nil
}

func (a *app) runMerge(ctx context.Context, req *MergeRequest) error {
	if ctx == nil {
		ctx = context.Background()
	}

	res, err := a.service().Merge(ctx, req)
	if err != nil {
		if merger.KindOf(err) == merger.KindNoInput {
			return errors.Errorf("输入目录中没有视频文件: %s", req.InputDir)
		}
		return errors.Wrap(err, "合并失败")
	}

	fmt.Fprintln(a.stdout, "✅ 合并完成")
	fmt.Fprintf(a.stdout, "📁 输出文件: %s\n", res.Output)
	fmt.Fprintf(a.stdout, "🎬 视频数量: %d\n", res.Sources)
	if res.Duration > 0 {
		fmt.Fprintf(a.stdout, "⏱  总时长: %.1f 秒\n", res.Duration)
	}
	return nil
}

func newDownloadCmd(a *app) *cobra.Command {
	var (
		file     string
		dir      string
		headless string
		binPath  string
	)

	cmd := &cobra.Command{
		Use:   "download",
		Short: "从粘贴的文本中提取链接，通过下载站保存图片和视频",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			flags := cmd.Flags()
			if flags.Changed("output") {
				a.v.Set("download.dir", dir)
			}
			if flags.Changed("headless") {
				a.v.Set("download.headless", headless)
			}
			if binPath == "" {
				binPath = os.Getenv("ROD_BROWSER_BIN")
			}
			if binPath != "" {
				a.v.Set("download.bin", binPath)
			}

			links, err := a.readLinks(file)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			report, err := a.service().Download(ctx, links)
			if err != nil {
				return err
			}

			fmt.Fprintln(a.stdout, report.Summary())
			if len(report.Saved) == 0 {
				return errors.New("没有下载到任何媒体")
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&file, "file", "f", "", "包含链接的文本文件，默认从标准输入读取")
	f.StringVarP(&dir, "output", "o", configs.DefaultInputDir, "保存目录")
	f.StringVar(&headless, "headless", string(configs.HeadlessNew), "headless模式: new(推荐)/true/false")
	f.StringVar(&binPath, "bin", "", "浏览器二进制文件路径")
	return cmd
}

// readLinks 从文件或标准输入读取文本并提取链接
func (a *app) readLinks(file string) ([]string, error) {
	var (
		data []byte
		err  error
	)
	if file != "" {
		data, err = os.ReadFile(file)
	} else {
		data, err = io.ReadAll(a.stdin)
	}
	if err != nil {
		return nil, errors.Wrap(err, "读取链接失败")
	}

	links := textutil.ExtractLinks(string(data))
	if len(links) == 0 {
		return nil, errors.New("没有找到链接")
	}
	a.log.Infof("找到 %d 条链接", len(links))
	return links, nil
}
