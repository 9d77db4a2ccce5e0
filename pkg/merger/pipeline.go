// Package merger 把目录中的视频按顺序合并，每段前插入编号过渡画面，最后接结尾画面
package merger

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/xpzouying/clipkit/configs"
	"github.com/xpzouying/clipkit/pkg/media"
	"github.com/xpzouying/clipkit/pkg/theme"
	"github.com/xpzouying/clipkit/pkg/titlecard"
)

// Request 一次合并任务
type Request struct {
	InputDir string
	Output   string // 只取文件名，输出总在 InputDir 中；为空时使用默认名
	Title    string
	Author   string
	Scheme   string
}

// Result 合并结果
type Result struct {
	Output   string
	Sources  int
	Segments int
	Duration float64 // 秒，探测失败时为 0
}

// Pipeline 合并流程
type Pipeline struct {
	cfg       configs.Merge
	codec     media.Codec
	renderer  *titlecard.Renderer
	synth     *Synthesizer
	assembler *Assembler
	concat    *Concatenator
	now       func() time.Time
	newRunID  func() string
	log       *logrus.Entry
}

func NewPipeline(cfg configs.Merge, codec media.Codec, renderer *titlecard.Renderer, logger *logrus.Entry) *Pipeline {
	return &Pipeline{
		cfg:       cfg,
		codec:     codec,
		renderer:  renderer,
		synth:     NewSynthesizer(codec, cfg.Sound, logger.WithField("stage", "synthesize")),
		assembler: NewAssembler(codec, logger.WithField("stage", "assemble")),
		concat:    NewConcatenator(codec, cfg.JoinTimeout, logger.WithField("stage", "concat")),
		now:       time.Now,
		newRunID:  uuid.NewString,
		log:       logger,
	}
}

// Run 执行合并。任何一个文件失败都会中止整个任务，并清理所有中间文件。
func (p *Pipeline) Run(ctx context.Context, req Request) (*Result, error) {
	inputDir, err := filepath.Abs(req.InputDir)
	if err != nil {
		return nil, stageError(KindInput, req.InputDir, err)
	}
	if info, err := os.Stat(inputDir); err != nil {
		return nil, stageError(KindInput, req.InputDir, errors.Wrap(err, "输入目录不可用"))
	} else if !info.IsDir() {
		return nil, stageError(KindInput, req.InputDir, errors.New("输入路径不是目录"))
	}

	outName := filepath.Base(req.Output)
	if req.Output == "" {
		outName = DefaultOutputName(p.now())
	}
	output := filepath.Join(inputDir, outName)

	sources, err := Discover(inputDir, outName)
	if err != nil {
		return nil, stageError(KindInput, req.InputDir, err)
	}
	if len(sources) == 0 {
		return nil, stageError(KindNoInput, "", ErrNoInput)
	}

	scheme, ok := theme.Lookup(req.Scheme)
	if !ok && req.Scheme != "" {
		p.log.Warnf("未知的配色方案 %q，使用默认方案 %s", req.Scheme, theme.DefaultID)
	}
	if !ok {
		scheme = theme.Default()
	}

	workDir := filepath.Join(inputDir, workDirPrefix+p.newRunID())
	if err := os.Mkdir(workDir, 0755); err != nil {
		return nil, stageError(KindOutput, workDir, errors.Wrap(err, "创建工作目录失败"))
	}
	defer p.cleanup(inputDir, workDir)

	p.log.Infof("找到 %d 个视频，配色方案: %s(%s)", len(sources), scheme.ID, scheme.Name)

	frame := p.cfg.Frame
	segments := make([]string, 0, len(sources)+1)
	for i := range sources {
		if err := ctx.Err(); err != nil {
			return nil, stageError(KindEncode, sources[i].Name, err)
		}

		n := i + 1
		p.log.Infof("[%d/%d] 处理: %s", n, len(sources), sources[i].Name)

		card := titlecard.Request{
			Number:   n,
			Duration: p.cfg.TransitionDuration,
			Width:    frame.Width,
			Height:   frame.Height,
			Theme:    scheme,
		}
		if n == 1 {
			card.Title = req.Title
			card.Author = req.Author
		}

		segment, err := p.segment(ctx, card, &sources[i], workDir)
		if err != nil {
			p.log.Errorf("处理失败: %s, err=%v", sources[i].Name, err)
			return nil, err
		}
		segments = append(segments, segment)
	}

	final := titlecard.Request{
		Number:   len(sources) + 1,
		Final:    true,
		Duration: p.cfg.FinalDuration,
		Width:    frame.Width,
		Height:   frame.Height,
		Theme:    scheme,
	}
	segment, err := p.segment(ctx, final, nil, workDir)
	if err != nil {
		return nil, err
	}
	segments = append(segments, segment)

	if err := p.concat.Concatenate(ctx, segments, output); err != nil {
		return nil, err
	}

	result := &Result{
		Output:   output,
		Sources:  len(sources),
		Segments: len(segments),
	}
	if info, err := p.codec.Probe(ctx, output); err != nil {
		p.log.Warnf("读取输出视频信息失败: %v", err)
	} else {
		result.Duration = info.Duration
	}

	p.log.Infof("合并完成: %s", output)
	return result, nil
}

func (p *Pipeline) segment(ctx context.Context, req titlecard.Request, source *SourceVideo, workDir string) (string, error) {
	frame, err := p.renderer.Render(req)
	if err != nil {
		return "", stageError(KindRender, "", err)
	}

	clip, err := p.synth.Synthesize(ctx, frame, req.Duration, req.Final, workDir)
	if err != nil {
		return "", err
	}

	return p.assembler.Assemble(ctx, clip, source, workDir)
}

// cleanup 删除工作目录，以及旧版本遗留在输入目录中的过渡画面
func (p *Pipeline) cleanup(inputDir, workDir string) {
	if err := os.RemoveAll(workDir); err != nil {
		p.log.Warnf("清理工作目录失败: %s, err=%v", workDir, err)
	}

	stray, _ := filepath.Glob(filepath.Join(inputDir, "transition_*.png"))
	for _, path := range stray {
		removeQuietly(p.log, path)
	}
}
