// Package titlecard 生成插在每段视频前的编号过渡画面和结尾画面
package titlecard

import (
	"image"
	"math"
	"runtime"
	"strconv"
	"time"

	"github.com/fogleman/gg"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/image/font"

	"github.com/xpzouying/clipkit/pkg/theme"
)

const (
	digitFontSize  = 80
	titleFontSize  = 60
	bylineFontSize = 40
	finalFontSize  = 80

	circleStroke = 5
	boxStroke    = 3
	boxPadding   = 20
	finalLineGap = 50

	dateLayout = "01-02"
)

// FinalLines 结尾画面的三行文字
var FinalLines = [3]string{"★ 点赞支持 ★", "☆ 关注收藏 ☆", "◆ 转发分享 ◆"}

// ErrInvalidRequest 请求参数不合法
var ErrInvalidRequest = errors.New("invalid title card request")

// Request 一张过渡画面的参数
type Request struct {
	Number   int     // 从 1 开始的序号
	Final    bool    // 结尾画面
	Duration float64 // 秒，由合成阶段使用
	Width    int
	Height   int
	Title    string // 仅第一张使用
	Author   string // 仅第一张使用
	Theme    theme.Spec
}

// Layout 画面中各个元素的外接矩形
type Layout struct {
	Badge    image.Rectangle
	TitleBox image.Rectangle
	Byline   image.Rectangle
	Lines    []image.Rectangle
}

// Groups 所有非空元素
func (l Layout) Groups() []image.Rectangle {
	var groups []image.Rectangle
	for _, r := range []image.Rectangle{l.Badge, l.TitleBox, l.Byline} {
		if !r.Empty() {
			groups = append(groups, r)
		}
	}
	return append(groups, l.Lines...)
}

// Frame 渲染结果
type Frame struct {
	Number int
	Final  bool
	Image  image.Image
	Layout Layout
}

// Bounds 画面尺寸
func (f *Frame) Bounds() image.Rectangle {
	return f.Image.Bounds()
}

// SavePNG 写入 PNG 文件
func (f *Frame) SavePNG(path string) error {
	if err := gg.SavePNG(path, f.Image); err != nil {
		return errors.Wrapf(err, "保存过渡画面失败: %s", path)
	}
	return nil
}

// Renderer 过渡画面渲染器
type Renderer struct {
	fonts   *FontLoader
	offsets offsets
	now     func() time.Time
	log     *logrus.Entry
}

type Option func(*Renderer)

// WithClock 替换日期来源
func WithClock(now func() time.Time) Option {
	return func(r *Renderer) {
		r.now = now
	}
}

// WithPlatform 按指定平台选择垂直微调，默认当前平台
func WithPlatform(goos string) Option {
	return func(r *Renderer) {
		r.offsets = platformOffsets(goos)
	}
}

func NewRenderer(fonts *FontLoader, logger *logrus.Entry, options ...Option) *Renderer {
	r := &Renderer{
		fonts:   fonts,
		offsets: platformOffsets(runtime.GOOS),
		now:     time.Now,
		log:     logger,
	}
	for _, opt := range options {
		opt(r)
	}
	return r
}

// Render 生成一张过渡画面
func (r *Renderer) Render(req Request) (*Frame, error) {
	if req.Width <= 0 || req.Height <= 0 {
		return nil, errors.Wrapf(ErrInvalidRequest, "画面尺寸 %dx%d", req.Width, req.Height)
	}
	if !req.Final && req.Number < 1 {
		return nil, errors.Wrapf(ErrInvalidRequest, "序号 %d", req.Number)
	}

	dc := gg.NewContext(req.Width, req.Height)
	dc.SetColor(req.Theme.Background)
	dc.Clear()
	dc.SetColor(req.Theme.Text)

	var layout Layout
	if req.Final {
		layout.Lines = r.drawFinal(dc, req)
	} else {
		cx, cy, radius, badge := r.drawBadge(dc, req)
		layout.Badge = badge
		if req.Number == 1 {
			if req.Author != "" {
				layout.Byline = r.drawByline(dc, req.Author, cx, cy, radius)
			}
			layout.TitleBox = r.drawTitleBox(dc, req.Title, cx, cy, radius)
		}
	}

	return &Frame{
		Number: req.Number,
		Final:  req.Final,
		Image:  dc.Image(),
		Layout: layout,
	}, nil
}

// drawBadge 画圆圈和居中的序号
func (r *Renderer) drawBadge(dc *gg.Context, req Request) (cx, cy, radius float64, badge image.Rectangle) {
	face := r.fonts.Face(digitFontSize)
	dc.SetFontFace(face)

	text := strconv.Itoa(req.Number)
	ink, _ := font.BoundString(face, text)
	textW := fixedToFloat(ink.Max.X - ink.Min.X)
	textH := fixedToFloat(ink.Max.Y - ink.Min.Y)
	ascent, descent := metrics(face)

	radius = math.Max(textW, textH) * 0.8
	cx = float64(req.Width) / 2
	cy = float64(req.Height)/2 + r.offsets.Circle

	dc.SetLineWidth(circleStroke)
	dc.DrawCircle(cx, cy, radius)
	dc.Stroke()

	// 以 ascent/descent 框居中，而不是以基线居中
	baseline := cy + (ascent-descent)/2 + r.offsets.Digit
	advance, _ := dc.MeasureString(text)
	dc.DrawString(text, cx-advance/2, baseline)

	outer := radius + circleStroke/2 + 1
	badge = floatRect(cx-outer, cy-outer, cx+outer, cy+outer)
	return cx, cy, radius, badge
}

func (r *Renderer) drawByline(dc *gg.Context, author string, cx, cy, radius float64) image.Rectangle {
	face := r.fonts.Face(bylineFontSize)
	dc.SetFontFace(face)

	text := "@" + author
	ascent, _ := metrics(face)
	w, _ := dc.MeasureString(text)
	x := cx - w/2
	baseline := cy + radius + r.offsets.Byline + ascent

	dc.DrawString(text, x, baseline)
	return textRect(face, text, x, baseline)
}

// drawTitleBox 圆圈上方的方框：日期在上，标题在下
func (r *Renderer) drawTitleBox(dc *gg.Context, title string, cx, cy, radius float64) image.Rectangle {
	face := r.fonts.Face(titleFontSize)
	dc.SetFontFace(face)

	ascent, descent := metrics(face)
	lineH := ascent + descent

	date := r.now().Format(dateLayout)
	dateW, _ := dc.MeasureString(date)
	titleW, titleH := 0.0, 0.0
	if title != "" {
		titleW, _ = dc.MeasureString(title)
		titleH = lineH
	}

	boxW := math.Max(dateW, titleW) + boxPadding*2
	boxH := lineH + titleH + boxPadding*3
	boxX := cx - boxW/2
	boxY := cy - radius + r.offsets.TitleBox

	dc.SetLineWidth(boxStroke)
	dc.DrawRectangle(boxX, boxY, boxW, boxH)
	dc.Stroke()

	dateBaseline := boxY + boxPadding + ascent
	dc.DrawString(date, cx-dateW/2, dateBaseline)
	if title != "" {
		titleBaseline := dateBaseline + descent + boxPadding + ascent
		dc.DrawString(title, cx-titleW/2, titleBaseline)
	}

	outer := float64(boxStroke)/2 + 1
	return floatRect(boxX-outer, boxY-outer, boxX+boxW+outer, boxY+boxH+outer)
}

// drawFinal 三行文字整体垂直居中，每行水平居中
func (r *Renderer) drawFinal(dc *gg.Context, req Request) []image.Rectangle {
	face := r.fonts.Face(finalFontSize)
	dc.SetFontFace(face)

	ascent, descent := metrics(face)
	lineH := ascent + descent
	total := lineH*float64(len(FinalLines)) + finalLineGap*float64(len(FinalLines)-1)
	top := (float64(req.Height) - total) / 2

	rects := make([]image.Rectangle, 0, len(FinalLines))
	for _, text := range FinalLines {
		w, _ := dc.MeasureString(text)
		x := (float64(req.Width) - w) / 2
		baseline := top + ascent
		dc.DrawString(text, x, baseline)
		rects = append(rects, textRect(face, text, x, baseline))
		top += lineH + finalLineGap
	}
	return rects
}
