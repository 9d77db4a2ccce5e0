package titlecard

import (
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/xpzouying/clipkit/pkg/theme"
)

const (
	testWidth  = 720
	testHeight = 1280
)

func newTestRenderer(t *testing.T) *Renderer {
	t.Helper()
	logger, _ := test.NewNullLogger()
	entry := logrus.NewEntry(logger)
	clock := func() time.Time { return time.Date(2024, 11, 23, 10, 0, 0, 0, time.Local) }
	return NewRenderer(NewFontLoader(nil, entry), entry, WithPlatform("linux"), WithClock(clock))
}

func requireNoOverlap(t *testing.T, groups []image.Rectangle) {
	t.Helper()
	for i := 0; i < len(groups); i++ {
		for j := i + 1; j < len(groups); j++ {
			assert.Falsef(t, groups[i].Overlaps(groups[j]), "元素 %v 与 %v 重叠", groups[i], groups[j])
		}
	}
}

func requireInsideFrame(t *testing.T, groups []image.Rectangle) {
	t.Helper()
	frame := image.Rect(0, 0, testWidth, testHeight)
	for _, g := range groups {
		assert.Truef(t, g.In(frame), "元素 %v 超出画面", g)
	}
}

func rgbaAt(img image.Image, x, y int) color.RGBA {
	return color.RGBAModel.Convert(img.At(x, y)).(color.RGBA)
}

// requireInkOnlyInGroups 元素区域外只允许出现背景色，每个元素区域内必须有非背景像素
func requireInkOnlyInGroups(t *testing.T, f *Frame, bg color.RGBA) {
	t.Helper()

	groups := f.Layout.Groups()
	expanded := make([]image.Rectangle, len(groups))
	for i, g := range groups {
		expanded[i] = g.Inset(-3)
	}

	inked := make([]bool, len(groups))
	stray := 0
	b := f.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if rgbaAt(f.Image, x, y) == bg {
				continue
			}
			p := image.Pt(x, y)
			inside := false
			for i, g := range expanded {
				if p.In(g) {
					inside = true
					inked[i] = true
				}
			}
			if !inside {
				stray++
			}
		}
	}

	assert.Zero(t, stray, "元素区域之外不应有内容")
	for i, ok := range inked {
		assert.Truef(t, ok, "元素 %v 没有绘制内容", groups[i])
	}
}

func TestRenderFirstCard(t *testing.T) {
	r := newTestRenderer(t)
	scheme := theme.Resolve("p6")

	f, err := r.Render(Request{
		Number: 1,
		Width:  testWidth,
		Height: testHeight,
		Title:  "Happy Today",
		Author: "Cynvann",
		Theme:  scheme,
	})
	require.NoError(t, err)

	assert.Equal(t, image.Rect(0, 0, testWidth, testHeight), f.Bounds())
	assert.False(t, f.Layout.Badge.Empty())
	assert.False(t, f.Layout.TitleBox.Empty())
	assert.False(t, f.Layout.Byline.Empty())
	assert.Empty(t, f.Layout.Lines)

	groups := f.Layout.Groups()
	require.Len(t, groups, 3)
	requireNoOverlap(t, groups)
	requireInsideFrame(t, groups)

	// 标题框在圆圈上方，作者在圆圈下方
	assert.Less(t, f.Layout.TitleBox.Max.Y, f.Layout.Badge.Min.Y)
	assert.Greater(t, f.Layout.Byline.Min.Y, f.Layout.Badge.Max.Y)

	assert.Equal(t, scheme.Background, rgbaAt(f.Image, 0, 0))
	requireInkOnlyInGroups(t, f, scheme.Background)
}

func TestRenderFirstCardWithoutAuthor(t *testing.T) {
	r := newTestRenderer(t)

	f, err := r.Render(Request{Number: 1, Width: testWidth, Height: testHeight, Title: "今日份快乐", Theme: theme.Default()})
	require.NoError(t, err)

	assert.True(t, f.Layout.Byline.Empty())
	assert.False(t, f.Layout.TitleBox.Empty())
	requireNoOverlap(t, f.Layout.Groups())
}

func TestRenderLaterCardsOnlyBadge(t *testing.T) {
	r := newTestRenderer(t)

	for _, n := range []int{2, 7, 12} {
		n := n
		t.Run(fmt.Sprintf("第%d张", n), func(t *testing.T) {
			scheme := theme.Resolve("p1")
			f, err := r.Render(Request{
				Number: n,
				Width:  testWidth,
				Height: testHeight,
				Title:  "ignored",
				Author: "ignored",
				Theme:  scheme,
			})
			require.NoError(t, err)

			groups := f.Layout.Groups()
			require.Len(t, groups, 1)
			assert.Equal(t, f.Layout.Badge, groups[0])
			assert.True(t, f.Layout.TitleBox.Empty())
			assert.True(t, f.Layout.Byline.Empty())

			// 圆圈居中
			center := f.Layout.Badge.Min.Add(f.Layout.Badge.Max).Div(2)
			assert.InDelta(t, testWidth/2, center.X, 1)
			assert.InDelta(t, testHeight/2, center.Y, 1)

			requireInkOnlyInGroups(t, f, scheme.Background)
		})
	}
}

func TestRenderFinalCard(t *testing.T) {
	r := newTestRenderer(t)

	for _, id := range theme.IDs() {
		t.Run(string(id), func(t *testing.T) {
			scheme := theme.Resolve(string(id))
			f, err := r.Render(Request{Number: 9, Final: true, Width: testWidth, Height: testHeight, Theme: scheme})
			require.NoError(t, err)

			require.Len(t, f.Layout.Lines, 3)
			assert.True(t, f.Layout.Badge.Empty())
			requireNoOverlap(t, f.Layout.Lines)
			requireInsideFrame(t, f.Layout.Lines)

			for i, line := range f.Layout.Lines {
				center := (line.Min.X + line.Max.X) / 2
				assert.InDeltaf(t, testWidth/2, center, 3, "第 %d 行没有水平居中", i+1)
				if i > 0 {
					assert.Greater(t, line.Min.Y, f.Layout.Lines[i-1].Max.Y)
				}
			}

			// 整体垂直居中
			top := f.Layout.Lines[0].Min.Y
			bottom := f.Layout.Lines[2].Max.Y
			assert.InDelta(t, testHeight-bottom, top, 8)

			assert.Equal(t, scheme.Background, rgbaAt(f.Image, 0, 0))
			requireInkOnlyInGroups(t, f, scheme.Background)
		})
	}
}

func TestRenderInvalidRequest(t *testing.T) {
	r := newTestRenderer(t)

	_, err := r.Render(Request{Number: 1, Width: 0, Height: 100, Theme: theme.Default()})
	require.ErrorIs(t, err, ErrInvalidRequest)

	_, err = r.Render(Request{Number: 0, Width: 100, Height: 100, Theme: theme.Default()})
	require.ErrorIs(t, err, ErrInvalidRequest)
}

func TestFrameSavePNG(t *testing.T) {
	r := newTestRenderer(t)
	f, err := r.Render(Request{Number: 3, Width: 90, Height: 160, Theme: theme.Default()})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "transition_3.png")
	require.NoError(t, f.SavePNG(path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())

	require.Error(t, f.SavePNG(filepath.Join(t.TempDir(), "missing", "x.png")))
}

func TestFontLoaderFallback(t *testing.T) {
	logger, hook := test.NewNullLogger()
	bad := filepath.Join(t.TempDir(), "bad.ttf")
	require.NoError(t, os.WriteFile(bad, []byte("not a font"), 0644))

	l := NewFontLoader([]string{"/nonexistent/msyh.ttf", bad}, logrus.NewEntry(logger))
	face := l.Face(40)
	require.NotNil(t, face)
	assert.Equal(t, fallbackFontName, l.Source())
	assert.Same(t, face, l.Face(40))

	var warned int
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.WarnLevel {
			warned++
		}
	}
	assert.Equal(t, 1, warned)
}

func TestFontLoaderUsesFirstWorkingCandidate(t *testing.T) {
	logger, hook := test.NewNullLogger()
	good := filepath.Join(t.TempDir(), "go.ttf")
	require.NoError(t, os.WriteFile(good, goregular.TTF, 0644))

	l := NewFontLoader([]string{"/nonexistent/PingFang.ttc", good}, logrus.NewEntry(logger))
	require.NotNil(t, l.Face(80))
	assert.Equal(t, good, l.Source())

	for _, e := range hook.AllEntries() {
		assert.NotEqual(t, logrus.WarnLevel, e.Level)
	}
}

func TestPlatformOffsets(t *testing.T) {
	assert.Equal(t, offsets{Circle: 30, Digit: 15, Byline: 340, TitleBox: -300}, platformOffsets("darwin"))
	assert.Equal(t, offsets{Byline: 320, TitleBox: -320}, platformOffsets("linux"))
	assert.Equal(t, platformOffsets("linux"), platformOffsets("windows"))
}

func TestDefaultFontPaths(t *testing.T) {
	for _, goos := range []string{"windows", "darwin", "linux"} {
		assert.NotEmpty(t, DefaultFontPaths(goos), goos)
	}
}

func TestRenderSamples(t *testing.T) {
	r := newTestRenderer(t)
	dir := t.TempDir()

	paths, err := r.RenderSamples(dir, 90, 160, "今日份快乐", theme.Resolve("p3"))
	require.NoError(t, err)
	require.Len(t, paths, 3)

	for _, name := range []string{"test_transition_1.png", "test_transition_2.png", "test_final_transition.png"} {
		assert.FileExists(t, filepath.Join(dir, name))
	}
}
