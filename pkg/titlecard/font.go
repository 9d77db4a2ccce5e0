package titlecard

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/golang/freetype/truetype"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

const fallbackFontName = "goregular"

type faceMaker func(size float64) (font.Face, error)

// FontLoader 按优先级加载字体，全部失败时回退到内置字体
type FontLoader struct {
	candidates []string
	log        *logrus.Entry

	resolved bool
	source   string
	newFace  faceMaker
	faces    map[float64]font.Face
}

// DefaultFontPaths 各平台常见中文字体位置
func DefaultFontPaths(goos string) []string {
	switch goos {
	case "windows":
		return []string{
			`C:\Windows\Fonts\msyh.ttc`,
			`C:\Windows\Fonts\simhei.ttf`,
		}
	case "darwin":
		return []string{
			"/System/Library/Fonts/PingFang.ttc",
			"/System/Library/Fonts/Supplemental/STHeiti Medium.ttc",
			"/Library/Fonts/Microsoft/msyh.ttf",
			"msyh.ttf",
		}
	default:
		return []string{
			"/usr/share/fonts/truetype/msttcorefonts/msyh.ttf",
			"/usr/share/fonts/opentype/noto/NotoSansCJK-Regular.ttc",
			"/usr/share/fonts/noto-cjk/NotoSansCJK-Regular.ttc",
			"msyh.ttf",
		}
	}
}

// NewFontLoader candidates 为空时不会尝试任何系统字体
func NewFontLoader(candidates []string, logger *logrus.Entry) *FontLoader {
	return &FontLoader{
		candidates: candidates,
		log:        logger,
		faces:      make(map[float64]font.Face),
	}
}

// Source 实际使用的字体文件，回退时为 "goregular"
func (l *FontLoader) Source() string {
	l.resolve()
	return l.source
}

// Face 获取指定字号的字体，不会失败
func (l *FontLoader) Face(size float64) font.Face {
	l.resolve()

	if face, ok := l.faces[size]; ok {
		return face
	}

	face, err := l.newFace(size)
	if err != nil {
		l.log.Warnf("创建 %s 字号 %.0f 失败，使用默认字体: %v", l.source, size, err)
		face = fallbackFace(size)
	}
	l.faces[size] = face
	return face
}

func (l *FontLoader) resolve() {
	if l.resolved {
		return
	}
	l.resolved = true

	for _, path := range l.candidates {
		maker, err := loadFontFile(path)
		if err != nil {
			l.log.Debugf("字体不可用 %s: %v", path, err)
			continue
		}
		l.source = path
		l.newFace = maker
		l.log.Debugf("使用字体: %s", path)
		return
	}

	l.log.Warn("未找到系统字体，使用默认字体")
	l.source = fallbackFontName
	l.newFace = func(size float64) (font.Face, error) {
		return fallbackFace(size), nil
	}
}

func loadFontFile(path string) (faceMaker, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "读取字体文件失败")
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".ttc", ".otc":
		coll, err := opentype.ParseCollection(data)
		if err != nil {
			return nil, errors.Wrap(err, "解析字体集合失败")
		}
		f, err := coll.Font(0)
		if err != nil {
			return nil, errors.Wrap(err, "读取字体集合中的字体失败")
		}
		return opentypeMaker(f), nil
	case ".otf":
		f, err := opentype.Parse(data)
		if err != nil {
			return nil, errors.Wrap(err, "解析 OpenType 字体失败")
		}
		return opentypeMaker(f), nil
	default:
		f, err := truetype.Parse(data)
		if err != nil {
			return nil, errors.Wrap(err, "解析 TrueType 字体失败")
		}
		return func(size float64) (font.Face, error) {
			return truetype.NewFace(f, &truetype.Options{Size: size}), nil
		}, nil
	}
}

func opentypeMaker(f *opentype.Font) faceMaker {
	return func(size float64) (font.Face, error) {
		return opentype.NewFace(f, &opentype.FaceOptions{
			Size:    size,
			DPI:     72,
			Hinting: font.HintingFull,
		})
	}
}

// goregular 是编译进来的字体，解析不会失败
var fallbackFont, _ = truetype.Parse(goregular.TTF)

func fallbackFace(size float64) font.Face {
	return truetype.NewFace(fallbackFont, &truetype.Options{Size: size})
}
