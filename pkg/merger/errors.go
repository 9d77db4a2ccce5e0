package merger

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind 失败类别
type Kind int

const (
	KindUnknown Kind = iota
	KindInput        // 输入目录不可用
	KindNoInput      // 没有可处理的视频
	KindRender       // 过渡画面生成或落盘失败
	KindEncode       // 单个素材或过渡片段编码失败
	KindJoin         // 最终拼接失败
	KindOutput       // 工作目录或输出文件无法创建
)

func (k Kind) String() string {
	switch k {
	case KindInput:
		return "input"
	case KindNoInput:
		return "no-input"
	case KindRender:
		return "render"
	case KindEncode:
		return "encode"
	case KindJoin:
		return "join"
	case KindOutput:
		return "output"
	default:
		return "unknown"
	}
}

// ErrNoInput 输入目录中没有视频文件
var ErrNoInput = errors.New("no input files found")

// StageError 某个阶段的失败，File 为出问题的文件名（可能为空）
type StageError struct {
	Kind Kind
	File string
	Err  error
}

func (e *StageError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("%s 失败 [%s]: %v", e.Kind, e.File, e.Err)
	}
	return fmt.Sprintf("%s 失败: %v", e.Kind, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

func stageError(kind Kind, file string, err error) error {
	return &StageError{Kind: kind, File: file, Err: err}
}

// KindOf 取出错误类别，非 StageError 时为 KindUnknown
func KindOf(err error) Kind {
	var se *StageError
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindUnknown
}
