package titlecard

import (
	"path/filepath"

	"github.com/xpzouying/clipkit/pkg/theme"
)

// 测试模式下的样例作者
const SampleAuthor = "Cynvann"

// RenderSamples 在 dir 中生成第 1、2 张和结尾画面，用于预览配色和排版
func (r *Renderer) RenderSamples(dir string, width, height int, title string, scheme theme.Spec) ([]string, error) {
	samples := []struct {
		name string
		req  Request
	}{
		{"test_transition_1.png", Request{Number: 1, Title: title, Author: SampleAuthor}},
		{"test_transition_2.png", Request{Number: 2}},
		{"test_final_transition.png", Request{Number: 3, Final: true}},
	}

	paths := make([]string, 0, len(samples))
	for _, s := range samples {
		req := s.req
		req.Width, req.Height, req.Theme = width, height, scheme

		f, err := r.Render(req)
		if err != nil {
			return paths, err
		}
		path := filepath.Join(dir, s.name)
		if err := f.SavePNG(path); err != nil {
			return paths, err
		}
		r.log.Infof("已生成样例: %s", path)
		paths = append(paths, path)
	}
	return paths, nil
}
