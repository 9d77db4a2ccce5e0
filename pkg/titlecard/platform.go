package titlecard

// offsets 不同字体渲染后端的垂直微调（像素），只影响观感
type offsets struct {
	Circle   float64 // 圆心相对画面中心
	Digit    float64 // 数字基线
	Byline   float64 // 作者行顶部到圆底部的距离
	TitleBox float64 // 标题框顶部相对圆顶部
}

func platformOffsets(goos string) offsets {
	if goos == "darwin" {
		return offsets{Circle: 30, Digit: 15, Byline: 340, TitleBox: -300}
	}
	return offsets{Circle: 0, Digit: 0, Byline: 320, TitleBox: -320}
}
