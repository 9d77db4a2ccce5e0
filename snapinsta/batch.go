package snapinsta

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/xpzouying/clipkit/pkg/textutil"
)

const linkDisplayWidth = 100

// Resolver 把一条社交媒体链接解析成媒体地址
type Resolver interface {
	Resolve(ctx context.Context, link string) ([]string, error)
}

// Fetcher 下载一个媒体地址，返回本地路径
type Fetcher interface {
	Download(ctx context.Context, mediaURL, referer string) (string, error)
}

// Report 批量下载结果
type Report struct {
	Links  int
	Saved  []string
	Failed []string
}

// Summary 人类可读的结果
func (r *Report) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "下载完成！成功: %d个媒体/%d条链接", len(r.Saved), r.Links)
	if len(r.Failed) > 0 {
		b.WriteString("\n失败的链接:\n")
		lines := make([]string, 0, len(r.Failed))
		for _, link := range r.Failed {
			lines = append(lines, textutil.Truncate(link, linkDisplayWidth))
		}
		b.WriteString(textutil.Indent(strings.Join(lines, "\n"), "  "))
	}
	return b.String()
}

// Batch 逐条解析并下载，单条失败只记录不中断
type Batch struct {
	resolver Resolver
	fetcher  Fetcher
	referer  string
	pause    func(ctx context.Context)
	log      *logrus.Entry
}

func NewBatch(resolver Resolver, fetcher Fetcher, referer string, logger *logrus.Entry) *Batch {
	return &Batch{
		resolver: resolver,
		fetcher:  fetcher,
		referer:  referer,
		pause:    randomPause,
		log:      logger,
	}
}

func (b *Batch) Run(ctx context.Context, links []string) *Report {
	report := &Report{Links: len(links)}

	for i, link := range links {
		if ctx.Err() != nil {
			report.Failed = append(report.Failed, links[i:]...)
			break
		}

		b.log.Infof("[%d/%d] 解析: %s", i+1, len(links), link)
		media, err := b.resolver.Resolve(ctx, link)
		if err != nil {
			b.log.Errorf("下载失败 %s: %v", link, err)
			report.Failed = append(report.Failed, link)
			continue
		}

		saved := 0
		for _, m := range media {
			path, err := b.fetcher.Download(ctx, m, b.referer)
			if err != nil {
				b.log.Warnf("媒体下载失败，跳过: %v", err)
				continue
			}
			b.log.Infof("已保存: %s", path)
			report.Saved = append(report.Saved, path)
			saved++

			b.pause(ctx)
		}

		if saved == 0 {
			report.Failed = append(report.Failed, link)
		}
	}

	return report
}

// randomPause 每次下载后随机等待 1-3 秒
func randomPause(ctx context.Context) {
	d := time.Second + time.Duration(rand.Int63n(int64(2*time.Second)))
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}
