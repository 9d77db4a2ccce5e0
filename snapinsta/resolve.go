// Package snapinsta 通过第三方下载站解析社交媒体链接中的图片和视频地址
package snapinsta

import (
	"context"
	"net/url"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	DefaultSite = "https://snapinsta.to/"

	inputSelector  = "#s_input"
	modalSelector  = "#closeModalBtn"
	itemsSelector  = "ul.download-box > li > div.download-items"
	buttonSelector = ".download-items__btn > a"

	navigateAttempts = 3
	resultTimeout    = 30 * time.Second
)

// ErrNoMedia 页面没有解析出任何下载项
var ErrNoMedia = errors.New("下载项未找到")

type ResolveAction struct {
	page *rod.Page
	site string
	log  *logrus.Entry
}

func NewResolveAction(page *rod.Page, site string, logger *logrus.Entry) *ResolveAction {
	if site == "" {
		site = DefaultSite
	}
	pp := page.Timeout(90 * time.Second)

	return &ResolveAction{page: pp, site: site, log: logger}
}

// Site 下载站地址，下载媒体时作为 Referer
func (a *ResolveAction) Site() string {
	return a.site
}

// Resolve 提交一个链接，返回页面列出的所有媒体地址
func (a *ResolveAction) Resolve(ctx context.Context, link string) ([]string, error) {
	page := a.page.Context(ctx)

	if err := a.open(ctx, page); err != nil {
		return nil, err
	}

	input, err := page.Element(inputSelector)
	if err != nil {
		return nil, errors.Wrap(err, "没有找到链接输入框")
	}
	if err := input.Input(link); err != nil {
		return nil, errors.Wrap(err, "输入链接失败")
	}

	button, err := page.ElementR("button", "Download")
	if err != nil {
		return nil, errors.Wrap(err, "没有找到 Download 按钮")
	}
	if err := button.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return nil, errors.Wrap(err, "点击 Download 失败")
	}

	// 等待解析结果
	if _, err := page.Timeout(resultTimeout).Element(itemsSelector); err != nil {
		return nil, errors.Wrap(ErrNoMedia, err.Error())
	}

	// 关闭可能出现的广告弹窗
	if has, modal, _ := page.Has(modalSelector); has {
		if err := modal.Click(proto.InputMouseButtonLeft, 1); err != nil {
			a.log.Debugf("关闭弹窗失败: %v", err)
		}
	}

	items, err := page.Elements(itemsSelector)
	if err != nil {
		return nil, errors.Wrap(err, "读取下载项失败")
	}

	var hrefs []string
	for i, item := range items {
		has, anchor, err := item.Has(buttonSelector)
		if err != nil || !has {
			a.log.Warnf("第 %d 个下载项没有下载按钮，跳过", i+1)
			continue
		}
		href, err := anchor.Attribute("href")
		if err != nil || href == nil || *href == "" {
			a.log.Warnf("第 %d 个下载项没有下载地址，跳过", i+1)
			continue
		}
		hrefs = append(hrefs, a.absolute(*href))
	}

	if len(hrefs) == 0 {
		return nil, ErrNoMedia
	}
	return hrefs, nil
}

// open 打开下载站，页面加载失败时重试
func (a *ResolveAction) open(ctx context.Context, page *rod.Page) error {
	err := retry.Do(
		func() error {
			if err := page.Navigate(a.site); err != nil {
				return err
			}
			return page.WaitLoad()
		},
		retry.Context(ctx),
		retry.Attempts(navigateAttempts),
		retry.Delay(2*time.Second),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			a.log.Warnf("打开 %s 失败，第 %d 次重试: %v", a.site, n+1, err)
		}),
	)
	return errors.Wrapf(err, "打开下载站失败: %s", a.site)
}

func (a *ResolveAction) absolute(href string) string {
	return resolveHref(a.site, href)
}

func resolveHref(site, href string) string {
	base, err := url.Parse(site)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}
