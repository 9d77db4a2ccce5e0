package downloader

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/h2non/filetype"
	"github.com/pkg/errors"
)

const (
	filePrefix = "snapinsta"
	userAgent  = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"
)

// MediaDownloader 下载图片或视频，按文件内容识别扩展名
type MediaDownloader struct {
	savePath   string
	httpClient *http.Client
	now        func() time.Time
}

// NewMediaDownloader 创建下载器，保存目录不存在时自动创建
func NewMediaDownloader(savePath string) (*MediaDownloader, error) {
	if err := os.MkdirAll(savePath, 0755); err != nil {
		return nil, errors.Wrapf(err, "创建下载目录失败: %s", savePath)
	}

	return &MediaDownloader{
		savePath: savePath,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
		now: time.Now,
	}, nil
}

// Download 下载媒体并返回本地路径。referer 为空时使用媒体地址的域名
func (d *MediaDownloader) Download(ctx context.Context, mediaURL, referer string) (string, error) {
	if !IsMediaURL(mediaURL) {
		return "", errors.Errorf("无效的媒体地址: %s", mediaURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, mediaURL, nil)
	if err != nil {
		return "", errors.Wrap(err, "failed to create request")
	}

	req.Header.Set("User-Agent", userAgent)
	if referer == "" {
		if u, _ := url.Parse(mediaURL); u != nil {
			referer = fmt.Sprintf("%s://%s/", u.Scheme, u.Host)
		}
	}
	req.Header.Set("Referer", referer)

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return "", errors.Wrapf(err, "下载失败: %s", mediaURL)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", errors.Errorf("下载失败，状态码 %d: %s", resp.StatusCode, mediaURL)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.Wrap(err, "读取媒体数据失败")
	}

	// 只接受图片和视频
	kind, err := filetype.Match(data)
	if err != nil {
		return "", errors.Wrap(err, "识别文件类型失败")
	}
	if !filetype.IsImage(data) && !filetype.IsVideo(data) {
		return "", errors.Errorf("不是图片或视频: %s", kind.MIME.Value)
	}

	filePath := filepath.Join(d.savePath, d.fileName(mediaURL, kind.Extension))
	if _, err := os.Stat(filePath); err == nil {
		return filePath, nil
	}

	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return "", errors.Wrap(err, "保存媒体失败")
	}
	return filePath, nil
}

// fileName snapinsta_<时间>_<地址哈希>.<扩展名>
func (d *MediaDownloader) fileName(mediaURL, extension string) string {
	hash := sha256.Sum256([]byte(mediaURL))
	shortHash := fmt.Sprintf("%x", hash)[:16]
	return fmt.Sprintf("%s_%s_%s.%s", filePrefix, d.now().Format("20060102_150405"), shortHash, extension)
}

// IsMediaURL 是否为 http/https 地址
func IsMediaURL(rawURL string) bool {
	lower := strings.ToLower(rawURL)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		return false
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return u.Host != ""
}
