package browser

import (
	"net/url"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/xpzouying/headless_browser"

	"github.com/xpzouying/clipkit/configs"
	"github.com/xpzouying/clipkit/cookies"
)

// ProxyEnv 代理地址的环境变量
const ProxyEnv = "CLIPKIT_PROXY"

type browserConfig struct {
	binPath     string
	proxy       string
	cookiePath  string
	withCookies bool
}

type Option func(*browserConfig)

func WithBinPath(binPath string) Option {
	return func(c *browserConfig) {
		c.binPath = binPath
	}
}

// WithProxy 指定代理，优先于环境变量
func WithProxy(proxy string) Option {
	return func(c *browserConfig) {
		c.proxy = proxy
	}
}

// WithCookiesFile 从指定文件加载 cookies
func WithCookiesFile(path string) Option {
	return func(c *browserConfig) {
		c.cookiePath = path
	}
}

// WithoutCookies 不加载 cookies
func WithoutCookies() Option {
	return func(c *browserConfig) {
		c.withCookies = false
	}
}

// FromConfig 下载配置对应的选项
func FromConfig(cfg configs.Download) []Option {
	return []Option{WithBinPath(cfg.BinPath), WithProxy(cfg.Proxy)}
}

// maskProxyCredentials masks username and password in proxy URL for safe logging.
func maskProxyCredentials(proxyURL string) string {
	u, err := url.Parse(proxyURL)
	if err != nil || u.User == nil {
		return proxyURL
	}
	if _, hasPassword := u.User.Password(); hasPassword {
		u.User = url.UserPassword("***", "***")
	} else {
		u.User = url.User("***")
	}
	return u.String()
}

func newConfig(options ...Option) *browserConfig {
	cfg := &browserConfig{
		withCookies: true,
	}
	for _, opt := range options {
		opt(cfg)
	}
	if cfg.proxy == "" {
		cfg.proxy = os.Getenv(ProxyEnv)
	}
	if cfg.cookiePath == "" {
		cfg.cookiePath = cookies.GetCookiesFilePath()
	}
	return cfg
}

func NewBrowser(headless bool, options ...Option) *headless_browser.Browser {
	cfg := newConfig(options...)

	opts := []headless_browser.Option{
		headless_browser.WithHeadless(headless),
	}
	if cfg.binPath != "" {
		opts = append(opts, headless_browser.WithChromeBinPath(cfg.binPath))
	}

	if cfg.proxy != "" {
		opts = append(opts, headless_browser.WithProxy(cfg.proxy))
		logrus.Infof("使用代理: %s", maskProxyCredentials(cfg.proxy))
	}

	if cfg.withCookies {
		cookieLoader := cookies.NewLoadCookie(cfg.cookiePath)
		if data, err := cookieLoader.LoadCookies(); err == nil {
			opts = append(opts, headless_browser.WithCookies(string(data)))
			logrus.Debugf("已加载 cookies: %s", cfg.cookiePath)
		} else {
			logrus.Warnf("加载 cookies 失败: %v", err)
		}
	}

	return headless_browser.New(opts...)
}
