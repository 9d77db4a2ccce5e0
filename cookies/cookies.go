package cookies

import (
	"os"

	"github.com/pkg/errors"
)

// PathEnv cookies 文件路径的环境变量
const PathEnv = "CLIPKIT_COOKIES_PATH"

const defaultCookiesFile = "cookies.json"

type Cookier interface {
	LoadCookies() ([]byte, error)
	SaveCookies(data []byte) error
	DeleteCookies() error
}

type localCookie struct {
	path string
}

func NewLoadCookie(path string) Cookier {
	if path == "" {
		panic("path is required")
	}

	return &localCookie{
		path: path,
	}
}

// LoadCookies 从文件中加载 cookies。
func (c *localCookie) LoadCookies() ([]byte, error) {
	data, err := os.ReadFile(c.path)
	if err != nil {
		return nil, errors.Wrapf(err, "读取 cookies 文件失败: %s", c.path)
	}

	return data, nil
}

// SaveCookies 保存 cookies 到文件中。
func (c *localCookie) SaveCookies(data []byte) error {
	return errors.Wrap(os.WriteFile(c.path, data, 0600), "保存 cookies 失败")
}

// DeleteCookies 删除 cookies 文件。
func (c *localCookie) DeleteCookies() error {
	if _, err := os.Stat(c.path); os.IsNotExist(err) {
		// 文件不存在，认为已经删除
		return nil
	}
	return os.Remove(c.path)
}

// GetCookiesFilePath 环境变量 CLIPKIT_COOKIES_PATH 优先，否则使用当前目录下的 cookies.json
func GetCookiesFilePath() string {
	if path := os.Getenv(PathEnv); path != "" {
		return path
	}
	return defaultCookiesFile
}
