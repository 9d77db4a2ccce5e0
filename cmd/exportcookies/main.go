package main

import (
	"database/sql"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	_ "modernc.org/sqlite"

	"github.com/xpzouying/clipkit/cookies"
)

type Cookie struct {
	Name     string `json:"name"`
	Value    string `json:"value"`
	Domain   string `json:"domain"`
	Path     string `json:"path"`
	Expires  int64  `json:"expires,omitempty"`
	HTTPOnly bool   `json:"httpOnly"`
	Secure   bool   `json:"secure"`
	SameSite string `json:"sameSite,omitempty"`
}

// Chrome 的时间从 1601-01-01 开始，单位微秒
const chromeEpochOffset = 11644473600

func main() {
	var (
		dbPath  string
		domain  string
		outPath string
	)
	flag.StringVar(&dbPath, "db", defaultCookiesDB(), "Chrome Cookies 数据库路径")
	flag.StringVar(&domain, "domain", "snapinsta.to", "只导出该域名的 cookies")
	flag.StringVar(&outPath, "o", cookies.GetCookiesFilePath(), "输出文件")
	flag.Parse()

	list, err := exportCookies(dbPath, domain)
	if err != nil {
		fmt.Fprintf(os.Stderr, "导出失败: %v\n", err)
		os.Exit(1)
	}

	out, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "序列化失败: %v\n", err)
		os.Exit(1)
	}

	if err := cookies.NewLoadCookie(outPath).SaveCookies(out); err != nil {
		fmt.Fprintf(os.Stderr, "写入失败: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("✅ 导出 %d 个 %s cookies 到 %s\n", len(list), domain, outPath)
}

func defaultCookiesDB() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "Cookies"
	}
	return filepath.Join(home, ".config", "google-chrome", "Default", "Cookies")
}

// exportCookies 读取 Chrome 的 cookies 表，只保留 host_key 包含 domain 的记录
func exportCookies(dbPath, domain string) ([]Cookie, error) {
	if _, err := os.Stat(dbPath); err != nil {
		return nil, errors.Wrap(err, "找不到 cookies 数据库")
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, errors.Wrap(err, "打开数据库失败")
	}
	defer db.Close()

	rows, err := db.Query(`
		SELECT name, value, host_key, path, expires_utc, is_secure, is_httponly, same_site
		FROM cookies
		WHERE host_key LIKE ?
	`, "%"+domain+"%")
	if err != nil {
		return nil, errors.Wrap(err, "查询失败")
	}
	defer rows.Close()

	var list []Cookie
	for rows.Next() {
		var c Cookie
		var hostKey sql.NullString
		var sameSite sql.NullInt64
		var expiresUtc int64
		var isSecure, isHttpOnly int64

		if err := rows.Scan(&c.Name, &c.Value, &hostKey, &c.Path, &expiresUtc, &isSecure, &isHttpOnly, &sameSite); err != nil {
			return nil, errors.Wrap(err, "扫描行失败")
		}
		c.Domain = hostKey.String
		c.Secure = isSecure == 1
		c.HTTPOnly = isHttpOnly == 1
		if expiresUtc > 0 {
			c.Expires = expiresUtc/1000000 - chromeEpochOffset
		}
		if sameSite.Valid {
			c.SameSite = sameSiteName(sameSite.Int64)
		}
		list = append(list, c)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "遍历行错误")
	}
	return list, nil
}

func sameSiteName(v int64) string {
	switch v {
	case 1:
		return "Lax"
	case 2:
		return "Strict"
	case 0:
		return "None"
	default:
		return ""
	}
}
