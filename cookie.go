package v2md

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/samber/lo"
)

// LoginCookieName 登录后 V2EX 下发的长期 Cookie
const LoginCookieName = "A2"

const netscapeHTTPOnlyPrefix = "#HttpOnly_"

// CookieManager Cookie管理器，实现 http.CookieJar
type CookieManager struct {
	mu  sync.Mutex
	jar *CookieJar
}

var _ http.CookieJar = (*CookieManager)(nil)

// NewCookieManager 创建新的Cookie管理器
func NewCookieManager() *CookieManager {
	return &CookieManager{
		jar: &CookieJar{
			Cookies:     make([]CookieEntry, 0),
			LastUpdated: time.Now(),
		},
	}
}

// LoadFromFile 从文件加载Cookie
func (cm *CookieManager) LoadFromFile(path string) error {
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return NewIOError("读取Cookie文件失败", err)
	}
	if len(data) == 0 {
		return nil
	}

	var jar CookieJar
	if err := toml.Unmarshal(data, &jar); err != nil {
		// TOML解析失败，备份旧文件后从空Cookie开始
		backupPath := path + ".backup." + time.Now().Format("20060102_150405")
		if renameErr := os.Rename(path, backupPath); renameErr != nil {
			return NewIOError("备份Cookie文件失败", renameErr)
		}
		slog.Warn("Cookie file is corrupt, starting empty", "path", path, "backup", backupPath, "error", err)
		return nil
	}

	cm.mu.Lock()
	cm.jar = &jar
	cm.cleanExpiredLocked()
	cm.mu.Unlock()

	if !cm.IsLoggedIn() {
		slog.Debug("Cookie file holds no login cookie", "path", path)
	}
	return nil
}

// SaveToFile 保存Cookie到文件
func (cm *CookieManager) SaveToFile(path string) error {
	if path == "" {
		return nil
	}

	cm.mu.Lock()
	cm.jar.LastUpdated = time.Now()
	cm.cleanExpiredLocked()
	tomlData, err := toml.Marshal(cm.jar)
	cm.mu.Unlock()
	if err != nil {
		return NewIOError("序列化Cookie失败", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return NewIOError("创建Cookie目录失败", err)
	}
	if err := os.WriteFile(path, tomlData, 0o600); err != nil {
		return NewIOError("写入Cookie文件失败", err)
	}
	return nil
}

// SetCookies 记录响应下发的Cookie。MaxAge<0 的Cookie会被删除。
func (cm *CookieManager) SetCookies(u *url.URL, cookies []*http.Cookie) {
	now := time.Now()

	cm.mu.Lock()
	defer cm.mu.Unlock()

	for _, c := range cookies {
		entry := entryFromHTTPCookie(c)
		if entry.Domain == "" {
			entry.Domain = u.Hostname()
		}
		if entry.Path == "" {
			entry.Path = "/"
		}
		if c.MaxAge < 0 {
			cm.removeLocked(entry)
			continue
		}
		if c.MaxAge > 0 {
			entry.Expires = now.Add(time.Duration(c.MaxAge) * time.Second)
		}
		cm.addLocked(entry)
	}
	cm.jar.LastUpdated = now
}

// Cookies 返回请求 u 时应携带的Cookie
func (cm *CookieManager) Cookies(u *url.URL) []*http.Cookie {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	var result []*http.Cookie
	for _, entry := range cm.jar.Cookies {
		if isCookieApplicable(entry, u) {
			result = append(result, &http.Cookie{Name: entry.Name, Value: entry.Value})
		}
	}
	return result
}

// AddCookie 添加或替换Cookie（相同name、domain、path）
func (cm *CookieManager) AddCookie(entry CookieEntry) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.addLocked(entry)
}

func (cm *CookieManager) addLocked(entry CookieEntry) {
	for i, existing := range cm.jar.Cookies {
		if sameCookie(existing, entry) {
			cm.jar.Cookies[i] = entry
			return
		}
	}
	cm.jar.Cookies = append(cm.jar.Cookies, entry)
}

func (cm *CookieManager) removeLocked(entry CookieEntry) {
	cm.jar.Cookies = lo.Reject(cm.jar.Cookies, func(existing CookieEntry, _ int) bool {
		return sameCookie(existing, entry)
	})
}

func sameCookie(a, b CookieEntry) bool {
	return a.Name == b.Name && a.Domain == b.Domain && a.Path == b.Path
}

// Entries 返回当前Cookie的副本
func (cm *CookieManager) Entries() []CookieEntry {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	return append([]CookieEntry(nil), cm.jar.Cookies...)
}

// IsLoggedIn reports whether the jar holds the login cookie.
func (cm *CookieManager) IsLoggedIn() bool {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	return lo.ContainsBy(cm.jar.Cookies, func(item CookieEntry) bool {
		return item.Name == LoginCookieName && item.Value != ""
	})
}

// CleanExpired 清理过期Cookie
func (cm *CookieManager) CleanExpired() {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.cleanExpiredLocked()
}

func (cm *CookieManager) cleanExpiredLocked() {
	now := time.Now()
	cm.jar.Cookies = lo.Filter(cm.jar.Cookies, func(c CookieEntry, _ int) bool {
		return c.Expires.IsZero() || c.Expires.After(now)
	})
}

// ClearCookies 清除所有Cookie
func (cm *CookieManager) ClearCookies() {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.jar.Cookies = make([]CookieEntry, 0)
}

// ImportNetscape 导入浏览器导出的 Netscape cookies.txt，返回导入条数
func (cm *CookieManager) ImportNetscape(r io.Reader) (int, error) {
	var entries []CookieEntry

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())

		httpOnly := false
		if strings.HasPrefix(line, netscapeHTTPOnlyPrefix) {
			httpOnly = true
			line = strings.TrimPrefix(line, netscapeHTTPOnlyPrefix)
		}
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// domain, includeSubdomains, path, secure, expires, name, value
		fields := strings.Split(line, "\t")
		if len(fields) != 7 {
			return 0, NewValidationError(fmt.Sprintf("cookies.txt 第 %d 行格式错误", lineNo))
		}

		entry := CookieEntry{
			Domain:   strings.TrimPrefix(fields[0], "."),
			Path:     fields[2],
			Secure:   strings.EqualFold(fields[3], "TRUE"),
			Name:     fields[5],
			Value:    fields[6],
			HttpOnly: httpOnly,
		}
		if expires, err := strconv.ParseInt(fields[4], 10, 64); err == nil && expires > 0 {
			entry.Expires = time.Unix(expires, 0)
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return 0, NewIOError("读取cookies.txt失败", err)
	}

	cm.mu.Lock()
	defer cm.mu.Unlock()
	for _, entry := range entries {
		cm.addLocked(entry)
	}
	cm.cleanExpiredLocked()
	return len(entries), nil
}

func entryFromHTTPCookie(c *http.Cookie) CookieEntry {
	entry := CookieEntry{
		Name:     c.Name,
		Value:    c.Value,
		Domain:   strings.TrimPrefix(c.Domain, "."),
		Path:     c.Path,
		Expires:  c.Expires,
		MaxAge:   c.MaxAge,
		Secure:   c.Secure,
		HttpOnly: c.HttpOnly,
	}

	// 处理SameSite属性
	switch c.SameSite {
	case http.SameSiteLaxMode:
		entry.SameSite = "Lax"
	case http.SameSiteStrictMode:
		entry.SameSite = "Strict"
	case http.SameSiteNoneMode:
		entry.SameSite = "None"
	}
	return entry
}

// isCookieApplicable 检查Cookie是否适用于指定URL
func isCookieApplicable(c CookieEntry, u *url.URL) bool {
	if !c.Expires.IsZero() && c.Expires.Before(time.Now()) {
		return false
	}
	if !domainMatches(c.Domain, u.Hostname()) {
		return false
	}
	if !pathMatches(c.Path, u.Path) {
		return false
	}
	if c.Secure && u.Scheme != "https" {
		return false
	}
	return true
}

// domainMatches 检查域名是否匹配（支持子域名）
func domainMatches(cookieDomain, host string) bool {
	if cookieDomain == "" {
		return true
	}
	return host == cookieDomain || strings.HasSuffix(host, "."+cookieDomain)
}

// pathMatches 检查路径是否匹配
func pathMatches(cookiePath, urlPath string) bool {
	if cookiePath == "" || cookiePath == "/" {
		return true
	}
	if !strings.HasPrefix(cookiePath, "/") {
		cookiePath = "/" + cookiePath
	}
	if urlPath == "" {
		urlPath = "/"
	}
	return strings.HasPrefix(urlPath, cookiePath)
}
