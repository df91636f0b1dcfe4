// Utilities for importing browser cookies.
package shared

import (
	"fmt"
	"os"
	"regexp"
	"strings"
)

const netscapeHeader = "# Netscape HTTP Cookie File"

var (
	curlCookieFlag   = regexp.MustCompile(`(?:-b|--cookie)\s+(?:'([^']+)'|"([^"]+)")`)
	curlHeaderFlag   = regexp.MustCompile(`(?:-H|--header)\s+(?:'([^']+)'|"([^"]+)")`)
	curlURLCandidate = regexp.MustCompile(`https?://[^\s'"]+`)
)

// CurlCookies holds the cookie header and target host extracted from a cURL command.
type CurlCookies struct {
	Header string
	Host   string
}

// ParseCurlFile reads a .sh file containing a cURL command and extracts its cookies.
func ParseCurlFile(path string) (*CurlCookies, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read curl file: %w", err)
	}

	return ParseCurlCommand(string(content))
}

// ParseCurlCommand extracts the cookie header from a browser "Copy as cURL" command.
//
// A -b/--cookie flag wins over a "cookie:" header.
func ParseCurlCommand(cmd string) (*CurlCookies, error) {
	cmd = strings.ReplaceAll(cmd, "\\\n", " ")

	var cookie string
	if m := curlCookieFlag.FindStringSubmatch(cmd); m != nil {
		cookie = firstNonEmpty(m[1], m[2])
	}

	if cookie == "" {
		for _, m := range curlHeaderFlag.FindAllStringSubmatch(cmd, -1) {
			name, value, ok := strings.Cut(firstNonEmpty(m[1], m[2]), ":")
			if ok && strings.EqualFold(strings.TrimSpace(name), "cookie") {
				cookie = strings.TrimSpace(value)
				break
			}
		}
	}

	if cookie == "" {
		return nil, fmt.Errorf("%w in curl command", ErrNoCookies)
	}

	result := &CurlCookies{Header: cookie}
	if u := curlURLCandidate.FindString(cmd); u != "" {
		host := strings.TrimPrefix(strings.TrimPrefix(u, "https://"), "http://")
		host, _, _ = strings.Cut(host, "/")
		result.Host = host
	}

	return result, nil
}

// ToNetscape converts the cookie header into cookies.txt lines scoped to the parent domain of Host.
//
// The backend hands the stored cookie string to its extractor as a cookie file, which expects this format.
func (c *CurlCookies) ToNetscape() string {
	domain := cookieDomain(c.Host)

	lines := []string{netscapeHeader, ""}
	for _, pair := range strings.Split(c.Header, ";") {
		name, value, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if !ok || name == "" {
			continue
		}
		lines = append(lines, strings.Join([]string{domain, "TRUE", "/", "TRUE", "0", name, value}, "\t"))
	}

	return strings.Join(lines, "\n") + "\n"
}

// IsNetscapeCookies reports whether content already looks like a cookies.txt file.
func IsNetscapeCookies(content string) bool {
	trimmed := strings.TrimSpace(content)
	if strings.HasPrefix(trimmed, "# Netscape") || strings.HasPrefix(trimmed, "# HTTP Cookie File") {
		return true
	}
	first, _, _ := strings.Cut(trimmed, "\n")
	return strings.Count(first, "\t") == 6
}

func cookieDomain(host string) string {
	host, _, _ = strings.Cut(host, ":")
	if host == "" {
		return ".youtube.com"
	}
	parts := strings.Split(host, ".")
	if len(parts) >= 2 {
		return "." + strings.Join(parts[len(parts)-2:], ".")
	}
	return host
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
