package utils

import (
	"regexp"
	"strings"
)

var (
	reCodeFence     = regexp.MustCompile("(?s)^```[a-zA-Z]*\\s*(.*?)\\s*```$")
	filenameReplace = strings.NewReplacer(
		"<", "_", ">", "_", ":", "_", `"`, "_",
		"/", "_", `\`, "_", "|", "_", "?", "_", "*", "_",
	)
)

// CollapseSpaces 合并连续空白为单个空格
func CollapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// SanitizeFilename 替换文件名中的非法字符 <>:"/\|?*
func SanitizeFilename(name string) string {
	return strings.TrimSpace(filenameReplace.Replace(name))
}

// StripCodeFence 去掉模型回复中包裹 JSON 的 ``` 代码块
func StripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if m := reCodeFence.FindStringSubmatch(s); m != nil {
		return m[1]
	}
	return s
}

// TruncateRunes 按字符截断
func TruncateRunes(s string, n int) string {
	if n < 0 {
		return s
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
