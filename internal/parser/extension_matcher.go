package parser

import (
	"strings"
)

// extensionMatcher 根据文件扩展名判断提取器能否处理某个文件
// 只看文件名，不嗅探文件内容
type extensionMatcher struct {
	exts    map[string]struct{}
	ordered []string
}

func newExtensionMatcher(extensions ...string) extensionMatcher {
	m := extensionMatcher{exts: make(map[string]struct{}, len(extensions))}
	for _, ext := range extensions {
		ext = strings.ToLower(strings.TrimPrefix(ext, "."))
		if ext == "" {
			continue
		}
		if _, ok := m.exts[ext]; ok {
			continue
		}
		m.exts[ext] = struct{}{}
		m.ordered = append(m.ordered, ext)
	}
	return m
}

// CanHandle 取最后一个"."之后的部分并忽略大小写比较；空文件名或无扩展名返回false
func (m extensionMatcher) CanHandle(fileName string) bool {
	idx := strings.LastIndex(fileName, ".")
	if idx < 0 {
		return false
	}
	_, ok := m.exts[strings.ToLower(fileName[idx+1:])]
	return ok
}

// SupportedExtensions 返回支持的扩展名（不含"."）
func (m extensionMatcher) SupportedExtensions() []string {
	out := make([]string, len(m.ordered))
	copy(out, m.ordered)
	return out
}
