package codeextract

import (
	"regexp"
	"strings"
)

// langExt maps a fence language tag to its default file extension. Unknown
// languages fall back to "txt".
var langExt = map[string]string{
	"python": "py", "py": "py",
	"javascript": "js", "js": "js",
	"typescript": "ts", "ts": "ts",
	"jsx": "jsx", "tsx": "tsx",
	"go": "go", "golang": "go",
	"rust": "rs", "rs": "rs",
	"java": "java",
	"c": "c", "cpp": "cpp", "c++": "cpp",
	"ruby": "rb", "rb": "rb",
	"shell": "sh", "bash": "sh", "sh": "sh",
	"sql": "sql",
	"yaml": "yaml", "yml": "yaml",
	"json": "json",
	"html": "html",
	"css": "css",
	"markdown": "md", "md": "md",
}

func extensionFor(lang string) string {
	if ext, ok := langExt[strings.ToLower(lang)]; ok {
		return ext
	}
	return "txt"
}

// withExtension returns path unchanged if it already carries a file
// extension, otherwise appends the extension derived from lang (manifest
// entries are allowed to omit the extension per spec §4.6 step 1).
func withExtension(path, lang string) string {
	base := path
	if idx := strings.LastIndexByte(path, '/'); idx >= 0 {
		base = path[idx+1:]
	}
	if strings.Contains(base, ".") {
		return path
	}
	return path + "." + extensionFor(lang)
}

var (
	pyClassRe = regexp.MustCompile(`(?m)^\s*class\s+([A-Za-z_][A-Za-z0-9_]*)`)
	pyDefRe   = regexp.MustCompile(`(?m)^\s*def\s+([A-Za-z_][A-Za-z0-9_]*)`)
	jsExportRe = regexp.MustCompile(`(?m)^\s*export\s+(?:default\s+)?(?:class|function)\s+([A-Za-z_$][A-Za-z0-9_$]*)`)
)

// inferNameFromContent guesses a base filename (without extension) from a
// code block's content: a Python class or top-level function name
// (CamelCase converted to snake_case), or an exported JS/TS class or
// function name. Returns "" if nothing recognizable is found.
func inferNameFromContent(lang, content string) string {
	switch strings.ToLower(lang) {
	case "python", "py":
		if m := pyClassRe.FindStringSubmatch(content); m != nil {
			return camelToSnake(m[1])
		}
		if m := pyDefRe.FindStringSubmatch(content); m != nil {
			return camelToSnake(m[1])
		}
	case "javascript", "js", "typescript", "ts", "jsx", "tsx":
		if m := jsExportRe.FindStringSubmatch(content); m != nil {
			return camelToSnake(m[1])
		}
	}
	return ""
}

func camelToSnake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r - 'A' + 'a')
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}
