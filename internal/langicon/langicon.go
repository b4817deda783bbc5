// Package langicon maps a language name or file name to an icon URL for the
// status projection. Static data, no logic beyond the extension fallback.
package langicon

import (
	"path/filepath"
	"strings"
)

const iconBaseURL = "https://raw.githubusercontent.com/PowerPCFan/vscode-status-api/refs/heads/master/assets/icons/"

const defaultIcon = "vscode"

// byLanguage maps editor language identifiers to icon names.
var byLanguage = map[string]string{
	"c":               "c",
	"cpp":             "cpp",
	"csharp":          "csharp",
	"css":             "css",
	"dockerfile":      "docker",
	"go":              "go",
	"html":            "html",
	"java":            "java",
	"javascript":      "javascript",
	"javascriptreact": "react",
	"json":            "json",
	"jsonc":           "json",
	"kotlin":          "kotlin",
	"lua":             "lua",
	"markdown":        "markdown",
	"php":             "php",
	"python":          "python",
	"ruby":            "ruby",
	"rust":            "rust",
	"shellscript":     "bash",
	"sql":             "sql",
	"swift":           "swift",
	"typescript":      "typescript",
	"typescriptreact": "react",
	"vue":             "vue",
	"xml":             "xml",
	"yaml":            "yaml",
}

// byExtension is the fallback for languages the editor reports generically.
var byExtension = map[string]string{
	".c":          "c",
	".cc":         "cpp",
	".cpp":        "cpp",
	".cs":         "csharp",
	".css":        "css",
	".go":         "go",
	".h":          "c",
	".hpp":        "cpp",
	".html":       "html",
	".java":       "java",
	".js":         "javascript",
	".json":       "json",
	".jsx":        "react",
	".kt":         "kotlin",
	".lua":        "lua",
	".md":         "markdown",
	".php":        "php",
	".py":         "python",
	".rb":         "ruby",
	".rs":         "rust",
	".sh":         "bash",
	".sql":        "sql",
	".swift":      "swift",
	".ts":         "typescript",
	".tsx":        "react",
	".vue":        "vue",
	".xml":        "xml",
	".yaml":       "yaml",
	".yml":        "yaml",
	"dockerfile":  "docker",
	"makefile":    "makefile",
	"go.mod":      "go",
	"go.sum":      "go",
}

// URL returns the icon URL for the given language, falling back to the file
// extension and finally to the generic editor icon.
func URL(language, fileName string) string {
	if icon, ok := byLanguage[strings.ToLower(language)]; ok {
		return iconBaseURL + icon + ".png"
	}

	lower := strings.ToLower(fileName)
	if icon, ok := byExtension[lower]; ok {
		return iconBaseURL + icon + ".png"
	}
	if icon, ok := byExtension[filepath.Ext(lower)]; ok {
		return iconBaseURL + icon + ".png"
	}

	return iconBaseURL + defaultIcon + ".png"
}
