// Package language maps file names to editor language ids and produces
// starter contents for files that have none.
package language

import (
	"fmt"
	"path"
	"strings"

	"golang.org/x/text/cases"
	xlang "golang.org/x/text/language"
)

// Plaintext is returned for unknown extensions.
const Plaintext = "plaintext"

var byExtension = map[string]string{
	"c":     "c",
	"cc":    "cpp",
	"cpp":   "cpp",
	"cs":    "csharp",
	"css":   "css",
	"go":    "go",
	"h":     "c",
	"hpp":   "cpp",
	"htm":   "html",
	"html":  "html",
	"java":  "java",
	"js":    "javascript",
	"json":  "json",
	"jsx":   "javascript",
	"kt":    "kotlin",
	"md":    "markdown",
	"mjs":   "javascript",
	"php":   "php",
	"py":    "python",
	"rb":    "ruby",
	"rs":    "rust",
	"scss":  "scss",
	"sh":    "shell",
	"sql":   "sql",
	"swift": "swift",
	"toml":  "toml",
	"ts":    "typescript",
	"tsx":   "typescript",
	"txt":   Plaintext,
	"xml":   "xml",
	"yaml":  "yaml",
	"yml":   "yaml",
}

// Extension returns the lower-cased text after the last dot of the base
// name, or "" when there is none.
func Extension(name string) string {
	base := path.Base(name)
	i := strings.LastIndex(base, ".")
	if i < 0 || i == len(base)-1 {
		return ""
	}
	return strings.ToLower(base[i+1:])
}

// Detect returns the editor language id for a file name.
func Detect(name string) string {
	if lang, ok := byExtension[Extension(name)]; ok {
		return lang
	}
	return Plaintext
}

// Placeholder returns starter content for a file that has none. The path is
// echoed into a leading comment.
func Placeholder(filePath string) string {
	switch Extension(filePath) {
	case "js":
		return fmt.Sprintf("// %s\nconsole.log(\"Hello from CodeCollab!\");\n", filePath)
	case "py":
		return fmt.Sprintf("# %s\nprint(\"Hello from CodeCollab!\")\n", filePath)
	case "java":
		return fmt.Sprintf("// %s\npublic class %s {\n    public static void main(String[] args) {\n        System.out.println(\"Hello from CodeCollab!\");\n    }\n}\n",
			filePath, ClassName(filePath))
	case "html":
		return "<!DOCTYPE html>\n<html>\n<head>\n    <title>CodeCollab</title>\n</head>\n<body>\n    <h1>Hello from CodeCollab!</h1>\n</body>\n</html>\n"
	default:
		return fmt.Sprintf("# %s\nCreated with CodeCollab\n", filePath)
	}
}

// ClassName derives a Java class name from a file path: the base name up to
// its first dot, with the first letter upper-cased. Characters that cannot
// appear in an identifier become underscores.
func ClassName(filePath string) string {
	base := path.Base(filePath)
	if i := strings.Index(base, "."); i >= 0 {
		base = base[:i]
	}
	var b strings.Builder
	for _, r := range base {
		switch {
		case r == '_' || r == '$' || ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z') || ('0' <= r && r <= '9'):
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	name := b.String()
	if name == "" {
		return "Main"
	}
	if name[0] >= '0' && name[0] <= '9' {
		name = "_" + name
	}
	return cases.Title(xlang.Und, cases.NoLower).String(name)
}
