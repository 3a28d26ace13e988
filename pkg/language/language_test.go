package language

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetect(t *testing.T) {
	tests := map[string]string{
		"index.js":         "javascript",
		"src/App.TSX":      "typescript",
		"main.py":          "python",
		"Main.java":        "java",
		"README":           Plaintext,
		"notes.unknownext": Plaintext,
		"trailing.":        Plaintext,
	}
	for name, want := range tests {
		assert.Equal(t, want, Detect(name), name)
	}
}

func TestExtension(t *testing.T) {
	assert.Equal(t, "js", Extension("a/b/index.JS"))
	assert.Equal(t, "gz", Extension("bundle.tar.gz"))
	assert.Equal(t, "", Extension("Makefile"))
}

func TestPlaceholder(t *testing.T) {
	js := Placeholder("src/app.js")
	assert.True(t, strings.HasPrefix(js, "// src/app.js\n"))
	assert.Contains(t, js, `console.log("Hello from CodeCollab!");`)

	py := Placeholder("main.py")
	assert.Equal(t, "# main.py\nprint(\"Hello from CodeCollab!\")\n", py)

	java := Placeholder("src/hello.java")
	assert.Contains(t, java, "public class Hello {")

	assert.Contains(t, Placeholder("index.html"), "<h1>Hello from CodeCollab!</h1>")
	assert.Equal(t, "# notes.txt\nCreated with CodeCollab\n", Placeholder("notes.txt"))

	for _, p := range []string{"a.js", "a.py", "A.java", "a.html", "a"} {
		assert.NotEmpty(t, Placeholder(p), p)
	}
}

func TestClassName(t *testing.T) {
	assert.Equal(t, "Main", ClassName("main.java"))
	assert.Equal(t, "MyApp", ClassName("pkg/MyApp.java"))
	assert.Equal(t, "Main", ClassName(".java"))
}
