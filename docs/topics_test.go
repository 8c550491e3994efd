package docs

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Info strings of the fenced blocks played by TestCodeBlocks. A setup
// starts a scenario in a new directory, the output of the last run is
// compared to the next console check, and a failing bash check is reported
// without stopping the scenario.
const (
	bashSetup    = "bash setup"
	bashRun      = "bash run"
	consoleCheck = "console check"
	bashCheck    = "bash check"
)

func TestTopics(t *testing.T) {
	// Every topic listed in the index can be loaded, and every topic file is
	// listed in the index.
	topics, err := List()
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	if len(topics) == 0 {
		t.Fatal("List() returned no topic")
	}

	listed := make(map[string]bool)
	for _, topic := range topics {
		listed[topic.Name] = true
		t.Run("load_"+topic.Name, func(t *testing.T) {
			if topic.Description == "" {
				t.Errorf("topic %q has no description in %s.md", topic.Name, Index)
			}
			if _, err := GetTopic(topic.Name); err != nil {
				t.Errorf("failed to get topic %q: %v", topic.Name, err)
			}
		})
	}

	all, err := GetAllTopics()
	if err != nil {
		t.Fatalf("GetAllTopics() failed: %v", err)
	}
	for _, name := range all {
		if !listed[name] {
			t.Errorf("topic %q is not listed in %s.md", name, Index)
		}
	}
}

func TestGetTopics(t *testing.T) {
	auth, err := GetTopic("auth")
	if err != nil {
		t.Fatal(err)
	}
	both, err := GetTopics("auth", "errors")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(both, auth) {
		t.Errorf("GetTopics(auth, errors) does not start with the auth topic")
	}

	everything, err := GetTopic("*")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(everything, auth) {
		t.Errorf("GetTopic(*) does not contain the auth topic")
	}

	if _, err := GetTopic("nope"); err == nil {
		t.Errorf("GetTopic(nope) succeeded, want an error")
	}
}

func TestTopicsAreMarkdown(t *testing.T) {
	all, err := GetAllTopics()
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range append(all, Index) {
		content, err := GetTopic(name)
		if err != nil {
			t.Fatal(err)
		}
		root := goldmark.DefaultParser().Parse(text.NewReader([]byte(content)))
		h, ok := root.FirstChild().(*ast.Heading)
		if !ok || h.Level != 1 {
			t.Errorf("topic %q does not start with a title", name)
		}
	}
}

func TestCodeBlocks(t *testing.T) {
	files, err := filepath.Glob("*.md")
	if err != nil {
		t.Fatal(err)
	}

	// The binary outlives the subtests, it is built by the first one needing it.
	binDir := t.TempDir()
	var bin string
	for _, file := range files {
		t.Run(file, func(t *testing.T) {
			script := readFences(t, file)
			if len(script) == 0 {
				return
			}
			if bin == "" {
				bin = buildAurora(t, binDir)
			}
			s := &scenario{
				env: append(os.Environ(), "PATH="+filepath.Dir(bin)+string(os.PathListSeparator)+os.Getenv("PATH")),
				dir: t.TempDir(),
			}
			for _, f := range script {
				s.play(t, f)
			}
		})
	}
}

// fence is a playable code block of a topic.
type fence struct {
	info string
	body string
	pos  string // file:line of the opening fence
}

// readFences returns the playable code blocks of file, in order.
func readFences(t *testing.T, file string) []fence {
	t.Helper()
	src, err := os.ReadFile(file)
	if err != nil {
		t.Fatal(err)
	}

	var script []fence
	root := goldmark.DefaultParser().Parse(text.NewReader(src))
	ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		code, ok := n.(*ast.FencedCodeBlock)
		if !entering || !ok || code.Info == nil {
			return ast.WalkContinue, nil
		}
		info := string(code.Info.Segment.Value(src))
		switch info {
		case bashSetup, bashRun, bashCheck, consoleCheck:
		default:
			return ast.WalkSkipChildren, nil
		}
		var body bytes.Buffer
		lines := code.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			body.Write(seg.Value(src))
		}
		// goldmark nodes carry offsets only.
		line := 1 + bytes.Count(src[:code.Info.Segment.Start], []byte("\n"))
		script = append(script, fence{info: info, body: body.String(), pos: fmt.Sprintf("%s:%d", file, line)})
		return ast.WalkSkipChildren, nil
	})
	return script
}

// buildAurora compiles the aurora command into dir.
func buildAurora(t *testing.T, dir string) string {
	t.Helper()
	bin := filepath.Join(dir, "aurora")
	if out, err := exec.Command("go", "build", "-o", bin, "../aurora/").CombinedOutput(); err != nil {
		t.Fatalf("cannot build aurora: %v\n%s", err, out)
	}
	return bin
}

// scenario plays the fences of one topic against the aurora binary.
type scenario struct {
	env  []string
	dir  string
	last string // output of the last bash run
}

func (s *scenario) play(t *testing.T, f fence) {
	t.Helper()
	if f.info == consoleCheck {
		want := strings.TrimSpace(f.body)
		got := strings.ReplaceAll(strings.TrimSpace(s.last), "\t", "        ")
		if got != want {
			t.Errorf("%s: the last run printed\n\n%s\n\ninstead of\n\n%s\n\n(%q != %q)", f.pos, got, want, got, want)
		}
		return
	}

	if f.info == bashSetup {
		s.dir = t.TempDir()
	}
	sh := exec.Command("bash", "-c", "set -e; "+f.body)
	sh.Dir, sh.Env = s.dir, s.env
	out, err := sh.CombinedOutput()
	if f.info == bashRun {
		s.last = string(out)
	}
	switch {
	case err == nil:
	case f.info == bashCheck:
		t.Errorf("%s: check failed: %v\n%s", f.pos, err, out)
	default:
		t.Fatalf("%s: %s failed: %v\n%s", f.pos, f.info, err, out)
	}
}
