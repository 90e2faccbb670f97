package testutil

import (
	"errors"
	"fmt"
	"os"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/mfasDa/alice-fast-simulation/internal/shell"
)

var errNoSuchFile = errors.New("exit status 1")

const scheme = "alien://"

func plain(p string) string { return strings.TrimPrefix(p, scheme) }

// MemoryGrid is an in-memory grid file system answering the alien_* commands.
// Tests drive it through a FakeRunner.
type MemoryGrid struct {
	mu        sync.Mutex
	files     map[string][]byte
	dirs      map[string]bool
	Submitted []string

	// SubmitTool is the command accepted as job submission.
	SubmitTool string

	// FailUploads makes the next n uploads silently not land.
	FailUploads int
}

// NewMemoryGrid creates an empty grid.
func NewMemoryGrid() *MemoryGrid {
	return &MemoryGrid{files: map[string][]byte{}, dirs: map[string]bool{"/": true}, SubmitTool: "alien_submit"}
}

// Runner returns a FakeRunner backed by g.
func (g *MemoryGrid) Runner() *FakeRunner {
	return &FakeRunner{Handler: g.Handle}
}

// Put stores a file and its parent directories.
func (g *MemoryGrid) Put(p string, content []byte) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.put(p, content)
}

// Mkdir creates a directory and its parents.
func (g *MemoryGrid) Mkdir(p string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.mkdir(p)
}

// File returns a stored file.
func (g *MemoryGrid) File(p string) ([]byte, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	c, ok := g.files[path.Clean(p)]
	return c, ok
}

// Handle answers one command.
func (g *MemoryGrid) Handle(cmd shell.Command) shell.Result {
	g.mu.Lock()
	defer g.mu.Unlock()

	switch cmd.Bin {
	case "alien_ls":
		return g.ls(plain(cmd.Args[0]))
	case "alien_mkdir":
		g.mkdir(plain(cmd.Args[len(cmd.Args)-1]))
		return shell.Result{}
	case "alien_rm":
		p := path.Clean(plain(cmd.Args[0]))
		if _, ok := g.files[p]; !ok {
			return shell.Result{Err: errNoSuchFile}
		}
		delete(g.files, p)
		return shell.Result{}
	case "alien_rmdir":
		g.rmdir(path.Clean(plain(cmd.Args[0])))
		return shell.Result{}
	case "alien_cp":
		return g.cp(cmd.Args[0], cmd.Args[1])
	case "alien_find":
		return g.find(cmd.Args[1], plain(cmd.Args[2]), cmd.Args[3])
	case g.SubmitTool:
		g.Submitted = append(g.Submitted, plain(cmd.Args[0]))
		return shell.Result{Stdout: fmt.Sprintf("Your job was submitted with ID %d\n", 1000+len(g.Submitted))}
	}
	return shell.Result{}
}

func (g *MemoryGrid) put(p string, content []byte) {
	p = path.Clean(p)
	g.files[p] = append([]byte(nil), content...)
	g.mkdir(path.Dir(p))
}

func (g *MemoryGrid) mkdir(p string) {
	for p = path.Clean(p); p != "/" && p != "."; p = path.Dir(p) {
		g.dirs[p] = true
	}
}

func (g *MemoryGrid) rmdir(p string) {
	prefix := p + "/"
	for f := range g.files {
		if strings.HasPrefix(f, prefix) {
			delete(g.files, f)
		}
	}
	for d := range g.dirs {
		if d == p || strings.HasPrefix(d, prefix) {
			delete(g.dirs, d)
		}
	}
}

func (g *MemoryGrid) ls(p string) shell.Result {
	p = path.Clean(p)
	var names []string
	switch {
	case strings.ContainsAny(path.Base(p), "*?["):
		for f := range g.files {
			if ok, _ := path.Match(p, f); ok {
				names = append(names, path.Base(f))
			}
		}
		if len(names) == 0 {
			return shell.Result{Err: errNoSuchFile}
		}
	case g.dirs[p]:
		for f := range g.files {
			if path.Dir(f) == p {
				names = append(names, path.Base(f))
			}
		}
		for d := range g.dirs {
			if path.Dir(d) == p && d != p {
				names = append(names, path.Base(d)+"/")
			}
		}
	default:
		if _, ok := g.files[p]; !ok {
			return shell.Result{Err: errNoSuchFile}
		}
		names = append(names, path.Base(p))
	}
	sort.Strings(names)
	out := strings.Join(names, "\n")
	if out != "" {
		out += "\n"
	}
	return shell.Result{Stdout: out}
}

func (g *MemoryGrid) cp(src, dst string) shell.Result {
	switch {
	case strings.HasPrefix(dst, scheme):
		data, err := os.ReadFile(src)
		if err != nil {
			return shell.Result{Err: err}
		}
		if g.FailUploads > 0 {
			g.FailUploads--
			return shell.Result{Stderr: "upload failed\n", Err: errNoSuchFile}
		}
		g.put(plain(dst), data)
	case strings.HasPrefix(src, scheme):
		data, ok := g.files[path.Clean(plain(src))]
		if !ok {
			return shell.Result{Err: errNoSuchFile}
		}
		if err := os.WriteFile(dst, data, 0o644); err != nil {
			return shell.Result{Err: err}
		}
	}
	return shell.Result{}
}

func (g *MemoryGrid) find(xmlName, dir, pattern string) shell.Result {
	dir = path.Clean(dir)
	var matches []string
	for f := range g.files {
		rel := strings.TrimPrefix(f, dir+"/")
		if rel == f {
			continue
		}
		if ok, _ := path.Match(pattern, rel); ok {
			matches = append(matches, f)
		}
	}
	sort.Strings(matches)
	var b strings.Builder
	fmt.Fprintf(&b, "<?xml version=\"1.0\"?>\n<alien>\n  <collection name=\"%s\">\n", xmlName)
	for i, m := range matches {
		fmt.Fprintf(&b, "    <event name=\"%d\">\n      <file lfn=\"%s\" />\n    </event>\n", i+1, m)
	}
	b.WriteString("  </collection>\n</alien>\n")
	return shell.Result{Stdout: b.String()}
}
