package main

// Notes:
// - Shared test infrastructure: a recording converter, a pool around it, and
//   an Environment with buffered output and a fake process environment.
// No coverage gaps: this is test infrastructure, not production code.

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	mdocx "github.com/sfu-bigdata/go-mdocx"
)

// ---------------------------------------------------------------------------
// Mock Implementations - For unit testing
// ---------------------------------------------------------------------------

// errMockRender is returned for markdown containing "FAIL".
var errMockRender = fmt.Errorf("%w: mock equation failure", mdocx.ErrMathRender)

// mockConverter records inputs and returns a fixed package.
type mockConverter struct {
	mu     sync.Mutex
	inputs []mdocx.Input
}

func (m *mockConverter) Convert(ctx context.Context, in mdocx.Input) (*mdocx.ConvertResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	m.inputs = append(m.inputs, in)
	m.mu.Unlock()

	if strings.Contains(in.Markdown, "FAIL") {
		return nil, errMockRender
	}
	return &mdocx.ConvertResult{
		DOCX:     []byte("PK mock docx"),
		Commands: []mdocx.Command{mdocx.AddPageBreak{}},
	}, nil
}

// recorded returns the recorded inputs sorted by title.
func (m *mockConverter) recorded() []mdocx.Input {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := append([]mdocx.Input(nil), m.inputs...)
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out
}

// mockPool hands out one shared mock converter.
type mockPool struct {
	conv       *mockConverter
	size       int
	acquireErr error
	opts       []mdocx.Option

	mu       sync.Mutex
	acquired int
	released int
	closed   bool
}

func (p *mockPool) Acquire() (CLIConverter, error) {
	if p.acquireErr != nil {
		return nil, p.acquireErr
	}
	p.mu.Lock()
	p.acquired++
	p.mu.Unlock()
	return p.conv, nil
}

func (p *mockPool) Release(CLIConverter) {
	p.mu.Lock()
	p.released++
	p.mu.Unlock()
}

func (p *mockPool) Size() int { return p.size }

func (p *mockPool) Close() error {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
	return nil
}

// ---------------------------------------------------------------------------
// Test Environment
// ---------------------------------------------------------------------------

// testEnv is an Environment with captured output and fake variables.
type testEnv struct {
	*Environment
	stdout *bytes.Buffer
	stderr *bytes.Buffer
	vars   map[string]string
	pool   *mockPool
}

func newTestEnv(t *testing.T, vars map[string]string) *testEnv {
	t.Helper()
	if vars == nil {
		vars = map[string]string{}
	}
	te := &testEnv{
		stdout: &bytes.Buffer{},
		stderr: &bytes.Buffer{},
		vars:   vars,
		pool:   &mockPool{conv: &mockConverter{}},
	}
	te.Environment = &Environment{
		Now:    func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) },
		Stdout: te.stdout,
		Stderr: te.stderr,
		Getenv: func(k string) string { return vars[k] },
		Environ: func() []string {
			var kv []string
			for k, v := range vars {
				kv = append(kv, k+"="+v)
			}
			return kv
		},
		NewPool: func(size int, opts ...mdocx.Option) Pool {
			te.pool.size = size
			te.pool.opts = opts
			return te.pool
		},
	}
	return te
}

// withRealPool makes the environment build real converters whose equations
// render through stubMath.
func (te *testEnv) withRealPool() *testEnv {
	te.NewPool = func(size int, opts ...mdocx.Option) Pool {
		opts = append(opts, mdocx.WithMathRenderer(stubMath{}))
		return newConverterPool(size, opts...)
	}
	return te
}

// stubMath writes a small PNG for every expression.
type stubMath struct{}

func (stubMath) RenderMath(_ context.Context, _ string, outPath string) error {
	f, err := os.Create(outPath)
	if err != nil {
		return err
	}
	if err := png.Encode(f, image.NewGray(image.Rect(0, 0, 4, 2))); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// writeFile creates a file under dir and returns its path.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

// wantErr fails t unless errors.Is(got, want), or got is nil when want is nil.
func wantErr(t *testing.T, got, want error) {
	t.Helper()
	if want == nil {
		if got != nil {
			t.Fatalf("unexpected error: %v", got)
		}
		return
	}
	if !errors.Is(got, want) {
		t.Fatalf("error = %v, want %v", got, want)
	}
}
