package pages

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"testing/fstest"
	"time"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func staticPage(body string) Page {
	return PageFunc(func(RenderContext) templ.Component {
		return templ.Raw(body)
	})
}

func render(t *testing.T, p Page, rc RenderContext) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, p.Render(rc).Render(context.Background(), &buf))
	return buf.String()
}

func TestRegistry_ResolveUnknown(t *testing.T) {
	reg := NewRegistry(RegistryConfig{})

	_, err := reg.Resolve("missing")
	assert.ErrorIs(t, err, ErrPageNotFound)
}

func TestRegistry_PreloadMemoized(t *testing.T) {
	var calls atomic.Int32
	reg := NewRegistry(RegistryConfig{})
	reg.Register("home", func(context.Context) (Page, error) {
		calls.Add(1)
		return staticPage("<p>home</p>"), nil
	})

	h, err := reg.Resolve("home")
	require.NoError(t, err)
	assert.False(t, h.Loaded())

	for i := 0; i < 3; i++ {
		p, err := h.Preload(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "<p>home</p>", render(t, p, RenderContext{}))
	}
	assert.True(t, h.Loaded())
	assert.Equal(t, int32(1), calls.Load())
}

func TestRegistry_ConcurrentPreloadSharesLoad(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})
	reg := NewRegistry(RegistryConfig{})
	reg.Register("slow", func(context.Context) (Page, error) {
		calls.Add(1)
		<-release
		return staticPage("slow"), nil
	})
	h, err := reg.Resolve("slow")
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make(chan error, 5)
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := h.Preload(context.Background())
			errs <- err
		}()
	}

	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, int32(1), calls.Load())
}

func TestRegistry_PreloadTimeout(t *testing.T) {
	var observed error
	reg := NewRegistry(RegistryConfig{
		Timeout: 20 * time.Millisecond,
		Observer: func(key string, _ time.Duration, err error) {
			observed = err
		},
	})
	block := make(chan struct{})
	defer close(block)
	reg.Register("stuck", func(ctx context.Context) (Page, error) {
		select {
		case <-block:
		case <-ctx.Done():
		}
		return nil, errors.New("gave up")
	})

	h, err := reg.Resolve("stuck")
	require.NoError(t, err)

	_, err = h.Preload(context.Background())
	require.Error(t, err)
	assert.False(t, h.Loaded())
	assert.Equal(t, err, observed)
}

func TestRegistry_PreloadCancelled(t *testing.T) {
	reg := NewRegistry(RegistryConfig{Timeout: time.Second})
	reg.Register("wait", func(ctx context.Context) (Page, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})
	h, err := reg.Resolve("wait")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = h.Preload(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRegistry_FailedLoadIsRetried(t *testing.T) {
	var calls atomic.Int32
	reg := NewRegistry(RegistryConfig{})
	reg.Register("flaky", func(context.Context) (Page, error) {
		if calls.Add(1) == 1 {
			return nil, errors.New("boom")
		}
		return staticPage("ok"), nil
	})
	h, err := reg.Resolve("flaky")
	require.NoError(t, err)

	_, err = h.Preload(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")

	_, err = h.Preload(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestRegistry_RegisterDropsCachedPage(t *testing.T) {
	reg := NewRegistry(RegistryConfig{})
	reg.Register("p", func(context.Context) (Page, error) { return staticPage("v1"), nil })
	h, err := reg.Resolve("p")
	require.NoError(t, err)
	_, err = h.Preload(context.Background())
	require.NoError(t, err)

	reg.Register("p", func(context.Context) (Page, error) { return staticPage("v2"), nil })
	assert.False(t, h.Loaded())

	p, err := h.Preload(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "v2", render(t, p, RenderContext{}))
}

func TestRegistry_RegisterDuringLoadDiscardsResult(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	reg := NewRegistry(RegistryConfig{Timeout: 5 * time.Second})
	reg.Register("p", func(context.Context) (Page, error) {
		close(started)
		<-release
		return staticPage("old"), nil
	})
	h, err := reg.Resolve("p")
	require.NoError(t, err)

	done := make(chan Page, 1)
	go func() {
		p, err := h.Preload(context.Background())
		assert.NoError(t, err)
		done <- p
	}()
	<-started

	reg.Register("p", func(context.Context) (Page, error) { return staticPage("new"), nil })

	// a preload after the reload does not join the running load
	p, err := h.Preload(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "new", render(t, p, RenderContext{}))

	close(release)
	assert.Equal(t, "old", render(t, <-done, RenderContext{}), "the waiter gets the load it joined")

	p, err = h.Preload(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "new", render(t, p, RenderContext{}), "the replaced loader's result is not cached")
}

func TestRegisterBuiltins(t *testing.T) {
	reg := NewRegistry(RegistryConfig{})
	keys, err := RegisterBuiltins(reg)
	require.NoError(t, err)

	assert.Len(t, keys, 16)
	assert.Contains(t, reg.Keys(), "dashboard/workplace")
	assert.Contains(t, reg.Keys(), "exception/404")

	for _, key := range reg.Keys() {
		t.Run(key, func(t *testing.T) {
			h, err := reg.Resolve(key)
			require.NoError(t, err)
			p, err := h.Preload(context.Background())
			require.NoError(t, err)
			out := render(t, p, RenderContext{Key: key, Label: "Title"})
			assert.Contains(t, out, `data-page="`+key+`"`)
			assert.Contains(t, out, "<h1>Title</h1>")
		})
	}
}

func TestFixtureLoader(t *testing.T) {
	fsys := fstest.MapFS{
		"reports/weekly.yaml": {Data: []byte("kind: table\ncolumns: [A, B]\nrows:\n  - [\"1\", \"<b>2</b>\"]\n")},
		"broken/kind.yaml":    {Data: []byte("kind: carousel\n")},
		"broken/rows.yaml":    {Data: []byte("kind: table\ncolumns: [A]\nrows:\n  - [\"1\", \"2\"]\n")},
	}

	p, err := FixtureLoader(fsys, "reports/weekly")(context.Background())
	require.NoError(t, err)
	out := render(t, p, RenderContext{Key: "reports/weekly", Label: "Weekly"})
	assert.Contains(t, out, "<th>A</th>")
	assert.Contains(t, out, "&lt;b&gt;2&lt;/b&gt;", "cells are escaped")
	assert.Equal(t, KindTable, FixtureOf(p).Kind)

	_, err = FixtureLoader(fsys, "reports/missing")(context.Background())
	assert.ErrorIs(t, err, ErrPageNotFound)

	_, err = FixtureLoader(fsys, "broken/kind")(context.Background())
	assert.ErrorContains(t, err, "unknown page kind")

	_, err = FixtureLoader(fsys, "broken/rows")(context.Background())
	assert.ErrorContains(t, err, "row 0 has 2 cells")
}

func TestRenderWorkplace_Recent(t *testing.T) {
	reg := NewRegistry(RegistryConfig{})
	_, err := RegisterBuiltins(reg)
	require.NoError(t, err)
	h, err := reg.Resolve("dashboard/workplace")
	require.NoError(t, err)
	p, err := h.Preload(context.Background())
	require.NoError(t, err)

	empty := render(t, p, RenderContext{Key: "dashboard/workplace", Label: "Workplace"})
	assert.Contains(t, empty, "Nothing visited yet.")

	visited := render(t, p, RenderContext{
		Key:   "dashboard/workplace",
		Label: "Workplace",
		Recent: []Recent{
			{Key: "list/card", Label: "Card List", Href: "/list/card", VisitedAt: time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC)},
		},
	})
	assert.Contains(t, visited, `<a href="/list/card">Card List</a>`)
	assert.Contains(t, visited, `datetime="2024-03-02T10:00:00Z"`)
}

func TestRenderWorkplace_TranslatedHeadings(t *testing.T) {
	reg := NewRegistry(RegistryConfig{})
	_, err := RegisterBuiltins(reg)
	require.NoError(t, err)
	h, err := reg.Resolve("dashboard/workplace")
	require.NoError(t, err)
	p, err := h.Preload(context.Background())
	require.NoError(t, err)

	labels := map[string]string{
		"page.quickLinks":  "快捷入口",
		"page.recent":      "最近访问",
		"page.recentEmpty": "暂无访问记录",
	}
	out := render(t, p, RenderContext{
		Key:   "dashboard/workplace",
		Label: "工作台",
		Lookup: func(name string) string {
			if v, ok := labels[name]; ok {
				return v
			}
			return name
		},
	})
	assert.Contains(t, out, "<h2>快捷入口</h2>")
	assert.Contains(t, out, "<h2>最近访问</h2>")
	assert.Contains(t, out, "暂无访问记录")
	assert.NotContains(t, out, "Quick links")

	plain := render(t, p, RenderContext{Key: "dashboard/workplace", Label: "Workplace"})
	assert.Contains(t, plain, "<h2>Quick links</h2>", "missing labels fall back to English")
}

func TestFixturePath(t *testing.T) {
	assert.Equal(t, "dashboard/workplace.yaml", FixturePath("dashboard/workplace"))
	assert.Equal(t, "dashboard/workplace.yaml", FixturePath("/dashboard/workplace/"))
}
