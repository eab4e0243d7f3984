package tui

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/wishboard/internal/fetch"
	"github.com/rshade/wishboard/internal/render"
	"github.com/rshade/wishboard/internal/widget"
	"github.com/rshade/wishboard/internal/wish"
)

type listFetcher struct {
	lists []wish.List
	calls int
}

func (f *listFetcher) Fetch(context.Context) (fetch.Result, error) {
	i := min(f.calls, len(f.lists)-1)
	f.calls++
	return fetch.Result{OK: true, Wishes: f.lists[i]}, nil
}

func makeWishes(n int) wish.List {
	out := make(wish.List, n)
	for i := range out {
		out[i] = wish.Wish{Name: fmt.Sprintf("guest-%02d", i), Message: fmt.Sprintf("msg-%02d", i)}
	}
	return out
}

func newRenderer(t *testing.T, locale string) *render.Renderer {
	t.Helper()
	r, err := render.New(render.Options{Locale: locale})
	require.NoError(t, err)
	return r
}

func newWidget(t *testing.T, r *render.Renderer, lists ...wish.List) *widget.Controller {
	t.Helper()
	c, err := widget.New(widget.Options{
		Fetcher:  &listFetcher{lists: lists},
		Renderer: r,
		Document: widget.NewMemoryDocument("wishes-container", "wishes-pagination"),
	})
	require.NoError(t, err)
	return c
}

// run executes cmd and feeds the load and refresh results back into m.
// Spinner and tick messages are dropped so nothing reschedules.
func run(t *testing.T, m BrowseModel, cmd tea.Cmd) BrowseModel {
	t.Helper()
	if cmd == nil {
		return m
	}
	msgs := []tea.Msg{cmd()}
	if batch, ok := msgs[0].(tea.BatchMsg); ok {
		msgs = msgs[:0]
		for _, c := range batch {
			if c != nil {
				msgs = append(msgs, c())
			}
		}
	}
	for _, msg := range msgs {
		switch msg.(type) {
		case LoadedMsg, RefreshedMsg:
			next, _ := m.Update(msg)
			m = next.(BrowseModel)
		}
	}
	return m
}

func keyPress(s string) tea.KeyMsg {
	switch s {
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func press(m BrowseModel, s string) (BrowseModel, tea.Cmd) {
	next, cmd := m.Update(keyPress(s))
	return next.(BrowseModel), cmd
}

func TestBrowse_InitLoads(t *testing.T) {
	r := newRenderer(t, "en")
	w := newWidget(t, r, makeWishes(23))
	m := NewBrowseModel(context.Background(), w, r, time.Minute)
	assert.True(t, m.Loading())

	m = run(t, m, m.Init())

	assert.False(t, m.Loading())
	assert.Equal(t, widget.StateReady, m.Snapshot().State)
	view := m.View()
	assert.Contains(t, view, "guest-00")
	assert.Contains(t, view, "Page 1 of 3")
}

func TestBrowse_Navigation(t *testing.T) {
	r := newRenderer(t, "en")
	w := newWidget(t, r, makeWishes(23))
	m := NewBrowseModel(context.Background(), w, r, time.Minute)
	m = run(t, m, m.Init())

	m, _ = press(m, "right")
	assert.Equal(t, 2, m.Snapshot().Meta.CurrentPage)
	assert.Contains(t, m.View(), "guest-10")

	m, _ = press(m, "l")
	assert.Equal(t, 3, m.Snapshot().Meta.CurrentPage)
	m, _ = press(m, "l")
	assert.Equal(t, 3, m.Snapshot().Meta.CurrentPage, "next at last page")

	m, _ = press(m, "1")
	assert.Equal(t, 1, m.Snapshot().Meta.CurrentPage)
	m, _ = press(m, "9")
	assert.Equal(t, 1, m.Snapshot().Meta.CurrentPage, "page out of range")

	m, _ = press(m, "h")
	assert.Equal(t, 1, m.Snapshot().Meta.CurrentPage, "prev at first page")
	m, _ = press(m, "3")
	m, _ = press(m, "left")
	assert.Equal(t, 2, m.Snapshot().Meta.CurrentPage)
}

func TestBrowse_RefreshKey(t *testing.T) {
	r := newRenderer(t, "en")
	w := newWidget(t, r, makeWishes(2), makeWishes(15))
	m := NewBrowseModel(context.Background(), w, r, time.Minute)
	m = run(t, m, m.Init())
	require.Equal(t, 1, m.Snapshot().Meta.TotalPages)

	m, cmd := press(m, "r")
	require.True(t, m.Loading())
	assert.Contains(t, m.View(), "Loading wishes...")

	m, cmd2 := press(m, "r")
	assert.Nil(t, cmd2, "no second refresh while loading")

	m = run(t, m, cmd)
	assert.False(t, m.Loading())
	assert.Equal(t, 2, m.Snapshot().Meta.TotalPages)
}

func TestBrowse_TickRefreshes(t *testing.T) {
	r := newRenderer(t, "en")
	w := newWidget(t, r, makeWishes(2), makeWishes(3))
	m := NewBrowseModel(context.Background(), w, r, time.Minute)
	m = run(t, m, m.Init())

	next, cmd := m.Update(TickMsg(time.Now()))
	m = next.(BrowseModel)
	require.True(t, m.Loading())

	m = run(t, m, cmd)
	assert.Len(t, m.Snapshot().Page, 3)
}

// refreshed runs cmd and returns the RefreshedMsg it produces.
func refreshed(t *testing.T, cmd tea.Cmd) RefreshedMsg {
	t.Helper()
	require.NotNil(t, cmd)
	batch, ok := cmd().(tea.BatchMsg)
	require.True(t, ok)
	for _, c := range batch {
		if c == nil {
			continue
		}
		if msg, ok := c().(RefreshedMsg); ok {
			return msg
		}
	}
	require.FailNow(t, "no refresh in batch")
	return RefreshedMsg{}
}

func TestBrowse_ManualRefreshKeepsOneTickChain(t *testing.T) {
	r := newRenderer(t, "en")
	w := newWidget(t, r, makeWishes(2), makeWishes(4), makeWishes(6))
	m := NewBrowseModel(context.Background(), w, r, time.Minute)
	require.NoError(t, w.Init(context.Background()))

	next, tick := m.Update(LoadedMsg{})
	m = next.(BrowseModel)
	require.NotNil(t, tick, "first load starts the tick chain")

	m, cmd := press(m, "r")
	msg := refreshed(t, cmd)
	assert.True(t, msg.Manual)
	next, rearm := m.Update(msg)
	m = next.(BrowseModel)
	assert.Nil(t, rearm, "manual refresh does not start another tick")

	next, cmd = m.Update(TickMsg(time.Now()))
	m = next.(BrowseModel)
	msg = refreshed(t, cmd)
	assert.False(t, msg.Manual)
	next, rearm = m.Update(msg)
	assert.NotNil(t, rearm, "periodic refresh schedules the next tick")
	assert.Len(t, next.(BrowseModel).Snapshot().Page, 6)
}

func TestBrowse_Quit(t *testing.T) {
	r := newRenderer(t, "en")
	w := newWidget(t, r, makeWishes(1))
	m := NewBrowseModel(context.Background(), w, r, time.Minute)

	m, cmd := press(m, "q")
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Empty(t, m.View())
}

func TestBrowse_WindowSize(t *testing.T) {
	r := newRenderer(t, "en")
	m := NewBrowseModel(context.Background(), newWidget(t, r, makeWishes(1)), r, time.Minute)

	next, cmd := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	assert.Nil(t, cmd)
	assert.Equal(t, 120, next.(BrowseModel).width)
}

type failingFetcher struct{ err error }

func (f failingFetcher) Fetch(context.Context) (fetch.Result, error) {
	if f.err != nil {
		return fetch.Result{}, f.err
	}
	return fetch.Result{OK: false}, nil
}

func TestRenderText_States(t *testing.T) {
	r := newRenderer(t, "vi")

	tests := []struct {
		name string
		view View
		want string
	}{
		{
			name: "uninitialized",
			view: View{Snapshot: widget.Snapshot{State: widget.StateUninitialized}},
			want: "Đang tải lời chúc...",
		},
		{
			name: "empty",
			view: View{Snapshot: widget.Snapshot{State: widget.StateReady}},
			want: "Chưa có lời chúc nào",
		},
		{
			name: "transport error",
			view: View{
				Snapshot: widget.Snapshot{State: widget.StateError},
				Err:      &fetch.FetchError{Reason: fetch.ReasonTimeout, Err: fetch.ErrTimeout},
			},
			want: "Đã có lỗi xảy ra khi tải lời chúc.",
		},
		{
			name: "malformed",
			view: View{Snapshot: widget.Snapshot{State: widget.StateError}, Err: widget.ErrMalformed},
			want: "Không thể tải lời chúc.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := RenderText(r, tt.view)
			assert.Contains(t, out, tt.want)
			assert.Contains(t, out, "Lời chúc")
		})
	}
}

func TestRenderText_FromWidgetErrors(t *testing.T) {
	r := newRenderer(t, "en")
	for name, f := range map[string]widget.Fetcher{
		"malformed": failingFetcher{},
		"transport": failingFetcher{err: errors.New("boom")},
	} {
		t.Run(name, func(t *testing.T) {
			c, err := widget.New(widget.Options{
				Fetcher:  f,
				Renderer: r,
				Document: widget.NewMemoryDocument("wishes-container"),
			})
			require.NoError(t, err)
			require.NoError(t, c.Init(context.Background()))

			out := RenderText(r, View{Snapshot: c.Snapshot(), Err: c.LastError()})
			if name == "malformed" {
				assert.Contains(t, out, "Could not load wishes.")
			} else {
				assert.Contains(t, out, "Something went wrong while loading wishes.")
			}
		})
	}
}

func TestRenderText_Page(t *testing.T) {
	r := newRenderer(t, "en")
	w := newWidget(t, r, makeWishes(23))
	require.NoError(t, w.Init(context.Background()))
	require.True(t, w.GoTo(context.Background(), 3))

	out := RenderText(r, View{Snapshot: w.Snapshot(), Width: 60})
	assert.Contains(t, out, "guest-20")
	assert.Contains(t, out, "msg-22")
	assert.NotContains(t, out, "guest-19")
	assert.Contains(t, out, "Page 3 of 3")
}

func TestRenderText_SinglePageHasNoPager(t *testing.T) {
	r := newRenderer(t, "en")
	w := newWidget(t, r, makeWishes(3))
	require.NoError(t, w.Init(context.Background()))

	out := RenderText(r, View{Snapshot: w.Snapshot()})
	assert.NotContains(t, out, "Page 1 of 1")
}

func TestPageKey(t *testing.T) {
	n, ok := pageKey("7")
	assert.True(t, ok)
	assert.Equal(t, 7, n)

	for _, s := range []string{"0", "a", "10", ""} {
		_, ok := pageKey(s)
		assert.False(t, ok, s)
	}
}
