// Package demo renders the tick in a terminal with a show/hide toggle. Showing
// the tick watches the tick query and merges the ticked subscription into it;
// hiding tears both down.
package demo

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/ganot/ticklink/internal/client"
	"github.com/ganot/ticklink/internal/graphql"
)

var (
	// TickQuery reads the current tick.
	TickQuery = graphql.Request{Query: "query Tick {\n  tick\n}", OperationName: "Tick"}

	// TickedSubscription streams the tick.
	TickedSubscription = graphql.Request{Query: "subscription Ticked {\n  ticked\n}", OperationName: "Ticked"}
)

// MergeTicked copies the subscription's ticked value into the tick field.
func MergeTicked(prev, subscriptionData map[string]any) map[string]any {
	merged := make(map[string]any, len(prev)+1)
	for k, v := range prev {
		merged[k] = v
	}
	merged["tick"] = subscriptionData["ticked"]
	return merged
}

// QueryWatcher starts watched queries.
type QueryWatcher interface {
	WatchQuery(ctx context.Context, req graphql.Request, policy client.FetchPolicy) (*client.QueryWatcher, error)
}

// App is the demo view.
type App struct {
	client QueryWatcher
	logger *slog.Logger

	outMu sync.Mutex
	out   io.Writer

	mu      sync.Mutex
	showing bool
	view    *tickView
}

type tickView struct {
	watcher  *client.QueryWatcher
	rendered chan struct{}
}

// New creates the app. The tick is shown once Start is called.
func New(c QueryWatcher, out io.Writer, logger *slog.Logger) *App {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &App{client: c, out: out, logger: logger, showing: true}
}

// Start prints the header and mounts the tick view.
func (a *App) Start(ctx context.Context) error {
	a.println("Tick demo")
	a.println("commands: t (toggle), q (quit)")

	a.mu.Lock()
	defer a.mu.Unlock()
	a.printButton()
	if !a.showing {
		return nil
	}
	return a.mount(ctx)
}

// Showing reports whether the tick view is mounted.
func (a *App) Showing() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.showing
}

// Toggle hides a visible tick or shows a hidden one.
func (a *App) Toggle(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.showing = !a.showing
	a.printButton()
	if a.showing {
		return a.mount(ctx)
	}
	a.unmount()
	return nil
}

// Stop unmounts the tick view.
func (a *App) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.unmount()
}

// Run starts the app and reads commands from input, one per line, until
// quit, end of input, or ctx is done.
func (a *App) Run(ctx context.Context, input io.Reader) error {
	if err := a.Start(ctx); err != nil {
		return err
	}
	defer a.Stop()

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(input)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			switch strings.ToLower(strings.TrimSpace(line)) {
			case "t", "toggle":
				if err := a.Toggle(ctx); err != nil {
					return err
				}
			case "q", "quit":
				return nil
			case "":
			default:
				a.println(fmt.Sprintf("unknown command %q", line))
			}
		}
	}
}

func (a *App) mount(ctx context.Context) error {
	w, err := a.client.WatchQuery(ctx, TickQuery, client.CacheFirst)
	if err != nil {
		return fmt.Errorf("watching tick: %w", err)
	}
	w.SubscribeToMore(client.SubscribeToMoreOptions{
		Request:     TickedSubscription,
		UpdateQuery: MergeTicked,
		OnError: func(err error) {
			a.println(fmt.Sprintf("error: %v", err))
		},
	})

	view := &tickView{watcher: w, rendered: make(chan struct{})}
	go func() {
		defer close(view.rendered)
		for data := range w.Updates() {
			a.println(fmt.Sprintf("tick: %v", data["tick"]))
		}
	}()
	a.view = view
	a.logger.Debug("tick view mounted")
	return nil
}

func (a *App) unmount() {
	if a.view == nil {
		return
	}
	a.view.watcher.Close()
	<-a.view.rendered
	a.view = nil
	a.logger.Debug("tick view unmounted")
}

func (a *App) printButton() {
	if a.showing {
		a.println("[Hide]")
	} else {
		a.println("[Show]")
	}
}

func (a *App) println(line string) {
	a.outMu.Lock()
	defer a.outMu.Unlock()
	fmt.Fprintln(a.out, line)
}
