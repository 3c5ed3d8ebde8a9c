package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/phrazzld/threadflow/internal/api"
)

// submitCommand implements "threadctl submit".
type submitCommand struct {
	opts *options
	out  io.Writer

	Data     string `long:"data" short:"d" required:"true" description:"Task payload; plain text is sent as a JSON string"`
	Priority int    `long:"priority" short:"p" default:"1" description:"Task priority, lower runs first"`
	Count    int    `long:"count" short:"n" default:"1" description:"Number of identical tasks to submit"`
}

// submitResult is one row of the submit summary.
type submitResult struct {
	TaskID string
	Err    error
}

func (c *submitCommand) Execute(_ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	applyColorOption(c.opts)
	return c.run(ctx, newClient(c.opts.Server))
}

func (c *submitCommand) run(ctx context.Context, cl *client) error {
	if c.Count < 1 {
		return fmt.Errorf("count must be at least 1, got %d", c.Count)
	}

	payload := payloadFromArg(c.Data)
	results := make([]submitResult, 0, c.Count)
	failures := 0
	for i := 0; i < c.Count; i++ {
		if ctx.Err() != nil {
			break
		}
		id, err := cl.Submit(ctx, payload, c.Priority)
		if err != nil {
			failures++
		}
		results = append(results, submitResult{TaskID: id, Err: err})
	}

	if err := renderSubmitted(c.out, results, c.Priority); err != nil {
		return err
	}
	if pending, err := cl.Pending(ctx); err == nil {
		_, _ = fmt.Fprintf(c.out, "%d task(s) pending\n", pending)
	}
	if failures > 0 {
		return fmt.Errorf("%d of %d submissions failed", failures, len(results))
	}
	return nil
}

// payloadFromArg returns arg untouched when it is valid JSON and wraps it as
// a JSON string otherwise.
func payloadFromArg(arg string) json.RawMessage {
	if json.Valid([]byte(arg)) {
		return json.RawMessage(arg)
	}
	quoted, _ := json.Marshal(arg)
	return quoted
}

// watchCommand implements "threadctl watch".
type watchCommand struct {
	opts *options
	out  io.Writer

	Interval time.Duration `long:"interval" short:"i" default:"1s" description:"Delay between polls"`
	Once     bool          `long:"once" description:"Print the current history and exit"`
}

func (c *watchCommand) Execute(_ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	applyColorOption(c.opts)
	return c.run(ctx, newClient(c.opts.Server))
}

// run polls until ctx is cancelled, feeding each server_time back as the next
// since value. Completions landing in the same second as server_time come
// back on the next poll, so ids printed by the previous poll are skipped.
func (c *watchCommand) run(ctx context.Context, cl *client) error {
	if c.Interval <= 0 {
		return fmt.Errorf("interval must be positive, got %s", c.Interval)
	}

	var since int64
	previous := map[string]struct{}{}

	ticker := time.NewTicker(c.Interval)
	defer ticker.Stop()

	for {
		resp, err := cl.CompletedSince(ctx, since)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}

		fresh := make([]api.CompletedTask, 0, len(resp.CompletedTasks))
		seen := make(map[string]struct{}, len(resp.CompletedTasks))
		for _, t := range resp.CompletedTasks {
			seen[t.TaskID] = struct{}{}
			if _, dup := previous[t.TaskID]; !dup {
				fresh = append(fresh, t)
			}
		}
		previous = seen
		since = resp.ServerTime

		// The server lists most recent first; print in completion order.
		slices.Reverse(fresh)
		if len(fresh) > 0 || c.Once {
			if err := renderCompleted(c.out, fresh); err != nil {
				return err
			}
		}

		if c.Once {
			return nil
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func applyColorOption(opts *options) {
	if opts.NoColor {
		color.NoColor = true
	}
}
