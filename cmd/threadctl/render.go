package main

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/phrazzld/threadflow/internal/api"
)

var (
	green = color.New(color.FgGreen)
	red   = color.New(color.FgRed)
	dim   = color.New(color.Faint)
)

// statusText colors a task status for terminal output.
func statusText(status string) string {
	switch status {
	case "completed":
		return green.Sprint(status)
	case "failed":
		return red.Sprint(status)
	default:
		return status
	}
}

// renderSubmitted prints one row per submission attempt.
func renderSubmitted(w io.Writer, results []submitResult, priority int) error {
	table := tablewriter.NewWriter(w)
	table.Header("#", "Task ID", "Priority", "Result")

	for i, r := range results {
		result := green.Sprint("queued")
		id := r.TaskID
		if r.Err != nil {
			result = red.Sprint(r.Err.Error())
			id = dim.Sprint("-")
		}
		if err := table.Append(strconv.Itoa(i+1), id, strconv.Itoa(priority), result); err != nil {
			return fmt.Errorf("failed to add row: %w", err)
		}
	}

	if err := table.Render(); err != nil {
		return fmt.Errorf("failed to render submit table: %w", err)
	}
	return nil
}

// renderCompleted prints completions in the order given.
func renderCompleted(w io.Writer, tasks []api.CompletedTask) error {
	if len(tasks) == 0 {
		_, err := dim.Fprintln(w, "no completed tasks")
		return err
	}

	table := tablewriter.NewWriter(w)
	table.Header("Completed At", "Task ID", "Status")

	for _, t := range tasks {
		at := time.Unix(t.CompletionTime, 0).Format(time.DateTime)
		if err := table.Append(at, t.TaskID, statusText(t.Status)); err != nil {
			return fmt.Errorf("failed to add row: %w", err)
		}
	}

	if err := table.Render(); err != nil {
		return fmt.Errorf("failed to render completion table: %w", err)
	}
	return nil
}
