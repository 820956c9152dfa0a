package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/gotodo/gotodo/internal/models"
)

// table is rendered with tabwriter.
type table struct {
	Headers []string
	Rows    [][]string
}

func (t *table) render(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if len(t.Headers) > 0 {
		fmt.Fprintln(tw, strings.Join(t.Headers, "\t"))
	}
	for _, row := range t.Rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// render writes v as JSON or, in table mode, calls tbl for the table form.
func render(c *cli.Context, e *env, v any, tbl func() *table) error {
	if e.cfg.Output == "json" {
		return writeJSON(c.App.Writer, v)
	}
	return tbl().render(c.App.Writer)
}

// message prints a line in table mode and {"message": ...} in JSON mode.
func message(c *cli.Context, e *env, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	if e.cfg.Output == "json" {
		return writeJSON(c.App.Writer, map[string]string{"message": msg})
	}
	_, err := fmt.Fprintln(c.App.Writer, msg)
	return err
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}

func tagLabel(id *int64) string {
	if id == nil {
		return "-"
	}
	return fmt.Sprint(*id)
}

func taskTable(tasks ...models.Task) *table {
	t := &table{Headers: []string{"ID", "TITLE", "STATUS", "TAG", "UPDATED"}}
	for _, task := range tasks {
		t.Rows = append(t.Rows, []string{
			fmt.Sprint(task.ID),
			task.Title,
			string(task.Status),
			tagLabel(task.TagID),
			formatTime(task.UpdatedAt),
		})
	}
	return t
}

func tagTable(tags ...models.Tag) *table {
	t := &table{Headers: []string{"ID", "NAME", "CREATED"}}
	for _, tag := range tags {
		t.Rows = append(t.Rows, []string{fmt.Sprint(tag.ID), tag.Name, formatTime(tag.CreatedAt)})
	}
	return t
}

func userTable(u *models.User) *table {
	return &table{
		Headers: []string{"ID", "USERNAME", "EMAIL", "CREATED"},
		Rows:    [][]string{{fmt.Sprint(u.ID), u.Username, u.Email, formatTime(u.CreatedAt)}},
	}
}
