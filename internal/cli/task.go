package cli

import (
	"fmt"
	"strconv"

	"github.com/urfave/cli/v2"

	"github.com/gotodo/gotodo/internal/models"
)

// TaskCommand returns the task subcommand group.
func TaskCommand() *cli.Command {
	return &cli.Command{
		Name:    "task",
		Aliases: []string{"tasks", "t"},
		Usage:   "Manage your tasks",
		Subcommands: []*cli.Command{
			{
				Name:    "list",
				Aliases: []string{"ls"},
				Usage:   "List your tasks",
				Action:  taskList,
			},
			{
				Name:  "create",
				Usage: "Create a task",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "title", Usage: "Task title", Required: true},
					&cli.StringFlag{Name: "content", Usage: "Task description"},
					&cli.StringFlag{Name: "status", Usage: "PENDING, IN_PROGRESS or COMPLETED", Value: string(models.StatusPending)},
					&cli.Int64Flag{Name: "tag", Usage: "Tag ID"},
				},
				Action: taskCreate,
			},
			{
				Name:      "update",
				Usage:     "Change fields of a task",
				ArgsUsage: "TASK_ID",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "title", Usage: "New title"},
					&cli.StringFlag{Name: "content", Usage: "New description"},
					&cli.StringFlag{Name: "status", Usage: "PENDING, IN_PROGRESS or COMPLETED"},
					&cli.Int64Flag{Name: "tag", Usage: "New tag ID"},
					&cli.BoolFlag{Name: "no-tag", Usage: "Remove the tag"},
				},
				Action: taskUpdate,
			},
			{
				Name:      "delete",
				Aliases:   []string{"rm"},
				Usage:     "Delete a task",
				ArgsUsage: "TASK_ID",
				Action:    taskDelete,
			},
		},
	}
}

func taskList(c *cli.Context) error {
	e, err := setup(c)
	if err != nil {
		return err
	}
	if err := e.requireLogin(); err != nil {
		return err
	}
	tasks, err := e.client.ListUserTasks(c.Context)
	if err != nil {
		return err
	}
	return render(c, e, tasks, func() *table { return taskTable(tasks...) })
}

func taskCreate(c *cli.Context) error {
	e, err := setup(c)
	if err != nil {
		return err
	}
	if err := e.requireLogin(); err != nil {
		return err
	}

	status, err := models.ParseTaskStatus(c.String("status"))
	if err != nil {
		return err
	}
	in := models.TaskInput{
		Title:   c.String("title"),
		Content: c.String("content"),
		Status:  status,
	}
	if c.IsSet("tag") {
		id := c.Int64("tag")
		in.TagID = &id
	}

	task, err := e.client.CreateTask(c.Context, in)
	if err != nil {
		return err
	}
	return render(c, e, task, func() *table { return taskTable(*task) })
}

// taskUpdate reads the current task and replaces only the fields given.
func taskUpdate(c *cli.Context) error {
	e, err := setup(c)
	if err != nil {
		return err
	}
	if err := e.requireLogin(); err != nil {
		return err
	}
	id, err := argID(c, "TASK_ID")
	if err != nil {
		return err
	}

	tasks, err := e.client.ListUserTasks(c.Context)
	if err != nil {
		return err
	}
	var current *models.Task
	for i := range tasks {
		if tasks[i].ID == id {
			current = &tasks[i]
			break
		}
	}
	if current == nil {
		return fmt.Errorf("task %d not found", id)
	}

	in := models.TaskInput{
		Title:   current.Title,
		Content: current.Content,
		Status:  current.Status,
		TagID:   current.TagID,
	}
	if c.IsSet("title") {
		in.Title = c.String("title")
	}
	if c.IsSet("content") {
		in.Content = c.String("content")
	}
	if c.IsSet("status") {
		if in.Status, err = models.ParseTaskStatus(c.String("status")); err != nil {
			return err
		}
	}
	switch {
	case c.Bool("no-tag"):
		in.TagID = nil
	case c.IsSet("tag"):
		tag := c.Int64("tag")
		in.TagID = &tag
	}

	task, err := e.client.UpdateTask(c.Context, id, in)
	if err != nil {
		return err
	}
	return render(c, e, task, func() *table { return taskTable(*task) })
}

func taskDelete(c *cli.Context) error {
	e, err := setup(c)
	if err != nil {
		return err
	}
	if err := e.requireLogin(); err != nil {
		return err
	}
	id, err := argID(c, "TASK_ID")
	if err != nil {
		return err
	}
	if err := e.client.DeleteTask(c.Context, id); err != nil {
		return err
	}
	return message(c, e, "Deleted task %d", id)
}

// argID parses the first positional argument as an id.
func argID(c *cli.Context, name string) (int64, error) {
	if c.NArg() < 1 {
		return 0, fmt.Errorf("%s is required", name)
	}
	id, err := strconv.ParseInt(c.Args().First(), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s %q", name, c.Args().First())
	}
	return id, nil
}
