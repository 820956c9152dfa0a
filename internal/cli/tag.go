package cli

import (
	"github.com/urfave/cli/v2"
)

// TagCommand returns the tag subcommand group.
func TagCommand() *cli.Command {
	return &cli.Command{
		Name:    "tag",
		Aliases: []string{"tags"},
		Usage:   "Manage tags",
		Subcommands: []*cli.Command{
			{
				Name:    "list",
				Aliases: []string{"ls"},
				Usage:   "List all tags",
				Action: func(c *cli.Context) error {
					e, err := setup(c)
					if err != nil {
						return err
					}
					tags, err := e.client.ListTags(c.Context)
					if err != nil {
						return err
					}
					return render(c, e, tags, func() *table { return tagTable(tags...) })
				},
			},
			{
				Name:      "create",
				Usage:     "Create a tag",
				ArgsUsage: "NAME",
				Action: func(c *cli.Context) error {
					e, err := setup(c)
					if err != nil {
						return err
					}
					tag, err := e.client.CreateTag(c.Context, c.Args().First())
					if err != nil {
						return err
					}
					return render(c, e, tag, func() *table { return tagTable(*tag) })
				},
			},
			{
				Name:      "delete",
				Aliases:   []string{"rm"},
				Usage:     "Delete a tag",
				ArgsUsage: "TAG_ID",
				Action: func(c *cli.Context) error {
					e, err := setup(c)
					if err != nil {
						return err
					}
					id, err := argID(c, "TAG_ID")
					if err != nil {
						return err
					}
					if err := e.client.DeleteTag(c.Context, id); err != nil {
						return err
					}
					return message(c, e, "Deleted tag %d", id)
				},
			},
		},
	}
}
