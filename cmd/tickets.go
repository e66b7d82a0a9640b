package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/danielolaszy/ticketbridge/internal/logging"
	"github.com/danielolaszy/ticketbridge/pkg/models"
	"github.com/danielolaszy/ticketbridge/pkg/tracker"
)

// printJSON writes v as indented JSON to the command's stdout.
func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (c *cli) getCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one ticket",
		Long: `Show one ticket by its platform id.

Platforms with two record types (GitLab merge requests and issues, ServiceNow
change requests and incidents) are probed in order, so an id that exists on
neither costs one failed call per type before "not found" is reported.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(cmd, func(ctx context.Context, client tracker.Client) error {
				ticket, err := client.GetTicket(ctx, args[0])
				if err != nil {
					return err
				}
				return printJSON(cmd, ticket)
			})
		},
	}
}

func (c *cli) listCmd() *cobra.Command {
	var filter models.TicketFilter

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tickets",
		Long: `List tickets in the platform's own order.

A --status the platform cannot express is ignored rather than rejected.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(cmd, func(ctx context.Context, client tracker.Client) error {
				tickets, err := client.GetTickets(ctx, &filter)
				if err != nil {
					return err
				}
				logging.Debug("listed tickets", "count", len(tickets))
				return printJSON(cmd, tickets)
			})
		},
	}

	cmd.Flags().StringVar(&filter.Status, "status", "", "Shared status (open, closed, merged, in_progress, ...)")
	cmd.Flags().StringVar(&filter.AssigneeID, "assignee", "", "Platform user id of the assignee")
	return cmd
}

func (c *cli) createCmd() *cobra.Command {
	var opts models.CreateTicketOptions

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a ticket",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(cmd, func(ctx context.Context, client tracker.Client) error {
				ticket, err := client.CreateTicket(ctx, opts)
				if err != nil {
					return err
				}
				return printJSON(cmd, ticket)
			})
		},
	}

	cmd.Flags().StringVar(&opts.Title, "title", "", "Ticket title")
	cmd.Flags().StringVar(&opts.Description, "description", "", "Ticket description")
	cmd.Flags().StringVar(&opts.AssigneeID, "assignee", "", "Platform user id of the assignee")
	cmd.Flags().StringArrayVar(&opts.Labels, "label", nil, "Label to set (repeatable)")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

func (c *cli) updateCmd() *cobra.Command {
	var (
		title, description, status, assignee string
		labels                               []string
	)

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update the given fields of a ticket",
		Long: `Update a ticket. Only flags given on the command line are sent; every
other field is left untouched on the platform. Pass --assignee "" to unassign.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var opts models.UpdateTicketOptions
			flags := cmd.Flags()
			if flags.Changed("title") {
				opts.Title = &title
			}
			if flags.Changed("description") {
				opts.Description = &description
			}
			if flags.Changed("status") {
				opts.Status = &status
			}
			if flags.Changed("assignee") {
				opts.AssigneeID = &assignee
			}
			if flags.Changed("label") {
				opts.Labels = &labels
			}

			if opts.IsEmpty() {
				return fmt.Errorf("nothing to update: pass at least one of --title, --description, --status, --assignee, --label")
			}

			return c.run(cmd, func(ctx context.Context, client tracker.Client) error {
				ticket, err := client.UpdateTicket(ctx, args[0], opts)
				if err != nil {
					return err
				}
				return printJSON(cmd, ticket)
			})
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "New title")
	cmd.Flags().StringVar(&description, "description", "", "New description")
	cmd.Flags().StringVar(&status, "status", "", "New shared status")
	cmd.Flags().StringVar(&assignee, "assignee", "", "New assignee id")
	cmd.Flags().StringArrayVar(&labels, "label", nil, "Replace labels (repeatable)")
	return cmd
}

func (c *cli) commentCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "comment <id> <text>",
		Short: "Comment on a ticket",
		Long: `Add a comment to a ticket.

On ServiceNow the comment is written to the record's work notes field, and
the returned comment carries the record's id and last update.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(cmd, func(ctx context.Context, client tracker.Client) error {
				comment, err := client.AddComment(ctx, args[0], args[1])
				if err != nil {
					return err
				}
				return printJSON(cmd, comment)
			})
		},
	}
}

func (c *cli) reviewCmd() *cobra.Command {
	var opts models.CreateReviewRequestOptions

	cmd := &cobra.Command{
		Use:   "review",
		Short: "Create a review request",
		Long: `Create a pull request, merge request or review record.

The first --reviewer is the primary reviewer. On ServiceNow and Jira the
branches are written into the description as "Source Branch:" and
"Target Branch:" lines.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(cmd, func(ctx context.Context, client tracker.Client) error {
				ticket, err := client.CreateReviewRequest(ctx, opts)
				if err != nil {
					return err
				}
				return printJSON(cmd, ticket)
			})
		},
	}

	cmd.Flags().StringVar(&opts.Title, "title", "", "Review title")
	cmd.Flags().StringVar(&opts.Description, "description", "", "Review description")
	cmd.Flags().StringVar(&opts.SourceBranch, "source", "", "Source branch")
	cmd.Flags().StringVar(&opts.TargetBranch, "target", "", "Target branch")
	cmd.Flags().StringVar(&opts.AssigneeID, "assignee", "", "Assignee id when no reviewer is given")
	cmd.Flags().StringArrayVar(&opts.Reviewers, "reviewer", nil, "Reviewer id (repeatable, first is primary)")
	cmd.Flags().StringArrayVar(&opts.Labels, "label", nil, "Label to set (repeatable)")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("source")
	_ = cmd.MarkFlagRequired("target")
	return cmd
}
