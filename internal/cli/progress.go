package cli

import (
	"fmt"
	"strconv"
	"strings"

	"task-tracker/internal/models"

	"github.com/spf13/cobra"
)

func (a *app) progressCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "progress",
		Short: "Manage a task's progress notes",
	}
	cmd.AddCommand(
		a.progressAddCommand(),
		a.progressEditCommand(),
		a.progressRemoveCommand(),
		a.progressListCommand(),
	)
	return cmd
}

func (a *app) progressAddCommand() *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "add <task-id> <note>...",
		Short: "Append a progress note",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			task, err := a.service.AddEntry(cmd.Context(), id, a.dateOrToday(date), strings.Join(args[1:], " "))
			if err := a.report(cmd, err); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "task %d has %d progress notes\n", task.ID, len(task.Progress))
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Note date YYYY-MM-DD (default today)")
	return cmd
}

func (a *app) progressEditCommand() *cobra.Command {
	var (
		date string
		byID bool
	)

	cmd := &cobra.Command{
		Use:   "edit <task-id> <index> <note>...",
		Short: "Replace a progress note",
		Long: `Replace the progress note at <index> (0-based, as printed by "progress list").
With --by-id the second argument is the note's stable id instead.`,
		Args: cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			note := strings.Join(args[2:], " ")

			var task models.Task
			if byID {
				entryID, perr := parseID(args[1])
				if perr != nil {
					return perr
				}
				task, err = a.service.EditEntryByID(cmd.Context(), id, entryID, a.dateOrToday(date), note)
			} else {
				index, perr := strconv.Atoi(args[1])
				if perr != nil {
					return fmt.Errorf("invalid index %q", args[1])
				}
				task, err = a.service.EditEntry(cmd.Context(), id, index, a.dateOrToday(date), note)
			}
			if err := a.report(cmd, err); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "updated progress of task %d\n", task.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Note date YYYY-MM-DD (default today)")
	cmd.Flags().BoolVar(&byID, "by-id", false, "Address the note by id instead of index")
	return cmd
}

func (a *app) progressRemoveCommand() *cobra.Command {
	var byID bool

	cmd := &cobra.Command{
		Use:   "rm <task-id> <index>",
		Short: "Delete a progress note; later notes move up by one",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			var task models.Task
			if byID {
				entryID, perr := parseID(args[1])
				if perr != nil {
					return perr
				}
				task, err = a.service.RemoveEntryByID(cmd.Context(), id, entryID)
			} else {
				index, perr := strconv.Atoi(args[1])
				if perr != nil {
					return fmt.Errorf("invalid index %q", args[1])
				}
				task, err = a.service.RemoveEntry(cmd.Context(), id, index)
			}
			if err := a.report(cmd, err); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "task %d has %d progress notes\n", task.ID, len(task.Progress))
			return nil
		},
	}

	cmd.Flags().BoolVar(&byID, "by-id", false, "Address the note by id instead of index")
	return cmd
}

func (a *app) progressListCommand() *cobra.Command {
	var (
		page     int
		pageSize int
	)

	cmd := &cobra.Command{
		Use:   "list <task-id>",
		Short: "List a task's progress notes a page at a time",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if pageSize == 0 {
				pageSize = a.cfg.UI.ProgressPageSize
			}

			progress, err := a.service.Progress(id, page, pageSize)
			if err != nil {
				return err
			}
			renderProgressPage(cmd.OutOrStdout(), progress)
			return nil
		},
	}

	cmd.Flags().IntVar(&page, "page", 1, "Page number")
	cmd.Flags().IntVar(&pageSize, "page-size", 0, "Notes per page (default from config)")
	return cmd
}

func (a *app) dateOrToday(value string) models.Date {
	if value == "" {
		return models.DateOf(a.now())
	}
	return models.Date(value)
}
