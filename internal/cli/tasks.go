package cli

import (
	"fmt"
	"strconv"

	"task-tracker/internal/models"
	"task-tracker/internal/projections"
	"task-tracker/internal/repository"
	"task-tracker/internal/server"
	"task-tracker/internal/services"

	"github.com/spf13/cobra"
)

func (a *app) serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the JSON API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			srv := server.New(a.cfg, a.service, a.store, a.logger)
			return srv.Run(cmd.Context())
		},
	}
}

func (a *app) addCommand() *cobra.Command {
	var (
		description string
		start       string
		end         string
		category    string
		priority    string
	)

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Create a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if start == "" {
				start = models.DateOf(a.now()).String()
			}
			startDate, err := models.ParseDate(start)
			if err != nil {
				return err
			}
			endDate, err := models.ParseDate(end)
			if err != nil {
				return err
			}

			task, err := a.service.CreateTask(cmd.Context(), repository.CreateInput{
				Title:       args[0],
				Description: description,
				StartDate:   startDate,
				EndDate:     endDate,
				Category:    category,
				Priority:    models.Priority(priority),
			})
			if err := a.report(cmd, err); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "created task %d\n", task.ID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&description, "description", "d", "", "Task description")
	cmd.Flags().StringVar(&start, "start", "", "Start date YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&end, "end", "", "End date YYYY-MM-DD")
	cmd.Flags().StringVar(&category, "category", "", "Category (default Uncategorized)")
	cmd.Flags().StringVarP(&priority, "priority", "p", "", "Priority: low, medium, high")
	return cmd
}

func (a *app) listCommand() *cobra.Command {
	var (
		page     int
		pageSize int
		sortBy   string
		order    string
		status   string
		category string
	)

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List tasks a page at a time",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			query := services.ListQuery{Page: page, PageSize: pageSize, Category: category}
			query.SortBy, query.Order = projections.ParseSort(sortBy, order)

			if status != "" {
				s, err := models.ParseStatus(status)
				if err != nil {
					return err
				}
				query.Status = s
			}

			renderTaskPage(cmd.OutOrStdout(), a.service.ListTasks(query))
			return nil
		},
	}

	cmd.Flags().IntVar(&page, "page", 1, "Page number")
	cmd.Flags().IntVar(&pageSize, "page-size", 0, "Tasks per page (default from config)")
	cmd.Flags().StringVar(&sortBy, "sort", "", "Sort by priority, startDate, title or status")
	cmd.Flags().StringVar(&order, "order", "asc", "Sort order: asc or desc")
	cmd.Flags().StringVar(&status, "status", "", "Only tasks with this status")
	cmd.Flags().StringVar(&category, "category", "", "Only tasks in this category")
	return cmd
}

func (a *app) showCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a task with its progress notes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			task, err := a.service.GetTask(id)
			if err != nil {
				return err
			}
			renderTask(cmd.OutOrStdout(), task)
			return nil
		},
	}
}

func (a *app) editCommand() *cobra.Command {
	var (
		title       string
		description string
		start       string
		end         string
		category    string
		priority    string
	)

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change task fields; only flags given are applied",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			var patch repository.TaskPatch
			flags := cmd.Flags()
			if flags.Changed("title") {
				patch.Title = &title
			}
			if flags.Changed("description") {
				patch.Description = &description
			}
			if flags.Changed("start") {
				d := models.Date(start)
				patch.StartDate = &d
			}
			if flags.Changed("end") {
				d := models.Date(end)
				patch.EndDate = &d
			}
			if flags.Changed("category") {
				patch.Category = &category
			}
			if flags.Changed("priority") {
				p := models.Priority(priority)
				patch.Priority = &p
			}

			task, err := a.service.UpdateTask(cmd.Context(), id, patch)
			if err := a.report(cmd, err); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "updated task %d\n", task.ID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&title, "title", "t", "", "New title")
	cmd.Flags().StringVarP(&description, "description", "d", "", "New description")
	cmd.Flags().StringVar(&start, "start", "", "New start date YYYY-MM-DD")
	cmd.Flags().StringVar(&end, "end", "", "New end date YYYY-MM-DD, empty to clear")
	cmd.Flags().StringVar(&category, "category", "", "New category")
	cmd.Flags().StringVarP(&priority, "priority", "p", "", "New priority: low, medium, high")
	return cmd
}

func (a *app) statusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status <id> <status>",
		Short: "Move a task to pending, on-progress, completed, cancelled or on-hold",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			status, err := models.ParseStatus(args[1])
			if err != nil {
				return err
			}

			task, err := a.service.SetStatus(cmd.Context(), id, status)
			if err := a.report(cmd, err); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "task %d is now %s\n", task.ID, task.Status.Label())
			return nil
		},
	}
}

func (a *app) toggleCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <id>",
		Short: "Flip a task between completed and pending",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			task, err := a.service.ToggleCompleted(cmd.Context(), id)
			if err := a.report(cmd, err); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "task %d is now %s\n", task.ID, task.Status.Label())
			return nil
		},
	}
}

func (a *app) removeCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a task",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			removed, err := a.service.DeleteTask(cmd.Context(), id)
			if err := a.report(cmd, err); err != nil {
				return err
			}
			if !removed {
				return fmt.Errorf("task %d: %w", id, repository.ErrNotFound)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted task %d\n", id)
			return nil
		},
	}
}

func (a *app) statsCommand() *cobra.Command {
	var recent int

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show status counts and the most recent tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("recent") {
				recent = a.cfg.UI.RecentCount
			}
			renderDashboard(cmd.OutOrStdout(), a.service.Dashboard(recent))
			return nil
		},
	}

	cmd.Flags().IntVar(&recent, "recent", 2, "How many recent tasks to show")
	return cmd
}

func parseID(value string) (int64, error) {
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid task id %q", value)
	}
	return id, nil
}
