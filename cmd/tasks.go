package cmd

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/erpforge/orchestrator-go/pkg/client"
	"github.com/erpforge/orchestrator-go/pkg/types"
)

var (
	urlFlag      string
	limitFlag    int
	taskNameFlag string

	tasksCmd = &cobra.Command{
		Use:   "tasks",
		Short: "Operate on tasks in a running orchestrator instance",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	tasksListCmd = &cobra.Command{
		Use:   "list",
		Short: "List tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			tasks, err := client.NewClient(urlFlag).ListTasks(limitFlag)
			if err != nil {
				return err
			}
			if len(tasks) == 0 {
				fmt.Println("no tasks")
				return nil
			}
			for _, task := range tasks {
				fmt.Printf("%s  %-10s %3d%%  %s\n", task.ID, task.Status, task.Progress, task.Name)
			}
			return nil
		},
	}

	tasksGetCmd = &cobra.Command{
		Use:   "get <id>",
		Short: "Show one task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			task, err := client.NewClient(urlFlag).GetTask(args[0])
			if err != nil {
				return err
			}
			fmt.Println(task.String())
			return nil
		},
	}

	tasksCreateCmd = &cobra.Command{
		Use:   "create",
		Short: "Create a task with the default pipeline",
		RunE: func(cmd *cobra.Command, args []string) error {
			task, err := client.NewClient(urlFlag).CreateTask(types.CreateTaskRequest{
				Name: taskNameFlag,
			})
			if err != nil {
				return err
			}
			log.Info("task created", "task", task.ID)
			fmt.Println(task.String())
			return nil
		},
	}
)

func init() {
	rootCmd.AddCommand(tasksCmd)
	tasksCmd.AddCommand(tasksListCmd, tasksGetCmd, tasksCreateCmd)

	tasksCmd.PersistentFlags().StringVar(&urlFlag, "url", "http://localhost:8000", "Base URL of the orchestrator API")
	tasksListCmd.Flags().IntVar(&limitFlag, "limit", 0, "Maximum number of tasks to return")
	tasksCreateCmd.Flags().StringVarP(&taskNameFlag, "name", "n", "", "Name for the new task")
	_ = tasksCreateCmd.MarkFlagRequired("name")
}
