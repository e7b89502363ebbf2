package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/recapd/recapd/internal/core/domain"
)

var processJSON bool

var processCmd = &cobra.Command{
	Use:   "process [file]",
	Short: "Run the full pipeline on a local recording",
	Long: `Transcribes and enriches a recording synchronously, referencing
the file in place. The command exits non-zero when the job ends in
error.`,
	Args: cobra.ExactArgs(1),
	RunE: runProcess,
}

func init() {
	processCmd.Flags().BoolVar(&processJSON, "json", false, "output the meeting record as JSON")
	rootCmd.AddCommand(processCmd)
}

func runProcess(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()

	job, err := a.intake.SubmitPath(ctx, args[0])
	if err != nil {
		return fmt.Errorf("submitting %s: %w", args[0], err)
	}

	a.runner.Run(ctx, job.ID)

	done, err := a.store.GetJob(ctx, job.ID)
	if err != nil {
		return fmt.Errorf("loading job result: %w", err)
	}
	if done.Status == domain.StatusError {
		return errors.New("processing failed: " + done.Error)
	}

	record, err := a.store.GetMeeting(ctx, job.MeetingID)
	if err != nil {
		return fmt.Errorf("loading meeting: %w", err)
	}

	if processJSON {
		data, err := json.MarshalIndent(record, "", "  ")
		if err != nil {
			return fmt.Errorf("marshalling meeting: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	printMeeting(cmd, record)
	return nil
}

func printMeeting(cmd *cobra.Command, record *domain.MeetingRecord) {
	cmd.Printf("%s (%.0fs, %s, %s)\n", record.Title, record.DurationSec, record.Language, record.Sentiment)
	if record.Summary != "" {
		cmd.Println()
		cmd.Println(record.Summary)
	}

	if len(record.Actions) > 0 {
		cmd.Println()
		cmd.Println("Action items:")
		for _, item := range record.Actions {
			line := fmt.Sprintf("  - [%s] %s (%s)", item.Status, item.Title, item.Owner)
			if item.DueDate != "" {
				line += " due " + item.DueDate
			}
			cmd.Println(line)
		}
	}

	if len(record.Topics) > 0 {
		cmd.Println()
		cmd.Print("Topics:")
		for _, topic := range record.Topics {
			cmd.Printf(" %s", topic.Label)
		}
		cmd.Println()
	}
}
