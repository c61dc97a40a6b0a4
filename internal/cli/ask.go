package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"shellm/internal/app"
)

func init() { rootCmd.AddCommand(askCmd) }

var askCmd = &cobra.Command{
	Use:   "ask <question...>",
	Short: "Ask one question without starting the wrapper",
	Long:  "Sends the question with the same prompt the overlay uses and prints the answer and the candidate command.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return app.Ask(cmd.Context(), opts, strings.Join(args, " "))
	},
}
