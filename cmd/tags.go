package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var tagsCmd = &cobra.Command{
	Use:   "tags",
	Short: "Query the topic tags used across the bank",
}

var tagsSuggestCmd = &cobra.Command{
	Use:   "suggest [partial]",
	Short: "List tags containing partial, ignoring case",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var partial string
		if len(args) == 1 {
			partial = args[0]
		}
		exclude, _ := cmd.Flags().GetStringSlice("exclude")

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		idx, err := e.bank.Tags(cmd.Context())
		if err != nil {
			return err
		}
		matches := idx.Suggest(partial, exclude)
		if len(matches) == 0 {
			fmt.Println("No matching tags.")
			return nil
		}
		for _, t := range matches {
			fmt.Println(t)
		}
		return nil
	},
}

func init() {
	tagsSuggestCmd.Flags().StringSlice("exclude", nil, "Tags already chosen (repeatable or comma separated)")

	tagsCmd.AddCommand(tagsSuggestCmd)
}
