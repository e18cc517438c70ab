package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

var readLimit int

func init() {
	rootCmd.AddCommand(filingsCmd)
	rootCmd.AddCommand(sessionsCmd)
	rootCmd.AddCommand(sectionCmd)

	filingsCmd.Flags().IntVar(&readLimit, "limit", 20, "Maximum number of filings to return")
	sessionsCmd.Flags().IntVar(&readLimit, "limit", 20, "Maximum number of sessions to return")
}

var filingsCmd = &cobra.Command{
	Use:   "filings",
	Short: "List filings, most recently active first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := loadApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		filings, err := a.Store.ListFilings(cmd.Context(), readLimit)
		if err != nil {
			return err
		}
		if outputJSON {
			return writeJSON(cmd.OutOrStdout(), filings)
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "FILING ID\tTYPE\tSESSIONS\tSECTIONS\tLAST UPDATED\tURL")
		for _, f := range filings {
			fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\t%s\n",
				f.FilingID, f.FilingType, f.SessionCount, f.UniqueSectionCount,
				f.LastUpdated.Format(time.RFC3339), f.FilingURL)
		}
		return w.Flush()
	},
}

var sessionsCmd = &cobra.Command{
	Use:   "sessions <filing-id>",
	Short: "List the sessions of a filing, most recent first",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		sessions, err := a.Store.ListSessions(cmd.Context(), args[0], readLimit)
		if err != nil {
			return err
		}
		if outputJSON {
			return writeJSON(cmd.OutOrStdout(), sessions)
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "SESSION ID\tSUCCEEDED\tFAILED\tREQUESTED")
		for _, s := range sessions {
			fmt.Fprintf(w, "%s\t%d\t%d\t%v\n", s.SessionID, s.SuccessCount, s.FailureCount, s.RequestedSections)
		}
		return w.Flush()
	},
}

var sectionCmd = &cobra.Command{
	Use:   "section <filing-id> <session-id> <section-id>",
	Short: "Print the full content of one recorded section",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		rec, err := a.Store.GetSection(cmd.Context(), args[0], args[1], args[2])
		if err != nil {
			return err
		}
		if outputJSON {
			return writeJSON(cmd.OutOrStdout(), rec)
		}
		if !rec.Success {
			return fmt.Errorf("section %s failed: %s", rec.SectionID, rec.Error)
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), rec.Content)
		return err
	},
}
