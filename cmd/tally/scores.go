package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/dukerupert/tally/internal/database"
	"github.com/dukerupert/tally/internal/score"
	"github.com/dukerupert/tally/internal/store"
	"github.com/spf13/cobra"
)

func scoresCmd(flags *globalFlags) *cobra.Command {
	var weekly bool

	cmd := &cobra.Command{
		Use:   "scores",
		Short: "Print the leaderboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := flags.load()
			if err != nil {
				return err
			}
			loc, err := cfg.Location()
			if err != nil {
				return err
			}

			db, err := database.Open(cfg.DBDriver, cfg.DBDSN)
			if err != nil {
				return err
			}
			defer db.Close()

			start, end := score.WeekWindow(time.Now(), loc)
			order := store.ByTotal
			if weekly {
				order = store.ByWeekly
			}

			scores, err := store.NewScoreStore(db).List(cmd.Context(), start, end, order)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Week %s to %s\n\n", start.Format("Mon 2006-01-02"), end.AddDate(0, 0, -1).Format("Mon 2006-01-02"))

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', tabwriter.AlignRight)
			fmt.Fprintln(tw, "#\tNAME\tTOTAL\tWEEK\t")
			for i, s := range scores {
				fmt.Fprintf(tw, "%d\t%s\t%d\t%d\t\n", i+1, s.Name, s.TotalScore, s.WeeklyScore)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().BoolVarP(&weekly, "weekly", "w", false, "Rank by this week's score instead of the lifetime total")
	return cmd
}
