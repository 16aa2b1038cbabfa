package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spigell/tradematch/internal/filtering"
	"github.com/spigell/tradematch/internal/matching"
	"github.com/spigell/tradematch/internal/model"
)

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func printJobs(w io.Writer, jobs []model.Job) {
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tTITLE\tSTATUS\tCOUNTRY\tEMPLOYER\tSKILLS")
	for _, j := range jobs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			j.ID, j.Title, j.Status, j.Country, j.EmployerID, strings.Join(j.RequiredSkills, ", "))
	}
	tw.Flush()
}

func printFilters(w io.Writer, statuses []filtering.Status) {
	tw := newTable(w)
	fmt.Fprintln(tw, "FILTER\tENABLED\tREASON")
	for _, s := range statuses {
		fmt.Fprintf(tw, "%s\t%t\t%s\n", s.Name, s.Enabled, s.Reason)
	}
	tw.Flush()
}

func printResults(w io.Writer, results []matching.MatchResult) {
	tw := newTable(w)
	fmt.Fprintln(tw, "RANK\tSCORE\tWORKER\tNAME\tTRADE\tYEARS\tCOUNTRY\tMISSING")
	for _, r := range results {
		fmt.Fprintf(tw, "%d\t%d\t%s\t%s\t%s\t%d\t%s\t%s\n",
			r.Rank, r.Score, r.WorkerID, r.Worker.FullName, r.Worker.TradeOrSkill,
			r.Worker.ExperienceYears, r.Worker.CountryOfOrigin, strings.Join(r.Breakdown.MissingSkills, ", "))
	}
	tw.Flush()

	for _, r := range results {
		if r.Note != "" {
			fmt.Fprintf(w, "\n%s: %s\n", r.WorkerID, r.Note)
		}
	}
}

func printJSON(w io.Writer, v any) {
	// do not bother error since every printed value is a plain struct
	pretty, _ := json.MarshalIndent(v, "", "  ")
	fmt.Fprintln(w, string(pretty))
}
