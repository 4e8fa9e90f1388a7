package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/matzehuels/questgraph/pkg/config"
	"github.com/matzehuels/questgraph/pkg/quest"
)

const defaultSearchLimit = 50

// searchOpts holds the command-line flags for the search command.
// Toggle flags only override the config file when given explicitly.
type searchOpts struct {
	limit   int
	display config.Display
	search  config.Search
}

// searchCommand creates the search command.
func (c *CLI) searchCommand() *cobra.Command {
	def := config.Default()
	opts := searchOpts{limit: defaultSearchLimit, display: def.Display, search: def.Search}

	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search quests by name and unlocks",
		Long: `Search lists reachable quests whose name, or an enabled detail such as a
reward item, emote or duty, contains the query. Matching ignores case.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			opts.apply(cmd.Flags(), &cfg)

			m, err := c.loadCatalog(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			query := ""
			if len(args) == 1 {
				query = args[0]
			}
			var results []*quest.Record
			for r := range m.Catalog().Filter(query, cfg) {
				results = append(results, r)
			}
			printSearch(cmd.OutOrStdout(), results, opts.limit)
			return nil
		},
	}

	f := cmd.Flags()
	f.IntVarP(&opts.limit, "limit", "n", opts.limit, "maximum rows to print (0 for all)")
	f.BoolVar(&opts.display.ShowMSQ, "msq", opts.display.ShowMSQ, "include main scenario quests")
	f.BoolVar(&opts.display.ShowNormal, "side", opts.display.ShowNormal, "include side quests")
	f.BoolVar(&opts.display.ShowBlue, "feature", opts.display.ShowBlue, "include feature quests")
	f.BoolVar(&opts.display.ShowEmote, "emotes", opts.display.ShowEmote, "include quests rewarding an emote")
	f.BoolVar(&opts.display.ShowInstanceUnlocks, "duties", opts.display.ShowInstanceUnlocks, "include quests unlocking a duty")
	f.BoolVar(&opts.display.ShowWithRewards, "rewards", opts.display.ShowWithRewards, "include quests rewarding items")
	f.BoolVar(&opts.display.ShowJobAndAction, "jobs", opts.display.ShowJobAndAction, "include quests unlocking a job or action")
	f.BoolVar(&opts.search.IncludeItems, "match-items", opts.search.IncludeItems, "match the query against reward items")
	f.BoolVar(&opts.search.IncludeEmotes, "match-emotes", opts.search.IncludeEmotes, "match the query against emotes")
	f.BoolVar(&opts.search.IncludeInstances, "match-duties", opts.search.IncludeInstances, "match the query against duties")
	f.BoolVar(&opts.search.IncludeActions, "match-actions", opts.search.IncludeActions, "match the query against jobs and actions")

	return cmd
}

// apply copies explicitly set toggles into cfg.
func (o searchOpts) apply(flags *pflag.FlagSet, cfg *config.Config) {
	set := func(name string, dst *bool, v bool) {
		if flags.Changed(name) {
			*dst = v
		}
	}
	set("msq", &cfg.Display.ShowMSQ, o.display.ShowMSQ)
	set("side", &cfg.Display.ShowNormal, o.display.ShowNormal)
	set("feature", &cfg.Display.ShowBlue, o.display.ShowBlue)
	set("emotes", &cfg.Display.ShowEmote, o.display.ShowEmote)
	set("duties", &cfg.Display.ShowInstanceUnlocks, o.display.ShowInstanceUnlocks)
	set("rewards", &cfg.Display.ShowWithRewards, o.display.ShowWithRewards)
	set("jobs", &cfg.Display.ShowJobAndAction, o.display.ShowJobAndAction)
	set("match-items", &cfg.Search.IncludeItems, o.search.IncludeItems)
	set("match-emotes", &cfg.Search.IncludeEmotes, o.search.IncludeEmotes)
	set("match-duties", &cfg.Search.IncludeInstances, o.search.IncludeInstances)
	set("match-actions", &cfg.Search.IncludeActions, o.search.IncludeActions)
}

// printSearch renders results as a table, truncated to limit rows.
func printSearch(w io.Writer, results []*quest.Record, limit int) {
	if len(results) == 0 {
		printInfo(w, "No quests found")
		return
	}
	shown := results
	if limit > 0 && len(shown) > limit {
		shown = shown[:limit]
	}

	rows := make([][]string, len(shown))
	for i, r := range shown {
		rows[i] = []string{fmt.Sprint(r.ID), typeLabel(r.Type), r.Name, unlockSummary(r)}
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("ID", "Type", "Name", "Unlocks").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return styleHeader
			}
			switch col {
			case 0:
				return StyleNumber
			case 1:
				return typeStyle(shown[row].Type)
			case 3:
				return StyleDim
			}
			return StyleValue
		})

	fmt.Fprintln(w, t.Render())
	summary := fmt.Sprintf("%d quests", len(results))
	if len(shown) < len(results) {
		summary = fmt.Sprintf("%d of %d quests", len(shown), len(results))
	}
	fmt.Fprintln(w, StyleDim.Render(summary))
	printNextStep(w, "Draw a quest", strings.Join([]string{appName, "graph", fmt.Sprint(shown[0].ID)}, " "))
}
