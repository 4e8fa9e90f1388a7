package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/questgraph/pkg/errors"
	"github.com/matzehuels/questgraph/pkg/quest"
)

// showCommand creates the show command printing one quest's details.
func (c *CLI) showCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <quest-id>",
		Short: "Show a quest's rewards, unlocks and neighbours",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := errors.ParseQuestID(args[0])
			if err != nil {
				return err
			}
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			m, err := c.loadCatalog(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			cat := m.Catalog()
			r, err := cat.Lookup(id)
			if err != nil {
				return err
			}
			printQuest(cmd.OutOrStdout(), cat, r)
			return nil
		},
	}
}

func printQuest(w io.Writer, cat *quest.Catalog, r *quest.Record) {
	fmt.Fprintln(w, StyleTitle.Render(r.Name)+" "+StyleDim.Render(fmt.Sprintf("#%d", r.ID)))
	printKeyValue(w, "Type", typeStyle(r.Type).Render(typeLabel(r.Type)))
	printKeyValue(w, "Reachable", yesNo(r.Reachable))
	if r.Repeatable {
		printKeyValue(w, "Repeatable", "yes")
	}
	if r.Issuer != nil {
		printKeyValue(w, "Issuer", fmt.Sprintf("map %d (%.1f, %.1f)", r.Issuer.Map, r.Issuer.X, r.Issuer.Z))
	}
	if r.Gil > 0 {
		printKeyValue(w, "Gil", fmt.Sprint(r.Gil))
	}

	for _, it := range r.Rewards.All() {
		line := fmt.Sprintf("%s x%d", it.Name, it.Count)
		if it.HQ {
			line += " (HQ)"
		}
		if it.Stain != "" {
			line += " dyed " + it.Stain
		}
		printKeyValue(w, "Reward", line)
	}
	if r.Job != nil {
		job := fmt.Sprintf("%s (%s)", r.Job.Name, r.Job.Abbreviation)
		if r.Job.Inferred {
			job += " via soul stone"
		}
		printKeyValue(w, "Job", job)
	}
	if r.Emote != nil {
		printKeyValue(w, "Emote", r.Emote.Name)
	}
	if r.Action != nil {
		printKeyValue(w, "Action", r.Action.Name)
	}
	for _, a := range r.GeneralActions {
		printKeyValue(w, "General action", a.Name)
	}
	for _, in := range r.Instances {
		printKeyValue(w, "Duty", in.Name)
	}
	if r.BeastTribe != nil {
		printKeyValue(w, "Tribe", r.BeastTribe.Name)
	}

	printKeyValue(w, "Requires", neighbours(cat, r.Prerequisites))
	printKeyValue(w, "Unlocks", neighbours(cat, r.Successors))
}

// neighbours formats quest ids with their names. Ids missing from the
// catalog are listed bare.
func neighbours(cat *quest.Catalog, ids []uint32) string {
	if len(ids) == 0 {
		return "-"
	}
	parts := make([]string, len(ids))
	for i, id := range ids {
		if r, ok := cat.Get(id); ok {
			parts[i] = fmt.Sprintf("%s (#%d)", r.Name, id)
		} else {
			parts[i] = fmt.Sprintf("#%d", id)
		}
	}
	return strings.Join(parts, ", ")
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
