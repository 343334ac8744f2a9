package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/warp/party-budget/budget"
	"github.com/warp/party-budget/catalog"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "List catalog templates",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		cat := catalog.Default()
		if cfg.Catalog.File != "" {
			if cat, err = catalog.LoadFile(cfg.Catalog.File); err != nil {
				return err
			}
		}
		kind, _ := cmd.Flags().GetString("kind")
		if kind != "" && !budget.Kind(kind).Valid() {
			return fmt.Errorf("%w: kind %q", budget.ErrInvalidFieldValue, kind)
		}
		return printCatalog(cmd.OutOrStdout(), cat.List(budget.Kind(kind)))
	},
}

func init() {
	catalogCmd.Flags().String("kind", "", "only list one kind: menu, meal, activity, transport, accommodation")
}

func printCatalog(out io.Writer, templates []budget.Template) error {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tKIND\tNAME\tPRICE")
	for _, t := range templates {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", t.ID, t.Kind, t.Name, priceLabel(t))
	}
	return tw.Flush()
}

func priceLabel(t budget.Template) string {
	switch {
	case t.Menu != nil:
		return t.Menu.PricePerPerson.StringFixed(2) + " / person"
	case t.Meal != nil:
		return t.Meal.PricePerPerson.StringFixed(2) + " / person"
	case t.Activity != nil:
		return t.Activity.BasePrice.StringFixed(2)
	case t.Transport != nil && t.Transport.Basis == budget.BasisPerGuest:
		return t.Transport.PricePerGuest.StringFixed(2) + " / guest"
	case t.Transport != nil:
		return t.Transport.PricePerHour.StringFixed(2) + " / hour"
	case t.Accommodation != nil:
		return t.Accommodation.PricePerNight.StringFixed(2) + " / night"
	}
	return "-"
}
