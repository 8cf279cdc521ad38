package main

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"bookshelf/internal/catalog"
	"bookshelf/internal/engine"
)

func newEnrichCommand(ctx *commandContext) *cobra.Command {
	var domain, title, creator string
	var refresh, asJSON bool

	cmd := &cobra.Command{
		Use:   "enrich",
		Short: "Fetch metadata and ratings for one item",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := parseDomain(domain)
			if err != nil {
				return err
			}
			if strings.TrimSpace(title) == "" {
				return errors.New("--title is required")
			}
			item := catalog.Item{Title: title, Creator: creator, Domain: d}
			return ctx.withEngine(cmd, func(eng *engine.Engine) error {
				fetch := eng.Enrich
				if refresh {
					fetch = eng.Refresh
				}
				enriched, err := fetch(cmd.Context(), item)
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, enriched)
				}
				renderItem(cmd.OutOrStdout(), enriched)
				return nil
			})
		},
	}

	domainFlag(cmd, &domain)
	cmd.Flags().StringVarP(&title, "title", "t", "", "Item title")
	cmd.Flags().StringVar(&creator, "creator", "", "Author, director or host, when known")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "Bypass the cache and fetch again")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output JSON")
	return cmd
}
