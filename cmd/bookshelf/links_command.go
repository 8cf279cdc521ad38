package main

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"bookshelf/internal/catalog"
	"bookshelf/internal/engine"
)

func newLinksCommand(ctx *commandContext) *cobra.Command {
	var domain, title, creator string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "links",
		Short: "Print rating site search links without contacting any provider",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := parseDomain(domain)
			if err != nil {
				return err
			}
			if strings.TrimSpace(title) == "" {
				return errors.New("--title is required")
			}
			return ctx.withEngine(cmd, func(eng *engine.Engine) error {
				links := eng.Links(catalog.Item{Title: title, Creator: creator, Domain: d})
				if asJSON {
					if links == nil {
						links = []catalog.RatingEntry{}
					}
					return writeJSON(cmd, links)
				}
				out := cmd.OutOrStdout()
				renderRatings(out, links, shouldPrettyPrint(out))
				return nil
			})
		},
	}

	domainFlag(cmd, &domain)
	cmd.Flags().StringVarP(&title, "title", "t", "", "Item title")
	cmd.Flags().StringVar(&creator, "creator", "", "Author, director or host, when known")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output JSON")
	return cmd
}
