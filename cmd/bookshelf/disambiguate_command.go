package main

import (
	"strings"

	"github.com/spf13/cobra"

	"bookshelf/internal/engine"
)

func newDisambiguateCommand(ctx *commandContext) *cobra.Command {
	var domain string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "disambiguate TITLE",
		Short: "Find out who created a title",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := parseDomain(domain)
			if err != nil {
				return err
			}
			title := strings.Join(args, " ")
			return ctx.withEngine(cmd, func(eng *engine.Engine) error {
				res, err := eng.DisambiguateCreator(cmd.Context(), d, title)
				if err != nil {
					return err
				}
				if asJSON {
					if res.Creators == nil {
						res.Creators = []string{}
					}
					return writeJSON(cmd, res)
				}
				renderResolution(cmd.OutOrStdout(), title, res)
				return nil
			})
		},
	}

	domainFlag(cmd, &domain)
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output JSON")
	return cmd
}
