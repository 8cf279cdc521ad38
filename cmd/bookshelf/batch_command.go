package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"bookshelf/internal/catalog"
	"bookshelf/internal/config"
	"bookshelf/internal/engine"
)

func newBatchCommand(ctx *commandContext) *cobra.Command {
	var domain, file string
	var skip int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Enrich a list of items read from a file or stdin",
		Long: "Each non-empty input line is either `title` or `title | creator`. Lines starting with # are ignored.\n" +
			"When a provider rate limits the run, completed items are still printed and the error names the --skip value to resume with.",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := parseDomain(domain)
			if err != nil {
				return err
			}
			if skip < 0 {
				return errors.New("--skip must not be negative")
			}

			input, closeInput, err := openBatchInput(cmd, file)
			if err != nil {
				return err
			}
			defer closeInput()

			items, err := readBatchItems(input, d)
			if err != nil {
				return err
			}
			if skip > len(items) {
				skip = len(items)
			}
			items = items[skip:]

			return ctx.withEngine(cmd, func(eng *engine.Engine) error {
				stderr := cmd.ErrOrStderr()
				results, runErr := eng.EnrichAll(cmd.Context(), items, func(done, total int) {
					fmt.Fprintf(stderr, "enriched %d/%d\n", done, total)
				})

				if asJSON {
					if results == nil {
						results = []*catalog.EnrichedItem{}
					}
					if err := writeJSON(cmd, results); err != nil {
						return err
					}
				} else {
					out := cmd.OutOrStdout()
					for i, item := range results {
						if i > 0 {
							fmt.Fprintln(out)
						}
						renderItem(out, item)
					}
				}

				if runErr != nil {
					return fmt.Errorf("batch stopped after %d of %d items; resume with --skip %d: %w", len(results), len(items), skip+len(results), runErr)
				}
				return nil
			})
		},
	}

	domainFlag(cmd, &domain)
	cmd.Flags().StringVarP(&file, "file", "f", "-", "Input file, or - for stdin")
	cmd.Flags().IntVar(&skip, "skip", 0, "Skip this many items from the start of the input")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output JSON")
	return cmd
}

func openBatchInput(cmd *cobra.Command, file string) (io.Reader, func(), error) {
	file = strings.TrimSpace(file)
	if file == "" || file == "-" {
		return cmd.InOrStdin(), func() {}, nil
	}
	path, err := config.ExpandPath(file)
	if err != nil {
		return nil, nil, fmt.Errorf("resolve input path: %w", err)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open input: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}

func readBatchItems(r io.Reader, domain catalog.Domain) ([]catalog.Item, error) {
	var items []catalog.Item
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		item, ok := parseBatchLine(scanner.Text(), domain)
		if !ok {
			continue
		}
		item.ID = strconv.Itoa(line)
		items = append(items, item)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	return items, nil
}

// parseBatchLine splits "title | creator". Blank lines and comments are skipped.
func parseBatchLine(raw string, domain catalog.Domain) (catalog.Item, bool) {
	line := strings.TrimSpace(raw)
	if line == "" || strings.HasPrefix(line, "#") {
		return catalog.Item{}, false
	}
	title, creator, _ := strings.Cut(line, "|")
	title = strings.TrimSpace(title)
	if title == "" {
		return catalog.Item{}, false
	}
	return catalog.Item{Title: title, Creator: strings.TrimSpace(creator), Domain: domain}, true
}
