package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/Zoorn/logging2/conf"
)

type documentInfo struct {
	Identifier string `json:"identifier"`
	Format     string `json:"format"`
	Source     string `json:"source"`
}

func newListCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the configuration documents visible across all sources",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			infos, err := collectDocuments(ctx.namedSources())
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, infos)
			}
			if len(infos) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No configuration documents found")
				return nil
			}
			rows := make([][]string, 0, len(infos))
			for _, info := range infos {
				rows = append(rows, []string{info.Identifier, info.Format, info.Source})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Identifier", "Format", "Source"}, rows))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON instead of a table")
	return cmd
}

// collectDocuments enumerates identifiers per source in precedence order, so
// an identifier shadowed by an earlier directory reports the source that
// actually resolves it.
func collectDocuments(named []namedSource) ([]documentInfo, error) {
	seen := make(map[string]struct{})
	var infos []documentInfo
	for _, ns := range named {
		lister, ok := ns.src.(conf.Lister)
		if !ok {
			continue
		}
		names, err := lister.Names()
		if err != nil {
			return nil, err
		}
		for _, name := range names {
			if _, dup := seen[name]; dup {
				continue
			}
			seen[name] = struct{}{}
			_, format, err := ns.src.Open(name)
			if err != nil {
				return nil, fmt.Errorf("open %s in %s: %w", name, ns.label, err)
			}
			infos = append(infos, documentInfo{
				Identifier: name,
				Format:     string(format),
				Source:     ns.label,
			})
		}
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Identifier < infos[j].Identifier })
	return infos, nil
}
