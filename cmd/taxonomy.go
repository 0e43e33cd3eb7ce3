package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/qbank/internal/taxonomy"
)

var taxonomyCmd = &cobra.Command{
	Use:   "taxonomy",
	Short: "Inspect and seed the segment / group / subject hierarchy",
}

var taxonomyListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the hierarchy",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		ctx := cmd.Context()
		segments, err := e.tax.ListSegments(ctx)
		if err != nil {
			return fmt.Errorf("list segments: %w", err)
		}
		if len(segments) == 0 {
			fmt.Println("No taxonomy loaded. Seed one with: qbank taxonomy load <file.yaml>")
			return nil
		}

		for _, seg := range segments {
			fmt.Printf("%s  %s\n", seg.Name, dim(seg.ID))
			groups, err := e.tax.ListGroups(ctx, seg.ID)
			if err != nil {
				return fmt.Errorf("list groups of %s: %w", seg.ID, err)
			}
			for _, g := range groups {
				fmt.Printf("  %s  %s\n", g.Name, dim(g.ID))
				subjects, err := e.tax.ListSubjects(ctx, g.ID)
				if err != nil {
					return fmt.Errorf("list subjects of %s: %w", g.ID, err)
				}
				for _, s := range subjects {
					fmt.Printf("    %s  %s\n", s.Name, dim(s.ID))
				}
			}
		}
		return nil
	},
}

var taxonomyLoadCmd = &cobra.Command{
	Use:   "load <file.yaml>",
	Short: "Add or rename hierarchy entries from a YAML document",
	Long: `load upserts every segment, group and subject in the file. Entries are
matched by id; existing entries not in the file are kept.

  segments:
    - id: k12
      name: School
      groups:
        - id: c10
          name: Class 10
          subjects:
            - {id: phy10, name: Physics}`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		tree, err := taxonomy.ParseTree(f)
		if err != nil {
			return err
		}

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		if err := e.store.TaxonomyRepo().LoadTree(cmd.Context(), tree); err != nil {
			return fmt.Errorf("load taxonomy: %w", err)
		}

		var groups, subjects int
		for _, s := range tree.Segments {
			groups += len(s.Groups)
			for _, g := range s.Groups {
				subjects += len(g.Subjects)
			}
		}
		fmt.Printf("Loaded %d segments, %d groups, %d subjects\n", len(tree.Segments), groups, subjects)
		return nil
	},
}

func init() {
	taxonomyCmd.AddCommand(taxonomyListCmd)
	taxonomyCmd.AddCommand(taxonomyLoadCmd)
}

func dim(id string) string {
	return "(" + id + ")"
}
