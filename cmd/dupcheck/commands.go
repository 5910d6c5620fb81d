package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/josegonzalez/dupcheck/pkg/dupcheck"
	"github.com/josegonzalez/dupcheck/pkg/source"
)

func newDetectCmd(a *app) *cobra.Command {
	var (
		entityName    string
		candidatePath string
		poolPath      string
		format        string
		maxResults    int
	)

	cmd := &cobra.Command{
		Use:   "detect",
		Short: "Rank the pool records that likely duplicate the candidate",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}
			entity, err := dupcheck.ParseEntityType(entityName)
			if err != nil {
				return err
			}
			candidate, err := readRecord(entity, candidatePath)
			if err != nil {
				return fmt.Errorf("reading candidate: %w", err)
			}

			var opts []dupcheck.Option
			if maxResults > 0 {
				opts = append(opts, dupcheck.WithMaxResults(maxResults))
			}
			d, err := a.detector(opts...)
			if err != nil {
				return err
			}
			defer d.Close()

			src, err := source.Create("file", source.Options{Path: poolPath, Logger: a.logger})
			if err != nil {
				return fmt.Errorf("opening pool: %w", err)
			}
			defer src.Close()

			result, err := d.DetectFromSource(cmd.Context(), entity, candidate, src)
			if err != nil {
				return err
			}

			if format == "json" {
				return writeJSON(cmd.OutOrStdout(), result)
			}
			writeResult(cmd.OutOrStdout(), result)
			return nil
		},
	}

	cmd.Flags().StringVar(&entityName, "entity", "", "entity type (lead, account, contact)")
	cmd.Flags().StringVar(&candidatePath, "candidate", "", "YAML or JSON file holding the candidate record")
	cmd.Flags().StringVar(&poolPath, "pool", "", "YAML or JSON dataset of existing records")
	cmd.Flags().StringVar(&format, "format", "text", "output format (json, text)")
	cmd.Flags().IntVar(&maxResults, "max-results", 0, "matches to keep (default from configuration)")
	_ = cmd.MarkFlagRequired("entity")
	_ = cmd.MarkFlagRequired("candidate")
	_ = cmd.MarkFlagRequired("pool")

	return cmd
}

func writeResult(w io.Writer, result *dupcheck.DuplicateDetectionResult) {
	if !result.HasDuplicates {
		fmt.Fprintln(w, "No duplicates found")
		return
	}

	fmt.Fprintf(w, "Found duplicates (confidence: %s)\n\n", result.Confidence)
	for i, m := range result.Matches {
		fmt.Fprintf(w, "%d. %s\n", i+1, m.ID)
		fmt.Fprintf(w, "   Score: %d\n", m.Score)
		fmt.Fprintf(w, "   Matched: %s\n", strings.Join(m.MatchedFields, ", "))
	}
}

func newExplainCmd(a *app) *cobra.Command {
	var (
		entityName    string
		candidatePath string
		existingPath  string
		format        string
	)

	cmd := &cobra.Command{
		Use:   "explain",
		Short: "Show how every rule scores one candidate/existing pair",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}
			entity, err := dupcheck.ParseEntityType(entityName)
			if err != nil {
				return err
			}
			candidate, err := readRecord(entity, candidatePath)
			if err != nil {
				return fmt.Errorf("reading candidate: %w", err)
			}
			existing, err := readRecord(entity, existingPath)
			if err != nil {
				return fmt.Errorf("reading existing record: %w", err)
			}

			d, err := a.detector()
			if err != nil {
				return err
			}
			defer d.Close()

			exp, err := d.Explain(entity, candidate, existing)
			if err != nil {
				return err
			}

			if format == "json" {
				return writeJSON(cmd.OutOrStdout(), exp)
			}
			writeExplanation(cmd.OutOrStdout(), exp)
			return nil
		},
	}

	cmd.Flags().StringVar(&entityName, "entity", "", "entity type (lead, account, contact)")
	cmd.Flags().StringVar(&candidatePath, "candidate", "", "YAML or JSON file holding the candidate record")
	cmd.Flags().StringVar(&existingPath, "existing", "", "YAML or JSON file holding the existing record")
	cmd.Flags().StringVar(&format, "format", "text", "output format (json, text)")
	_ = cmd.MarkFlagRequired("entity")
	_ = cmd.MarkFlagRequired("candidate")
	_ = cmd.MarkFlagRequired("existing")

	return cmd
}

func writeExplanation(w io.Writer, exp *dupcheck.Explanation) {
	for _, r := range exp.Rules {
		mark := " "
		if r.Fired {
			mark = "+"
		}
		sim := "n/a"
		if r.Present {
			sim = fmt.Sprintf("%d (jaro-winkler %d)", r.Similarity, r.ReferenceSimilarity)
		}
		fmt.Fprintf(w, "%s %-18s %3d  %s\n", mark, r.Label, r.Points, sim)
	}

	verdict := "excluded"
	if exp.Admitted {
		verdict = "admitted"
	}
	fmt.Fprintf(w, "\nScore: %d (threshold %d, %s)\n", exp.Score, exp.Threshold, verdict)
}

func newSimilarityCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "similarity A B",
		Short: "Score two values with the similarity heuristic",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := a.detector()
			if err != nil {
				return err
			}
			defer d.Close()

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Similarity: %d\n", d.Similarity(args[0], args[1]))
			fmt.Fprintf(w, "Jaro-Winkler: %d\n", d.ReferenceSimilarity(args[0], args[1]))
			return nil
		},
	}
}

func newNormalizeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "normalize VALUE...",
		Short: "Print the normalized form of each value",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := a.detector()
			if err != nil {
				return err
			}
			defer d.Close()

			for _, v := range args {
				fmt.Fprintln(cmd.OutOrStdout(), d.Normalize(v))
			}
			return nil
		},
	}
}
