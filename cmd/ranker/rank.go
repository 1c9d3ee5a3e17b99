package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"alfredoptarigan/resume-ranker/internal/models"
	"alfredoptarigan/resume-ranker/internal/ranking"
)

const (
	outputTable = "table"
	outputJSON  = "json"
)

var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "Rank candidate embeddings from a JSON file against a job embedding",
	Long: `Reads {"job_embedding": [...], "candidates": [{"id": "...", "embedding": [...]}]}
from --input (or stdin with "-") and prints the candidates by descending
cosine similarity. Candidates with equal scores keep their input order.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runRank(cmd)
	},
}

func init() {
	rootCmd.AddCommand(rankCmd)

	rankCmd.Flags().StringP("input", "i", "", "JSON file with the job embedding and candidates, \"-\" reads stdin")
	rankCmd.Flags().IntP("top", "n", 0, "print only the first N candidates, 0 prints all")
	rankCmd.Flags().StringP("output", "o", outputTable, "output format: table or json")

	_ = rankCmd.MarkFlagRequired("input")
}

func runRank(cmd *cobra.Command) error {
	input, _ := cmd.Flags().GetString("input")
	top, _ := cmd.Flags().GetInt("top")
	output, _ := cmd.Flags().GetString("output")

	if output != outputTable && output != outputJSON {
		return fmt.Errorf("unknown output format %q", output)
	}
	if top < 0 {
		return fmt.Errorf("--top must not be negative, got %d", top)
	}

	req, err := readRankRequest(cmd, input)
	if err != nil {
		return err
	}

	candidates := make([]ranking.Candidate, len(req.Candidates))
	for i, c := range req.Candidates {
		candidates[i] = ranking.Candidate{ID: c.ID, Embedding: c.Embedding}
	}

	scores, err := ranking.Rank(req.JobEmbedding, candidates)
	if err != nil {
		return fmt.Errorf("failed to rank candidates: %w", err)
	}

	if top > 0 && top < len(scores) {
		scores = scores[:top]
	}

	if output == outputJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(models.RankVectorsResponse{Ranking: scores})
	}

	return printScores(cmd.OutOrStdout(), scores)
}

func readRankRequest(cmd *cobra.Command, input string) (*models.RankVectorsRequest, error) {
	var (
		data []byte
		err  error
	)
	if input == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(input)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}

	var req models.RankVectorsRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to decode input: %w", err)
	}
	return &req, nil
}

func printScores(w io.Writer, scores []ranking.Score) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tCANDIDATE\tSCORE")
	for i, s := range scores {
		fmt.Fprintf(tw, "%d\t%s\t%.4f\n", i+1, s.CandidateID, s.Score)
	}
	return tw.Flush()
}
