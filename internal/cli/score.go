package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"esg-assessment-service/internal/app"
	"esg-assessment-service/internal/domain"
	"esg-assessment-service/internal/infra/file"
	"esg-assessment-service/internal/scoring"
	"github.com/spf13/cobra"
)

type scoreOptions struct {
	catalogPath   string
	responsesPath string
	industry      string
	outPath       string
}

// NewScoreCmd scores a responses file offline and prints the report as JSON.
func NewScoreCmd() *cobra.Command {
	opts := scoreOptions{}
	cmd := &cobra.Command{
		Use:   "score",
		Short: "Compute a report from a catalog and a responses file",
		Long: "Responses may be a saved draft snapshot or a plain JSON object " +
			"mapping question IDs to answer values.",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if opts.outPath != "" {
				f, err := os.Create(opts.outPath)
				if err != nil {
					return err
				}
				defer f.Close()
				out = f
			}
			return runScore(opts, out, time.Now())
		},
	}
	cmd.Flags().StringVar(&opts.catalogPath, "catalog", defaultCatalogPath, "path to YAML catalog")
	cmd.Flags().StringVar(&opts.responsesPath, "responses", "", "path to JSON responses or draft")
	cmd.Flags().StringVar(&opts.industry, "industry", scoring.OtherIndustry, "industry benchmark to compare against")
	cmd.Flags().StringVarP(&opts.outPath, "out", "o", "", "write the report to a file instead of stdout")
	_ = cmd.MarkFlagRequired("responses")
	return cmd
}

func runScore(opts scoreOptions, out io.Writer, now time.Time) error {
	catalog, err := file.ReadCatalog(opts.catalogPath)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(opts.responsesPath)
	if err != nil {
		return err
	}
	responses, err := parseResponses(data)
	if err != nil {
		return fmt.Errorf("%s: %w", opts.responsesPath, err)
	}

	report := app.BuildReport(responses, catalog, now, scoring.WithIndustry(opts.industry))
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

// parseResponses accepts a draft snapshot or a {questionId: value} object.
func parseResponses(data []byte) (map[string]domain.Response, error) {
	if state, err := app.DecodeDraft(data); err == nil {
		return state.Responses, nil
	} else if !errors.Is(err, domain.ErrCorruptDraft) {
		return nil, err
	}

	var values map[string]domain.Value
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("parse responses: %w", err)
	}
	responses := make(map[string]domain.Response, len(values))
	for id, v := range values {
		if v.IsEmpty() {
			continue
		}
		responses[id] = domain.Response{QuestionID: id, Value: v}
	}
	return responses, nil
}
