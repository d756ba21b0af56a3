// File: cmd/analyze.go
package cmd

import (
	"fmt"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/riku-sakamoto/manabo-cli/api/schemas"
	"github.com/riku-sakamoto/manabo-cli/internal/docgen"
	"github.com/riku-sakamoto/manabo-cli/internal/observability"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// newAnalyzeCmd creates and configures the `analyze` command.
func newAnalyzeCmd() *cobra.Command {
	var (
		includeHTML       bool
		includeScreenshot bool
		includeNetwork    bool
		requirements      bool
		failFast          bool
		username          string
		password          string
	)

	analyzeCmd := &cobra.Command{
		Use:   "analyze [urls...]",
		Short: "Analyzes portal pages and prints their structural model as JSON",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := observability.GetLogger()

			// Requirements generation needs the captured markup and network
			// calls regardless of the output flags.
			opts := schemas.AnalyzeOptions{
				IncludeHTML:        includeHTML || requirements,
				IncludeScreenshot:  includeScreenshot,
				IncludeNetworkLogs: includeNetwork || requirements,
				FailFast:           failFast,
			}

			var generator schemas.DocGenerator
			if requirements {
				g, err := docgen.New(appConfig.Generator, logger)
				if err != nil {
					return err
				}
				generator = g
			}

			components, err := buildEngine(ctx, appConfig, logger)
			if err != nil {
				return err
			}
			defer components.Shutdown()

			if username != "" || password != "" {
				components.Sessions.SetCredentials(schemas.Credentials{
					Username: username,
					Password: password,
				})
			}

			out := cmd.OutOrStdout()
			for _, url := range args {
				result, err := components.Analyzer.Analyze(ctx, schemas.PageTarget{URL: url}, opts)
				if err != nil {
					return err
				}

				if generator != nil && result.Success {
					doc, err := generator.Generate(ctx, schemas.DocInput{
						URL:         result.Target.URL,
						DOMContent:  result.RawContent,
						NetworkLogs: result.NetworkLogs,
					})
					if err != nil {
						logger.Warn("Requirements generation failed.", zap.String("url", url), zap.Error(err))
					} else {
						fmt.Fprintln(out, doc)
						continue
					}
				}

				// Trim echoes the caller did not ask for before printing.
				printed := *result
				if !includeHTML {
					printed.RawContent = ""
				}
				if !includeNetwork {
					printed.NetworkLogs = nil
				}

				encoded, err := json.MarshalIndent(&printed, "", "  ")
				if err != nil {
					return fmt.Errorf("failed to serialize analysis result: %w", err)
				}
				fmt.Fprintln(out, string(encoded))
			}
			return nil
		},
	}

	analyzeCmd.Flags().BoolVar(&includeHTML, "include-html", false, "include the captured markup in the result")
	analyzeCmd.Flags().BoolVar(&includeScreenshot, "screenshot", false, "capture a full-page screenshot")
	analyzeCmd.Flags().BoolVar(&includeNetwork, "network", false, "include observed network responses in the result")
	analyzeCmd.Flags().BoolVar(&requirements, "requirements", false, "generate a requirements document instead of raw structure")
	analyzeCmd.Flags().BoolVar(&failFast, "fail-fast", false, "surface analysis failures as errors instead of structured results")
	analyzeCmd.Flags().StringVarP(&username, "username", "u", "", "portal username (falls back to CHUKYO_USERNAME)")
	analyzeCmd.Flags().StringVarP(&password, "password", "p", "", "portal password (falls back to CHUKYO_PASSWORD)")
	return analyzeCmd
}
