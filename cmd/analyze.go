package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/cvmatch/cv-match/internal/analysis"
	"github.com/cvmatch/cv-match/internal/logger"
	"github.com/cvmatch/cv-match/internal/profile"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	PromptShowReport          = "Show the full report"
	PromptListRecommendations = "List recommendations"
	PromptReportToFile        = "Dump the report to file"
	PromptExit                = "Exit"
)

var errExit = errors.New("exit requested")

var analyzePrompt = promptui.Select{
	Label: "Resume analyzed. What next?",
	Items: []string{PromptShowReport, PromptListRecommendations, PromptReportToFile, PromptExit},
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run the AI analysis for a resume and report on its quality",
	Run: func(cmd *cobra.Command, _ []string) {
		analyze(cmd)
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringP("resume", "r", "", "path to the resume JSON file")
	analyzeCmd.Flags().StringP("output", "o", "", "write the report to this file instead of the interactive menu")
	analyzeCmd.MarkFlagRequired("resume")
}

// analyze is the entrypoint for the analyze command.
func analyze(cmd *cobra.Command) {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	resumePath, _ := cmd.Flags().GetString("resume")
	output, _ := cmd.Flags().GetString("output")

	resume, err := profile.LoadResume(resumePath)
	if err != nil {
		logger.Fatal("loading the resume", zap.Error(err))
	}

	engine, err := newAnalysisEngine(ctx, config, logger)
	if err != nil {
		logger.Fatal("building the analysis engine", zap.Error(err))
	}

	report, err := engine.Analyze(ctx, resume)
	if err != nil {
		logger.Fatal("analyzing the resume", zap.Error(err))
	}

	logger.Info("analysis completed",
		zap.String("resume_id", resume.ID),
		zap.Int("overall_score", report.OverallScore),
		zap.Bool("degraded", report.Degraded()),
	)

	if output != "" {
		if err := writeReport(output, report); err != nil {
			logger.Fatal("writing the report", zap.Error(err))
		}
		logger.Info("report written", zap.String("file", output))
		return
	}

	if err := reportMenu(report, logger); err != nil && !errors.Is(err, errExit) {
		logger.Fatal("running the report menu", zap.Error(err))
	}
}

// reportMenu loops over the interactive actions until the user exits.
func reportMenu(report *analysis.Report, logger *zap.Logger) error {
	for {
		_, action, err := analyzePrompt.Run()
		if err != nil {
			return fmt.Errorf("prompt failed: %w", err)
		}

		if err := handleReportAction(action, report, logger); err != nil {
			return err
		}
	}
}

func handleReportAction(action string, report *analysis.Report, logger *zap.Logger) error {
	switch action {
	case PromptShowReport:
		pretty, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(pretty))

	case PromptListRecommendations:
		if len(report.Recommendations) == 0 {
			fmt.Println("No recommendations. The resume looks good.")
			return nil
		}
		for i, rec := range report.Recommendations {
			fmt.Printf("%d. [%s] %s\n", i+1, rec.Priority, rec.Message)
		}

	case PromptReportToFile:
		file := fmt.Sprintf("%s-report.json", report.ResumeID)
		if err := writeReport(file, report); err != nil {
			return err
		}
		logger.Info("report written", zap.String("file", file))

	case PromptExit:
		return errExit
	}

	return nil
}

func writeReport(path string, report *analysis.Report) error {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
