package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/cvmatch/cv-match/internal/logger"
	"github.com/cvmatch/cv-match/internal/profile"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Score a resume against a single job posting",
	Run: func(cmd *cobra.Command, _ []string) {
		match(cmd)
	},
}

func init() {
	rootCmd.AddCommand(matchCmd)

	matchCmd.Flags().StringP("resume", "r", "", "path to the resume JSON file")
	matchCmd.Flags().String("job", "", "path to the job JSON file")
	matchCmd.Flags().Bool("save-embedding", false, "write the generated embedding back to the resume file")
	matchCmd.MarkFlagRequired("resume")
	matchCmd.MarkFlagRequired("job")
}

func match(cmd *cobra.Command) {
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
	jobPath, _ := cmd.Flags().GetString("job")
	saveEmbedding, _ := cmd.Flags().GetBool("save-embedding")

	resume, err := profile.LoadResume(resumePath)
	if err != nil {
		logger.Fatal("loading the resume", zap.Error(err))
	}

	job, err := profile.LoadJob(jobPath)
	if err != nil {
		logger.Fatal("loading the job", zap.Error(err))
	}

	engine, err := newAnalysisEngine(ctx, config, logger)
	if err != nil {
		logger.Fatal("building the analysis engine", zap.Error(err))
	}

	if err := engine.EnsureResumeEmbedding(ctx, resume); err != nil {
		logger.Fatal("embedding the resume", zap.Error(err))
	}
	if err := engine.EnsureJobEmbeddings(ctx, []*profile.Job{job}); err != nil {
		logger.Fatal("embedding the job", zap.Error(err))
	}

	if saveEmbedding {
		if err := profile.SaveResume(resumePath, resume); err != nil {
			logger.Fatal("saving the resume", zap.Error(err))
		}
	}

	weights, err := getScoringWeights()
	if err != nil {
		logger.Fatal("reading scoring weights", zap.Error(err))
	}

	result := scoringEngine(weights, logger).Score(resume, job)

	pretty, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		logger.Fatal("encoding the result", zap.Error(err))
	}
	fmt.Println(string(pretty))
}
