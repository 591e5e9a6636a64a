package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/cvmatch/cv-match/internal/logger"
	"github.com/cvmatch/cv-match/internal/profile"
	"github.com/cvmatch/cv-match/internal/scoring"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "Rank a collection of job postings against a resume, best match first",
	Run: func(cmd *cobra.Command, _ []string) {
		rank(cmd)
	},
}

func init() {
	rootCmd.AddCommand(rankCmd)

	rankCmd.Flags().StringP("resume", "r", "", "path to the resume JSON file")
	rankCmd.Flags().String("jobs", "", "path to the jobs JSON file")
	rankCmd.Flags().IntP("limit", "l", 10, "maximum number of matches to report")
	rankCmd.MarkFlagRequired("resume")
	rankCmd.MarkFlagRequired("jobs")
}

func rank(cmd *cobra.Command) {
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
	jobsPath, _ := cmd.Flags().GetString("jobs")
	limit, _ := cmd.Flags().GetInt("limit")

	resume, err := profile.LoadResume(resumePath)
	if err != nil {
		logger.Fatal("loading the resume", zap.Error(err))
	}

	jobs, err := profile.LoadJobs(jobsPath)
	if err != nil {
		logger.Fatal("loading the jobs", zap.Error(err))
	}

	logger.Info("ranking jobs", zap.Int("count", jobs.Len()))

	engine, err := newAnalysisEngine(ctx, config, logger)
	if err != nil {
		logger.Fatal("building the analysis engine", zap.Error(err))
	}

	if err := engine.EnsureResumeEmbedding(ctx, resume); err != nil {
		logger.Fatal("embedding the resume", zap.Error(err))
	}
	if err := engine.EnsureJobEmbeddings(ctx, jobs.Items); err != nil {
		logger.Fatal("embedding the jobs", zap.Error(err))
	}

	weights, err := getScoringWeights()
	if err != nil {
		logger.Fatal("reading scoring weights", zap.Error(err))
	}

	results := scoringEngine(weights, logger).RankJobs(resume, jobs.Items, limit)

	for i, result := range results {
		job := jobs.FindByID(result.JobID)
		name := result.JobID
		if job != nil {
			name = fmt.Sprintf("%s (%s)", job.Title, job.Company)
		}
		fmt.Printf("%2d. %3d  %s\n", i+1, result.OverallScore, name)
		if len(result.MissingSkills) > 0 {
			fmt.Printf("         missing: %v\n", result.MissingSkills)
		}
	}
}

func scoringEngine(weights scoring.Weights, log *zap.Logger) *scoring.Engine {
	return scoring.NewEngine(weights, log)
}
