package commands

import (
	"github.com/apex/log"
	"github.com/spf13/cobra"
	"github.com/veedubyou/timbre/src/shared/stage/mfcc"
	"github.com/veedubyou/timbre/src/shared/stage/standardize"
)

func newPipelineCommand(flags *globalFlags, deps Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "pipeline",
		Short: "Run every stage in order on the research layout under --root",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pipeline, err := flags.pipeline()
			if err != nil {
				return err
			}

			ctx := commandContext(cmd)
			out := cmd.OutOrStdout()
			progress := newProgress(cmd.ErrOrStderr(), flags.noProgress)

			log.WithField("root", flags.root).Info("Running the full pipeline")

			report, err := standardize.Preprocess(ctx, pipeline.Preprocess, progress)
			printReport(out, report)
			if err != nil {
				return err
			}

			report, err = runSeparate(cmd, flags, deps, pipeline.Separate)
			printReport(out, report)
			if err != nil {
				return err
			}

			reports, err := standardize.Postprocess(ctx, pipeline.Postprocess, progress)
			for _, report := range reports {
				printReport(out, report)
			}
			if err != nil {
				return err
			}

			mfccResult, err := mfcc.NewStage(pipeline.MFCC).Run(ctx, progress)
			printReport(out, mfccResult.Report)
			printDataset(out, mfccResult.DatasetPath)
			if err != nil {
				return err
			}

			embeddingResult, err := runEmbed(cmd, flags, deps, pipeline.Embedding)
			printReport(out, embeddingResult.Report)
			printDataset(out, embeddingResult.DatasetPath)
			return err
		},
	}
}
