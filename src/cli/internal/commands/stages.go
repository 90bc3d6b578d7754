package commands

import (
	"github.com/spf13/cobra"
	"github.com/veedubyou/timbre/src/shared/config"
	"github.com/veedubyou/timbre/src/shared/stage/batch"
	"github.com/veedubyou/timbre/src/shared/stage/embedding"
	"github.com/veedubyou/timbre/src/shared/stage/mfcc"
	"github.com/veedubyou/timbre/src/shared/stage/separate"
	"github.com/veedubyou/timbre/src/shared/stage/standardize"
)

// dirFlags overrides the input and output directories the research layout
// would otherwise pick for a single stage
type dirFlags struct {
	input  string
	output string
}

func (d *dirFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&d.input, "input", "", "directory of .wav files to read")
	cmd.Flags().StringVar(&d.output, "output", "", "directory to write the results to")
}

func (d dirFlags) apply(b *config.Batch) {
	if d.input != "" {
		b.InputDir = d.input
	}
	if d.output != "" {
		b.OutputDir = d.output
	}
}

func newPreprocessCommand(flags *globalFlags) *cobra.Command {
	dirs := dirFlags{}

	cmd := &cobra.Command{
		Use:   "preprocess",
		Short: "Resample the raw choruses to 44.1 kHz with a short fade",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pipeline, err := flags.pipeline()
			if err != nil {
				return err
			}

			stageConfig := pipeline.Preprocess
			dirs.apply(&stageConfig.Batch)

			progress := newProgress(cmd.ErrOrStderr(), flags.noProgress)
			report, err := standardize.Preprocess(commandContext(cmd), stageConfig, progress)
			printReport(cmd.OutOrStdout(), report)
			return err
		},
	}

	dirs.register(cmd)
	return cmd
}

func newSeparateCommand(flags *globalFlags, deps Dependencies) *cobra.Command {
	dirs := dirFlags{}
	demucsBin := ""
	device := ""

	cmd := &cobra.Command{
		Use:   "separate",
		Short: "Isolate the vocals of every standardized chorus with demucs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pipeline, err := flags.pipeline()
			if err != nil {
				return err
			}

			separationConfig := pipeline.Separate
			dirs.apply(&separationConfig.Batch)
			if demucsBin != "" {
				separationConfig.DemucsBinPath = demucsBin
			}
			if device != "" {
				separationConfig.Device = device
			}

			if err := config.Validate(separationConfig); err != nil {
				return err
			}

			report, err := runSeparate(cmd, flags, deps, separationConfig)
			printReport(cmd.OutOrStdout(), report)
			return err
		},
	}

	dirs.register(cmd)
	cmd.Flags().StringVar(&demucsBin, "demucs", "", "path to the demucs binary")
	cmd.Flags().StringVar(&device, "device", "", "cpu or cuda")
	return cmd
}

func runSeparate(cmd *cobra.Command, flags *globalFlags, deps Dependencies, separationConfig config.Separation) (batch.Report, error) {
	demucs, err := separate.NewDemucs(separationConfig, deps.Executor)
	if err != nil {
		return batch.Report{}, err
	}

	stage, err := separate.NewStage(separationConfig, demucs)
	if err != nil {
		return batch.Report{}, err
	}

	progress := newProgress(cmd.ErrOrStderr(), flags.noProgress)
	return stage.Run(commandContext(cmd), progress)
}

func newPostprocessCommand(flags *globalFlags) *cobra.Command {
	dirs := dirFlags{}
	trimDuration := 0.0

	cmd := &cobra.Command{
		Use:   "postprocess",
		Short: "Mono, normalize, trim and fade the separated vocals",
		Long: `postprocess makes one pass per sample rate. Each pass writes to
<output>_<rate>, e.g. final_stems_22050 and final_stems_44100.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pipeline, err := flags.pipeline()
			if err != nil {
				return err
			}

			postprocessConfig := pipeline.Postprocess
			dirs.apply(&postprocessConfig.Batch)
			if cmd.Flags().Changed("trim") {
				postprocessConfig.TrimDuration = trimDuration
			}

			if err := config.Validate(postprocessConfig); err != nil {
				return err
			}

			progress := newProgress(cmd.ErrOrStderr(), flags.noProgress)
			reports, err := standardize.Postprocess(commandContext(cmd), postprocessConfig, progress)
			for _, report := range reports {
				printReport(cmd.OutOrStdout(), report)
			}
			return err
		},
	}

	dirs.register(cmd)
	cmd.Flags().Float64Var(&trimDuration, "trim", 0, "seconds to keep from the start of each vocal, 0 keeps everything")
	return cmd
}

func newMFCCCommand(flags *globalFlags) *cobra.Command {
	dirs := dirFlags{}

	cmd := &cobra.Command{
		Use:   "mfcc",
		Short: "Extract one mean MFCC vector per 22.05 kHz vocal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pipeline, err := flags.pipeline()
			if err != nil {
				return err
			}

			mfccConfig := pipeline.MFCC
			dirs.apply(&mfccConfig.Batch)

			progress := newProgress(cmd.ErrOrStderr(), flags.noProgress)
			result, err := mfcc.NewStage(mfccConfig).Run(commandContext(cmd), progress)
			printReport(cmd.OutOrStdout(), result.Report)
			printDataset(cmd.OutOrStdout(), result.DatasetPath)
			return err
		},
	}

	dirs.register(cmd)
	return cmd
}

func newEmbedCommand(flags *globalFlags, deps Dependencies) *cobra.Command {
	dirs := dirFlags{}
	openL3Bin := ""

	cmd := &cobra.Command{
		Use:   "embed",
		Short: "Extract OpenL3 embeddings per 44.1 kHz vocal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pipeline, err := flags.pipeline()
			if err != nil {
				return err
			}

			embeddingConfig := pipeline.Embedding
			dirs.apply(&embeddingConfig.Batch)
			if openL3Bin != "" {
				embeddingConfig.OpenL3BinPath = openL3Bin
			}

			result, err := runEmbed(cmd, flags, deps, embeddingConfig)
			printReport(cmd.OutOrStdout(), result.Report)
			printDataset(cmd.OutOrStdout(), result.DatasetPath)
			return err
		},
	}

	dirs.register(cmd)
	cmd.Flags().StringVar(&openL3Bin, "openl3", "", "path to the openl3 binary")
	return cmd
}

func runEmbed(cmd *cobra.Command, flags *globalFlags, deps Dependencies, embeddingConfig config.Embedding) (embedding.Result, error) {
	model, err := embedding.NewOpenL3(embeddingConfig, deps.Executor)
	if err != nil {
		return embedding.Result{}, err
	}

	stage, err := embedding.NewStage(embeddingConfig, model)
	if err != nil {
		return embedding.Result{}, err
	}

	progress := newProgress(cmd.ErrOrStderr(), flags.noProgress)
	return stage.Run(commandContext(cmd), progress)
}
