package main

import (
	"context"
	"fmt"
	"os"

	"github.com/flaneur2020/pngpong/pngpong"
	"github.com/flaneur2020/pngpong/pngpong/logger"
	"github.com/flaneur2020/pngpong/pngpong/storage"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var (
	logLevel   string
	verbose    bool
	noProgress bool
	jobs       int
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "pngpong",
		Short:         "Hide and retrieve messages in PNG files",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := logger.ParseLogLevel(logLevel)
			if err != nil {
				return err
			}
			if verbose && level < logger.LogLevelInfo {
				level = logger.LogLevelInfo
			}
			logger.SetLogLevel(level)
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "error", "Log level: silent, error, warn, info or debug")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable info logging")

	// encode command
	encodeCmd := &cobra.Command{
		Use:   "encode <FILE> <CHUNK_TYPE> <MESSAGE> [OUTPUT]",
		Short: "Hide a message in a new chunk appended to a PNG file",
		Args:  cobra.RangeArgs(3, 4),
		RunE:  runEncode,
	}

	// decode command
	decodeCmd := &cobra.Command{
		Use:   "decode <FILE> <CHUNK_TYPE>",
		Short: "Print the message hidden in the first chunk of the given type",
		Args:  cobra.ExactArgs(2),
		RunE:  runDecode,
	}

	// remove command
	removeCmd := &cobra.Command{
		Use:   "remove <FILE> <CHUNK_TYPE>",
		Short: "Remove the first chunk of the given type from a PNG file",
		Args:  cobra.ExactArgs(2),
		RunE:  runRemove,
	}

	// print command
	printCmd := &cobra.Command{
		Use:   "print <FILE>...",
		Short: "List the chunks of one or more PNG files",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runPrint,
	}
	printCmd.Flags().BoolVar(&noProgress, "no-progress", false, "Disable progress bar when printing several files")
	printCmd.Flags().IntVar(&jobs, "jobs", pngpong.DefaultJobs, "Number of files decoded concurrently")

	rootCmd.AddCommand(encodeCmd, decodeCmd, removeCmd, printCmd)

	return rootCmd
}

func newEditor() *pngpong.Editor {
	return pngpong.NewEditor(storage.NewLocalStorage())
}

func runEncode(cmd *cobra.Command, args []string) error {
	path, chunkType, message := args[0], args[1], args[2]

	outputPath := ""
	if len(args) > 3 {
		outputPath = args[3]
	}

	return newEditor().Encode(cmd.Context(), path, chunkType, []byte(message), outputPath)
}

func runDecode(cmd *cobra.Command, args []string) error {
	message, err := newEditor().Decode(cmd.Context(), args[0], args[1])
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), message)
	return nil
}

func runRemove(cmd *cobra.Command, args []string) error {
	removed, err := newEditor().Remove(cmd.Context(), args[0], args[1])
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", removed)
	return nil
}

func runPrint(cmd *cobra.Command, args []string) error {
	var progress pngpong.ProgressCallback
	var bar *progressbar.ProgressBar
	if len(args) > 1 && !noProgress {
		bar = progressbar.NewOptions(len(args),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionSetDescription("Reading"),
			progressbar.OptionClearOnFinish(),
		)
		progress = func(done, total int) {
			bar.Set(done)
		}
	}

	summaries, err := newEditor().PrintAll(cmd.Context(), args, jobs, progress)
	if bar != nil {
		bar.Finish()
	}
	if err != nil {
		return err
	}

	for i, s := range summaries {
		if i > 0 {
			fmt.Fprintln(cmd.OutOrStdout())
		}
		fmt.Fprint(cmd.OutOrStdout(), s)
	}
	return nil
}
