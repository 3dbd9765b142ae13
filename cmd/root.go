package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	captureDir string
	configPath string
	logFormat  string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "face-groups",
	Short: "Enroll, identify and verify faces with Azure Face and Blob Storage",
	Long: `Face Groups builds an Azure Face person group from images kept in Azure
Blob Storage (one folder per person), trains it, and identifies the people
in a query image. It can also verify whether two stored images show the
same person.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		printError(os.Stderr, err)
		os.Exit(1)
	}
}

// reportedError marks an error the command already explained to the user.
// It still fails the run but is not printed again.
type reportedError struct {
	err error
}

func (e *reportedError) Error() string { return e.err.Error() }
func (e *reportedError) Unwrap() error { return e.err }

func printError(w io.Writer, err error) {
	var reported *reportedError
	if errors.As(err, &reported) {
		return
	}
	fmt.Fprintln(w, "Error:", err)
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Optional YAML config file (overrides built-in defaults)")
	rootCmd.PersistentFlags().StringVar(&captureDir, "capture", "", "Directory to save Face API responses for testing")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "Log format: console or json (default from config)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

func initConfig() {
	// .env file is optional, don't fail if not found
	_ = godotenv.Load()
}
