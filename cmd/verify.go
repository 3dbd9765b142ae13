package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/face-groups/internal/config"
	"github.com/kozaktomas/face-groups/internal/facegroup"
)

var verifyCmd = &cobra.Command{
	Use:   "verify [blob1 blob2]",
	Short: "Check whether two stored images show the same person",
	Long: `Download two images from blob storage, detect a face in each and ask
the Face API whether both faces belong to the same person.

Without arguments the blobs configured in VERIFY_BLOB1 and VERIFY_BLOB2 are
compared.`,
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) != 0 && len(args) != 2 {
			return fmt.Errorf("accepts 0 or 2 blob names, received %d", len(args))
		}
		return nil
	},
	RunE: runVerify,
}

func init() {
	rootCmd.AddCommand(verifyCmd)
	verifyCmd.Flags().String("container", "", "Blob container holding both images (VERIFY_CONTAINER)")
}

func runVerify(cmd *cobra.Command, args []string) error {
	a, err := newApp("verify", func(cfg *config.Config) {
		if changed(cmd, "container") {
			cfg.Verify.Container = mustGetString(cmd, "container")
		}
		if len(args) == 2 {
			cfg.Verify.Blob1, cfg.Verify.Blob2 = args[0], args[1]
		}
	})
	if err != nil {
		return err
	}
	defer a.close()

	vc := a.cfg.Verify
	if vc.Container == "" || vc.Blob1 == "" || vc.Blob2 == "" {
		return fmt.Errorf("container and both blob names are required")
	}

	fmt.Printf("Comparing %s/%s with %s/%s...\n", vc.Container, vc.Blob1, vc.Container, vc.Blob2)
	result, err := a.service.Verify(cmd.Context(), a.blobs.Container(vc.Container), vc.Blob1, vc.Blob2)
	if err != nil {
		var noFace *facegroup.NoFaceError
		if errors.As(err, &noFace) {
			fmt.Printf("No face detected in %s.\n", noFace.Image)
			return &reportedError{err: err}
		}
		return err
	}

	fmt.Println(result.Message())
	return nil
}
