package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/face-groups/internal/annotate"
	"github.com/kozaktomas/face-groups/internal/config"
	"github.com/kozaktomas/face-groups/internal/facegroup"
)

var identifyCmd = &cobra.Command{
	Use:   "identify",
	Short: "Enroll the person group if needed and identify faces in an image",
	Long: `Run the full pipeline: make sure the person group exists (creating,
populating and training it when missing), download the query image, identify
every face in it and save an annotated copy with a box and name per face.

Use --skip-enroll to identify against an existing trained group only.`,
	Args: cobra.NoArgs,
	RunE: runIdentify,
}

func init() {
	rootCmd.AddCommand(identifyCmd)
	addEnrollmentFlags(identifyCmd)
	identifyCmd.Flags().String("image-url", "", "Query image URL (IDENTIFY_IMAGE_URL)")
	identifyCmd.Flags().StringP("output", "o", "", "Annotated image output path (IDENTIFY_OUTPUT)")
	identifyCmd.Flags().Bool("skip-enroll", false, "Do not check or create the person group")
	identifyCmd.Flags().Int("max-candidates", 0, "Candidates requested per face (IDENTIFY_MAX_CANDIDATES)")
}

func applyIdentifyFlags(cmd *cobra.Command, cfg *config.Config) {
	applyEnrollmentFlags(cmd, cfg)
	if changed(cmd, "image-url") {
		cfg.Identify.ImageURL = mustGetString(cmd, "image-url")
	}
	if changed(cmd, "output") {
		cfg.Identify.Output = mustGetString(cmd, "output")
	}
	if changed(cmd, "max-candidates") {
		cfg.Identify.MaxCandidates = mustGetInt(cmd, "max-candidates")
	}
}

func runIdentify(cmd *cobra.Command, args []string) error {
	a, err := newApp("identify", func(cfg *config.Config) { applyIdentifyFlags(cmd, cfg) })
	if err != nil {
		return err
	}
	defer a.close()

	ctx := cmd.Context()
	ic := a.cfg.Identify
	groupID := a.cfg.Enrollment.GroupID
	if ic.ImageURL == "" {
		return fmt.Errorf("query image URL is required (IDENTIFY_IMAGE_URL or --image-url)")
	}

	if !mustGetBool(cmd, "skip-enroll") {
		if _, err := enroll(cmd, a, false); err != nil {
			return err
		}
	}

	fmt.Printf("Fetching query image %s...\n", ic.ImageURL)
	image, err := facegroup.FetchImage(ctx, a.httpClient, ic.ImageURL, ic.MaxImageBytes)
	if err != nil {
		return err
	}

	faces, err := a.service.Identify(ctx, groupID, image)
	if err != nil {
		return err
	}
	if len(faces) == 0 {
		fmt.Println("No faces identified.")
		return nil
	}

	fmt.Printf("Identified %d face(s):\n", len(faces))
	for _, f := range faces {
		r := f.Rectangle
		if f.Known() {
			fmt.Printf("  %-20s confidence %.2f  at (%d,%d) %dx%d\n", f.Name, f.Confidence, r.Left, r.Top, r.Width, r.Height)
		} else {
			fmt.Printf("  %-20s at (%d,%d) %dx%d\n", f.Name, r.Left, r.Top, r.Width, r.Height)
		}
	}

	if ic.Output == "" {
		return nil
	}
	img, err := annotate.Decode(image)
	if err != nil {
		return err
	}
	if err := annotate.Render(img, faces, ic.Output); err != nil {
		return err
	}
	fmt.Printf("Annotated image saved to %s\n", ic.Output)
	return nil
}
