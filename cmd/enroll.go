package cmd

import (
	"fmt"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/kozaktomas/face-groups/internal/config"
	"github.com/kozaktomas/face-groups/internal/facegroup"
)

var enrollCmd = &cobra.Command{
	Use:   "enroll",
	Short: "Create, populate and train the person group",
	Long: `Create the person group if it does not exist yet, add one person per
folder found under <root>/<person>/ in the enrollment container with every
matching image as a face, and train the group.

An existing group is left untouched unless --retrain is given.`,
	Args: cobra.NoArgs,
	RunE: runEnroll,
}

func init() {
	rootCmd.AddCommand(enrollCmd)
	addEnrollmentFlags(enrollCmd)
	enrollCmd.Flags().Bool("retrain", false, "Train the group even if it already existed")
}

// addEnrollmentFlags registers the flags shared by enroll and identify.
func addEnrollmentFlags(cmd *cobra.Command) {
	cmd.Flags().String("group", "", "Person group id (default from PERSON_GROUP_ID)")
	cmd.Flags().String("name", "", "Person group display name (defaults to the group id)")
	cmd.Flags().String("container", "", "Blob container holding enrollment images (ENROLLMENT_CONTAINER)")
	cmd.Flags().String("root", "", "Blob prefix with one folder per person (ENROLLMENT_ROOT)")
	cmd.Flags().StringSlice("ext", nil, "Image extensions to enroll (ENROLLMENT_EXTENSIONS)")
}

func applyEnrollmentFlags(cmd *cobra.Command, cfg *config.Config) {
	applyGroupFlag(cmd, cfg)
	if changed(cmd, "name") {
		cfg.Enrollment.GroupName = mustGetString(cmd, "name")
	}
	if changed(cmd, "container") {
		cfg.Enrollment.Container = mustGetString(cmd, "container")
	}
	if changed(cmd, "root") {
		cfg.Enrollment.Root = mustGetString(cmd, "root")
	}
	if changed(cmd, "ext") {
		cfg.Enrollment.Extensions = mustGetStringSlice(cmd, "ext")
	}
}

func runEnroll(cmd *cobra.Command, args []string) error {
	a, err := newApp("enroll", func(cfg *config.Config) { applyEnrollmentFlags(cmd, cfg) })
	if err != nil {
		return err
	}
	defer a.close()

	_, err = enroll(cmd, a, mustGetBool(cmd, "retrain"))
	return err
}

// enroll runs provisioning and training and prints a summary.
func enroll(cmd *cobra.Command, a *app, retrain bool) (*facegroup.EnrollResult, error) {
	if err := a.cfg.ValidateEnrollment(); err != nil {
		return nil, err
	}
	ec := a.cfg.Enrollment
	store := a.blobs.Container(ec.Container)

	fmt.Printf("Person group: %s\n", ec.GroupID)
	fmt.Printf("Enrollment images: %s/%s/<person>/*%v\n", ec.Container, ec.Root, ec.Extensions)

	var bar *progressbar.ProgressBar
	req := facegroup.EnrollRequest{
		ProvisionRequest: facegroup.ProvisionRequest{
			GroupID:    ec.GroupID,
			Name:       ec.DisplayName(),
			Root:       ec.Root,
			Extensions: ec.Extensions,
			Progress: func(ev facegroup.ProgressEvent) {
				if bar == nil {
					bar = newImageBar(ev.Total)
					return
				}
				bar.Set(ev.Done)
			},
		},
		Training: trainOptions(a.cfg),
		Retrain:  retrain,
	}

	result, err := a.service.Enroll(cmd.Context(), store, req)
	if bar != nil {
		bar.Finish()
		fmt.Println()
	}
	if result != nil {
		printProvisionReport(ec.GroupID, result.ProvisionReport)
	}
	if err != nil {
		if result != nil && result.Created && !result.Trained {
			fmt.Print(untrainedGroupHint(ec.GroupID))
		}
		return result, err
	}
	if result.Trained {
		fmt.Println("Person group trained successfully.")
	}
	return result, nil
}

func newImageBar(total int) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetDescription("Adding faces"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("images"),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionFullWidth(),
	)
}

func printProvisionReport(groupID string, r *facegroup.ProvisionReport) {
	if r == nil {
		return
	}
	if r.Existed {
		fmt.Printf("Person group '%s' already exists.\n", groupID)
		return
	}
	if r.Created {
		fmt.Printf("Person group '%s' created.\n", groupID)
	}
	fmt.Printf("Persons: %d, faces added: %d\n", r.Persons, r.FacesAdded)
	if len(r.Failures) > 0 {
		fmt.Printf("Failed: %d\n", len(r.Failures))
		fmt.Print(r.FailureSummary())
	}
}

// untrainedGroupHint explains how to recover from a group that was created
// but never trained. Later runs would otherwise skip it as existing.
func untrainedGroupHint(groupID string) string {
	return fmt.Sprintf("Person group '%s' was created but is not trained.\n"+
		"Fix the error above, then run 'face-groups enroll --retrain' to train it,\n"+
		"or 'face-groups group delete --group %s' to start over.\n", groupID, groupID)
}
