package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/face-groups/internal/config"
	"github.com/kozaktomas/face-groups/internal/faceapi"
)

var groupCmd = &cobra.Command{
	Use:   "group",
	Short: "Inspect or delete the person group",
}

var groupShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the person group, its persons and training status",
	Args:  cobra.NoArgs,
	RunE:  runGroupShow,
}

var groupDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete the person group with all persons and faces",
	Args:  cobra.NoArgs,
	RunE:  runGroupDelete,
}

func init() {
	rootCmd.AddCommand(groupCmd)
	groupCmd.AddCommand(groupShowCmd, groupDeleteCmd)
	groupCmd.PersistentFlags().String("group", "", "Person group id (default from PERSON_GROUP_ID)")
	groupDeleteCmd.Flags().Bool("yes", false, "Skip confirmation prompt")
}

func runGroupShow(cmd *cobra.Command, args []string) error {
	a, err := newApp("group.show", func(cfg *config.Config) { applyGroupFlag(cmd, cfg) })
	if err != nil {
		return err
	}
	defer a.close()

	ctx := cmd.Context()
	groupID := a.cfg.Enrollment.GroupID

	group, err := a.face.GetPersonGroup(ctx, groupID)
	if faceapi.IsNotFound(err) {
		fmt.Printf("Person group '%s' does not exist.\n", groupID)
		return nil
	}
	if err != nil {
		return err
	}

	fmt.Printf("Person group: %s\n", group.PersonGroupID)
	fmt.Printf("  Name:              %s\n", group.Name)
	fmt.Printf("  Recognition model: %s\n", group.RecognitionModel)

	status, err := a.face.GetTrainingStatus(ctx, groupID)
	switch {
	case faceapi.IsNotFound(err):
		fmt.Println("  Training:          never trained")
	case err != nil:
		return err
	default:
		fmt.Printf("  Training:          %s (%s)\n", status.Status, status.LastActionDateTime)
		if status.Message != "" {
			fmt.Printf("  Message:           %s\n", status.Message)
		}
	}

	persons, err := a.face.ListPersons(ctx, groupID)
	if err != nil {
		return err
	}
	fmt.Printf("\nPersons: %d\n", len(persons))
	for _, p := range persons {
		fmt.Printf("  %-30s %d face(s)  %s\n", p.Name, len(p.PersistedFaceIDs), p.PersonID)
	}
	return nil
}

func runGroupDelete(cmd *cobra.Command, args []string) error {
	a, err := newApp("group.delete", func(cfg *config.Config) { applyGroupFlag(cmd, cfg) })
	if err != nil {
		return err
	}
	defer a.close()

	groupID := a.cfg.Enrollment.GroupID
	if !mustGetBool(cmd, "yes") && !confirmAction(fmt.Sprintf("Delete person group '%s' with all persons and faces? [y/N]: ", groupID)) {
		fmt.Println("Cancelled.")
		return nil
	}

	if err := a.face.DeletePersonGroup(cmd.Context(), groupID); err != nil {
		return err
	}
	fmt.Printf("Person group '%s' deleted.\n", groupID)
	return nil
}
