package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/face-groups/internal/config"
	"github.com/kozaktomas/face-groups/internal/faceapi"
	"github.com/kozaktomas/face-groups/internal/facegroup"
)

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Train the person group and wait for the result",
	Args:  cobra.NoArgs,
	RunE:  runTrain,
}

func init() {
	rootCmd.AddCommand(trainCmd)
	trainCmd.Flags().String("group", "", "Person group id (default from PERSON_GROUP_ID)")
}

func trainOptions(cfg *config.Config) facegroup.TrainOptions {
	opts := facegroup.TrainOptionsFromConfig(cfg.Training)
	var last faceapi.TrainingState
	opts.OnStatus = func(s faceapi.TrainingStatus) {
		if s.Status != last {
			fmt.Printf("Training status: %s\n", s.Status)
			last = s.Status
		}
	}
	return opts
}

func runTrain(cmd *cobra.Command, args []string) error {
	a, err := newApp("train", func(cfg *config.Config) { applyGroupFlag(cmd, cfg) })
	if err != nil {
		return err
	}
	defer a.close()

	groupID := a.cfg.Enrollment.GroupID
	fmt.Printf("Training person group %s...\n", groupID)
	if err := a.service.Train(cmd.Context(), groupID, trainOptions(a.cfg)); err != nil {
		return err
	}
	fmt.Println("Person group trained successfully.")
	return nil
}
