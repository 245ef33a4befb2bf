package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/kozaktomas/face-kiosk/internal/config"
	"github.com/kozaktomas/face-kiosk/internal/faceapi"
	"github.com/kozaktomas/face-kiosk/internal/kiosk"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var retrainCmd = &cobra.Command{
	Use:   "retrain",
	Short: "Retrain the face recognition person group",
	Long: `Kick off a training run on the face API person group and wait for it
to finish. The kiosk retrains automatically after every enrollment change;
this command is for recovering after a failed run.`,
	RunE: runRetrain,
}

func init() {
	rootCmd.AddCommand(retrainCmd)
}

func runRetrain(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	if cfg.FaceAPI.Endpoint == "" {
		return fmt.Errorf("FACEAPI_ENDPOINT is required")
	}

	gateway, err := faceapi.New(cfg.FaceAPI.Endpoint, cfg.FaceAPI.AccessKey, cfg.FaceAPI.PersonGroup, nil)
	if err != nil {
		return fmt.Errorf("could not create the face API client: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	bar := progressbar.NewOptions(cfg.Training.MaxPolls,
		progressbar.OptionSetDescription("Training"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("checks"),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionFullWidth(),
	)

	err = kiosk.Retrain(ctx, gateway, kiosk.RetrainOptions{
		PollInterval: cfg.Training.PollInterval,
		MaxPolls:     cfg.Training.MaxPolls,
		OnPoll: func(attempt int, status faceapi.TrainingStatus) {
			bar.Add(1)
		},
	})
	bar.Finish()
	fmt.Println()

	if err != nil {
		return fmt.Errorf("training failed: %w", err)
	}
	fmt.Println("Training succeeded.")
	return nil
}
