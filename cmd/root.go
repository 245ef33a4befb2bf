package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "face-kiosk",
	Short: "A face-recognition login kiosk",
	Long: `Face Kiosk drives a touch display where users enroll a profile with
webcam pictures and later log in by showing their face. Recognition runs
against a cloud face API; the kiosk can mirror its traffic and state to a
robot over rosbridge.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
}

func initConfig() {
	// .env file is optional, don't fail if not found
	_ = godotenv.Load()
}
