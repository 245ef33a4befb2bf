package cmd

import (
	"fmt"

	"github.com/kozaktomas/face-kiosk/internal/config"
	"github.com/kozaktomas/face-kiosk/internal/profile"
	"github.com/spf13/cobra"
)

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "List enrolled profiles",
	Long:  `List all profiles found in the storage directory with their enrolled photos.`,
	RunE:  runProfiles,
}

func init() {
	rootCmd.AddCommand(profilesCmd)
}

func runProfiles(cmd *cobra.Command, args []string) error {
	cfg := config.Load()

	store, err := profile.NewStore(cfg.Storage.Root)
	if err != nil {
		return fmt.Errorf("could not open profile storage: %w", err)
	}

	profiles, err := store.LoadAll()
	if err != nil {
		return fmt.Errorf("could not load profiles: %w", err)
	}

	if len(profiles) == 0 {
		fmt.Println("No profiles enrolled yet.")
		return nil
	}

	fmt.Printf("Found %d profile(s):\n\n", len(profiles))
	for _, p := range profiles {
		fmt.Println(p)
	}
	return nil
}
