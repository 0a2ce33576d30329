// Package cmd holds the auxiliary CLI subcommands.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/smazurov/scrollkeep/internal/led"
	"github.com/smazurov/scrollkeep/internal/logging"
	"github.com/smazurov/scrollkeep/internal/version"
	"github.com/smazurov/scrollkeep/pkg/evdev"
)

// CreateStatusCmd creates the status command. It inspects the same
// registry and devices the daemon uses, without touching LED state.
func CreateStatusCmd() *cobra.Command {
	var indicator string

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show indicator and keyboard status",
		Long:  `Lists registered LEDs and attached keyboards, and reports the resolved indicator with its current state.`,
		Run: func(_ *cobra.Command, _ []string) {
			logging.Initialize(logging.Config{Level: "warn", Format: "text"})

			fmt.Printf("scrollkeep %s\n\n", version.String())

			registry := led.NewRegistry()

			names, err := registry.List()
			if err != nil {
				fmt.Fprintf(os.Stderr, "Failed to list LEDs: %v\n", err)
				os.Exit(1)
			}
			fmt.Printf("LEDs (%d):\n", len(names))
			for _, name := range names {
				fmt.Printf("  %s\n", name)
			}

			keyboards, err := evdev.FindKeyboards()
			if err != nil {
				fmt.Fprintf(os.Stderr, "Failed to enumerate keyboards: %v\n", err)
				os.Exit(1)
			}
			fmt.Printf("\nKeyboards (%d):\n", len(keyboards))
			for _, kb := range keyboards {
				marker := ""
				if kb.Leds {
					marker = "  [leds]"
				}
				fmt.Printf("  %s  %s%s\n", kb.DevNode, kb.Name, marker)
			}

			if primary, err := evdev.FindKeyboard(); err == nil {
				fmt.Printf("\nPrimary keyboard: %s  %s\n", primary.DevNode, primary.Name)
			} else {
				fmt.Printf("\nPrimary keyboard: none (%v)\n", err)
			}

			handle, err := registry.Resolve(indicator)
			if err != nil {
				fmt.Printf("\nIndicator %q: not found\n", indicator)
				os.Exit(1)
			}

			ctrl := led.New("", logging.GetLogger("status"))
			fmt.Printf("\nIndicator %q: %s (%s)\n", indicator, handle.Name, ctrl.Read(handle))
		},
	}

	statusCmd.Flags().StringVarP(&indicator, "indicator", "i", "scrolllock", "Indicator name to resolve")

	return statusCmd
}
