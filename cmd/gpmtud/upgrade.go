package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/hervehildenbrand/gpmtud/internal/update"
)

// NewUpgradeCmd creates the `gpmtud upgrade` subcommand.
func NewUpgradeCmd(currentVersion string) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "upgrade",
		Short: "Upgrade gpmtud to the latest version",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			updater, err := update.NewUpdater(update.DefaultConfig())
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Checking for updates...")

			rel, err := updater.Check(ctx, currentVersion)
			if err != nil {
				return fmt.Errorf("update check failed: %w", err)
			}
			if rel == nil {
				fmt.Fprintf(cmd.OutOrStdout(), "gpmtud %s is already the latest version.\n", currentVersion)
				return nil
			}

			fmt.Fprintf(cmd.OutOrStdout(), "New version available: %s → %s\n", rel.Current, rel.Latest)

			if rel.AssetURL == "" {
				fmt.Fprintf(cmd.OutOrStdout(), "No pre-built binary available for your platform.\nVisit %s to download manually.\n", rel.PageURL)
				return nil
			}

			if !force {
				fmt.Fprint(cmd.OutOrStdout(), "Upgrade? [y/N] ")
				reader := bufio.NewReader(cmd.InOrStdin())
				answer, _ := reader.ReadString('\n')
				answer = strings.TrimSpace(strings.ToLower(answer))
				if answer != "y" && answer != "yes" {
					fmt.Fprintln(cmd.OutOrStdout(), "Upgrade cancelled.")
					return nil
				}
			}

			binaryPath, err := os.Executable()
			if err != nil {
				return fmt.Errorf("cannot determine binary path: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Downloading %s...\n", rel.Asset)

			if err := updater.Apply(ctx, rel, binaryPath); err != nil {
				return fmt.Errorf("upgrade failed: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Successfully upgraded to gpmtud %s\n", rel.Latest)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Skip confirmation prompt")

	return cmd
}
