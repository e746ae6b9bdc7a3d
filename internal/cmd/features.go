package cmd

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cabindev/cabin/internal/features"
	"github.com/cabindev/cabin/internal/ui"
)

var featuresOverlays []string

// featuresCmd represents the features command.
var featuresCmd = &cobra.Command{
	Use:   "features",
	Short: "Show features and their install order",
	Long: `List the features declared in the configuration and the order
cabin installs them in.

Order respects overrideFeatureInstallOrder first, then each feature's
installsAfter dependencies, then falls back to lexicographic order.`,
	Args: cobra.NoArgs,
	RunE: runFeatures,
}

func init() {
	featuresCmd.Flags().StringArrayVarP(&featuresOverlays, "overlay", "o", nil, "Overlay config file (repeatable, later wins)")

	rootCmd.AddCommand(featuresCmd)
}

func runFeatures(cmd *cobra.Command, args []string) error {
	ws, err := loadWorkspace()
	if err != nil {
		return err
	}

	cfg, err := resolveWorkspace(ws, featuresOverlays)
	if err != nil {
		return err
	}

	if len(cfg.Features) == 0 {
		ui.Info("No features declared")
		return nil
	}

	feats, err := features.ParseAll(cfg.Features)
	if err != nil {
		return err
	}

	ordered, err := features.InstallOrder(feats, cfg.OverrideFeatureInstallOrder)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "#\tFEATURE\tVERSION\tOPTIONS")
	for i, feat := range ordered {
		version := feat.Ref.Version
		if version == "" {
			version = "-"
		}
		name := feat.Ref.Name
		if feat.Ref.IsLocal() {
			name = feat.Ref.String()
			version = "local"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", i+1, name, version, formatOptions(feat.Options))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	for _, feat := range ordered {
		if !feat.Ref.IsLocal() && !feat.Ref.Pinned() {
			ui.Warning("%s is not pinned to a version", feat.Raw)
		}
	}
	return nil
}

func formatOptions(options map[string]string) string {
	if len(options) == 0 {
		return "-"
	}
	pairs := make([]string, 0, len(options))
	for _, env := range features.EnvVars(options) {
		pairs = append(pairs, env)
	}
	return strings.Join(pairs, " ")
}
