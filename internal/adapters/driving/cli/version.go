package cli

import (
	"encoding/json"
	"runtime"

	"github.com/spf13/cobra"
)

type versionInfo struct {
	Version string `json:"version"`
	Go      string `json:"go"`
	Target  string `json:"target"`
}

var versionJSON bool

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the pulsrag version",
	RunE: func(cmd *cobra.Command, _ []string) error {
		info := versionInfo{
			Version: version,
			Go:      runtime.Version(),
			Target:  runtime.GOOS + "/" + runtime.GOARCH,
		}
		if versionJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			return enc.Encode(info)
		}
		cmd.Printf("pulsrag %s (%s, %s)\n", info.Version, info.Go, info.Target)
		return nil
	},
}

func init() {
	versionCmd.Flags().BoolVar(&versionJSON, "json", false, "Print as JSON")
	rootCmd.AddCommand(versionCmd)
}
