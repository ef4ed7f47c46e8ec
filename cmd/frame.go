package cmd

import (
	"fmt"

	"github.com/huangsam/globeplay/core"
	"github.com/huangsam/globeplay/internal/apiclient"
	"github.com/huangsam/globeplay/internal/contract"
	"github.com/spf13/cobra"
)

// frameCmd prints the frame URL of the configured date and checks that it loads.
var frameCmd = &cobra.Command{
	Use:   "frame",
	Short: "Print the frame URL for --date and whether it loads.",
	Long: `Build the frame URL for the configured date and selection, then fetch and
decode it the same way playback does before committing a frame.

Examples:
  globeplay frame --date 2050-07-01 --variable tasmax --scenario ssp370`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		client := apiclient.New(cfg.BaseURL, cfg.Timeout)
		url := client.FrameURL(core.FormatDate(cfg.Date), cfg.Selection)
		fmt.Println(url)

		if core.NewHTTPFrameGate(nil, cfg.Timeout).Preload(rootCtx, url) {
			_, _ = contract.FrameColor.Println("✅ Frame loads")
			return
		}
		_, _ = contract.BlankColor.Println("⬛ Frame did not load")
	},
}
