package cli

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"swarmgen/aspect"
)

func newAspectCommand(app *App) *cobra.Command {
	var (
		multiplier int
		pixels     int
	)

	cmd := &cobra.Command{
		Use:   "aspect <ratios...>",
		Short: "Print the largest /N dimensions for aspect ratios under a pixel budget",
		Long: `For each X:Y aspect ratio, print the largest dimensions that fit
within a pixels-by-pixels budget with both sides a multiple of the
divisor, plus the same shape scaled down to a 420-pixel height.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, ratio := range args {
				awText, ahText, ok := strings.Cut(ratio, ":")
				if !ok {
					return usageError("bad aspect ratio '%s': expected X:Y", ratio)
				}
				aw, err := strconv.ParseFloat(awText, 64)
				if err != nil {
					return usageError("bad aspect ratio '%s': %v", ratio, err)
				}
				ah, err := strconv.ParseFloat(ahText, 64)
				if err != nil {
					return usageError("bad aspect ratio '%s': %v", ratio, err)
				}

				w, h := aspect.MaxDimensions(aw, ah, pixels*pixels, multiplier)
				fmt.Fprintf(out, "%s:%s\t%d x %d\t%d x 420\n",
					awText, ahText, w, h, int(math.Round(float64(w)/float64(h)*420)))
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&multiplier, "multiplier", "m", 64, "common divisor for dimensions")
	cmd.Flags().IntVarP(&pixels, "pixels", "p", 1024, "number of pixels in each dimension")
	return cmd
}
