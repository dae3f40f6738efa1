package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/devicelab-dev/uiexplorer/pkg/explorer"
)

const (
	colorReset  = "\033[0m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorRed    = "\033[31m"
	colorDim    = "\033[2m"
)

// useColor reports whether ANSI output is appropriate.
func useColor() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

func color(c string) string {
	if !useColor() {
		return ""
	}
	return c
}

func printSetupStep(msg string) {
	fmt.Printf("%s→%s %s\n", color(colorDim), color(colorReset), msg)
}

func printSetupSuccess(msg string) {
	fmt.Printf("%s✓%s %s\n", color(colorGreen), color(colorReset), msg)
}

func printSummary(res *explorer.Result, outputDir string) {
	statusColor := colorGreen
	switch res.Status {
	case explorer.StatusTimedOut:
		statusColor = colorYellow
	case explorer.StatusAborted:
		statusColor = colorRed
	}

	fmt.Println()
	fmt.Printf("Status:         %s%s%s", color(statusColor), res.Status, color(colorReset))
	if res.Reason != "" {
		fmt.Printf(" (%s)", res.Reason)
	}
	fmt.Println()
	fmt.Printf("Events:         %d\n", res.Events)
	fmt.Printf("Unique screens: %d\n", res.UniqueScreens)
	fmt.Printf("Duration:       %s\n", res.Duration.Round(10*time.Millisecond))
	for _, s := range res.Sections {
		mark := fmt.Sprintf("%s✗ not reached%s", color(colorYellow), color(colorReset))
		if s.Reached {
			mark = fmt.Sprintf("%s✓ reached at event %d%s", color(colorGreen), s.FirstSeenEvent, color(colorReset))
		}
		fmt.Printf("Section %-14s %s\n", s.Name+":", mark)
	}
	fmt.Printf("Report:         %s/report.json\n", outputDir)
}
