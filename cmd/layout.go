// Copyright 2023-2025 Tangram Labs.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tangramlabs/cassowary/boxlayout"
	"github.com/tangramlabs/cassowary/profile"
)

// layoutCmd represents the layout command
var layoutCmd = &cobra.Command{
	Use:   "layout",
	Short: "lays out columns in a container and prints the resolved rectangles",
	Long: `lays out end-to-end columns in a container of the given size.

Each column asks for its preferred width at strong strength and keeps the
given ratio to its successor at medium strength; when the preferred widths
do not fit, the ratios decide the split.`,
	Run:     cmdLayout,
	Version: buildString(),
}

var (
	fWidth   float64
	fHeight  float64
	fWidths  []float64
	fRatios  []float64
	fProfile string
)

func init() {
	rootCmd.AddCommand(layoutCmd)
	layoutCmd.PersistentFlags().Float64Var(&fWidth, "width", 50, "container width")
	layoutCmd.PersistentFlags().Float64Var(&fHeight, "height", 50, "container height")
	layoutCmd.PersistentFlags().Float64SliceVar(&fWidths, "widths", []float64{60, 30, 10}, "preferred column widths")
	layoutCmd.PersistentFlags().Float64SliceVar(&fRatios, "ratios", nil, "width ratios between adjacent columns -- default derives them from the preferred widths")
	layoutCmd.PersistentFlags().StringVar(&fProfile, "profile", "", "writes a pprof constraint profile to the given path")
}

func cmdLayout(cmd *cobra.Command, args []string) {
	if len(fWidths) == 0 {
		fmt.Println("need at least one column -- cassowary layout -h for help")
		os.Exit(-1)
	}
	ratios := fRatios
	if ratios == nil {
		for i := 0; i+1 < len(fWidths); i++ {
			ratios = append(ratios, fWidths[i]/fWidths[i+1])
		}
	}
	if len(ratios) != len(fWidths)-1 {
		fmt.Printf("need %d ratios for %d columns, got %d\n", len(fWidths)-1, len(fWidths), len(ratios))
		os.Exit(-1)
	}

	if fProfile != "" {
		p := profile.Start(profile.WithPath(fProfile))
		defer p.Stop()
	}

	layout, err := boxlayout.New()
	if err != nil {
		fmt.Println("error:", err)
		os.Exit(-1)
	}

	columns := make([]boxlayout.Element, len(fWidths))
	for i := range fWidths {
		columns[i], err = layout.AddElement(fmt.Sprintf("column%d", i))
		if err != nil {
			fmt.Println("error:", err)
			os.Exit(-1)
		}
	}
	for i, w := range fWidths {
		if err := layout.AddConstraint(columns[i].HasWidth(w)); err != nil {
			fmt.Println("error:", err)
			os.Exit(-1)
		}
	}
	for i := 0; i+1 < len(columns); i++ {
		err := layout.AddConstraints(
			columns[i].PrecedesHorizontally(columns[i+1]),
			columns[i].HasProportionalWidth(columns[i+1], ratios[i]),
		)
		if err != nil {
			fmt.Println("error:", err)
			os.Exit(-1)
		}
	}

	if err := layout.SetSize(fWidth, fHeight); err != nil {
		fmt.Println("error:", err)
		os.Exit(-1)
	}

	width, height := layout.Size()
	fmt.Printf("Layout { width: %v, height: %v }\n", width, height)
	for _, column := range columns {
		fmt.Println(layout.Rect(column))
	}
}
