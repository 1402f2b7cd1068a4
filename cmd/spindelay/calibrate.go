package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sarchlab/spindelay/calibration"
)

var calibrateCmd = &cobra.Command{
	Use:   "calibrate",
	Short: "Measure the spin kernel and record the calibration profile",
	RunE:  runCalibrate,
}

func init() {
	calibrateCmd.Flags().String("target", "",
		"named target from the targets file; measures the host when empty")
	rootCmd.AddCommand(calibrateCmd)
}

func runCalibrate(cmd *cobra.Command, _ []string) error {
	profile, err := resolveProfile(cmd)
	if err != nil {
		return err
	}

	printProfile(cmd, profile)

	dbPath, _ := cmd.Flags().GetString("db")
	recorder := openRecorder(dbPath)
	recorder.InsertData(calibrationTable, newProfileRow(profile))
	recorder.Flush()

	return nil
}

func resolveProfile(cmd *cobra.Command) (calibration.Profile, error) {
	targetName, _ := cmd.Flags().GetString("target")
	if targetName == "" {
		return calibration.Measure(calibration.WallClock()), nil
	}

	targetsPath, _ := cmd.Flags().GetString("targets")
	targets, err := LoadTargets(targetsPath)
	if err != nil {
		return calibration.Profile{}, err
	}

	target, found := findTarget(targets, targetName)
	if !found {
		return calibration.Profile{},
			fmt.Errorf("target %s is not declared in %s",
				targetName, targetsPath)
	}

	return target.Profile(), nil
}

func printProfile(cmd *cobra.Command, p calibration.Profile) {
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "Run ID:        %s\n", p.ID)
	fmt.Fprintf(out, "Loop rate:     %.0f steps/s\n", float64(p.LoopFreq))
	fmt.Fprintf(out, "Call overhead: %v\n", p.CallOverhead)
	if p.Samples > 0 {
		fmt.Fprintf(out, "Samples:       %d (median)\n", p.Samples)
	} else {
		fmt.Fprintf(out, "Samples:       declared fixed rate\n")
	}
	if p.CPUModel != "" {
		fmt.Fprintf(out, "Host CPU:      %s (%.0f MHz)\n",
			p.CPUModel, p.CPUMHz)
	}
}
