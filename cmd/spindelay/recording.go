package main

import (
	"time"

	"github.com/sarchlab/spindelay/calibration"
	"github.com/sarchlab/spindelay/datarecording"
)

const (
	calibrationTable  = "calibrations"
	verificationTable = "verifications"

	timestampLayout = "2006-01-02 15:04:05.000000000"
)

// profileRow is the flattened form of a calibration profile stored in
// the run database.
type profileRow struct {
	RunID          string
	MeasuredAt     string
	LoopFreqHz     float64
	CallOverheadNs int64
	Samples        int64
	CPUModel       string
	CPUMHz         float64
}

// verificationRow records one measured delay of one primitive.
type verificationRow struct {
	RunID      string
	VerifiedAt string
	Primitive  string
	Count      int64
	NominalNs  int64
	MeasuredNs int64
	ErrorPct   float64
}

func newProfileRow(p calibration.Profile) profileRow {
	return profileRow{
		RunID:          p.ID,
		MeasuredAt:     p.MeasuredAt.Format(timestampLayout),
		LoopFreqHz:     float64(p.LoopFreq),
		CallOverheadNs: p.CallOverhead.Nanoseconds(),
		Samples:        int64(p.Samples),
		CPUModel:       p.CPUModel,
		CPUMHz:         p.CPUMHz,
	}
}

func newVerificationRow(
	runID, primitive string,
	count uint64,
	nominal, measured time.Duration,
) verificationRow {
	errorPct := 0.0
	if nominal > 0 {
		errorPct = (float64(measured) - float64(nominal)) /
			float64(nominal) * 100
	}

	return verificationRow{
		RunID:      runID,
		VerifiedAt: time.Now().Format(timestampLayout),
		Primitive:  primitive,
		Count:      int64(count),
		NominalNs:  nominal.Nanoseconds(),
		MeasuredNs: measured.Nanoseconds(),
		ErrorPct:   errorPct,
	}
}

func openRecorder(dbPath string) datarecording.DataRecorder {
	recorder := datarecording.NewRecorder(dbPath)
	recorder.CreateTable(calibrationTable, profileRow{})
	recorder.CreateTable(verificationTable, verificationRow{})

	return recorder
}
