// Package generator holds what the orchestrator knows about each physics
// event generator: environment scripts, input files, POWHEG stages and the
// scratch files a run leaves behind.
package generator

import (
	"fmt"
	"strings"
)

// Environment scripts sourced before the simulation runs.
const (
	StdEnv    = "std_env.sh"
	PowhegEnv = "powheg_env.sh"
	HerwigEnv = "herwig_env.sh"
)

// Files produced or consumed around a run.
const (
	PowhegInput    = "powheg.input"
	PowhegSeeds    = "pwgseeds.dat"
	HerwigInput    = "herwig.in"
	Pythia8Cmnd    = "powheg_pythia8_conf.cmnd"
	SimExecutable  = "runFastSim.py"
	MergeExe       = "runFastSimMerging.py"
	ValidationFile = "FastSim_validation.sh"
)

// IsPowheg reports whether gen uses POWHEG.
func IsPowheg(gen string) bool { return strings.Contains(gen, "powheg") }

// IsHerwig reports whether gen uses Herwig.
func IsHerwig(gen string) bool { return strings.Contains(gen, "herwig") }

// IsPythia8 reports whether gen showers with PYTHIA 8.
func IsPythia8(gen string) bool { return strings.Contains(gen, "pythia8") }

// EnvScript picks the environment script for gen.
func EnvScript(gen string) string {
	switch {
	case IsPowheg(gen):
		return PowhegEnv
	case IsHerwig(gen):
		return HerwigEnv
	}
	return StdEnv
}

// SourceFiles lists the sources and macros every simulation job needs.
func SourceFiles() []string {
	return []string{
		"OnTheFlySimulationGenerator.cxx", "OnTheFlySimulationGenerator.h",
		"runJetSimulation.C", "start_simulation.C",
		"lhapdf_utils.py",
		"Makefile", "HepMC.tar",
		"AliGenExtFile_dev.h", "AliGenExtFile_dev.cxx",
		"AliGenReaderHepMC_dev.h", "AliGenReaderHepMC_dev.cxx",
		"AliGenEvtGen_dev.h", "AliGenEvtGen_dev.cxx",
		"AliGenPythia_dev.h", "AliGenPythia_dev.cxx",
		"AliPythia6_dev.h", "AliPythia6_dev.cxx",
		"AliPythia8_dev.h", "AliPythia8_dev.cxx",
		"AliPythiaBase_dev.h", "AliPythiaBase_dev.cxx",
		"THepMCParser_dev.h", "THepMCParser_dev.cxx",
	}
}

// MergeSourceFiles lists the macros a grid merging job needs.
func MergeSourceFiles() []string {
	return []string{"runJetSimulationMergingGrid.C", "start_merging.C"}
}

// HerwigInputFiles lists the Herwig input cards, plus the tune file when set.
func HerwigInputFiles(tune string) []string {
	files := []string{HerwigInput, "MB.in", "PPCollider.in", "SoftModel.in", "SoftTune.in"}
	if tune != "" {
		files = append(files, tune)
	}
	return files
}

// CleanupFiles returns the scratch files the generator behind envScript leaves
// in the working directory of replica. Unknown generators leave nothing.
func CleanupFiles(envScript string, replica int) []string {
	switch {
	case strings.Contains(envScript, "herwig"):
		return []string{"herwig.run", "herwig.log", "herwig.out", "herwig.tex"}
	case strings.Contains(envScript, "powheg"):
		return []string{
			"pwgevents.lhe",
			fmt.Sprintf("pwgevents-%04d.lhe", replica),
			fmt.Sprintf("pwg-%04d-stat.dat", replica),
		}
	}
	return nil
}
