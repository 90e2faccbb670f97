package grid

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mfasDa/alice-fast-simulation/internal/backend"
	"github.com/mfasDa/alice-fast-simulation/internal/config"
)

// CounterToken is replaced by the grid with the sub-job index.
const CounterToken = "#alien_counter#"

// SplitParentDirectory groups merge inputs by their parent directory.
const SplitParentDirectory = "parentdirectory"

// Package is one software package a grid job loads.
type Package struct {
	Name    string
	Version string
}

func (p Package) String() string {
	return fmt.Sprintf("\"VO_ALICE@%s::%s\"", p.Name, p.Version)
}

// ProcessingJob is the content of a processing JDL.
type ProcessingJob struct {
	Comments   string // provenance header
	Dest       string // remote directory of the train (bin)
	Executable string
	TTL        int
	Arguments  string
	Packages   []Package
	Jobs       int
	Validation string
	InputFiles []string // staged inputs; listed by base name
}

// MergingJob is the content of a merging JDL.
type MergingJob struct {
	Comments       string
	Dest           string // remote directory of the merge stage
	Executable     string
	TTL            int
	Train          string
	AliPhysics     string
	Collection     string // XML collection file name
	MaxFilesPerJob int
	Validation     string
	Split          string
	InputFiles     []string
}

// writeHead writes the fields shared by all JDLs. The TTL and Arguments
// fields come from the backend.
func writeHead(b *bytes.Buffer, be backend.Backend, comments, dest, exe string, ttl int, args string) error {
	fmt.Fprintf(b, "%s \n", comments)
	fmt.Fprintf(b, "Executable = \"%s/%s\"; \n", dest, exe)
	b.WriteString("# Time after which the job is killed (120 min.) \n")
	if err := be.WriteDirectives(b, &config.BatchConfig{Time: strconv.Itoa(ttl)}, backend.Shape{}, ""); err != nil {
		return fmt.Errorf("failed to write TTL: %w", err)
	}
	fmt.Fprintf(b, "OutputDir = \"%s/output/#alien_counter_03i#\"; \n", dest)
	b.WriteString("Output = { \n")
	b.WriteString("\"log_archive.zip:stderr,stdout,*.log@disk=1\", \n")
	b.WriteString("\"root_archive.zip:AnalysisResults*.root@disk=2\" \n")
	b.WriteString("}; \n")
	if err := be.WriteSimCommand(b, backend.SimCommand{Command: args}); err != nil {
		return fmt.Errorf("failed to write arguments: %w", err)
	}
	return nil
}

func writeInputFiles(b *bytes.Buffer, dest string, files []string) {
	if len(files) == 0 {
		return
	}
	b.WriteString("InputFile = {")
	for i, f := range files {
		if i == 0 {
			b.WriteString("\n")
		} else {
			b.WriteString(", \n")
		}
		fmt.Fprintf(b, "\"LF:%s/%s\"", dest, filepath.Base(f))
	}
	b.WriteString("}; \n")
}

// ProcessingJDL renders the job description of a processing train.
func ProcessingJDL(be backend.Backend, j ProcessingJob) (string, error) {
	var b bytes.Buffer
	if err := writeHead(&b, be, j.Comments, j.Dest, j.Executable, j.TTL, j.Arguments); err != nil {
		return "", err
	}

	if len(j.Packages) > 0 {
		list := make([]string, len(j.Packages))
		for i, p := range j.Packages {
			list[i] = p.String()
		}
		fmt.Fprintf(&b, "Packages = { \n%s };\n", strings.Join(list, ",\n"))
	}

	fmt.Fprintf(&b, "Split=\"production:1-%d\"; \n", j.Jobs)
	fmt.Fprintf(&b, "ValidationCommand = \"%s/%s\"; \n", j.Dest, j.Validation)
	b.WriteString("# List of input files to be uploaded to workers \n")
	writeInputFiles(&b, j.Dest, j.InputFiles)
	return b.String(), nil
}

// MergingJDL renders the job description of one merge stage.
func MergingJDL(be backend.Backend, j MergingJob) (string, error) {
	var b bytes.Buffer
	if err := writeHead(&b, be, j.Comments, j.Dest, j.Executable, j.TTL, j.Train+" --xml wn.xml"); err != nil {
		return "", err
	}

	b.WriteString("Packages = { \n")
	fmt.Fprintf(&b, "%s, \n", Package{Name: "AliPhysics", Version: j.AliPhysics})
	fmt.Fprintf(&b, "%s \n", Package{Name: "Python-modules", Version: "1.0-12"})
	b.WriteString("}; \n")
	b.WriteString("# JDL variables \n")
	b.WriteString("JDLVariables = \n")
	b.WriteString("{ \n")
	b.WriteString("\"Packages\", \n")
	b.WriteString("\"OutputDir\" \n")
	b.WriteString("}; \n")
	fmt.Fprintf(&b, "InputDataCollection={\"LF:%s/%s,nodownload\"}; \n", j.Dest, j.Collection)
	b.WriteString("InputDataListFormat = \"xml-single\"; \n")
	b.WriteString("InputDataList = \"wn.xml\"; \n")
	fmt.Fprintf(&b, "SplitMaxInputFileNumber=\"%d\"; \n", j.MaxFilesPerJob)
	fmt.Fprintf(&b, "ValidationCommand = \"%s/%s\"; \n", j.Dest, j.Validation)
	b.WriteString("# List of input files to be uploaded to workers \n")
	if j.Split != "" {
		fmt.Fprintf(&b, "Split=\"%s\"; \n", j.Split)
	}
	writeInputFiles(&b, j.Dest, j.InputFiles)
	return b.String(), nil
}
