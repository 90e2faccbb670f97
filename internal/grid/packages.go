package grid

import "github.com/mfasDa/alice-fast-simulation/internal/generator"

// Package versions loaded by processing jobs.
var (
	PythonModules = Package{Name: "Python-modules", Version: "1.0-27"}
	PowhegPackage = Package{Name: "POWHEG", Version: "r3178-alice1-1"}
	HerwigPackage = Package{Name: "Herwig", Version: "v7.1.2-alice1-3"}
)

// ProcessingPackages returns the packages of a processing job for gen. When
// separate is set the job loads everything but the Python modules itself.
func ProcessingPackages(gen, aliphysics string, separate bool) []Package {
	pkgs := []Package{PythonModules}
	if separate {
		return pkgs
	}
	pkgs = append(pkgs, Package{Name: "AliPhysics", Version: aliphysics})
	if generator.IsPowheg(gen) {
		pkgs = append(pkgs, PowhegPackage)
	}
	if generator.IsHerwig(gen) {
		pkgs = append(pkgs, HerwigPackage)
	}
	return pkgs
}
