// Package buildinfo carries values stamped at link time:
//
//	go build -ldflags "-X github.com/MolotilkaHolotilka/json-to-excel-converter/internal/buildinfo.Version=1.0.0"
package buildinfo

var (
	Version = "dev"
	Commit  = "none"
)
