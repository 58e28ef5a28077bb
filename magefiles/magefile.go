//go:build mage

// Package main provides build targets for dw using Mage.
//
// Usage:
//
//	mage build        Compile the dw binary to bin/
//	mage test:all     Run every test
//	mage test:unit    Run tests without the race detector
//	mage test:cover   Run tests and write coverage.out
//	mage lint         Run golangci-lint
//	mage vet          Run go vet
//	mage clean        Remove build artifacts
//	mage install      Install dw to GOPATH/bin
package main

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binGo      = "go"
	binaryName = "dw"
	binaryDir  = "bin"
	cmdDir     = "./cmd/dw"
	versionVar = "github.com/mesh-intelligence/dw/internal/cli.Version"
)

func binaryPath() string {
	name := binaryName
	if runtime.GOOS == "windows" {
		name += ".exe"
	}
	return filepath.Join(binaryDir, name)
}

// ldflags stamps the version from $DW_VERSION when set.
func ldflags() []string {
	v := os.Getenv("DW_VERSION")
	if v == "" {
		return nil
	}
	return []string{"-ldflags", "-X " + versionVar + "=" + v}
}

// Build compiles the dw binary to bin/.
func Build() error {
	if err := os.MkdirAll(binaryDir, 0o755); err != nil {
		return err
	}
	args := append([]string{"build", "-v"}, ldflags()...)
	args = append(args, "-o", binaryPath(), cmdDir)
	return sh.RunV(binGo, args...)
}

// Clean removes build artifacts.
func Clean() error {
	if err := os.RemoveAll(binaryDir); err != nil {
		return err
	}
	_ = os.Remove("coverage.out")
	return sh.RunV(binGo, "clean")
}

// Install builds and copies the binary to GOPATH/bin.
func Install() error {
	mg.Deps(Build)
	gopath, err := sh.Output(binGo, "env", "GOPATH")
	if err != nil {
		return err
	}
	dst := filepath.Join(gopath, "bin", filepath.Base(binaryPath()))
	return sh.Copy(dst, binaryPath())
}
