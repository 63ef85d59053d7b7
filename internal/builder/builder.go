package builder

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/agentx-labs/extbuild/internal/deploy"
	"github.com/agentx-labs/extbuild/internal/descriptor"
)

// Supported builder variants.
const (
	VariantLegacy = "legacy"
	VariantScript = "script"
)

// Spec is everything a Builder needs to produce its command line.
type Spec struct {
	Name        string
	Root        string
	VersionFile string
	Release     string
	Flags       []string
}

// Command is a fully resolved process invocation.
type Command struct {
	Path string
	Args []string
	Dir  string
	Env  []string
}

// Builder is a build-tool convention.
type Builder interface {
	// Variant returns the tag Dispatch selects this builder by.
	Variant() string
	// Command returns the invocation for spec. Env is left for the caller.
	Command(spec Spec) (Command, error)
	// Artifacts lists the outputs this convention leaves in the build root.
	Artifacts(name string, meta descriptor.Descriptor) []deploy.Artifact
}

// Dispatch returns the Builder for variant. Unknown variants yield a
// Builder whose Command always fails.
func Dispatch(variant string) Builder {
	switch variant {
	case VariantLegacy, "":
		return &LegacyBuilder{}
	case VariantScript:
		return &ScriptBuilder{}
	default:
		return &unknownBuilder{variant: variant}
	}
}

// LegacyBuilder runs the Foswiki BuildContrib script that lives next to
// the extension's module: perl <dir>/<name>/build.pl release [flags].
type LegacyBuilder struct{}

func (*LegacyBuilder) Variant() string { return VariantLegacy }

func (*LegacyBuilder) Command(spec Spec) (Command, error) {
	if spec.VersionFile == "" {
		return Command{}, &LaunchError{Op: "resolve", Err: fmt.Errorf("legacy builder needs the version file location")}
	}
	script, err := filepath.Abs(filepath.Join(filepath.Dir(spec.VersionFile), spec.Name, "build.pl"))
	if err != nil {
		return Command{}, &LaunchError{Op: "resolve", Err: err}
	}
	if _, err := os.Stat(script); err != nil {
		return Command{}, &LaunchError{Op: "resolve", Err: fmt.Errorf("build script not found: %w", err)}
	}

	args := append([]string{script, "release"}, spec.Flags...)
	return Command{Path: "perl", Args: args, Dir: spec.Root}, nil
}

// Artifacts for the legacy builder are all produced by build.pl itself.
func (*LegacyBuilder) Artifacts(name string, _ descriptor.Descriptor) []deploy.Artifact {
	return []deploy.Artifact{
		deploy.Required(deploy.PackageName(name)),
		deploy.Required(deploy.InstallerName(name)),
		deploy.Required(name + ".txt"),
	}
}

// ScriptBuilder runs a self-contained ./build script in the build root
// with the release string as its argument.
type ScriptBuilder struct{}

func (*ScriptBuilder) Variant() string { return VariantScript }

func (*ScriptBuilder) Command(spec Spec) (Command, error) {
	script := filepath.Join(spec.Root, "build")
	if _, err := os.Stat(script); err != nil {
		return Command{}, &LaunchError{Op: "resolve", Err: fmt.Errorf("build script not found: %w", err)}
	}

	args := append([]string{spec.Release}, spec.Flags...)
	return Command{Path: "./build", Args: args, Dir: spec.Root}, nil
}

// Artifacts for the script builder: only the package is mandatory, the
// installer and descriptor are synthesized when the script skips them.
func (*ScriptBuilder) Artifacts(name string, meta descriptor.Descriptor) []deploy.Artifact {
	return []deploy.Artifact{
		deploy.Required(deploy.PackageName(name)),
		deploy.EmptyPlaceholder(deploy.InstallerName(name)),
		deploy.Metadata(meta),
	}
}

type unknownBuilder struct {
	variant string
}

func (u *unknownBuilder) Variant() string { return u.variant }

func (u *unknownBuilder) Command(Spec) (Command, error) {
	return Command{}, fmt.Errorf("unknown builder %q: supported builders are %q and %q", u.variant, VariantLegacy, VariantScript)
}

func (u *unknownBuilder) Artifacts(string, descriptor.Descriptor) []deploy.Artifact {
	return nil
}

// Tools returns the executables variant needs on PATH.
func Tools(variant string) []string {
	switch variant {
	case VariantLegacy, "":
		return []string{"perl"}
	case VariantScript:
		return []string{"sh"}
	default:
		return nil
	}
}
