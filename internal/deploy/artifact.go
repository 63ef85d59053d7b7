package deploy

import (
	"io"

	"github.com/agentx-labs/extbuild/internal/descriptor"
)

// Artifact is one expected build output, relative to the build root.
type Artifact struct {
	Name string

	// Synthesize writes the artifact's content when the build did not
	// produce it. Nil means the artifact is required.
	Synthesize func(w io.Writer) error
}

// Required returns an artifact that must come out of the build.
func Required(name string) Artifact {
	return Artifact{Name: name}
}

// EmptyPlaceholder returns an artifact synthesized as an empty file.
func EmptyPlaceholder(name string) Artifact {
	return Artifact{
		Name:       name,
		Synthesize: func(io.Writer) error { return nil },
	}
}

// Metadata returns the descriptor artifact, synthesized from d.
func Metadata(d descriptor.Descriptor) Artifact {
	return Artifact{
		Name: descriptor.FileName,
		Synthesize: func(w io.Writer) error {
			data, err := d.Encode()
			if err != nil {
				return err
			}
			_, err = w.Write(data)
			return err
		},
	}
}

// PackageName is the archive produced for extension name.
func PackageName(name string) string { return name + ".tgz" }

// InstallerName is the installer script produced for extension name.
func InstallerName(name string) string { return name + "_installer" }
