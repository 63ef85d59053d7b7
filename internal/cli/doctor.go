package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/agentx-labs/extbuild/internal/builder"
	"github.com/agentx-labs/extbuild/internal/config"
	"github.com/agentx-labs/extbuild/internal/deploy"
	"github.com/spf13/cobra"
)

func init() {
	addSettingFlags(doctorCmd.Flags())
	rootCmd.AddCommand(doctorCmd)
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check settings and build prerequisites",
	Long: `Validate the resolved settings and verify that the build tool, the
working directory, the deploy directory and the Foswiki libs are usable,
without fetching or building anything.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := config.NewViper(loadOptions(cmd))
		if err != nil {
			return err
		}
		req, err := config.FromViper(v)
		if failed := runDoctor(cmd.OutOrStdout(), req, err); failed > 0 {
			return fmt.Errorf("doctor found %d problem(s)", failed)
		}
		return nil
	},
}

// runDoctor prints one line per check and returns the number of failures.
func runDoctor(w io.Writer, req *config.BuildRequest, loadErr error) int {
	failed := 0
	ok := func(format string, a ...any) { fmt.Fprintf(w, "  [ OK ] "+format+"\n", a...) }
	fail := func(format string, a ...any) {
		failed++
		fmt.Fprintf(w, "  [FAIL] "+format+"\n", a...)
	}

	fmt.Fprintln(w, "Settings:")
	if loadErr != nil {
		var ve *config.ValidationError
		if errors.As(loadErr, &ve) {
			for _, p := range ve.Problems {
				fail("%s", p)
			}
		} else {
			fail("%v", loadErr)
		}
		return failed
	}
	ok("%s (%s builder)", req.Name, req.Builder)

	fmt.Fprintln(w, "Build tools:")
	for _, tool := range builder.Tools(req.Builder) {
		if path, err := exec.LookPath(tool); err != nil {
			fail("%s not found on PATH", tool)
		} else {
			ok("%s at %s", tool, path)
		}
	}

	fmt.Fprintln(w, "Directories:")
	for _, dir := range []string{req.WorkDir, req.DeployPath} {
		if deploy.IsRemote(dir) {
			ok("%s is remote, not checked", dir)
			continue
		}
		if err := checkWritable(dir); err != nil {
			fail("%s: %v", dir, err)
		} else {
			ok("%s is writable", dir)
		}
	}
	if req.UseLocalSource {
		if info, err := os.Stat(req.LocalSourcePath); err != nil || !info.IsDir() {
			fail("local source %s is not a directory", req.LocalSourcePath)
		} else {
			ok("local source %s", req.LocalSourcePath)
		}
	}
	if req.LibPath != "" {
		if info, err := os.Stat(req.LibPath); err != nil || !info.IsDir() {
			fail("%s %s is not a directory", builder.EnvLibPath, req.LibPath)
		} else {
			ok("%s %s", builder.EnvLibPath, req.LibPath)
		}
	}

	return failed
}

// checkWritable reports whether dir, or its nearest existing ancestor, is
// a writable directory.
func checkWritable(dir string) error {
	for {
		info, err := os.Stat(dir)
		if err == nil {
			if !info.IsDir() {
				return fmt.Errorf("not a directory")
			}
			f, err := os.CreateTemp(dir, ".doctor-*")
			if err != nil {
				return fmt.Errorf("not writable: %w", err)
			}
			f.Close()
			return os.Remove(f.Name())
		}
		if !errors.Is(err, os.ErrNotExist) {
			return err
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return err
		}
		dir = parent
	}
}
