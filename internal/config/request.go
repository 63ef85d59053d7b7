package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/agentx-labs/extbuild/internal/builder"
	"github.com/agentx-labs/extbuild/internal/deploy"
	"github.com/agentx-labs/extbuild/internal/source"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
)

// BuildRequest is the immutable description of one build.
type BuildRequest struct {
	Name          string
	Organization  string
	Ref           string
	AuthToken     string
	RegistryToken string
	APIBase       string

	WorkDir    string
	DeployPath string
	LibPath    string

	// Release is the explicit release string. Empty means derive it
	// from Ref.
	Release     string
	Description string

	UseLocalSource  bool
	LocalSourcePath string
	FlatLayout      bool

	Builder       string
	BuilderFlags  []string
	ArchiveFormat string
	CopyPolicy    deploy.Policy

	BuildTimeout time.Duration
	FetchTimeout time.Duration

	// DeploySSH authenticates sftp:// deploy paths.
	DeploySSH deploy.SSHOptions
}

// Location returns where the request's source comes from.
func (r *BuildRequest) Location() source.Location {
	return source.Location{
		Organization: r.Organization,
		Repository:   r.Name,
		Ref:          r.Ref,
		Token:        r.AuthToken,
		Format:       r.ArchiveFormat,
		Local:        r.UseLocalSource,
		LocalPath:    r.LocalSourcePath,
		Flat:         r.FlatLayout,
	}
}

// ValidationError lists every problem found in the resolved settings.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "invalid configuration: " + strings.Join(e.Problems, "; ")
}

// LoadOptions controls where Load looks for settings.
type LoadOptions struct {
	// ConfigFile overrides the user config file. A missing default file
	// is ignored; a missing explicit file is an error.
	ConfigFile string
	// DotEnvFile is read when it exists. Defaults to ".env".
	DotEnvFile string
	// Flags, when set, are bound to the matching setting keys.
	Flags *pflag.FlagSet
}

// NewViper returns a viper instance with every setting key bound to its
// defaults, environment variable, config file, .env file and flags.
func NewViper(opts LoadOptions) (*viper.Viper, error) {
	v := viper.New()
	v.SetConfigType(fileType)

	for _, k := range keys {
		if k.def != nil {
			v.SetDefault(k.key, k.def)
		}
		if err := v.BindEnv(k.key, EnvName(k.key)); err != nil {
			return nil, fmt.Errorf("binding %s: %w", k.key, err)
		}
		if opts.Flags != nil {
			if f := opts.Flags.Lookup(FlagName(k.key)); f != nil {
				if err := v.BindPFlag(k.key, f); err != nil {
					return nil, fmt.Errorf("binding flag --%s: %w", f.Name, err)
				}
			}
		}
	}

	configFile := opts.ConfigFile
	explicit := configFile != ""
	if !explicit {
		configFile = FilePath()
	}
	if _, err := os.Stat(configFile); err == nil || explicit {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", configFile, err)
		}
	}

	dotEnv := opts.DotEnvFile
	if dotEnv == "" {
		dotEnv = ".env"
	}
	values, err := readDotEnv(dotEnv)
	if err != nil {
		return nil, err
	}
	if len(values) > 0 {
		if err := v.MergeConfigMap(values); err != nil {
			return nil, fmt.Errorf("merging %s: %w", dotEnv, err)
		}
	}

	return v, nil
}

// readDotEnv returns the known settings found in path, keyed by setting
// key. A missing file yields nothing.
func readDotEnv(path string) (map[string]any, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	env, err := gotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	values := make(map[string]any)
	for name, value := range env {
		key := strings.ToLower(name)
		if _, ok := keyIndex[key]; ok {
			values[key] = value
		}
	}
	return values, nil
}

// Load resolves and validates a BuildRequest.
func Load(opts LoadOptions) (*BuildRequest, error) {
	v, err := NewViper(opts)
	if err != nil {
		return nil, err
	}
	return FromViper(v)
}

// FromViper builds a BuildRequest from resolved settings.
func FromViper(v *viper.Viper) (*BuildRequest, error) {
	r := &BuildRequest{
		Name:            v.GetString(KeyRepository),
		Organization:    v.GetString(KeyOrganization),
		Ref:             v.GetString(KeyRef),
		AuthToken:       v.GetString(KeyAuthToken),
		RegistryToken:   v.GetString(KeyRegistryToken),
		APIBase:         v.GetString(KeyAPIBase),
		WorkDir:         v.GetString(KeyBuildPath),
		DeployPath:      v.GetString(KeyDeployPath),
		LibPath:         v.GetString(KeyLibPath),
		Release:         v.GetString(KeyRelease),
		Description:     v.GetString(KeyDescription),
		UseLocalSource:  v.GetBool(KeyUseLocalSource),
		LocalSourcePath: v.GetString(KeyLocalSourcePath),
		FlatLayout:      v.GetBool(KeyFlatLayout),
		Builder:         v.GetString(KeyBuilder),
		BuilderFlags:    strings.Fields(v.GetString(KeyBuilderFlags)),
		ArchiveFormat:   v.GetString(KeyArchiveFormat),
		BuildTimeout:    v.GetDuration(KeyBuildTimeout),
		FetchTimeout:    v.GetDuration(KeyFetchTimeout),
		DeploySSH: deploy.SSHOptions{
			KeyFile:        v.GetString(KeyDeployKey),
			Password:       v.GetString(KeyDeployPassword),
			KnownHostsFile: v.GetString(KeyDeployKnownHost),
		},
	}
	if r.Description == "" {
		r.Description = r.Name
	}

	var problems []string
	require := func(val, key string) {
		if strings.TrimSpace(val) == "" {
			problems = append(problems, fmt.Sprintf("%s is required", EnvName(key)))
		}
	}

	require(r.Name, KeyRepository)
	require(r.WorkDir, KeyBuildPath)
	require(r.DeployPath, KeyDeployPath)
	if r.UseLocalSource {
		require(r.LocalSourcePath, KeyLocalSourcePath)
	} else {
		require(r.Organization, KeyOrganization)
		require(r.Ref, KeyRef)
	}

	switch r.Builder {
	case builder.VariantLegacy, builder.VariantScript:
	default:
		problems = append(problems, fmt.Sprintf("%s must be %q or %q, got %q", EnvName(KeyBuilder), builder.VariantLegacy, builder.VariantScript, r.Builder))
	}

	switch r.ArchiveFormat {
	case source.FormatZip, source.FormatTar:
	default:
		problems = append(problems, fmt.Sprintf("%s must be %q or %q, got %q", EnvName(KeyArchiveFormat), source.FormatZip, source.FormatTar, r.ArchiveFormat))
	}

	if deploy.IsRemote(r.DeployPath) {
		if _, err := deploy.ParseRemote(r.DeployPath); err != nil {
			problems = append(problems, err.Error())
		}
	}

	policy, err := deploy.ParsePolicy(v.GetString(KeyCopyPolicy))
	if err != nil {
		problems = append(problems, err.Error())
	}
	r.CopyPolicy = policy

	if r.BuildTimeout < 0 || r.FetchTimeout < 0 {
		problems = append(problems, "timeouts must not be negative")
	}

	if len(problems) > 0 {
		return nil, &ValidationError{Problems: problems}
	}
	return r, nil
}

// Setting is one resolved key for display.
type Setting struct {
	Key   string
	Env   string
	Value string
}

// Settings returns every resolved key in display order with secrets
// redacted.
func Settings(v *viper.Viper) []Setting {
	out := make([]Setting, 0, len(keys))
	for _, k := range keys {
		out = append(out, Setting{
			Key:   k.key,
			Env:   EnvName(k.key),
			Value: RedactValue(k.key, v.GetString(k.key)),
		})
	}
	return out
}
