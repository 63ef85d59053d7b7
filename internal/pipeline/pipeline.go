package pipeline

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/agentx-labs/extbuild/internal/builder"
	"github.com/agentx-labs/extbuild/internal/config"
	"github.com/agentx-labs/extbuild/internal/deploy"
	"github.com/agentx-labs/extbuild/internal/descriptor"
	"github.com/agentx-labs/extbuild/internal/locate"
	"github.com/agentx-labs/extbuild/internal/logging"
	"github.com/agentx-labs/extbuild/internal/patch"
	"github.com/agentx-labs/extbuild/internal/release"
	"github.com/agentx-labs/extbuild/internal/source"
	"github.com/agentx-labs/extbuild/internal/telemetry"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Result describes a successful run.
type Result struct {
	BuildID    string
	Name       string
	Release    string
	DeployPath string
	// Artifacts lists the deployed file names in deployment order.
	Artifacts []string
}

// Pipeline runs a single BuildRequest. Construct it with New.
type Pipeline struct {
	Request  *config.BuildRequest
	BuildID  string
	Fetcher  *source.Fetcher
	Invoker  *builder.Invoker
	Deployer *deploy.Deployer
	Logger   *slog.Logger

	// Now and Environ are replaceable for tests.
	Now     func() time.Time
	Environ func() []string
}

// New returns a Pipeline for r with a fresh build ID. A nil logger uses
// slog.Default.
func New(r *config.BuildRequest, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	id := uuid.NewString()
	logger = logger.With("build_id", id, "extension", r.Name)

	return &Pipeline{
		Request: r,
		BuildID: id,
		Fetcher: source.New(
			source.WithAPIBase(r.APIBase),
			source.WithLogger(logger),
		),
		Invoker:  &builder.Invoker{Logger: logger},
		Deployer: &deploy.Deployer{Policy: r.CopyPolicy, Logger: logger},
		Logger:   logger,
		Now:      time.Now,
		Environ:  os.Environ,
	}
}

// Run executes every stage in order.
func (p *Pipeline) Run(ctx context.Context) (Result, error) {
	r := p.Request
	ctx = logging.WithLogger(ctx, p.Logger)

	ctx, span := telemetry.Tracer().Start(ctx, "build "+r.Name)
	span.SetAttributes(
		attribute.String("extbuild.build_id", p.BuildID),
		attribute.String("extbuild.extension", r.Name),
		attribute.String("extbuild.builder", r.Builder),
	)
	defer span.End()

	now := p.Now()
	rel := release.Resolve(r.Release, r.Ref, now)

	// The build tool runs with the build root as its cwd, so every path
	// handed to it must be absolute.
	workDir, err := filepath.Abs(r.WorkDir)
	if err != nil {
		return fail(span, &StageError{Stage: StageFetch, Err: err})
	}
	p.Logger.Info("starting build", "release", rel, "builder", r.Builder, "work_dir", workDir)

	err = p.stage(ctx, StageFetch, func(ctx context.Context) error {
		if r.FetchTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, r.FetchTimeout)
			defer cancel()
		}
		return p.Fetcher.Fetch(ctx, r.Location(), workDir)
	})
	if err != nil {
		return fail(span, err)
	}

	var versionFile, root string
	err = p.stage(ctx, StageLocate, func(context.Context) error {
		var err error
		if versionFile, err = locate.VersionFile(p.Logger, workDir, r.Name); err != nil {
			return err
		}
		root, err = locate.BuildRoot(p.Logger, workDir, r.FlatLayout)
		return err
	})
	if err != nil {
		return fail(span, err)
	}
	p.Logger.Info("located source", "version_file", versionFile, "build_root", root)

	err = p.stage(ctx, StagePatch, func(context.Context) error {
		return patch.File(versionFile, rel)
	})
	if err != nil {
		return fail(span, err)
	}

	b := builder.Dispatch(r.Builder)
	err = p.stage(ctx, StageBuild, func(ctx context.Context) error {
		cmd, err := b.Command(builder.Spec{
			Name:        r.Name,
			Root:        root,
			VersionFile: versionFile,
			Release:     rel,
			Flags:       r.BuilderFlags,
		})
		if err != nil {
			return err
		}
		cmd.Env = builder.Env(p.Environ(), builder.Overlay{
			LibPath:       r.LibPath,
			AuthToken:     r.AuthToken,
			RegistryToken: r.RegistryToken,
		})

		if r.BuildTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, r.BuildTimeout)
			defer cancel()
		}
		return p.Invoker.Run(ctx, cmd)
	})
	if err != nil {
		return fail(span, err)
	}

	var deployed []string
	err = p.stage(ctx, StageDeploy, func(ctx context.Context) error {
		d, deployPath, closeTarget, err := p.deployer(ctx)
		if err != nil {
			return err
		}
		defer closeTarget()

		meta := descriptor.New(r.Description, rel, now)
		deployed, err = d.Deploy(root, deployPath, b.Artifacts(r.Name, meta))
		return err
	})
	if err != nil {
		return fail(span, err)
	}

	return Result{
		BuildID:    p.BuildID,
		Name:       r.Name,
		Release:    rel,
		DeployPath: r.DeployPath,
		Artifacts:  deployed,
	}, nil
}

// deployer returns the Deployer for the request's deploy path, connecting
// to the SFTP server when the path is remote.
func (p *Pipeline) deployer(ctx context.Context) (*deploy.Deployer, string, func(), error) {
	r := p.Request
	if !deploy.IsRemote(r.DeployPath) {
		return p.Deployer, r.DeployPath, func() {}, nil
	}

	remote, err := deploy.ParseRemote(r.DeployPath)
	if err != nil {
		return nil, "", nil, err
	}
	p.Logger.Info("connecting to deploy target", "addr", remote.Addr, "user", remote.User)
	target, err := deploy.DialSFTP(ctx, remote, r.DeploySSH)
	if err != nil {
		return nil, "", nil, &deploy.CopyWriteError{Path: r.DeployPath, Err: err}
	}

	d := *p.Deployer
	d.Target = target
	closeTarget := func() {
		if err := target.Close(); err != nil {
			p.Logger.Warn("closing deploy target", "error", err)
		}
	}
	return &d, remote.Path, closeTarget, nil
}

// stage runs fn in its own span and wraps a failure with the stage name.
func (p *Pipeline) stage(ctx context.Context, s Stage, fn func(context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return &StageError{Stage: s, Err: err}
	}

	ctx, span := telemetry.Tracer().Start(ctx, string(s))
	defer span.End()

	start := time.Now()
	p.Logger.Debug("stage started", "stage", s)

	if err := fn(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return &StageError{Stage: s, Err: err}
	}

	p.Logger.Debug("stage finished", "stage", s, "elapsed", time.Since(start))
	return nil
}

func fail(span trace.Span, err error) (Result, error) {
	span.SetStatus(codes.Error, err.Error())
	return Result{}, err
}
