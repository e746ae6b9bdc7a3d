package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/cabindev/cabin/internal/config"
	"github.com/cabindev/cabin/internal/devcontainer"
	"github.com/cabindev/cabin/internal/docker"
	"github.com/cabindev/cabin/internal/features"
	"github.com/cabindev/cabin/internal/fileutil"
	"github.com/cabindev/cabin/internal/gitutil"
	"github.com/cabindev/cabin/internal/lifecycle"
	"github.com/cabindev/cabin/internal/lock"
	"github.com/cabindev/cabin/internal/preflight"
	"github.com/cabindev/cabin/internal/secrets"
	"github.com/cabindev/cabin/internal/ui"
)

var (
	upOverlays       []string
	upSecrets        []string
	upSkipSubmodules bool
	upNoPull         bool
)

// upCmd represents the up command.
var upCmd = &cobra.Command{
	Use:   "up",
	Short: "Provision and start the dev container",
	Long: `Bring the workspace's dev container up.

Resolves the configuration (overlays merged, variables substituted),
initializes git submodules, pulls the base image, creates and starts
the container, and runs the lifecycle commands in order:
initializeCommand on the host, then onCreateCommand,
updateContentCommand and postCreateCommand inside the container,
followed by postStartCommand and postAttachCommand.

Compose-based configurations are delegated to docker compose with a
generated override file.

Examples:
  cabin up
  cabin up -o ci-overlay.json
  cabin up -s secrets.sops.yaml`,
	RunE: runUp,
}

func init() {
	upCmd.Flags().StringArrayVarP(&upOverlays, "overlay", "o", nil, "Additional config files merged over devcontainer.json")
	upCmd.Flags().StringArrayVarP(&upSecrets, "secrets", "s", nil, "SOPS-encrypted files decrypted into the remote environment")
	upCmd.Flags().BoolVar(&upSkipSubmodules, "skip-submodules", false, "Do not initialize git submodules")
	upCmd.Flags().BoolVar(&upNoPull, "no-pull", false, "Skip pulling the base image")

	rootCmd.AddCommand(upCmd)
}

func runUp(cmd *cobra.Command, args []string) error {
	if missing := preflight.CheckRequiredBinaries(); len(missing) > 0 {
		for _, bin := range missing {
			ui.Error("%s not found. %s", bin.Name, bin.InstallHint)
		}
		return fmt.Errorf("missing required binaries")
	}

	ws, err := loadWorkspace()
	if err != nil {
		return err
	}

	return lock.WithLock(ws.LocksDir(), "up", func() error {
		return provision(cmd.Context(), ws)
	})
}

func provision(ctx context.Context, ws *config.Workspace) error {
	cfg, err := resolveWorkspace(ws, upOverlays)
	if err != nil {
		return err
	}

	if result := devcontainer.Validate(cfg); !result.OK() {
		for _, e := range result.Errors {
			ui.Error("%v", e)
		}
		return fmt.Errorf("configuration is invalid")
	}

	id, err := ws.DevcontainerID()
	if err != nil {
		return err
	}

	name := cfg.Name
	if name == "" {
		name = ws.Name()
	}
	ui.Header("Bringing up %s", name)

	remoteEnv, err := collectRemoteEnv(ctx, cfg)
	if err != nil {
		return err
	}

	if !upSkipSubmodules {
		if err := initSubmodules(ctx, ws); err != nil {
			return err
		}
	}

	order, err := featureOrder(cfg)
	if err != nil {
		return err
	}
	for i, feat := range order {
		ui.Step(i+1, "feature %s", feat.Ref)
		if !feat.Ref.IsLocal() && !feat.Ref.Pinned() {
			ui.Warning("feature %s is not pinned to an exact version", feat.Ref.Name)
		}
	}

	runner := &lifecycle.Runner{
		Host: &lifecycle.HostExecer{Dir: ws.Root, Stdout: os.Stdout},
		Env:  remoteEnv,
		Progress: func(phase lifecycle.Phase, cmdName string) {
			if cmdName != "" {
				ui.Info("running %s (%s)", phase, cmdName)
			} else {
				ui.Info("running %s", phase)
			}
		},
	}

	if err := runner.Run(ctx, lifecycle.PhaseInitialize, cfg.InitializeCommand); err != nil {
		return err
	}

	return withDockerClient(ctx, func(client *docker.Client) error {
		var containerID string
		var created bool
		var err error

		switch cfg.Base() {
		case devcontainer.BaseCompose:
			containerID, created, err = composeUp(ctx, ws, cfg, id)
		default:
			containerID, created, err = containerUp(ctx, client, ws, cfg, id)
		}
		if err != nil {
			return err
		}

		runner.Container = &docker.ContainerExecer{
			Client:      client,
			ContainerID: containerID,
			User:        cfg.RemoteUser,
			WorkingDir:  cfg.WorkspaceFolder,
		}

		if err := runner.RunPhases(ctx, cfg, upPhases(created)); err != nil {
			return err
		}

		ui.Success("dev container ready: %s", containerID[:12])
		return nil
	})
}

// upPhases selects the lifecycle phases for this run. Creation
// commands execute once, after the container is first built; later
// runs against the same container only get the start and attach
// hooks.
func upPhases(created bool) []lifecycle.Phase {
	phases := make([]lifecycle.Phase, 0, len(lifecycle.CreationPhases)+2)
	if created {
		phases = append(phases, lifecycle.CreationPhases...)
	}
	return append(phases, lifecycle.PhasePostStart, lifecycle.PhasePostAttach)
}

// containerUp handles image and build based configs. The bool reports
// whether a new container was created, as opposed to an existing one
// being reused.
func containerUp(ctx context.Context, client *docker.Client, ws *config.Workspace, cfg *devcontainer.Config, id string) (string, bool, error) {
	if existing, err := client.FindByWorkspace(ctx, ws.Root); err == nil {
		if !existing.Running {
			ui.Container("starting existing container %s", existing.Name)
			if err := client.Start(ctx, existing.ID); err != nil {
				return "", false, err
			}
		}
		return existing.ID, false, nil
	} else if !errors.Is(err, docker.ErrNotFound) {
		return "", false, err
	}

	image := cfg.Image
	if cfg.Base() == devcontainer.BaseBuild {
		built, err := buildImage(ctx, ws, cfg)
		if err != nil {
			return "", false, err
		}
		image = built
	} else if !upNoPull {
		ui.Build("pulling %s", image)
		if err := client.PullImage(ctx, image, nil); err != nil {
			return "", false, err
		}
	}

	override := true
	if cfg.OverrideCommand != nil {
		override = *cfg.OverrideCommand
	}

	containerID, err := client.Create(ctx, docker.CreateOptions{
		Name:            docker.ContainerName(ws.Root, id),
		Image:           image,
		Workspace:       ws.Root,
		DevcontainerID:  id,
		WorkspaceFolder: cfg.WorkspaceFolder,
		WorkspaceMount:  cfg.WorkspaceMount,
		Mounts:          cfg.Mounts,
		Env:             cfg.ContainerEnv,
		User:            cfg.ContainerUser,
		Ports:           cfg.ForwardPorts,
		Init:            cfg.Init != nil && *cfg.Init,
		Privileged:      cfg.Privileged != nil && *cfg.Privileged,
		OverrideCommand: override,
	})
	if err != nil {
		return "", false, err
	}
	ui.Container("created %s", containerID[:12])

	if err := client.Start(ctx, containerID); err != nil {
		return "", false, err
	}
	return containerID, true, nil
}

// composeUp handles dockerComposeFile configs. As with containerUp,
// the bool reports whether the service container is new.
func composeUp(ctx context.Context, ws *config.Workspace, cfg *devcontainer.Config, id string) (string, bool, error) {
	override, err := docker.ComposeOverride(cfg, ws.Root, id)
	if err != nil {
		return "", false, err
	}
	if err := fileutil.WriteFileAtomic(ws.OverridePath(), override, 0o644); err != nil {
		return "", false, err
	}

	files := make([]string, 0, len(cfg.DockerComposeFile)+1)
	for _, file := range cfg.DockerComposeFile {
		if !filepath.IsAbs(file) {
			file = filepath.Join(ws.ConfigDir(), file)
		}
		files = append(files, file)
	}
	files = append(files, ws.OverridePath())

	project := &docker.ComposeProject{
		Dir:     ws.Root,
		Files:   files,
		Project: "cabin-" + ws.Name(),
	}

	// Probe before up so we know whether compose will create the
	// service container or reuse one from an earlier run.
	_, probeErr := project.ContainerID(ctx, cfg.Service)
	existed := probeErr == nil

	services := append([]string{cfg.Service}, cfg.RunServices...)
	ui.Container("compose up %v", services)
	if err := project.Up(ctx, services...); err != nil {
		return "", false, err
	}

	containerID, err := project.ContainerID(ctx, cfg.Service)
	if err != nil {
		return "", false, err
	}
	return containerID, !existed, nil
}

// buildImage shells out to docker build for Dockerfile configs.
func buildImage(ctx context.Context, ws *config.Workspace, cfg *devcontainer.Config) (string, error) {
	build := cfg.Build

	dockerfile := build.Dockerfile
	if dockerfile == "" {
		dockerfile = "Dockerfile"
	}
	if !filepath.IsAbs(dockerfile) {
		dockerfile = filepath.Join(ws.ConfigDir(), dockerfile)
	}

	buildContext := build.Context
	if buildContext == "" {
		buildContext = ws.ConfigDir()
	} else if !filepath.IsAbs(buildContext) {
		buildContext = filepath.Join(ws.ConfigDir(), buildContext)
	}

	tag := fmt.Sprintf("cabin-%s:latest", ws.Name())
	args := []string{"build", "-f", dockerfile, "-t", tag}
	if build.Target != "" {
		args = append(args, "--target", build.Target)
	}
	for key, value := range build.Args {
		args = append(args, "--build-arg", key+"="+value)
	}
	args = append(args, buildContext)

	ui.Build("building %s", tag)
	host := &lifecycle.HostExecer{Dir: ws.Root, Stdout: os.Stdout}
	if err := host.Exec(ctx, append([]string{"docker"}, args...), nil); err != nil {
		return "", fmt.Errorf("docker build: %w", err)
	}
	return tag, nil
}

func initSubmodules(ctx context.Context, ws *config.Workspace) error {
	submodules, err := gitutil.Submodules(ws.Root)
	if err != nil {
		return err
	}
	if len(submodules) == 0 {
		return nil
	}

	ui.Info("initializing %d git submodule(s)", len(submodules))
	ctx, cancel := context.WithTimeout(ctx, 10*time.Minute)
	defer cancel()
	return gitutil.InitSubmodules(ctx, ws.Root)
}

// collectRemoteEnv combines remoteEnv with decrypted secret overlays.
func collectRemoteEnv(ctx context.Context, cfg *devcontainer.Config) ([]string, error) {
	env := make(map[string]string, len(cfg.RemoteEnv))
	for key, value := range cfg.RemoteEnv {
		env[key] = value
	}

	if len(upSecrets) > 0 {
		if !preflight.IsBinaryAvailable("sops") {
			return nil, fmt.Errorf("--secrets requires the sops binary")
		}
		overlay, err := secrets.New().EnvOverlay(ctx, upSecrets)
		if err != nil {
			return nil, err
		}
		for key, value := range overlay {
			env[key] = value
		}
	}

	return secrets.EnvSlice(env), nil
}

func featureOrder(cfg *devcontainer.Config) ([]features.Feature, error) {
	declared, err := features.ParseAll(cfg.Features)
	if err != nil {
		return nil, err
	}
	return features.InstallOrder(declared, cfg.OverrideFeatureInstallOrder)
}
