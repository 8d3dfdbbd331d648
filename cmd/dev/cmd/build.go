package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/gophertribe/devtool/build"
)

const (
	binary        = "dist/rangefinder"
	mainPackage   = "./cmd/rangefinder"
	configPackage = "github.com/mklimuk/rangefinder/config"
	builderImage  = "gophertribe/gobuild:1.25-bookworm"
)

func BuildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build the rangefinder binary",
		Long: `Build the rangefinder binary into dist/.

Native builds run go build directly (cgo is required by the hid adapter).
Builds for another os/arch pair run inside the gobuild docker image, which
calls this command again with --cross-os and --cross-arch set.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			goos, _ := cmd.Flags().GetString("os")
			goarch, _ := cmd.Flags().GetString("arch")
			version, _ := cmd.Flags().GetString("version")
			crossOs, _ := cmd.Flags().GetString("cross-os")
			crossArch, _ := cmd.Flags().GetString("cross-arch")

			if goos != runtime.GOOS || goarch != runtime.GOARCH {
				noCache, err := cmd.Flags().GetBool("no-cache")
				if err != nil {
					return fmt.Errorf("could not get no-cache flag: %w", err)
				}
				return build.Docker(cmd.Context(), fmt.Sprintf("./dev-%s-%s", goos, goarch),
					[]string{"build", "--version", version, "--cross-os", goos, "--cross-arch", goarch},
					build.DockerBuildOpts{NoCache: noCache, Image: builderImage})
			}
			if crossOs != "" && crossArch != "" {
				goos, goarch = crossOs, crossArch
			}
			return build.GoBuild(binary, mainPackage, build.GoBuildOpts{
				Version:       version,
				InjectVersion: true,
				ConfigPackage: configPackage,
				EnableCgo:     true,
				Arch:          goarch,
				OS:            goos,
			})
		},
	}
	cmd.Flags().Bool("no-cache", false, "do not use cache when building in docker")
	cmd.Flags().String("version", "latest", "version injected into config.Version")
	cmd.Flags().String("os", runtime.GOOS, "os to build for")
	cmd.Flags().String("arch", runtime.GOARCH, "arch to build for")
	cmd.Flags().String("cross-os", "", "os to cross-compile for inside the builder image")
	cmd.Flags().String("cross-arch", "", "arch to cross-compile for inside the builder image")
	return cmd
}
