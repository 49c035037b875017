package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/GiGurra/boa/pkg/boa"
	"github.com/spf13/cobra"

	"github.com/llehouerou/reel/internal/config"
	"github.com/llehouerou/reel/internal/errmsg"
)

func ConfigCmd() *cobra.Command {
	return boa.CmdT[boa.NoParams]{
		Use:     "config",
		Short:   "Manage the configuration file",
		SubCmds: []*cobra.Command{ConfigInitCmd(), ConfigPathCmd()},
	}.ToCobra()
}

type ConfigInitParams struct {
	Path  string `short:"p" long:"path" optional:"true" help:"Where to write the file (default: user config dir)"`
	Force bool   `short:"f" long:"force" help:"Overwrite an existing file"`
}

func ConfigInitCmd() *cobra.Command {
	return boa.CmdT[ConfigInitParams]{
		Use:         "init",
		Short:       "Write a default config file",
		ParamEnrich: defaultParamEnricher(),
		RunFunc: func(params *ConfigInitParams, cmd *cobra.Command, args []string) {
			if err := runConfigInit(os.Stdout, params); err != nil {
				if errors.Is(err, config.ErrExists) {
					fmt.Fprintln(os.Stderr, "config file already exists, use --force to overwrite")
					os.Exit(1)
				}
				exitOnError(errmsg.OpConfigWrite, err)
			}
		},
	}.ToCobra()
}

func runConfigInit(w io.Writer, params *ConfigInitParams) error {
	path := config.Path(params.Path)
	if err := config.WriteDefault(path, params.Force); err != nil {
		return err
	}
	fmt.Fprintf(w, "Wrote %s\n", path)
	return nil
}

type ConfigPathParams struct {
	Config string `short:"c" long:"config" optional:"true" help:"Explicit config file"`
}

func ConfigPathCmd() *cobra.Command {
	return boa.CmdT[ConfigPathParams]{
		Use:         "path",
		Short:       "Print the config file location",
		ParamEnrich: defaultParamEnricher(),
		RunFunc: func(params *ConfigPathParams, cmd *cobra.Command, args []string) {
			fmt.Println(config.Path(params.Config))
		},
	}.ToCobra()
}
