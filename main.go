package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"runtime/debug"

	"github.com/GiGurra/boa/pkg/boa"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/llehouerou/reel/cmd"
)

func appVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return "dev"
}

func main() {
	// .env may set REEL_CONFIG
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "reel: loading .env: %v\n", err)
	}

	boa.CmdT[boa.NoParams]{
		Use:     "reel",
		Short:   "Terminal media player that remembers where you left off",
		Version: appVersion(),
		SubCmds: []*cobra.Command{
			cmd.PlayCmd(),
			cmd.SourcesCmd(),
			cmd.StateCmd(),
			cmd.ConfigCmd(),
		},
	}.Run()
}
