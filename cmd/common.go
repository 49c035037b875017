// Package cmd holds reel's subcommands.
package cmd

import (
	"fmt"
	"os"

	"github.com/GiGurra/boa/pkg/boa"

	"github.com/llehouerou/reel/internal/config"
	"github.com/llehouerou/reel/internal/errmsg"
)

func defaultParamEnricher() boa.ParamEnricher {
	return boa.ParamEnricherCombine(
		boa.ParamEnricherBool,
		boa.ParamEnricherName,
		boa.ParamEnricherShort,
	)
}

// loadConfig loads and validates the layered configuration.
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// exitOnError prints a formatted failure and exits with status 1.
func exitOnError(op errmsg.Op, err error) {
	if err == nil {
		return
	}
	fmt.Fprintln(os.Stderr, errmsg.Format(op, err))
	os.Exit(1)
}
