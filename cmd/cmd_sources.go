package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/GiGurra/boa/pkg/boa"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/llehouerou/reel/internal/catalog"
	"github.com/llehouerou/reel/internal/errmsg"
	"github.com/llehouerou/reel/internal/player"
)

type SourcesParams struct {
	Config string `short:"c" long:"config" optional:"true" help:"Config file to load after the default locations"`
}

func SourcesCmd() *cobra.Command {
	return boa.CmdT[SourcesParams]{
		Use:         "sources",
		Short:       "List the configured media sources",
		ParamEnrich: defaultParamEnricher(),
		RunFunc: func(params *SourcesParams, cmd *cobra.Command, args []string) {
			cfg, err := loadConfig(params.Config)
			exitOnError(errmsg.OpConfigLoad, err)
			cat, err := cfg.BuildCatalog()
			exitOnError(errmsg.OpCatalogBuild, err)
			renderSources(os.Stdout, cat)
		},
	}.ToCobra()
}

func yesNo(b bool) string { return lo.Ternary(b, "yes", "no") }

func renderSources(w io.Writer, cat *catalog.Catalog) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"ID", "Title", "Kind", "Locator", "Playable"})

	t.AppendRows(lo.Map(cat.Entries(), func(e catalog.Entry, _ int) table.Row {
		return table.Row{e.ID, e.Label(), e.Subtitle, e.Locator, yesNo(player.IsSupported(e.Locator))}
	}))

	if cat.HasPlaylist() {
		locators, _ := cat.Resolve(catalog.Playlist)
		playable := lo.CountBy(locators, player.IsSupported)
		t.AppendSeparator()
		t.AppendRow(table.Row{
			catalog.Playlist,
			cat.Label(catalog.Playlist),
			"Aggregate",
			fmt.Sprintf("%d sources", len(locators)),
			fmt.Sprintf("%d/%d", playable, len(locators)),
		})
	}
	t.Render()
}
