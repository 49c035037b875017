package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/GiGurra/boa/pkg/boa"
	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/llehouerou/reel/internal/errmsg"
	"github.com/llehouerou/reel/internal/state"
)

type StateParams struct {
	Config string `short:"c" long:"config" optional:"true" help:"Config file to load after the default locations"`
	JSON   bool   `long:"json" help:"Output as JSON"`
	Limit  int    `short:"n" long:"limit" default:"10" help:"Number of snapshots to show"`
}

func StateCmd() *cobra.Command {
	return boa.CmdT[StateParams]{
		Use:         "state",
		Short:       "Show the saved playback state and recent snapshots",
		ParamEnrich: defaultParamEnricher(),
		RunFunc: func(params *StateParams, cmd *cobra.Command, args []string) {
			cfg, err := loadConfig(params.Config)
			exitOnError(errmsg.OpConfigLoad, err)
			store, err := openStore(cfg.State.Path)
			exitOnError(errmsg.OpStateOpen, err)
			err = renderState(os.Stdout, store, params.Limit, params.JSON)
			_ = store.Close()
			exitOnError(errmsg.OpStateLoad, err)
		},
	}.ToCobra()
}

func openStore(path string) (*state.Manager, error) {
	if path != "" {
		return state.OpenPath(path)
	}
	return state.Open()
}

type stateEntry struct {
	Source     string `json:"source"`
	PositionMS int64  `json:"position_ms"`
	Window     int    `json:"window_index"`
	AutoPlay   bool   `json:"auto_play"`
	SavedAt    string `json:"saved_at"`
}

type stateReport struct {
	Current *stateEntry  `json:"current"`
	History []stateEntry `json:"history"`
}

func toEntry(s state.SavedPlayback) stateEntry {
	return stateEntry{
		Source:     string(s.State.Source),
		PositionMS: s.State.PositionMillis(),
		Window:     s.State.Window,
		AutoPlay:   s.State.AutoPlay,
		SavedAt:    s.SavedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
}

func renderState(w io.Writer, store state.Interface, limit int, asJSON bool) error {
	current, err := store.LastSaved()
	if err != nil {
		return err
	}
	history, err := store.History(limit)
	if err != nil {
		return err
	}

	if asJSON {
		report := stateReport{History: make([]stateEntry, 0, len(history))}
		if current != nil {
			e := toEntry(*current)
			report.Current = &e
		}
		for _, h := range history {
			report.History = append(report.History, toEntry(h))
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	if current == nil {
		fmt.Fprintln(w, "No saved playback state.")
		return nil
	}
	fmt.Fprintf(w, "Resume: %s at %s (window %d, auto-play %s), saved %s\n",
		current.State.Source,
		current.State.Position,
		current.State.Window,
		onOff(current.State.AutoPlay),
		humanize.Time(current.SavedAt),
	)

	if len(history) == 0 {
		return nil
	}
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Saved", "Source", "Window", "Position", "Auto-play"})
	for _, h := range history {
		t.AppendRow(table.Row{
			humanize.Time(h.SavedAt),
			h.State.Source,
			h.State.Window,
			h.State.Position,
			onOff(h.State.AutoPlay),
		})
	}
	t.Render()
	return nil
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
