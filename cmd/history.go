package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"

	"github.com/lightloom/go-ray-engine/pkg/history"
)

// History lists recorded benchmark and render runs
func History(ctx *cli.Context) error {
	setupLogging(ctx)

	path := ctx.String("history-db")
	if path == "" {
		return errors.New("missing history-db path")
	}

	store, err := history.Open(path)
	if err != nil {
		return err
	}
	defer store.Close()

	if ctx.Bool("json") {
		return store.ExportJSON(os.Stdout, ctx.Int("limit"))
	}

	runs, err := store.List(ctx.Int("limit"))
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		logger.Notice("no recorded runs")
		return nil
	}

	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"ID", "Recorded", "Scene", "Viewport", "Iter", "Passes", "Rays", "Rays/s", "Tracing", "Workers"})
	for _, run := range runs {
		table.Append([]string{
			fmt.Sprintf("%d", run.ID),
			run.CreatedAt.Format("2006-01-02 15:04:05"),
			run.Scene,
			fmt.Sprintf("%dx%d", run.Width, run.Height),
			fmt.Sprintf("%d", run.Iterations),
			fmt.Sprintf("%d", run.Passes),
			fmt.Sprintf("%d", run.TotalRays),
			fmt.Sprintf("%.3e", run.RaysPerSecond),
			(time.Duration(run.TracingMillis) * time.Millisecond).String(),
			fmt.Sprintf("%d", run.Workers),
		})
	}

	table.Render()
	logger.Noticef("recorded runs\n%s", buf.String())
	return nil
}
