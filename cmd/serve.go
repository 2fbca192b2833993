package cmd

import (
	"io"
	"os"

	"github.com/urfave/cli"

	"github.com/lightloom/go-ray-engine/pkg/log"
	"github.com/lightloom/go-ray-engine/web/server"
)

// Serve starts the web interface
func Serve(ctx *cli.Context) error {
	// Tee logs into a ring buffer so the web console can replay them
	console := server.NewConsoleBuffer(200)
	log.SetSink(io.MultiWriter(os.Stdout, console))
	setupLogging(ctx)

	registry := newRegistry(ctx)
	defer registry.Shutdown()

	store, err := openHistory(ctx)
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
	}

	return server.NewServer(ctx.Int("port"), registry, store, console).Start()
}
