package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ta346/greenzone-web/internal/config"
	"github.com/ta346/greenzone-web/internal/dispatch"
	"github.com/ta346/greenzone-web/internal/region"
	"github.com/ta346/greenzone-web/internal/telemetry"
	"github.com/ta346/greenzone-web/internal/ui"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	tel, err := telemetry.New(ctx, "greenzone")
	if err != nil {
		fmt.Fprintf(os.Stderr, "telemetry: %v\n", err)
		os.Exit(1)
	}
	defer tel.Shutdown(ctx)

	regions := region.MustLoad()
	d := dispatch.New(cfg.Client.APIBaseURL, dispatch.WithTracer(tel.Tracer()))

	model := ui.NewApp(regions, region.VegetationIndices(), region.Years(), d)
	p := tea.NewProgram(model.Adapter(), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}
