package reltui

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/relnote/relnote/pkg/changelog"
	"github.com/relnote/relnote/pkg/log"
	"github.com/relnote/relnote/pkg/release"
)

// ReleaseBuilder is the build surface the TUI drives.
type ReleaseBuilder interface {
	Build(ctx context.Context, opts release.Options) (*changelog.Release, error)
	Subscribe(f func(any))
}

// BuildTUI runs a release build behind the progress model, forwarding
// builder events and log output into the running program.
type BuildTUI struct {
	builder ReleaseBuilder
	p       *tea.Program
	w       io.Writer
}

func NewBuildTUI(w io.Writer, logLevel string, builder ReleaseBuilder) (*BuildTUI, error) {
	c := &BuildTUI{
		builder: builder,
		w:       w,
	}

	c.builder.Subscribe(c.broadcastEvent)

	handler, err := log.CreateHandler(c, logLevel, log.TextFormat)
	if err != nil {
		return nil, fmt.Errorf("failed to create log handler: %w", err)
	}

	slog.SetDefault(slog.New(handler))

	return c, nil
}

func (c *BuildTUI) broadcastEvent(evt any) {
	if c.p != nil {
		c.p.Send(evt)
	}
}

func (c *BuildTUI) Write(p []byte) (int, error) {
	c.broadcastEvent(teaMsgWriteLog(string(p)))

	return len(p), nil
}

// Build runs the builder under the progress model and returns its
// result once the program has exited.
func (c *BuildTUI) Build(ctx context.Context, opts release.Options) (*changelog.Release, error) {
	c.p = tea.NewProgram(NewBuildModel(), tea.WithOutput(c.w))

	var (
		rel      *changelog.Release
		buildErr error
	)

	done := make(chan struct{})

	go func() {
		defer close(done)

		rel, buildErr = c.builder.Build(ctx, opts)
	}()

	if _, err := c.p.Run(); err != nil {
		return nil, fmt.Errorf("failed to launch tui: %w", err)
	}

	<-done

	return rel, buildErr
}
