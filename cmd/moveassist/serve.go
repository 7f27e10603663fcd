package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vbonduro/moveassist/internal/capture"
	"github.com/vbonduro/moveassist/internal/store"
	"github.com/vbonduro/moveassist/internal/web"
)

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.serve(cmd.Context())
		},
	}
	cmd.Flags().String("listen-addr", a.v.GetString("listen_addr"), "HTTP listen address")
	mustBind(a.v, cmd.Flags(), "listen_addr", "listen-addr")
	return cmd
}

func (a *app) serve(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	m, closeMedium, err := newMedium(a.cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeMedium(); err != nil {
			a.logger.Error("failed to close storage", "error", err)
		}
	}()

	boxes, err := store.Open(ctx, m, a.logger)
	if err != nil {
		return err
	}
	defer func() { _ = boxes.Close() }()

	assistant := newAssistant(a.cfg, a.logger)
	sessions := capture.NewManager(capture.Options{
		Tagger:        assistant,
		Suggester:     assistant,
		Camera:        newCamera(a.cfg, a.logger),
		Saver:         boxes,
		Logger:        a.logger,
		MaxPhotoBytes: a.cfg.MaxPhotoBytes,
	}, a.cfg.SessionTTL)
	defer sessions.Close()
	go sessions.Run(ctx)

	server := web.NewServer(boxes, sessions, a.logger)
	if err := server.ListenAndServe(ctx, a.cfg.ListenAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		a.logger.Error("server error", "error", err)
		return err
	}
	return nil
}
