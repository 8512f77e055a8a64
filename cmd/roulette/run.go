package main

import (
	"context"
	"log/slog"

	"github.com/alejandrodnm/roulettebot/config"
	"github.com/alejandrodnm/roulettebot/internal/adapters/feed"
	"github.com/alejandrodnm/roulettebot/internal/engine"
	"github.com/alejandrodnm/roulettebot/internal/ports"
)

// run conecta el engine con la fuente de resultados. Con el feed en vivo,
// si la mesa deja de emitir se cae al feed simulado para no dejar la
// sesión a medias; el estado del engine (historia, bankroll) sobrevive al
// cambio de fuente.
func run(ctx context.Context, cfg *config.Config, eng *engine.Engine, simulate bool, spins int) error {
	if !simulate {
		ws := feed.NewWebSocket(cfg.Feed.WSURL, cfg.Feed.CasinoID, cfg.Feed.TableID, cfg.Feed.Currency)
		err := drive(ctx, eng, ws)
		if ctx.Err() != nil || eng.State() == engine.StateExhausted {
			return err
		}
		slog.Warn("live feed unavailable, falling back to simulation", "err", err)
	}

	sim := feed.NewSimulated(cfg.Feed.SpinsPerSecond, cfg.Feed.Seed, spins)
	return drive(ctx, eng, sim)
}

// drive ejecuta un feed y el engine hasta que uno de los dos termine.
// El feed siempre se cancela antes de volver: un engine que paró por
// bankroll agotado no debe dejar al feed bloqueado enviando.
func drive(ctx context.Context, eng *engine.Engine, f ports.OutcomeFeed) error {
	feedCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	feedErr := make(chan error, 1)
	go func() {
		feedErr <- f.Run(feedCtx)
	}()

	runErr := eng.Run(ctx, f)
	cancel()
	ferr := <-feedErr

	if runErr != nil {
		return runErr
	}
	return ferr
}
