package main

import (
	"context"
	"time"
)

// staleTokenAge is how long a device may go without re-registering its push
// token before it is dropped.
const staleTokenAge = 70 * 24 * time.Hour

func (app *application) prunePushTokensDaily(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()

		prune := func() {
			pctx, cancel := context.WithTimeout(ctx, time.Minute)
			defer cancel()
			if err := app.store.PushTokens.PruneStaleTokens(pctx, staleTokenAge); err != nil {
				app.logger.Errorf("Error pruning stale push tokens: %v", err)
				return
			}
			app.logger.Infof("Pruned stale push tokens at %s", time.Now().Format(time.RFC1123))
		}

		// Run once immediately
		prune()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				prune()
			}
		}
	}()
}
