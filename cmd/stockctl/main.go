// Command stockctl runs operational tasks against the uniform stock service.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"

	"github.com/uniformdesk/uniformdesk/cmd/stockctl/cli"
	"github.com/uniformdesk/uniformdesk/internal/app"
	"github.com/uniformdesk/uniformdesk/internal/platform/cache"
	"github.com/uniformdesk/uniformdesk/internal/platform/db"
)

const usage = `usage: stockctl <command> [flags]

commands:
  report    print the reconciled ledger (-from, -to, -json, -fail-on-out-of-stock)
  refresh   invalidate cached reports and queue a recompute (-from, -to)
  queue     show refresh queue depth
  publish   emit a change notification (-kind, -id)
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	logger := app.NewLogger(cfg)

	os.Exit(run(ctx, cfg, logger, os.Args[1], os.Args[2:]))
}

func run(ctx context.Context, cfg *app.Config, logger *slog.Logger, cmd string, args []string) int {
	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	from := fs.String("from", "", "window start, YYYY-MM-DD")
	to := fs.String("to", "", "window end, YYYY-MM-DD")
	asJSON := fs.Bool("json", false, "emit JSON")
	failOOS := fs.Bool("fail-on-out-of-stock", false, "exit 10 when any variant is out of stock")
	kind := fs.String("kind", "", "notification kind")
	id := fs.String("id", "", "changed entity id")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	switch cmd {
	case "report":
		pool, err := db.New(ctx, cfg.PGDSN)
		if err != nil {
			fmt.Fprintf(os.Stderr, "report: %v\n", err)
			return 1
		}
		defer pool.Close()
		// Reports are computed directly so the command works without Redis.
		svc := app.NewStockService(cfg, pool, nil, nil, logger)
		return cli.ReportCommand(ctx, svc, cli.ReportOptions{From: *from, To: *to, JSONOutput: *asJSON, FailOnOutOfStock: *failOOS})
	case "refresh":
		redisClient, err := cache.New(ctx, cfg.RedisAddr)
		if err != nil {
			fmt.Fprintf(os.Stderr, "refresh: %v\n", err)
			return 1
		}
		defer redisClient.Close()
		if err := app.NewStockService(cfg, nil, redisClient, nil, logger).Invalidate(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "refresh: %v\n", err)
			return 1
		}
		jobsCLI := cli.NewJobsCLI(cfg.RedisAddr)
		defer jobsCLI.Close()
		if err := jobsCLI.Trigger(ctx, *from, *to); err != nil {
			fmt.Fprintf(os.Stderr, "refresh: %v\n", err)
			return 1
		}
		fmt.Println("refresh queued")
		return 0
	case "queue":
		jobsCLI := cli.NewJobsCLI(cfg.RedisAddr)
		defer jobsCLI.Close()
		stats, err := jobsCLI.InspectQueue(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "queue: %v\n", err)
			return 1
		}
		_ = json.NewEncoder(os.Stdout).Encode(stats)
		return 0
	case "publish":
		var redisClient *redis.Client
		if cfg.NotifyDriver == app.NotifyRedis {
			client, err := cache.New(ctx, cfg.RedisAddr)
			if err != nil {
				fmt.Fprintf(os.Stderr, "publish: %v\n", err)
				return 1
			}
			defer client.Close()
			redisClient = client
		}
		publisher, err := app.NewPublisher(cfg, redisClient)
		if err != nil {
			fmt.Fprintf(os.Stderr, "publish: %v\n", err)
			return 1
		}
		defer publisher.Close()
		return cli.PublishCommand(ctx, publisher, cli.PublishOptions{Kind: *kind, EntityID: *id})
	default:
		fmt.Fprint(os.Stderr, usage)
		return 2
	}
}
