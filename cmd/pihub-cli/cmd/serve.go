package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"pihub/internal/scheduler"
	"pihub/internal/web"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP dashboard and the background scheduler",
	Long: `Serve the JSON dashboard API and keep the background cadence running:
mode ticks, remote sync and posture checks. Stops on SIGINT/SIGTERM.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		addr := serveAddr
		if addr == "" {
			addr = GetConfig().HTTPAddr
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		srv := web.NewServer(GetHub(), addr, web.WithLogger(log.Default()))
		if err := srv.Start(ctx); err != nil {
			return err
		}
		fmt.Printf("dashboard on http://%s\n", srv.Addr())

		cfg := GetConfig()
		sched := scheduler.New(GetHub(),
			scheduler.WithTickInterval(time.Duration(cfg.TickIntervalSeconds)*time.Second),
			scheduler.WithSyncInterval(time.Duration(cfg.Motion.SyncIntervalSeconds)*time.Second),
			scheduler.WithPostureInterval(time.Duration(cfg.Posture.CheckIntervalSeconds)*time.Second),
			scheduler.WithErrorHandler(func(err error) {
				log.Printf("scheduler: %v", err)
			}),
		)
		go sched.Run(ctx)

		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVarP(&serveAddr, "addr", "a", "", "listen address (defaults to config http_addr)")
}
