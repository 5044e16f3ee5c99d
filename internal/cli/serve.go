package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"apex-sim/internal/config"
	"apex-sim/internal/log"
	"apex-sim/internal/server"
)

func NewServeCmd() *cobra.Command {
	var originPatterns []string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "starts the HTTP and websocket server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := loadCatalog()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv := server.New(cat, newPathStore(cat), server.Options{
				Render:         renderOptions(),
				FPS:            config.StreamFPS,
				OriginPatterns: originPatterns,
			}, log.Default().Named("server"))
			return srv.ListenAndServe(ctx, config.ServerAddr)
		},
	}
	cmd.Flags().StringVarP(&config.ServerAddr, "addr", "a", "localhost:8080",
		"server listen address")
	cmd.Flags().IntVar(&config.StreamFPS, "fps", 30,
		"frames per second pushed to websocket clients")
	cmd.Flags().StringSliceVar(&originPatterns, "origin", nil,
		"additional allowed websocket origin patterns")
	return cmd
}
