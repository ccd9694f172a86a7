package cmd

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/erpforge/orchestrator-go/pkg/service"
	"github.com/erpforge/orchestrator-go/pkg/stores"
	"github.com/erpforge/orchestrator-go/pkg/stores/s3"
)

var (
	portFlag   int
	hostFlag   string
	driverFlag string

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Serve the orchestrator API",
		Long:  longServe,
		RunE: func(cmd *cobra.Command, args []string) error {
			driver := driverFlag
			if driver == "" {
				driver = viper.GetString("storage.driver")
			}

			col, err := buildCollection(cmd.Context(), driver)
			if err != nil {
				return err
			}

			addr := fmt.Sprintf("%s:%d", hostFlag, portFlag)
			log.Info("starting orchestrator API", "addr", addr, "driver", driver)

			return service.NewServer(col, driver, addr).Start()
		},
	}
)

func buildCollection(ctx context.Context, driver string) (stores.Collection, error) {
	switch driver {
	case "", "memory":
		return stores.NewInMemoryCollection(service.TaskCollection), nil
	case "s3":
		conn, err := s3.NewConn(ctx, s3.Config{
			Endpoint:  viper.GetString("storage.s3.endpoint"),
			AccessKey: viper.GetString("storage.s3.access_key"),
			SecretKey: viper.GetString("storage.s3.secret_key"),
			Bucket:    viper.GetString("storage.s3.bucket"),
			UseSSL:    viper.GetBool("storage.s3.use_ssl"),
		})
		if err != nil {
			return nil, err
		}
		return s3.NewCollection(conn, service.TaskCollection), nil
	default:
		return nil, fmt.Errorf("unknown storage driver: %s", driver)
	}
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntVarP(&portFlag, "port", "p", 8000, "Port to serve on")
	serveCmd.Flags().StringVarP(&hostFlag, "host", "H", "0.0.0.0", "Host address to bind to")
	serveCmd.Flags().StringVar(&driverFlag, "driver", "", "Storage driver (memory or s3), overrides config")
}

var longServe = `
Serve the orchestrator API.

Examples:
  # Serve on port 8080 with the in-memory store
  orchestrator-go serve --port 8080

  # Serve backed by an S3-compatible object store
  orchestrator-go serve --driver s3
`
