package bppcli

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/urfave/cli"

	"github.com/benefits-network/benefits-bpp/bpp/catalog"
	"github.com/benefits-network/benefits-bpp/bpp/client"
	"github.com/benefits-network/benefits-bpp/bpp/constants"
	"github.com/benefits-network/benefits-bpp/bpp/database"
	"github.com/benefits-network/benefits-bpp/bpp/health"
	"github.com/benefits-network/benefits-bpp/bpp/metrics"
	"github.com/benefits-network/benefits-bpp/bpp/models"
	"github.com/benefits-network/benefits-bpp/bpp/models/postgres"
	"github.com/benefits-network/benefits-bpp/bpp/service"
	"github.com/benefits-network/benefits-bpp/bpp/web"
	"github.com/benefits-network/benefits-bpp/conf"
	"github.com/benefits-network/benefits-bpp/log"
)

// App Name and usage.  Edit them here to prevent breaking tests
const Name = "bpp"
const Usage = "Benefits provider platform CLI"

type ServerConfig struct {
	Port            string `conf:"BPP_PORT" conf_default:":3000"`
	ReadTimeout     int    `conf:"API_READ_TIMEOUT" conf_default:"10"`
	WriteTimeout    int    `conf:"API_WRITE_TIMEOUT" conf_default:"20"`
	IdleTimeout     int    `conf:"API_IDLE_TIMEOUT" conf_default:"120"`
	ShutdownTimeout int    `conf:"API_SHUTDOWN_TIMEOUT" conf_default:"15"`
}

func GetApp() *cli.App {
	return setUpApp()
}

func setUpApp() *cli.App {
	app := cli.NewApp()
	app.Name = Name
	app.Usage = Usage
	app.Version = constants.Version
	var filePath, action, bapID, bapURI, bppID, bppURI string
	app.Commands = []cli.Command{
		{
			Name:  "start-api",
			Usage: "Start the API",
			Action: func(c *cli.Context) error {
				ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
				defer stop()

				srv, cleanup, err := newServer(ctx)
				if err != nil {
					return err
				}
				defer cleanup()

				fmt.Fprintf(app.Writer, "%s\n", "Starting bpp...")
				return serve(ctx, srv)
			},
		},
		{
			Name:     "map-file",
			Category: "Debugging tools",
			Usage:    "Map a JSON array of benefit records and print the protocol message",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:        "file",
					Usage:       "Location of the benefit records",
					Destination: &filePath,
				},
				cli.StringFlag{
					Name:        "action",
					Usage:       "Protocol action of the message",
					Value:       constants.OnSearch,
					Destination: &action,
				},
				cli.StringFlag{
					Name:        "bap-id",
					Usage:       "ID of the requesting BAP",
					Destination: &bapID,
				},
				cli.StringFlag{
					Name:        "bap-uri",
					Usage:       "URI of the requesting BAP",
					Destination: &bapURI,
				},
				cli.StringFlag{
					Name:        "bpp-id",
					Usage:       "ID of this BPP (defaults to BPP_ID)",
					Destination: &bppID,
				},
				cli.StringFlag{
					Name:        "bpp-uri",
					Usage:       "URI of this BPP (defaults to BPP_URI)",
					Destination: &bppURI,
				},
			},
			Action: func(c *cli.Context) error {
				if filePath == "" {
					fmt.Fprintf(app.Writer, "file is required\n")
					return errors.New("file is required")
				}
				if bppID == "" {
					bppID = conf.GetEnv("BPP_ID")
				}
				if bppURI == "" {
					bppURI = conf.GetEnv("BPP_URI")
				}

				out, err := mapFile(context.Background(), filePath, action,
					models.RequesterIdentity{BapID: bapID, BapURI: bapURI}, bppID, bppURI)
				if err != nil {
					return err
				}
				fmt.Fprintf(app.Writer, "%s\n", out)
				return nil
			},
		},
	}
	return app
}

// newServer wires the API from configuration. The returned cleanup releases the
// database connection when one was opened.
func newServer(ctx context.Context) (*http.Server, func(), error) {
	cfg, err := service.LoadConfig()
	if err != nil {
		return nil, nil, err
	}
	clientCfg, err := client.LoadConfig()
	if err != nil {
		return nil, nil, err
	}
	srvCfg := &ServerConfig{}
	if err := conf.Checkout(srvCfg); err != nil {
		return nil, nil, err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	content := client.NewStrapiClient(clientCfg, m)

	var (
		repository models.Repository
		hc         health.HealthChecker
		db         *sql.DB
	)
	if conf.GetEnv("DATABASE_URL") != "" {
		dbCfg, err := database.LoadConfig()
		if err != nil {
			return nil, nil, err
		}
		if db, err = database.Connect(ctx, dbCfg); err != nil {
			return nil, nil, err
		}
		repository = postgres.NewRepository(db)
		hc = health.NewHealthChecker(db, content)
	} else {
		log.API.Warn("DATABASE_URL is not set, application counts are unavailable")
		hc = health.NewHealthChecker(nil, content)
	}

	cleanup := func() {
		if db == nil {
			return
		}
		if err := db.Close(); err != nil {
			log.API.Errorf("failed to close database: %s", err)
		}
	}

	svc := service.NewService(cfg, content, repository, m)
	srv := &http.Server{
		Addr:         srvCfg.Port,
		Handler:      web.NewAPIRouter(web.NewAPI(svc, hc, m), reg),
		ReadTimeout:  time.Duration(srvCfg.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(srvCfg.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(srvCfg.IdleTimeout) * time.Second,
	}
	srv.RegisterOnShutdown(func() {
		log.API.Info("Shutting down bpp")
	})

	shutdownTimeout := time.Duration(srvCfg.ShutdownTimeout) * time.Second
	return srv, func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.API.Errorf("failed to shut down server: %s", err)
		}
		cleanup()
	}, nil
}

// serve runs srv until ctx is done.
func serve(ctx context.Context, srv *http.Server) error {
	errs := make(chan error, 1)
	go func() { errs <- srv.ListenAndServe() }()

	select {
	case err := <-errs:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		return nil
	}
}

func mapFile(ctx context.Context, path, action string, id models.RequesterIdentity, bppID, bppURI string) ([]byte, error) {
	raw, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", path)
	}

	mapper := catalog.NewMapper(catalog.NewContextBuilder(bppID, bppURI), nil)
	resp, err := mapper.MapRaw(ctx, json.RawMessage(raw), action, id)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(resp, "", "  ")
}
