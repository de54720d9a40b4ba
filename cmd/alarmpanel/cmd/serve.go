package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nerrad567/gray-logic-alarm/internal/api"
	"github.com/nerrad567/gray-logic-alarm/internal/controller"
	"github.com/nerrad567/gray-logic-alarm/internal/dispatch"
	"github.com/nerrad567/gray-logic-alarm/internal/history"
	"github.com/nerrad567/gray-logic-alarm/internal/infrastructure/database"
	"github.com/nerrad567/gray-logic-alarm/internal/infrastructure/influxdb"
	"github.com/nerrad567/gray-logic-alarm/internal/infrastructure/logging"
	"github.com/nerrad567/gray-logic-alarm/internal/infrastructure/mqtt"
	"github.com/nerrad567/gray-logic-alarm/internal/metrics"
	"github.com/nerrad567/gray-logic-alarm/internal/publish"
	"github.com/nerrad567/gray-logic-alarm/internal/router"
	"github.com/nerrad567/gray-logic-alarm/internal/topics"
	"github.com/nerrad567/gray-logic-alarm/migrations"
)

func newServeCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Connect to the broker and run the alarm panel.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context(), *configPath)
		},
	}
}

// serve runs the panel until ctx is cancelled. Components are started in
// dependency order and closed in reverse.
func serve(ctx context.Context, configPath string) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting alarm panel",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	cfg, err := loadConfig(configPath, false)
	if err != nil {
		return err
	}

	log = logging.New(cfg.Logging, version)
	log.Info("configuration loaded",
		"config_path", configPath,
		"site_id", cfg.Site.ID,
	)

	checks := make(map[string]api.HealthChecker)

	// History store (optional)
	var repo history.Repository
	if cfg.Database.Enabled {
		db, dbErr := database.Open(cfg.Database)
		if dbErr != nil {
			return fmt.Errorf("opening database: %w", dbErr)
		}
		defer func() {
			if closeErr := db.Close(); closeErr != nil {
				log.Error("error closing database", "error", closeErr)
			}
		}()

		if err := db.Migrate(ctx, migrations.FS); err != nil {
			return fmt.Errorf("running migrations: %w", err)
		}
		log.Info("database ready", "path", db.Path())

		repo = history.NewSQLiteRepository(db.DB)
		checks["database"] = db
	}

	var recorderOpts []history.Option
	recorderOpts = append(recorderOpts, history.WithLogger(log))

	// InfluxDB (optional)
	if cfg.InfluxDB.Enabled {
		influxClient, influxErr := influxdb.Connect(cfg.InfluxDB, cfg.Site.ID)
		if influxErr != nil {
			return fmt.Errorf("connecting to influxdb: %w", influxErr)
		}
		defer func() {
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing influxdb", "error", closeErr)
			}
		}()
		influxClient.SetOnError(func(err error) {
			log.Warn("influxdb write failed", "error", err)
		})
		log.Info("influxdb connected", "url", cfg.InfluxDB.URL, "bucket", cfg.InfluxDB.Bucket)

		recorderOpts = append(recorderOpts, history.WithPointWriter(influxClient))
		checks["influxdb"] = influxClient
	}

	reg, err := topics.New(cfg.Alarm)
	if err != nil {
		return fmt.Errorf("building topic registry: %w", err)
	}
	policy, err := dispatch.ParseLockoutPolicy(cfg.Alarm.LockoutPolicy)
	if err != nil {
		return fmt.Errorf("parsing lockout policy: %w", err)
	}
	dispatcher := dispatch.New(reg.Command(), policy)
	log.Info("command dispatch ready",
		"command_topic", reg.Command(),
		"lockout_policy", dispatcher.Policy().String(),
		"code_required", cfg.Alarm.Code != "",
	)
	m := metrics.New()

	ctrl := controller.New(controller.Config{
		ArmDelay:    cfg.Alarm.ArmDelay,
		PendingTime: cfg.Alarm.PendingTime,
	})
	ctrl.SetLogger(log.With("component", "controller"))
	defer ctrl.Close()

	recorder := history.NewRecorder(repo, recorderOpts...)
	recorder.Start()
	defer recorder.Close()

	hub := api.NewHub(cfg.WebSocket, log)

	// MQTT
	mqttClient, err := mqtt.Connect(cfg.MQTT)
	if err != nil {
		return fmt.Errorf("connecting to mqtt: %w", err)
	}
	defer func() {
		if closeErr := mqttClient.Close(); closeErr != nil {
			log.Error("error closing mqtt", "error", closeErr)
		}
	}()
	mqttClient.SetLogger(log)
	log.Info("mqtt connected",
		"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
	)
	checks["mqtt"] = mqttClient

	pub := publish.New(mqttClient, reg,
		publish.WithLogger(log.With("component", "publish")),
		publish.WithObserver(m),
	)
	ctrl.AddListener(pub)
	ctrl.AddListener(recorder)
	ctrl.AddListener(m)
	ctrl.AddListener(hub)

	r, err := router.New(router.Deps{
		Registry:   reg,
		Dispatcher: dispatcher,
		State:      ctrl,
		Actions:    ctrl,
		Events:     ctrl,
		Sensors:    ctrl,
		Config:     ctrl,
		Panel:      hub,
		Code:       cfg.Alarm.Code,
		Observers:  []router.Observer{m, recorder},
		Logger:     log.With("component", "router"),
	})
	if err != nil {
		return fmt.Errorf("creating router: %w", err)
	}
	if err := r.Start(&mqttSubscriber{client: mqttClient}); err != nil {
		return fmt.Errorf("starting router: %w", err)
	}
	defer func() {
		if stopErr := r.Stop(); stopErr != nil {
			log.Warn("error stopping router", "error", stopErr)
		}
	}()
	log.Info("router started", "subscriptions", len(r.Subscriptions()))

	// Republish the current state after every reconnect.
	mqttClient.SetOnConnect(func() {
		log.Info("mqtt reconnected, announcing state")
		ctrl.Announce()
	})
	mqttClient.SetOnDisconnect(func(err error) {
		log.Warn("mqtt connection lost", "error", err)
	})
	ctrl.Announce()

	// Status API (optional)
	if cfg.API.Enabled {
		authn, authErr := newAuthenticator(cfg.API.Auth)
		if authErr != nil {
			return fmt.Errorf("configuring panel authentication: %w", authErr)
		}
		if authn == nil {
			log.Warn("api.auth.jwt_secret not set, command and websocket endpoints are disabled")
		} else {
			log.Info("panel authentication enabled", "panels", authn.Panels())
		}

		srv, srvErr := api.New(api.Deps{
			Config:        cfg.API,
			WS:            cfg.WebSocket,
			Logger:        log.With("component", "api"),
			State:         ctrl,
			Commands:      r,
			Auth:          authn,
			Subscriptions: r.Subscriptions(),
			History:       repo,
			Metrics:       m.Handler(),
			Checks:        checks,
			Hub:           hub,
			Version:       version,
		})
		if srvErr != nil {
			return fmt.Errorf("creating api server: %w", srvErr)
		}
		if err := srv.Start(ctx); err != nil {
			return fmt.Errorf("starting api server: %w", err)
		}
		defer func() {
			if closeErr := srv.Close(); closeErr != nil {
				log.Error("error closing api server", "error", closeErr)
			}
		}()
	}

	log.Info("alarm panel started", "state", string(ctrl.State()))

	<-ctx.Done()
	log.Info("shutdown signal received, stopping services")

	return nil
}
