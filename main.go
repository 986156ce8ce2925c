package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"pandemic/internal/config"
	"pandemic/internal/engine"
	"pandemic/internal/engine/eventcards"
	"pandemic/internal/identity"
	"pandemic/internal/logs"
	"pandemic/internal/server"
	"pandemic/internal/store"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	port := flag.Int("port", 0, "server port (overrides config)")
	flag.Parse()

	conf, err := config.Load(*configPath, func(next config.Config) {
		logs.SetLevel(next.Log.Level)
		logs.Info("config reloaded", zap.String("log_level", next.Log.Level))
	})
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if *port > 0 {
		conf.HTTP.Port = *port
	}
	if err := logs.Init("pandemic", conf.Log); err != nil {
		log.Fatalf("init logs: %v", err)
	}
	defer logs.Sync()

	st, err := openStore(conf.Store)
	if err != nil {
		logs.Fatal("open store", zap.String("driver", conf.Store.Driver), zap.Error(err))
	}
	defer st.Close()

	secret := conf.Identity.Secret
	if secret == "" {
		secret = randomSecret()
		logs.Warn("identity.secret not set, tokens will not survive a restart")
	}
	issuer, err := identity.NewIssuer(secret, conf.Identity.TTL())
	if err != nil {
		logs.Fatal("identity issuer", zap.Error(err))
	}

	rules := engine.NewRules(engine.StandardWorld(), eventcards.Standard())
	srv := server.New(conf, rules, st, issuer, logs.Logger())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := srv.Run(ctx); err != nil {
		logs.Error("server error", zap.Error(err))
	}
}

func openStore(c config.StoreConfig) (store.Store, error) {
	switch c.Driver {
	case "sqlite":
		return store.OpenSQLite(c.SQLitePath)
	case "mongo":
		return store.OpenMongo(c.Mongo.URI, c.Mongo.Database, c.Mongo.ConnectTimeout(), logs.Logger())
	default:
		return store.NewMemoryStore(), nil
	}
}

func randomSecret() string {
	b := make([]byte, 32)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
