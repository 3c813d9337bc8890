package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/storenetdev/storenet-backend/internal/config"
	"github.com/storenetdev/storenet-backend/internal/modules/account"
	"github.com/storenetdev/storenet-backend/internal/modules/directory"
	"github.com/storenetdev/storenet-backend/internal/modules/inventory"
	"github.com/storenetdev/storenet-backend/internal/modules/store"
)

func main() {
	log.SetFormatter(&log.JSONFormatter{})
	if err := godotenv.Load(); err != nil {
		log.Debug("no .env file, using process environment")
	}

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}

	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.RequestID)

	registry := directory.NewRegistry()
	// One shared ledger for every node in this process; nodes in other
	// processes keep their own.
	accounts := account.NewService()

	nodes := make(map[string]store.Service, len(cfg.Stores))
	for _, code := range cfg.Stores {
		inv := inventory.NewService(code, inventory.NewMemoryRepository())
		node := store.NewService(code, inv, accounts, registry, store.Options{
			PeerTimeout:  cfg.PeerTimeout,
			LookupFanout: cfg.LookupFanout,
		})
		registry.Register(code, node)
		store.NewHandler(node).RegisterRoutes(router)
		nodes[code] = node
		log.WithField("store", code).Info("store node ready")
	}
	for code, baseURL := range cfg.PeerURLs {
		registry.Register(code, store.NewClient(baseURL, cfg.PeerTimeout))
		log.WithFields(log.Fields{"store": code, "url": baseURL}).Info("registered peer store")
	}

	if cfg.SeedFile != "" {
		if err := seedInventory(cfg.SeedFile, nodes); err != nil {
			log.WithError(err).Fatal("failed to seed inventory")
		}
	}

	srv := &http.Server{Addr: ":" + cfg.HTTPPort, Handler: router}
	go func() {
		log.WithField("port", cfg.HTTPPort).Info("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("server failed")
		}
	}()

	killSignalChan := make(chan os.Signal, 1)
	signal.Notify(killSignalChan, os.Interrupt, syscall.SIGTERM)
	<-killSignalChan
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("shutdown error")
	}
}

type seedItem struct {
	ItemID   string  `json:"item_id"`
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

// seedInventory loads initial stock from a JSON file keyed by store code.
func seedInventory(path string, nodes map[string]store.Service) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var seed map[string][]seedItem
	if err := json.Unmarshal(raw, &seed); err != nil {
		return err
	}
	for code, items := range seed {
		node, ok := nodes[code]
		if !ok {
			log.WithField("store", code).Warn("seed entry for store not hosted here, skipping")
			continue
		}
		managerID := code + "M0000"
		for _, item := range items {
			if _, err := node.AddItem(context.Background(), managerID, item.ItemID, item.Name, item.Quantity, item.Price); err != nil {
				return err
			}
		}
	}
	return nil
}
