package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/ariefcatur/go-library-loans.git/internal/config"
	"github.com/ariefcatur/go-library-loans.git/internal/httpx"
	kafkax "github.com/ariefcatur/go-library-loans.git/internal/kafka"
	"github.com/ariefcatur/go-library-loans.git/internal/library"
	"github.com/ariefcatur/go-library-loans.git/internal/postgres"
	"github.com/ariefcatur/go-library-loans.git/internal/server"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer db.Close()

	// Kafka producer for loan lifecycle events
	prod := kafkax.NewProducer(cfg.KafkaBrokers, library.TopicLoanEvents, 1024)
	prod.Start(ctx)

	// Store, engine, facades, dispatcher
	store := &postgres.Store{DB: db}
	engine := &library.Engine{
		Store:      store,
		Producer:   prod,
		Service:    cfg.ServiceName,
		FinePerDay: cfg.FinePerDay,
		DaysToLend: cfg.DaysToLend,
	}
	catalog := &library.Catalog{Store: store}
	directory := &library.Directory{Store: store}
	dispatcher := server.NewDispatcher(engine, catalog, directory)

	// Ops HTTP server (healthz/readyz)
	opsSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: httpx.NewRouter(db.Ping)}
	go func() {
		log.Printf("ops HTTP listening at %s", cfg.HTTPAddr)
		if err := opsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("ops listen: %v", err)
		}
	}()

	// TCP API server
	tcpSrv := &server.TCPServer{Addr: cfg.TCPAddr, Dispatcher: dispatcher, ReadTimeout: cfg.ReadTimeout}
	ln, err := tcpSrv.Listen()
	if err != nil {
		log.Fatalf("listen %s: %v", cfg.TCPAddr, err)
	}
	go func() {
		log.Printf("TCP API listening at %s", ln.Addr())
		if err := tcpSrv.Serve(ctx, ln); err != nil {
			log.Fatalf("serve: %v", err)
		}
	}()

	// wait signal
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Println("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = opsSrv.Shutdown(ctx2)
	cancel()          // stops the acceptor and the producer loop
	prod.WaitClosed() // drain pending events
}
