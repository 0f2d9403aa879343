package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"tripflow/agents"
	planner "tripflow/core"
	"tripflow/evaluation"
	"tripflow/observability"
	"tripflow/server"
	"tripflow/tools"
)

func main() {
	port := flag.Int("port", envInt("TRIPFLOW_PORT", 8080), "server port")
	host := flag.String("host", os.Getenv("TRIPFLOW_HOST"), "server host")
	flag.Parse()

	ctx := context.Background()

	shutdown, err := observability.SetupTracing(ctx, os.Getenv("TRIPFLOW_OTLP_ENDPOINT"))
	if err != nil {
		log.Fatalf("[SERVER] tracing setup failed: %v", err)
	}
	defer shutdown(context.Background())

	toolCfg := tools.Config{
		AmadeusClientID:     os.Getenv("AMADEUS_CLIENT_ID"),
		AmadeusClientSecret: os.Getenv("AMADEUS_CLIENT_SECRET"),
		OpenWeatherAPIKey:   os.Getenv("OPENWEATHER_API_KEY"),
		AllowNetwork:        os.Getenv("TRIPFLOW_ALLOW_NETWORK") == "true",
	}

	var generator agents.Generator = agents.MockGenerator{}
	if apiKey := os.Getenv("OPENAI_API_KEY"); apiKey != "" {
		generator, err = agents.NewOpenAIGenerator(apiKey, os.Getenv("OPENAI_MODEL"))
		if err != nil {
			log.Fatalf("[SERVER] openai setup failed: %v", err)
		}
	} else {
		log.Printf("[SERVER] OPENAI_API_KEY not set, using offline generator")
	}

	bus := observability.NewBus()
	defer bus.Close()

	orch := planner.NewOrchestrator(generator, tools.NewToolkit(toolCfg))
	orch.SetBus(bus)

	srv := server.New(server.Config{Port: *port, Host: *host}, orch, evaluation.NewEvaluator())

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		log.Fatalf("[SERVER] server error: %v", err)
	case sig := <-sigCh:
		log.Printf("[SERVER] received %v, shutting down", sig)
	}

	stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(stopCtx); err != nil {
		log.Printf("[SERVER] shutdown error: %v", err)
	}
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
