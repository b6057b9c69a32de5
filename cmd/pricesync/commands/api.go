package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/pricesync/internal/api"
	"github.com/wonny/pricesync/internal/api/handlers"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "API 서버 시작",
	Long: `REST API 서버를 시작합니다.

이 명령어는:
- HTTP API 서버 시작
- 카탈로그/결정 조회 엔드포인트 제공
- 동기화 트리거 제공
- 결정 실시간 스트림(WebSocket) 제공

Endpoints:
  GET  /health                    - Health check
  GET  /api/products              - 추적 상품 목록
  GET  /api/products/{id}         - 상품 조회
  POST /api/products/{id}/sync    - 단일 상품 동기화
  POST /api/sync                  - 전체 사이클 트리거
  GET  /api/decisions             - 최근 결정 이력
  GET  /ws/decisions              - 결정 스트림
  GET  /metrics                   - Prometheus 메트릭

Example:
  go run ./cmd/pricesync api
  go run ./cmd/pricesync api --port 8094`,
	RunE: runAPIServer,
}

var (
	apiPort string
)

func init() {
	rootCmd.AddCommand(apiCmd)

	// Flags
	apiCmd.Flags().StringVar(&apiPort, "port", "", "API 서버 포트 (기본: PORT 환경변수)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	fmt.Println("=== PriceSync API Server ===")

	c, err := buildComponents()
	if err != nil {
		return err
	}
	defer c.Close()

	if apiPort != "" {
		c.cfg.Port = apiPort
	}

	c.log.WithFields(map[string]interface{}{
		"port": c.cfg.Port,
		"env":  c.cfg.Env,
	}).Info("Initializing API server")

	routerCfg := api.RouterConfig{
		Products: handlers.NewProductHandler(c.products, c.log),
		Sync:     handlers.NewSyncHandler(c.orchestrator, c.audit, c.log),
		Hub:      c.hub,
	}
	if c.registry != nil {
		routerCfg.Metrics = c.registry
	}
	router := api.NewRouter(routerCfg, c.log)

	server := api.New(c.cfg, c.log, router)

	go func() {
		if err := server.Start(); err != nil {
			c.log.WithError(err).Fatal("Failed to start server")
		}
	}()

	c.log.Info("API server started successfully")
	fmt.Printf("\n✅ Server running on http://localhost:%s\n", c.cfg.Port)
	fmt.Println("\nPress Ctrl+C to stop")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	c.log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	c.log.Info("Server stopped")
	return nil
}
