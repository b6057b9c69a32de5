package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	configFile string
	env        string
	verbose    bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "pricesync",
	Short: "PriceSync - 드랍쉬핑 가격 동기화 엔진",
	Long: `PriceSync Unified CLI

공급처 견적 수집부터 경쟁가 분석, 마진 보정, 스토어 반영까지
상품별 가격 결정을 자동화합니다.

Usage:
  go run ./cmd/pricesync [command]

Examples:
  go run ./cmd/pricesync api
  go run ./cmd/pricesync sync
  go run ./cmd/pricesync sync --product 42
  go run ./cmd/pricesync scheduler start
  go run ./cmd/pricesync test-db`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default is .env)")
	rootCmd.PersistentFlags().StringVar(&env, "env", "development", "environment (development|staging|production)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
