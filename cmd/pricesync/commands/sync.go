package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// syncCmd represents the sync command
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "가격 동기화 실행",
	Long: `가격 동기화 사이클을 즉시 실행합니다.

이 명령어는:
- 추적 중인 전체 상품 또는 단일 상품 동기화
- 공급처 견적 수집 → 공급처 선택 → 경쟁가 집계
- 마진 보정 → 변경 게이트 → 카탈로그/스토어 반영
- 결과 요약 출력

Example:
  go run ./cmd/pricesync sync
  go run ./cmd/pricesync sync --product 42`,
	RunE: runSync,
}

var (
	syncProductID int64
)

func init() {
	rootCmd.AddCommand(syncCmd)

	// Flags
	syncCmd.Flags().Int64Var(&syncProductID, "product", 0, "단일 상품 ID (0이면 전체)")
}

func runSync(cmd *cobra.Command, args []string) error {
	fmt.Println("=== PriceSync Manual Sync ===")

	c, err := buildComponents()
	if err != nil {
		return err
	}
	defer c.Close()

	ctx := context.Background()

	// Single product
	if syncProductID > 0 {
		decision, err := c.orchestrator.SyncOne(ctx, syncProductID)
		if err != nil {
			return fmt.Errorf("sync product %d: %w", syncProductID, err)
		}

		fmt.Printf("\n✅ Product %d: %s (%s)\n", decision.ProductID, decision.Outcome, decision.Reason)
		if decision.Updated() {
			fmt.Printf("   %s → %s\n", decision.OldPrice.StringFixed(2), decision.NewPrice.StringFixed(2))
		}
		return nil
	}

	// Full cycle
	result, err := c.orchestrator.RunCycle(ctx)
	if err != nil {
		return fmt.Errorf("run sync cycle: %w", err)
	}

	fmt.Printf("\n✅ Cycle %s completed in %v\n", result.CycleID, result.Duration.Round(10*time.Millisecond))
	fmt.Printf("   Total:   %d\n", result.Total)
	fmt.Printf("   Updated: %d\n", result.Updated)
	fmt.Printf("   Skipped: %d\n", result.Skipped)
	fmt.Printf("   Failed:  %d\n", result.Failed)

	return nil
}
