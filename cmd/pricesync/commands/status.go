package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "최근 동기화 결정 조회",
	Long: `최근 가격 동기화 결정을 표시합니다.

표시 정보:
- 상품/SKU
- 결과 (updated / skipped) 와 사유
- 가격 변화
- 결정 시각

Example:
  go run ./cmd/pricesync status
  go run ./cmd/pricesync status --limit 100`,
	RunE: runStatus,
}

var (
	statusLimit int
)

func init() {
	rootCmd.AddCommand(statusCmd)

	// Flags
	statusCmd.Flags().IntVar(&statusLimit, "limit", 20, "표시할 결정 수")
}

func runStatus(cmd *cobra.Command, args []string) error {
	fmt.Println("=== PriceSync Recent Decisions ===")

	c, err := buildComponents()
	if err != nil {
		return err
	}
	defer c.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	decisions, err := c.audit.ListRecentDecisions(ctx, statusLimit)
	if err != nil {
		return fmt.Errorf("list decisions: %w", err)
	}

	if len(decisions) == 0 {
		fmt.Println("\nNo decisions recorded yet.")
		return nil
	}

	fmt.Printf("\n%-12s %-16s %-9s %-26s %-18s %s\n",
		"PRODUCT", "SKU", "OUTCOME", "REASON", "PRICE", "AT")
	for _, d := range decisions {
		price := d.OldPrice.StringFixed(2)
		if d.Updated() {
			price = fmt.Sprintf("%s → %s", d.OldPrice.StringFixed(2), d.NewPrice.StringFixed(2))
		}
		fmt.Printf("%-12d %-16s %-9s %-26s %-18s %s\n",
			d.ProductID, d.SKU, d.Outcome, d.Reason, price,
			d.CreatedAt.Format("2006-01-02 15:04:05"))
	}

	return nil
}
