package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wonny/pricesync/internal/scheduler"
	"github.com/wonny/pricesync/internal/scheduler/jobs"
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "스케줄러 관리",
	Long: `스케줄러를 시작하거나 작업을 관리합니다.

등록되는 작업:
- price_sync: PRICING_SYNC_SCHEDULE (기본: 6시간마다)

Subcommands:
  start   - 스케줄러 시작
  list    - 등록된 작업 목록
  run     - 특정 작업 즉시 실행
  status  - 작업 실행 상태 조회

Example:
  go run ./cmd/pricesync scheduler start
  go run ./cmd/pricesync scheduler run price_sync`,
}

var schedulerStartCmd = &cobra.Command{
	Use:   "start",
	Short: "스케줄러 시작",
	Long: `스케줄러를 시작하고 등록된 모든 작업을 스케줄합니다.

실행 중인 사이클과 겹치는 트리거는 건너뜁니다.

Example:
  go run ./cmd/pricesync scheduler start`,
	RunE: runSchedulerStart,
}

var schedulerListCmd = &cobra.Command{
	Use:   "list",
	Short: "등록된 작업 목록",
	RunE:  runSchedulerList,
}

var schedulerRunCmd = &cobra.Command{
	Use:   "run [job]",
	Short: "작업 즉시 실행",
	Args:  cobra.ExactArgs(1),
	RunE:  runSchedulerRun,
}

var schedulerStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "작업 실행 상태 조회",
	RunE:  runSchedulerStatus,
}

func init() {
	rootCmd.AddCommand(schedulerCmd)
	schedulerCmd.AddCommand(schedulerStartCmd)
	schedulerCmd.AddCommand(schedulerListCmd)
	schedulerCmd.AddCommand(schedulerRunCmd)
	schedulerCmd.AddCommand(schedulerStatusCmd)
}

// buildScheduler wires the scheduler with all jobs registered
func buildScheduler(c *components) (*scheduler.Scheduler, error) {
	sched := scheduler.New(c.log)

	priceSyncJob := jobs.NewPriceSyncJob(c.orchestrator, c.cfg, c.log)
	if err := sched.AddJob(priceSyncJob); err != nil {
		return nil, fmt.Errorf("register price sync job: %w", err)
	}

	return sched, nil
}

func runSchedulerStart(cmd *cobra.Command, args []string) error {
	fmt.Println("=== PriceSync Scheduler ===")

	c, err := buildComponents()
	if err != nil {
		return err
	}
	defer c.Close()

	sched, err := buildScheduler(c)
	if err != nil {
		return err
	}

	sched.Start()
	defer sched.Stop()

	fmt.Printf("\n✅ Scheduler running (price_sync: %s)\n", c.cfg.Pricing.SyncSchedule)
	fmt.Println("Press Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	c.log.Info("Shutting down scheduler...")
	return nil
}

func runSchedulerList(cmd *cobra.Command, args []string) error {
	c, err := buildComponents()
	if err != nil {
		return err
	}
	defer c.Close()

	sched, err := buildScheduler(c)
	if err != nil {
		return err
	}

	fmt.Println("Registered jobs:")
	for _, jobName := range sched.GetAllJobs() {
		fmt.Printf("  - %s\n", jobName)
	}

	return nil
}

func runSchedulerStatus(cmd *cobra.Command, args []string) error {
	c, err := buildComponents()
	if err != nil {
		return err
	}
	defer c.Close()

	sched, err := buildScheduler(c)
	if err != nil {
		return err
	}

	fmt.Println("Job Statistics:")
	fmt.Println()
	for _, stat := range sched.GetJobStats() {
		fmt.Printf("📊 %s\n", stat.JobName)
		fmt.Printf("   Schedule: %s\n", stat.Schedule)
		fmt.Printf("   Total Runs: %d\n", stat.TotalRuns)
		fmt.Printf("   Success: %d (%.1f%%)\n", stat.SuccessCount, stat.SuccessRate*100)
		fmt.Printf("   Failures: %d\n", stat.FailureCount)
		fmt.Printf("   Skipped: %d\n", stat.SkipCount)
		if stat.LastRun != nil {
			fmt.Printf("   Last Run: %s\n", stat.LastRun.Format("2006-01-02 15:04:05"))
		}
		if stat.LastError != "" {
			fmt.Printf("   Last Error: %s\n", stat.LastError)
		}
		fmt.Println()
	}

	return nil
}

func runSchedulerRun(cmd *cobra.Command, args []string) error {
	jobName := args[0]
	fmt.Printf("=== PriceSync Scheduler: run %s ===\n", jobName)

	// Scheduler.RunJob is asynchronous; run the job inline instead so
	// the process exits when the cycle finishes.
	if jobName != "price_sync" {
		return fmt.Errorf("unknown job %s", jobName)
	}

	c, err := buildComponents()
	if err != nil {
		return err
	}
	defer c.Close()

	job := jobs.NewPriceSyncJob(c.orchestrator, c.cfg, c.log)
	if err := job.Run(cmd.Context()); err != nil {
		return err
	}

	fmt.Println("\n✅ Job completed")
	return nil
}
