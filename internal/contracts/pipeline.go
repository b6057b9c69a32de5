package contracts

// Pipeline stage definitions (SSOT)
// 모든 로그, 의사결정 row에서 이 상수를 사용해야 함
//
// Per-product flow:
//   START → QUOTES_COLLECTED → SUPPLIER_CHOSEN → TARGET_COMPUTED
//         → MARGIN_APPLIED → {UPDATED | SKIPPED(reason)}

// Stage represents a per-product pipeline stage
type Stage string

const (
	// StageStart 제품 사이클 시작
	StageStart Stage = "START"

	// StageQuotesCollected 공급처 견적 수집 완료
	// 위치: internal/engine/collector.go
	StageQuotesCollected Stage = "QUOTES_COLLECTED"

	// StageSupplierChosen 공급처 선택 완료
	// 위치: internal/engine/selector.go
	StageSupplierChosen Stage = "SUPPLIER_CHOSEN"

	// StageTargetComputed 목표 가격 산출 완료 (경쟁사 또는 마크업)
	// 위치: internal/engine/aggregator.go
	StageTargetComputed Stage = "TARGET_COMPUTED"

	// StageMarginApplied 마진 하한 적용 완료
	// 위치: internal/engine/margin.go
	StageMarginApplied Stage = "MARGIN_APPLIED"

	// StageUpdated 가격 변경 적용
	StageUpdated Stage = "UPDATED"

	// StageSkipped 변경 없이 종료 (사유 코드 포함)
	StageSkipped Stage = "SKIPPED"
)

// String returns the stage name
func (s Stage) String() string {
	return string(s)
}
