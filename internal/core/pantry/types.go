package pantry

import (
	"pantry-keeper/internal/pkg/common"
)

// State 解決佇列的狀態
type State string

const (
	// StateIdle 沒有待處理的衝突
	StateIdle State = "idle"
	// StateAwaitingResolution 有一組衝突等待使用者選擇處理方式
	StateAwaitingResolution State = "awaiting_resolution"
	// StateEditing 使用者正在調整合併後的欄位，尚未提交
	StateEditing State = "editing"
	// StateProcessing 寫入進行中，使用者輸入停用
	StateProcessing State = "processing"
)

// ResolutionAction 使用者對衝突組選擇的處理方式
type ResolutionAction string

const (
	// ActionMerge 數量相加，保留既有紀錄的其他欄位
	ActionMerge ResolutionAction = "merge"
	// ActionMergeAndEdit 數量相加後開放編輯欄位，再提交
	ActionMergeAndEdit ResolutionAction = "merge_and_edit"
	// ActionCreateSeparate 將進來的草稿建立為獨立的新紀錄
	ActionCreateSeparate ResolutionAction = "create_separate"
)

// ParseAction 解析處理方式字串
func ParseAction(s string) (ResolutionAction, error) {
	switch ResolutionAction(s) {
	case ActionMerge, ActionMergeAndEdit, ActionCreateSeparate:
		return ResolutionAction(s), nil
	}
	return "", common.NewValidationError("未知的處理方式：%s", s)
}

// DuplicatePair 既有紀錄加上被判定為同一食材的進貨草稿。
// 任一時刻最多只有一組處於使用者審核中。
type DuplicatePair struct {
	Existing common.PantryItem      `json:"existing"`
	Incoming common.PantryItemDraft `json:"incoming"`
}

// RejectedDraft 在邊界被拒絕的草稿及原因
type RejectedDraft struct {
	Draft  common.PantryItemDraft `json:"draft"`
	Reason string                 `json:"reason"`
}

// BatchResult 一次批次提交的結果：N 筆草稿、K 筆衝突時，
// 恰好 N−K 筆立即建立、K 筆依提交順序排入佇列
type BatchResult struct {
	Created         []common.PantryItem `json:"created"`
	QueuedConflicts int                 `json:"queued_conflicts"`
	Rejected        []RejectedDraft     `json:"rejected,omitempty"`
}
