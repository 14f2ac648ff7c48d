package pantry

import (
	"context"
	"sync"

	"pantry-keeper/internal/core/gateway"
	"pantry-keeper/internal/infrastructure/config"
	"pantry-keeper/internal/pkg/common"

	"go.uber.org/zap"
)

// Reconciler 對帳門面：協調名稱正規化、重複偵測與解決佇列，
// 實際寫入委派給 Persistence Gateway。狀態機本身是明確的
// 狀態容器，所有轉移都經過這裡的方法，一次只允許一筆寫入。
type Reconciler struct {
	config  *config.Config
	gateway gateway.Gateway
	store   *SnapshotStore

	mu      sync.Mutex
	state   State
	active  *DuplicatePair
	editing *common.PantryItemDraft
	queue   conflictQueue
}

// NewReconciler 創建對帳門面
func NewReconciler(cfg *config.Config, gw gateway.Gateway, store *SnapshotStore) *Reconciler {
	return &Reconciler{
		config:  cfg,
		gateway: gw,
		store:   store,
		state:   StateIdle,
	}
}

// State 回傳目前的狀態機狀態
func (r *Reconciler) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Active 回傳審核中的衝突組（若有）
func (r *Reconciler) Active() (DuplicatePair, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.active == nil {
		return DuplicatePair{}, false
	}
	return *r.active, true
}

// PendingConflicts 回傳待辦佇列的長度（不含審核中的那組）
func (r *Reconciler) PendingConflicts() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.queue.len()
}

// Items 回傳目前的本地快照
func (r *Reconciler) Items() []common.PantryItem {
	return r.store.Items()
}

// RefreshSnapshot 從 gateway 重新載入本地快照
func (r *Reconciler) RefreshSnapshot(ctx context.Context) error {
	items, err := r.gateway.ListItems(ctx)
	if err != nil {
		return err
	}
	r.store.Replace(items)
	common.LogInfo("庫存快照已更新", zap.Int("項目數", len(items)))
	return nil
}

// SubmitBatch 提交一批進貨草稿。驗證後依提交時的快照分為
// 「確定是新項目」（立即批次建立）與「有衝突」（依序排入佇列）。
// N 筆草稿、K 筆衝突時恰好建立 N−K 筆、排入 K 筆。
func (r *Reconciler) SubmitBatch(ctx context.Context, drafts []common.PantryItemDraft) (*BatchResult, error) {
	r.mu.Lock()
	if r.state != StateIdle {
		r.mu.Unlock()
		return nil, common.NewConflictStateError("無法提交批次：目前狀態為 %s", r.state)
	}

	// 邊界驗證：不合格的草稿不進入對帳流程
	result := &BatchResult{}
	valid := make([]common.PantryItemDraft, 0, len(drafts))
	for _, d := range drafts {
		if err := ValidateDraft(d); err != nil {
			result.Rejected = append(result.Rejected, RejectedDraft{Draft: d, Reason: err.Error()})
			continue
		}
		valid = append(valid, d)
	}

	// 重複偵測以提交當下的快照為準
	snapshot := r.store.Items()
	var fresh []common.PantryItemDraft
	var conflicts []DuplicatePair
	for _, d := range valid {
		if existing, ok := FindDuplicate(d, snapshot); ok {
			conflicts = append(conflicts, DuplicatePair{Existing: existing, Incoming: d})
		} else {
			fresh = append(fresh, d)
		}
	}
	result.QueuedConflicts = len(conflicts)

	common.LogInfo("批次提交分類完成",
		zap.Int("提交數", len(drafts)),
		zap.Int("新項目", len(fresh)),
		zap.Int("衝突", len(conflicts)),
		zap.Int("拒絕", len(result.Rejected)),
	)

	// 立即建立確定是新項目的草稿；寫入期間停用其他操作
	if len(fresh) > 0 {
		r.state = StateProcessing
		r.mu.Unlock()

		created, err := r.createFresh(ctx, fresh)

		r.mu.Lock()
		if err != nil {
			r.state = StateIdle
			r.mu.Unlock()
			return nil, err
		}
		result.Created = created
	}

	// 衝突依提交順序排入佇列，第一組成為審核中的衝突
	for _, p := range conflicts {
		r.queue.push(p)
	}
	r.advanceLocked()
	r.mu.Unlock()

	return result, nil
}

// createFresh 樂觀寫入本地快照後批次建立；gateway 失敗時精確還原
func (r *Reconciler) createFresh(ctx context.Context, fresh []common.PantryItemDraft) ([]common.PantryItem, error) {
	prior := r.store.Snapshot()

	// 樂觀更新：先以暫定識別碼寫入本地快照
	provisional := make([]common.PantryItem, len(fresh))
	for i, d := range fresh {
		provisional[i] = itemFromDraft(common.GenerateUUID(), d)
	}
	r.store.Append(provisional...)

	created, err := r.gateway.CreateItems(ctx, fresh)
	if err != nil {
		r.store.Restore(prior)
		return nil, err
	}

	// 以 gateway 指派的識別碼取代暫定紀錄
	for _, p := range provisional {
		r.store.Remove(p.ID)
	}
	r.store.Append(created...)

	return created, nil
}

// Resolve 對審核中的衝突組執行使用者選擇的處理方式。
// Merge 與 CreateSeparate 立即寫入並推進佇列；
// MergeAndEdit 回傳合併後的草稿並進入 Editing，等待 CommitEdit。
func (r *Reconciler) Resolve(ctx context.Context, action ResolutionAction) (*common.PantryItemDraft, error) {
	r.mu.Lock()
	if r.state != StateAwaitingResolution || r.active == nil {
		r.mu.Unlock()
		return nil, common.NewConflictStateError("沒有審核中的衝突可以解決（狀態：%s）", r.state)
	}
	pair := *r.active

	switch action {
	case ActionMergeAndEdit:
		merged := mergeDraft(pair)
		r.editing = &merged
		r.state = StateEditing
		r.mu.Unlock()

		common.LogInfo("衝突進入編輯",
			zap.String("項目", pair.Existing.Name),
			zap.Float64("合併數量", merged.Quantity),
		)
		out := merged
		return &out, nil

	case ActionMerge:
		r.state = StateProcessing
		r.mu.Unlock()
		return nil, r.completeMerge(ctx, pair, mergeDraft(pair))

	case ActionCreateSeparate:
		r.state = StateProcessing
		r.mu.Unlock()
		return nil, r.completeCreateSeparate(ctx, pair)

	default:
		r.mu.Unlock()
		return nil, common.NewValidationError("未知的處理方式：%s", action)
	}
}

// CommitEdit 提交編輯後的合併草稿，走與 Merge 相同的寫入再推進流程
func (r *Reconciler) CommitEdit(ctx context.Context, edited common.PantryItemDraft) error {
	if err := ValidateDraft(edited); err != nil {
		return err
	}

	r.mu.Lock()
	if r.state != StateEditing || r.active == nil {
		r.mu.Unlock()
		return common.NewConflictStateError("沒有進行中的編輯可以提交（狀態：%s）", r.state)
	}
	pair := *r.active
	r.editing = nil
	r.state = StateProcessing
	r.mu.Unlock()

	return r.completeMerge(ctx, pair, edited)
}

// Cancel 清空佇列與審核中的衝突並回到 Idle。
// 寫入進行中不允許取消，避免不一致的部分寫入。
func (r *Reconciler) Cancel() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state == StateProcessing {
		return common.NewConflictStateError("寫入進行中，無法取消")
	}

	dropped := r.queue.len()
	r.queue.clear()
	r.active = nil
	r.editing = nil
	r.state = StateIdle

	common.LogInfo("解決流程已取消", zap.Int("丟棄衝突數", dropped))
	return nil
}

// completeMerge 寫入合併結果：數量相加（或編輯後的值），保留既有紀錄的識別
func (r *Reconciler) completeMerge(ctx context.Context, pair DuplicatePair, merged common.PantryItemDraft) error {
	prior := r.store.Snapshot()

	// 樂觀更新本地快照
	r.store.ApplyDraft(pair.Existing.ID, merged)

	patch := patchFromDraft(merged)
	_, err := r.gateway.UpdateItem(ctx, pair.Existing.ID, patch)

	r.mu.Lock()
	defer r.mu.Unlock()
	if err != nil {
		r.failProcessingLocked(prior, err)
		return err
	}

	common.LogInfo("衝突已合併",
		zap.String("項目", merged.Name),
		zap.Float64("合併後數量", merged.Quantity),
	)
	r.advanceLocked()
	return nil
}

// completeCreateSeparate 將進來的草稿建立為獨立紀錄，既有紀錄不變
func (r *Reconciler) completeCreateSeparate(ctx context.Context, pair DuplicatePair) error {
	prior := r.store.Snapshot()

	provisional := itemFromDraft(common.GenerateUUID(), pair.Incoming)
	r.store.Append(provisional)

	created, err := r.gateway.CreateItems(ctx, []common.PantryItemDraft{pair.Incoming})

	r.mu.Lock()
	defer r.mu.Unlock()
	if err != nil {
		r.failProcessingLocked(prior, err)
		return err
	}

	r.store.Remove(provisional.ID)
	r.store.Append(created...)

	common.LogInfo("衝突以獨立紀錄建立",
		zap.String("項目", pair.Incoming.Name),
	)
	r.advanceLocked()
	return nil
}

// failProcessingLocked 寫入失敗：還原快照、丟棄剩餘佇列、回到 Idle。
// 剩餘衝突不得默默續行，否則會對過期資料做解決。
func (r *Reconciler) failProcessingLocked(prior []common.PantryItem, err error) {
	r.store.Restore(prior)
	dropped := r.queue.len()
	r.queue.clear()
	r.active = nil
	r.editing = nil
	r.state = StateIdle

	common.LogError("解決流程寫入失敗，已回滾並清空佇列",
		zap.Error(err),
		zap.Int("丟棄衝突數", dropped),
	)
}

// advanceLocked 明確的「處理下一筆」步驟：取下一組衝突為審核中，否則回到 Idle
func (r *Reconciler) advanceLocked() {
	r.active = nil
	if next, ok := r.queue.pop(); ok {
		r.active = &next
		r.state = StateAwaitingResolution
		return
	}
	r.state = StateIdle
}

// mergeDraft 合併：數量相加，其餘欄位保留既有紀錄
func mergeDraft(pair DuplicatePair) common.PantryItemDraft {
	merged := pair.Existing.Draft()
	merged.Quantity = pair.Existing.Quantity + pair.Incoming.Quantity
	return merged
}

// itemFromDraft 以指定識別碼把草稿轉為紀錄（樂觀寫入用）
func itemFromDraft(id string, d common.PantryItemDraft) common.PantryItem {
	return common.PantryItem{
		ID:         id,
		Name:       d.Name,
		Quantity:   d.Quantity,
		Unit:       d.Unit,
		Category:   d.Category,
		Notes:      d.Notes,
		ExpiryDate: d.ExpiryDate,
		Price:      d.Price,
		Nutrition:  d.Nutrition,
	}
}

// patchFromDraft 把草稿的全部欄位轉為部分更新
func patchFromDraft(d common.PantryItemDraft) *common.PantryItemPatch {
	name := d.Name
	qty := d.Quantity
	unit := d.Unit
	category := d.Category
	notes := d.Notes
	expiry := d.ExpiryDate
	price := d.Price
	return &common.PantryItemPatch{
		Name:       &name,
		Quantity:   &qty,
		Unit:       &unit,
		Category:   &category,
		Notes:      &notes,
		ExpiryDate: &expiry,
		Price:      &price,
		Nutrition:  d.Nutrition,
	}
}
