package pantry

// conflictQueue 尚未分類的衝突草稿的 FIFO 待辦清單。
// 以明確的工作清單搭配迭代的「處理下一筆」步驟驅動，
// 而非遞迴消耗陣列，方便取消與錯誤回溯。
// 不自帶鎖：一律在 Reconciler 的互斥鎖內操作。
type conflictQueue struct {
	pairs []DuplicatePair
}

// push 依提交順序加入佇列尾端
func (q *conflictQueue) push(p DuplicatePair) {
	q.pairs = append(q.pairs, p)
}

// pop 取出佇列頭的衝突組
func (q *conflictQueue) pop() (DuplicatePair, bool) {
	if len(q.pairs) == 0 {
		return DuplicatePair{}, false
	}
	p := q.pairs[0]

	// 清空槽位讓 GC 回收底層指標
	q.pairs[0] = DuplicatePair{}
	if len(q.pairs) == 1 {
		q.pairs = q.pairs[:0]
	} else {
		q.pairs = q.pairs[1:]
	}
	return p, true
}

// clear 丟棄所有待處理的衝突
func (q *conflictQueue) clear() {
	q.pairs = nil
}

// len 回傳待處理數量
func (q *conflictQueue) len() int {
	return len(q.pairs)
}
