package model

// カートは itemId → size → 数量 の二段マップ。
// 数量が0以下の行は保持しない（必ず削除する）。
type Cart struct {
	SubjectID string
	Lines     map[string]map[string]int64
}

// 空のカートを作る
func NewCart(subjectID string) Cart {
	return Cart{
		SubjectID: subjectID,
		Lines:     map[string]map[string]int64{},
	}
}

// 数量を加算（行が無ければ作る）。deltaが0以下なら何もしない。
func (c *Cart) Add(itemID string, size string, delta int64) {
	if delta <= 0 {
		return
	}
	if c.Lines == nil {
		c.Lines = map[string]map[string]int64{}
	}
	if c.Lines[itemID] == nil {
		c.Lines[itemID] = map[string]int64{}
	}
	c.Lines[itemID][size] += delta
}

// 数量を上書き。0以下は削除と同じ扱い。
func (c *Cart) SetQuantity(itemID string, size string, qty int64) {
	if qty <= 0 {
		c.Remove(itemID, size)
		return
	}
	if c.Lines == nil {
		c.Lines = map[string]map[string]int64{}
	}
	if c.Lines[itemID] == nil {
		c.Lines[itemID] = map[string]int64{}
	}
	c.Lines[itemID][size] = qty
}

// 行を削除。無ければ何もしない。
func (c *Cart) Remove(itemID string, size string) {
	sizes, ok := c.Lines[itemID]
	if !ok {
		return
	}
	delete(sizes, size)
	//サイズが全部消えたらitemごと消す
	if len(sizes) == 0 {
		delete(c.Lines, itemID)
	}
}

// 全行を削除
func (c *Cart) Clear() {
	c.Lines = map[string]map[string]int64{}
}

// 指定行の数量（無ければ0）
func (c Cart) Quantity(itemID string, size string) int64 {
	if c.Lines == nil {
		return 0
	}
	return c.Lines[itemID][size]
}

// 全行の数量合計
func (c Cart) TotalCount() int64 {
	var total int64
	for _, sizes := range c.Lines {
		for _, qty := range sizes {
			total += qty
		}
	}
	return total
}

// 小計。priceで引けない商品（削除済みなど）は0円扱いでスキップする。
func (c Cart) TotalAmount(price func(itemID string) (int64, bool)) int64 {
	var total int64
	for itemID, sizes := range c.Lines {
		unit, ok := price(itemID)
		if !ok {
			continue
		}
		for _, qty := range sizes {
			total += unit * qty
		}
	}
	return total
}

func (c Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

// 深いコピーを返す。スナップショット用。
func (c Cart) Clone() Cart {
	out := NewCart(c.SubjectID)
	for itemID, sizes := range c.Lines {
		for size, qty := range sizes {
			out.Add(itemID, size, qty)
		}
	}
	return out
}

// 行ごとの数量を加算でマージした新しいカートを返す。
// どちらの引数も変更しない。
func (c Cart) Merge(other Cart) Cart {
	out := c.Clone()
	out.SubjectID = c.SubjectID
	for itemID, sizes := range other.Lines {
		for size, qty := range sizes {
			out.Add(itemID, size, qty)
		}
	}
	return out
}
