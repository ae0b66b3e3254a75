package domain

// Snapshot 单个保险公司+产品在某一版本下的完整费率配置快照。
// 评估期间不可变；并发报价可共享同一快照无须任何协调。
type Snapshot struct {
	InsurerID   string `json:"insurer_id"`
	ProductCode string `json:"product_code"`
	Version     uint64 `json:"version"`

	Base BaseRate `json:"base"`
	// 维度应用顺序由配置定义；百分比叠加对顺序敏感
	DimensionOrder []Dimension             `json:"dimension_order"`
	RateTables     map[Dimension]RateTable `json:"rate_tables"`
	Clauses        []ClausePricing         `json:"clauses"`
	Fees           []FeeType               `json:"fees"`
	Limits         PolicyLimits            `json:"limits"`
}

// Registry 构建快照条款的注册表
func (s *Snapshot) Registry() *ClauseRegistry {
	return NewClauseRegistry(s.Clauses)
}
