package canonical

import "sort"

// sortCashflows orders rows by (flow_date, source_contract_type, contract_id),
// the engine's deterministic emission order.
func sortCashflows(rows []Cashflow) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if !a.FlowDate.Equal(b.FlowDate) {
			return a.FlowDate.Before(b.FlowDate)
		}
		if a.SourceContractType != b.SourceContractType {
			return a.SourceContractType < b.SourceContractType
		}
		return a.ContractID < b.ContractID
	})
}
