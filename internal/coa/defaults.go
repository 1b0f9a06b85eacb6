package coa

import "context"

type defaultAccount struct {
	code       string
	name       string
	parentCode string
	isGroup    bool
	side       NormalSide
	category   Category
	kind       Kind
}

var defaultChart = []defaultAccount{
	{code: "1000", name: "Assets", isGroup: true, side: SideDebit, category: CategoryCurrentAsset},
	{code: "1100", name: "Cash", parentCode: "1000", side: SideDebit, category: CategoryCurrentAsset, kind: KindCash},
	{code: "1200", name: "Bank", parentCode: "1000", side: SideDebit, category: CategoryCurrentAsset, kind: KindBank},
	{code: "1500", name: "Fixed Assets", parentCode: "1000", isGroup: true, side: SideDebit, category: CategoryFixedAsset},
	{code: "2000", name: "Liabilities", isGroup: true, side: SideCredit, category: CategoryCurrentLiability},
	{code: "2100", name: "Accounts Payable", parentCode: "2000", side: SideCredit, category: CategoryCurrentLiability},
	{code: "2500", name: "Long Term Loans", parentCode: "2000", side: SideCredit, category: CategoryLongTermLiability},
	{code: "3000", name: "Equity", isGroup: true, side: SideCredit, category: CategoryEquity},
	{code: "3100", name: "Owner Capital", parentCode: "3000", side: SideCredit, category: CategoryEquity},
	{code: "4000", name: "Income", isGroup: true, side: SideCredit, category: CategoryRevenue},
	{code: "4100", name: "Sales Revenue", parentCode: "4000", side: SideCredit, category: CategoryRevenue},
	{code: "5000", name: "Expenses", isGroup: true, side: SideDebit, category: CategoryExpense},
	{code: "5100", name: "General Expenses", parentCode: "5000", side: SideDebit, category: CategoryExpense},
}

// SeedDefaultChart inserts a conventional starter chart of accounts. Codes that
// already exist are skipped, so the seed is safe to run repeatedly.
func SeedDefaultChart(ctx context.Context, svc *Service) error {
	byCode := make(map[string]int64)
	existing, err := svc.List(ctx)
	if err != nil {
		return err
	}
	for _, a := range existing {
		byCode[a.Code] = a.ID
	}
	for _, def := range defaultChart {
		if _, ok := byCode[def.code]; ok {
			continue
		}
		kind := def.kind
		if kind == "" {
			kind = KindNone
		}
		var parentID *int64
		if def.parentCode != "" {
			id, ok := byCode[def.parentCode]
			if !ok {
				return ErrInvalidParent
			}
			parentID = &id
		}
		created, err := svc.Create(ctx, CreateInput{
			Code:       def.code,
			Name:       def.name,
			ParentID:   parentID,
			IsGroup:    def.isGroup,
			NormalSide: def.side,
			Category:   def.category,
			Kind:       kind,
		})
		if err != nil {
			return err
		}
		byCode[created.Code] = created.ID
	}
	return nil
}
