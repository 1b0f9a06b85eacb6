package coa

import (
	"errors"
	"time"
)

// NormalSide tells which side increases an account's balance.
type NormalSide string

const (
	SideDebit  NormalSide = "DEBIT"
	SideCredit NormalSide = "CREDIT"
)

// Category classifies accounts for balance sheet and P&L grouping.
// It has no bearing on ledger arithmetic.
type Category string

const (
	CategoryCurrentAsset      Category = "CURRENT_ASSET"
	CategoryFixedAsset        Category = "FIXED_ASSET"
	CategoryCurrentLiability  Category = "CURRENT_LIABILITY"
	CategoryLongTermLiability Category = "LONG_TERM_LIABILITY"
	CategoryEquity            Category = "EQUITY"
	CategoryRevenue           Category = "REVENUE"
	CategoryExpense           Category = "EXPENSE"
	CategoryUncategorized     Category = "UNCATEGORIZED"
)

// Kind marks money accounts so contra vouchers can be classified without
// string-matching account names.
type Kind string

const (
	KindNone Kind = "NONE"
	KindCash Kind = "CASH"
	KindBank Kind = "BANK"
)

// Account models a chart of accounts node. Group nodes structure the tree and
// cannot receive postings; only leaf ledgers can.
type Account struct {
	ID         int64
	Code       string
	Name       string
	ParentID   *int64
	IsGroup    bool
	NormalSide NormalSide
	Category   Category
	Kind       Kind
	IsActive   bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Postable reports whether the account can receive ledger postings.
func (a Account) Postable() bool {
	return !a.IsGroup && a.IsActive
}

var (
	// ErrAccountNotFound indicates the account id does not resolve.
	ErrAccountNotFound = errors.New("coa: account not found")
	// ErrNotPostable indicates a posting attempt against a group or inactive account.
	ErrNotPostable = errors.New("coa: account is not postable")
	// ErrAccountInUse blocks normal-side, category, and kind changes once
	// postings exist against the account.
	ErrAccountInUse = errors.New("coa: account has postings, classification is immutable")
	// ErrInvalidParent indicates the parent is missing or not a group.
	ErrInvalidParent = errors.New("coa: parent must be an existing group account")
	// ErrDuplicateCode indicates the account code is taken.
	ErrDuplicateCode = errors.New("coa: account code already exists")
)

// ValidSide reports whether s is a known normal side.
func ValidSide(s NormalSide) bool {
	return s == SideDebit || s == SideCredit
}

// ValidCategory reports whether c is a known category.
func ValidCategory(c Category) bool {
	switch c {
	case CategoryCurrentAsset, CategoryFixedAsset, CategoryCurrentLiability,
		CategoryLongTermLiability, CategoryEquity, CategoryRevenue,
		CategoryExpense, CategoryUncategorized:
		return true
	}
	return false
}

// ValidKind reports whether k is a known account kind.
func ValidKind(k Kind) bool {
	return k == KindNone || k == KindCash || k == KindBank
}
