package coa

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type memoryAccountRepo struct {
	accounts map[int64]Account
	posted   map[int64]bool
	nextID   int64
}

func newMemoryAccountRepo() *memoryAccountRepo {
	return &memoryAccountRepo{
		accounts: make(map[int64]Account),
		posted:   make(map[int64]bool),
	}
}

func (r *memoryAccountRepo) List(ctx context.Context) ([]Account, error) {
	var out []Account
	for _, a := range r.accounts {
		out = append(out, a)
	}
	return out, nil
}

func (r *memoryAccountRepo) Get(ctx context.Context, id int64) (Account, error) {
	a, ok := r.accounts[id]
	if !ok {
		return Account{}, ErrAccountNotFound
	}
	return a, nil
}

func (r *memoryAccountRepo) Insert(ctx context.Context, a Account) (Account, error) {
	for _, existing := range r.accounts {
		if existing.Code == a.Code {
			return Account{}, ErrDuplicateCode
		}
	}
	r.nextID++
	a.ID = r.nextID
	a.CreatedAt = time.Now()
	a.UpdatedAt = a.CreatedAt
	r.accounts[a.ID] = a
	return a, nil
}

func (r *memoryAccountRepo) Update(ctx context.Context, a Account) (Account, error) {
	if _, ok := r.accounts[a.ID]; !ok {
		return Account{}, ErrAccountNotFound
	}
	a.UpdatedAt = time.Now()
	r.accounts[a.ID] = a
	return a, nil
}

func (r *memoryAccountRepo) HasPostings(ctx context.Context, accountID int64) (bool, error) {
	return r.posted[accountID], nil
}

func seededService(t *testing.T) (*Service, *memoryAccountRepo) {
	t.Helper()
	repo := newMemoryAccountRepo()
	svc := NewService(repo, NewCache(nil, 0))
	require.NoError(t, SeedDefaultChart(context.Background(), svc))
	return svc, repo
}

func accountByCode(t *testing.T, svc *Service, code string) Account {
	t.Helper()
	accounts, err := svc.List(context.Background())
	require.NoError(t, err)
	for _, a := range accounts {
		if a.Code == code {
			return a
		}
	}
	t.Fatalf("account %s not found", code)
	return Account{}
}

func TestSeedDefaultChartIdempotent(t *testing.T) {
	svc, _ := seededService(t)
	before, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, before, len(defaultChart))

	require.NoError(t, SeedDefaultChart(context.Background(), svc))
	after, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, after, len(before))
}

func TestResolveAndPostability(t *testing.T) {
	svc, _ := seededService(t)
	cash := accountByCode(t, svc, "1100")
	assets := accountByCode(t, svc, "1000")

	resolved, err := svc.Resolve(context.Background(), cash.ID)
	require.NoError(t, err)
	require.Equal(t, KindCash, resolved.Kind)

	ok, err := svc.IsPostable(context.Background(), cash.ID)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = svc.IsPostable(context.Background(), assets.ID)
	require.NoError(t, err)
	require.False(t, ok)

	_, err = svc.Resolve(context.Background(), 999)
	require.ErrorIs(t, err, ErrAccountNotFound)
}

func TestAncestorsAndFullPath(t *testing.T) {
	svc, _ := seededService(t)
	assets := accountByCode(t, svc, "1000")

	fixed := accountByCode(t, svc, "1500")
	machines, err := svc.Create(context.Background(), CreateInput{
		Code:       "1510",
		Name:       "Machinery",
		ParentID:   &fixed.ID,
		NormalSide: SideDebit,
		Category:   CategoryFixedAsset,
		Kind:       KindNone,
	})
	require.NoError(t, err)

	chain, err := svc.Ancestors(context.Background(), machines.ID)
	require.NoError(t, err)
	require.Len(t, chain, 2)
	require.Equal(t, assets.ID, chain[0].ID)
	require.Equal(t, fixed.ID, chain[1].ID)

	path, err := svc.FullPath(context.Background(), machines.ID)
	require.NoError(t, err)
	require.Equal(t, "Assets / Fixed Assets / Machinery", path)
}

func TestCreateValidation(t *testing.T) {
	svc, _ := seededService(t)
	cash := accountByCode(t, svc, "1100")

	_, err := svc.Create(context.Background(), CreateInput{
		Code:       "1100",
		Name:       "Duplicate Cash",
		NormalSide: SideDebit,
		Category:   CategoryCurrentAsset,
		Kind:       KindNone,
	})
	require.ErrorIs(t, err, ErrDuplicateCode)

	// A leaf cannot parent another account.
	_, err = svc.Create(context.Background(), CreateInput{
		Code:       "1110",
		Name:       "Petty Cash",
		ParentID:   &cash.ID,
		NormalSide: SideDebit,
		Category:   CategoryCurrentAsset,
		Kind:       KindCash,
	})
	require.ErrorIs(t, err, ErrInvalidParent)

	missing := int64(999)
	_, err = svc.Create(context.Background(), CreateInput{
		Code:       "1120",
		Name:       "Orphan",
		ParentID:   &missing,
		NormalSide: SideDebit,
		Category:   CategoryCurrentAsset,
		Kind:       KindNone,
	})
	require.ErrorIs(t, err, ErrInvalidParent)

	_, err = svc.Create(context.Background(), CreateInput{
		Code:       "1130",
		Name:       "Bad Side",
		NormalSide: "SIDEWAYS",
		Category:   CategoryCurrentAsset,
		Kind:       KindNone,
	})
	require.Error(t, err)
}

func TestUpdateClassificationFrozenAfterPostings(t *testing.T) {
	svc, repo := seededService(t)
	sales := accountByCode(t, svc, "4100")

	input := UpdateInput{
		Code:       sales.Code,
		Name:       "Sales",
		ParentID:   sales.ParentID,
		NormalSide: sales.NormalSide,
		Category:   sales.Category,
		Kind:       sales.Kind,
		IsActive:   true,
	}

	// Rename is fine regardless of postings.
	repo.posted[sales.ID] = true
	updated, err := svc.Update(context.Background(), sales.ID, input)
	require.NoError(t, err)
	require.Equal(t, "Sales", updated.Name)

	input.Category = CategoryExpense
	_, err = svc.Update(context.Background(), sales.ID, input)
	require.ErrorIs(t, err, ErrAccountInUse)

	// Without postings the classification may still be corrected.
	repo.posted[sales.ID] = false
	updated, err = svc.Update(context.Background(), sales.ID, input)
	require.NoError(t, err)
	require.Equal(t, CategoryExpense, updated.Category)
}

func TestListPostableExcludesGroupsAndInactive(t *testing.T) {
	svc, repo := seededService(t)
	cash := accountByCode(t, svc, "1100")

	a := repo.accounts[cash.ID]
	a.IsActive = false
	repo.accounts[cash.ID] = a

	postable, err := svc.ListPostable(context.Background())
	require.NoError(t, err)
	for _, acc := range postable {
		require.False(t, acc.IsGroup)
		require.True(t, acc.IsActive)
		require.NotEqual(t, cash.ID, acc.ID)
	}
}
