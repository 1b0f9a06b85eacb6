package coa

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Service is the account registry: it resolves accounts, answers postability
// questions, and guards classification immutability.
type Service struct {
	repo  Repository
	cache *Cache
}

// NewService constructs the registry service.
func NewService(repo Repository, cache *Cache) *Service {
	return &Service{repo: repo, cache: cache}
}

// Resolve returns the account for id.
func (s *Service) Resolve(ctx context.Context, id int64) (Account, error) {
	var account Account
	err := s.cache.FetchJSON(ctx, &account, func(ctx context.Context) (any, error) {
		return s.repo.Get(ctx, id)
	}, "account", fmt.Sprintf("%d", id))
	if err != nil {
		return Account{}, err
	}
	if account.ID == 0 {
		return Account{}, ErrAccountNotFound
	}
	return account, nil
}

// IsPostable reports whether postings may target the account.
func (s *Service) IsPostable(ctx context.Context, id int64) (bool, error) {
	account, err := s.Resolve(ctx, id)
	if err != nil {
		return false, err
	}
	return account.Postable(), nil
}

// NormalSide returns the account's normal balance side.
func (s *Service) NormalSide(ctx context.Context, id int64) (NormalSide, error) {
	account, err := s.Resolve(ctx, id)
	if err != nil {
		return "", err
	}
	return account.NormalSide, nil
}

// Category returns the account's report category.
func (s *Service) Category(ctx context.Context, id int64) (Category, error) {
	account, err := s.Resolve(ctx, id)
	if err != nil {
		return "", err
	}
	return account.Category, nil
}

// Kind returns the account's money kind (cash, bank, or none).
func (s *Service) Kind(ctx context.Context, id int64) (Kind, error) {
	account, err := s.Resolve(ctx, id)
	if err != nil {
		return "", err
	}
	return account.Kind, nil
}

// Ancestors returns the chain of group accounts above id, root first.
// The account itself is not included.
func (s *Service) Ancestors(ctx context.Context, id int64) ([]Account, error) {
	account, err := s.Resolve(ctx, id)
	if err != nil {
		return nil, err
	}
	var chain []Account
	seen := map[int64]bool{account.ID: true}
	for account.ParentID != nil {
		parent, err := s.Resolve(ctx, *account.ParentID)
		if err != nil {
			return nil, err
		}
		if seen[parent.ID] {
			return nil, fmt.Errorf("coa: cycle detected at account %d", parent.ID)
		}
		seen[parent.ID] = true
		chain = append([]Account{parent}, chain...)
		account = parent
	}
	return chain, nil
}

// FullPath renders the display path for an account, root first.
func (s *Service) FullPath(ctx context.Context, id int64) (string, error) {
	account, err := s.Resolve(ctx, id)
	if err != nil {
		return "", err
	}
	ancestors, err := s.Ancestors(ctx, id)
	if err != nil {
		return "", err
	}
	parts := make([]string, 0, len(ancestors)+1)
	for _, a := range ancestors {
		parts = append(parts, a.Name)
	}
	parts = append(parts, account.Name)
	return strings.Join(parts, " / "), nil
}

// List returns every account ordered by code.
func (s *Service) List(ctx context.Context) ([]Account, error) {
	var accounts []Account
	err := s.cache.FetchJSON(ctx, &accounts, func(ctx context.Context) (any, error) {
		return s.repo.List(ctx)
	}, "list")
	return accounts, err
}

// ListPostable returns every leaf account that may receive postings.
func (s *Service) ListPostable(ctx context.Context) ([]Account, error) {
	accounts, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	postable := make([]Account, 0, len(accounts))
	for _, a := range accounts {
		if a.Postable() {
			postable = append(postable, a)
		}
	}
	return postable, nil
}

// CreateInput carries the fields for a new account.
type CreateInput struct {
	Code       string
	Name       string
	ParentID   *int64
	IsGroup    bool
	NormalSide NormalSide
	Category   Category
	Kind       Kind
}

func (in CreateInput) validate() error {
	if strings.TrimSpace(in.Code) == "" {
		return errors.New("coa: code required")
	}
	if strings.TrimSpace(in.Name) == "" {
		return errors.New("coa: name required")
	}
	if !ValidSide(in.NormalSide) {
		return fmt.Errorf("coa: unknown normal side %q", in.NormalSide)
	}
	if !ValidCategory(in.Category) {
		return fmt.Errorf("coa: unknown category %q", in.Category)
	}
	if !ValidKind(in.Kind) {
		return fmt.Errorf("coa: unknown kind %q", in.Kind)
	}
	return nil
}

// Create adds an account to the registry.
func (s *Service) Create(ctx context.Context, in CreateInput) (Account, error) {
	if err := in.validate(); err != nil {
		return Account{}, err
	}
	if in.ParentID != nil {
		parent, err := s.repo.Get(ctx, *in.ParentID)
		if err != nil {
			if errors.Is(err, ErrAccountNotFound) {
				return Account{}, ErrInvalidParent
			}
			return Account{}, err
		}
		if !parent.IsGroup {
			return Account{}, ErrInvalidParent
		}
	}
	created, err := s.repo.Insert(ctx, Account{
		Code:       in.Code,
		Name:       in.Name,
		ParentID:   in.ParentID,
		IsGroup:    in.IsGroup,
		NormalSide: in.NormalSide,
		Category:   in.Category,
		Kind:       in.Kind,
		IsActive:   true,
	})
	if err != nil {
		return Account{}, err
	}
	_ = s.cache.Bump(ctx)
	return created, nil
}

// UpdateInput carries mutable account fields.
type UpdateInput struct {
	Code       string
	Name       string
	ParentID   *int64
	NormalSide NormalSide
	Category   Category
	Kind       Kind
	IsActive   bool
}

// Update modifies an account. Normal side, category, and kind are frozen once
// postings exist against the account; changing them would silently corrupt
// historical reports.
func (s *Service) Update(ctx context.Context, id int64, in UpdateInput) (Account, error) {
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return Account{}, err
	}
	classificationChanged := current.NormalSide != in.NormalSide ||
		current.Category != in.Category ||
		current.Kind != in.Kind
	if classificationChanged {
		used, err := s.repo.HasPostings(ctx, id)
		if err != nil {
			return Account{}, err
		}
		if used {
			return Account{}, ErrAccountInUse
		}
	}
	next := current
	next.Code = in.Code
	next.Name = in.Name
	next.ParentID = in.ParentID
	next.NormalSide = in.NormalSide
	next.Category = in.Category
	next.Kind = in.Kind
	next.IsActive = in.IsActive
	if err := in.validateAsCreate(); err != nil {
		return Account{}, err
	}
	updated, err := s.repo.Update(ctx, next)
	if err != nil {
		return Account{}, err
	}
	_ = s.cache.Bump(ctx)
	return updated, nil
}

func (in UpdateInput) validateAsCreate() error {
	return CreateInput{
		Code:       in.Code,
		Name:       in.Name,
		NormalSide: in.NormalSide,
		Category:   in.Category,
		Kind:       in.Kind,
	}.validate()
}
