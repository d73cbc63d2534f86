// Package chart loads chart-of-accounts definitions from YAML and seeds them
// into a tenant through the account service.
package chart

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/SscSPs/school_ledger/internal/apperrors"
	"github.com/SscSPs/school_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/school_ledger/internal/core/ports/services"
	"gopkg.in/yaml.v3"
)

//go:embed default_chart.yaml
var defaultChart []byte

// AccountDef is one account of a chart file.
type AccountDef struct {
	Code string             `yaml:"code"`
	Name string             `yaml:"name"`
	Type domain.AccountType `yaml:"type"`
}

// Chart is a parsed chart-of-accounts file.
type Chart struct {
	Accounts []AccountDef `yaml:"accounts"`
}

// Load parses a chart from r. Account types are case-insensitive; codes must be unique.
func Load(r io.Reader) (*Chart, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var c Chart
	if err := dec.Decode(&c); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: chart file is empty", apperrors.ErrValidation)
		}
		return nil, fmt.Errorf("%w: failed to parse chart: %v", apperrors.ErrValidation, err)
	}

	seen := make(map[string]struct{}, len(c.Accounts))
	for i := range c.Accounts {
		a := &c.Accounts[i]
		a.Code = strings.TrimSpace(a.Code)
		a.Name = strings.TrimSpace(a.Name)
		a.Type = domain.AccountType(strings.ToUpper(strings.TrimSpace(string(a.Type))))

		switch {
		case a.Code == "":
			return nil, fmt.Errorf("%w: account %d has no code", apperrors.ErrValidation, i+1)
		case a.Name == "":
			return nil, fmt.Errorf("%w: account %s has no name", apperrors.ErrValidation, a.Code)
		case !a.Type.IsValid():
			return nil, fmt.Errorf("%w: account %s has unknown type %q", apperrors.ErrValidation, a.Code, a.Type)
		}
		if _, dup := seen[a.Code]; dup {
			return nil, fmt.Errorf("%w: account code %s appears twice", apperrors.ErrValidation, a.Code)
		}
		seen[a.Code] = struct{}{}
	}
	return &c, nil
}

// Default returns the embedded school chart.
func Default() (*Chart, error) {
	return Load(bytes.NewReader(defaultChart))
}

// AccountCreator is the part of the account service Apply needs.
type AccountCreator interface {
	GetAccountByCode(ctx context.Context, tenantID, code string) (*domain.Account, error)
	CreateAccount(ctx context.Context, tenantID string, req portssvc.NewAccount, userID string) (*domain.Account, error)
}

// Result lists the codes Apply created and the ones that already existed.
type Result struct {
	Created  []string
	Existing []string
}

// Apply creates every account of c that the tenant does not have yet.
// Existing accounts are left untouched, so Apply can be rerun safely.
func Apply(ctx context.Context, svc AccountCreator, tenantID, userID string, c *Chart) (*Result, error) {
	res := &Result{Created: []string{}, Existing: []string{}}
	for _, def := range c.Accounts {
		existing, err := svc.GetAccountByCode(ctx, tenantID, def.Code)
		switch {
		case err == nil:
			if existing.AccountType != def.Type {
				return res, fmt.Errorf("%w: account %s exists as %s, chart says %s",
					apperrors.ErrConflict, def.Code, existing.AccountType, def.Type)
			}
			res.Existing = append(res.Existing, def.Code)
			continue
		case !errors.Is(err, apperrors.ErrNotFound):
			return res, fmt.Errorf("failed to look up account %s: %w", def.Code, err)
		}

		_, err = svc.CreateAccount(ctx, tenantID, portssvc.NewAccount{
			Code:        def.Code,
			Name:        def.Name,
			AccountType: def.Type,
		}, userID)
		if err != nil {
			if errors.Is(err, apperrors.ErrDuplicate) {
				res.Existing = append(res.Existing, def.Code)
				continue
			}
			return res, fmt.Errorf("failed to create account %s: %w", def.Code, err)
		}
		res.Created = append(res.Created, def.Code)
	}
	return res, nil
}
