// Copyright (c) 2024 The BitFS developers
// Use of this source code is governed by the Open BSV License v5
// that can be found in the LICENSE file.

package config

import (
	"fmt"
	"strconv"
	"time"

	"github.com/holiman/uint256"

	"github.com/bitfsorg/libtokensale-go/ledger"
	"github.com/bitfsorg/libtokensale-go/pricing"
	"github.com/bitfsorg/libtokensale-go/sale"
	"github.com/bitfsorg/libtokensale-go/shares"
)

// LoadDeployment reads the initialization parameters of a sale.
//
//	name          = Example Token
//	symbol        = EXT
//	icon          = data:image/svg+xml,...
//	decimals      = 8
//	total_supply  = 1000000
//	sale_duration = 72h
//	price         = fixed:1
//	shareholder   = alice 10
//	shareholder   = bob 5
func LoadDeployment(path string) (sale.Params, error) {
	var (
		p    sale.Params
		seen = make(map[string]bool)
	)
	err := readKeyValues(path, func(key, value string) error {
		seen[key] = true
		switch key {
		case "name":
			p.Metadata.Name = value
		case "symbol":
			p.Metadata.Symbol = value
		case "icon":
			p.Metadata.Icon = value
		case "decimals":
			n, err := strconv.ParseUint(value, 10, 8)
			if err != nil {
				return fmt.Errorf("%w: decimals %q: %w", ErrInvalidValue, value, err)
			}
			p.Metadata.Decimals = uint8(n)
		case "total_supply":
			v, err := uint256.FromDecimal(value)
			if err != nil {
				return fmt.Errorf("%w: total_supply %q: %w", ErrInvalidValue, value, err)
			}
			p.TotalSupply = v
		case "sale_duration":
			d, err := time.ParseDuration(value)
			if err != nil {
				return fmt.Errorf("%w: sale_duration %q: %w", ErrInvalidValue, value, err)
			}
			p.SaleDuration = d
		case "price":
			s, err := pricing.Parse(value)
			if err != nil {
				return fmt.Errorf("%w: price: %w", ErrInvalidValue, err)
			}
			p.Price = s
		case "shareholder":
			h, err := shares.ParseShareHolder(value)
			if err != nil {
				return fmt.Errorf("%w: shareholder: %w", ErrInvalidValue, err)
			}
			p.Shareholders = append(p.Shareholders, h)
		}
		return nil
	})
	if err != nil {
		return sale.Params{}, err
	}

	for _, key := range []string{"name", "symbol", "total_supply", "sale_duration", "price"} {
		if !seen[key] {
			return sale.Params{}, fmt.Errorf("%w: %s", ErrMissingKey, key)
		}
	}
	p.Metadata.Spec = ledger.MetadataSpec
	return p, nil
}
