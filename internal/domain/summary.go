package domain

import (
	"sort"

	"github.com/ethereum/go-ethereum/common"
)

// ChainSummary is a one-line view of a configured chain
type ChainSummary struct {
	Name         string               `json:"name"`
	ChainID      uint64               `json:"chainId"`
	Product      string               `json:"product"`
	Profile      string               `json:"profile"`
	Verification VerificationProtocol `json:"verification"`
	Enabled      []string             `json:"enabled"`
	Admin        common.Address       `json:"admin"`
}

// SortedKeys returns the keys of a string keyed map in ascending order
func SortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
