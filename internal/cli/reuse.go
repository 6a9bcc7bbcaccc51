package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// parseReuse builds the already-deployed override map from a --reuse-from
// file and repeated --reuse name=address flags. Flags win over the file.
func parseReuse(pairs []string, file string) (map[string]common.Address, error) {
	reuse := make(map[string]common.Address)

	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", file, err)
		}
		var raw map[string]string
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("%s must be a JSON object of component name to address: %w", file, err)
		}
		for name, addr := range raw {
			if !common.IsHexAddress(addr) {
				return nil, fmt.Errorf("%s: invalid address %q for %s", file, addr, name)
			}
			reuse[name] = common.HexToAddress(addr)
		}
	}

	for _, pair := range pairs {
		name, addr, ok := strings.Cut(pair, "=")
		name = strings.TrimSpace(name)
		addr = strings.TrimSpace(addr)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid --reuse %q, expected name=address", pair)
		}
		if !common.IsHexAddress(addr) {
			return nil, fmt.Errorf("invalid address %q for %s", addr, name)
		}
		reuse[name] = common.HexToAddress(addr)
	}

	return reuse, nil
}
