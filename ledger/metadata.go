package ledger

import "fmt"

// MetadataSpec is the metadata format version reported by every ledger.
const MetadataSpec = "ft-1.0.0"

// Metadata describes the token held by a ledger.
type Metadata struct {
	Spec     string `json:"spec"`
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	Icon     string `json:"icon,omitempty"`
	Decimals uint8  `json:"decimals"`
}

// Validate requires a name and a symbol.
func (m Metadata) Validate() error {
	if m.Name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidMetadata)
	}
	if m.Symbol == "" {
		return fmt.Errorf("%w: empty symbol", ErrInvalidMetadata)
	}
	return nil
}
