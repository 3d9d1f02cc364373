package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// KeywordStrategy is the per-profile SEO keyword strategy, stored as jsonb.
type KeywordStrategy struct {
	StrategyConcept      string   `json:"strategy_concept,omitempty"`
	HeadMiddle           []string `json:"head_middle,omitempty"`
	TransactionalCV      []string `json:"transactional_cv,omitempty"`
	InformationalKnowhow []string `json:"informational_knowhow,omitempty"`
	BusinessSpecific     []string `json:"business_specific,omitempty"`
}

// AllKeywords flattens the categorized lists into one sequence, in a fixed
// category order.
func (k KeywordStrategy) AllKeywords() []string {
	var all []string
	all = append(all, k.HeadMiddle...)
	all = append(all, k.TransactionalCV...)
	all = append(all, k.InformationalKnowhow...)
	all = append(all, k.BusinessSpecific...)
	return all
}

// Scan implements the sql.Scanner interface
func (k *KeywordStrategy) Scan(value interface{}) error {
	if value == nil {
		*k = KeywordStrategy{}
		return nil
	}

	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, k)
	case string:
		return json.Unmarshal([]byte(v), k)
	default:
		return fmt.Errorf("cannot scan %T into KeywordStrategy", value)
	}
}

// Value implements the driver.Valuer interface
func (k KeywordStrategy) Value() (driver.Value, error) {
	return json.Marshal(k)
}
