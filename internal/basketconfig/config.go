package basketconfig

import (
	"fmt"
	"strings"
	"time"

	"github.com/LLeom997/AlphBasket-sub000/internal/contracts"
)

const dateLayout = "2006-01-02"

// File is the on-disk YAML definition of a basket
// ⭐ SSOT: every field a basket file may contain is declared here
type File struct {
	ID             string                 `yaml:"id" json:"id"`
	Name           string                 `yaml:"name" json:"name"`
	Mode           string                 `yaml:"mode" json:"mode"`
	InitialCapital float64                `yaml:"initial_capital" json:"initial_capital"`
	Rebalance      string                 `yaml:"rebalance,omitempty" json:"rebalance,omitempty"`
	InceptionDate  string                 `yaml:"inception_date,omitempty" json:"inception_date,omitempty"` // YYYY-MM-DD
	Strategy       string                 `yaml:"strategy,omitempty" json:"strategy,omitempty"`             // forecast overlay
	Items          []contracts.BasketItem `yaml:"items" json:"items"`
}

// ValidationError names the offending field
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Basket converts the file into the engine's basket type
func (f *File) Basket() (*contracts.Basket, error) {
	b := &contracts.Basket{
		ID:             f.ID,
		Name:           f.Name,
		Items:          f.Items,
		Mode:           contracts.AllocationMode(f.Mode),
		InitialCapital: f.InitialCapital,
		Rebalance:      contracts.RebalanceInterval(f.Rebalance),
	}
	if b.Mode == "" {
		b.Mode = contracts.AllocationWeight
	}
	if b.Rebalance == "" {
		b.Rebalance = contracts.RebalanceNone
	}
	if b.Name == "" {
		b.Name = b.ID
	}

	if f.InceptionDate != "" {
		d, err := time.Parse(dateLayout, f.InceptionDate)
		if err != nil {
			return nil, ValidationError{"inception_date", "must be YYYY-MM-DD"}
		}
		b.InceptionDate = &d
	}

	return b, nil
}

// ForecastStrategy returns the declared overlay, hold when unset
func (f *File) ForecastStrategy() contracts.Strategy {
	if f.Strategy == "" {
		return contracts.StrategyHold
	}
	return contracts.Strategy(f.Strategy)
}

// Validate checks the file-level fields, then the basket rules
func Validate(f *File) error {
	if strings.TrimSpace(f.ID) == "" {
		return ValidationError{"id", "required"}
	}
	if len(f.Items) == 0 {
		return ValidationError{"items", "at least one item required"}
	}
	if f.Strategy != "" {
		if _, ok := contracts.ParseStrategy(f.Strategy); !ok {
			return ValidationError{"strategy", "must be one of: hold, target_sl, momentum"}
		}
	}

	b, err := f.Basket()
	if err != nil {
		return err
	}
	if err := b.Validate(); err != nil {
		return fmt.Errorf("basket %s: %w", f.ID, err)
	}
	return nil
}
