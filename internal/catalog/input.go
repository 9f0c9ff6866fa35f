package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Flex accepts either a JSON string or a JSON number, keeping the raw text.
// Form posts and JSON bodies then share one validation path.
type Flex string

func (f *Flex) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = Flex(s)
		return nil
	}
	*f = Flex(b)
	return nil
}

// ProductInput is what an admin submits for a create or an update.
type ProductInput struct {
	Name        string `json:"name" schema:"name" yaml:"name"`
	Category    string `json:"category" schema:"category" yaml:"category"`
	Price       Flex   `json:"price" schema:"price" yaml:"price"`
	Stock       Flex   `json:"stock" schema:"stock" yaml:"stock"`
	Description string `json:"description" schema:"description" yaml:"description"`
	ImageURL    string `json:"image_url" schema:"image_url" yaml:"image_url"`
	Version     int    `json:"version" schema:"version" yaml:"version"`
}

// ProductValues is a validated ProductInput.
type ProductValues struct {
	Name        string
	Category    string
	Price       decimal.Decimal
	Stock       int
	Description string
	ImageURL    string
	Version     int
}

type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid product fields: %s", strings.Join(e.Fields, ", "))
}

func (in ProductInput) Validate() (ProductValues, error) {
	v := ProductValues{
		Name:        strings.TrimSpace(in.Name),
		Category:    strings.TrimSpace(in.Category),
		Description: strings.TrimSpace(in.Description),
		ImageURL:    strings.TrimSpace(in.ImageURL),
		Version:     in.Version,
	}
	var bad []string
	if v.Name == "" {
		bad = append(bad, "name")
	}
	if v.Category == "" {
		bad = append(bad, "category")
	}
	price, err := decimal.NewFromString(strings.TrimSpace(string(in.Price)))
	if err != nil || price.IsNegative() {
		bad = append(bad, "price")
	} else {
		v.Price = price.Round(2)
	}
	stock, err := strconv.Atoi(strings.TrimSpace(string(in.Stock)))
	if err != nil || stock < 0 {
		bad = append(bad, "stock")
	} else {
		v.Stock = stock
	}
	if len(bad) > 0 {
		return ProductValues{}, &ValidationError{Fields: bad}
	}
	return v, nil
}
