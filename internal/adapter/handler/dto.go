package handler

import (
	"fmt"
	"unicode/utf8"

	"github.com/rl1809/beer-stock/internal/core/domain"
)

const (
	minTextLength = 2
	maxTextLength = 100
)

type beerDTO struct {
	ID       string `json:"id,omitempty"`
	Name     string `json:"name"`
	Brand    string `json:"brand"`
	Max      int    `json:"max"`
	Quantity int    `json:"quantity"`
	Type     string `json:"type"`
}

type quantityDTO struct {
	Quantity int `json:"quantity"`
}

type createdDTO struct {
	ID string `json:"id"`
}

type errorDTO struct {
	Message string `json:"message"`
}

func toBeerDTO(b domain.Beer) beerDTO {
	return beerDTO{
		ID:       b.ID,
		Name:     b.Name,
		Brand:    b.Brand,
		Max:      b.Max,
		Quantity: b.Quantity,
		Type:     string(b.Type),
	}
}

// fromBeerDTO converts an incoming beer, checking the field constraints the
// core relies on. The id is ignored; the store assigns it.
func fromBeerDTO(d beerDTO) (domain.Beer, error) {
	if err := validateText("name", d.Name); err != nil {
		return domain.Beer{}, err
	}
	if err := validateText("brand", d.Brand); err != nil {
		return domain.Beer{}, err
	}
	if d.Max < 0 {
		return domain.Beer{}, fmt.Errorf("max must not be negative")
	}

	beerType := domain.BeerType(d.Type)
	if !beerType.Valid() {
		return domain.Beer{}, fmt.Errorf("type must be one of %v", domain.BeerTypes())
	}

	return domain.Beer{
		Name:     d.Name,
		Brand:    d.Brand,
		Max:      d.Max,
		Quantity: d.Quantity,
		Type:     beerType,
	}, nil
}

func validateText(field, value string) error {
	n := utf8.RuneCountInString(value)
	if n < minTextLength || n > maxTextLength {
		return fmt.Errorf("%s must be between %d and %d characters", field, minTextLength, maxTextLength)
	}
	return nil
}
