package attraction

import (
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/kailas-cloud/wayfarer/internal/domain"
)

// Hash field names follow the source dataset columns so loader input
// and stored records stay directly comparable.
const (
	fieldName        = "attraction_name"
	fieldCity        = "city_name"
	fieldCategory    = "attraction_type"
	fieldLocation    = "location"
	fieldAddress     = "address"
	fieldPrice       = "price"
	fieldCurrency    = "currency"
	fieldOpenHours   = "open_hours"
	fieldDescription = "things_to_do"
	fieldEmbedding   = "embedding"
)

func attractionKey(id string) string {
	return domain.KeyPrefix + "attraction:" + id
}

func attractionKeyPattern() string {
	return domain.KeyPrefix + "attraction:*"
}

func attractionID(key string) string {
	return strings.TrimPrefix(key, domain.KeyPrefix+"attraction:")
}

func buildHashFields(a domain.Attraction) map[string]string {
	fields := map[string]string{
		fieldName:      a.Name,
		fieldEmbedding: vectorToBytes(a.Embedding),
	}
	if a.City != "" {
		fields[fieldCity] = a.City
	}
	if a.Category != "" {
		fields[fieldCategory] = a.Category
	}
	if a.Location != "" {
		fields[fieldLocation] = a.Location
	}
	if a.Address != "" {
		fields[fieldAddress] = a.Address
	}
	fields[fieldPrice] = strconv.FormatFloat(a.Price, 'f', -1, 64)
	if a.Currency != "" {
		fields[fieldCurrency] = a.Currency
	}
	if a.OpenHours != "" {
		fields[fieldOpenHours] = a.OpenHours
	}
	if a.Description != "" {
		fields[fieldDescription] = a.Description
	}
	return fields
}

func parseHashFields(id string, fields map[string]string) (domain.Attraction, error) {
	raw, ok := fields[fieldEmbedding]
	if !ok || raw == "" {
		return domain.Attraction{}, fmt.Errorf("missing embedding field")
	}
	vec, err := bytesToVector(raw)
	if err != nil {
		return domain.Attraction{}, err
	}

	a := domain.Attraction{
		ID:          id,
		Name:        fields[fieldName],
		City:        fields[fieldCity],
		Category:    fields[fieldCategory],
		Location:    fields[fieldLocation],
		Address:     fields[fieldAddress],
		Currency:    fields[fieldCurrency],
		OpenHours:   fields[fieldOpenHours],
		Description: fields[fieldDescription],
		Embedding:   vec,
	}
	if s := fields[fieldPrice]; s != "" {
		p, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return domain.Attraction{}, fmt.Errorf("invalid price %q: %w", s, err)
		}
		a.Price = p
	}
	return a, nil
}

// vectorToBytes encodes a float32 vector as little-endian bytes,
// 4 bytes per component.
func vectorToBytes(vec []float32) string {
	buf := make([]byte, len(vec)*4)
	for i, f := range vec {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return string(buf)
}

// bytesToVector decodes the little-endian float32 encoding produced by
// vectorToBytes.
func bytesToVector(s string) ([]float32, error) {
	if len(s)%4 != 0 {
		return nil, fmt.Errorf("embedding blob length %d is not a multiple of 4", len(s))
	}
	vec := make([]float32, len(s)/4)
	for i := range vec {
		bits := binary.LittleEndian.Uint32([]byte(s[i*4 : i*4+4]))
		vec[i] = math.Float32frombits(bits)
	}
	return vec, nil
}
