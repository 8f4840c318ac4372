package payments

import (
	"encoding/binary"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/speps/go-hashids/v2"
)

const orderIDPrefix = "BOOKING"

// OrderIDGenerator builds provider order ids of the form
// BOOKING-{unixMillis}-{tag}. The tag is a short hashid of random bits.
type OrderIDGenerator struct {
	hd  *hashids.HashID
	now func() time.Time
}

func NewOrderIDGenerator(salt string) (*OrderIDGenerator, error) {
	data := hashids.NewData()
	data.Salt = salt
	data.MinLength = 6
	data.Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	hd, err := hashids.NewWithData(data)
	if err != nil {
		return nil, fmt.Errorf("order id generator: %w", err)
	}
	return &OrderIDGenerator{hd: hd, now: time.Now}, nil
}

func (g *OrderIDGenerator) Generate() string {
	nonce := uuid.New()
	n := int64(binary.BigEndian.Uint32(nonce[:4]))

	tag, err := g.hd.EncodeInt64([]int64{n})
	if err != nil {
		tag = strings.ToUpper(nonce.String()[:8])
	}
	return fmt.Sprintf("%s-%d-%s", orderIDPrefix, g.now().UnixMilli(), tag)
}

// IsOrderID reports whether s looks like an id produced by Generate.
func IsOrderID(s string) bool {
	parts := strings.Split(s, "-")
	return len(parts) == 3 && parts[0] == orderIDPrefix && parts[1] != "" && parts[2] != ""
}
