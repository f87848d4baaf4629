package protocol

import (
	"errors"
	"slices"
	"strings"
)

var ErrUnknownTicketType = errors.New("unknown ticket type")

type TicketType string

const (
	TypeST     TicketType = "ST"
	TypePT     TicketType = "PT"
	TypePGT    TicketType = "PGT"
	TypePGTIOU TicketType = "PGTIOU"
	TypeTGC    TicketType = "TGC"
	TypeLT     TicketType = "LT"
)

var ticketTypes = []TicketType{TypeST, TypePT, TypePGT, TypePGTIOU, TypeTGC, TypeLT}

func ParseTicketType(s string) (TicketType, error) {
	t := TicketType(s)
	if !slices.Contains(ticketTypes, t) {
		return "", ErrUnknownTicketType
	}
	return t, nil
}

// TypeOf extracts the type prefix of a wire string without decoding it.
// A string with no separator is an implicit ST (CAS 1.0 bare tickets).
func TypeOf(wire string) TicketType {
	prefix, _, found := strings.Cut(wire, "-")
	if !found {
		return TypeST
	}
	return TicketType(prefix)
}

func (t TicketType) In(allowed []TicketType) bool {
	return slices.Contains(allowed, t)
}

func (t TicketType) String() string { return string(t) }
