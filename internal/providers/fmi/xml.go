package fmi

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"saa-api/internal/types"
)

// ErrMalformedResponse is returned when the response body cannot be interpreted
var ErrMalformedResponse = errors.New("malformed WFS response")

// ParseMembers walks the document and returns every wfs:member element in
// document order, including nested ones. Each member gets the text of the
// first gml:pos, BsWfs:ParameterName and BsWfs:ParameterValue found anywhere
// below it.
func ParseMembers(r io.Reader) ([]Member, error) {
	dec := xml.NewDecoder(r)

	var (
		members []Member
		open    []int // indexes into members of currently open wfs:member elements
		sawRoot bool
	)

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			sawRoot = true

			switch t.Name {
			case memberName:
				members = append(members, Member{})
				open = append(open, len(members)-1)
			case posName, parameterNameName, parameterValueName:
				if len(open) == 0 {
					// Still has to be consumed so the decoder stays balanced
					if err := dec.Skip(); err != nil {
						return nil, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
					}
					continue
				}
				text, err := elementText(dec, t)
				if err != nil {
					return nil, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
				}
				for _, i := range open {
					setFirst(&members[i], t.Name, text)
				}
			}
		case xml.EndElement:
			if t.Name == memberName && len(open) > 0 {
				open = open[:len(open)-1]
			}
		}
	}

	if !sawRoot {
		return nil, fmt.Errorf("%w: no root element", ErrMalformedResponse)
	}

	return members, nil
}

// elementText returns the character data directly inside start, up to its
// first child element, and consumes the rest of the element.
func elementText(dec *xml.Decoder, start xml.StartElement) (string, error) {
	var (
		sb      strings.Builder
		inText  = true
		depth   = 1
		element = start.Name
	)

	for depth > 0 {
		tok, err := dec.Token()
		if err != nil {
			return "", fmt.Errorf("reading %s: %w", element.Local, err)
		}
		switch t := tok.(type) {
		case xml.CharData:
			if inText && depth == 1 {
				sb.Write(t)
			}
		case xml.StartElement:
			inText = false
			depth++
		case xml.EndElement:
			depth--
		}
	}

	return sb.String(), nil
}

func setFirst(m *Member, name xml.Name, text string) {
	var field **string
	switch name {
	case posName:
		field = &m.Pos
	case parameterNameName:
		field = &m.ParameterName
	case parameterValueName:
		field = &m.ParameterValue
	default:
		return
	}
	if *field == nil {
		v := text
		*field = &v
	}
}

// ParsePos parses a gml:pos value. FMI uses latitude-first axis order.
func ParsePos(pos string) (types.Coords, error) {
	fields := strings.Fields(pos)
	if len(fields) != 2 {
		return types.Coords{}, fmt.Errorf("%w: position %q: expected 2 values, got %d", ErrMalformedResponse, pos, len(fields))
	}

	lat, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return types.Coords{}, fmt.Errorf("%w: position %q: %w", ErrMalformedResponse, pos, err)
	}
	lon, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return types.Coords{}, fmt.Errorf("%w: position %q: %w", ErrMalformedResponse, pos, err)
	}

	if !isFinite(lat) || !isFinite(lon) {
		return types.Coords{}, fmt.Errorf("%w: position %q is not finite", ErrMalformedResponse, pos)
	}

	return types.NewCoords(lat, lon), nil
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// ParseValue parses a BsWfs:ParameterValue. The MissingValue sentinel yields
// nil; it is never turned into a floating point NaN. Other non-finite
// spellings are treated the same way since JSON cannot carry them.
func ParseValue(value string) (*float64, error) {
	value = strings.TrimSpace(value)
	if value == MissingValue {
		return nil, nil
	}

	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: value %q: %w", ErrMalformedResponse, value, err)
	}
	if !isFinite(f) {
		return nil, nil
	}
	return &f, nil
}
