package nodeid

import (
	"errors"
	"fmt"
	"strings"
)

// Parse splits a dotted identifier such as `inject.x86_64.library` into an
// Address.
func Parse(rawID string) (*Address, error) {
	if rawID == "" {
		return nil, errors.New("node identifier is empty")
	}
	names := strings.Split(rawID, ".")
	for _, name := range names {
		if err := checkSegment(name); err != nil {
			return nil, fmt.Errorf("node identifier %q: %w", rawID, err)
		}
	}
	return &Address{Path: names}, nil
}

// checkSegment accepts ASCII letters, digits, '_' and '-', but not a lone '-'.
func checkSegment(name string) error {
	switch name {
	case "":
		return errors.New("empty segment")
	case "-":
		return errors.New(`segment "-" is reserved`)
	}
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
		default:
			return fmt.Errorf("segment %q contains %q", name, r)
		}
	}
	return nil
}
