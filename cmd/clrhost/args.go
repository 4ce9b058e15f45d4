package main

import (
	"fmt"
	"strconv"

	"github.com/wippyai/clr-host/errors"
	"github.com/wippyai/clr-host/marshal"
)

// convertArgs turns command line values into argument words. Strings are
// copied into arena and passed by address.
func convertArgs(arena *marshal.Arena, params, values []string) ([]uintptr, error) {
	if len(params) != len(values) {
		return nil, errors.InvalidInput(errors.PhaseInvoke,
			fmt.Sprintf("expected %d arguments, got %d", len(params), len(values)))
	}

	words := make([]uintptr, len(values))
	for i, kind := range params {
		w, err := convertArg(arena, kind, values[i])
		if err != nil {
			return nil, errors.New(errors.PhaseInvoke, errors.KindInvalidInput).
				Path(fmt.Sprintf("arg%d", i)).
				Value(values[i]).
				Cause(err).
				Build()
		}
		words[i] = w
	}
	return words, nil
}

func convertArg(arena *marshal.Arena, kind, value string) (uintptr, error) {
	switch kind {
	case "int32":
		v, err := strconv.ParseInt(value, 0, 32)
		return uintptr(v), err
	case "int64":
		v, err := strconv.ParseInt(value, 0, 64)
		return uintptr(v), err
	case "uint32":
		v, err := strconv.ParseUint(value, 0, 32)
		return uintptr(v), err
	case "uint64", "uintptr":
		v, err := strconv.ParseUint(value, 0, 64)
		return uintptr(v), err
	case "bool":
		v, err := strconv.ParseBool(value)
		if v {
			return 1, err
		}
		return 0, err
	case "string":
		return arena.CString(value)
	default:
		return 0, fmt.Errorf("unsupported parameter type %q", kind)
	}
}

// formatResult renders the raw result register as kind.
func formatResult(kind string, r uintptr) string {
	switch kind {
	case "", "void":
		return "(void)"
	case "int32":
		return strconv.FormatInt(int64(int32(r)), 10)
	case "int64":
		return strconv.FormatInt(int64(r), 10)
	case "uint32":
		return strconv.FormatUint(uint64(uint32(r)), 10)
	case "uint64":
		return strconv.FormatUint(uint64(r), 10)
	case "bool":
		return strconv.FormatBool(uint8(r) != 0)
	default:
		return fmt.Sprintf("%#x", r)
	}
}
