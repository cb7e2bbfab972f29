package light

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
)

// Validate checks tokens against def. Arity is checked first, then every
// token is type-parsed by the definition's ParseFunc; clamping happens only
// inside ParseFunc after all tokens have parsed.
func Validate(def *Definition, tokens []string) (Args, error) {
	if len(tokens) != def.Arity {
		return nil, &ValidationError{Command: def.Name, Err: ErrWrongArity}
	}
	args, err := def.Parse(tokens)
	if err != nil {
		if !errors.Is(err, ErrUnparsableArgument) {
			err = fmt.Errorf("%w: %v", ErrUnparsableArgument, err)
		}
		return nil, &ValidationError{Command: def.Name, Err: err}
	}
	return args, nil
}

// NoArgs accepts an empty token list.
func NoArgs(tokens []string) (Args, error) {
	return Args{}, nil
}

// OneOf accepts tokens that exactly match one of allowed (case-sensitive).
func OneOf(allowed ...string) ParseFunc {
	return func(tokens []string) (Args, error) {
		args := make(Args, 0, len(tokens))
		for _, tok := range tokens {
			if !slices.Contains(allowed, tok) {
				return nil, fmt.Errorf("%w: %q", ErrUnparsableArgument, tok)
			}
			args = append(args, tok)
		}
		return args, nil
	}
}

// ClampedInts parses every token as a base-10 integer and, once all of them
// parsed, clamps each into [lo, hi].
func ClampedInts(lo, hi int) ParseFunc {
	return func(tokens []string) (Args, error) {
		vals := make([]int, len(tokens))
		for i, tok := range tokens {
			v, err := parseInt(tok)
			if err != nil {
				return nil, fmt.Errorf("%w: %q", ErrUnparsableArgument, tok)
			}
			vals[i] = v
		}

		args := make(Args, len(vals))
		for i, v := range vals {
			args[i] = Clamp(v, lo, hi)
		}
		return args, nil
	}
}

// parseInt accepts an optionally signed base-10 integer. Values beyond the
// int range are well-typed and saturate, so they clamp like any other
// out-of-range value.
func parseInt(tok string) (int, error) {
	v, err := strconv.Atoi(tok)
	if err != nil {
		var numErr *strconv.NumError
		if errors.As(err, &numErr) && errors.Is(numErr.Err, strconv.ErrRange) {
			return v, nil
		}
		return 0, err
	}
	return v, nil
}
