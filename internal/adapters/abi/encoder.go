package abi

import (
	"encoding/hex"
	"fmt"
	"math"
	"math/big"
	"reflect"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/trebuchet-org/catapult/internal/domain"
)

// Encoder ABI encodes resolved arguments. Values come from TOML or YAML
// configuration, so they arrive as strings, int64, float64 or []any and are
// coerced to the Go types go-ethereum packs for each solidity type.
type Encoder struct{}

// NewEncoder creates a new encoder
func NewEncoder() *Encoder {
	return &Encoder{}
}

// EncodeArgs returns the ABI encoding of args as a constructor argument blob
func (e *Encoder) EncodeArgs(args []domain.ResolvedArg) ([]byte, error) {
	arguments := make(abi.Arguments, len(args))
	values := make([]any, len(args))
	for i, arg := range args {
		typ, err := abi.NewType(arg.Type, "", nil)
		if err != nil {
			return nil, fmt.Errorf("arg %d: invalid type %q: %w", i, arg.Type, err)
		}
		value, err := Coerce(typ, arg.Value)
		if err != nil {
			return nil, fmt.Errorf("arg %d (%s): %w", i, arg.Type, err)
		}
		arguments[i] = abi.Argument{Type: typ}
		values[i] = value
	}

	encoded, err := arguments.Pack(values...)
	if err != nil {
		return nil, fmt.Errorf("failed to pack arguments: %w", err)
	}
	return encoded, nil
}

// EncodeCall returns the calldata of a call to signature, e.g.
// "initialize(address,address[])", with args as parameters
func (e *Encoder) EncodeCall(signature string, args []domain.ResolvedArg) ([]byte, error) {
	signature = strings.ReplaceAll(signature, " ", "")
	params, err := SignatureTypes(signature)
	if err != nil {
		return nil, err
	}
	if len(params) != len(args) {
		return nil, fmt.Errorf("%w: %s takes %d arguments, got %d", domain.ErrInvalidArgument, signature, len(params), len(args))
	}
	for i, param := range params {
		if param != args[i].Type {
			return nil, fmt.Errorf("%w: %s argument %d is %s, got %s", domain.ErrInvalidArgument, signature, i, param, args[i].Type)
		}
	}

	encoded, err := e.EncodeArgs(args)
	if err != nil {
		return nil, err
	}
	selector := crypto.Keccak256([]byte(signature))[:4]
	return append(selector, encoded...), nil
}

// SignatureTypes returns the parameter types of a function signature
func SignatureTypes(signature string) ([]string, error) {
	open := strings.Index(signature, "(")
	if open <= 0 || !strings.HasSuffix(signature, ")") {
		return nil, fmt.Errorf("%w: malformed signature %q", domain.ErrInvalidArgument, signature)
	}
	inner := signature[open+1 : len(signature)-1]
	if inner == "" {
		return nil, nil
	}

	var (
		types []string
		depth int
		start int
	)
	for i, r := range inner {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				types = append(types, inner[start:i])
				start = i + 1
			}
		}
	}
	types = append(types, inner[start:])
	return types, nil
}

// Coerce converts a configuration value to the Go representation of typ
func Coerce(typ abi.Type, value any) (any, error) {
	switch typ.T {
	case abi.AddressTy:
		return toAddress(value)
	case abi.BoolTy:
		b, ok := value.(bool)
		if !ok {
			return nil, fmt.Errorf("expected bool, got %T", value)
		}
		return b, nil
	case abi.StringTy:
		s, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("expected string, got %T", value)
		}
		return s, nil
	case abi.BytesTy:
		return toBytes(value)
	case abi.FixedBytesTy:
		raw, err := toBytes(value)
		if err != nil {
			return nil, err
		}
		if len(raw) > typ.Size {
			return nil, fmt.Errorf("value of %d bytes does not fit bytes%d", len(raw), typ.Size)
		}
		out := reflect.New(typ.GetType()).Elem()
		reflect.Copy(out, reflect.ValueOf(raw))
		return out.Interface(), nil
	case abi.IntTy, abi.UintTy:
		return toInteger(typ, value)
	case abi.SliceTy, abi.ArrayTy:
		return toList(typ, value)
	default:
		return nil, fmt.Errorf("unsupported type %s", typ.String())
	}
}

func toAddress(value any) (common.Address, error) {
	switch v := value.(type) {
	case common.Address:
		return v, nil
	case string:
		if !common.IsHexAddress(v) {
			return common.Address{}, fmt.Errorf("invalid address %q", v)
		}
		return common.HexToAddress(v), nil
	default:
		return common.Address{}, fmt.Errorf("expected address, got %T", value)
	}
}

func toBytes(value any) ([]byte, error) {
	switch v := value.(type) {
	case []byte:
		return v, nil
	case string:
		raw, err := hex.DecodeString(strings.TrimPrefix(v, "0x"))
		if err != nil {
			return nil, fmt.Errorf("invalid hex %q: %w", v, err)
		}
		return raw, nil
	default:
		return nil, fmt.Errorf("expected hex string, got %T", value)
	}
}

func toBigInt(value any) (*big.Int, error) {
	switch v := value.(type) {
	case *big.Int:
		return new(big.Int).Set(v), nil
	case int:
		return big.NewInt(int64(v)), nil
	case int64:
		return big.NewInt(v), nil
	case uint64:
		return new(big.Int).SetUint64(v), nil
	case float64:
		if v != math.Trunc(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("non-integral number %v", v)
		}
		n, _ := big.NewFloat(v).Int(nil)
		return n, nil
	case string:
		n, ok := new(big.Int).SetString(strings.TrimSpace(v), 0)
		if !ok {
			return nil, fmt.Errorf("invalid integer %q", v)
		}
		return n, nil
	default:
		return nil, fmt.Errorf("expected integer, got %T", value)
	}
}

func toInteger(typ abi.Type, value any) (any, error) {
	n, err := toBigInt(value)
	if err != nil {
		return nil, err
	}

	if typ.T == abi.UintTy {
		if n.Sign() < 0 {
			return nil, fmt.Errorf("negative value %s for %s", n, typ.String())
		}
		if n.BitLen() > typ.Size {
			return nil, fmt.Errorf("value %s overflows %s", n, typ.String())
		}
	} else {
		limit := new(big.Int).Lsh(big.NewInt(1), uint(typ.Size-1))
		if n.Cmp(limit) >= 0 || n.Cmp(new(big.Int).Neg(limit)) < 0 {
			return nil, fmt.Errorf("value %s overflows %s", n, typ.String())
		}
	}

	goType := typ.GetType()
	if goType == reflect.TypeOf(&big.Int{}) {
		return n, nil
	}
	// uint8..uint64 and int8..int64 are packed from their exact Go types
	out := reflect.New(goType).Elem()
	if typ.T == abi.UintTy {
		out.SetUint(n.Uint64())
	} else {
		out.SetInt(n.Int64())
	}
	return out.Interface(), nil
}

func toList(typ abi.Type, value any) (any, error) {
	items, err := listItems(value)
	if err != nil {
		return nil, err
	}

	var out reflect.Value
	if typ.T == abi.ArrayTy {
		if len(items) != typ.Size {
			return nil, fmt.Errorf("expected %d elements, got %d", typ.Size, len(items))
		}
		out = reflect.New(typ.GetType()).Elem()
	} else {
		out = reflect.MakeSlice(typ.GetType(), len(items), len(items))
	}

	for i, item := range items {
		elem, err := Coerce(*typ.Elem, item)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		out.Index(i).Set(reflect.ValueOf(elem))
	}
	return out.Interface(), nil
}

func listItems(value any) ([]any, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case []any:
		return v, nil
	case []string:
		items := make([]any, len(v))
		for i, s := range v {
			items[i] = s
		}
		return items, nil
	case []common.Address:
		items := make([]any, len(v))
		for i, a := range v {
			items[i] = a
		}
		return items, nil
	case []int64:
		items := make([]any, len(v))
		for i, n := range v {
			items[i] = n
		}
		return items, nil
	default:
		return nil, fmt.Errorf("expected list, got %T", value)
	}
}
