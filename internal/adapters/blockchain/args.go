package blockchain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/big"
	"reflect"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/plinth-labs/plinth/internal/domain"
	"github.com/plinth-labs/plinth/internal/usecase"
)

// ArgumentCoercer converts manifest and command line strings into the Go
// values go-ethereum packs for each ABI type
type ArgumentCoercer struct{}

// NewArgumentCoercer creates a new argument coercer
func NewArgumentCoercer() *ArgumentCoercer {
	return &ArgumentCoercer{}
}

// Coerce converts values positionally against args
func (c *ArgumentCoercer) Coerce(args abi.Arguments, values []string) ([]any, error) {
	if len(args) != len(values) {
		return nil, fmt.Errorf("expected %d arguments, got %d", len(args), len(values))
	}

	out := make([]any, len(values))
	for i, arg := range args {
		v, err := coerceValue(arg.Type, values[i])
		if err != nil {
			name := arg.Name
			if name == "" {
				name = strconv.Itoa(i)
			}
			return nil, fmt.Errorf("argument %s (%s): %w", name, arg.Type.String(), err)
		}
		out[i] = v
	}
	return out, nil
}

func coerceValue(t abi.Type, s string) (any, error) {
	s = strings.TrimSpace(s)

	switch t.T {
	case abi.AddressTy:
		if !common.IsHexAddress(s) {
			return nil, fmt.Errorf("%w: %q", domain.ErrInvalidAddress, s)
		}
		return common.HexToAddress(s), nil

	case abi.StringTy:
		return s, nil

	case abi.BoolTy:
		return strconv.ParseBool(s)

	case abi.IntTy, abi.UintTy:
		return coerceInteger(t, s)

	case abi.BytesTy:
		return hexutil.Decode(s)

	case abi.FixedBytesTy:
		b, err := hexutil.Decode(s)
		if err != nil {
			return nil, err
		}
		if len(b) != t.Size {
			return nil, fmt.Errorf("expected %d bytes, got %d", t.Size, len(b))
		}
		arr := reflect.New(t.GetType()).Elem()
		reflect.Copy(arr, reflect.ValueOf(b))
		return arr.Interface(), nil

	case abi.SliceTy, abi.ArrayTy:
		return coerceList(t, s)

	default:
		return nil, fmt.Errorf("unsupported type")
	}
}

func coerceInteger(t abi.Type, s string) (any, error) {
	n, ok := new(big.Int).SetString(s, 0)
	if !ok {
		return nil, fmt.Errorf("invalid integer %q", s)
	}

	if t.T == abi.UintTy {
		if n.Sign() < 0 {
			return nil, fmt.Errorf("negative value for unsigned type")
		}
		if n.BitLen() > t.Size {
			return nil, fmt.Errorf("value overflows %d bits", t.Size)
		}
	} else {
		limit := new(big.Int).Lsh(big.NewInt(1), uint(t.Size-1))
		if n.Cmp(limit) >= 0 || n.Cmp(new(big.Int).Neg(limit)) < 0 {
			return nil, fmt.Errorf("value overflows %d bits", t.Size)
		}
	}

	goType := t.GetType()
	if goType == reflect.TypeOf(n) {
		return n, nil
	}

	v := reflect.New(goType).Elem()
	if t.T == abi.UintTy {
		v.SetUint(n.Uint64())
	} else {
		v.SetInt(n.Int64())
	}
	return v.Interface(), nil
}

// coerceList accepts a JSON array such as ["0x..", "0x.."] or [1, 2]
func coerceList(t abi.Type, s string) (any, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(s)))
	dec.UseNumber()

	var items []any
	if err := dec.Decode(&items); err != nil {
		return nil, fmt.Errorf("expected a JSON array: %w", err)
	}

	var list reflect.Value
	if t.T == abi.ArrayTy {
		if len(items) != t.Size {
			return nil, fmt.Errorf("expected %d elements, got %d", t.Size, len(items))
		}
		list = reflect.New(t.GetType()).Elem()
	} else {
		list = reflect.MakeSlice(t.GetType(), len(items), len(items))
	}

	for i, item := range items {
		v, err := coerceValue(*t.Elem, fmt.Sprint(item))
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		list.Index(i).Set(reflect.ValueOf(v))
	}
	return list.Interface(), nil
}

// Ensure the coercer implements the interface
var _ usecase.ArgumentCoercer = (*ArgumentCoercer)(nil)
