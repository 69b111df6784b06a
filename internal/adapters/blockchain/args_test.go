package blockchain

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/plinth-labs/plinth/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustType(t *testing.T, name string) abi.Type {
	t.Helper()
	typ, err := abi.NewType(name, "", nil)
	require.NoError(t, err)
	return typ
}

func TestArgumentCoercer_Coerce(t *testing.T) {
	c := NewArgumentCoercer()

	tests := []struct {
		name  string
		typ   string
		value string
		want  any
	}{
		{name: "address", typ: "address", value: "0x52a6080033ac5e0804c798928c47ec1278cf4b39", want: common.HexToAddress("0x52a6080033AC5E0804C798928c47eC1278Cf4B39")},
		{name: "string", typ: "string", value: "ZETAP", want: "ZETAP"},
		{name: "bool", typ: "bool", value: "true", want: true},
		{name: "uint256 decimal", typ: "uint256", value: "1000000000000000000", want: big.NewInt(1_000_000_000_000_000_000)},
		{name: "uint256 hex", typ: "uint256", value: "0x10", want: big.NewInt(16)},
		{name: "int256 negative", typ: "int256", value: "-5", want: big.NewInt(-5)},
		{name: "uint8", typ: "uint8", value: "18", want: uint8(18)},
		{name: "int64", typ: "int64", value: "-7", want: int64(-7)},
		{name: "bytes", typ: "bytes", value: "0xdead", want: []byte{0xde, 0xad}},
		{name: "bytes4", typ: "bytes4", value: "0xdeadbeef", want: [4]byte{0xde, 0xad, 0xbe, 0xef}},
		{name: "address array", typ: "address[]", value: `["0x05802839e5D80df6628c11D6f0A99291710a2523"]`, want: []common.Address{common.HexToAddress("0x05802839e5D80df6628c11D6f0A99291710a2523")}},
		{name: "fixed uint array", typ: "uint256[2]", value: `[1, 2]`, want: [2]*big.Int{big.NewInt(1), big.NewInt(2)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := abi.Arguments{{Name: "v", Type: mustType(t, tt.typ)}}
			out, err := c.Coerce(args, []string{tt.value})
			require.NoError(t, err)
			require.Len(t, out, 1)
			assert.Equal(t, tt.want, out[0])

			_, err = args.Pack(out...)
			assert.NoError(t, err)
		})
	}
}

func TestArgumentCoercer_Errors(t *testing.T) {
	c := NewArgumentCoercer()

	tests := []struct {
		name    string
		typ     string
		value   string
		wantErr string
	}{
		{name: "bad address", typ: "address", value: "0x1234", wantErr: "invalid address"},
		{name: "not a number", typ: "uint256", value: "ten", wantErr: "invalid integer"},
		{name: "negative unsigned", typ: "uint256", value: "-1", wantErr: "negative"},
		{name: "uint8 overflow", typ: "uint8", value: "256", wantErr: "overflows"},
		{name: "int8 overflow", typ: "int8", value: "128", wantErr: "overflows"},
		{name: "bytes4 length", typ: "bytes4", value: "0xdead", wantErr: "expected 4 bytes"},
		{name: "array length", typ: "uint256[2]", value: `[1]`, wantErr: "expected 2 elements"},
		{name: "not an array", typ: "address[]", value: "0x05802839e5D80df6628c11D6f0A99291710a2523", wantErr: "JSON array"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := abi.Arguments{{Name: "v", Type: mustType(t, tt.typ)}}
			_, err := c.Coerce(args, []string{tt.value})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	t.Run("argument count", func(t *testing.T) {
		args := abi.Arguments{{Name: "a", Type: mustType(t, "address")}}
		_, err := c.Coerce(args, nil)
		assert.ErrorContains(t, err, "expected 1 arguments, got 0")
	})

	t.Run("address error is typed", func(t *testing.T) {
		args := abi.Arguments{{Name: "a", Type: mustType(t, "address")}}
		_, err := c.Coerce(args, []string{"zeta1xyz"})
		assert.ErrorIs(t, err, domain.ErrInvalidAddress)
	})
}
