package packet

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSumVersions(t *testing.T) {
	tests := []struct {
		hex  string
		want uint64
	}{
		{hex: "D2FE28", want: 6},
		{hex: "8A004A801A8002F478", want: 16},
		{hex: "620080001611562C8802118E34", want: 12},
		{hex: "C0015000016115A2E0802F182340", want: 23},
		{hex: "A0016C880162017C3686B18A3D4780", want: 31},
	}

	for _, tt := range tests {
		t.Run(tt.hex, func(t *testing.T) {
			packets, err := Decode(tt.hex)
			require.NoError(t, err)
			assert.Equal(t, tt.want, SumAll(packets))
		})
	}
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name string
		hex  string
		want uint64
	}{
		{name: "sum", hex: "C200B40A82", want: 3},
		{name: "product", hex: "04005AC33890", want: 54},
		{name: "minimum", hex: "880086C3E88112", want: 7},
		{name: "maximum", hex: "CE00C43D881120", want: 9},
		{name: "less than", hex: "D8005AC2A8F0", want: 1},
		{name: "greater than", hex: "F600BC2D8F", want: 0},
		{name: "equal", hex: "9C005AC2F8F0", want: 0},
		{name: "nested equal", hex: "9C0141080250320F1802104A08", want: 1},
		{name: "literal", hex: "D2FE28", want: 2021},
		{name: "empty sum", hex: "000000", want: 0},
		{name: "empty product", hex: "040000", want: 1},
		{name: "full 64-bit literal", hex: "13FFFFFFFFFFFFFFFFFFBC", want: ^uint64(0)},
		{name: "count framing around length framing", hex: "2200910016709216C30", want: 26},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := DecodeOne(tt.hex)
			require.NoError(t, err)

			got, err := Evaluate(p)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvaluate_Errors(t *testing.T) {
	tests := []struct {
		name string
		hex  string
		want ErrorType
	}{
		{name: "min without operands", hex: "080000", want: ErrTypeArity},
		{name: "gt with three operands", hex: "1600C40881102", want: ErrTypeArity},
		{name: "eq with one operand", hex: "1E004408", want: ErrTypeArity},
		{name: "product overflow", hex: "060084C4210842108421084200104", want: ErrTypeOverflow},
		{name: "sum overflow", hex: "020084FFFFFFFFFFFFFFFFFFEF102", want: ErrTypeOverflow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := DecodeOne(tt.hex)
			require.NoError(t, err, "tree must decode; the failure is in evaluation")

			_, err = Evaluate(p)
			require.Error(t, err)
			assert.Equal(t, tt.want, TypeOf(err), "error: %v", err)
		})
	}
}

func TestEvaluate_InvalidOperator(t *testing.T) {
	// Type 4 is reserved for literals and cannot be parsed as an operator.
	op := &Operator{
		Header:   Header{TypeID: TypeLiteral},
		Children: []Packet{&Literal{Header: Header{TypeID: TypeLiteral}, Value: 1}},
	}
	_, err := Evaluate(op)
	assert.Equal(t, ErrTypeInvalidOperator, TypeOf(err))

	op.TypeID = TypeID(9)
	_, err = Evaluate(op)
	assert.Equal(t, ErrTypeInvalidOperator, TypeOf(err))
}

func TestEvaluate_ErrorInNestedOperator(t *testing.T) {
	bad := &Operator{Header: Header{TypeID: TypeMinimum, Offset: 40}}
	root := &Operator{
		Header:   Header{TypeID: TypeSum},
		Children: []Packet{&Literal{Value: 1}, bad},
	}

	_, err := Evaluate(root)
	var decErr *DecodeError
	require.ErrorAs(t, err, &decErr)
	assert.Equal(t, ErrTypeArity, decErr.Type)
	assert.Equal(t, 40, decErr.Offset)
}

func TestEvaluate_DeepTree(t *testing.T) {
	const depth = 200000

	var p Packet = &Literal{Header: Header{Version: 1, TypeID: TypeLiteral}, Value: 42}
	for i := 0; i < depth; i++ {
		p = &Operator{Header: Header{Version: 1, TypeID: TypeMaximum}, Children: []Packet{p}}
	}

	got, err := Evaluate(p)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), got)
	assert.Equal(t, uint64(depth+1), SumVersions(p))
}

func TestVisitors_Deterministic(t *testing.T) {
	const in = "A0016C880162017C3686B18A3D4780"

	first, err := Solve(in)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := Solve(in)
		require.NoError(t, err)
		assert.Equal(t, first.VersionSum, again.VersionSum)
		assert.Equal(t, first.Value, again.Value)
	}
}

func TestSolve(t *testing.T) {
	res, err := Solve("9C0141080250320F1802104A08")
	require.NoError(t, err)
	assert.Equal(t, uint64(20), res.VersionSum)
	assert.Equal(t, uint64(1), res.Value)
	assert.Equal(t, 104, res.Bits)
	assert.Equal(t, 2, res.Padding)
	require.Len(t, res.Packets, 1)

	_, err = Solve("70F624")
	assert.Equal(t, ErrTypeTopLevel, TypeOf(err))

	_, err = Solve("zz")
	assert.Equal(t, ErrTypeMalformedHex, TypeOf(err))
}

func TestFormat(t *testing.T) {
	p, err := DecodeOne("38006F45291200")
	require.NoError(t, err)

	assert.Equal(t, "(lt 10 20)", FormatCompact(p))
	assert.Equal(t,
		"lt v1 (2 children by bits)  [bits 0+49]\n"+
			"  literal v6 = 10  [bits 22+11]\n"+
			"  literal v2 = 20  [bits 33+16]\n",
		FormatTree(p))
	assert.Equal(t, "Operator{v=1, op=lt, children=2}", p.String())

	nested, err := DecodeOne("9C0141080250320F1802104A08")
	require.NoError(t, err)
	assert.Equal(t, "(eq (sum 1 3) (product 2 2))", FormatCompact(nested))
}

func TestMarshalJSON(t *testing.T) {
	p, err := DecodeOne("EE00D40C823060")
	require.NoError(t, err)

	data, err := json.Marshal(p)
	require.NoError(t, err)

	var got struct {
		Kind       string `json:"kind"`
		Operator   string `json:"operator"`
		LengthType string `json:"length_type"`
		Children   []struct {
			Kind  string `json:"kind"`
			Value uint64 `json:"value"`
		} `json:"children"`
	}
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "operator", got.Kind)
	assert.Equal(t, "max", got.Operator)
	assert.Equal(t, "count", got.LengthType)
	require.Len(t, got.Children, 3)
	assert.Equal(t, "literal", got.Children[2].Kind)
	assert.Equal(t, uint64(3), got.Children[2].Value)
}

func TestTroubleshooting(t *testing.T) {
	_, err := Decode("not hex")
	assert.NotEmpty(t, Troubleshooting(err))
	assert.Nil(t, Troubleshooting(nil))
	assert.Equal(t, "Length Mismatch", ErrTypeLengthMismatch.String())
}

func TestErrorTypeCode(t *testing.T) {
	assert.Equal(t, "malformed_hex", ErrTypeMalformedHex.Code())
	assert.Equal(t, "length_mismatch", ErrTypeLengthMismatch.Code())
	assert.Equal(t, "top_level", ErrTypeTopLevel.Code())
	assert.Equal(t, "unknown", ErrorType(99).Code())

	_, err := Solve("ZZ")
	assert.Equal(t, "malformed_hex", TypeOf(err).Code())
}
