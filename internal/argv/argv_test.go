package argv

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplit(t *testing.T) {
	for _, tc := range []struct {
		name string
		in   string
		want []string
	}{
		{"empty", "", nil},
		{"blank", " \t\n", nil},
		{"simple words", "a b  c", []string{"a", "b", "c"}},
		{"single quotes", `view.filter 'north east'`, []string{"view.filter", "north east"}},
		{"single quotes keep backslash", `'a\b'`, []string{`a\b`}},
		{"double quotes", `"x y" z`, []string{"x y", "z"}},
		{"double quote escapes", `"a\"b\\c\d"`, []string{`a"b\c\d`}},
		{"escaped space", `a\ b c`, []string{"a b", "c"}},
		{"empty quoted word", `a "" b`, []string{"a", "", "b"}},
		{"adjacent quoting", `pre"mid"'end'`, []string{"premidend"}},
		{"unicode", "lọc 'Hà Nội'", []string{"lọc", "Hà Nội"}},
		{"trailing backslash", `a\`, []string{`a\`}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Split(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, tc.want, slices.Collect(ArgsSeq(tc.in)))
		})
	}
}

func TestSplit_UnterminatedQuote(t *testing.T) {
	got, err := Split(`view.filter "north`)
	assert.ErrorIs(t, err, ErrUnterminatedQuote)
	assert.Equal(t, []string{"view.filter", "north"}, got)
}

func TestArgsSeq_StopsEarly(t *testing.T) {
	var got []string
	for w := range ArgsSeq("a b c") {
		got = append(got, w)
		if len(got) == 2 {
			break
		}
	}
	assert.Equal(t, []string{"a", "b"}, got)
}

func TestParse(t *testing.T) {
	for _, tc := range []struct {
		in   string
		want Invocation
	}{
		{"zoom.in", Invocation{Name: "zoom.in"}},
		{"  history.undo  ", Invocation{Name: "history.undo"}},
		{"view.filter north east", Invocation{Name: "view.filter", Payload: "north east"}},
		{`view.filter "a  b"`, Invocation{Name: "view.filter", Payload: "a  b"}},
		{
			"view.sort col=2 desc=true",
			Invocation{Name: "view.sort", Payload: map[string]any{"col": 2, "desc": true}},
		},
		{
			`format.fontSize size=1.5 name='Big font'`,
			Invocation{Name: "format.fontSize", Payload: map[string]any{"size": 1.5, "name": "Big font"}},
		},
		{
			"view.filter query=a=b",
			Invocation{Name: "view.filter", Payload: map[string]any{"query": "a=b"}},
		},
		{"view.filter col=1 north", Invocation{Name: "view.filter", Payload: "col=1 north"}},
		{"view.filter =x", Invocation{Name: "view.filter", Payload: "=x"}},
		{"flag on=TRUE", Invocation{Name: "flag", Payload: map[string]any{"on": "TRUE"}}},
	} {
		t.Run(tc.in, func(t *testing.T) {
			got, err := Parse(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParse_Errors(t *testing.T) {
	_, err := Parse("   ")
	assert.ErrorIs(t, err, ErrEmpty)
	_, err = Parse(`''`)
	assert.ErrorIs(t, err, ErrEmpty)
	_, err = Parse(`run 'oops`)
	assert.ErrorIs(t, err, ErrUnterminatedQuote)
}
