package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCommand(t *testing.T) {
	cases := []struct {
		in   string
		typ  CommandType
		args []string
	}{
		{"/stock", CommandStock, nil},
		{"  SIZES HW01 ", CommandSizes, []string{"HW01"}},
		{"/search Air Max", CommandSearch, []string{"Air", "Max"}},
		{"/net 2024-05-01 2024-05-31", CommandNet, []string{"2024-05-01", "2024-05-31"}},
		{"hello", CommandUnknown, nil},
		{"", CommandUnknown, nil},
	}
	for _, tc := range cases {
		cmd := ParseCommand(tc.in)
		assert.Equal(t, tc.typ, cmd.Type, tc.in)
		assert.Equal(t, tc.args, cmd.Args, tc.in)
	}
}

func TestParseCodes(t *testing.T) {
	assert.Equal(t, TypeHoodies, ParseProductType("h"))
	assert.Equal(t, TypeTShirts, ParseProductType("t-shirts"))
	assert.Equal(t, ProductType("Sandals"), ParseProductType(" Sandals "))
	assert.Equal(t, GenderNoGender, ParseGender("NG"))
	assert.Equal(t, GenderWomen, ParseGender("w"))
	assert.Equal(t, GenderKids, ParseGender("KIDS"))
}
