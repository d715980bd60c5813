package employee

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func ptr(v float64) *float64 { return &v }

func TestMask(t *testing.T) {
	e := Employee{
		ID:          "e1",
		FirstName:   "Ann",
		BankAccount: "123456789012",
		PAN:         "ABCDE1234F",
		Aadhaar:     "1234 5678 9012",
		CTC:         ptr(1200000),
		BasicSalary: ptr(50000),
		GrossSalary: ptr(100000),
		NetSalary:   ptr(88000),
	}

	masked := Mask(e)
	assert.Equal(t, "XXXXXX9012", masked.BankAccount)
	assert.Equal(t, "XXXXXX234F", masked.PAN)
	assert.Equal(t, "XXXX XXXX 9012", masked.Aadhaar)
	assert.Nil(t, masked.CTC)
	assert.Nil(t, masked.BasicSalary)
	assert.Nil(t, masked.GrossSalary)
	assert.Nil(t, masked.NetSalary)
	assert.Equal(t, "Ann", masked.FirstName)

	assert.Equal(t, "123456789012", e.BankAccount, "source must not be modified")
	assert.NotNil(t, e.CTC)

	assert.Equal(t, masked, Mask(masked), "masking is idempotent")
}

func TestMaskShortAndEmptyValues(t *testing.T) {
	tests := []struct {
		name    string
		in      Employee
		bank    string
		pan     string
		aadhaar string
	}{
		{name: "empty", in: Employee{}, bank: "", pan: "", aadhaar: ""},
		{name: "short", in: Employee{BankAccount: "12", PAN: "A1", Aadhaar: "9"}, bank: "XXXXXX12", pan: "XXXXXXA1", aadhaar: "XXXX XXXX 9"},
		{name: "separators", in: Employee{BankAccount: "12-34-56", PAN: "ab-cd", Aadhaar: "1234-5678-0000"}, bank: "XXXXXX3456", pan: "XXXXXXabcd", aadhaar: "XXXX XXXX 0000"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Mask(tc.in)
			assert.Equal(t, tc.bank, got.BankAccount)
			assert.Equal(t, tc.pan, got.PAN)
			assert.Equal(t, tc.aadhaar, got.Aadhaar)
			assert.Equal(t, got, Mask(got))
		})
	}
}

func TestMaskAll(t *testing.T) {
	list := []Employee{{BankAccount: "99998888"}, {PAN: "ZZZZZ9999Z"}}
	masked := MaskAll(list)
	assert.Len(t, masked, 2)
	assert.Equal(t, "XXXXXX8888", masked[0].BankAccount)
	assert.Equal(t, "XXXXXX999Z", masked[1].PAN)
	assert.Equal(t, "99998888", list[0].BankAccount)
}
