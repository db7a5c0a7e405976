package phone

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "", want: ""},
		{in: "anonymous", want: ""},
		{in: "5551234567", want: "+15551234567"},
		{in: "(555) 123-4567", want: "+15551234567"},
		{in: "1-555-123-4567", want: "+15551234567"},
		{in: "15551234567", want: "+15551234567"},
		{in: "+15551234567", want: "+15551234567"},
		{in: "+44 20 7946 0958", want: "+44 20 7946 0958"},
		{in: "442079460958", want: "+442079460958"},
		{in: "25551234567", want: "+25551234567"},
		{in: "911", want: "+911"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestNormalize_TenDigitsGetCountryCode(t *testing.T) {
	for i := 0; i < 50; i++ {
		d := fmt.Sprintf("%010d", 2000000000+i*7919)
		assert.Equal(t, "+1"+d, Normalize(d))
	}
}

func TestNormalize_ElevenDigitsWithLeadingOne(t *testing.T) {
	for i := 0; i < 50; i++ {
		s := fmt.Sprintf("1%010d", 3000000000+i*104729)
		assert.Equal(t, "+"+s, Normalize(s))
	}
}

func TestNormalize_IdempotentOnCanonicalInput(t *testing.T) {
	for _, in := range []string{"5551234567", "15551234567", "+15551234567", "+442079460958", "911"} {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "input %q", in)
	}
}

func TestDigits(t *testing.T) {
	assert.Equal(t, "15551234567", Digits("+1 (555) 123-4567"))
	assert.Equal(t, "", Digits("n/a"))
}
