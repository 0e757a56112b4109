package sampark

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr string
	}{
		{name: "plain", input: "9876543210", want: "9876543210"},
		{name: "formatted", input: "(987) 654-3210", want: "9876543210"},
		{name: "short", input: "98765", wantErr: "Please enter a valid 10-digit phone number."},
		{name: "country code", input: "+91 98765 43210", wantErr: "Please enter a valid 10-digit phone number."},
		{name: "empty", input: "abc", wantErr: "phone_number is a required field"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizePhone(tt.input)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantErr, err.Error())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidateVerifyRequest(t *testing.T) {
	err := Validate(VerifyRequest{PhoneNumber: "123", OTP: ""})
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Len(t, vErr.Fields, 2)
	assert.Equal(t, "otp cannot be blank", vErr.Fields["otp"])

	require.NoError(t, Validate(VerifyRequest{PhoneNumber: "9876543210", OTP: "1234"}))
}
