package sampark

import (
	"context"
	"strings"

	"samparkdash/internal/indicators"
)

// Demo answers every call from the bundled Chattisgarh sample responses.
// Any ten-digit phone and non-blank OTP log in.
type Demo struct{}

// DemoUser is the profile Demo logs everyone in as.
var DemoUser = User{
	Name:        "Demo Officer",
	Designation: "State Programme Officer",
	State:       "22",
	Role:        "state",
}

func (Demo) RequestOTP(_ context.Context, phone string) (OTPResult, error) {
	digits, err := NormalizePhone(phone)
	if err != nil {
		return OTPResult{}, err
	}
	return OTPResult{PhoneNumber: digits}, nil
}

func (Demo) ValidateOTP(_ context.Context, phone, otp string) (Credentials, error) {
	body := VerifyRequest{PhoneNumber: stripNonDigits(phone), OTP: strings.TrimSpace(otp)}
	if err := Validate(body); err != nil {
		return Credentials{}, err
	}
	return Credentials{Token: "demo-" + body.PhoneNumber, User: DemoUser}, nil
}

func (Demo) DistrictWise(context.Context, string, StateQuery) (indicators.StateDataset, error) {
	return indicators.MockStateDataset(), nil
}

func (Demo) DistrictLevel(context.Context, string, DistrictQuery) (indicators.DistrictDataset, error) {
	return indicators.MockDistrictDataset(), nil
}

func (Demo) DataInsights(context.Context, string, InsightsQuery) (indicators.BlockDataset, error) {
	return indicators.MockBlockDataset(), nil
}
