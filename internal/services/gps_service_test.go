package services

import (
	"errors"
	"testing"
)

func validSample() PositionInput {
	heading, accuracy := 90.0, 8.0
	return PositionInput{
		VehicleID:   1,
		Lat:         5.34,
		Lng:         -4.02,
		SpeedKmh:    35,
		HeadingDeg:  &heading,
		AccuracyM:   &accuracy,
		TimestampMs: 1756800000000,
	}
}

func TestValidatePositionAccepts(t *testing.T) {
	if err := ValidatePosition(validSample()); err != nil {
		t.Fatalf("valid sample rejected: %v", err)
	}

	// Optional fields absent is fine.
	in := validSample()
	in.HeadingDeg = nil
	in.AccuracyM = nil
	if err := ValidatePosition(in); err != nil {
		t.Fatalf("sample without optional fields rejected: %v", err)
	}
}

func TestValidatePositionRejects(t *testing.T) {
	badHeading := 361.0
	negAccuracy := -1.0

	cases := []struct {
		name   string
		mutate func(*PositionInput)
	}{
		{"lat high", func(in *PositionInput) { in.Lat = 90.1 }},
		{"lat low", func(in *PositionInput) { in.Lat = -90.1 }},
		{"lng high", func(in *PositionInput) { in.Lng = 180.1 }},
		{"lng low", func(in *PositionInput) { in.Lng = -180.1 }},
		{"speed negative", func(in *PositionInput) { in.SpeedKmh = -1 }},
		{"speed high", func(in *PositionInput) { in.SpeedKmh = 201 }},
		{"heading high", func(in *PositionInput) { in.HeadingDeg = &badHeading }},
		{"accuracy negative", func(in *PositionInput) { in.AccuracyM = &negAccuracy }},
		{"timestamp zero", func(in *PositionInput) { in.TimestampMs = 0 }},
		{"timestamp negative", func(in *PositionInput) { in.TimestampMs = -5 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := validSample()
			tc.mutate(&in)
			err := ValidatePosition(in)
			if !errors.Is(err, ErrValidation) {
				t.Errorf("expected ErrValidation, got %v", err)
			}
		})
	}
}

func TestValidatePositionBoundaryValues(t *testing.T) {
	heading360 := 360.0
	accuracy0 := 0.0

	in := validSample()
	in.Lat = 90
	in.Lng = -180
	in.SpeedKmh = 200
	in.HeadingDeg = &heading360
	in.AccuracyM = &accuracy0
	if err := ValidatePosition(in); err != nil {
		t.Fatalf("boundary values rejected: %v", err)
	}
}
