// Package bmi classifies body mass index from height in centimetres and
// weight in kilograms.
package bmi

import (
	"errors"
	"fmt"
	"math"

	"github.com/spf13/cast"
)

var (
	ErrNotEnoughArgs = errors.New("Not enough arguments")
	ErrTooManyArgs   = errors.New("Too many arguments")
	ErrNotNumbers    = errors.New("Provided arguments are not numbers")
	ErrNotPositive   = errors.New("Height and weight must be positive")
)

// Measurement is a validated height/weight pair.
type Measurement struct {
	HeightCm float64
	WeightKg float64
}

// ParseArgs expects exactly two arguments: height in cm, then weight in kg.
func ParseArgs(args []string) (Measurement, error) {
	if len(args) < 2 {
		return Measurement{}, ErrNotEnoughArgs
	}
	if len(args) > 2 {
		return Measurement{}, ErrTooManyArgs
	}

	height, err := cast.ToFloat64E(args[0])
	if err != nil {
		return Measurement{}, ErrNotNumbers
	}
	weight, err := cast.ToFloat64E(args[1])
	if err != nil {
		return Measurement{}, ErrNotNumbers
	}
	if math.IsNaN(height) || math.IsNaN(weight) {
		return Measurement{}, ErrNotNumbers
	}
	if height <= 0 || weight <= 0 {
		return Measurement{}, ErrNotPositive
	}
	return Measurement{HeightCm: height, WeightKg: weight}, nil
}

// Index is weight / (height in metres)^2.
func (m Measurement) Index() float64 {
	metres := m.HeightCm / 100
	return m.WeightKg / (metres * metres)
}

type band struct {
	below float64
	label string
}

// bands are checked in order; the first upper bound above the index wins.
var bands = []band{
	{15, "Very severely underweight"},
	{16, "Severely underweight"},
	{18.5, "Underweight"},
	{25, "Normal (healthy weight)"},
	{30, "Overweight"},
	{35, "Obese Class I (Moderately obese)"},
	{40, "Obese Class II (Severely obese)"},
}

const topBand = "Obese Class III (Very severely obese)"

// Classify returns the category label for an index value.
func Classify(index float64) string {
	for _, b := range bands {
		if index < b.below {
			return b.label
		}
	}
	return topBand
}

// Calculate classifies the BMI for heightCm and weightKg.
func Calculate(heightCm, weightKg float64) string {
	return Classify(Measurement{HeightCm: heightCm, WeightKg: weightKg}.Index())
}

func (m Measurement) String() string {
	return fmt.Sprintf("%.1f", m.Index())
}
