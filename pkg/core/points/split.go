package points

import "math"

// Split returns the portion of weight credited to each of owners co-owners.
// Every owner receives an equal share; the shares always sum to weight.
func Split(weight float64, owners int) float64 {
	if owners <= 0 {
		return 0
	}
	return weight / float64(owners)
}

// Round1 rounds v to one decimal place
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// Round2 rounds v to two decimal places, used for currency amounts
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
