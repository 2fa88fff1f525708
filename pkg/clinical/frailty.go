package clinical

// FriedFrailtyThreshold is the number of positive Fried criteria that
// classifies a patient as frail.
const FriedFrailtyThreshold = 3

// IsFrail evaluates the five-item Fried questionnaire (weight loss,
// exhaustion, physical activity, gait speed, grip strength). Missing
// responses count as negative.
func IsFrail(responses map[string]bool) bool {
	positives := 0
	for _, positive := range responses {
		if positive {
			positives++
		}
	}
	return positives >= FriedFrailtyThreshold
}
