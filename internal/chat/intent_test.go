package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifierOrderIntents(t *testing.T) {
	classifier := NewClassifier()

	tests := []struct {
		name         string
		message      string
		wantMedicine string
		wantQuantity int
		wantDosage   float64
	}{
		{
			name:         "plain need",
			message:      "I need paracetamol",
			wantMedicine: "i need paracetamol",
			wantQuantity: 0,
			wantDosage:   0,
		},
		{
			name:         "order with quantity",
			message:      "order 2 paracetamol",
			wantMedicine: "2 paracetamol",
			wantQuantity: 2,
			wantDosage:   0,
		},
		{
			name:         "order with quantity and dosage",
			message:      "buy 10 ibuprofen twice daily",
			wantMedicine: "10 ibuprofen",
			wantQuantity: 10,
			wantDosage:   2,
		},
		{
			name:         "once daily dosage",
			message:      "I want to order vitamin d once daily",
			wantMedicine: "i want vitamin d",
			wantQuantity: 0,
			wantDosage:   1,
		},
		{
			name:         "thrice daily dosage",
			message:      "purchase 6 amoxicillin thrice daily",
			wantMedicine: "6 amoxicillin",
			wantQuantity: 6,
			wantDosage:   3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			intent := classifier.Classify(tt.message)
			order, ok := intent.(OrderIntent)
			require.True(t, ok, "expected OrderIntent, got %T", intent)
			assert.Equal(t, tt.wantMedicine, order.Medicine)
			assert.Equal(t, tt.wantQuantity, order.Quantity)
			assert.Equal(t, tt.wantDosage, order.DosageFrequency)
		})
	}
}

func TestClassifierRecommendIntents(t *testing.T) {
	classifier := NewClassifier()

	tests := []struct {
		name        string
		message     string
		wantSymptom string
	}{
		{
			name:        "tired shorthand",
			message:     "I'm tired",
			wantSymptom: "tired",
		},
		{
			name:        "recommend for symptom",
			message:     "recommend something for a headache",
			wantSymptom: "a headache",
		},
		{
			name:        "what should i take",
			message:     "What should I take for fever?",
			wantSymptom: "fever",
		},
		{
			name:        "i have phrasing",
			message:     "I have a sore throat",
			wantSymptom: "a sore throat",
		},
		{
			name:        "something for",
			message:     "Do you have something for back pain",
			wantSymptom: "back pain",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			intent := classifier.Classify(tt.message)
			rec, ok := intent.(RecommendIntent)
			require.True(t, ok, "expected RecommendIntent, got %T", intent)
			assert.Equal(t, tt.wantSymptom, rec.Symptom)
		})
	}
}

func TestClassifierUnknownIntents(t *testing.T) {
	classifier := NewClassifier()

	for _, message := range []string{
		"",
		"hello there",
		"3",
		"thanks, bye",
	} {
		intent := classifier.Classify(message)
		assert.IsType(t, UnknownIntent{}, intent, "message: %q", message)
	}
}
