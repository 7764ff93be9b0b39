package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/Lixing-Zhang/dilution-calc/internal/models"
)

func TestCalculationHandler_Calculate(t *testing.T) {
	r := newTestRouter(t)

	tests := []struct {
		name           string
		body           string
		expectedStatus int
		expectedResult string
	}{
		{
			name:           "grams",
			body:           `{"product": "Copper Sulfate", "water_amount": 1, "water_unit": "l"}`,
			expectedStatus: http.StatusOK,
			expectedResult: "10.00 g",
		},
		{
			name:           "re-normalized to kilograms",
			body:           `{"product": "Copper Sulfate", "water_amount": 200, "water_unit": "l"}`,
			expectedStatus: http.StatusOK,
			expectedResult: "2.00 kg",
		},
		{
			name:           "boundary is inclusive",
			body:           `{"product": "Copper Sulfate", "water_amount": 100, "water_unit": "l"}`,
			expectedStatus: http.StatusOK,
			expectedResult: "1.00 kg",
		},
		{
			name:           "re-normalized to liters",
			body:           `{"product": "Neem Oil", "water_amount": 200, "water_unit": "l"}`,
			expectedStatus: http.StatusOK,
			expectedResult: "2.00 l",
		},
		{
			name:           "default water unit",
			body:           `{"product": "Neem Oil", "water_amount": 1}`,
			expectedStatus: http.StatusOK,
			expectedResult: "10.00 ml",
		},
		{
			name:           "zero water",
			body:           `{"product": "Neem Oil", "water_amount": 0, "water_unit": "ml"}`,
			expectedStatus: http.StatusOK,
			expectedResult: "0",
		},
		{
			name:           "unknown product",
			body:           `{"product": "Vinegar", "water_amount": 1, "water_unit": "l"}`,
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "invalid water unit",
			body:           `{"product": "Neem Oil", "water_amount": 1, "water_unit": "g"}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "water amount as text",
			body:           `{"product": "Neem Oil", "water_amount": "1"}`,
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(r, http.MethodPost, "/api/calculate", tt.body)

			if w.Code != tt.expectedStatus {
				t.Fatalf("expected status %d, got %d: %s", tt.expectedStatus, w.Code, w.Body.String())
			}
			if tt.expectedStatus != http.StatusOK {
				return
			}

			var calc models.Calculation
			if err := json.NewDecoder(w.Body).Decode(&calc); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if calc.Result != tt.expectedResult {
				t.Errorf("expected result %q, got %q", tt.expectedResult, calc.Result)
			}
		})
	}
}

func TestCalculationHandler_CalculateForProduct(t *testing.T) {
	r := newTestRouter(t)

	tests := []struct {
		name           string
		target         string
		expectedStatus int
		expectedResult string
		expectedNotes  string
	}{
		{
			name:           "liters",
			target:         "/api/product/Bleach/calculate?water=5&unit=l",
			expectedStatus: http.StatusOK,
			expectedResult: "100.00 ml",
			expectedNotes:  "ventilate",
		},
		{
			name:           "milliliters",
			target:         "/api/product/Bleach/calculate?water=250&unit=ml",
			expectedStatus: http.StatusOK,
			expectedResult: "5.00 ml",
			expectedNotes:  "ventilate",
		},
		{
			name:           "unit defaults to liters",
			target:         "/api/product/Neem%20Oil/calculate?water=0.5",
			expectedStatus: http.StatusOK,
			expectedResult: "5.00 ml",
		},
		{
			name:           "missing water",
			target:         "/api/product/Bleach/calculate",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "water is not a number",
			target:         "/api/product/Bleach/calculate?water=lots",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "water is NaN",
			target:         "/api/product/Bleach/calculate?water=NaN&unit=l",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "water is infinite",
			target:         "/api/product/Bleach/calculate?water=Inf&unit=l",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "water overflows",
			target:         "/api/product/Bleach/calculate?water=1e400",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "unknown product",
			target:         "/api/product/Vinegar/calculate?water=1",
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(r, http.MethodGet, tt.target, "")

			if w.Code != tt.expectedStatus {
				t.Fatalf("expected status %d, got %d: %s", tt.expectedStatus, w.Code, w.Body.String())
			}
			if tt.expectedStatus != http.StatusOK {
				if errorMessage(t, w) == "" {
					t.Error("expected error message")
				}
				return
			}

			var calc models.Calculation
			if err := json.NewDecoder(w.Body).Decode(&calc); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if calc.Result != tt.expectedResult {
				t.Errorf("expected result %q, got %q", tt.expectedResult, calc.Result)
			}
			if calc.Notes != tt.expectedNotes {
				t.Errorf("expected notes %q, got %q", tt.expectedNotes, calc.Notes)
			}
		})
	}
}
