package helper

import (
	"math"
	"restaurant_manager/model"
	"testing"
)

func TestComputeSummary(t *testing.T) {
	tests := []struct {
		name         string
		session      model.CashSession
		cashSales    float64
		withdrawals  float64
		deposits     float64
		wantExpected float64
		wantDiff     *float64
	}{
		{
			name:         "sessao aberta sem movimentacao",
			session:      model.CashSession{OpeningAmount: 200.0, Status: model.SessionAberta},
			cashSales:    350.0,
			wantExpected: 550.0,
		},
		{
			name:         "sangria e suprimento na formula",
			session:      model.CashSession{OpeningAmount: 100.0, Status: model.SessionAberta},
			cashSales:    0,
			withdrawals:  20.0,
			deposits:     15.0,
			wantExpected: 95.0,
		},
		{
			name: "fechada com gaveta batendo",
			session: model.CashSession{
				OpeningAmount: 100.0,
				Status:        model.SessionFechada,
				ClosingAmount: floatPtr(150.0),
			},
			cashSales:    50.0,
			wantExpected: 150.0,
			wantDiff:     floatPtr(0.0),
		},
		{
			name: "abertura 100, venda 20, sangria 15, declarado 100",
			session: model.CashSession{
				OpeningAmount: 100.0,
				Status:        model.SessionFechada,
				ClosingAmount: floatPtr(100.0),
			},
			cashSales:    20.0,
			withdrawals:  15.0,
			wantExpected: 105.0,
			wantDiff:     floatPtr(-5.0),
		},
		{
			name: "fechada com falta na gaveta",
			session: model.CashSession{
				OpeningAmount: 100.0,
				Status:        model.SessionFechada,
				ClosingAmount: floatPtr(95.0),
			},
			cashSales:    0,
			wantExpected: 100.0,
			wantDiff:     floatPtr(-5.0),
		},
		{
			name: "aberta nao tem diferenca mesmo com valor declarado",
			session: model.CashSession{
				OpeningAmount: 100.0,
				Status:        model.SessionAberta,
				ClosingAmount: floatPtr(90.0),
			},
			wantExpected: 100.0,
			wantDiff:     nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeSummary(tt.session, tt.cashSales, tt.withdrawals, tt.deposits)
			if math.Abs(got.ExpectedBalance-tt.wantExpected) > amountEpsilon {
				t.Errorf("ExpectedBalance = %v, want %v", got.ExpectedBalance, tt.wantExpected)
			}
			if (got.Difference == nil) != (tt.wantDiff == nil) {
				t.Fatalf("Difference = %v, want %v", got.Difference, tt.wantDiff)
			}
			if tt.wantDiff != nil && math.Abs(*got.Difference-*tt.wantDiff) > amountEpsilon {
				t.Errorf("Difference = %v, want %v", *got.Difference, *tt.wantDiff)
			}
		})
	}
}

func floatPtr(v float64) *float64 { return &v }
